package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/kbukum/factorygirl/component"
	"github.com/kbukum/factorygirl/config"
	"github.com/kbukum/factorygirl/logger"
)

type testConfig struct {
	config.ServiceConfig `mapstructure:",squash"`
}

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type fakeComponent struct {
	name     string
	rec      *recorder
	startErr error
}

func (f *fakeComponent) Name() string { return f.name }

func (f *fakeComponent) Start(context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.rec.add("start " + f.name)
	return nil
}

func (f *fakeComponent) Stop(context.Context) error {
	f.rec.add("stop " + f.name)
	return nil
}

func (f *fakeComponent) Health(context.Context) component.Health {
	return component.Health{Name: f.name, Status: component.StatusHealthy}
}

func (f *fakeComponent) Describe() component.Description {
	return component.Description{Name: f.name, Type: "fake", Details: "details of " + f.name}
}

func newTestApp(t *testing.T) *App[*testConfig] {
	t.Helper()
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "factorygirl"}}
	app, err := NewApp(cfg, WithLogger(logger.Nop()), WithVersion("1.2.3"))
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	return app
}

func equalEvents(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestNewApp_ValidatesConfig(t *testing.T) {
	_, err := NewApp(&testConfig{}, WithLogger(logger.Nop()))
	if err == nil {
		t.Fatal("expected error for config without name")
	}

	app := newTestApp(t)
	if app.Name != "factorygirl" || app.Version != "1.2.3" {
		t.Errorf("app = %s %s", app.Name, app.Version)
	}
	if app.Cfg.Environment != "test" {
		t.Errorf("Environment = %q, want defaults applied", app.Cfg.Environment)
	}
}

func TestRunTask_Lifecycle(t *testing.T) {
	app := newTestApp(t)
	rec := &recorder{}
	for _, name := range []string{"db", "factory"} {
		if err := app.RegisterComponent(&fakeComponent{name: name, rec: rec}); err != nil {
			t.Fatal(err)
		}
	}
	app.OnStart(func(context.Context) error { rec.add("onStart"); return nil })
	app.OnStop(func(context.Context) error { rec.add("onStop"); return nil })

	err := app.RunTask(context.Background(), func(context.Context) error {
		rec.add("task")
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask() error = %v", err)
	}

	equalEvents(t, rec.list(), []string{"start db", "start factory", "onStart", "task", "onStop", "stop factory", "stop db"})

	infos := app.Summary.Components()
	if len(infos) != 2 || infos[1].Type != "fake" || infos[1].Status != component.StatusHealthy {
		t.Errorf("summary = %+v", infos)
	}
}

func TestRunTask_TaskErrorStillStops(t *testing.T) {
	app := newTestApp(t)
	rec := &recorder{}
	_ = app.RegisterComponent(&fakeComponent{name: "db", rec: rec})
	boom := errors.New("boom")

	err := app.RunTask(context.Background(), func(context.Context) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("RunTask() error = %v, want boom", err)
	}
	equalEvents(t, rec.list(), []string{"start db", "stop db"})
}

func TestRunTask_StartFailureStopsStarted(t *testing.T) {
	app := newTestApp(t)
	rec := &recorder{}
	startErr := errors.New("no database")
	_ = app.RegisterComponent(&fakeComponent{name: "db", rec: rec})
	_ = app.RegisterComponent(&fakeComponent{name: "factory", rec: rec, startErr: startErr})

	ran := false
	err := app.RunTask(context.Background(), func(context.Context) error { ran = true; return nil })
	if !errors.Is(err, startErr) {
		t.Fatalf("RunTask() error = %v, want start error", err)
	}
	if ran {
		t.Error("task ran after a failed start")
	}
	equalEvents(t, rec.list(), []string{"start db", "stop db"})
}

func TestSummary_Write(t *testing.T) {
	s := NewSummary("factorygirl", "1.2.3")
	s.components = []ComponentInfo{
		{Name: "db", Type: "database", Details: "sqlite pool=1/1", Status: component.StatusHealthy},
		{Name: "factory", Type: "factory", Status: component.StatusDegraded, Message: "not prepared"},
	}

	var buf bytes.Buffer
	if err := s.Write(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"factorygirl 1.2.3", "db", "sqlite pool=1/1", "(not prepared)"} {
		if !bytes.Contains([]byte(out), []byte(want)) {
			t.Errorf("summary output missing %q:\n%s", want, out)
		}
	}
}

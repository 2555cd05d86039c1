package testutil_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kbukum/factorygirl/testutil"
)

func TestSetup(t *testing.T) {
	c := newMockComponent("db")
	cleanup, err := testutil.Setup(c)
	if err != nil {
		t.Fatalf("Setup() failed: %v", err)
	}
	if !c.started {
		t.Error("expected component started")
	}
	if err := cleanup(); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if !c.stopped {
		t.Error("expected component stopped")
	}
}

func TestSetupError(t *testing.T) {
	c := newMockComponent("db")
	c.startErr = errors.New("boom")
	cleanup, err := testutil.SetupWithContext(context.Background(), c)
	if err == nil {
		t.Fatal("expected error")
	}
	if cleanup != nil {
		t.Error("expected nil cleanup on error")
	}
}

func TestT_SetupStopsOnCleanup(t *testing.T) {
	a, b := newMockComponent("a"), newMockComponent("b")
	t.Run("inner", func(t *testing.T) {
		testutil.T(t).Setup(a, b)
		if !a.started || !b.started {
			t.Error("expected components started")
		}
	})
	if !a.stopped || !b.stopped {
		t.Error("expected components stopped after subtest")
	}
}

func TestT_Reset(t *testing.T) {
	c := newMockComponent("db")
	testutil.T(t).Reset(c)
	if !c.resetCalled {
		t.Error("expected Reset to be called")
	}
}

func TestT_SnapshotRestore(t *testing.T) {
	c := newMockComponent("seq")
	c.state["default"] = 3
	h := testutil.T(t)

	snap := h.Snapshot(c)
	c.state["default"] = 9
	h.Restore(c, snap)

	if c.state["default"] != 3 {
		t.Errorf("state = %d, want 3", c.state["default"])
	}
}

func TestT_Isolate(t *testing.T) {
	c := newMockComponent("seq")
	c.state["default"] = 1
	t.Run("inner", func(t *testing.T) {
		testutil.T(t).Isolate(c)
		c.state["default"] = 50
	})
	if c.state["default"] != 1 {
		t.Errorf("state = %d, want 1 after isolated subtest", c.state["default"])
	}
}

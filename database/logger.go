package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kbukum/factorygirl/logger"
)

var gormLevels = map[string]gormlogger.LogLevel{
	"silent": gormlogger.Silent,
	"error":  gormlogger.Error,
	"warn":   gormlogger.Warn,
	"info":   gormlogger.Info,
}

// statementLogger sends GORM statement logs to the structured logger,
// tagged with the connection they ran on. Fixture inserts log at debug
// level so a verbose CLI run shows every generated row.
type statementLogger struct {
	log   *logger.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

// newStatementLogger builds the GORM logger for cfg. Unknown levels fall
// back to warn; Validate rejects them earlier.
func newStatementLogger(log *logger.Logger, cfg Config) *statementLogger {
	level, ok := gormLevels[cfg.LogLevel]
	if !ok {
		level = gormlogger.Warn
	}
	slow, _ := time.ParseDuration(cfg.SlowQueryThreshold)
	return &statementLogger{
		log:   log.WithComponent("gorm").WithFields(map[string]interface{}{"connection": cfg.Name}),
		level: level,
		slow:  slow,
	}
}

func (l *statementLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *statementLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Info {
		l.log.Info(fmt.Sprintf(msg, data...))
	}
}

func (l *statementLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.log.Warn(fmt.Sprintf(msg, data...))
	}
}

func (l *statementLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Error {
		l.log.Error(fmt.Sprintf(msg, data...))
	}
}

func (l *statementLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	stmt, rows := fc()
	fields := map[string]interface{}{
		"sql":                stmt,
		"rows":               rows,
		logger.FieldDuration: elapsed.String(),
	}

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		if l.level >= gormlogger.Error {
			fields[logger.FieldError] = err.Error()
			l.log.Error("Statement failed", fields)
		}
	case l.slow > 0 && elapsed > l.slow:
		if l.level >= gormlogger.Warn {
			l.log.Warn("Slow statement", fields)
		}
	case l.level >= gormlogger.Info:
		l.log.Debug("Statement", fields)
	}
}

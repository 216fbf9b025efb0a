package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/albin6/cellsphere/pkg/logger"
)

const defaultSlowQuery = 200 * time.Millisecond

// queryLogger forwards GORM diagnostics into the service logger. Only slow
// statements and real failures are reported; record-not-found is routine.
type queryLogger struct {
	logg      *logger.Logger
	level     gormlogger.LogLevel
	slowQuery time.Duration
}

func newQueryLogger(logg *logger.Logger, slowQuery time.Duration) gormlogger.Interface {
	if logg == nil {
		return gormlogger.Discard
	}
	if slowQuery <= 0 {
		slowQuery = defaultSlowQuery
	}
	return &queryLogger{logg: logg, level: gormlogger.Warn, slowQuery: slowQuery}
}

func (l *queryLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *queryLogger) Info(ctx context.Context, msg string, _ ...any) {
	if l.level >= gormlogger.Info {
		l.logg.Debug(ctx, "gorm: "+msg)
	}
}

func (l *queryLogger) Warn(ctx context.Context, msg string, _ ...any) {
	if l.level >= gormlogger.Warn {
		l.logg.Warn(ctx, "gorm: "+msg)
	}
}

func (l *queryLogger) Error(ctx context.Context, msg string, _ ...any) {
	if l.level >= gormlogger.Error {
		l.logg.Warn(ctx, "gorm: "+msg)
	}
}

func (l *queryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	slow := elapsed > l.slowQuery
	if !failed && !slow {
		return
	}

	sql, rows := fc()
	fields := map[string]any{
		"sql":         sql,
		"rows":        rows,
		"duration_ms": elapsed.Milliseconds(),
	}
	if failed {
		fields["error"] = err.Error()
	}
	ctx = l.logg.WithFields(ctx, fields)
	if failed && l.level >= gormlogger.Error {
		l.logg.Warn(ctx, "db.query_failed")
		return
	}
	if slow && l.level >= gormlogger.Warn {
		l.logg.Warn(ctx, "db.slow_query")
	}
}

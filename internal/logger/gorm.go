package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// SlowQuery is the duration above which a statement is logged as slow
const SlowQuery = 200 * time.Millisecond

// GormLogger hands gorm's statement log to zap. Statements go to debug,
// slow ones to warn, failures to error. A missing row is an expected
// outcome for the store and never logged as a failure.
type GormLogger struct {
	log   *zap.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

var _ gormlogger.Interface = (*GormLogger)(nil)

func NewGormLogger(log *zap.Logger, level gormlogger.LogLevel) *GormLogger {
	return &GormLogger{log: log.Named("sql"), level: level, slow: SlowQuery}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(_ context.Context, msg string, args ...any) {
	l.printf(gormlogger.Info, msg, args)
}

func (l *GormLogger) Warn(_ context.Context, msg string, args ...any) {
	l.printf(gormlogger.Warn, msg, args)
}

func (l *GormLogger) Error(_ context.Context, msg string, args ...any) {
	l.printf(gormlogger.Error, msg, args)
}

func (l *GormLogger) printf(at gormlogger.LogLevel, msg string, args []any) {
	if l.level < at {
		return
	}
	sugar := l.log.Sugar()
	switch at {
	case gormlogger.Error:
		sugar.Errorf(msg, args...)
	case gormlogger.Warn:
		sugar.Warnf(msg, args...)
	default:
		sugar.Infof(msg, args...)
	}
}

func (l *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	took := time.Since(begin)
	stmt := func() []zap.Field {
		sql, rows := fc()
		return []zap.Field{zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("took", took)}
	}

	if err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound) {
		if l.level >= gormlogger.Error {
			l.log.Error("statement failed", append(stmt(), zap.Error(err))...)
		}
		return
	}
	if took > l.slow && l.level >= gormlogger.Warn {
		l.log.Warn("slow statement", append(stmt(), zap.Duration("threshold", l.slow))...)
		return
	}
	if l.level >= gormlogger.Info {
		l.log.Debug("statement", stmt()...)
	}
}

// GormLevel maps the application log level to a gorm log level. SQL
// statements are only traced at debug.
func GormLevel(level string) gormlogger.LogLevel {
	switch level {
	case "debug":
		return gormlogger.Info
	case "error":
		return gormlogger.Error
	default:
		return gormlogger.Warn
	}
}

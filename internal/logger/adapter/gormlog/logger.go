// Package gormlog routes gorm's SQL logging through the global zerolog logger.
package gormlog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Config of the gorm logger adapter.
type Config struct {
	// Level is one of silent, error, warn, info. Empty means warn.
	Level string
	// SlowThreshold marks queries slower than this as warnings. Zero disables it.
	SlowThreshold time.Duration
	// IgnoreRecordNotFoundError skips logging gorm.ErrRecordNotFound.
	IgnoreRecordNotFoundError bool
}

// Logger implements gorm's logger.Interface on top of zerolog.
type Logger struct {
	level          gormlogger.LogLevel
	slowThreshold  time.Duration
	ignoreNotFound bool
}

var _ gormlogger.Interface = (*Logger)(nil)

// New creates a gorm logger adapter.
func New(cfg Config) *Logger {
	return &Logger{
		level:          ParseLevel(cfg.Level),
		slowThreshold:  cfg.SlowThreshold,
		ignoreNotFound: cfg.IgnoreRecordNotFoundError,
	}
}

// ParseLevel maps a config string onto a gorm log level.
func ParseLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

// LogMode returns a copy of the logger with another level.
func (l *Logger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	n := *l
	n.level = level

	return &n
}

// Info logs gorm info messages.
func (l *Logger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Info {
		l.event(ctx, zerolog.InfoLevel).Msgf(msg, data...)
	}
}

// Warn logs gorm warnings.
func (l *Logger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.event(ctx, zerolog.WarnLevel).Msgf(msg, data...)
	}
}

// Error logs gorm errors.
func (l *Logger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Error {
		l.event(ctx, zerolog.ErrorLevel).Msgf(msg, data...)
	}
}

// Trace logs one executed statement: errors, slow queries, or every
// statement at info level.
func (l *Logger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)

	switch {
	case err != nil && l.level >= gormlogger.Error && !(l.ignoreNotFound && errors.Is(err, gorm.ErrRecordNotFound)):
		sql, rows := fc()
		l.event(ctx, zerolog.ErrorLevel).Err(err).
			Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).
			Msg("sql error")
	case l.slowThreshold != 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.event(ctx, zerolog.WarnLevel).
			Dur("elapsed", elapsed).Dur("threshold", l.slowThreshold).Int64("rows", rows).Str("sql", sql).
			Msg("slow sql")
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.event(ctx, zerolog.DebugLevel).
			Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).
			Msg("sql")
	}
}

// event prefers a logger carried by ctx over the global one.
func (l *Logger) event(ctx context.Context, level zerolog.Level) *zerolog.Event {
	lg := log.Logger
	if ctxLogger := zerolog.Ctx(ctx); ctxLogger != nil && ctxLogger.GetLevel() != zerolog.Disabled {
		lg = *ctxLogger
	}

	return lg.WithLevel(level).Str("component", "gorm")
}

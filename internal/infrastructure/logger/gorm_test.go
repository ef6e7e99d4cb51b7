package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

func sqlFn(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestGormLogger_Trace(t *testing.T) {
	ctx := context.Background()

	t.Run("errors log at error level", func(t *testing.T) {
		base, logs := observed()
		gl := NewGormLogger(base, gormlogger.Warn)
		gl.Trace(ctx, time.Now(), sqlFn("SELECT 1", 0), errors.New("connection reset"))

		entries := logs.All()
		if assert.Len(t, entries, 1) {
			assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
			assert.Equal(t, "query failed", entries[0].Message)
		}
	})

	t.Run("record not found is ignored by default", func(t *testing.T) {
		base, logs := observed()
		NewGormLogger(base, gormlogger.Warn).Trace(ctx, time.Now(), sqlFn("SELECT 1", 0), gormlogger.ErrRecordNotFound)
		assert.Zero(t, logs.Len())

		NewGormLogger(base, gormlogger.Warn, WithRecordNotFound()).Trace(ctx, time.Now(), sqlFn("SELECT 1", 0), gormlogger.ErrRecordNotFound)
		assert.Equal(t, 1, logs.Len())
	})

	t.Run("slow queries warn", func(t *testing.T) {
		base, logs := observed()
		gl := NewGormLogger(base, gormlogger.Warn, WithSlowThreshold(10*time.Millisecond))
		gl.Trace(ctx, time.Now().Add(-time.Second), sqlFn("SELECT * FROM orders", 3), nil)

		entries := logs.All()
		if assert.Len(t, entries, 1) {
			assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
			assert.Equal(t, int64(3), entries[0].ContextMap()["rows"])
		}
	})

	t.Run("fast queries only log at info", func(t *testing.T) {
		base, logs := observed()
		NewGormLogger(base, gormlogger.Warn).Trace(ctx, time.Now(), sqlFn("SELECT 1", 1), nil)
		assert.Zero(t, logs.Len())

		NewGormLogger(base, gormlogger.Info).Trace(ctx, time.Now(), sqlFn("SELECT 1", 1), nil)
		assert.Equal(t, 1, logs.Len())
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		base, logs := observed()
		gl := NewGormLogger(base, gormlogger.Info).LogMode(gormlogger.Silent)
		gl.Trace(ctx, time.Now(), sqlFn("SELECT 1", 0), errors.New("boom"))
		assert.Zero(t, logs.Len())
	})
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, GormLevel("debug", true))
	assert.Equal(t, gormlogger.Warn, GormLevel("debug", false))
	assert.Equal(t, gormlogger.Warn, GormLevel("info", true))
	assert.Equal(t, gormlogger.Error, GormLevel("error", false))
}

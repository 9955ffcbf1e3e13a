package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLogger_Trace(t *testing.T) {
	sql := func() (string, int64) { return "SELECT 1", 1 }

	t.Run("logs errors but not record-not-found", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		g := NewGormLogger(zap.New(core), gormlogger.Warn, 0)

		g.Trace(context.Background(), time.Now(), sql, gormlogger.ErrRecordNotFound)
		g.Trace(context.Background(), time.Now(), sql, errors.New("deadlock"))

		assert.Equal(t, 0, recorded.FilterMessage("sql").Len())
		assert.Equal(t, 1, recorded.FilterMessage("sql error").Len())
	})

	t.Run("warns on slow statements", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		g := NewGormLogger(zap.New(core), gormlogger.Warn, time.Millisecond)

		g.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)

		slow := recorded.FilterMessage("slow sql").All()
		assert.Len(t, slow, 1)
		assert.Equal(t, "SELECT 1", slow[0].ContextMap()["sql"])
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		g := NewGormLogger(zap.New(core), gormlogger.Info, 0).LogMode(gormlogger.Silent)

		g.Trace(context.Background(), time.Now(), sql, errors.New("x"))
		assert.Equal(t, 0, recorded.Len())
	})

	t.Run("info level logs every statement at debug", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		g := NewGormLogger(zap.New(core), gormlogger.Info, 0)

		g.Trace(WithRequestID(context.Background(), "r1"), time.Now(), sql, nil)
		entries := recorded.FilterMessage("sql").All()
		assert.Len(t, entries, 1)
		assert.Equal(t, "r1", entries[0].ContextMap()["request_id"])
	})
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, GormLevel("silent"))
	assert.Equal(t, gormlogger.Info, GormLevel("debug"))
	assert.Equal(t, gormlogger.Warn, GormLevel(""))
}

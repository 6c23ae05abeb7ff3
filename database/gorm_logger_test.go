package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

func TestGormLoggerSkipsRecordNotFound(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core))
	query := func() (string, int64) { return "SELECT * FROM stock_items WHERE barcode = 'x'", 0 }

	gl.Trace(context.Background(), time.Now(), query, gorm.ErrRecordNotFound)
	assert.Zero(t, logs.Len())

	gl.Trace(context.Background(), time.Now(), query, errors.New("no such table: stock_items"))
	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "gorm", entries[0].LoggerName)
		assert.Contains(t, entries[0].Message, "no such table")
	}
}

func TestOpenUsesSettingsLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	db, err := Open(Settings{Driver: "sqlite", SQLitePath: ":memory:", Log: zap.New(core)})
	if !assert.NoError(t, err) {
		return
	}

	var n int
	err = db.Raw("SELECT count(*) FROM missing_table").Scan(&n).Error
	assert.Error(t, err)
	assert.Equal(t, 1, logs.Filter(func(e observer.LoggedEntry) bool { return e.LoggerName == "gorm" }).Len())
}

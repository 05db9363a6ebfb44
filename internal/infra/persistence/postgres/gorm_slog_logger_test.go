package postgres

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"folio/config"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newBufferedGormLogger(cfg *config.Config) (*gormSlogLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	return newGormSlogLogger(base, cfg).(*gormSlogLogger), &buf
}

func TestGormSlogLogger_ParamsFilter(t *testing.T) {
	l, _ := newBufferedGormLogger(&config.Config{})

	sql, params := l.ParamsFilter(context.Background(), "UPDATE users SET password = $1", "$2a$12$secret")
	assert.Equal(t, "UPDATE users SET password = $1", sql)
	assert.Nil(t, params)

	cfg := &config.Config{}
	cfg.Env.Env = config.EnvDevelop
	cfg.Env.Debug = true
	debug, _ := newBufferedGormLogger(cfg)

	_, params = debug.ParamsFilter(context.Background(), "SELECT 1 WHERE id = $1", 7)
	assert.Equal(t, []any{7}, params)
}

func TestGormSlogLogger_Trace(t *testing.T) {
	l, buf := newBufferedGormLogger(&config.Config{})
	sqlFn := func() (string, int64) { return "SELECT * FROM users", 1 }

	l.Trace(context.Background(), time.Now(), sqlFn, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	l.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn, nil)
	assert.Contains(t, buf.String(), "GORM slow query")

	buf.Reset()
	l.LogMode(logger.Silent).Trace(context.Background(), time.Now(), sqlFn, assert.AnError)
	assert.Empty(t, buf.String())
}

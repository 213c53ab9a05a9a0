package logger_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/paulbousquet/fomcscrape/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_DefaultsAndConsole(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "log.json")

	l, err := logger.New(logger.Config{OutputPaths: []string{out}})
	require.NoError(t, err)
	l.Info("hello", logger.String("k", "v"))
	require.NoError(t, l.Sync())

	c, err := logger.New(logger.Config{Encoding: logger.EncodingConsole, Level: "debug", OutputPaths: []string{out}})
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestSetDefaults(t *testing.T) {
	t.Parallel()

	cfg := logger.Config{Encoding: "xml"}
	cfg.SetDefaults()

	assert.Equal(t, logger.DefaultLevel, cfg.Level)
	assert.Equal(t, logger.EncodingJSON, cfg.Encoding)
	assert.Equal(t, logger.DefaultOutputPaths, cfg.OutputPaths)
}

func TestWith_AttachesFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	l := logger.NewFromZap(zap.New(core)).With(logger.RunID("run-1"))

	l.Warn("Failed to fetch page", logger.Year(1990), logger.URL("https://example.com"), logger.Error(errors.New("boom")))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "run-1", fields["run_id"])
	assert.Equal(t, int64(1990), fields["year"])
	assert.Equal(t, "https://example.com", fields["url"])
	assert.Equal(t, "boom", fields["error"])
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	nop := logger.NewNop()
	ctx := logger.WithContext(context.Background(), nop)
	assert.Same(t, nop, logger.FromContext(ctx))

	fallback := logger.FromContext(context.Background())
	require.NotNil(t, fallback)
	fallback.Debug("filtered at warn level")
}

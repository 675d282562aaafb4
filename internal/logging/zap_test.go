package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedZap(t *testing.T) (*ZapLogger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return NewZapLoggerFrom(zap.New(core)), logs
}

func TestZapLogger_LevelsAndFields(t *testing.T) {
	log, logs := newObservedZap(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", "2")
	log.Warn(ctx, "wrn")
	log.Error(ctx, "err", "d", true)

	entries := logs.All()
	require.Len(t, entries, 4)

	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "dbg", entries[0].Message)
	assert.EqualValues(t, 1, entries[0].ContextMap()["a"])

	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, "2", entries[1].ContextMap()["b"])

	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
	assert.Equal(t, true, entries[3].ContextMap()["d"])
}

func TestZapLogger_With_AddsFields(t *testing.T) {
	log, logs := newObservedZap(t)

	log.With("module", "http").Info(context.Background(), "hello", "k", "v")

	entries := logs.FilterMessage("hello").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "http", fields["module"])
	assert.Equal(t, "v", fields["k"])
}

func TestNew_SelectsBackend(t *testing.T) {
	l, sync, err := New(BackendSlog, false)
	require.NoError(t, err)
	assert.IsType(t, &SlogLogger{}, l)
	assert.NoError(t, sync())

	l, _, err = New(BackendZap, true)
	require.NoError(t, err)
	assert.IsType(t, &ZapLogger{}, l)

	_, _, err = New("logrus", false)
	require.Error(t, err)
}

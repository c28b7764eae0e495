package logging

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for name, want := range tests {
		assert.Equal(t, want, ParseLevel(name), name)
	}
}

func TestNewTagsRunID(t *testing.T) {
	for _, dev := range []bool{true, false} {
		l, err := New(Config{Level: "warn", Development: dev})
		require.NoError(t, err)

		_, err = uuid.Parse(l.RunID)
		assert.NoError(t, err)
		assert.Equal(t, zapcore.WarnLevel, l.Level())
	}
}

func TestSetLevel(t *testing.T) {
	l, err := New(Config{Level: "info"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))

	l.SetLevel("debug")
	assert.Equal(t, zapcore.DebugLevel, l.Level())
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	child := l.Named("child")
	l.SetLevel("error")
	assert.False(t, child.Core().Enabled(zapcore.WarnLevel))
}

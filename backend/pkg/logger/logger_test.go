package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInit(t *testing.T) {
	t.Cleanup(func() { Logger = nil })

	require.NoError(t, Init("production", "warn"))
	assert.True(t, Get().Core().Enabled(zapcore.WarnLevel))
	assert.False(t, Get().Core().Enabled(zapcore.InfoLevel))

	require.NoError(t, Init("development", ""))
	assert.True(t, Get().Core().Enabled(zapcore.DebugLevel))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error", zapcore.InfoLevel))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("loud", zapcore.InfoLevel))
	assert.Equal(t, zapcore.DebugLevel, parseLevel("", zapcore.DebugLevel))
}

func TestGet_Uninitialized(t *testing.T) {
	Logger = nil
	assert.NotNil(t, Get())
}

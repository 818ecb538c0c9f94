package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("should build logger at requested level", func(t *testing.T) {
		l, err := New("warn", false)
		require.NoError(t, err)

		assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
	})

	t.Run("should build development logger", func(t *testing.T) {
		l, err := New("debug", true)
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("should reject unknown level", func(t *testing.T) {
		l, err := New("loud", false)
		assert.Error(t, err)
		assert.Nil(t, l)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))

	l := zap.NewExample()
	assert.Same(t, l, OrNop(l))
}

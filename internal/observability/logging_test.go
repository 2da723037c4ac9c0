package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/spec-kit/cinemax-auth/internal/config"
)

func TestNewLogger(t *testing.T) {
	app := config.AppConfig{Name: "cinemax-auth", Version: "1.0.0", Env: "test"}

	tests := []struct {
		name  string
		cfg   config.LoggerConfig
		level zapcore.Level
	}{
		{"debug json", config.LoggerConfig{Level: "DEBUG", Format: "json"}, zapcore.DebugLevel},
		{"warn console", config.LoggerConfig{Level: "warn", Format: "console"}, zapcore.WarnLevel},
		{"unknown level falls back to info", config.LoggerConfig{Level: "chatty"}, zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.cfg, app)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.level))
			assert.False(t, logger.Core().Enabled(tt.level-1))
		})
	}
}

package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		jsonOutput bool
		verbosity  int
	}{
		{name: "JSON output mode", jsonOutput: true, verbosity: 0},
		{name: "Console output mode", jsonOutput: false, verbosity: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Logger = nil
			JSONOutput = false

			require.NoError(t, Initialize(tt.jsonOutput, tt.verbosity))
			require.NotNil(t, Logger)
			assert.Equal(t, tt.jsonOutput, JSONOutput)
			assert.Equal(t, tt.verbosity >= VerbosityDebug, Logger.Desugar().Core().Enabled(zapcore.DebugLevel))

			Cleanup()
		})
	}
}

func TestVerbosityToLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		want      zapcore.Level
		name      string
	}{
		{0, zapcore.WarnLevel, "User"},
		{1, zapcore.InfoLevel, "Info (-v)"},
		{2, zapcore.DebugLevel, "Debug (-vv)"},
		{5, zapcore.DebugLevel, "Debug (-vv)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, VerbosityToLevel(tt.verbosity), "verbosity %d", tt.verbosity)
		assert.Equal(t, tt.name, LevelName(tt.verbosity))
	}
}

func TestWrappersToleratesNilLogger(t *testing.T) {
	Logger = nil
	defer func() { Logger = nil; _ = Initialize(false, 0) }()

	assert.NotPanics(t, func() {
		Infow("info")
		Debugw("debug", FieldType, "Counter")
		Warnw("warn")
		Errorw("error")
		Cleanup()
	})
}

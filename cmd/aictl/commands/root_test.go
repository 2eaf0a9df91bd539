package commands

import (
	"log/slog"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdmartin/aictl/internal/errors"
)

func TestLevelFromVerbosity(t *testing.T) {
	tests := []struct {
		name  string
		v     int
		quiet bool
		want  slog.Level
	}{
		{"default", 0, false, slog.LevelWarn},
		{"single -v", 1, false, slog.LevelInfo},
		{"double -v", 2, false, slog.LevelDebug},
		{"many -v", 5, false, slog.LevelDebug},
		{"quiet wins", 3, true, slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, levelFromVerbosity(tt.v, tt.quiet))
		})
	}
}

func TestLevelFromVerbosity_DebugEnv(t *testing.T) {
	t.Setenv("AICTL_DEBUG", "1")
	assert.Equal(t, slog.LevelDebug, levelFromVerbosity(0, false))
}

func TestResolveSyncClients_FlagWinsAndDedupes(t *testing.T) {
	t.Cleanup(func() { syncClients = nil })
	syncClients = []string{"claude-code", "gemini", "claude-code"}

	targets, err := resolveSyncClients([]string{"codex"})
	require.NoError(t, err)
	assert.Equal(t, []string{"claude-code", "gemini"}, targets)
}

func TestResolveSyncClients_ConfiguredDefault(t *testing.T) {
	targets, err := resolveSyncClients([]string{"codex", "codex"})
	require.NoError(t, err)
	assert.Equal(t, []string{"codex"}, targets)
}

func TestResolveSyncClients_SettingsFallback(t *testing.T) {
	viper.Set("default_clients", []string{"gemini"})
	t.Cleanup(viper.Reset)

	targets, err := resolveSyncClients(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"gemini"}, targets)
}

func TestResolveSyncClients_UnknownName(t *testing.T) {
	_, err := resolveSyncClients([]string{"vscode"})
	require.Error(t, err)

	var exitErr *errors.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, errors.ExitValidation, exitErr.Code)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "long st...", truncate("long string here", 10))
	assert.Equal(t, "lo", truncate("long", 2))
}

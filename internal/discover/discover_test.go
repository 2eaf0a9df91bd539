package discover

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdmartin/aictl/internal/client"
	"github.com/jdmartin/aictl/internal/config"
	"github.com/jdmartin/aictl/internal/envprobe"
	"github.com/jdmartin/aictl/internal/execx"
)

var errNotOnPath = errors.New("executable file not found in $PATH")

func noneOnPath(string) (string, error) { return "", errNotOnPath }

func plainLinuxProbe(t *testing.T) *envprobe.Probe {
	t.Helper()
	return envprobe.NewWith(
		envprobe.WithGOOS("linux"),
		envprobe.WithEnv(map[string]string{}),
		envprobe.WithProcVersion(filepath.Join(t.TempDir(), "missing")),
	)
}

func wslProbe(t *testing.T) *envprobe.Probe {
	t.Helper()
	return envprobe.NewWith(
		envprobe.WithGOOS("linux"),
		envprobe.WithEnv(map[string]string{
			"WSL_DISTRO_NAME": "Ubuntu",
			"USERPROFILE":     `C:\Users\jane`,
		}),
		envprobe.WithDirExists(func(path string) bool { return path == "/mnt/c/Users/jane" }),
	)
}

func mustClient(t *testing.T, name string) client.Client {
	t.Helper()
	c, err := client.Lookup(name)
	require.NoError(t, err)
	return c
}

func TestDetect_Native(t *testing.T) {
	runner := execx.NewRunnerWithLookPath(func(name string) (string, error) {
		if name == "claude" {
			return "/usr/local/bin/claude", nil
		}
		return "", errNotOnPath
	})
	svc := NewService(plainLinuxProbe(t), runner, nil)

	det := svc.Detect(context.Background(), mustClient(t, client.ClaudeCode))

	assert.True(t, det.Found())
	assert.Equal(t, SourceNative, det.Source)
	assert.Equal(t, "/usr/local/bin/claude", det.BinaryPath)
	assert.Empty(t, det.Warnings)
}

func TestDetect_ConfigOverrideWins(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "claude")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755))

	cfg := &config.EffectiveConfig{
		Clients: map[string]config.ClientOverride{
			client.ClaudeCode: {Binary: bin},
		},
	}
	// PATH probe would also succeed; the override must still win.
	runner := execx.NewRunnerWithLookPath(func(string) (string, error) {
		return "/usr/local/bin/claude", nil
	})
	svc := NewService(plainLinuxProbe(t), runner, cfg)

	det := svc.Detect(context.Background(), mustClient(t, client.ClaudeCode))

	assert.Equal(t, SourceConfigOverride, det.Source)
	assert.Equal(t, bin, det.BinaryPath)
}

func TestDetect_ConfigOverrideMissingWarns(t *testing.T) {
	cfg := &config.EffectiveConfig{
		Clients: map[string]config.ClientOverride{
			client.ClaudeCode: {Binary: "/nonexistent/claude"},
		},
	}
	svc := NewService(plainLinuxProbe(t), execx.NewRunnerWithLookPath(noneOnPath), cfg)

	det := svc.Detect(context.Background(), mustClient(t, client.ClaudeCode))

	assert.Equal(t, SourceConfigOverride, det.Source)
	assert.NotEmpty(t, det.Warnings)
}

func TestDetect_NothingFoundDegrades(t *testing.T) {
	svc := NewService(plainLinuxProbe(t), execx.NewRunnerWithLookPath(noneOnPath), nil)

	det := svc.Detect(context.Background(), mustClient(t, client.Gemini))

	assert.False(t, det.Found())
	assert.NotEmpty(t, det.Warnings)
	assert.Empty(t, det.Source)
}

func TestDetect_WSL2Fallback(t *testing.T) {
	svc := NewService(wslProbe(t), execx.NewRunnerWithLookPath(noneOnPath), nil)
	winBin := filepath.Join("/mnt/c/Users/jane", "AppData", "Roaming", "npm", "claude.cmd")
	svc.exists = func(path string) bool { return path == winBin }

	det := svc.Detect(context.Background(), mustClient(t, client.ClaudeCode))

	assert.Equal(t, SourceWSL2Fallback, det.Source)
	assert.Equal(t, winBin, det.BinaryPath)
	assert.Equal(t, winBin, det.WindowsPath)
	// The failed native probe is still recorded.
	assert.NotEmpty(t, det.Warnings)
}

func TestDetect_WSL2FallbackPathAbsentWarns(t *testing.T) {
	svc := NewService(wslProbe(t), execx.NewRunnerWithLookPath(noneOnPath), nil)
	svc.exists = func(string) bool { return false }

	det := svc.Detect(context.Background(), mustClient(t, client.ClaudeCode))

	assert.False(t, det.Found())
	// One warning for PATH, one per fallback candidate.
	assert.GreaterOrEqual(t, len(det.Warnings), 2)
}

func TestDetectAll_RegistryOrder(t *testing.T) {
	svc := NewService(plainLinuxProbe(t), execx.NewRunnerWithLookPath(noneOnPath), nil)

	results := svc.DetectAll(context.Background())

	require.Len(t, results, 3)
	for i, c := range client.All() {
		assert.Equal(t, c.Name, results[i].Client)
	}
}

// Package discover locates client binaries on the host.
//
// Detection for one client tries, in order: an explicit configuration
// override (which wins unconditionally), a native PATH probe, and, when
// running inside WSL2, a fallback probe against the Windows-side
// installation reached through the /mnt drive mounts.
//
// Detection never fails for a single client's absence. A client that
// cannot be found yields a [Detection] with no path and a warning
// describing what was tried, so callers can keep going.
package discover

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jdmartin/aictl/internal/client"
	"github.com/jdmartin/aictl/internal/config"
	"github.com/jdmartin/aictl/internal/envprobe"
	"github.com/jdmartin/aictl/internal/execx"
)

// Source tags how a binary was located.
type Source string

const (
	// SourceNative means the binary was found on PATH.
	SourceNative Source = "native"

	// SourceConfigOverride means an explicit path from configuration was
	// used, skipping the native probe.
	SourceConfigOverride Source = "config-override"

	// SourceWSL2Fallback means the Windows-side installation was found
	// from inside WSL2.
	SourceWSL2Fallback Source = "wsl2-fallback"
)

// Detection is the per-client discovery result.
type Detection struct {
	// Client is the client identifier.
	Client string `json:"client"`

	// BinaryPath is the resolved executable path; empty when the client
	// was not found.
	BinaryPath string `json:"binary_path,omitempty"`

	// Version is the first line of the binary's version output, when the
	// probe could obtain one.
	Version string `json:"version,omitempty"`

	// Source tags which probe produced BinaryPath.
	Source Source `json:"source,omitempty"`

	// WindowsPath records the Windows-side path for wsl2-fallback hits.
	WindowsPath string `json:"windows_path,omitempty"`

	// Warnings describes failed probes. Non-empty when BinaryPath is.
	Warnings []string `json:"warnings,omitempty"`
}

// Found reports whether the client's binary was located.
func (d Detection) Found() bool {
	return d.BinaryPath != ""
}

// Service composes the native and WSL2 probes per configured client.
type Service struct {
	probe  *envprobe.Probe
	runner *execx.Runner
	cfg    *config.EffectiveConfig
	exists func(string) bool
}

// NewService creates a discovery service. cfg may be nil when no
// configuration is loaded; overrides are then ignored.
func NewService(probe *envprobe.Probe, runner *execx.Runner, cfg *config.EffectiveConfig) *Service {
	return &Service{
		probe:  probe,
		runner: runner,
		cfg:    cfg,
		exists: fileExists,
	}
}

// Detect probes for one client's binary. It never returns an error;
// absence degrades to a Detection with warnings.
func (s *Service) Detect(ctx context.Context, c client.Client) Detection {
	det := Detection{Client: c.Name}

	// An explicit override path wins unconditionally.
	if override, ok := s.override(c.Name); ok {
		det.Source = SourceConfigOverride
		det.BinaryPath = override
		if !s.exists(override) {
			det.Warnings = append(det.Warnings,
				fmt.Sprintf("configured binary %s does not exist", override))
		} else {
			det.Version = s.version(ctx, override, c.VersionArgs)
		}
		return det
	}

	// Native probe: candidate names on PATH.
	for _, bin := range c.Binaries {
		path, err := s.runner.LookPath(bin)
		if err != nil {
			continue
		}
		det.Source = SourceNative
		det.BinaryPath = path
		det.Version = s.version(ctx, path, c.VersionArgs)
		return det
	}
	det.Warnings = append(det.Warnings,
		fmt.Sprintf("%s not found on PATH", strings.Join(c.Binaries, ", ")))

	// WSL2 fallback: probe the Windows installation through /mnt.
	if s.probe.IsWSL2() {
		winHome, err := s.probe.WindowsUserProfile()
		if err != nil {
			det.Warnings = append(det.Warnings, err.Error())
			return det
		}
		for _, sub := range c.WindowsSubpaths {
			candidate := filepath.Join(winHome, sub)
			if s.exists(candidate) {
				det.Source = SourceWSL2Fallback
				det.BinaryPath = candidate
				det.WindowsPath = candidate
				return det
			}
			det.Warnings = append(det.Warnings,
				fmt.Sprintf("wsl2 fallback path %s does not exist", candidate))
		}
	}

	return det
}

// DetectAll probes every supported client concurrently and returns results
// in registry order.
func (s *Service) DetectAll(ctx context.Context) []Detection {
	clients := client.All()
	results := make([]Detection, len(clients))

	var wg sync.WaitGroup
	for i, c := range clients {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = s.Detect(ctx, c)
		}()
	}
	wg.Wait()

	return results
}

// override returns the configured binary path for a client, if any.
func (s *Service) override(name string) (string, bool) {
	if s.cfg == nil {
		return "", false
	}
	ov, ok := s.cfg.ClientOverrideFor(name)
	if !ok || ov.Binary == "" {
		return "", false
	}
	return ov.Binary, true
}

// version invokes the binary's version flag and returns the first line of
// its output. Failures are silent; a missing version never fails detection.
func (s *Service) version(ctx context.Context, binPath string, args []string) string {
	if len(args) == 0 {
		return ""
	}
	res, err := s.runner.Run(ctx, binPath, args...)
	if err != nil || res.ExitCode != 0 {
		return ""
	}
	line, _, _ := strings.Cut(res.Stdout, "\n")
	return strings.TrimSpace(line)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

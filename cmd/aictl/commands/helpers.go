package commands

import (
	"os"

	"github.com/fatih/color"

	"github.com/jdmartin/aictl/internal/config"
	"github.com/jdmartin/aictl/internal/doctor"
	"github.com/jdmartin/aictl/internal/envprobe"
	"github.com/jdmartin/aictl/internal/errors"
	"github.com/jdmartin/aictl/internal/lock"
	"github.com/jdmartin/aictl/internal/paths"
)

// environment is the resolved context shared by every command: where the
// configuration layers live and what machine we are on.
type environment struct {
	probe       *envprobe.Probe
	globalRoot  string
	projectRoot string
}

// resolveEnvironment probes the host and locates the global and project
// configuration roots. The project root is empty when the working
// directory is not inside a project.
func resolveEnvironment() (*environment, error) {
	probe := envprobe.New()

	globalRoot, err := paths.GlobalRoot(probe)
	if err != nil {
		return nil, errors.NewSystemError(err, "Set HOME or AICTL_CONFIG_HOME")
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.NewSystemError(err, "")
	}

	return &environment{
		probe:       probe,
		globalRoot:  globalRoot,
		projectRoot: paths.FindProjectRoot(cwd),
	}, nil
}

// loadConfig merges the global and project configuration layers and
// validates the result. Errors carry the exit code for their category.
func (e *environment) loadConfig() (*config.EffectiveConfig, error) {
	projectPath := ""
	if e.projectRoot != "" {
		projectPath = paths.ProjectConfigPath(e.projectRoot)
	}

	cfg, err := config.Load(paths.ConfigPath(e.globalRoot), projectPath)
	if err != nil {
		return nil, errors.NewConfigError(err)
	}
	cfg.GlobalRoot = e.globalRoot
	cfg.ProjectRoot = e.projectRoot

	if err := config.Validate(cfg); err != nil {
		return nil, errors.NewValidationError(err)
	}
	return cfg, nil
}

// acquireLock takes the process lock for the given command. Contention
// maps to the lock exit code; anything else is a system failure.
func acquireLock(command string) (*lock.Lock, error) {
	l, err := lock.Acquire(paths.LockPath(), command)
	if err != nil {
		var busy *lock.BusyError
		if errors.As(err, &busy) {
			return nil, errors.NewLockError(busy)
		}
		return nil, errors.NewSystemError(err, "")
	}
	return l, nil
}

// statusIcon renders a colored severity marker.
func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return color.GreenString("✓")
	case doctor.SeverityInfo:
		return color.CyanString("ℹ")
	case doctor.SeverityWarning:
		return color.YellowString("⚠")
	case doctor.SeverityError:
		return color.RedString("✗")
	default:
		return "?"
	}
}

// truncate shortens a string to maxLen characters, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

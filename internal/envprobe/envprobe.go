// Package envprobe reports on the host environment: platform, home
// directory, environment variables, and whether the process is running
// inside WSL2 on Windows.
//
// The package is a pure query layer with no internal state. Discovery and
// diagnostics consume it instead of reaching for os directly so tests can
// substitute a fake probe.
package envprobe

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"
)

// Platform identifies the host operating system.
type Platform string

const (
	PlatformLinux   Platform = "linux"
	PlatformDarwin  Platform = "darwin"
	PlatformWindows Platform = "windows"
	PlatformOther   Platform = "other"
)

// ErrWindowsHomeNotFound indicates the Windows-side user profile could not
// be located from inside WSL2.
var ErrWindowsHomeNotFound = errors.New("windows user profile not found")

// Probe answers environment queries. The zero value is not usable; use
// [New] for the real host probe or construct a fake in tests.
type Probe struct {
	getenv      func(string) (string, bool)
	home        func() (string, error)
	goos        string
	procVersion string
	statDir     func(string) bool
}

// New returns a probe backed by the real process environment.
func New() *Probe {
	return &Probe{
		getenv:      os.LookupEnv,
		home:        os.UserHomeDir,
		goos:        runtime.GOOS,
		procVersion: "/proc/version",
		statDir:     dirExists,
	}
}

// Option customizes a probe, primarily for tests.
type Option func(*Probe)

// WithEnv replaces environment variable lookup.
func WithEnv(env map[string]string) Option {
	return func(p *Probe) {
		p.getenv = func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		}
	}
}

// WithHome replaces home directory resolution.
func WithHome(home string) Option {
	return func(p *Probe) {
		p.home = func() (string, error) { return home, nil }
	}
}

// WithGOOS replaces the reported operating system.
func WithGOOS(goos string) Option {
	return func(p *Probe) { p.goos = goos }
}

// WithProcVersion replaces the path of the kernel version file consulted
// by WSL2 detection.
func WithProcVersion(path string) Option {
	return func(p *Probe) { p.procVersion = path }
}

// WithDirExists replaces the directory existence check used when locating
// the Windows user profile.
func WithDirExists(fn func(string) bool) Option {
	return func(p *Probe) { p.statDir = fn }
}

// NewWith returns a probe with the given options applied over [New].
func NewWith(opts ...Option) *Probe {
	p := New()
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Platform returns the host platform.
func (p *Probe) Platform() Platform {
	switch p.goos {
	case "linux":
		return PlatformLinux
	case "darwin":
		return PlatformDarwin
	case "windows":
		return PlatformWindows
	default:
		return PlatformOther
	}
}

// Home returns the current user's home directory.
func (p *Probe) Home() (string, error) {
	home, err := p.home()
	if err != nil {
		return "", errors.Wrap(err, "resolving home directory")
	}
	return home, nil
}

// Getenv returns the value of an environment variable, or "" when unset.
func (p *Probe) Getenv(key string) string {
	v, _ := p.getenv(key)
	return v
}

// LookupEnv returns an environment variable and whether it is set.
func (p *Probe) LookupEnv(key string) (string, bool) {
	return p.getenv(key)
}

// IsWSL2 reports whether the process runs inside a WSL2 distribution.
// WSL exports WSL_DISTRO_NAME and WSL_INTEROP into every session; as a
// fallback the kernel version string mentions "microsoft".
func (p *Probe) IsWSL2() bool {
	if p.goos != "linux" {
		return false
	}
	if _, ok := p.getenv("WSL_DISTRO_NAME"); ok {
		return true
	}
	if _, ok := p.getenv("WSL_INTEROP"); ok {
		return true
	}
	data, err := os.ReadFile(p.procVersion)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(data)), "microsoft")
}

// WindowsUserProfile locates the Windows-side user profile directory from
// inside WSL2. When Windows interop exports USERPROFILE it is translated
// to its /mnt mount point; otherwise the profile is guessed from the Linux
// username. Returns ErrWindowsHomeNotFound when no candidate exists.
func (p *Probe) WindowsUserProfile() (string, error) {
	var candidates []string

	if profile, ok := p.getenv("USERPROFILE"); ok && profile != "" {
		if translated := TranslateWindowsPath(profile); translated != "" {
			candidates = append(candidates, translated)
		}
	}
	if user, ok := p.getenv("USER"); ok && user != "" {
		candidates = append(candidates, filepath.Join("/mnt/c/Users", user))
	}

	for _, c := range candidates {
		if p.statDir(c) {
			return c, nil
		}
	}
	return "", errors.Wrapf(ErrWindowsHomeNotFound, "tried %v", candidates)
}

// TranslateWindowsPath converts a Windows drive path (C:\Users\jane) into
// its WSL mount point (/mnt/c/Users/jane). Returns "" for paths without a
// drive letter.
func TranslateWindowsPath(winPath string) string {
	if len(winPath) < 2 || winPath[1] != ':' {
		return ""
	}
	drive := strings.ToLower(winPath[:1])
	rest := strings.ReplaceAll(winPath[2:], `\`, "/")
	return "/mnt/" + drive + rest
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

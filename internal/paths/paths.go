package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"

	"github.com/jdmartin/aictl/internal/envprobe"
)

// AppName is used for XDG subdirectories and the tool's own settings file.
const AppName = "aictl"

// GlobalDirName is the fixed subdirectory of the home directory holding
// the user-owned configuration repository.
const GlobalDirName = ".aiconfig"

// ProjectMarker is the file that marks a project root. The marker is also
// the project-scope configuration document.
const ProjectMarker = ".aiconfig.yaml"

// ConfigHomeEnv overrides the global root when set.
const ConfigHomeEnv = "AICTL_CONFIG_HOME"

// Document and directory names under the global root.
const (
	ConfigFileName = "config.yaml"
	ModelsFileName = "models.yaml"
	AgentsDirName  = "agents"
	SkillsDirName  = "skills"
)

// ErrHomeDirNotFound indicates the user's home directory could not be determined.
var ErrHomeDirNotFound = errors.New("home directory not found")

// DefaultDirPerm is the default permission for newly created directories (private).
const DefaultDirPerm = 0o700

// GlobalRoot returns the global configuration root for the given probe.
// AICTL_CONFIG_HOME wins when set; otherwise home + ".aiconfig".
func GlobalRoot(probe *envprobe.Probe) (string, error) {
	if override, ok := probe.LookupEnv(ConfigHomeEnv); ok && override != "" {
		return override, nil
	}
	home, err := probe.Home()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return filepath.Join(home, GlobalDirName), nil
}

// ConfigPath returns the global configuration document path.
func ConfigPath(globalRoot string) string {
	return filepath.Join(globalRoot, ConfigFileName)
}

// ModelsPath returns the model mapping document path.
func ModelsPath(globalRoot string) string {
	return filepath.Join(globalRoot, ModelsFileName)
}

// AgentsDir returns the agent definitions directory.
func AgentsDir(globalRoot string) string {
	return filepath.Join(globalRoot, AgentsDirName)
}

// SkillsDir returns the skills directory.
func SkillsDir(globalRoot string) string {
	return filepath.Join(globalRoot, SkillsDirName)
}

// LockPath returns the path of the cross-invocation lock file.
// It lives under the XDG cache home: <CacheHome>/aictl/aictl.lock.
func LockPath() string {
	return filepath.Join(xdg.CacheHome, AppName, AppName+".lock")
}

// SettingsDir returns the directory searched for the tool's own settings
// file: <ConfigHome>/aictl.
func SettingsDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// FindProjectRoot walks upward from startDir through parent directories
// until a .aiconfig.yaml marker is found. Returns the directory containing
// the marker, or "" when the filesystem root is reached without a match.
func FindProjectRoot(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}
	for {
		marker := filepath.Join(dir, ProjectMarker)
		if info, err := os.Stat(marker); err == nil && info.Mode().IsRegular() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// ProjectConfigPath returns the project configuration document path for a
// project root, or "" when projectRoot is empty.
func ProjectConfigPath(projectRoot string) string {
	if projectRoot == "" {
		return ""
	}
	return filepath.Join(projectRoot, ProjectMarker)
}

// EnsureDir creates the directory and any necessary parents.
// If perm is 0, DefaultDirPerm (0700) is used. Idempotent.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

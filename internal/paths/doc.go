// Package paths resolves the configuration roots used by aictl.
//
// The global root is a fixed subdirectory of the user's home directory
// (~/.aiconfig by default, overridable via AICTL_CONFIG_HOME). The project
// root is discovered by walking upward from the working directory until a
// .aiconfig.yaml marker file is found.
//
// Resolution is a pure function of the environment and the filesystem;
// nothing is cached between calls.
//
// The lock file lives under the XDG cache home (via github.com/adrg/xdg)
// rather than the config root, so that a fresh checkout of the config
// repository never carries a stale lock.
package paths

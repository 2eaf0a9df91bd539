// Package client defines the closed set of AI coding-assistant clients
// that aictl manages.
//
// Each supported client (claude-code, codex, gemini) is described by a
// static entry: its binary names, per-user agent directory, the Windows
// installation subpaths probed by the WSL2 fallback, and the location and
// format of its own MCP configuration file.
//
// The set is fixed at compile time. Adding a client means adding an entry
// to the table; nothing dispatches on open-ended names.
package client

import (
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// Client identifiers for supported AI coding assistants.
const (
	ClaudeCode = "claude-code"
	Codex      = "codex"
	Gemini     = "gemini"
)

// ErrUnknownClient indicates a client name outside the supported set.
var ErrUnknownClient = errors.New("unknown client")

// MCPFormat describes the serialization of a client's own MCP config file.
type MCPFormat string

const (
	// MCPFormatHuJSON is JSON with comments and trailing commas, as
	// written by Claude Code.
	MCPFormatHuJSON MCPFormat = "hujson"
	// MCPFormatJSON is plain JSON.
	MCPFormatJSON MCPFormat = "json"
	// MCPFormatTOML is TOML, as used by Gemini CLI settings.
	MCPFormatTOML MCPFormat = "toml"
)

// Client describes one supported AI coding assistant.
type Client struct {
	// Name is the client identifier (claude-code, codex, gemini).
	Name string

	// Binaries lists executable names probed on PATH, in preference order.
	Binaries []string

	// VersionArgs are the arguments appended to the binary to print its
	// version. Empty means the client has no stable version flag.
	VersionArgs []string

	// ConfigDirName is the client's private directory under the user's
	// home (e.g. ".claude").
	ConfigDirName string

	// AgentsSubdir is the agents directory relative to ConfigDirName.
	AgentsSubdir string

	// WindowsSubpaths are installation paths relative to the Windows user
	// profile, probed by the WSL2 fallback in preference order.
	WindowsSubpaths []string

	// MCPConfigFile is the client's MCP configuration file relative to
	// ConfigDirName.
	MCPConfigFile string

	// MCPConfigFormat is the serialization of MCPConfigFile.
	MCPConfigFormat MCPFormat

	// ModelField is the frontmatter key carrying the model identifier in
	// the client's agent files.
	ModelField string
}

// clients is the static registry, in deterministic order.
var clients = []Client{
	{
		Name:          ClaudeCode,
		Binaries:      []string{"claude"},
		VersionArgs:   []string{"--version"},
		ConfigDirName: ".claude",
		AgentsSubdir:  "agents",
		WindowsSubpaths: []string{
			filepath.Join("AppData", "Roaming", "npm", "claude.cmd"),
			filepath.Join("AppData", "Local", "Programs", "claude", "claude.exe"),
		},
		MCPConfigFile:   ".mcp.json",
		MCPConfigFormat: MCPFormatHuJSON,
		ModelField:      "model",
	},
	{
		Name:          Codex,
		Binaries:      []string{"codex"},
		VersionArgs:   []string{"--version"},
		ConfigDirName: ".codex",
		AgentsSubdir:  "agents",
		WindowsSubpaths: []string{
			filepath.Join("AppData", "Roaming", "npm", "codex.cmd"),
		},
		MCPConfigFile:   "mcp.json",
		MCPConfigFormat: MCPFormatJSON,
		ModelField:      "model",
	},
	{
		Name:          Gemini,
		Binaries:      []string{"gemini"},
		VersionArgs:   []string{"--version"},
		ConfigDirName: ".gemini",
		AgentsSubdir:  "agents",
		WindowsSubpaths: []string{
			filepath.Join("AppData", "Roaming", "npm", "gemini.cmd"),
		},
		MCPConfigFile:   "settings.toml",
		MCPConfigFormat: MCPFormatTOML,
		ModelField:      "model",
	},
}

// All returns every supported client in deterministic order:
// claude-code, codex, gemini.
func All() []Client {
	out := make([]Client, len(clients))
	copy(out, clients)
	return out
}

// Names returns the supported client names in deterministic order.
func Names() []string {
	names := make([]string, len(clients))
	for i, c := range clients {
		names[i] = c.Name
	}
	return names
}

// Lookup returns the client with the given name.
func Lookup(name string) (Client, error) {
	for _, c := range clients {
		if c.Name == name {
			return c, nil
		}
	}
	return Client{}, errors.Wrapf(ErrUnknownClient, "%q", name)
}

// Valid returns true if the name identifies a supported client.
func Valid(name string) bool {
	_, err := Lookup(name)
	return err == nil
}

// ConfigDir returns the client's private config directory under home.
func (c Client) ConfigDir(home string) string {
	return filepath.Join(home, c.ConfigDirName)
}

// AgentsDir returns the client's private agent directory under home.
func (c Client) AgentsDir(home string) string {
	return filepath.Join(c.ConfigDir(home), c.AgentsSubdir)
}

// MCPConfigPath returns the client's MCP configuration file under home.
func (c Client) MCPConfigPath(home string) string {
	return filepath.Join(c.ConfigDir(home), c.MCPConfigFile)
}

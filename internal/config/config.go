package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Merge strategy names accepted in the "strategy" field of project-scope
// entries.
const (
	StrategyAppend  = "append"
	StrategyReplace = "replace"
)

// Scope tags recording which configuration layer produced an entry.
const (
	ScopeGlobal  = "global"
	ScopeProject = "project"
)

// ServerDef describes one MCP server.
type ServerDef struct {
	Command   string            `yaml:"command"`
	Args      []string          `yaml:"args,omitempty"`
	Env       map[string]string `yaml:"env,omitempty"`
	Transport string            `yaml:"transport,omitempty"`

	// Strategy is only meaningful in project-scope documents; it selects
	// how this entry combines with a global entry of the same name.
	Strategy string `yaml:"strategy,omitempty"`

	// Scope records which layer this entry came from after merging.
	Scope string `yaml:"-"`
}

// ClientOverride carries per-client settings from the configuration.
type ClientOverride struct {
	// Binary is an explicit path to the client executable. When set it
	// wins over PATH probing during discovery.
	Binary string `yaml:"binary,omitempty"`

	// AgentsDir overrides the client's private agent directory.
	AgentsDir string `yaml:"agents_dir,omitempty"`

	// Strategy selects how a project-scope override combines with the
	// global one (see ServerDef.Strategy).
	Strategy string `yaml:"strategy,omitempty"`

	// Scope records which layer this entry came from after merging.
	Scope string `yaml:"-"`
}

// Document is the YAML shape shared by the global and project scopes.
type Document struct {
	MCPServers     map[string]ServerDef      `yaml:"mcp_servers,omitempty"`
	Clients        map[string]ClientOverride `yaml:"clients,omitempty"`
	DefaultClients []string                  `yaml:"default_clients,omitempty"`
}

// EffectiveConfig is the merged configuration for one invocation.
// It is owned exclusively by the invocation that created it.
type EffectiveConfig struct {
	MCPServers     map[string]ServerDef
	Clients        map[string]ClientOverride
	DefaultClients []string

	// GlobalRoot and ProjectRoot record where the layers came from.
	// ProjectRoot is empty when no project marker was found.
	GlobalRoot  string
	ProjectRoot string
}

// ClientOverrideFor returns the override for a client name, if any.
func (c *EffectiveConfig) ClientOverrideFor(name string) (ClientOverride, bool) {
	ov, ok := c.Clients[name]
	return ov, ok
}

// ParseError indicates a configuration document that exists but is not
// syntactically well-formed. The document's contribution is discarded
// entirely; nothing is partially applied.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "parsing " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads the global document at globalPath and, when projectPath is
// non-empty, the project document, and merges them. An absent global
// document is not an error; loading starts from an empty configuration.
func Load(globalPath, projectPath string) (*EffectiveConfig, error) {
	global, err := readDocument(globalPath)
	if err != nil {
		return nil, err
	}

	var project *Document
	if projectPath != "" {
		project, err = readDocument(projectPath)
		if err != nil {
			return nil, err
		}
	}

	merged := Merge(global, project)

	return &EffectiveConfig{
		MCPServers:     merged.MCPServers,
		Clients:        merged.Clients,
		DefaultClients: merged.DefaultClients,
	}, nil
}

// readDocument parses one YAML document. A missing file yields nil (empty
// contribution); a present but malformed file yields a *ParseError.
func readDocument(path string) (*Document, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &ParseError{Path: path, Err: err}
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &doc, nil
}

// Merge combines the global and project documents into a new document.
// Neither input is mutated; either may be nil. Project-scope merge applies
// strictly after the global contribution.
func Merge(global, project *Document) *Document {
	out := &Document{
		MCPServers: make(map[string]ServerDef),
		Clients:    make(map[string]ClientOverride),
	}

	if global != nil {
		for name, def := range global.MCPServers {
			def.Scope = ScopeGlobal
			def.Strategy = ""
			out.MCPServers[name] = def
		}
		for name, ov := range global.Clients {
			ov.Scope = ScopeGlobal
			ov.Strategy = ""
			out.Clients[name] = ov
		}
		out.DefaultClients = append(out.DefaultClients, global.DefaultClients...)
	}

	if project != nil {
		for name, def := range project.MCPServers {
			out.MCPServers[name] = mergeServer(out.MCPServers[name], def)
		}
		for name, ov := range project.Clients {
			out.Clients[name] = mergeClient(out.Clients[name], ov)
		}
		out.DefaultClients = append(out.DefaultClients, project.DefaultClients...)
	}

	return out
}

// mergeServer combines a global entry (possibly zero) with a project entry.
func mergeServer(global, project ServerDef) ServerDef {
	if project.Strategy == StrategyReplace {
		project.Strategy = ""
		project.Scope = ScopeProject
		return project
	}

	merged := global
	if project.Command != "" {
		merged.Command = project.Command
	}
	if project.Args != nil {
		merged.Args = project.Args
	}
	if project.Transport != "" {
		merged.Transport = project.Transport
	}
	if len(project.Env) > 0 {
		env := make(map[string]string, len(global.Env)+len(project.Env))
		for k, v := range global.Env {
			env[k] = v
		}
		for k, v := range project.Env {
			env[k] = v
		}
		merged.Env = env
	}
	merged.Strategy = ""
	merged.Scope = ScopeProject
	return merged
}

// mergeClient combines a global override (possibly zero) with a project one.
func mergeClient(global, project ClientOverride) ClientOverride {
	if project.Strategy == StrategyReplace {
		project.Strategy = ""
		project.Scope = ScopeProject
		return project
	}

	merged := global
	if project.Binary != "" {
		merged.Binary = project.Binary
	}
	if project.AgentsDir != "" {
		merged.AgentsDir = project.AgentsDir
	}
	merged.Strategy = ""
	merged.Scope = ScopeProject
	return merged
}

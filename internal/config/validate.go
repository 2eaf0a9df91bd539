package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/jdmartin/aictl/internal/client"
)

// Transport names accepted for MCP servers.
var validTransports = map[string]bool{
	"":      true, // defaults to stdio
	"stdio": true,
	"sse":   true,
	"http":  true,
}

// ValidationError reports structural constraint violations in a loaded
// configuration. The document parsed, but its content is unusable.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration failed %d constraint(s): %s",
		len(e.Violations), strings.Join(e.Violations, "; "))
}

// Validate checks an effective configuration against structural
// constraints. Returns nil when valid, or a *ValidationError listing every
// violation.
func Validate(cfg *EffectiveConfig) error {
	if cfg == nil {
		return errors.AssertionFailedf("nil config")
	}

	var violations []string

	for _, name := range sortedKeys(cfg.MCPServers) {
		def := cfg.MCPServers[name]
		if def.Command == "" {
			violations = append(violations,
				fmt.Sprintf("mcp_servers.%s: command is required", name))
		}
		if !validTransports[def.Transport] {
			violations = append(violations,
				fmt.Sprintf("mcp_servers.%s: unknown transport %q", name, def.Transport))
		}
	}

	for _, name := range sortedKeys(cfg.Clients) {
		if !client.Valid(name) {
			violations = append(violations,
				fmt.Sprintf("clients.%s: not a supported client", name))
		}
		if ov := cfg.Clients[name]; strings.ContainsRune(ov.Binary, '\x00') {
			violations = append(violations,
				fmt.Sprintf("clients.%s: binary path is malformed", name))
		}
	}

	for _, name := range cfg.DefaultClients {
		if !client.Valid(name) {
			violations = append(violations,
				fmt.Sprintf("default_clients: %q is not a supported client", name))
		}
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

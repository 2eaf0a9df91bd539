package doctor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/tailscale/hujson"

	"github.com/jdmartin/aictl/internal/client"
	"github.com/jdmartin/aictl/internal/config"
	"github.com/jdmartin/aictl/internal/execx"
)

// MCPServersCheck validates the merged MCP server set: every server's
// command must exist on PATH, and each client's own MCP config file must
// be readable. All PATH probes are batched into one concurrent wave via
// execx.Which; N servers cost one round of latency, not N.
type MCPServersCheck struct {
	Config *config.EffectiveConfig
	Runner *execx.Runner

	// Home locates the per-client MCP config files.
	Home string
}

var _ Check = (*MCPServersCheck)(nil)

// Name returns the unique identifier for this check.
func (c *MCPServersCheck) Name() string {
	return "mcp-servers"
}

// Run executes the MCP servers check.
func (c *MCPServersCheck) Run(ctx context.Context) *CheckResult {
	res := &CheckResult{Name: c.Name(), Details: map[string]any{}}

	if c.Config == nil || len(c.Config.MCPServers) == 0 {
		res.Status = SeverityInfo
		res.Message = "no MCP servers configured"
		c.checkClientConfigs(res)
		return res
	}

	names := make([]string, 0, len(c.Config.MCPServers))
	commandSet := map[string]struct{}{}
	for name, def := range c.Config.MCPServers {
		names = append(names, name)
		commandSet[def.Command] = struct{}{}
	}
	sort.Strings(names)

	commands := make([]string, 0, len(commandSet))
	for cmd := range commandSet {
		commands = append(commands, cmd)
	}

	// One concurrent wave for the whole command set.
	found := c.Runner.Which(ctx, commands)

	servers := map[string]any{}
	for _, name := range names {
		def := c.Config.MCPServers[name]
		ok := found[def.Command]
		servers[name] = map[string]any{
			"command":   def.Command,
			"scope":     def.Scope,
			"available": ok,
		}
		if ok {
			res.Available++
		} else {
			res.Missing++
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("server %s: command %q not found on PATH", name, def.Command))
		}
	}
	res.Details["servers"] = servers

	c.checkClientConfigs(res)

	switch {
	case res.Missing > 0:
		res.Status = SeverityWarning
		res.Message = fmt.Sprintf("%d server(s) available, %d missing their command", res.Available, res.Missing)
	default:
		res.Status = SeverityPass
		res.Message = fmt.Sprintf("%d server(s) available", res.Available)
	}
	return res
}

// checkClientConfigs cross-checks each client's own MCP config file.
// Absent files are fine; malformed ones produce warnings.
func (c *MCPServersCheck) checkClientConfigs(res *CheckResult) {
	configs := map[string]any{}
	for _, cl := range client.All() {
		path := cl.MCPConfigPath(c.Home)
		count, err := countClientServers(path, cl.MCPConfigFormat)
		if err != nil {
			if os.IsNotExist(err) {
				configs[cl.Name] = map[string]any{"present": false}
				continue
			}
			configs[cl.Name] = map[string]any{"present": true, "parse_error": true}
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("%s: cannot parse %s: %v", cl.Name, path, err))
			continue
		}
		configs[cl.Name] = map[string]any{"present": true, "servers": count}
	}
	res.Details["client_configs"] = configs
}

// claudeStyleConfig is the JSON shape shared by Claude Code and Codex.
type claudeStyleConfig struct {
	MCPServers map[string]json.RawMessage `json:"mcpServers"`
}

// geminiSettings is the subset of Gemini's settings.toml we inspect.
type geminiSettings struct {
	MCPServers map[string]any `toml:"mcp_servers"`
}

// countClientServers parses one client-side MCP config file and returns
// how many servers it declares.
func countClientServers(path string, format client.MCPFormat) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	switch format {
	case client.MCPFormatHuJSON:
		// Claude writes JSON with comments and trailing commas.
		std, err := hujson.Standardize(data)
		if err != nil {
			return 0, err
		}
		var cfg claudeStyleConfig
		if err := json.Unmarshal(std, &cfg); err != nil {
			return 0, err
		}
		return len(cfg.MCPServers), nil
	case client.MCPFormatTOML:
		var settings geminiSettings
		if err := toml.Unmarshal(data, &settings); err != nil {
			return 0, err
		}
		return len(settings.MCPServers), nil
	default:
		var cfg claudeStyleConfig
		if err := json.Unmarshal(data, &cfg); err != nil {
			return 0, err
		}
		return len(cfg.MCPServers), nil
	}
}

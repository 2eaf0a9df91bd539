package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_NoDocuments(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"), "")
	require.NoError(t, err)

	assert.Empty(t, cfg.MCPServers)
	assert.Empty(t, cfg.Clients)
	assert.Empty(t, cfg.DefaultClients)
}

func TestLoad_GlobalOnly(t *testing.T) {
	dir := t.TempDir()
	global := writeDoc(t, dir, "config.yaml", `
mcp_servers:
  fs:
    command: npx
    args: ["-y", "@modelcontextprotocol/server-filesystem"]
    transport: stdio
`)

	cfg, err := Load(global, "")
	require.NoError(t, err)

	require.Contains(t, cfg.MCPServers, "fs")
	fs := cfg.MCPServers["fs"]
	assert.Equal(t, "npx", fs.Command)
	assert.Equal(t, ScopeGlobal, fs.Scope)
}

func TestLoad_MalformedGlobal(t *testing.T) {
	dir := t.TempDir()
	global := writeDoc(t, dir, "config.yaml", "mcp_servers: [not: a: map\n")

	_, err := Load(global, "")
	require.Error(t, err)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, global, parseErr.Path)
}

func TestLoad_MalformedProjectDiscardsEntirely(t *testing.T) {
	dir := t.TempDir()
	global := writeDoc(t, dir, "config.yaml", "mcp_servers:\n  fs:\n    command: npx\n")
	project := writeDoc(t, dir, ".aiconfig.yaml", ":\tbroken")

	_, err := Load(global, project)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, project, parseErr.Path)
}

func TestLoad_ProjectReplaceWinsWholesale(t *testing.T) {
	dir := t.TempDir()
	global := writeDoc(t, dir, "config.yaml", `
mcp_servers:
  fs:
    command: npx
    args: ["-y", "server-filesystem"]
    env:
      FS_ROOT: /srv
`)
	project := writeDoc(t, dir, ".aiconfig.yaml", `
mcp_servers:
  fs:
    command: uvx
    strategy: replace
`)

	cfg, err := Load(global, project)
	require.NoError(t, err)

	fs := cfg.MCPServers["fs"]
	assert.Equal(t, "uvx", fs.Command)
	assert.Empty(t, fs.Args, "replace must not inherit global args")
	assert.Empty(t, fs.Env, "replace must not inherit global env")
	assert.Equal(t, ScopeProject, fs.Scope)
	assert.Empty(t, fs.Strategy, "strategy is consumed during merge")
}

func TestLoad_AppendMergesSubKeys(t *testing.T) {
	dir := t.TempDir()
	global := writeDoc(t, dir, "config.yaml", `
mcp_servers:
  db:
    command: npx
    transport: stdio
    env:
      DB_HOST: localhost
      DB_PORT: "5432"
`)
	project := writeDoc(t, dir, ".aiconfig.yaml", `
mcp_servers:
  db:
    env:
      DB_HOST: db.internal
`)

	cfg, err := Load(global, project)
	require.NoError(t, err)

	db := cfg.MCPServers["db"]
	assert.Equal(t, "npx", db.Command, "global sub-keys fill gaps")
	assert.Equal(t, "db.internal", db.Env["DB_HOST"], "project wins on collision")
	assert.Equal(t, "5432", db.Env["DB_PORT"])
}

func TestMerge_DisjointKeysUnion(t *testing.T) {
	global := &Document{MCPServers: map[string]ServerDef{
		"fs": {Command: "npx"},
	}}
	project := &Document{MCPServers: map[string]ServerDef{
		"git": {Command: "uvx"},
	}}

	merged := Merge(global, project)

	assert.Len(t, merged.MCPServers, 2)
	assert.Equal(t, ScopeGlobal, merged.MCPServers["fs"].Scope)
	assert.Equal(t, ScopeProject, merged.MCPServers["git"].Scope)
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	global := &Document{
		MCPServers:     map[string]ServerDef{"fs": {Command: "npx", Env: map[string]string{"A": "1"}}},
		DefaultClients: []string{"claude-code"},
	}
	project := &Document{
		MCPServers:     map[string]ServerDef{"fs": {Env: map[string]string{"A": "2"}}},
		DefaultClients: []string{"gemini"},
	}

	_ = Merge(global, project)

	assert.Equal(t, "1", global.MCPServers["fs"].Env["A"])
	assert.Equal(t, []string{"claude-code"}, global.DefaultClients)
	assert.Equal(t, "2", project.MCPServers["fs"].Env["A"])
}

func TestMerge_SequencesConcatenateWithoutDedup(t *testing.T) {
	global := &Document{DefaultClients: []string{"claude-code", "gemini"}}
	project := &Document{DefaultClients: []string{"gemini"}}

	merged := Merge(global, project)

	assert.Equal(t, []string{"claude-code", "gemini", "gemini"}, merged.DefaultClients)
}

func TestMerge_NilInputs(t *testing.T) {
	merged := Merge(nil, nil)
	require.NotNil(t, merged)
	assert.Empty(t, merged.MCPServers)

	merged = Merge(nil, &Document{MCPServers: map[string]ServerDef{"fs": {Command: "uvx"}}})
	assert.Equal(t, "uvx", merged.MCPServers["fs"].Command)
}

func TestMerge_ClientOverrides(t *testing.T) {
	global := &Document{Clients: map[string]ClientOverride{
		"claude-code": {Binary: "/usr/local/bin/claude", AgentsDir: "/srv/agents"},
	}}
	project := &Document{Clients: map[string]ClientOverride{
		"claude-code": {Binary: "/opt/claude/claude"},
	}}

	merged := Merge(global, project)

	ov := merged.Clients["claude-code"]
	assert.Equal(t, "/opt/claude/claude", ov.Binary)
	assert.Equal(t, "/srv/agents", ov.AgentsDir, "append keeps global sub-keys")
}

package syncer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdmartin/aictl/internal/client"
	"github.com/jdmartin/aictl/internal/config"
	"github.com/jdmartin/aictl/internal/envprobe"
	"github.com/jdmartin/aictl/internal/logging"
	"github.com/jdmartin/aictl/internal/paths"
)

// fixture lays out a global config root and a fake home directory.
type fixture struct {
	root string
	home string
	svc  *Service
}

func newFixture(t *testing.T, cfg *config.EffectiveConfig) *fixture {
	t.Helper()
	root := t.TempDir()
	home := t.TempDir()
	probe := envprobe.NewWith(
		envprobe.WithHome(home),
		envprobe.WithEnv(map[string]string{}),
	)
	return &fixture{
		root: root,
		home: home,
		svc:  NewService(root, cfg, probe, logging.ForTest(t)),
	}
}

func (f *fixture) writeAgent(t *testing.T, name, meta, body string) {
	t.Helper()
	dir := paths.AgentsDir(f.root)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(meta), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".md"), []byte(body), 0o644))
}

func (f *fixture) writeModels(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(paths.ModelsPath(f.root), []byte(content), 0o644))
}

func (f *fixture) destFile(t *testing.T, clientName, agent string) string {
	t.Helper()
	c, err := client.Lookup(clientName)
	require.NoError(t, err)
	return filepath.Join(c.AgentsDir(f.home), agent+".md")
}

func TestSync_AbsentAgentsDir(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.svc.Sync(context.Background(), Options{})
	require.NoError(t, err)

	assert.Equal(t, &Result{Errors: []ItemError{}}, res)
}

func TestSync_SubstitutesModelForClient(t *testing.T) {
	f := newFixture(t, nil)
	f.writeAgent(t, "reviewer",
		"name: reviewer\ndescription: Reviews code\ntier: smart\n",
		"Use {{model:smart}} for deep analysis.\n")
	f.writeModels(t, "tiers:\n  smart:\n    claude-code: sonnet\n")

	res, err := f.svc.Sync(context.Background(), Options{Clients: []string{client.ClaudeCode}})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Total)
	assert.Equal(t, 1, res.Synced)
	assert.Empty(t, res.Errors)

	data, err := os.ReadFile(f.destFile(t, client.ClaudeCode, "reviewer"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Use sonnet for deep analysis.")
	assert.Contains(t, string(data), "model: sonnet")
}

func TestSync_UnmappedTierLeftVerbatim(t *testing.T) {
	f := newFixture(t, nil)
	f.writeAgent(t, "reviewer", "name: reviewer\n", "Use {{model:galaxy}}.\n")

	res, err := f.svc.Sync(context.Background(), Options{Clients: []string{client.Codex}})
	require.NoError(t, err)
	require.Equal(t, 1, res.Synced)

	data, err := os.ReadFile(f.destFile(t, client.Codex, "reviewer"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "{{model:galaxy}}")
}

func TestSync_AllClientsByDefault(t *testing.T) {
	f := newFixture(t, nil)
	f.writeAgent(t, "reviewer", "name: reviewer\n", "body\n")
	f.writeAgent(t, "planner", "name: planner\n", "body\n")

	res, err := f.svc.Sync(context.Background(), Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 2*len(client.All()), res.Synced)
	assert.Empty(t, res.Errors)
}

func TestSync_Idempotent(t *testing.T) {
	f := newFixture(t, nil)
	f.writeAgent(t, "reviewer", "name: reviewer\ntier: smart\n", "Use {{model:smart}}.\n")
	f.writeModels(t, "tiers:\n  smart:\n    claude-code: sonnet\n    codex: gpt-5\n    gemini: gemini-2.5-pro\n")

	first, err := f.svc.Sync(context.Background(), Options{})
	require.NoError(t, err)
	firstData, err := os.ReadFile(f.destFile(t, client.ClaudeCode, "reviewer"))
	require.NoError(t, err)

	second, err := f.svc.Sync(context.Background(), Options{})
	require.NoError(t, err)
	secondData, err := os.ReadFile(f.destFile(t, client.ClaudeCode, "reviewer"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstData, secondData)
	assert.Equal(t, first.Total*len(client.All()), first.Synced)
}

func TestSync_ClientAllowlistSkips(t *testing.T) {
	f := newFixture(t, nil)
	f.writeAgent(t, "reviewer",
		"name: reviewer\nclients:\n  - claude-code\n",
		"body\n")

	res, err := f.svc.Sync(context.Background(), Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Synced)
	assert.Equal(t, len(client.All())-1, res.Skipped)
}

func TestSync_BrokenDefinitionDoesNotAbort(t *testing.T) {
	f := newFixture(t, nil)
	f.writeAgent(t, "good", "name: good\n", "body\n")

	// Orphan metadata without a body.
	dir := paths.AgentsDir(f.root)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orphan.yaml"), []byte("name: orphan\n"), 0o644))

	res, err := f.svc.Sync(context.Background(), Options{Clients: []string{client.Gemini}})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, res.Synced)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "orphan", res.Errors[0].Agent)
}

func TestSync_MalformedModelsIsFatal(t *testing.T) {
	f := newFixture(t, nil)
	f.writeAgent(t, "reviewer", "name: reviewer\n", "body\n")
	f.writeModels(t, "tiers: [broken\n")

	_, err := f.svc.Sync(context.Background(), Options{})
	require.Error(t, err)

	var parseErr *config.ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestSync_UnknownClientRequested(t *testing.T) {
	f := newFixture(t, nil)
	f.writeAgent(t, "reviewer", "name: reviewer\n", "body\n")

	_, err := f.svc.Sync(context.Background(), Options{Clients: []string{"copilot"}})
	assert.True(t, errors.Is(err, client.ErrUnknownClient))
}

func TestSync_AgentsDirOverride(t *testing.T) {
	override := t.TempDir()
	cfg := &config.EffectiveConfig{
		Clients: map[string]config.ClientOverride{
			client.ClaudeCode: {AgentsDir: override},
		},
	}
	f := newFixture(t, cfg)
	f.writeAgent(t, "reviewer", "name: reviewer\n", "body\n")

	res, err := f.svc.Sync(context.Background(), Options{Clients: []string{client.ClaudeCode}})
	require.NoError(t, err)
	require.Equal(t, 1, res.Synced)

	_, statErr := os.Stat(filepath.Join(override, "reviewer.md"))
	assert.NoError(t, statErr)
}

func TestSync_AgentSubset(t *testing.T) {
	f := newFixture(t, nil)
	f.writeAgent(t, "reviewer", "name: reviewer\n", "Review.\n")
	f.writeAgent(t, "planner", "name: planner\n", "Plan.\n")

	res, err := f.svc.Sync(context.Background(), Options{
		Clients: []string{client.ClaudeCode},
		Agents:  []string{"planner", "no-such-agent"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Total)
	assert.Equal(t, 1, res.Synced)

	_, err = os.Stat(f.destFile(t, client.ClaudeCode, "planner"))
	assert.NoError(t, err)
	_, err = os.Stat(f.destFile(t, client.ClaudeCode, "reviewer"))
	assert.True(t, os.IsNotExist(err))
}

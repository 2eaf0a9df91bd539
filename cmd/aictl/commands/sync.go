package commands

import (
	"fmt"
	"log/slog"

	"github.com/fatih/color"
	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jdmartin/aictl/internal/client"
	"github.com/jdmartin/aictl/internal/errors"
	"github.com/jdmartin/aictl/internal/paths"
	"github.com/jdmartin/aictl/internal/syncer"
)

var (
	syncClients []string
	syncPick    bool
)

func init() {
	syncCmd.Flags().StringSliceVar(&syncClients, "client", nil,
		"target client(s): claude-code, codex, gemini (default: configured or all)")
	syncCmd.Flags().BoolVar(&syncPick, "pick", false,
		"pick agents to sync interactively")
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize agent definitions to clients",
	Long: `Copy agent definitions from the configuration repository into each
client's agent directory, substituting the client's model identifier
for abstract tier placeholders.

Sync overwrites: destination files are regenerated on every run, and
running twice with unchanged sources produces identical output. A
single unreadable definition or failed write never aborts the rest of
the run.`,
	Example: `  # Sync every agent to every supported client
  aictl sync

  # Sync only Claude Code
  aictl sync --client claude-code

  # Choose agents interactively
  aictl sync --pick`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, _ []string) error {
	l, err := acquireLock("sync")
	if err != nil {
		return err
	}
	defer l.Release()

	env, err := resolveEnvironment()
	if err != nil {
		return err
	}

	cfg, err := env.loadConfig()
	if err != nil {
		return err
	}

	targets, err := resolveSyncClients(cfg.DefaultClients)
	if err != nil {
		return err
	}

	opts := syncer.Options{Clients: targets}
	if syncPick {
		agents, err := pickAgents(env.globalRoot)
		if err != nil {
			return err
		}
		if len(agents) == 0 {
			fmt.Println("No agents selected.")
			return nil
		}
		opts.Agents = agents
	}

	res, err := syncer.NewService(env.globalRoot, cfg, env.probe, slog.Default()).
		Sync(cmd.Context(), opts)
	if err != nil {
		return errors.NewSystemError(err, "Run: aictl doctor")
	}

	// Per-item failures are soft: they are part of the result, already
	// visible in the printed summary, and never turn into a non-zero exit.
	printSyncResult(res)
	return nil
}

// resolveSyncClients picks the target client set: the --client flag wins,
// then the merged document's default_clients, then the settings file,
// then every supported client. Duplicates from layered defaults collapse.
func resolveSyncClients(configured []string) ([]string, error) {
	requested := syncClients
	if len(requested) == 0 {
		requested = configured
	}
	if len(requested) == 0 {
		requested = viper.GetStringSlice("default_clients")
	}

	seen := make(map[string]bool, len(requested))
	targets := make([]string, 0, len(requested))
	for _, name := range requested {
		if !client.Valid(name) {
			return nil, errors.NewValidationError(
				errors.Wrapf(client.ErrUnknownClient, "%q (supported: %v)", name, client.Names()))
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		targets = append(targets, name)
	}
	return targets, nil
}

// pickAgents runs the interactive agent selector over the repository's
// definitions. An aborted selection returns an empty slice.
func pickAgents(globalRoot string) ([]string, error) {
	defs, _ := syncer.LoadDefinitions(paths.AgentsDir(globalRoot))
	if len(defs) == 0 {
		return nil, errors.NewValidationError(errors.New("no agent definitions to pick from"))
	}

	indexes, err := fuzzyfinder.FindMulti(
		defs,
		func(i int) string {
			return defs[i].Name
		},
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			d := defs[i]
			return fmt.Sprintf("Name: %s\nTier: %s\n\n%s", d.Name, d.Meta.Tier, d.Meta.Description)
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "interactive selection failed")
	}

	names := make([]string, 0, len(indexes))
	for _, i := range indexes {
		names = append(names, defs[i].Name)
	}
	return names, nil
}

func printSyncResult(res *syncer.Result) {
	fmt.Printf("%s %d definition(s), %d file(s) written",
		color.GreenString("✓"), res.Total, res.Synced)
	if res.Skipped > 0 {
		fmt.Printf(", %d skipped", res.Skipped)
	}
	fmt.Println()

	for _, itemErr := range res.Errors {
		fmt.Printf("%s %s\n", color.RedString("✗"), truncate(itemErr.Error(), 120))
	}
}

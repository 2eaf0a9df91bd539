// Package syncer copies agent definitions from the global configuration
// repository into each client's private agent directory, substituting the
// client's model identifier for abstract tier placeholders along the way.
//
// Sync has overwrite semantics, not merge: destination files are
// regenerated on every run, and running twice with unchanged sources
// produces byte-identical output. One unreadable definition or one failed
// write never aborts the rest of the run; failures are collected into the
// result's Errors list.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/jdmartin/aictl/internal/client"
	"github.com/jdmartin/aictl/internal/config"
	"github.com/jdmartin/aictl/internal/envprobe"
	"github.com/jdmartin/aictl/internal/paths"
	"github.com/jdmartin/aictl/pkg/fileutil"
	"github.com/jdmartin/aictl/pkg/frontmatter"
)

// ItemError records one failed definition read or (definition × client)
// write. Client is empty for definition-level failures.
type ItemError struct {
	Agent  string `json:"agent"`
	Client string `json:"client,omitempty"`
	Err    error  `json:"-"`
}

func (e ItemError) Error() string {
	if e.Client == "" {
		return fmt.Sprintf("agent %s: %v", e.Agent, e.Err)
	}
	return fmt.Sprintf("agent %s for %s: %v", e.Agent, e.Client, e.Err)
}

// Result summarizes one sync run. A plain record for the presentation
// layer; no behavior.
type Result struct {
	// Total is the number of agent definitions discovered.
	Total int `json:"total"`

	// Synced counts (definition × client) writes that succeeded.
	Synced int `json:"synced"`

	// Skipped counts (definition × client) pairs excluded by the
	// definition's client allowlist.
	Skipped int `json:"skipped"`

	Errors []ItemError `json:"errors,omitempty"`
}

// Options selects what to sync.
type Options struct {
	// Clients is the requested subset of client names. Empty means all
	// supported clients.
	Clients []string

	// Agents is the requested subset of agent names. Empty means every
	// definition in the repository. Names with no matching definition are
	// ignored; the definitions that do match still sync.
	Agents []string
}

// renderedMatter is the frontmatter written into client agent files.
type renderedMatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Model       string `yaml:"model,omitempty"`
}

// Service performs agent synchronization.
type Service struct {
	globalRoot string
	cfg        *config.EffectiveConfig
	probe      *envprobe.Probe
	logger     *slog.Logger
}

// NewService creates a sync service. cfg may be nil; per-client agent
// directory overrides are then ignored.
func NewService(globalRoot string, cfg *config.EffectiveConfig, probe *envprobe.Probe, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{globalRoot: globalRoot, cfg: cfg, probe: probe, logger: logger}
}

// Sync copies every discovered agent definition to every target client.
// An absent global agents directory is not an error; the result is simply
// empty. Per-client copies run concurrently: each client writes into its
// own directory, so there is no shared output state.
func (s *Service) Sync(ctx context.Context, opts Options) (*Result, error) {
	agentsDir := paths.AgentsDir(s.globalRoot)
	if info, err := os.Stat(agentsDir); err != nil || !info.IsDir() {
		return &Result{Errors: []ItemError{}}, nil
	}

	mapping, err := LoadModelMapping(paths.ModelsPath(s.globalRoot))
	if err != nil {
		return nil, err
	}

	targets, err := s.resolveTargets(opts.Clients)
	if err != nil {
		return nil, err
	}

	defs, defErrs := LoadDefinitions(agentsDir)
	defs = filterDefinitions(defs, opts.Agents)

	res := &Result{
		Total:  len(defs) + len(defErrs),
		Errors: defErrs,
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, target := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			synced, skipped, errs := s.syncClient(target, defs, mapping)
			mu.Lock()
			res.Synced += synced
			res.Skipped += skipped
			res.Errors = append(res.Errors, errs...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	s.logger.Info("agent sync complete",
		"total", res.Total,
		"synced", res.Synced,
		"skipped", res.Skipped,
		"errors", len(res.Errors))

	return res, nil
}

// syncClient writes every applicable definition into one client's agent
// directory.
func (s *Service) syncClient(target client.Client, defs []Definition, mapping *ModelMapping) (synced, skipped int, errs []ItemError) {
	destDir, err := s.agentsDirFor(target)
	if err != nil {
		for _, def := range defs {
			errs = append(errs, ItemError{Agent: def.Name, Client: target.Name, Err: err})
		}
		return 0, 0, errs
	}

	if err := paths.EnsureDir(destDir, 0o755); err != nil {
		for _, def := range defs {
			errs = append(errs, ItemError{Agent: def.Name, Client: target.Name, Err: err})
		}
		return 0, 0, errs
	}

	for _, def := range defs {
		if !def.targets(target.Name) {
			skipped++
			continue
		}

		rendered, err := render(def, mapping, target.Name)
		if err != nil {
			errs = append(errs, ItemError{Agent: def.Name, Client: target.Name, Err: err})
			continue
		}

		dest := filepath.Join(destDir, def.Name+".md")
		if err := fileutil.AtomicWriteFile(dest, rendered, 0o644); err != nil {
			errs = append(errs, ItemError{Agent: def.Name, Client: target.Name, Err: err})
			continue
		}

		s.logger.Debug("agent synced", "agent", def.Name, "client", target.Name, "dest", dest)
		synced++
	}
	return synced, skipped, errs
}

// render produces the destination document for one (definition, client)
// pair: frontmatter with the resolved model plus the substituted body.
func render(def Definition, mapping *ModelMapping, clientName string) ([]byte, error) {
	matter := renderedMatter{
		Name:        def.Meta.Name,
		Description: def.Meta.Description,
	}
	if def.Meta.Tier != "" {
		matter.Model = mapping.Model(def.Meta.Tier, clientName)
	}

	body := SubstituteModels(def.Body, mapping, clientName)
	return frontmatter.Format(matter, body)
}

// agentsDirFor resolves a client's destination directory, honoring a
// configured override.
func (s *Service) agentsDirFor(target client.Client) (string, error) {
	if s.cfg != nil {
		if ov, ok := s.cfg.ClientOverrideFor(target.Name); ok && ov.AgentsDir != "" {
			return ov.AgentsDir, nil
		}
	}
	home, err := s.probe.Home()
	if err != nil {
		return "", err
	}
	return target.AgentsDir(home), nil
}

// filterDefinitions keeps only the named definitions. An empty request
// keeps everything.
func filterDefinitions(defs []Definition, names []string) []Definition {
	if len(names) == 0 {
		return defs
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	kept := make([]Definition, 0, len(defs))
	for _, def := range defs {
		if wanted[def.Name] {
			kept = append(kept, def)
		}
	}
	return kept
}

// resolveTargets maps requested client names to registry entries, or all
// clients when the request is empty.
func (s *Service) resolveTargets(requested []string) ([]client.Client, error) {
	if len(requested) == 0 {
		return client.All(), nil
	}
	targets := make([]client.Client, 0, len(requested))
	for _, name := range requested {
		c, err := client.Lookup(name)
		if err != nil {
			return nil, errors.Wrap(err, "resolving sync targets")
		}
		targets = append(targets, c)
	}
	return targets, nil
}

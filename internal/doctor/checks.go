package doctor

import (
	"context"
	"fmt"
	"os"

	"github.com/jdmartin/aictl/internal/paths"
	"github.com/jdmartin/aictl/internal/syncer"
)

// ConfigRepoCheck verifies the user-owned configuration repository:
// the global root, the configuration document, and the model mapping.
type ConfigRepoCheck struct {
	GlobalRoot  string
	ProjectRoot string
}

var _ Check = (*ConfigRepoCheck)(nil)

// Name returns the unique identifier for this check.
func (c *ConfigRepoCheck) Name() string {
	return "config-repo"
}

// Run executes the config repository check.
func (c *ConfigRepoCheck) Run(ctx context.Context) *CheckResult {
	res := &CheckResult{Name: c.Name(), Details: map[string]any{
		"global_root": c.GlobalRoot,
	}}

	info, err := os.Stat(c.GlobalRoot)
	if err != nil || !info.IsDir() {
		res.Status = SeverityWarning
		res.Message = "global config repository not found"
		res.Missing = 1
		return res
	}
	res.Available = 1

	present := map[string]bool{}
	for name, path := range map[string]string{
		"config": paths.ConfigPath(c.GlobalRoot),
		"models": paths.ModelsPath(c.GlobalRoot),
	} {
		_, statErr := os.Stat(path)
		present[name] = statErr == nil
	}
	res.Details["config_present"] = present["config"]
	res.Details["models_present"] = present["models"]

	if _, err := syncer.LoadModelMapping(paths.ModelsPath(c.GlobalRoot)); err != nil {
		res.Status = SeverityError
		res.Message = "model mapping document is malformed"
		res.Warnings = append(res.Warnings, err.Error())
		return res
	}

	if c.ProjectRoot != "" {
		res.Details["project_root"] = c.ProjectRoot
	}

	res.Status = SeverityPass
	res.Message = "config repository found"
	return res
}

// SkillsCheck counts skill directories under the global root.
type SkillsCheck struct {
	GlobalRoot string
}

var _ Check = (*SkillsCheck)(nil)

// Name returns the unique identifier for this check.
func (c *SkillsCheck) Name() string {
	return "skills"
}

// Run executes the skills check.
func (c *SkillsCheck) Run(ctx context.Context) *CheckResult {
	res := &CheckResult{Name: c.Name()}

	dir := paths.SkillsDir(c.GlobalRoot)
	entries, err := os.ReadDir(dir)
	if err != nil {
		res.Status = SeverityInfo
		res.Message = "skills directory not found"
		return res
	}

	var skills []string
	for _, e := range entries {
		if e.IsDir() {
			skills = append(skills, e.Name())
		}
	}

	res.Available = len(skills)
	res.Details = map[string]any{"skills": skills}
	res.Status = SeverityPass
	res.Message = fmt.Sprintf("%d skill(s) found", len(skills))
	return res
}

// AgentsCheck validates agent definition pairs in the global agents
// directory.
type AgentsCheck struct {
	GlobalRoot string
}

var _ Check = (*AgentsCheck)(nil)

// Name returns the unique identifier for this check.
func (c *AgentsCheck) Name() string {
	return "agents"
}

// Run executes the agents check.
func (c *AgentsCheck) Run(ctx context.Context) *CheckResult {
	res := &CheckResult{Name: c.Name()}

	dir := paths.AgentsDir(c.GlobalRoot)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		res.Status = SeverityInfo
		res.Message = "agents directory not found"
		return res
	}

	defs, errs := syncer.LoadDefinitions(dir)
	res.Available = len(defs)
	res.Missing = len(errs)

	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Name)
	}
	res.Details = map[string]any{"agents": names}

	for _, e := range errs {
		res.Warnings = append(res.Warnings, e.Error())
	}

	switch {
	case len(errs) > 0:
		res.Status = SeverityWarning
		res.Message = fmt.Sprintf("%d agent(s) valid, %d broken", len(defs), len(errs))
	default:
		res.Status = SeverityPass
		res.Message = fmt.Sprintf("%d agent(s) valid", len(defs))
	}
	return res
}

package doctor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jdmartin/aictl/internal/envprobe"
)

// Check is the interface that diagnostic checks implement. The set of
// checks is closed: exactly the five constructed by [NewRunner].
type Check interface {
	// Name returns the unique identifier for this check.
	Name() string

	// Run executes the diagnostic check and returns its result.
	Run(ctx context.Context) *CheckResult
}

// EnvInfo records the environment a report was produced in.
type EnvInfo struct {
	Platform    string `json:"platform"`
	Home        string `json:"home"`
	WSL2        bool   `json:"wsl2"`
	GlobalRoot  string `json:"global_root"`
	ProjectRoot string `json:"project_root,omitempty"`
}

// Report aggregates all checker outputs plus environment info. Each
// checker has a fixed named slot, so serialized reports are deterministic
// even though checkers execute concurrently. Every slot is populated on
// every run; a checker that fails unexpectedly yields a degraded result in
// its slot, never a hole that blocks the others.
type Report struct {
	Timestamp time.Time `json:"timestamp"`
	Env       EnvInfo   `json:"env"`

	ConfigRepo *CheckResult `json:"config_repo"`
	Skills     *CheckResult `json:"skills"`
	Agents     *CheckResult `json:"agents"`
	Clients    *CheckResult `json:"clients"`
	MCPServers *CheckResult `json:"mcp_servers"`

	Summary Summary `json:"summary"`
}

// Results returns the slots in fixed report order.
func (r *Report) Results() []*CheckResult {
	return []*CheckResult{r.ConfigRepo, r.Skills, r.Agents, r.Clients, r.MCPServers}
}

// HasErrors returns true if any check has SeverityError.
func (r *Report) HasErrors() bool {
	return r.Summary.Errors > 0
}

// Runner executes the diagnostic checks and aggregates their results.
type Runner struct {
	configRepo Check
	skills     Check
	agents     Check
	clients    Check
	mcpServers Check

	env EnvInfo
}

// RunnerDeps carries the resolved inputs the checkers consume. Checkers
// never resolve paths or load configuration themselves.
type RunnerDeps struct {
	ConfigRepo Check
	Skills     Check
	Agents     Check
	Clients    Check
	MCPServers Check

	Probe       *envprobe.Probe
	GlobalRoot  string
	ProjectRoot string
}

// NewRunner creates a diagnostic runner over the five fixed checks.
func NewRunner(deps RunnerDeps) *Runner {
	home, _ := deps.Probe.Home()
	return &Runner{
		configRepo: deps.ConfigRepo,
		skills:     deps.Skills,
		agents:     deps.Agents,
		clients:    deps.Clients,
		mcpServers: deps.MCPServers,
		env: EnvInfo{
			Platform:    string(deps.Probe.Platform()),
			Home:        home,
			WSL2:        deps.Probe.IsWSL2(),
			GlobalRoot:  deps.GlobalRoot,
			ProjectRoot: deps.ProjectRoot,
		},
	}
}

// Run executes all five checks concurrently and returns the aggregated
// report. A panicking checker is confined to its own slot; the summary is
// computed only after every checker has finished.
func (r *Runner) Run(ctx context.Context) *Report {
	report := &Report{
		Timestamp: time.Now().UTC(),
		Env:       r.env,
	}

	slots := []struct {
		check Check
		slot  **CheckResult
	}{
		{r.configRepo, &report.ConfigRepo},
		{r.skills, &report.Skills},
		{r.agents, &report.Agents},
		{r.clients, &report.Clients},
		{r.mcpServers, &report.MCPServers},
	}

	var wg sync.WaitGroup
	for _, s := range slots {
		wg.Add(1)
		go func() {
			defer wg.Done()
			*s.slot = runGuarded(ctx, s.check)
		}()
	}
	wg.Wait()

	for _, res := range report.Results() {
		switch res.Status {
		case SeverityPass:
			report.Summary.Passed++
		case SeverityInfo:
			report.Summary.Info++
		case SeverityWarning:
			report.Summary.Warnings++
		case SeverityError:
			report.Summary.Errors++
		}
		report.Summary.Available += res.Available
		report.Summary.Missing += res.Missing
	}

	return report
}

// runGuarded runs one check, converting a panic into a degraded result so
// one misbehaving checker never aborts the rest.
func runGuarded(ctx context.Context, c Check) (res *CheckResult) {
	defer func() {
		if rec := recover(); rec != nil {
			res = &CheckResult{
				Name:     c.Name(),
				Status:   SeverityWarning,
				Message:  "check failed unexpectedly",
				Warnings: []string{fmt.Sprintf("recovered: %v", rec)},
			}
		}
	}()
	return c.Run(ctx)
}

package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jdmartin/aictl/internal/discover"
	"github.com/jdmartin/aictl/internal/doctor"
	"github.com/jdmartin/aictl/internal/errors"
	"github.com/jdmartin/aictl/internal/execx"
)

var (
	doctorJSON    bool
	doctorQuiet   bool
	doctorVerbose bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output the report as JSON")
	doctorCmd.Flags().BoolVar(&doctorQuiet, "quiet", false,
		"suppress output, exit code only")
	doctorCmd.Flags().BoolVar(&doctorVerbose, "verbose", false,
		"show all checks including passed ones")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration and client issues",
	Long: `Run diagnostic checks against the configuration repository and the
installed clients.

Five checks run concurrently: the configuration repository, skills,
agent definitions, client binaries, and MCP servers. A failing check
never blocks the others; the report always covers all five.

Output modes (mutually exclusive):
  (default)   Show errors and warnings
  --verbose   Show all checks including passed ones
  --quiet     No output, exit code only
  --json      Machine-readable JSON output`,
	PreRunE: validateDoctorFlags,
	RunE:    runDoctor,
}

// validateDoctorFlags ensures output flags are mutually exclusive.
func validateDoctorFlags(_ *cobra.Command, _ []string) error {
	count := 0
	if doctorJSON {
		count++
	}
	if doctorQuiet {
		count++
	}
	if doctorVerbose {
		count++
	}

	if count > 1 {
		return errors.NewValidationError(
			errors.New("flags --json, --quiet, and --verbose are mutually exclusive"))
	}

	return nil
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	l, err := acquireLock("doctor")
	if err != nil {
		return err
	}
	defer l.Release()

	env, err := resolveEnvironment()
	if err != nil {
		return err
	}

	// A broken configuration is a finding, not a fatal error: doctor
	// still runs the checks that do not need the merged document.
	cfg, cfgErr := env.loadConfig()
	if cfgErr != nil {
		slog.Warn("configuration unusable, running degraded checks", "error", cfgErr)
		cfg = nil
	}

	ctx := cmd.Context()
	runner := execx.NewRunner()
	detections := discover.NewService(env.probe, runner, cfg).DetectAll(ctx)

	home, err := env.probe.Home()
	if err != nil {
		return errors.NewSystemError(err, "")
	}

	report := doctor.NewRunner(doctor.RunnerDeps{
		ConfigRepo: &doctor.ConfigRepoCheck{GlobalRoot: env.globalRoot},
		Skills:     &doctor.SkillsCheck{GlobalRoot: env.globalRoot},
		Agents:     &doctor.AgentsCheck{GlobalRoot: env.globalRoot},
		Clients:    &doctor.ClientsCheck{Detections: detections},
		MCPServers: &doctor.MCPServersCheck{Config: cfg, Runner: runner, Home: home},

		Probe:       env.probe,
		GlobalRoot:  env.globalRoot,
		ProjectRoot: env.projectRoot,
	}).Run(ctx)

	if err := outputDoctorReport(report); err != nil {
		return err
	}

	if report.HasErrors() {
		return errors.NewExitError(
			errors.Errorf("diagnostics reported %d error(s)", report.Summary.Errors),
			errors.ExitConfig)
	}
	if cfgErr != nil {
		return cfgErr
	}
	return nil
}

func outputDoctorReport(report *doctor.Report) error {
	if doctorQuiet {
		return nil
	}

	if doctorJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return errors.Wrap(err, "encoding report")
		}
		return nil
	}

	return outputDoctorText(report)
}

func outputDoctorText(report *doctor.Report) error {
	hasOutput := false
	for _, result := range report.Results() {
		if !doctorVerbose && result.Status != doctor.SeverityError && result.Status != doctor.SeverityWarning {
			continue
		}

		hasOutput = true
		fmt.Printf("%s %s: %s\n", statusIcon(result.Status), result.Name, result.Message)
		for _, w := range result.Warnings {
			fmt.Printf("    %s\n", w)
		}
	}

	if hasOutput {
		fmt.Println()
	}

	if doctorVerbose {
		fmt.Printf("environment: %s, home %s", report.Env.Platform, report.Env.Home)
		if report.Env.WSL2 {
			fmt.Print(" (WSL2)")
		}
		fmt.Println()
		fmt.Printf("global root: %s\n", report.Env.GlobalRoot)
		if report.Env.ProjectRoot != "" {
			fmt.Printf("project root: %s\n", report.Env.ProjectRoot)
		}
	}

	fmt.Printf("checks: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info,
		report.Summary.Warnings, report.Summary.Errors)

	return nil
}

package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jdmartin/aictl/internal/discover"
	"github.com/jdmartin/aictl/internal/errors"
	"github.com/jdmartin/aictl/internal/execx"
)

var statusJSON bool

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which clients are installed",
	Long: `Probe the machine for each supported client and show what was found.

Detection never fails outright: a client that cannot be located is
reported as not installed, with the reasons listed. On WSL2, clients
installed on the Windows side are found through the mounted Windows
user profile.

Status is read-only; it takes no lock and changes nothing.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, _ []string) error {
	env, err := resolveEnvironment()
	if err != nil {
		return err
	}

	// A broken configuration only disables binary overrides here.
	cfg, cfgErr := env.loadConfig()
	if cfgErr != nil {
		cfg = nil
	}

	detections := discover.NewService(env.probe, execx.NewRunner(), cfg).
		DetectAll(cmd.Context())

	if statusJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(detections); err != nil {
			return errors.Wrap(err, "encoding detections")
		}
		return cfgErr
	}

	printStatusTable(os.Stdout, detections)
	return cfgErr
}

func printStatusTable(w io.Writer, detections []discover.Detection) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CLIENT\tSTATUS\tVERSION\tSOURCE\tPATH")
	for _, det := range detections {
		status := color.GreenString("installed")
		if !det.Found() {
			status = color.YellowString("not found")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			det.Client, status,
			orDash(det.Version), orDash(string(det.Source)),
			orDash(truncate(det.BinaryPath, 60)))
	}
	tw.Flush()

	for _, det := range detections {
		for _, warn := range det.Warnings {
			fmt.Fprintf(w, "%s %s: %s\n", color.YellowString("⚠"), det.Client, warn)
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/scanhub/scanhub/internal/discovery"
)

var discoverFormat string

var discoverCmd = &cobra.Command{
	Use:   "discover [reports-dir]",
	Short: "Detect installed scanners and present reports",
	Long: `Discover probes the local environment to find which scanners are installed
(in PATH) and which report files are already present in the reports
directory.

This is a read-only operation: no scanners are executed, no files are
written. Use it to see what 'scanhub process' would pick up.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().StringVar(&discoverFormat, "format", "text",
		"output format: text or json")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	reportsDir := cfg.ReportsDir
	if len(args) > 0 {
		reportsDir = args[0]
	}

	d := discovery.New(exec.LookPath, os.Stat)
	plan := d.Discover(reportsDir)

	switch discoverFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	case "text":
		printDiscoveryText(plan)
		return nil
	default:
		return &ValidationError{Message: fmt.Sprintf("invalid format: %s (must be text or json)", discoverFormat)}
	}
}

func printDiscoveryText(plan *discovery.DiscoveryPlan) {
	fmt.Printf("Reports directory: %s\n", plan.ReportsDir)
	fmt.Printf("Found %d of %d report(s), %d scanner(s) installed\n\n",
		plan.TotalReports, len(plan.Tools), plan.TotalInstalled)

	for _, td := range plan.Tools {
		status := "✗ no report, scanner not installed"
		if td.HasReport {
			status = "✓ report found"
		} else if td.Installed {
			status = "○ scanner installed, no report yet"
		}

		fmt.Printf("  %-17s %s\n", string(td.Tool), status)

		if td.HasReport {
			fmt.Printf("                    report: %s\n", td.ReportPath)
		}

		if td.Installed {
			fmt.Printf("                    binary: %s\n", td.BinaryPath)
		} else if info, ok := discovery.Registry[td.Tool]; ok && info.InstallHint != "" {
			fmt.Printf("                    install: %s\n", info.InstallHint)
		}

		fmt.Println()
	}

	if plan.TotalReports == 0 {
		fmt.Println("No scanner reports found. Run your scanners first, then 'scanhub process'.")
	}
}

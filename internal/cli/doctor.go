package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/scanhub/scanhub/internal/config"
	"github.com/scanhub/scanhub/internal/discovery"
	"github.com/scanhub/scanhub/internal/storage"
	"github.com/scanhub/scanhub/internal/validator"
)

var (
	doctorFormat      string
	doctorWriteConfig bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check environment readiness and diagnose common problems",
	Long: `Doctor validates your ScanHub setup end-to-end:

  1. Config file — found and readable?
  2. Reports directory — present?
  3. Scanner reports — present and parseable?
  4. Storage — directory writable?
  5. Run history — stored runs sane?

Fix the issues it reports, then run 'scanhub process' with confidence.`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().StringVar(&doctorFormat, "format", "text",
		"output format: text or json")
	doctorCmd.Flags().BoolVar(&doctorWriteConfig, "write-config", false,
		"write a default config file before running the checks")
}

type doctorCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // "ok", "warn", "fail"
	Detail string `json:"detail,omitempty"`
}

type doctorResult struct {
	Checks  []doctorCheck `json:"checks"`
	Summary string        `json:"summary"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	if doctorWriteConfig {
		path := config.ConfigPath()
		if err := config.WriteDefaultConfig(path); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Printf("Wrote default config to %s\n\n", path)
	}

	var checks []doctorCheck

	// 1. Config file
	checks = append(checks, checkConfig())

	// 2. Reports directory
	checks = append(checks, checkReportsDir())

	// 3. Scanner reports
	checks = append(checks, checkReports()...)

	// 4. Storage directory
	checks = append(checks, checkStorage())

	// 5. Run history
	checks = append(checks, checkHistory())

	// Build summary
	fails, warns := 0, 0
	for _, c := range checks {
		switch c.Status {
		case "fail":
			fails++
		case "warn":
			warns++
		}
	}

	summary := "all checks passed"
	if fails > 0 {
		summary = fmt.Sprintf("%d issue(s) found", fails)
	} else if warns > 0 {
		summary = fmt.Sprintf("ok with %d warning(s)", warns)
	}

	result := doctorResult{Checks: checks, Summary: summary}

	if doctorFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	return writeDoctorText(result)
}

func writeDoctorText(result doctorResult) error {
	icons := map[string]string{
		"ok":   "✓",
		"warn": "△",
		"fail": "✗",
	}

	for _, c := range result.Checks {
		icon := icons[c.Status]
		if c.Detail != "" {
			fmt.Printf("  %s %-20s %s\n", icon, c.Name, c.Detail)
		} else {
			fmt.Printf("  %s %s\n", icon, c.Name)
		}
	}

	fmt.Printf("\n%s\n", result.Summary)
	return nil
}

func checkConfig() doctorCheck {
	path := config.ConfigPath()
	if configFile != "" {
		path = configFile
	}

	if _, err := os.Stat(path); err != nil {
		return doctorCheck{
			Name:   "config",
			Status: "warn",
			Detail: "no config file found (using defaults). Run: scanhub doctor --write-config",
		}
	}

	return doctorCheck{
		Name:   "config",
		Status: "ok",
		Detail: path,
	}
}

func checkReportsDir() doctorCheck {
	info, err := os.Stat(cfg.ReportsDir)
	if err != nil {
		return doctorCheck{
			Name:   "reports-dir",
			Status: "warn",
			Detail: fmt.Sprintf("%s does not exist. Run your scanners first, or pass a directory to 'scanhub process'", cfg.ReportsDir),
		}
	}

	if !info.IsDir() {
		return doctorCheck{
			Name:   "reports-dir",
			Status: "fail",
			Detail: fmt.Sprintf("%s exists but is not a directory", cfg.ReportsDir),
		}
	}

	return doctorCheck{
		Name:   "reports-dir",
		Status: "ok",
		Detail: cfg.ReportsDir,
	}
}

func checkReports() []doctorCheck {
	d := discovery.New(exec.LookPath, os.Stat)
	plan := d.Discover(cfg.ReportsDir)

	v := validator.New()
	var checks []doctorCheck

	for _, td := range plan.Tools {
		c := doctorCheck{Name: string(td.Tool)}

		switch {
		case td.HasReport:
			data, err := os.ReadFile(td.ReportPath)
			if err != nil {
				c.Status = "fail"
				c.Detail = fmt.Sprintf("%s unreadable: %v", td.ReportFile, err)
			} else if err := v.ValidateReport(td.Tool, data); err != nil {
				c.Status = "fail"
				c.Detail = flattenDetail(err)
			} else {
				c.Status = "ok"
				c.Detail = td.ReportFile
			}
		case td.Installed:
			c.Status = "warn"
			c.Detail = fmt.Sprintf("scanner installed, report missing (%s)", td.ReportFile)
		default:
			info := discovery.Registry[td.Tool]
			c.Status = "warn"
			c.Detail = fmt.Sprintf("not installed. Run: %s", info.InstallHint)
		}

		checks = append(checks, c)
	}

	if plan.TotalReports == 0 {
		checks = append(checks, doctorCheck{
			Name:   "reports",
			Status: "fail",
			Detail: "no scanner reports found, nothing to process",
		})
	}

	return checks
}

func checkStorage() doctorCheck {
	storagePath, err := getStoragePath(cfg.StorageDir)
	if err != nil {
		return doctorCheck{
			Name:   "storage",
			Status: "fail",
			Detail: fmt.Sprintf("cannot resolve %s: %v", cfg.StorageDir, err),
		}
	}

	info, err := os.Stat(storagePath)
	if err != nil {
		// Directory doesn't exist yet, it will be created on first --store
		return doctorCheck{
			Name:   "storage",
			Status: "ok",
			Detail: fmt.Sprintf("%s (will be created on first --store)", storagePath),
		}
	}

	if !info.IsDir() {
		return doctorCheck{
			Name:   "storage",
			Status: "fail",
			Detail: fmt.Sprintf("%s exists but is not a directory", storagePath),
		}
	}

	// Try writing a temp file to check write access
	tmpFile := storagePath + "/.doctor-check"
	if err := os.WriteFile(tmpFile, []byte("ok"), 0600); err != nil {
		return doctorCheck{
			Name:   "storage",
			Status: "fail",
			Detail: fmt.Sprintf("%s not writable: %v", storagePath, err),
		}
	}
	_ = os.Remove(tmpFile)

	return doctorCheck{
		Name:   "storage",
		Status: "ok",
		Detail: storagePath,
	}
}

func checkHistory() doctorCheck {
	storagePath, err := getStoragePath(cfg.StorageDir)
	if err != nil {
		return doctorCheck{Name: "history", Status: "fail", Detail: err.Error()}
	}

	store := storage.NewLocal(storagePath)
	latest, err := store.GetLatestRun()
	if err != nil {
		return doctorCheck{
			Name:   "history",
			Status: "warn",
			Detail: "no stored runs yet. Run: scanhub process --store",
		}
	}

	when, err := time.Parse(time.RFC3339, latest.Metadata.ScanDate)
	if err != nil {
		return doctorCheck{
			Name:   "history",
			Status: "fail",
			Detail: fmt.Sprintf("latest run has a malformed scan_date: %q", latest.Metadata.ScanDate),
		}
	}

	if err := validator.ValidateScanDate(when); err != nil {
		return doctorCheck{
			Name:   "history",
			Status: "warn",
			Detail: fmt.Sprintf("latest run: %v", err),
		}
	}

	return doctorCheck{
		Name:   "history",
		Status: "ok",
		Detail: fmt.Sprintf("latest run %s", formatRunDate(latest.Metadata.ScanDate)),
	}
}

// flattenDetail collapses a multi-line validation error into one line.
func flattenDetail(err error) string {
	s := strings.ReplaceAll(err.Error(), "\n  - ", "; ")
	return strings.ReplaceAll(s, "\n", " ")
}

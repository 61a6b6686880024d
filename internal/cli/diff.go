package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/scanhub/scanhub/internal/aggregator"
	"github.com/scanhub/scanhub/internal/models"
	"github.com/scanhub/scanhub/internal/storage"
)

var (
	diffFormat   string
	diffOutput   string
	diffBaseline string
	diffFailNew  bool
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show what changed between two runs",
	Long: `Compare the latest run against a baseline to show which findings are new
and which were resolved.

Findings are matched by fingerprint (tool, location, and identifier), so
reordering or metadata changes between runs do not count as drift.

By default compares the two most recent stored runs. Use --baseline to
compare against a normalized document file instead.

Exit codes:
  0  No new findings (or --fail-new not set)
  1  New findings detected (with --fail-new)

Example:
  scanhub diff
  scanhub diff --fail-new
  scanhub diff --baseline ./baseline.json --format json`,
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().StringVarP(&diffFormat, "format", "f", "text",
		"output format: text or json")
	diffCmd.Flags().StringVarP(&diffOutput, "output", "o", "",
		"write output to file instead of stdout")
	diffCmd.Flags().StringVar(&diffBaseline, "baseline", "",
		"path to a baseline normalized document (default: previous stored run)")
	diffCmd.Flags().BoolVar(&diffFailNew, "fail-new", false,
		"exit 1 if new findings are found (for CI gating)")
}

// DiffResult is the structured output of a diff operation.
type DiffResult struct {
	Baseline string                       `json:"baseline"`
	Current  string                       `json:"current"`
	New      []models.VulnerabilityRecord `json:"new"`
	Resolved []models.VulnerabilityRecord `json:"resolved"`
	Summary  DiffSummary                  `json:"summary"`
}

// DiffSummary holds aggregate counts for a diff.
type DiffSummary struct {
	BaselineTotal int            `json:"baseline_total"`
	CurrentTotal  int            `json:"current_total"`
	BaselineScore int            `json:"baseline_risk_score"`
	CurrentScore  int            `json:"current_risk_score"`
	NewCount      int            `json:"new_count"`
	ResolvedCount int            `json:"resolved_count"`
	Delta         int            `json:"delta"` // positive = more findings
	NewBySeverity map[string]int `json:"new_by_severity"`
	NewByTool     map[string]int `json:"new_by_tool"`
}

func runDiff(cmd *cobra.Command, args []string) error {
	storagePath, err := getStoragePath(cfg.StorageDir)
	if err != nil {
		logError("Failed to resolve storage path: %v", err)
		return err
	}

	store := storage.NewLocal(storagePath)

	current, err := store.GetLatestRun()
	if err != nil {
		logError("No current run found: %v", err)
		fmt.Println("No stored runs found. Run 'scanhub process --store' first.")
		return err
	}

	var baseline *models.NormalizedReport
	if diffBaseline != "" {
		baseline, err = loadNormalizedFile(diffBaseline)
		if err != nil {
			logError("Failed to load baseline: %v", err)
			return err
		}
	} else {
		reports, err := store.GetLastNRuns(2)
		if err != nil || len(reports) < 2 {
			fmt.Println("Need at least 2 stored runs for diff.")
			fmt.Println("Run 'scanhub process --store' to generate more runs.")
			return nil
		}
		baseline = reports[0]
	}

	logVerbose("Comparing %s (current) vs %s (baseline)",
		formatRunDate(current.Metadata.ScanDate), formatRunDate(baseline.Metadata.ScanDate))

	result := computeDiff(baseline, current)

	if err := outputDiff(result, diffFormat, diffOutput); err != nil {
		return err
	}

	if diffFailNew && result.Summary.NewCount > 0 {
		return &NewFindingsError{Count: result.Summary.NewCount}
	}

	return nil
}

// computeDiff wraps the fingerprint diff with run metadata and breakdowns.
func computeDiff(baseline, current *models.NormalizedReport) *DiffResult {
	diff := aggregator.DiffReports(current.Vulnerabilities, baseline.Vulnerabilities)

	newBySeverity := map[string]int{}
	newByTool := map[string]int{}
	for _, record := range diff.New {
		newBySeverity[record.Severity]++
		newByTool[record.Tool]++
	}

	return &DiffResult{
		Baseline: formatRunDate(baseline.Metadata.ScanDate),
		Current:  formatRunDate(current.Metadata.ScanDate),
		New:      diff.New,
		Resolved: diff.Resolved,
		Summary: DiffSummary{
			BaselineTotal: baseline.RiskMetrics.Total,
			CurrentTotal:  current.RiskMetrics.Total,
			BaselineScore: baseline.RiskMetrics.RiskScore,
			CurrentScore:  current.RiskMetrics.RiskScore,
			NewCount:      len(diff.New),
			ResolvedCount: len(diff.Resolved),
			Delta:         current.RiskMetrics.Total - baseline.RiskMetrics.Total,
			NewBySeverity: newBySeverity,
			NewByTool:     newByTool,
		},
	}
}

// outputDiff renders the diff result in the chosen format.
func outputDiff(result *DiffResult, format, outputPath string) error {
	writer := os.Stdout
	if outputPath != "" {
		var err error
		writer, err = os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = writer.Close() }()
	}

	switch format {
	case "json":
		enc := json.NewEncoder(writer)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "text":
		return printDiffText(writer, result)
	default:
		return fmt.Errorf("unsupported format: %s (use text or json)", format)
	}
}

func printDiffText(w *os.File, r *DiffResult) error {
	p := func(format string, args ...interface{}) {
		_, _ = fmt.Fprintf(w, format, args...)
	}

	p("╔════════════════════════════════════════════╗\n")
	p("║           ScanHub Findings Diff            ║\n")
	p("╚════════════════════════════════════════════╝\n\n")

	p("Baseline: %s\n", r.Baseline)
	p("Current:  %s\n\n", r.Current)

	deltaSign := "+"
	if r.Summary.Delta < 0 {
		deltaSign = ""
	}
	p("Findings: %d → %d (%s%d)\n", r.Summary.BaselineTotal, r.Summary.CurrentTotal, deltaSign, r.Summary.Delta)
	p("Risk score: %d → %d\n", r.Summary.BaselineScore, r.Summary.CurrentScore)
	p("New: %d   Resolved: %d\n\n", r.Summary.NewCount, r.Summary.ResolvedCount)

	if len(r.New) > 0 {
		p("New Findings:\n")
		p("--------------------------------------------------\n")
		for _, record := range r.New {
			p("  [%s] %s: %s (%s)\n", record.Severity, record.Tool, record.Title, record.Location())
		}
		p("\n")
	}

	if len(r.Resolved) > 0 {
		p("Resolved Findings:\n")
		p("--------------------------------------------------\n")
		for _, record := range r.Resolved {
			p("  ✓ %s: %s (%s)\n", record.Tool, record.Title, record.Location())
		}
		p("\n")
	}

	if len(r.Summary.NewBySeverity) > 0 {
		p("New by Severity:\n")
		for _, sev := range []string{
			models.SeverityCritical, models.SeverityHigh, models.SeverityMedium,
			models.SeverityLow, models.SeverityInfo,
		} {
			if count, ok := r.Summary.NewBySeverity[sev]; ok {
				p("  %s: %d\n", sev, count)
			}
		}
		p("\n")
	}

	if len(r.Summary.NewByTool) > 0 {
		p("New by Tool:\n")
		for _, tool := range models.ToolOrder {
			name := models.SupportedTools[tool].Name
			if count, ok := r.Summary.NewByTool[name]; ok {
				p("  %s: %d\n", name, count)
			}
		}
		p("\n")
	}

	if r.Summary.NewCount == 0 && r.Summary.ResolvedCount == 0 {
		p("No drift detected.\n")
	} else if r.Summary.NewCount == 0 {
		p("No new findings, only improvements.\n")
	}

	return nil
}

// formatRunDate renders an RFC3339 scan date in a compact human form.
func formatRunDate(scanDate string) string {
	t, err := time.Parse(time.RFC3339, scanDate)
	if err != nil {
		return scanDate
	}
	return t.Format("2006-01-02 15:04:05")
}

// loadNormalizedFile loads a normalized document from a JSON file path.
func loadNormalizedFile(path string) (*models.NormalizedReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var report models.NormalizedReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

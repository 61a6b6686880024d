package cli

import (
	"github.com/spf13/cobra"

	"github.com/scanhub/scanhub/internal/collector"
)

var (
	processFormat     string
	processOutput     string
	processStore      bool
	processStorageDir string
	processThreshold  int
)

var processCmd = &cobra.Command{
	Use:   "process [reports-dir]",
	Short: "Normalize scanner reports into a single vulnerability document",
	Long: `Process reads the JSON reports produced by the supported scanners from the
reports directory, normalizes every finding into the common schema, computes
risk metrics and compliance mappings, and writes the combined document to
<reports-dir>/processed/normalized_vulnerabilities.json.

Tools are processed in a fixed order: gitleaks, semgrep, dependency-check,
trivy, zap. A missing or malformed report is recorded in the tool summary
and never fails the run.`,
	Example: `  scanhub process
  scanhub process ./reports --format json
  scanhub process --store --fail-threshold 50`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVarP(&processFormat, "format", "f", "", "output format: text, json, or both (default from config)")
	processCmd.Flags().StringVarP(&processOutput, "output", "o", "", "write console output to a file instead of stdout")
	processCmd.Flags().BoolVar(&processStore, "store", false, "store this run for trend analysis")
	processCmd.Flags().StringVar(&processStorageDir, "storage-dir", "", "directory for stored runs (default from config)")
	processCmd.Flags().IntVar(&processThreshold, "fail-threshold", 0, "fail when the risk score exceeds this value (0 = disabled)")
}

func runProcess(cmd *cobra.Command, args []string) error {
	reportsDir := cfg.ReportsDir
	if len(args) > 0 {
		reportsDir = args[0]
	}

	format := processFormat
	if format == "" {
		format = cfg.Format
	}

	storageDir := processStorageDir
	if storageDir == "" {
		storageDir = cfg.StorageDir
	}

	threshold := processThreshold
	if threshold == 0 {
		threshold = cfg.FailThreshold
	}

	logVerbose("Processing scanner reports from: %s", reportsDir)

	coll := collector.New(collector.Config{ReportsDir: reportsDir})
	results := coll.Collect()

	for _, result := range results {
		if result.OK() {
			logVerbose("Loaded %s (%s)", result.File, result.Duration)
		}
	}

	return RunPipeline(collector.Sources(results), PipelineConfig{
		ReportsDir: reportsDir,
		Format:     format,
		Output:     processOutput,
		Store:      processStore,
		StorageDir: storageDir,
		Threshold:  threshold,
	})
}

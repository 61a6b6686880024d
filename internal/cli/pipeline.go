package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/scanhub/scanhub/internal/aggregator"
	"github.com/scanhub/scanhub/internal/models"
	"github.com/scanhub/scanhub/internal/policy"
	"github.com/scanhub/scanhub/internal/reporter"
	"github.com/scanhub/scanhub/internal/storage"
)

// OutputSubdir and OutputFilename fix where the normalized document is
// written, relative to the reports directory. CI jobs pick the artifact up
// from there.
const (
	OutputSubdir   = "processed"
	OutputFilename = "normalized_vulnerabilities.json"
)

// PipelineConfig holds options shared by commands that run the full
// normalization pipeline.
type PipelineConfig struct {
	ReportsDir string
	Format     string
	Output     string
	Store      bool
	StorageDir string
	Threshold  int
}

// RunPipeline executes the normalization pipeline on a set of source reports:
// aggregate → write normalized document → trend → store → output → policy →
// threshold check.
func RunPipeline(sources []models.SourceReport, pcfg PipelineConfig) error {
	// Step 1: Normalize and aggregate
	agg := aggregator.New()
	report, err := agg.Aggregate(sources)
	if err != nil {
		logError("Failed to aggregate reports: %v", err)
		return err
	}

	logVerbose("Normalized %d vulnerabilities from %d of %d tools",
		report.RiskMetrics.Total, report.Metadata.ProcessedTools, report.Metadata.TotalTools)

	// Step 2: Write the normalized document next to the raw reports
	artifactPath, err := writeNormalizedReport(report, pcfg.ReportsDir)
	if err != nil {
		logError("Failed to write normalized report: %v", err)
		return err
	}

	// Step 3: Compare against the previous stored run. This must happen
	// before the new run is saved, otherwise it would be its own baseline.
	var trend *models.Trend
	if pcfg.Store {
		storagePath, err := getStoragePath(pcfg.StorageDir)
		if err != nil {
			logError("Failed to resolve storage path: %v", err)
			return err
		}

		store := storage.NewLocal(storagePath)

		if previous, err := store.GetLatestRun(); err == nil {
			logVerbose("Comparing against previous run from %s", previous.Metadata.ScanDate)
			trend = aggregator.NewTrendAnalyzer().CalculateTrend(report, previous)
		} else {
			logDebug("No previous run to compare against: %v", err)
		}

		// Step 4: Store the new run
		if err := store.SaveNormalizedReport(report); err != nil {
			logError("Failed to store report: %v", err)
			return err
		}

		logVerbose("Stored run in: %s", storagePath)
	}

	// Step 5: Generate console output
	if err := generateOutput(report, trend, pcfg.Format, pcfg.Output, artifactPath); err != nil {
		logError("Failed to generate output: %v", err)
		return err
	}

	// Step 6: Policy enforcement (if .scanhub-policy.yaml exists)
	if policyPath := policy.FindPolicyFile(); policyPath != "" {
		logVerbose("Applying policy file: %s", policyPath)

		pol, err := policy.LoadFromFile(policyPath)
		if err != nil {
			logError("Failed to load policy: %v", err)
			return err
		}

		if pol != nil {
			result := pol.Evaluate(report)
			if !result.Pass {
				for _, v := range result.Violations {
					logError("Policy violation [%s]: %s", v.Rule, v.Message)
				}
				return &PolicyViolationError{Violations: len(result.Violations)}
			}
			logVerbose("Policy check passed")
		}
	}

	// Step 7: Check risk score threshold
	if pcfg.Threshold > 0 && report.RiskMetrics.RiskScore > pcfg.Threshold {
		logError("Risk score (%d) exceeds threshold (%d)", report.RiskMetrics.RiskScore, pcfg.Threshold)
		return &ThresholdExceededError{
			RiskScore: report.RiskMetrics.RiskScore,
			Threshold: pcfg.Threshold,
		}
	}

	return nil
}

// writeNormalizedReport writes the normalized document to
// <reportsDir>/processed/normalized_vulnerabilities.json and returns the path.
func writeNormalizedReport(report *models.NormalizedReport, reportsDir string) (string, error) {
	outDir := filepath.Join(reportsDir, OutputSubdir)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	outPath := filepath.Join(outDir, OutputFilename)
	file, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if err := reporter.NewJSONReporter(file, true).Generate(report); err != nil {
		return "", fmt.Errorf("failed to write normalized report: %w", err)
	}

	return outPath, nil
}

// generateOutput renders the report to stdout or to the requested file.
// The json format stays pure JSON so it can be piped into jq.
func generateOutput(report *models.NormalizedReport, trend *models.Trend, format, outputPath, artifactPath string) error {
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
	case "text":
		textReporter := reporter.NewTextReporter(writer).WithTrend(trend)
		if err := textReporter.Generate(report); err != nil {
			return err
		}

		_, err := fmt.Fprintf(writer, "Normalized report: %s\n", artifactPath)
		return err

	case "json":
		jsonReporter := reporter.NewJSONReporter(writer, true)
		return jsonReporter.Generate(report)

	case "both":
		textReporter := reporter.NewTextReporter(writer).WithTrend(trend)
		if err := textReporter.Generate(report); err != nil {
			return err
		}

		if _, err := fmt.Fprintf(writer, "\n=== JSON Output ===\n\n"); err != nil {
			return err
		}

		jsonReporter := reporter.NewJSONReporter(writer, true)
		return jsonReporter.Generate(report)

	default:
		return fmt.Errorf("unsupported format: %s (use text, json, or both)", format)
	}
}

// getStoragePath resolves the storage path, expanding ~ and converting to absolute.
func getStoragePath(storageDir string) (string, error) {
	if strings.HasPrefix(storageDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		storageDir = filepath.Join(home, storageDir[2:])
	}

	absPath, err := filepath.Abs(storageDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	return absPath, nil
}

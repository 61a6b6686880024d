package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scanhub/scanhub/internal/aggregator"
	"github.com/scanhub/scanhub/internal/models"
	"github.com/scanhub/scanhub/internal/reporter"
	"github.com/scanhub/scanhub/internal/storage"
)

var (
	summarizeLastN   int
	summarizeCompare bool
	summarizeFormat  string
)

// summarizeCmd represents the summarize command
var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Show summary and trends from stored runs",
	Long: `Analyze historical data from stored runs and show trends over time.

This command displays:
- Latest run summary
- Trend analysis across the last N runs
- Risk score sparklines showing changes over time
- Per-tool trend comparison
- Top remediation recommendations

Example:
  scanhub summarize
  scanhub summarize --last 7
  scanhub summarize --compare
  scanhub summarize --format json`,
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().IntVarP(&summarizeLastN, "last", "n", 0,
		"number of runs to analyze (default from config)")
	summarizeCmd.Flags().BoolVarP(&summarizeCompare, "compare", "c", false,
		"compare latest run with previous")
	summarizeCmd.Flags().StringVarP(&summarizeFormat, "format", "f", "text",
		"output format: text or json")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	if summarizeLastN == 0 {
		summarizeLastN = cfg.LastRuns
	}

	storagePath, err := getStoragePath(cfg.StorageDir)
	if err != nil {
		logError("Failed to resolve storage path: %v", err)
		return err
	}

	store := storage.NewLocal(storagePath)

	logVerbose("Loading runs from: %s", storagePath)

	runs, err := store.ListRuns()
	if err != nil {
		logError("Failed to list runs: %v", err)
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No stored runs found.")
		fmt.Println("Run 'scanhub process --store' to generate your first run.")
		return nil
	}

	logVerbose("Found %d stored runs", len(runs))

	if summarizeCompare {
		return runComparisonReport(store)
	}
	return runTrendReport(store, summarizeLastN)
}

// runComparisonReport prints a comparison between the latest and previous runs
func runComparisonReport(store *storage.LocalStorage) error {
	reports, err := store.GetLastNRuns(2)
	if err != nil {
		logError("Failed to load runs: %v", err)
		return err
	}

	if len(reports) < 2 {
		fmt.Println("Need at least 2 runs for comparison.")
		fmt.Println("Run 'scanhub process --store' to generate more runs.")
		return nil
	}

	previous := reports[0]
	current := reports[1]

	logVerbose("Comparing %s vs %s", current.Metadata.ScanDate, previous.Metadata.ScanDate)

	analyzer := aggregator.NewTrendAnalyzer()
	fmt.Print(analyzer.GenerateComparisonReport(current, previous))

	return nil
}

// runTrendReport prints a trend report across the last N runs
func runTrendReport(store *storage.LocalStorage, lastN int) error {
	reports, err := store.GetLastNRuns(lastN)
	if err != nil {
		logError("Failed to load runs: %v", err)
		return err
	}

	if len(reports) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	logVerbose("Analyzing trends across %d runs", len(reports))

	analyzer := aggregator.NewTrendAnalyzer()
	trendSummary := analyzer.AnalyzeLastNRuns(reports)

	if trendSummary == nil {
		fmt.Println("Unable to generate trend summary.")
		return nil
	}

	latest := reports[len(reports)-1]

	var trend *models.Trend
	if len(reports) >= 2 {
		trend = analyzer.CalculateTrend(latest, reports[len(reports)-2])
	}

	switch summarizeFormat {
	case "text":
		printTrendSummaryText(trendSummary, latest, trend)
	case "json":
		return reporter.NewJSONReporter(os.Stdout, true).GenerateSummaryOnly(latest, trend)
	default:
		return fmt.Errorf("unsupported format: %s", summarizeFormat)
	}

	return nil
}

// printTrendSummaryText prints the trend summary in human-readable form
func printTrendSummaryText(summary *models.TrendSummary, latest *models.NormalizedReport, trend *models.Trend) {
	fmt.Println("╔════════════════════════════════════════════╗")
	fmt.Println("║            ScanHub Trend Summary           ║")
	fmt.Println("╚════════════════════════════════════════════╝")
	fmt.Println()

	fmt.Printf("Time Range: %s\n", summary.TimeRange)
	fmt.Printf("Runs Analyzed: %d\n", summary.RunsAnalyzed)
	fmt.Println()

	fmt.Printf("Latest Run: %s\n", formatRunDate(latest.Metadata.ScanDate))
	fmt.Printf("Total Findings: %d\n", latest.RiskMetrics.Total)
	fmt.Printf("Risk Score: %d (%s)", latest.RiskMetrics.RiskScore, latest.RiskMetrics.RiskLevel)

	if trend != nil {
		fmt.Printf(" (%s %s %.1f%%)\n",
			aggregator.GetTrendIndicator(trend.Direction), trend.Direction, trend.ChangePercent)
	} else {
		fmt.Println()
	}

	fmt.Println()

	if len(summary.ScoreSparkline) > 0 {
		fmt.Println("Risk Score Trend (over time):")
		fmt.Print("  ")
		printSparkline(summary.ScoreSparkline)
	}

	if len(summary.TotalSparkline) > 0 {
		fmt.Println("Finding Count Trend (over time):")
		fmt.Print("  ")
		printSparkline(summary.TotalSparkline)
	}

	if len(summary.ByTool) > 0 {
		fmt.Println()
		fmt.Println("By Tool:")
		fmt.Println("--------------------------------------------------")

		for _, tool := range models.ToolOrder {
			toolTrend, ok := summary.ByTool[string(tool)]
			if !ok {
				continue
			}

			indicator := "→"
			if toolTrend.Change < 0 {
				indicator = "↓"
			} else if toolTrend.Change > 0 {
				indicator = "↑"
			}

			fmt.Printf("  %s: %d findings (%s %+d, %.1f%%)\n",
				toolTrend.Name,
				toolTrend.CurrentCount,
				indicator,
				toolTrend.Change,
				toolTrend.ChangePercent)
		}
	}

	recGen := aggregator.NewRecommendationGenerator()
	recs := recGen.GenerateRecommendations(latest)
	if len(recs) > 0 {
		fmt.Println()
		fmt.Println("Top Recommendations:")
		fmt.Println("--------------------------------------------------")

		topRecs := recGen.GetTopRecommendations(recs, 5)
		for i, rec := range topRecs {
			fmt.Printf("  %d. [%s] %s\n", i+1, rec.Severity, rec.Action)
		}
	}

	fmt.Println()
	fmt.Println("Run 'scanhub process --store' to update data")
}

// printSparkline prints a simple block-character sparkline
func printSparkline(values []int) {
	if len(values) == 0 {
		return
	}

	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	for _, v := range values {
		if max == min {
			fmt.Print(string(chars[len(chars)/2]))
		} else {
			normalized := float64(v-min) / float64(max-min)
			idx := int(normalized * float64(len(chars)-1))
			fmt.Print(string(chars[idx]))
		}
	}

	fmt.Printf(" [%d → %d]\n", values[0], values[len(values)-1])
}

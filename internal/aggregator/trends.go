package aggregator

import (
	"fmt"
	"time"

	"github.com/scanhub/scanhub/internal/models"
)

// TrendAnalyzer analyzes risk movement across multiple runs
type TrendAnalyzer struct{}

// NewTrendAnalyzer creates a new trend analyzer
func NewTrendAnalyzer() *TrendAnalyzer {
	return &TrendAnalyzer{}
}

// CalculateTrend compares the current report with a previous one
func (t *TrendAnalyzer) CalculateTrend(current, previous *models.NormalizedReport) *models.Trend {
	if previous == nil {
		return nil
	}

	trend := &models.Trend{
		PreviousTotal: previous.RiskMetrics.Total,
		CurrentTotal:  current.RiskMetrics.Total,
		PreviousScore: previous.RiskMetrics.RiskScore,
		CurrentScore:  current.RiskMetrics.RiskScore,
		ComparedWith:  previous.Metadata.ScanDate,
	}

	// Direction follows the weighted risk score rather than the raw
	// finding count, so one new critical outweighs two resolved lows.
	change := trend.CurrentScore - trend.PreviousScore
	if trend.PreviousScore > 0 {
		trend.ChangePercent = float64(change) / float64(trend.PreviousScore) * 100.0
	}

	switch {
	case change < 0:
		trend.Direction = "improving"
	case change > 0:
		trend.Direction = "degrading"
	default:
		trend.Direction = "stable"
	}

	diff := DiffReports(current.Vulnerabilities, previous.Vulnerabilities)
	trend.NewFindings = len(diff.New)
	trend.ResolvedFindings = len(diff.Resolved)

	return trend
}

// AnalyzeLastNRuns analyzes risk movement across the last N runs
func (t *TrendAnalyzer) AnalyzeLastNRuns(runs []*models.NormalizedReport) *models.TrendSummary {
	if len(runs) == 0 {
		return nil
	}

	summary := &models.TrendSummary{
		RunsAnalyzed: len(runs),
		ByTool:       make(map[string]*models.ToolTrend),
	}

	// Determine time range
	if len(runs) > 1 {
		earliest := parseScanDate(runs[0].Metadata.ScanDate)
		latest := parseScanDate(runs[len(runs)-1].Metadata.ScanDate)
		days := int(latest.Sub(earliest).Hours() / 24)
		summary.TimeRange = fmt.Sprintf("Last %d days", days)
	} else {
		summary.TimeRange = "Single run"
	}

	// Risk score and finding count over time, oldest first
	summary.ScoreSparkline = make([]int, len(runs))
	summary.TotalSparkline = make([]int, len(runs))
	for i, run := range runs {
		summary.ScoreSparkline[i] = run.RiskMetrics.RiskScore
		summary.TotalSparkline[i] = run.RiskMetrics.Total
	}

	if len(runs) >= 2 {
		t.calculateToolTrends(runs, summary)
	}

	return summary
}

// calculateToolTrends calculates the change for each tool
func (t *TrendAnalyzer) calculateToolTrends(runs []*models.NormalizedReport, summary *models.TrendSummary) {
	earliest := runs[0]
	latest := runs[len(runs)-1]

	// Find all tools across both runs
	allTools := make(map[string]bool)
	for tool := range earliest.ToolSummary {
		allTools[tool] = true
	}
	for tool := range latest.ToolSummary {
		allTools[tool] = true
	}

	for tool := range allTools {
		previousCount := earliest.ToolSummary[tool].Count
		currentCount := latest.ToolSummary[tool].Count
		change := currentCount - previousCount

		changePercent := 0.0
		if previousCount > 0 {
			changePercent = float64(change) / float64(previousCount) * 100.0
		} else if currentCount > 0 {
			// Tool appeared for the first time
			changePercent = 100.0
		}

		summary.ByTool[tool] = &models.ToolTrend{
			Name:          tool,
			CurrentCount:  currentCount,
			PreviousCount: previousCount,
			Change:        change,
			ChangePercent: changePercent,
		}
	}
}

// GenerateComparisonReport creates a detailed comparison between two runs
func (t *TrendAnalyzer) GenerateComparisonReport(current, previous *models.NormalizedReport) string {
	if previous == nil {
		return "No previous run to compare with"
	}

	trend := t.CalculateTrend(current, previous)

	report := fmt.Sprintf("Comparison: %s vs %s\n\n",
		formatScanDay(current.Metadata.ScanDate),
		formatScanDay(previous.Metadata.ScanDate))

	report += fmt.Sprintf("Risk score: %d → %d (%.1f%% %s)\n",
		trend.PreviousScore,
		trend.CurrentScore,
		trend.ChangePercent,
		trend.Direction)
	report += fmt.Sprintf("Findings: %d → %d\n\n", trend.PreviousTotal, trend.CurrentTotal)

	// Per-tool changes in registry order
	for _, tool := range models.ToolOrder {
		prevCount := previous.ToolSummary[string(tool)].Count
		currCount := current.ToolSummary[string(tool)].Count

		if prevCount == currCount {
			continue // Skip unchanged tools
		}

		report += fmt.Sprintf("%s:\n", tool)
		report += fmt.Sprintf("  %d → %d (", prevCount, currCount)

		if currCount > prevCount {
			report += fmt.Sprintf("+%d)\n", currCount-prevCount)
		} else {
			report += fmt.Sprintf("%d)\n", currCount-prevCount)
		}
	}

	if trend.NewFindings > 0 {
		report += fmt.Sprintf("\nNew Findings: %d\n", trend.NewFindings)
	}

	if trend.ResolvedFindings > 0 {
		report += fmt.Sprintf("\nResolved Findings: %d\n", trend.ResolvedFindings)
	}

	return report
}

// parseScanDate parses a scan_date stamp, falling back to the zero time
func parseScanDate(stamp string) time.Time {
	t, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// formatScanDay formats a scan_date stamp for display
func formatScanDay(stamp string) string {
	t := parseScanDate(stamp)
	if t.IsZero() {
		return stamp
	}
	return t.Format("2006-01-02")
}

// GetTrendIndicator returns a visual indicator for trend direction
func GetTrendIndicator(direction string) string {
	switch direction {
	case "improving":
		return "↓"
	case "degrading":
		return "↑"
	case "stable":
		return "→"
	default:
		return "?"
	}
}

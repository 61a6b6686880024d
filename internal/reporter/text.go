package reporter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/scanhub/scanhub/internal/aggregator"
	"github.com/scanhub/scanhub/internal/models"
)

// TextReporter generates human-readable text reports
type TextReporter struct {
	writer io.Writer
	trend  *models.Trend
}

// NewTextReporter creates a new text reporter
func NewTextReporter(writer io.Writer) *TextReporter {
	return &TextReporter{
		writer: writer,
	}
}

// WithTrend attaches run-over-run context to the next Generate call
func (r *TextReporter) WithTrend(trend *models.Trend) *TextReporter {
	r.trend = trend
	return r
}

// Generate creates a text report from the normalized data
func (r *TextReporter) Generate(report *models.NormalizedReport) error {
	// Header
	r.printHeader()
	r.printf("Scan Date: %s\n", formatScanDate(report.Metadata.ScanDate))
	r.printf("Tools Processed: %d of %d\n\n", report.Metadata.ProcessedTools, report.Metadata.TotalTools)

	// Overall risk
	r.printRiskSummary(report)

	// Per-tool breakdown
	r.printToolBreakdown(report)

	// Compliance impact
	r.printComplianceSummary(report)

	// Recommendations
	recommendations := aggregator.NewRecommendationGenerator().GenerateRecommendations(report)
	if len(recommendations) > 0 {
		r.printRecommendations(recommendations)
	}

	// Trend summary if available
	if r.trend != nil {
		r.printf("\n")
		r.printTrendInfo(r.trend)
	}

	return nil
}

// printHeader prints the report header
func (r *TextReporter) printHeader() {
	r.printf("╔════════════════════════════════════════════╗\n")
	r.printf("║        ScanHub Vulnerability Report        ║\n")
	r.printf("╚════════════════════════════════════════════╝\n\n")
}

// printRiskSummary prints the overall risk section
func (r *TextReporter) printRiskSummary(report *models.NormalizedReport) {
	metrics := report.RiskMetrics

	r.printf("Risk Summary:\n")
	r.printf("--------------------------------------------------\n")
	r.printf("  Total Vulnerabilities: %d\n", metrics.Total)
	r.printf("    Critical: %d\n", metrics.Critical)
	r.printf("    High:     %d\n", metrics.High)
	r.printf("    Medium:   %d\n", metrics.Medium)
	r.printf("    Low:      %d\n", metrics.Low)
	r.printf("    Info:     %d\n", metrics.Info)
	r.printf("  Risk Score: %d\n", metrics.RiskScore)
	r.printf("  Risk Level: %s", metrics.RiskLevel)

	// Add trend indicator if available
	if r.trend != nil {
		indicator := aggregator.GetTrendIndicator(r.trend.Direction)
		r.printf(" %s %.1f%% from previous run", indicator, r.trend.ChangePercent)
	}

	r.printf("\n\n")
}

// printToolBreakdown prints per-tool counts in registry order
func (r *TextReporter) printToolBreakdown(report *models.NormalizedReport) {
	r.printf("Tool Breakdown:\n")
	r.printf("--------------------------------------------------\n")

	for _, tool := range models.ToolOrder {
		entry, ok := report.ToolSummary[string(tool)]
		if !ok {
			continue
		}

		info, _ := models.GetToolInfo(tool)
		if entry.Status == models.StatusNotFound {
			r.printf("  %-17s report not found (%s)\n", info.Name+":", entry.File)
		} else {
			r.printf("  %-17s %d finding(s)\n", info.Name+":", entry.Count)
		}
	}

	r.printf("\n")
}

// printComplianceSummary prints affected frameworks
func (r *TextReporter) printComplianceSummary(report *models.NormalizedReport) {
	if len(report.ComplianceMapping) == 0 {
		return
	}

	printed := false
	for _, framework := range aggregator.Frameworks {
		entry, ok := report.ComplianceMapping[framework]
		if !ok || entry.Count == 0 {
			continue
		}
		if !printed {
			r.printf("Compliance Impact:\n")
			r.printf("--------------------------------------------------\n")
			printed = true
		}
		r.printf("  %-14s %d finding(s)\n", framework+":", entry.Count)
	}

	if printed {
		r.printf("\n")
	}
}

// printRecommendations prints the recommendations section
func (r *TextReporter) printRecommendations(recommendations []models.Recommendation) {
	r.printf("Recommended Actions:\n")
	r.printf("--------------------------------------------------\n")

	// Group by severity
	gen := aggregator.NewRecommendationGenerator()
	grouped := gen.GroupBySeverity(recommendations)

	// Print in severity order
	n := 0
	for _, severity := range []string{
		models.SeverityCritical,
		models.SeverityHigh,
		models.SeverityMedium,
		models.SeverityLow,
		models.SeverityInfo,
	} {
		for _, rec := range grouped[severity] {
			n++
			r.printf("  %d. [%s] %s\n", n, strings.ToUpper(rec.Severity), rec.Action)
			r.printf("     Impact: %s\n", rec.Impact)
		}
	}
}

// printTrendInfo prints trend information
func (r *TextReporter) printTrendInfo(trend *models.Trend) {
	r.printf("Trend Analysis:\n")
	r.printf("--------------------------------------------------\n")
	r.printf("  Direction: %s %s\n", trend.Direction, aggregator.GetTrendIndicator(trend.Direction))
	r.printf("  Risk Score: %d → %d (%.1f%%)\n",
		trend.PreviousScore,
		trend.CurrentScore,
		trend.ChangePercent)
	r.printf("  Findings: %d → %d\n", trend.PreviousTotal, trend.CurrentTotal)

	if trend.NewFindings > 0 {
		r.printf("  New: %d\n", trend.NewFindings)
	}
	if trend.ResolvedFindings > 0 {
		r.printf("  Resolved: %d\n", trend.ResolvedFindings)
	}

	r.printf("  Compared With: %s\n", formatScanDate(trend.ComparedWith))
}

// printf is a helper to write formatted output
func (r *TextReporter) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.writer, format, args...)
}

// formatScanDate formats an RFC 3339 scan_date stamp for display
func formatScanDate(stamp string) string {
	t, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return stamp
	}
	return t.Format("2006-01-02 15:04:05")
}

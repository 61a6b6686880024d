package tui

import (
	"fmt"
	"strings"

	"github.com/scanhub/scanhub/internal/models"
)

// headerHeight is the number of terminal lines the header occupies.
const headerHeight = 5

// renderHeader produces the header string from report data.
func renderHeader(metadata models.ReportMetadata, metrics models.RiskMetrics, trend *models.Trend, sparkline []int, width int) string {
	var b strings.Builder

	// Line 1: title and risk level
	riskText := riskLevelStyle(metrics.RiskLevel).Render(
		fmt.Sprintf("%s (score %d)", metrics.RiskLevel, metrics.RiskScore),
	)
	b.WriteString(fmt.Sprintf("ScanHub  Risk: %s", riskText))

	if trend != nil {
		indicator := trendIndicator(trend.Direction)
		b.WriteString(fmt.Sprintf("  %s %.1f%%", indicator, trend.ChangePercent))
	}
	b.WriteString("\n")

	// Line 2: tools and total findings
	b.WriteString(fmt.Sprintf("Tools: %d/%d  Findings: %d",
		metadata.ProcessedTools, metadata.TotalTools, metrics.Total))
	b.WriteString("\n")

	// Line 3: severity breakdown
	sevCounts := []struct {
		severity string
		count    int
	}{
		{models.SeverityCritical, metrics.Critical},
		{models.SeverityHigh, metrics.High},
		{models.SeverityMedium, metrics.Medium},
		{models.SeverityLow, metrics.Low},
		{models.SeverityInfo, metrics.Info},
	}

	sevParts := make([]string, 0, len(sevCounts))
	for _, sc := range sevCounts {
		if sc.count == 0 {
			continue
		}
		label := fmt.Sprintf("%s:%d", sc.severity[:1], sc.count)
		sevParts = append(sevParts, severityStyle(sc.severity).Render(label))
	}
	if len(sevParts) > 0 {
		b.WriteString(strings.Join(sevParts, "  "))
	}
	b.WriteString("\n")

	// Line 4: risk score sparkline
	if len(sparkline) > 0 {
		b.WriteString("Trend: ")
		b.WriteString(renderSparkline(sparkline))
	}

	return styleHeader.Width(width).Render(b.String())
}

func trendIndicator(direction string) string {
	switch direction {
	case "improving":
		return "↓"
	case "degrading":
		return "↑"
	default:
		return "→"
	}
}

// renderSparkline converts an int slice to a unicode sparkline string.
func renderSparkline(values []int) string {
	if len(values) == 0 {
		return ""
	}

	bars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	var b strings.Builder
	for _, v := range values {
		if max == min {
			b.WriteRune(bars[len(bars)/2])
		} else {
			normalized := float64(v-min) / float64(max-min)
			idx := int(normalized * float64(len(bars)-1))
			b.WriteRune(bars[idx])
		}
	}

	b.WriteString(fmt.Sprintf(" [%d→%d]", values[0], values[len(values)-1]))
	return b.String()
}

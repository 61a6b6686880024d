package reporter

import (
	"encoding/json"
	"io"

	"github.com/scanhub/scanhub/internal/aggregator"
	"github.com/scanhub/scanhub/internal/models"
)

// JSONReporter generates machine-readable JSON reports
type JSONReporter struct {
	writer io.Writer
	pretty bool
}

// NewJSONReporter creates a new JSON reporter
func NewJSONReporter(writer io.Writer, pretty bool) *JSONReporter {
	return &JSONReporter{
		writer: writer,
		pretty: pretty,
	}
}

// Generate writes the normalized report as JSON. Field order follows
// the struct declaration, so the document always starts with metadata
// and ends with the compliance mapping.
func (r *JSONReporter) Generate(report *models.NormalizedReport) error {
	var data []byte
	var err error

	if r.pretty {
		data, err = json.MarshalIndent(report, "", "  ")
	} else {
		data, err = json.Marshal(report)
	}

	if err != nil {
		return err
	}

	_, err = r.writer.Write(data)
	if err != nil {
		return err
	}

	// Trailing newline so files and terminal output end cleanly
	_, err = r.writer.Write([]byte("\n"))
	return err
}

// GenerateSummaryOnly writes a compact summary without the full record list
func (r *JSONReporter) GenerateSummaryOnly(report *models.NormalizedReport, trend *models.Trend) error {
	findingsByTool := make(map[string]int, len(report.ToolSummary))
	for tool, entry := range report.ToolSummary {
		findingsByTool[tool] = entry.Count
	}

	recommendations := aggregator.NewRecommendationGenerator().GenerateRecommendations(report)
	if recommendations == nil {
		recommendations = []models.Recommendation{}
	}

	summary := struct {
		ScanDate        string                  `json:"scan_date"`
		RiskMetrics     models.RiskMetrics      `json:"risk_metrics"`
		Trend           *models.Trend           `json:"trend,omitempty"`
		Recommendations []models.Recommendation `json:"recommendations"`
		FindingsByTool  map[string]int          `json:"findings_by_tool"`
	}{
		ScanDate:        report.Metadata.ScanDate,
		RiskMetrics:     report.RiskMetrics,
		Trend:           trend,
		Recommendations: recommendations,
		FindingsByTool:  findingsByTool,
	}

	var data []byte
	var err error

	if r.pretty {
		data, err = json.MarshalIndent(summary, "", "  ")
	} else {
		data, err = json.Marshal(summary)
	}

	if err != nil {
		return err
	}

	_, err = r.writer.Write(data)
	if err != nil {
		return err
	}

	_, err = r.writer.Write([]byte("\n"))
	return err
}

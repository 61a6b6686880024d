package aggregator

import (
	"fmt"
	"sort"
	"time"

	"github.com/scanhub/scanhub/internal/models"
)

// PipelineVersion is stamped into report metadata. Downstream report
// generators use it to detect schema changes.
const PipelineVersion = "1.0.0"

// Aggregator merges normalized records from all tools into the output
// document
type Aggregator struct {
	normalizer *Normalizer
}

// New creates a new aggregator
func New() *Aggregator {
	return &Aggregator{
		normalizer: NewNormalizer(),
	}
}

// NewWithNormalizer creates an aggregator around a custom normalizer
func NewWithNormalizer(normalizer *Normalizer) *Aggregator {
	return &Aggregator{normalizer: normalizer}
}

// Aggregate normalizes every source report and assembles the complete
// output document. Source order is preserved through the stable sort,
// so callers must pass sources in registry order.
func (a *Aggregator) Aggregate(sources []models.SourceReport) (*models.NormalizedReport, error) {
	records := make([]models.VulnerabilityRecord, 0)
	toolSummary := make(map[string]models.ToolSummaryEntry, len(sources))
	processed := 0

	for _, source := range sources {
		toolRecords, err := a.normalizer.Normalize(source)
		if err != nil {
			return nil, fmt.Errorf("failed to normalize %s: %w", source.Tool, err)
		}
		records = append(records, toolRecords...)

		info, _ := models.GetToolInfo(source.Tool)
		entry := models.ToolSummaryEntry{
			Count: len(toolRecords),
			File:  info.ReportFile,
		}
		if !source.FileExisted || source.ParseFailed {
			entry.Status = models.StatusNotFound
		}
		toolSummary[string(source.Tool)] = entry

		if source.FileExisted {
			processed++
		}
	}

	SortRecords(records)

	return &models.NormalizedReport{
		Metadata: models.ReportMetadata{
			ScanDate:        time.Now().UTC().Format(time.RFC3339),
			TotalTools:      len(sources),
			ProcessedTools:  processed,
			PipelineVersion: PipelineVersion,
		},
		RiskMetrics:       CalculateRiskMetrics(records),
		ToolSummary:       toolSummary,
		Vulnerabilities:   records,
		ComplianceMapping: BuildComplianceMapping(records),
	}, nil
}

// SortRecords orders records by severity score descending. The sort is
// stable: ties keep their concatenation order.
func SortRecords(records []models.VulnerabilityRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].SeverityScore > records[j].SeverityScore
	})
}

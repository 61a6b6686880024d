package tui

import (
	"sort"
	"strings"

	"github.com/scanhub/scanhub/internal/models"
)

// filterState holds current active filters.
type filterState struct {
	Tool       string
	Severity   string
	SearchText string
}

// sortField enumerates columns that can be sorted.
type sortField int

const (
	sortBySeverity sortField = iota
	sortByTool
	sortByCategory
	sortByLocation
	sortByScore
)

// sortFieldCount is the total number of sortable columns.
const sortFieldCount = 5

var severityRank = map[string]int{
	models.SeverityCritical: 0,
	models.SeverityHigh:     1,
	models.SeverityMedium:   2,
	models.SeverityLow:      3,
	models.SeverityInfo:     4,
}

// severityCycle is the order the severity filter steps through. The empty
// string means "all severities".
var severityCycle = []string{
	"",
	models.SeverityCritical,
	models.SeverityHigh,
	models.SeverityMedium,
	models.SeverityLow,
	models.SeverityInfo,
}

// nextSeverity returns the severity filter value following the current one.
func nextSeverity(current string) string {
	for i, sev := range severityCycle {
		if sev == current {
			return severityCycle[(i+1)%len(severityCycle)]
		}
	}
	return ""
}

// applyFilters returns records matching all active filters.
func applyFilters(records []models.VulnerabilityRecord, f filterState) []models.VulnerabilityRecord {
	result := make([]models.VulnerabilityRecord, 0, len(records))
	searchLower := strings.ToLower(f.SearchText)

	for _, record := range records {
		if f.Tool != "" && record.Tool != f.Tool {
			continue
		}
		if f.Severity != "" && record.Severity != f.Severity {
			continue
		}
		if searchLower != "" && !matchesSearch(record, searchLower) {
			continue
		}
		result = append(result, record)
	}
	return result
}

func matchesSearch(record models.VulnerabilityRecord, searchLower string) bool {
	return strings.Contains(strings.ToLower(record.Tool), searchLower) ||
		strings.Contains(strings.ToLower(record.Category), searchLower) ||
		strings.Contains(strings.ToLower(record.Severity), searchLower) ||
		strings.Contains(strings.ToLower(record.Title), searchLower) ||
		strings.Contains(strings.ToLower(record.ID), searchLower) ||
		strings.Contains(strings.ToLower(record.Location()), searchLower)
}

// sortRecords sorts a slice of records in place by the given field.
func sortRecords(records []models.VulnerabilityRecord, field sortField) {
	sort.SliceStable(records, func(i, j int) bool {
		switch field {
		case sortBySeverity:
			return severityRank[records[i].Severity] < severityRank[records[j].Severity]
		case sortByTool:
			return records[i].Tool < records[j].Tool
		case sortByCategory:
			return records[i].Category < records[j].Category
		case sortByLocation:
			return records[i].Location() < records[j].Location()
		case sortByScore:
			return records[i].SeverityScore > records[j].SeverityScore
		default:
			return false
		}
	})
}

// uniqueTools returns deduplicated, sorted tool names from records.
func uniqueTools(records []models.VulnerabilityRecord) []string {
	seen := make(map[string]bool)
	var tools []string
	for _, record := range records {
		if !seen[record.Tool] {
			seen[record.Tool] = true
			tools = append(tools, record.Tool)
		}
	}
	sort.Strings(tools)
	return tools
}

// sortFieldName returns a human-readable name for the sort field.
func sortFieldName(f sortField) string {
	switch f {
	case sortBySeverity:
		return "severity"
	case sortByTool:
		return "tool"
	case sortByCategory:
		return "category"
	case sortByLocation:
		return "location"
	case sortByScore:
		return "score"
	default:
		return "unknown"
	}
}

package aggregator

import (
	"github.com/scanhub/scanhub/internal/models"
)

// DiffResult lists findings that appeared, disappeared, or persisted
// between two runs.
type DiffResult struct {
	New       []models.VulnerabilityRecord
	Resolved  []models.VulnerabilityRecord
	Unchanged int
}

// DiffReports matches findings between two runs by fingerprint.
// Records sharing a tool, location, and identifier count as the same
// finding even when order or metadata changed between runs.
func DiffReports(current, previous []models.VulnerabilityRecord) *DiffResult {
	result := &DiffResult{
		New:      []models.VulnerabilityRecord{},
		Resolved: []models.VulnerabilityRecord{},
	}

	previousFPs := fingerprintSet(previous)
	currentFPs := fingerprintSet(current)

	seen := make(map[string]bool, len(current))
	for i := range current {
		fp := current[i].Fingerprint()
		if seen[fp] {
			continue
		}
		seen[fp] = true
		if previousFPs[fp] {
			result.Unchanged++
		} else {
			result.New = append(result.New, current[i])
		}
	}

	seen = make(map[string]bool, len(previous))
	for i := range previous {
		fp := previous[i].Fingerprint()
		if seen[fp] || currentFPs[fp] {
			continue
		}
		seen[fp] = true
		result.Resolved = append(result.Resolved, previous[i])
	}

	return result
}

func fingerprintSet(records []models.VulnerabilityRecord) map[string]bool {
	set := make(map[string]bool, len(records))
	for i := range records {
		set[records[i].Fingerprint()] = true
	}
	return set
}

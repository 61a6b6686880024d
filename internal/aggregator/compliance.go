package aggregator

import (
	"strings"

	"github.com/scanhub/scanhub/internal/models"
)

// complianceSampleLimit caps the vulnerability ID sample per framework
const complianceSampleLimit = 10

// Frameworks lists the compliance frameworks in presentation order
var Frameworks = []string{
	models.FrameworkISO27001,
	models.FrameworkPCIDSS,
	models.FrameworkOWASPTop10,
	models.FrameworkCWETop25,
	models.FrameworkNISTCSF,
}

// BuildComplianceMapping groups record IDs by compliance framework.
// Count includes every matching record; the ID sample is deduplicated
// in aggregated order, so with the records sorted by severity the
// highest-severity IDs survive the cap.
func BuildComplianceMapping(records []models.VulnerabilityRecord) map[string]models.ComplianceEntry {
	matches := make(map[string][]string, len(Frameworks))
	for _, framework := range Frameworks {
		matches[framework] = nil
	}

	for _, record := range records {
		if containsMarker(record.Compliance, "ISO 27001") {
			matches[models.FrameworkISO27001] = append(matches[models.FrameworkISO27001], record.ID)
		}
		if containsMarker(record.Compliance, "PCI-DSS") {
			matches[models.FrameworkPCIDSS] = append(matches[models.FrameworkPCIDSS], record.ID)
		}
		if len(record.OWASP) > 0 {
			matches[models.FrameworkOWASPTop10] = append(matches[models.FrameworkOWASPTop10], record.ID)
		}
		if len(record.CWE) > 0 {
			matches[models.FrameworkCWETop25] = append(matches[models.FrameworkCWETop25], record.ID)
		}
	}

	mapping := make(map[string]models.ComplianceEntry, len(Frameworks))
	for _, framework := range Frameworks {
		ids := matches[framework]
		mapping[framework] = models.ComplianceEntry{
			Count:            len(ids),
			VulnerabilityIDs: sampleIDs(ids),
		}
	}
	return mapping
}

// sampleIDs deduplicates IDs preserving first-seen order, capped at
// the sample limit. Always returns a non-nil slice so empty frameworks
// serialize as an empty array.
func sampleIDs(ids []string) []string {
	sample := []string{}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		sample = append(sample, id)
		if len(sample) == complianceSampleLimit {
			break
		}
	}
	return sample
}

// containsMarker reports whether any tag contains the marker substring
func containsMarker(tags []string, marker string) bool {
	for _, tag := range tags {
		if strings.Contains(tag, marker) {
			return true
		}
	}
	return false
}

package aggregator

import "github.com/scanhub/scanhub/internal/models"

// Risk score weights per severity bucket. Fixed: downstream consumers
// compare scores across runs, so changing a weight breaks trend data.
const (
	RiskWeightCritical = 10
	RiskWeightHigh     = 5
	RiskWeightMedium   = 2
	RiskWeightLow      = 1
)

// CalculateRiskMetrics computes severity bucket counts, the weighted
// risk score, and the categorical risk level for a record set.
func CalculateRiskMetrics(records []models.VulnerabilityRecord) models.RiskMetrics {
	metrics := models.RiskMetrics{
		Total:     len(records),
		RiskLevel: models.RiskLow,
	}
	if len(records) == 0 {
		return metrics
	}

	for _, record := range records {
		switch record.Severity {
		case models.SeverityCritical:
			metrics.Critical++
		case models.SeverityHigh:
			metrics.High++
		case models.SeverityMedium:
			metrics.Medium++
		case models.SeverityLow:
			metrics.Low++
		case models.SeverityInfo:
			metrics.Info++
		default:
			// Records built by the normalizers always carry a closed-set
			// severity; anything else arrives from externally produced
			// JSON and is counted as MEDIUM.
			metrics.Medium++
		}
	}

	metrics.RiskScore = metrics.Critical*RiskWeightCritical +
		metrics.High*RiskWeightHigh +
		metrics.Medium*RiskWeightMedium +
		metrics.Low*RiskWeightLow
	metrics.RiskLevel = RiskLevel(metrics.Critical, metrics.High, metrics.Medium)

	return metrics
}

// RiskLevel derives the categorical risk level from bucket counts.
// Rules are evaluated top to bottom, first match wins.
func RiskLevel(critical, high, medium int) string {
	switch {
	case critical > 0:
		return models.RiskCritical
	case high > 5:
		return models.RiskHigh
	case high > 0:
		return models.RiskMediumHigh
	case medium > 10:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

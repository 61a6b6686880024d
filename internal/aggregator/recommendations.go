package aggregator

import (
	"fmt"
	"sort"

	"github.com/scanhub/scanhub/internal/models"
)

// findingGroup represents a group of findings by tool, category, and severity
type findingGroup struct {
	tool     string
	category string
	severity string
	count    int
}

// RecommendationGenerator creates actionable recommendations from normalized findings
type RecommendationGenerator struct{}

// NewRecommendationGenerator creates a new recommendation generator
func NewRecommendationGenerator() *RecommendationGenerator {
	return &RecommendationGenerator{}
}

// GenerateRecommendations analyzes the report and creates prioritized recommendations
func (r *RecommendationGenerator) GenerateRecommendations(report *models.NormalizedReport) []models.Recommendation {
	// Group findings by (Tool, Category, Severity)
	groups := make(map[string]*findingGroup)
	var order []string

	for i := range report.Vulnerabilities {
		record := &report.Vulnerabilities[i]
		key := fmt.Sprintf("%s:%s:%s", record.Tool, record.Category, record.Severity)
		if g, exists := groups[key]; exists {
			g.count++
		} else {
			groups[key] = &findingGroup{
				tool:     record.Tool,
				category: record.Category,
				severity: record.Severity,
				count:    1,
			}
			order = append(order, key)
		}
	}

	var recommendations []models.Recommendation

	for _, key := range order {
		group := groups[key]
		rec := models.Recommendation{
			Severity: group.severity,
			Tool:     group.tool,
			Action:   r.generateAction(group),
			Impact:   r.generateImpact(group),
			Count:    group.count,
		}
		recommendations = append(recommendations, rec)
	}

	// Sort by severity priority (critical > high > medium > low > info).
	// The stable sort keeps record order within a severity.
	sort.SliceStable(recommendations, func(i, j int) bool {
		return r.severityPriority(recommendations[i].Severity) > r.severityPriority(recommendations[j].Severity)
	})

	return recommendations
}

// generateAction creates actionable text based on category and count
func (r *RecommendationGenerator) generateAction(group *findingGroup) string {
	switch group.category {
	case models.CategorySecrets:
		return fmt.Sprintf("Rotate %d leaked credential(s) and purge them from history", group.count)
	case models.CategorySAST:
		return fmt.Sprintf("Fix %d static analysis finding(s)", group.count)
	case models.CategorySCA:
		return fmt.Sprintf("Upgrade %d vulnerable dependency version(s)", group.count)
	case models.CategoryContainer:
		return fmt.Sprintf("Patch %d container package vulnerability(ies)", group.count)
	case models.CategoryDAST:
		return fmt.Sprintf("Remediate %d runtime weakness(es) found by %s", group.count, group.tool)
	default:
		return fmt.Sprintf("Address %d finding(s) from %s", group.count, group.tool)
	}
}

// generateImpact describes the potential impact based on severity and category
func (r *RecommendationGenerator) generateImpact(group *findingGroup) string {
	switch group.severity {
	case models.SeverityCritical:
		switch group.category {
		case models.CategorySecrets:
			return "Exposed credentials allow immediate account or infrastructure takeover"
		case models.CategorySCA:
			return "Known exploited vulnerabilities are reachable in production builds"
		default:
			return "Exploitable weakness requires immediate remediation"
		}

	case models.SeverityHigh:
		switch group.category {
		case models.CategorySCA:
			return "Vulnerable dependencies expose the application to published exploits"
		case models.CategoryContainer:
			return "Base image packages carry known CVEs into every deployment"
		case models.CategoryDAST:
			return "The running application exposes an attackable surface"
		default:
			return "Significant risk of compromise if left unaddressed"
		}

	case models.SeverityMedium:
		switch group.category {
		case models.CategorySAST:
			return "Code weaknesses may become exploitable as the codebase evolves"
		case models.CategoryDAST:
			return "Hardening gaps weaken defense in depth"
		default:
			return "Moderate risk, schedule remediation within the next cycle"
		}

	case models.SeverityLow:
		return "Low priority hardening or cleanup"

	default:
		return "Review and address as needed"
	}
}

// severityPriority returns numeric priority for sorting (higher = more urgent)
func (r *RecommendationGenerator) severityPriority(severity string) int {
	switch severity {
	case models.SeverityCritical:
		return 5
	case models.SeverityHigh:
		return 4
	case models.SeverityMedium:
		return 3
	case models.SeverityLow:
		return 2
	case models.SeverityInfo:
		return 1
	default:
		return 0
	}
}

// GetTopRecommendations returns the top N most critical recommendations
func (r *RecommendationGenerator) GetTopRecommendations(recommendations []models.Recommendation, n int) []models.Recommendation {
	if n >= len(recommendations) {
		return recommendations
	}
	return recommendations[:n]
}

// GroupBySeverity groups recommendations by severity level
func (r *RecommendationGenerator) GroupBySeverity(recommendations []models.Recommendation) map[string][]models.Recommendation {
	grouped := make(map[string][]models.Recommendation)

	for _, rec := range recommendations {
		grouped[rec.Severity] = append(grouped[rec.Severity], rec)
	}

	return grouped
}

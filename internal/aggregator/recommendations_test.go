package aggregator

import (
	"strings"
	"testing"

	"github.com/scanhub/scanhub/internal/models"
)

func reportWithRecords(records ...models.VulnerabilityRecord) *models.NormalizedReport {
	return &models.NormalizedReport{Vulnerabilities: records}
}

func TestGenerateRecommendationsGrouping(t *testing.T) {
	generator := NewRecommendationGenerator()

	report := reportWithRecords(
		models.VulnerabilityRecord{Tool: "Gitleaks", Category: models.CategorySecrets, Severity: models.SeverityCritical},
		models.VulnerabilityRecord{Tool: "Gitleaks", Category: models.CategorySecrets, Severity: models.SeverityCritical},
		models.VulnerabilityRecord{Tool: "Trivy", Category: models.CategoryContainer, Severity: models.SeverityHigh},
		models.VulnerabilityRecord{Tool: "Semgrep", Category: models.CategorySAST, Severity: models.SeverityMedium},
	)

	recs := generator.GenerateRecommendations(report)
	if len(recs) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(recs))
	}

	// Sorted critical first.
	if recs[0].Severity != models.SeverityCritical || recs[0].Count != 2 {
		t.Fatalf("expected critical secrets group first, got %+v", recs[0])
	}
	if !strings.Contains(recs[0].Action, "Rotate 2 leaked credential(s)") {
		t.Errorf("secrets action should mention rotation, got %q", recs[0].Action)
	}
	if !strings.Contains(recs[0].Impact, "takeover") {
		t.Errorf("critical secrets impact should warn about takeover, got %q", recs[0].Impact)
	}

	if recs[1].Severity != models.SeverityHigh {
		t.Fatalf("expected high group second, got %+v", recs[1])
	}
	if !strings.Contains(recs[1].Action, "Patch 1 container package") {
		t.Errorf("container action wrong: %q", recs[1].Action)
	}

	if recs[2].Severity != models.SeverityMedium {
		t.Fatalf("expected medium group last, got %+v", recs[2])
	}
}

func TestGenerateRecommendationsEmpty(t *testing.T) {
	generator := NewRecommendationGenerator()
	if recs := generator.GenerateRecommendations(reportWithRecords()); len(recs) != 0 {
		t.Fatalf("expected no recommendations, got %d", len(recs))
	}
}

func TestGenerateRecommendationsCategoryActions(t *testing.T) {
	generator := NewRecommendationGenerator()

	tests := []struct {
		category string
		want     string
	}{
		{models.CategorySecrets, "leaked credential"},
		{models.CategorySAST, "static analysis"},
		{models.CategorySCA, "vulnerable dependency"},
		{models.CategoryContainer, "container package"},
		{models.CategoryDAST, "runtime weakness"},
		{"Custom", "Address 1 finding(s)"},
	}

	for _, tt := range tests {
		report := reportWithRecords(models.VulnerabilityRecord{
			Tool: "SomeTool", Category: tt.category, Severity: models.SeverityHigh,
		})
		recs := generator.GenerateRecommendations(report)
		if len(recs) != 1 {
			t.Fatalf("%s: expected 1 recommendation, got %d", tt.category, len(recs))
		}
		if !strings.Contains(recs[0].Action, tt.want) {
			t.Errorf("%s action = %q, want substring %q", tt.category, recs[0].Action, tt.want)
		}
	}
}

func TestGetTopRecommendations(t *testing.T) {
	generator := NewRecommendationGenerator()
	recs := []models.Recommendation{
		{Severity: models.SeverityCritical},
		{Severity: models.SeverityHigh},
		{Severity: models.SeverityMedium},
	}

	top := generator.GetTopRecommendations(recs, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2, got %d", len(top))
	}
	if top[0].Severity != models.SeverityCritical {
		t.Fatalf("expected critical first, got %s", top[0].Severity)
	}

	all := generator.GetTopRecommendations(recs, 10)
	if len(all) != 3 {
		t.Fatalf("n beyond length returns everything, got %d", len(all))
	}
}

func TestGroupBySeverity(t *testing.T) {
	generator := NewRecommendationGenerator()
	recs := []models.Recommendation{
		{Severity: models.SeverityCritical, Tool: "Gitleaks"},
		{Severity: models.SeverityCritical, Tool: "Trivy"},
		{Severity: models.SeverityLow, Tool: "Semgrep"},
	}

	grouped := generator.GroupBySeverity(recs)
	if len(grouped[models.SeverityCritical]) != 2 {
		t.Fatalf("expected 2 critical, got %d", len(grouped[models.SeverityCritical]))
	}
	if len(grouped[models.SeverityLow]) != 1 {
		t.Fatalf("expected 1 low, got %d", len(grouped[models.SeverityLow]))
	}
}

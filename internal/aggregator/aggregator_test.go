package aggregator

import (
	"reflect"
	"testing"
	"time"

	"github.com/scanhub/scanhub/internal/models"
)

func TestAggregatorAggregate(t *testing.T) {
	aggregator := New()

	gitleaks := &models.GitleaksReport{
		Findings: []models.GitleaksFinding{
			{RuleID: "aws-access-key", File: "prod.env", Commit: "deadbeefcafe"},
		},
	}
	trivy := &models.TrivyReport{
		Results: []models.TrivyResult{
			{
				Target: "alpine:3.19",
				Vulnerabilities: []models.TrivyVulnerability{
					{VulnerabilityID: "CVE-2024-0727", PkgName: "libssl3", Severity: "MEDIUM"},
					{VulnerabilityID: "CVE-2024-1234", PkgName: "zlib", Severity: "HIGH"},
				},
			},
		},
	}

	sources := []models.SourceReport{
		{Tool: models.ToolGitleaks, FileExisted: true, Raw: gitleaks},
		{Tool: models.ToolSemgrep, FileExisted: false},
		{Tool: models.ToolDepCheck, FileExisted: true, ParseFailed: true},
		{Tool: models.ToolTrivy, FileExisted: true, Raw: trivy},
		{Tool: models.ToolZAP, FileExisted: false},
	}

	report, err := aggregator.Aggregate(sources)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.RiskMetrics.Total != 3 {
		t.Fatalf("expected 3 records, got %d", report.RiskMetrics.Total)
	}
	if len(report.Vulnerabilities) != report.RiskMetrics.Total {
		t.Fatalf("record list length %d != total %d", len(report.Vulnerabilities), report.RiskMetrics.Total)
	}

	// Sorted by severity score descending: CRITICAL 10, HIGH 8, MEDIUM 5.
	scores := make([]float64, len(report.Vulnerabilities))
	for i, record := range report.Vulnerabilities {
		scores[i] = record.SeverityScore
	}
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[i-1] {
			t.Fatalf("records not sorted descending: %v", scores)
		}
	}
	if report.Vulnerabilities[0].Tool != "Gitleaks" {
		t.Fatalf("critical secret should sort first, got %s", report.Vulnerabilities[0].Tool)
	}

	// 1 critical + 1 high + 1 medium = 10 + 5 + 2
	if report.RiskMetrics.RiskScore != 17 {
		t.Fatalf("expected risk score 17, got %d", report.RiskMetrics.RiskScore)
	}
	if report.RiskMetrics.RiskLevel != models.RiskCritical {
		t.Fatalf("expected CRITICAL risk level, got %s", report.RiskMetrics.RiskLevel)
	}

	if report.Metadata.TotalTools != 5 {
		t.Fatalf("expected 5 total tools, got %d", report.Metadata.TotalTools)
	}
	if report.Metadata.ProcessedTools != 3 {
		t.Fatalf("expected 3 processed tools, got %d", report.Metadata.ProcessedTools)
	}
	if report.Metadata.PipelineVersion != PipelineVersion {
		t.Fatalf("expected pipeline version %s, got %s", PipelineVersion, report.Metadata.PipelineVersion)
	}
	if _, err := time.Parse(time.RFC3339, report.Metadata.ScanDate); err != nil {
		t.Fatalf("scan_date not RFC3339: %q", report.Metadata.ScanDate)
	}

	// Tool summary keyed by tool type, not display name.
	if entry := report.ToolSummary["gitleaks"]; entry.Count != 1 || entry.Status != "" {
		t.Fatalf("unexpected gitleaks summary: %+v", entry)
	}
	if entry := report.ToolSummary["semgrep"]; entry.Status != models.StatusNotFound {
		t.Fatalf("absent report should be not_found, got %+v", entry)
	}
	if entry := report.ToolSummary["dependency-check"]; entry.Status != models.StatusNotFound {
		t.Fatalf("unparseable report should be not_found, got %+v", entry)
	}
	if entry := report.ToolSummary["trivy"]; entry.File != "trivy-report.json" {
		t.Fatalf("expected registry report file, got %q", entry.File)
	}

	if len(report.ComplianceMapping) != len(Frameworks) {
		t.Fatalf("expected %d frameworks, got %d", len(Frameworks), len(report.ComplianceMapping))
	}
}

func TestAggregatorSingleTool(t *testing.T) {
	aggregator := New()

	gitleaks := &models.GitleaksReport{
		Findings: []models.GitleaksFinding{
			{RuleID: "aws-access-key", File: "prod.env", Commit: "deadbeefcafe"},
			{RuleID: "github-pat", File: "ci.yml", Commit: "0123456789ab"},
		},
	}
	sources := []models.SourceReport{
		{Tool: models.ToolGitleaks, FileExisted: true, Raw: gitleaks},
		{Tool: models.ToolSemgrep},
		{Tool: models.ToolDepCheck},
		{Tool: models.ToolTrivy},
		{Tool: models.ToolZAP},
	}

	report, err := aggregator.Aggregate(sources)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := report.RiskMetrics
	if m.Total != 2 || m.Critical != 2 || m.High != 0 || m.Medium != 0 || m.Low != 0 {
		t.Fatalf("unexpected buckets: %+v", m)
	}
	if m.RiskScore != 20 || m.RiskLevel != models.RiskCritical {
		t.Fatalf("expected 20/CRITICAL, got %d/%s", m.RiskScore, m.RiskLevel)
	}
	if report.Metadata.ProcessedTools != 1 {
		t.Fatalf("expected 1 processed tool, got %d", report.Metadata.ProcessedTools)
	}
	for _, key := range []string{"semgrep", "dependency-check", "trivy", "zap"} {
		entry := report.ToolSummary[key]
		if entry.Count != 0 || entry.Status != models.StatusNotFound {
			t.Fatalf("%s: expected count 0 / not_found, got %+v", key, entry)
		}
	}
}

func TestAggregatorIdempotent(t *testing.T) {
	sources := func() []models.SourceReport {
		return []models.SourceReport{
			{Tool: models.ToolGitleaks, FileExisted: true, Raw: &models.GitleaksReport{
				Findings: []models.GitleaksFinding{
					{RuleID: "aws-access-key", File: "prod.env", Commit: "deadbeefcafe"},
				},
			}},
			{Tool: models.ToolTrivy, FileExisted: true, Raw: &models.TrivyReport{
				Results: []models.TrivyResult{
					{Target: "alpine:3.19", Vulnerabilities: []models.TrivyVulnerability{
						{VulnerabilityID: "CVE-2024-0727", PkgName: "libssl3", Severity: "MEDIUM"},
					}},
				},
			}},
			{Tool: models.ToolSemgrep},
			{Tool: models.ToolDepCheck},
			{Tool: models.ToolZAP},
		}
	}

	first, err := New().Aggregate(sources())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := New().Aggregate(sources())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Everything except the wall-clock scan_date must match exactly.
	if !reflect.DeepEqual(first.Vulnerabilities, second.Vulnerabilities) {
		t.Fatalf("record lists differ across identical runs")
	}
	if first.RiskMetrics != second.RiskMetrics {
		t.Fatalf("risk metrics differ: %+v vs %+v", first.RiskMetrics, second.RiskMetrics)
	}
	if !reflect.DeepEqual(first.ToolSummary, second.ToolSummary) {
		t.Fatalf("tool summaries differ")
	}
	if !reflect.DeepEqual(first.ComplianceMapping, second.ComplianceMapping) {
		t.Fatalf("compliance mappings differ")
	}
}

func TestAggregatorAggregateEmpty(t *testing.T) {
	aggregator := New()

	report, err := aggregator.Aggregate(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.RiskMetrics.Total != 0 || report.RiskMetrics.RiskScore != 0 {
		t.Fatalf("expected empty metrics, got %+v", report.RiskMetrics)
	}
	if report.RiskMetrics.RiskLevel != models.RiskLow {
		t.Fatalf("no findings should be LOW, got %s", report.RiskMetrics.RiskLevel)
	}
	if report.Vulnerabilities == nil {
		t.Fatalf("expected empty slice, got nil")
	}
}

func TestAggregatorNormalizeError(t *testing.T) {
	aggregator := New()

	sources := []models.SourceReport{
		{Tool: models.ToolGitleaks, FileExisted: true, Raw: "not-a-report"},
	}
	if _, err := aggregator.Aggregate(sources); err == nil {
		t.Fatalf("expected error for wrong payload type")
	}
}

func TestSortRecordsStable(t *testing.T) {
	records := []models.VulnerabilityRecord{
		{ID: "a", SeverityScore: 5},
		{ID: "b", SeverityScore: 8},
		{ID: "c", SeverityScore: 5},
		{ID: "d", SeverityScore: 10},
		{ID: "e", SeverityScore: 5},
	}

	SortRecords(records)

	gotOrder := make([]string, len(records))
	for i, record := range records {
		gotOrder[i] = record.ID
	}
	// Ties keep concatenation order: a before c before e.
	want := []string{"d", "b", "a", "c", "e"}
	for i := range want {
		if gotOrder[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, gotOrder)
		}
	}
}

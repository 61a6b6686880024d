package reporter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/scanhub/scanhub/internal/models"
)

func sampleReport() *models.NormalizedReport {
	return &models.NormalizedReport{
		Metadata: models.ReportMetadata{
			ScanDate:        "2026-08-20T10:30:00Z",
			TotalTools:      5,
			ProcessedTools:  2,
			PipelineVersion: "1.0.0",
		},
		RiskMetrics: models.RiskMetrics{
			Total: 2, Critical: 1, Medium: 1,
			RiskScore: 12, RiskLevel: models.RiskCritical,
		},
		ToolSummary: map[string]models.ToolSummaryEntry{
			"gitleaks": {Count: 1, File: "gitleaks-report.json"},
			"trivy":    {Count: 1, File: "trivy-report.json"},
			"zap":      {Count: 0, File: "zap-report.json", Status: models.StatusNotFound},
		},
		Vulnerabilities: []models.VulnerabilityRecord{
			{
				ID: "GITLEAKS-deadbeef", Tool: "Gitleaks", Category: models.CategorySecrets,
				Severity: models.SeverityCritical, SeverityScore: 10, File: "prod.env",
				Remediation: "Remove the secret from version control and rotate credentials immediately.",
			},
			{
				ID: "CVE-2024-0727", Tool: "Trivy", Category: models.CategoryContainer,
				Severity: models.SeverityMedium, SeverityScore: 5, Target: "alpine:3.19",
			},
		},
		ComplianceMapping: map[string]models.ComplianceEntry{
			models.FrameworkISO27001:   {Count: 1, VulnerabilityIDs: []string{"GITLEAKS-deadbeef"}},
			models.FrameworkPCIDSS:     {Count: 1, VulnerabilityIDs: []string{"GITLEAKS-deadbeef"}},
			models.FrameworkOWASPTop10: {Count: 0, VulnerabilityIDs: []string{}},
			models.FrameworkCWETop25:   {Count: 0, VulnerabilityIDs: []string{}},
			models.FrameworkNISTCSF:    {Count: 0, VulnerabilityIDs: []string{}},
		},
	}
}

func TestJSONReporterGenerate(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONReporter(&buf, true).Generate(sampleReport()); err != nil {
		t.Fatalf("generate: %v", err)
	}

	output := buf.String()
	if !strings.HasSuffix(output, "\n") {
		t.Fatalf("output must end with a newline")
	}
	if !strings.Contains(output, "  \"metadata\"") {
		t.Fatalf("pretty output should be indented:\n%s", output[:200])
	}

	// The document starts with metadata: it is the first struct field.
	metaIdx := strings.Index(output, `"metadata"`)
	complianceIdx := strings.Index(output, `"compliance_mapping"`)
	if metaIdx == -1 || complianceIdx == -1 || metaIdx > complianceIdx {
		t.Fatalf("field order broken: metadata at %d, compliance at %d", metaIdx, complianceIdx)
	}

	var decoded models.NormalizedReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.RiskMetrics.RiskScore != 12 {
		t.Fatalf("risk score lost: %+v", decoded.RiskMetrics)
	}
	if len(decoded.Vulnerabilities) != 2 {
		t.Fatalf("expected 2 records, got %d", len(decoded.Vulnerabilities))
	}
}

func TestJSONReporterCompact(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONReporter(&buf, false).Generate(sampleReport()); err != nil {
		t.Fatalf("generate: %v", err)
	}

	output := strings.TrimSuffix(buf.String(), "\n")
	if strings.Contains(output, "\n") {
		t.Fatalf("compact output should be a single line")
	}
}

func TestJSONReporterOmitsEmptyRecordFields(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONReporter(&buf, false).Generate(sampleReport()); err != nil {
		t.Fatalf("generate: %v", err)
	}

	output := buf.String()
	// The secrets record has no package field; omitempty must drop it.
	if strings.Contains(output, `"package":""`) {
		t.Fatalf("empty optional fields must be omitted:\n%s", output)
	}
	// Core fields stay even when empty.
	if !strings.Contains(output, `"remediation"`) {
		t.Fatalf("remediation is a core field and must always appear")
	}
}

func TestGenerateSummaryOnly(t *testing.T) {
	var buf bytes.Buffer
	trend := &models.Trend{
		Direction: "improving", ChangePercent: -20,
		PreviousScore: 15, CurrentScore: 12,
	}
	if err := NewJSONReporter(&buf, true).GenerateSummaryOnly(sampleReport(), trend); err != nil {
		t.Fatalf("summary: %v", err)
	}

	var summary struct {
		ScanDate        string                  `json:"scan_date"`
		RiskMetrics     models.RiskMetrics      `json:"risk_metrics"`
		Trend           *models.Trend           `json:"trend"`
		Recommendations []models.Recommendation `json:"recommendations"`
		FindingsByTool  map[string]int          `json:"findings_by_tool"`
	}
	if err := json.Unmarshal(buf.Bytes(), &summary); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if summary.ScanDate != "2026-08-20T10:30:00Z" {
		t.Fatalf("scan date missing: %+v", summary)
	}
	if summary.Trend == nil || summary.Trend.Direction != "improving" {
		t.Fatalf("trend missing: %+v", summary.Trend)
	}
	if summary.FindingsByTool["gitleaks"] != 1 {
		t.Fatalf("per-tool counts missing: %+v", summary.FindingsByTool)
	}
	if len(summary.Recommendations) == 0 {
		t.Fatalf("expected recommendations for a report with findings")
	}
	// The full record list must not leak into the summary.
	if strings.Contains(buf.String(), `"vulnerabilities"`) {
		t.Fatalf("summary should not include the record list")
	}
}

func TestGenerateSummaryOnlyNoTrend(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONReporter(&buf, false).GenerateSummaryOnly(sampleReport(), nil); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if strings.Contains(buf.String(), `"trend"`) {
		t.Fatalf("nil trend must be omitted")
	}
}

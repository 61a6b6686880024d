package collector

import (
	"testing"

	"github.com/scanhub/scanhub/internal/models"
)

func TestParseGitleaksReportBareArray(t *testing.T) {
	data := []byte(`[{"RuleID":"generic-api-key","File":"app.py","StartLine":10}]`)

	report, err := ParseGitleaksReport(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(report.Findings))
	}
	if report.Findings[0].RuleID != "generic-api-key" {
		t.Fatalf("unexpected finding: %+v", report.Findings[0])
	}
}

func TestParseGitleaksReportWrapped(t *testing.T) {
	data := []byte(`{"findings":[{"RuleID":"aws-access-key","File":"prod.env"}]}`)

	report, err := ParseGitleaksReport(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Findings) != 1 || report.Findings[0].RuleID != "aws-access-key" {
		t.Fatalf("wrapped shape not accepted: %+v", report.Findings)
	}
}

func TestParseGitleaksReportEmptyArray(t *testing.T) {
	report, err := ParseGitleaksReport([]byte(`[]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Findings) != 0 {
		t.Fatalf("expected no findings, got %d", len(report.Findings))
	}
}

func TestParseSemgrepReport(t *testing.T) {
	data := []byte(`{
		"version": "1.50.0",
		"results": [
			{"check_id": "rule.one", "path": "a.go", "start": {"line": 5, "col": 1},
			 "extra": {"message": "bad", "severity": "ERROR", "metadata": {"cwe": ["CWE-89"]}}}
		]
	}`)

	report, err := ParseSemgrepReport(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(report.Results))
	}
	result := report.Results[0]
	if result.CheckID != "rule.one" || result.Start.Line != 5 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Extra.Metadata.CWE) != 1 {
		t.Fatalf("metadata not parsed: %+v", result.Extra.Metadata)
	}
}

func TestParseDependencyCheckReport(t *testing.T) {
	data := []byte(`{
		"dependencies": [
			{"fileName": "log4j-core-2.14.1.jar", "vulnerabilities": [
				{"name": "CVE-2021-44228", "severity": "CRITICAL", "description": "rce",
				 "cvssv3": {"baseScore": 10.0, "attackVector": "NETWORK"}}
			]},
			{"fileName": "clean.jar"}
		]
	}`)

	report, err := ParseDependencyCheckReport(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Dependencies) != 2 {
		t.Fatalf("expected 2 dependencies, got %d", len(report.Dependencies))
	}
	vuln := report.Dependencies[0].Vulnerabilities[0]
	if vuln.CVSSv3 == nil || vuln.CVSSv3.BaseScore == nil || *vuln.CVSSv3.BaseScore != 10.0 {
		t.Fatalf("cvss not parsed: %+v", vuln.CVSSv3)
	}
	if report.Dependencies[1].Vulnerabilities != nil {
		t.Fatalf("clean dependency should have nil vulnerabilities")
	}
}

func TestParseZAPReport(t *testing.T) {
	data := []byte(`{
		"@version": "2.14.0",
		"site": [
			{"@name": "https://example.com", "alerts": [
				{"pluginid": "10038", "name": "CSP", "riskdesc": "Medium (High)",
				 "desc": "missing header", "solution": "set it",
				 "instances": [{"uri": "https://example.com/", "method": "GET"}]}
			]}
		]
	}`)

	report, err := ParseZAPReport(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Site) != 1 || len(report.Site[0].Alerts) != 1 {
		t.Fatalf("unexpected shape: %+v", report)
	}
	alert := report.Site[0].Alerts[0]
	if alert.PluginID != "10038" || alert.RiskDesc != "Medium (High)" {
		t.Fatalf("unexpected alert: %+v", alert)
	}
}

func TestParseReportDispatch(t *testing.T) {
	report, err := ParseReport([]byte(`{"Results": []}`), models.ToolTrivy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := report.(*models.TrivyReport); !ok {
		t.Fatalf("expected *TrivyReport, got %T", report)
	}

	if _, err := ParseReport([]byte(`{}`), models.ToolUnknown); err == nil {
		t.Fatalf("expected error for unknown tool")
	}
}

func TestParseReportMalformed(t *testing.T) {
	for _, tool := range models.ToolOrder {
		if _, err := ParseReport([]byte(`{truncated`), tool); err == nil {
			t.Errorf("%s: expected parse error for malformed JSON", tool)
		}
	}
}

package collector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/scanhub/scanhub/internal/models"
)

func writeReport(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

const gitleaksFixture = `[{"RuleID":"aws-access-key","File":"prod.env","StartLine":3,"Commit":"deadbeefcafe"}]`

const trivyFixture = `{
	"SchemaVersion": 2,
	"Results": [
		{"Target": "alpine:3.19", "Type": "alpine", "Vulnerabilities": [
			{"VulnerabilityID": "CVE-2024-0727", "PkgName": "libssl3", "InstalledVersion": "3.1.4-r2", "Severity": "MEDIUM"}
		]}
	]
}`

func TestCollectorCollect(t *testing.T) {
	dir := t.TempDir()
	writeReport(t, dir, "gitleaks-report.json", gitleaksFixture)
	writeReport(t, dir, "trivy-report.json", trivyFixture)
	writeReport(t, dir, "semgrep-report.json", `{not json`)

	coll := New(Config{ReportsDir: dir})
	results := coll.Collect()

	if len(results) != len(models.ToolOrder) {
		t.Fatalf("expected one result per registered tool, got %d", len(results))
	}

	// Results come back in registry order.
	for i, tool := range models.ToolOrder {
		if results[i].Tool != tool {
			t.Fatalf("result %d: expected %s, got %s", i, tool, results[i].Tool)
		}
	}

	byTool := make(map[models.ToolType]LoadResult, len(results))
	for _, result := range results {
		byTool[result.Tool] = result
	}

	gitleaks := byTool[models.ToolGitleaks]
	if !gitleaks.OK() {
		t.Fatalf("gitleaks should load cleanly: %+v", gitleaks)
	}
	report, ok := gitleaks.Report.(*models.GitleaksReport)
	if !ok {
		t.Fatalf("expected *GitleaksReport, got %T", gitleaks.Report)
	}
	if len(report.Findings) != 1 || report.Findings[0].RuleID != "aws-access-key" {
		t.Fatalf("unexpected findings: %+v", report.Findings)
	}

	semgrep := byTool[models.ToolSemgrep]
	if semgrep.OK() {
		t.Fatalf("malformed semgrep report should not be OK")
	}
	if !semgrep.Exists || semgrep.Err == nil {
		t.Fatalf("malformed report: expected exists with parse error, got %+v", semgrep)
	}

	depcheck := byTool[models.ToolDepCheck]
	if depcheck.Exists || depcheck.Err != nil {
		t.Fatalf("absent report: expected no file and no error, got %+v", depcheck)
	}
	if depcheck.File != "dependency-check-report.json" {
		t.Fatalf("expected registry filename, got %q", depcheck.File)
	}
}

func TestCollectorEmptyDirectory(t *testing.T) {
	coll := New(Config{ReportsDir: t.TempDir()})
	results := coll.Collect()

	for _, result := range results {
		if result.Exists {
			t.Fatalf("%s: nothing on disk, but Exists=true", result.Tool)
		}
		if result.Err != nil {
			t.Fatalf("%s: missing report must not error, got %v", result.Tool, result.Err)
		}
	}
}

func TestCollectorDefaultDir(t *testing.T) {
	coll := New(Config{})
	if coll.config.ReportsDir != "." {
		t.Fatalf("empty reports dir should default to '.', got %q", coll.config.ReportsDir)
	}
}

// --- Sources tests ---

func TestSourcesCarryLoadState(t *testing.T) {
	dir := t.TempDir()
	writeReport(t, dir, "gitleaks-report.json", gitleaksFixture)
	writeReport(t, dir, "zap-report.json", `broken`)

	coll := New(Config{ReportsDir: dir})
	sources := Sources(coll.Collect())

	if len(sources) != len(models.ToolOrder) {
		t.Fatalf("expected %d sources, got %d", len(models.ToolOrder), len(sources))
	}

	bySrc := make(map[models.ToolType]models.SourceReport, len(sources))
	for _, source := range sources {
		bySrc[source.Tool] = source
	}

	gitleaks := bySrc[models.ToolGitleaks]
	if !gitleaks.FileExisted || gitleaks.ParseFailed || gitleaks.Raw == nil {
		t.Fatalf("loaded report: unexpected source state %+v", gitleaks)
	}

	zap := bySrc[models.ToolZAP]
	if !zap.FileExisted || !zap.ParseFailed || zap.Raw != nil {
		t.Fatalf("malformed report: unexpected source state %+v", zap)
	}

	trivy := bySrc[models.ToolTrivy]
	if trivy.FileExisted || trivy.ParseFailed {
		t.Fatalf("absent report: unexpected source state %+v", trivy)
	}
}

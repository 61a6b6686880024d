package aggregator

import (
	"strings"
	"testing"

	"github.com/scanhub/scanhub/internal/models"
)

func recordsByID(records []models.VulnerabilityRecord) map[string]models.VulnerabilityRecord {
	byID := make(map[string]models.VulnerabilityRecord, len(records))
	for _, record := range records {
		byID[record.ID] = record
	}
	return byID
}

func TestNormalizerNormalize(t *testing.T) {
	normalizer := NewNormalizer()

	tests := []struct {
		name    string
		source  models.SourceReport
		wantErr bool
		wantNil bool
	}{
		{
			name:    "nil payload yields no records",
			source:  models.SourceReport{Tool: models.ToolGitleaks, FileExisted: false},
			wantNil: true,
		},
		{
			name:    "unknown tool",
			source:  models.SourceReport{Tool: "nessus", Raw: &models.GitleaksReport{}},
			wantErr: true,
		},
		{
			name:    "wrong payload type",
			source:  models.SourceReport{Tool: models.ToolTrivy, FileExisted: true, Raw: &models.GitleaksReport{}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			records, err := normalizer.Normalize(tt.source)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantNil && records != nil {
				t.Fatalf("expected nil records, got %v", records)
			}
		})
	}
}

// --- Gitleaks tests ---

func TestNormalizeGitleaks(t *testing.T) {
	normalizer := NewNormalizer()
	report := &models.GitleaksReport{
		Findings: []models.GitleaksFinding{
			{
				RuleID:      "aws-access-key",
				Description: "AWS access key",
				File:        "config/prod.env",
				StartLine:   12,
				Commit:      "deadbeefcafe0123",
			},
			{}, // all fields empty, fallbacks apply
		},
	}

	records := normalizer.NormalizeGitleaks(report)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.ID != "GITLEAKS-deadbeef" {
		t.Errorf("expected id GITLEAKS-deadbeef, got %q", first.ID)
	}
	if first.Tool != "Gitleaks" || first.Category != models.CategorySecrets {
		t.Errorf("wrong tool/category: %q/%q", first.Tool, first.Category)
	}
	if first.Severity != models.SeverityCritical || first.SeverityScore != 10 {
		t.Errorf("every secret must be CRITICAL/10, got %s/%v", first.Severity, first.SeverityScore)
	}
	if first.Line != 12 || first.File != "config/prod.env" {
		t.Errorf("location not carried over: %s:%d", first.File, first.Line)
	}
	if len(first.CWE) != 1 || first.CWE[0] != "CWE-798" {
		t.Errorf("expected CWE-798, got %v", first.CWE)
	}

	second := records[1]
	if second.ID != "GITLEAKS-unknown" {
		t.Errorf("expected fallback id GITLEAKS-unknown, got %q", second.ID)
	}
	if second.Severity != models.SeverityCritical {
		t.Errorf("empty finding still CRITICAL, got %s", second.Severity)
	}
	if second.Commit != "N/A" {
		t.Errorf("expected commit fallback N/A, got %q", second.Commit)
	}
}

// --- Semgrep tests ---

func TestNormalizeSemgrep(t *testing.T) {
	normalizer := NewNormalizer()
	report := &models.SemgrepReport{
		Results: []models.SemgrepResult{
			{
				CheckID: "go.lang.security.audit.crypto.weak-hash",
				Path:    "internal/auth/token.go",
				Start:   models.SemgrepPosition{Line: 44},
				Extra: models.SemgrepExtra{
					Message:  "MD5 used for password hashing",
					Severity: "HIGH",
					Lines:    "h := md5.New()",
					Metadata: models.SemgrepMetadata{
						Category: "security",
						CWE:      []string{"CWE-328"},
						OWASP:    []string{"A02:2021"},
					},
				},
			},
			{
				CheckID: "go.lang.correctness.unchecked-error",
				Path:    "internal/io/copy.go",
				Extra:   models.SemgrepExtra{Severity: "WARNING"},
			},
		},
	}

	records := normalizer.NormalizeSemgrep(report)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	byID := recordsByID(records)
	weak := byID["go.lang.security.audit.crypto.weak-hash"]
	if weak.Severity != models.SeverityHigh || weak.SeverityScore != 8 {
		t.Errorf("expected HIGH/8, got %s/%v", weak.Severity, weak.SeverityScore)
	}
	if weak.Category != models.CategorySAST || weak.Tool != "Semgrep" {
		t.Errorf("wrong tool/category: %q/%q", weak.Tool, weak.Category)
	}
	if weak.Line != 44 || weak.CodeSnippet != "h := md5.New()" {
		t.Errorf("position/snippet not carried: %d %q", weak.Line, weak.CodeSnippet)
	}

	// Severity strings outside the closed set coerce to MEDIUM.
	unchecked := byID["go.lang.correctness.unchecked-error"]
	if unchecked.Severity != models.SeverityMedium || unchecked.SeverityScore != 5 {
		t.Errorf("WARNING should coerce to MEDIUM/5, got %s/%v", unchecked.Severity, unchecked.SeverityScore)
	}
}

// --- Dependency-Check tests ---

func TestNormalizeDependencyCheck(t *testing.T) {
	normalizer := NewNormalizer()
	base := 9.8
	report := &models.DependencyCheckReport{
		Dependencies: []models.DependencyCheckDependency{
			{FileName: "clean-lib-1.0.jar"},
			{
				FileName: "log4j-core-2.14.1.jar",
				Vulnerabilities: []models.DependencyCheckVulnerability{
					{
						Name:     "CVE-2021-44228",
						Severity: "CRITICAL",
						CWE:      "CWE-502",
						CVSSv3:   &models.DependencyCheckCVSSv3{BaseScore: &base, AttackVector: "NETWORK"},
						References: []models.DependencyCheckReference{
							{URL: "https://nvd.nist.gov/vuln/detail/CVE-2021-44228"},
						},
					},
					{
						Name:     "CVE-2021-45105",
						Severity: "HIGH",
					},
				},
			},
		},
	}

	records := normalizer.NormalizeDependencyCheck(report)
	if len(records) != 2 {
		t.Fatalf("clean dependency must be skipped, expected 2 records, got %d", len(records))
	}

	byID := recordsByID(records)
	log4shell := byID["CVE-2021-44228"]
	if log4shell.SeverityScore != 9.8 {
		t.Errorf("CVSS base score must override the table, got %v", log4shell.SeverityScore)
	}
	if log4shell.CVSSScore != 9.8 || log4shell.CVSSVector != "NETWORK" {
		t.Errorf("cvss fields not carried: %v %q", log4shell.CVSSScore, log4shell.CVSSVector)
	}
	if !strings.Contains(log4shell.Title, "log4j-core-2.14.1.jar") {
		t.Errorf("title should name the artifact, got %q", log4shell.Title)
	}
	if len(log4shell.References) != 1 {
		t.Errorf("expected 1 reference, got %d", len(log4shell.References))
	}

	plain := byID["CVE-2021-45105"]
	if plain.SeverityScore != 8 {
		t.Errorf("no CVSS supplied, table score expected, got %v", plain.SeverityScore)
	}
	if !strings.Contains(plain.Remediation, "log4j-core-2.14.1.jar") {
		t.Errorf("remediation should name the artifact, got %q", plain.Remediation)
	}
}

func TestNormalizeDependencyCheckEmpty(t *testing.T) {
	normalizer := NewNormalizer()
	records := normalizer.NormalizeDependencyCheck(&models.DependencyCheckReport{})
	if records == nil {
		t.Fatalf("expected empty slice, got nil")
	}
	if len(records) != 0 {
		t.Fatalf("expected 0 records, got %d", len(records))
	}
}

// --- Trivy tests ---

func TestNormalizeTrivy(t *testing.T) {
	normalizer := NewNormalizer()
	report := &models.TrivyReport{
		Results: []models.TrivyResult{
			{
				Target: "alpine:3.19 (alpine 3.19.1)",
				Type:   "alpine",
				Vulnerabilities: []models.TrivyVulnerability{
					{
						VulnerabilityID:  "CVE-2024-0727",
						PkgName:          "libssl3",
						InstalledVersion: "3.1.4-r2",
						FixedVersion:     "3.1.4-r5",
						Severity:         "MEDIUM",
						CVSS:             map[string]models.TrivyCVSS{"nvd": {V3Score: 5.5}},
					},
					{
						VulnerabilityID:  "CVE-2024-9999",
						PkgName:          "busybox",
						InstalledVersion: "1.36.1-r15",
						Severity:         "LOW",
					},
				},
			},
		},
	}

	records := normalizer.NormalizeTrivy(report)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	byID := recordsByID(records)
	ssl := byID["CVE-2024-0727"]
	if ssl.Target != "alpine:3.19 (alpine 3.19.1)" {
		t.Errorf("target not carried, got %q", ssl.Target)
	}
	if ssl.Category != models.CategoryContainer || ssl.Tool != "Trivy" {
		t.Errorf("wrong tool/category: %q/%q", ssl.Tool, ssl.Category)
	}
	if ssl.CVSSScore != 5.5 {
		t.Errorf("nvd V3Score should feed cvss_score, got %v", ssl.CVSSScore)
	}
	if !strings.Contains(ssl.Remediation, "3.1.4-r2") || !strings.Contains(ssl.Remediation, "3.1.4-r5") {
		t.Errorf("remediation should name both versions, got %q", ssl.Remediation)
	}

	busybox := byID["CVE-2024-9999"]
	if busybox.FixedVersion != "Not available" {
		t.Errorf("expected fixed version fallback, got %q", busybox.FixedVersion)
	}
	if !strings.Contains(busybox.Remediation, "latest") {
		t.Errorf("unfixed package remediation should suggest latest, got %q", busybox.Remediation)
	}
}

// --- ZAP tests ---

func TestNormalizeZAP(t *testing.T) {
	normalizer := NewNormalizer()
	report := &models.ZAPReport{
		Site: []models.ZAPSite{
			{
				Name: "https://staging.example.com",
				Alerts: []models.ZAPAlert{
					{
						PluginID: "10038",
						Name:     "Content Security Policy Header Not Set",
						RiskDesc: "Medium (High)",
						Desc:     "CSP header missing",
						Solution: "Set a Content-Security-Policy header",
						CWEID:    "693",
						Instances: []models.ZAPInstance{
							{URI: "https://staging.example.com/login", Method: "GET"},
							{URI: "https://staging.example.com/admin", Method: "GET"},
						},
					},
					{
						PluginID:  "40012",
						Name:      "Cross Site Scripting (Reflected)",
						RiskDesc:  "High (Medium)",
						Instances: []models.ZAPInstance{{URI: "https://staging.example.com/search", Method: "GET", Param: "q", Attack: "<script>alert(1)</script>"}},
					},
				},
			},
			// Second site must be ignored.
			{Alerts: []models.ZAPAlert{{PluginID: "99999", RiskDesc: "High"}}},
		},
	}

	records := normalizer.NormalizeZAP(report)
	if len(records) != 2 {
		t.Fatalf("only the first site's alerts count, expected 2 records, got %d", len(records))
	}

	byID := recordsByID(records)
	csp := byID["ZAP-10038"]
	if csp.Severity != models.SeverityMedium {
		t.Errorf("riskdesc first token Medium expected, got %s", csp.Severity)
	}
	if csp.URL != "https://staging.example.com/login" {
		t.Errorf("first instance URI expected, got %q", csp.URL)
	}
	if csp.CWE[0] != "CWE-693" {
		t.Errorf("expected CWE-693, got %v", csp.CWE)
	}
	if csp.Category != models.CategoryDAST || csp.Tool != "OWASP ZAP" {
		t.Errorf("wrong tool/category: %q/%q", csp.Tool, csp.Category)
	}

	xss := byID["ZAP-40012"]
	if xss.Severity != models.SeverityHigh {
		t.Errorf("riskdesc first token High expected, got %s", xss.Severity)
	}
	if xss.Parameter != "q" || xss.Attack == "" {
		t.Errorf("instance fields not carried: %q %q", xss.Parameter, xss.Attack)
	}
}

func TestNormalizeZAPNoSites(t *testing.T) {
	normalizer := NewNormalizer()
	records := normalizer.NormalizeZAP(&models.ZAPReport{})
	if records == nil || len(records) != 0 {
		t.Fatalf("expected empty slice, got %v", records)
	}
}

// --- Custom severity table tests ---

func TestNormalizerWithCustomScores(t *testing.T) {
	normalizer := NewNormalizerWithScores(map[string]float64{
		models.SeverityCritical: 100,
	})
	report := &models.GitleaksReport{
		Findings: []models.GitleaksFinding{{RuleID: "generic-api-key", File: "a.txt"}},
	}

	records := normalizer.NormalizeGitleaks(report)
	if records[0].SeverityScore != 100 {
		t.Fatalf("custom table ignored, got %v", records[0].SeverityScore)
	}
}

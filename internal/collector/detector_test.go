package collector

import (
	"testing"

	"github.com/scanhub/scanhub/internal/models"
)

func TestDetectToolTypeFromFilename(t *testing.T) {
	tests := []struct {
		name     string
		wantTool models.ToolType
		wantOK   bool
	}{
		{"gitleaks-report.json", models.ToolGitleaks, true},
		{"semgrep-report.json", models.ToolSemgrep, true},
		{"dependency-check-report.json", models.ToolDepCheck, true},
		{"/ci/artifacts/trivy-report.json", models.ToolTrivy, true},
		{"zap-report.json", models.ToolZAP, true},
		{"scan-results.json", models.ToolUnknown, false},
		{"", models.ToolUnknown, false},
	}

	for _, tt := range tests {
		tool, ok := DetectToolTypeFromFilename(tt.name)
		if tool != tt.wantTool || ok != tt.wantOK {
			t.Errorf("DetectToolTypeFromFilename(%q) = %s/%v, want %s/%v", tt.name, tool, ok, tt.wantTool, tt.wantOK)
		}
	}
}

func TestDetectToolType(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantTool models.ToolType
		wantErr  bool
	}{
		{
			name:     "gitleaks bare array",
			data:     `[{"RuleID":"x"}]`,
			wantTool: models.ToolGitleaks,
		},
		{
			name:     "gitleaks empty array",
			data:     `[]`,
			wantTool: models.ToolGitleaks,
		},
		{
			name:     "gitleaks wrapped findings",
			data:     `{"findings":[]}`,
			wantTool: models.ToolGitleaks,
		},
		{
			name:     "semgrep results with check_id",
			data:     `{"results":[{"check_id":"rule.one"}]}`,
			wantTool: models.ToolSemgrep,
		},
		{
			name:     "semgrep empty results",
			data:     `{"results":[]}`,
			wantTool: models.ToolSemgrep,
		},
		{
			name:     "dependency-check",
			data:     `{"dependencies":[]}`,
			wantTool: models.ToolDepCheck,
		},
		{
			name:     "trivy capitalized results",
			data:     `{"SchemaVersion":2,"Results":[]}`,
			wantTool: models.ToolTrivy,
		},
		{
			name:     "zap site with alerts",
			data:     `{"site":[{"alerts":[]}]}`,
			wantTool: models.ToolZAP,
		},
		{
			name:     "zap empty site",
			data:     `{"site":[]}`,
			wantTool: models.ToolZAP,
		},
		{
			name:    "unrecognized structure",
			data:    `{"hits":[]}`,
			wantErr: true,
		},
		{
			name:    "not json",
			data:    `plain text`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			tool, err := DetectToolType([]byte(tt.data))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s", tool)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tool != tt.wantTool {
				t.Fatalf("expected %s, got %s", tt.wantTool, tool)
			}
		})
	}
}

func TestValidateToolType(t *testing.T) {
	if err := ValidateToolType(models.ToolTrivy); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateToolType(models.ToolUnknown); err == nil {
		t.Fatalf("expected error for unknown tool")
	}
	if err := ValidateToolType(models.ToolType("nessus")); err == nil {
		t.Fatalf("expected error for unsupported tool")
	}
}

func TestGetToolName(t *testing.T) {
	if name := GetToolName(models.ToolZAP); name != "OWASP ZAP" {
		t.Fatalf("expected display name, got %q", name)
	}
	if name := GetToolName(models.ToolType("nessus")); name != "nessus" {
		t.Fatalf("unknown tool should echo the type, got %q", name)
	}
}

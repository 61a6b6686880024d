package collector

import (
	"encoding/json"
	"fmt"

	"github.com/scanhub/scanhub/internal/models"
)

// ParseReport parses JSON data for a known tool type
func ParseReport(data []byte, toolType models.ToolType) (interface{}, error) {
	switch toolType {
	case models.ToolGitleaks:
		return ParseGitleaksReport(data)
	case models.ToolSemgrep:
		return ParseSemgrepReport(data)
	case models.ToolDepCheck:
		return ParseDependencyCheckReport(data)
	case models.ToolTrivy:
		return ParseTrivyReport(data)
	case models.ToolZAP:
		return ParseZAPReport(data)
	default:
		return nil, fmt.Errorf("unknown tool type: %s", toolType)
	}
}

// ParseGitleaksReport parses Gitleaks JSON output. Gitleaks emits a
// bare array of findings; CI wrappers sometimes nest it under a
// "findings" key. Both shapes are accepted.
func ParseGitleaksReport(data []byte) (*models.GitleaksReport, error) {
	var findings []models.GitleaksFinding
	if err := json.Unmarshal(data, &findings); err == nil {
		return &models.GitleaksReport{Findings: findings}, nil
	}

	var report models.GitleaksReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse Gitleaks report: %w", err)
	}
	return &report, nil
}

// ParseSemgrepReport parses Semgrep JSON output
func ParseSemgrepReport(data []byte) (*models.SemgrepReport, error) {
	var report models.SemgrepReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse Semgrep report: %w", err)
	}
	return &report, nil
}

// ParseDependencyCheckReport parses OWASP Dependency-Check JSON output
func ParseDependencyCheckReport(data []byte) (*models.DependencyCheckReport, error) {
	var report models.DependencyCheckReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse Dependency-Check report: %w", err)
	}
	return &report, nil
}

// ParseTrivyReport parses Trivy JSON output
func ParseTrivyReport(data []byte) (*models.TrivyReport, error) {
	var report models.TrivyReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse Trivy report: %w", err)
	}
	return &report, nil
}

// ParseZAPReport parses OWASP ZAP JSON output
func ParseZAPReport(data []byte) (*models.ZAPReport, error) {
	var report models.ZAPReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse ZAP report: %w", err)
	}
	return &report, nil
}

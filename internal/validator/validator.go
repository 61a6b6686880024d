package validator

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/scanhub/scanhub/internal/models"
)

// ValidationError represents a validation failure
type ValidationError struct {
	Tool   string
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Invalid %s report:\n  - %s", e.Tool, strings.Join(e.Errors, "\n  - "))
}

// knownSeverities covers the closed severity set plus the raw scanner
// strings the normalizer folds into it. Anything else is flagged so a
// report author learns about the MEDIUM fallback before it happens.
var knownSeverities = map[string]bool{
	"CRITICAL": true, "HIGH": true, "MEDIUM": true, "LOW": true,
	"INFO": true, "INFORMATIONAL": true, "NEGLIGIBLE": true,
	"ERROR": true, "WARNING": true, "MODERATE": true,
}

// Validator validates JSON reports from supported scanners
type Validator struct{}

// New creates a new validator
func New() *Validator {
	return &Validator{}
}

// ValidateReport validates a report based on tool type
func (v *Validator) ValidateReport(toolType models.ToolType, data []byte) error {
	switch toolType {
	case models.ToolGitleaks:
		return v.ValidateGitleaksReport(data)
	case models.ToolSemgrep:
		return v.ValidateSemgrepReport(data)
	case models.ToolDepCheck:
		return v.ValidateDependencyCheckReport(data)
	case models.ToolTrivy:
		return v.ValidateTrivyReport(data)
	case models.ToolZAP:
		return v.ValidateZAPReport(data)
	default:
		// Unknown tools are accepted but not validated
		return nil
	}
}

// ValidateGitleaksReport validates Gitleaks JSON output
func (v *Validator) ValidateGitleaksReport(data []byte) error {
	var findings []models.GitleaksFinding
	if err := json.Unmarshal(data, &findings); err != nil {
		// Some Gitleaks configurations wrap findings in an object
		var report models.GitleaksReport
		if err := json.Unmarshal(data, &report); err != nil {
			return &ValidationError{
				Tool:   "Gitleaks",
				Errors: []string{fmt.Sprintf("Failed to parse JSON: %v", err)},
			}
		}
		findings = report.Findings
	}

	var errors []string

	for i, finding := range findings {
		if finding.Commit == "" && finding.File == "" {
			errors = append(errors, fmt.Sprintf("Finding %d has neither 'Commit' nor 'File'; its identifier cannot be derived", i))
		}
		if finding.StartLine < 0 {
			errors = append(errors, fmt.Sprintf("Finding %d has negative 'StartLine': %d", i, finding.StartLine))
		}
	}

	if len(errors) > 0 {
		return &ValidationError{Tool: "Gitleaks", Errors: errors}
	}

	return nil
}

// ValidateSemgrepReport validates Semgrep JSON output
func (v *Validator) ValidateSemgrepReport(data []byte) error {
	var report models.SemgrepReport
	if err := json.Unmarshal(data, &report); err != nil {
		return &ValidationError{
			Tool:   "Semgrep",
			Errors: []string{fmt.Sprintf("Failed to parse JSON: %v", err)},
		}
	}

	var errors []string

	for i, result := range report.Results {
		if result.CheckID == "" {
			errors = append(errors, fmt.Sprintf("Result %d is missing 'check_id'", i))
		}
		if result.Path == "" {
			errors = append(errors, fmt.Sprintf("Result %d is missing 'path'", i))
		}
		if sev := strings.ToUpper(result.Extra.Severity); sev != "" && !knownSeverities[sev] {
			errors = append(errors, fmt.Sprintf("Result %d has unrecognized severity '%s' (will fall back to MEDIUM)", i, result.Extra.Severity))
		}
	}

	if len(errors) > 0 {
		return &ValidationError{Tool: "Semgrep", Errors: errors}
	}

	return nil
}

// ValidateDependencyCheckReport validates OWASP Dependency-Check JSON output
func (v *Validator) ValidateDependencyCheckReport(data []byte) error {
	var report models.DependencyCheckReport
	if err := json.Unmarshal(data, &report); err != nil {
		return &ValidationError{
			Tool:   "Dependency-Check",
			Errors: []string{fmt.Sprintf("Failed to parse JSON: %v", err)},
		}
	}

	var errors []string

	for _, dep := range report.Dependencies {
		if len(dep.Vulnerabilities) > 0 && dep.FileName == "" {
			errors = append(errors, "Dependency with vulnerabilities is missing 'fileName'")
		}
		for _, vuln := range dep.Vulnerabilities {
			if vuln.Name == "" {
				errors = append(errors, fmt.Sprintf("Vulnerability in '%s' is missing 'name'", dep.FileName))
			}
			if vuln.CVSSv3 != nil && vuln.CVSSv3.BaseScore != nil {
				if score := *vuln.CVSSv3.BaseScore; score < 0 || score > 10 {
					errors = append(errors, fmt.Sprintf("Vulnerability '%s' has CVSS base score out of range: %.1f", vuln.Name, score))
				}
			}
		}
	}

	if len(errors) > 0 {
		return &ValidationError{Tool: "Dependency-Check", Errors: errors}
	}

	return nil
}

// ValidateTrivyReport validates Trivy JSON output
func (v *Validator) ValidateTrivyReport(data []byte) error {
	var report models.TrivyReport
	if err := json.Unmarshal(data, &report); err != nil {
		return &ValidationError{
			Tool:   "Trivy",
			Errors: []string{fmt.Sprintf("Failed to parse JSON: %v", err)},
		}
	}

	var errors []string

	for i, result := range report.Results {
		for _, vuln := range result.Vulnerabilities {
			if vuln.VulnerabilityID == "" {
				errors = append(errors, fmt.Sprintf("Result %d ('%s') has a vulnerability without 'VulnerabilityID'", i, result.Target))
			}
			if sev := strings.ToUpper(vuln.Severity); sev != "" && !knownSeverities[sev] && sev != "UNKNOWN" {
				errors = append(errors, fmt.Sprintf("Vulnerability '%s' has unrecognized severity '%s'", vuln.VulnerabilityID, vuln.Severity))
			}
		}
	}

	if len(errors) > 0 {
		return &ValidationError{Tool: "Trivy", Errors: errors}
	}

	return nil
}

// ValidateZAPReport validates OWASP ZAP JSON output
func (v *Validator) ValidateZAPReport(data []byte) error {
	var report models.ZAPReport
	if err := json.Unmarshal(data, &report); err != nil {
		return &ValidationError{
			Tool:   "OWASP ZAP",
			Errors: []string{fmt.Sprintf("Failed to parse JSON: %v", err)},
		}
	}

	var errors []string

	if len(report.Site) == 0 {
		errors = append(errors, "Missing required field: 'site'")
	}

	for _, site := range report.Site {
		for i, alert := range site.Alerts {
			if alert.PluginID == "" {
				errors = append(errors, fmt.Sprintf("Alert %d in site '%s' is missing 'pluginid'", i, site.Name))
			}
			if alert.RiskDesc == "" {
				errors = append(errors, fmt.Sprintf("Alert %d in site '%s' is missing 'riskdesc'; severity will fall back to MEDIUM", i, site.Name))
			}
		}
	}

	if len(errors) > 0 {
		return &ValidationError{Tool: "OWASP ZAP", Errors: errors}
	}

	return nil
}

// ValidateScanDate checks if a stored run's scan date is reasonable
// (not in the future, not too old)
func ValidateScanDate(t time.Time) error {
	now := time.Now()

	// Not in future
	if t.After(now.Add(1 * time.Hour)) {
		return fmt.Errorf("scan date is in the future: %v", t)
	}

	// Not older than 1 year
	oneYearAgo := now.AddDate(-1, 0, 0)
	if t.Before(oneYearAgo) {
		return fmt.Errorf("scan date is too old (> 1 year): %v", t)
	}

	return nil
}

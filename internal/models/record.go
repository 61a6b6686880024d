package models

import (
	"crypto/sha256"
	"fmt"
)

// VulnerabilityRecord is the atomic unit that every tool maps into.
// Core fields are always present; tool-dependent fields are omitted
// when the producing tool does not populate them.
type VulnerabilityRecord struct {
	ID            string  `json:"id"`
	Tool          string  `json:"tool"`
	Category      string  `json:"category"` // Secrets, SAST, SCA, Container Security, DAST
	Type          string  `json:"type"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Severity      string  `json:"severity"`       // CRITICAL, HIGH, MEDIUM, LOW, INFO
	SeverityScore float64 `json:"severity_score"` // table score, or CVSS base score when supplied

	// Location fields, tool-dependent
	File             string `json:"file,omitempty"`
	Line             int    `json:"line,omitempty"`
	Commit           string `json:"commit,omitempty"`
	Rule             string `json:"rule,omitempty"`
	CodeSnippet      string `json:"code_snippet,omitempty"`
	Package          string `json:"package,omitempty"`
	InstalledVersion string `json:"installed_version,omitempty"`
	FixedVersion     string `json:"fixed_version,omitempty"`
	Target           string `json:"target,omitempty"`

	CVSSScore  float64 `json:"cvss_score,omitempty"`
	CVSSVector string  `json:"cvss_vector,omitempty"`

	// Request fields populated by dynamic analysis
	URL       string `json:"url,omitempty"`
	Method    string `json:"method,omitempty"`
	Parameter string `json:"parameter,omitempty"`
	Attack    string `json:"attack,omitempty"`
	Evidence  string `json:"evidence,omitempty"`
	Solution  string `json:"solution,omitempty"`

	Remediation string   `json:"remediation"`
	CWE         []string `json:"cwe,omitempty"`
	OWASP       []string `json:"owasp,omitempty"`
	References  []string `json:"references,omitempty"`
	Compliance  []string `json:"compliance,omitempty"`
}

// Location returns the most specific location field the record carries.
func (r VulnerabilityRecord) Location() string {
	switch {
	case r.File != "":
		return r.File
	case r.Target != "":
		return r.Target
	case r.URL != "":
		return r.URL
	default:
		return "unknown"
	}
}

// Fingerprint returns a stable identity for cross-run comparison.
// Record IDs are not unique across tools, so the tool and location
// are folded in.
func (r VulnerabilityRecord) Fingerprint() string {
	sum := sha256.Sum256([]byte(r.Tool + ":" + r.Location() + ":" + r.ID))
	return fmt.Sprintf("%x", sum)
}

// RiskMetrics holds aggregate severity counts and the derived risk score.
// Computed fresh each run; never persisted independently of the report.
type RiskMetrics struct {
	Total     int    `json:"total"`
	Critical  int    `json:"critical"`
	High      int    `json:"high"`
	Medium    int    `json:"medium"`
	Low       int    `json:"low"`
	Info      int    `json:"info"`
	RiskScore int    `json:"risk_score"`
	RiskLevel string `json:"risk_level"`
}

// ToolSummaryEntry records per-tool finding counts. Status is set to
// "not_found" when the tool's report was absent or unreadable.
type ToolSummaryEntry struct {
	Count  int    `json:"count"`
	File   string `json:"file"`
	Status string `json:"status,omitempty"`
}

// ReportMetadata describes one pipeline run
type ReportMetadata struct {
	ScanDate        string `json:"scan_date"` // RFC3339 UTC
	TotalTools      int    `json:"total_tools"`
	ProcessedTools  int    `json:"processed_tools"`
	PipelineVersion string `json:"pipeline_version"`
}

// Compliance framework keys in the output mapping
const (
	FrameworkISO27001   = "ISO_27001"
	FrameworkPCIDSS     = "PCI_DSS"
	FrameworkOWASPTop10 = "OWASP_Top_10"
	FrameworkCWETop25   = "CWE_Top_25"
	FrameworkNISTCSF    = "NIST_CSF"
)

// ComplianceEntry summarizes one framework's matches. Count includes
// every matching record; VulnerabilityIDs is a deduplicated sample
// capped at ten entries.
type ComplianceEntry struct {
	Count            int      `json:"count"`
	VulnerabilityIDs []string `json:"vulnerability_ids"`
}

// NormalizedReport is the complete output document, the sole contract
// with downstream report generators.
type NormalizedReport struct {
	Metadata          ReportMetadata              `json:"metadata"`
	RiskMetrics       RiskMetrics                 `json:"risk_metrics"`
	ToolSummary       map[string]ToolSummaryEntry `json:"tool_summary"`
	Vulnerabilities   []VulnerabilityRecord       `json:"vulnerabilities"`
	ComplianceMapping map[string]ComplianceEntry  `json:"compliance_mapping"`
}

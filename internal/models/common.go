package models

import "strings"

// ToolType identifies a supported security scanner
type ToolType string

const (
	ToolGitleaks ToolType = "gitleaks"
	ToolSemgrep  ToolType = "semgrep"
	ToolDepCheck ToolType = "dependency-check"
	ToolTrivy    ToolType = "trivy"
	ToolZAP      ToolType = "zap"
	ToolUnknown  ToolType = "unknown"
)

// ToolInfo contains metadata about a supported tool
type ToolInfo struct {
	Name       string // display name used on normalized records
	ReportFile string // expected report filename in the reports directory
	Category   string // finding category assigned to this tool's records
}

// Finding categories, one per scanner discipline
const (
	CategorySecrets   = "Secrets"
	CategorySAST      = "SAST"
	CategorySCA       = "SCA"
	CategoryContainer = "Container Security"
	CategoryDAST      = "DAST"
)

// SupportedTools defines explicitly supported tools
var SupportedTools = map[ToolType]ToolInfo{
	ToolGitleaks: {
		Name:       "Gitleaks",
		ReportFile: "gitleaks-report.json",
		Category:   CategorySecrets,
	},
	ToolSemgrep: {
		Name:       "Semgrep",
		ReportFile: "semgrep-report.json",
		Category:   CategorySAST,
	},
	ToolDepCheck: {
		Name:       "Dependency-Check",
		ReportFile: "dependency-check-report.json",
		Category:   CategorySCA,
	},
	ToolTrivy: {
		Name:       "Trivy",
		ReportFile: "trivy-report.json",
		Category:   CategoryContainer,
	},
	ToolZAP: {
		Name:       "OWASP ZAP",
		ReportFile: "zap-report.json",
		Category:   CategoryDAST,
	},
}

// ToolOrder is the fixed processing order. Aggregation concatenates
// per-tool records in this order, so it is part of the output contract.
var ToolOrder = []ToolType{
	ToolGitleaks,
	ToolSemgrep,
	ToolDepCheck,
	ToolTrivy,
	ToolZAP,
}

// IsSupportedTool checks if a tool is explicitly supported
func IsSupportedTool(tool ToolType) bool {
	_, ok := SupportedTools[tool]
	return ok
}

// GetToolInfo returns information about a tool
func GetToolInfo(tool ToolType) (ToolInfo, bool) {
	info, ok := SupportedTools[tool]
	return info, ok
}

// Severity levels for normalized records. Every record carries exactly
// one of these; raw scanner strings are folded in via NormalizeSeverity.
const (
	SeverityCritical = "CRITICAL"
	SeverityHigh     = "HIGH"
	SeverityMedium   = "MEDIUM"
	SeverityLow      = "LOW"
	SeverityInfo     = "INFO"
)

// DefaultSeverityScores maps each severity level to its base score.
// A tool-supplied CVSS base score may override the table value on
// individual records.
var DefaultSeverityScores = map[string]float64{
	SeverityCritical: 10,
	SeverityHigh:     8,
	SeverityMedium:   5,
	SeverityLow:      3,
	SeverityInfo:     1,
}

// NormalizeSeverity folds a raw scanner severity string into the closed
// severity set. INFORMATIONAL and NEGLIGIBLE are aliases for INFO; any
// string outside the set maps to MEDIUM.
func NormalizeSeverity(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo:
		return s
	case "INFORMATIONAL", "NEGLIGIBLE":
		return SeverityInfo
	default:
		return SeverityMedium
	}
}

// ScoreForSeverity returns the table score for a severity level using
// the provided table, falling back to the MEDIUM score for levels the
// table does not cover.
func ScoreForSeverity(severity string, scores map[string]float64) float64 {
	if score, ok := scores[severity]; ok {
		return score
	}
	return 5
}

// Risk levels derived from aggregate severity counts
const (
	RiskCritical   = "CRITICAL"
	RiskHigh       = "HIGH"
	RiskMediumHigh = "MEDIUM-HIGH"
	RiskMedium     = "MEDIUM"
	RiskLow        = "LOW"
)

// StatusNotFound marks a tool whose report was absent or unreadable
const StatusNotFound = "not_found"

// SourceReport carries one tool's parsed report into aggregation.
// Raw holds the typed report pointer for the tool, or nil when the
// file was absent or unparseable.
type SourceReport struct {
	Tool        ToolType
	FileExisted bool // report file was present on disk
	ParseFailed bool // file was present but could not be parsed
	Raw         interface{}
}

package discovery

import "github.com/scanhub/scanhub/internal/models"

// ToolScanInfo describes a supported scanner and the report it produces.
type ToolScanInfo struct {
	Binary      string // executable name (looked up in PATH)
	ReportFile  string // report filename expected in the reports directory
	InstallHint string // how to install the scanner
}

// Registry is the single source of truth for the supported scanners.
var Registry = map[models.ToolType]ToolScanInfo{
	models.ToolGitleaks: {
		Binary:      "gitleaks",
		ReportFile:  "gitleaks-report.json",
		InstallHint: "brew install gitleaks",
	},
	models.ToolSemgrep: {
		Binary:      "semgrep",
		ReportFile:  "semgrep-report.json",
		InstallHint: "pip install semgrep",
	},
	models.ToolDepCheck: {
		Binary:      "dependency-check",
		ReportFile:  "dependency-check-report.json",
		InstallHint: "see https://owasp.org/www-project-dependency-check/",
	},
	models.ToolTrivy: {
		Binary:      "trivy",
		ReportFile:  "trivy-report.json",
		InstallHint: "brew install trivy",
	},
	models.ToolZAP: {
		Binary:      "zap.sh",
		ReportFile:  "zap-report.json",
		InstallHint: "see https://www.zaproxy.org/download/",
	},
}

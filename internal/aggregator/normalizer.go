package aggregator

import (
	"fmt"
	"strings"

	"github.com/scanhub/scanhub/internal/models"
)

// Normalizer converts tool-specific reports into normalized
// vulnerability records. Mapping rules are fixed: downstream report
// generators depend on the exact field values.
type Normalizer struct {
	scores map[string]float64
}

// NewNormalizer creates a normalizer using the default severity table
func NewNormalizer() *Normalizer {
	return &Normalizer{scores: models.DefaultSeverityScores}
}

// NewNormalizerWithScores creates a normalizer with a custom severity
// table. Levels missing from the table score as MEDIUM.
func NewNormalizerWithScores(scores map[string]float64) *Normalizer {
	return &Normalizer{scores: scores}
}

// Normalize converts one tool's parsed report into normalized records.
// A nil payload (absent or malformed report) yields no records.
func (n *Normalizer) Normalize(source models.SourceReport) ([]models.VulnerabilityRecord, error) {
	if source.Raw == nil {
		return nil, nil
	}

	switch source.Tool {
	case models.ToolGitleaks:
		report, ok := source.Raw.(*models.GitleaksReport)
		if !ok {
			return nil, fmt.Errorf("invalid gitleaks report data")
		}
		return n.NormalizeGitleaks(report), nil
	case models.ToolSemgrep:
		report, ok := source.Raw.(*models.SemgrepReport)
		if !ok {
			return nil, fmt.Errorf("invalid semgrep report data")
		}
		return n.NormalizeSemgrep(report), nil
	case models.ToolDepCheck:
		report, ok := source.Raw.(*models.DependencyCheckReport)
		if !ok {
			return nil, fmt.Errorf("invalid dependency-check report data")
		}
		return n.NormalizeDependencyCheck(report), nil
	case models.ToolTrivy:
		report, ok := source.Raw.(*models.TrivyReport)
		if !ok {
			return nil, fmt.Errorf("invalid trivy report data")
		}
		return n.NormalizeTrivy(report), nil
	case models.ToolZAP:
		report, ok := source.Raw.(*models.ZAPReport)
		if !ok {
			return nil, fmt.Errorf("invalid zap report data")
		}
		return n.NormalizeZAP(report), nil
	default:
		return nil, fmt.Errorf("unknown tool type: %s", source.Tool)
	}
}

// NormalizeGitleaks converts Gitleaks findings to normalized records.
// Every leaked secret is CRITICAL regardless of rule.
func (n *Normalizer) NormalizeGitleaks(report *models.GitleaksReport) []models.VulnerabilityRecord {
	info := models.SupportedTools[models.ToolGitleaks]

	records := make([]models.VulnerabilityRecord, 0, len(report.Findings))
	for _, finding := range report.Findings {
		idSource := orDefault(finding.Commit, orDefault(finding.File, "unknown"))
		if len(idSource) > 8 {
			idSource = idSource[:8]
		}

		records = append(records, models.VulnerabilityRecord{
			ID:            "GITLEAKS-" + idSource,
			Tool:          info.Name,
			Category:      info.Category,
			Type:          "Secret Exposure",
			Title:         "Secret detected: " + orDefault(finding.RuleID, "Unknown"),
			Description:   orDefault(finding.Description, orDefault(finding.Match, "Secret found in repository")),
			Severity:      models.SeverityCritical,
			SeverityScore: models.ScoreForSeverity(models.SeverityCritical, n.scores),
			File:          orDefault(finding.File, "unknown"),
			Line:          finding.StartLine,
			Commit:        orDefault(finding.Commit, "N/A"),
			Rule:          orDefault(finding.RuleID, "unknown"),
			Remediation:   "Remove the secret from version control and rotate credentials immediately.",
			CWE:           []string{"CWE-798"},
			OWASP:         []string{"A02:2021-Cryptographic Failures"},
			Compliance:    []string{"ISO 27001: A.9.4.3", "PCI-DSS: 6.5.3"},
		})
	}
	return records
}

// NormalizeSemgrep converts Semgrep results to normalized records
func (n *Normalizer) NormalizeSemgrep(report *models.SemgrepReport) []models.VulnerabilityRecord {
	info := models.SupportedTools[models.ToolSemgrep]

	records := make([]models.VulnerabilityRecord, 0, len(report.Results))
	for _, result := range report.Results {
		severity := models.NormalizeSeverity(result.Extra.Severity)

		records = append(records, models.VulnerabilityRecord{
			ID:            orDefault(result.CheckID, "SEMGREP-UNKNOWN"),
			Tool:          info.Name,
			Category:      info.Category,
			Type:          orDefault(result.Extra.Metadata.Category, "Code Quality"),
			Title:         orDefault(result.Extra.Message, "Security issue detected"),
			Description:   orDefault(result.Extra.Metadata.Source, result.Extra.Message),
			Severity:      severity,
			SeverityScore: models.ScoreForSeverity(severity, n.scores),
			File:          orDefault(result.Path, "unknown"),
			Line:          result.Start.Line,
			CodeSnippet:   result.Extra.Lines,
			Rule:          orDefault(result.CheckID, "unknown"),
			Remediation:   orDefault(result.Extra.Metadata.Fix, "Review and fix the security issue"),
			CWE:           result.Extra.Metadata.CWE,
			OWASP:         result.Extra.Metadata.OWASP,
			References:    result.Extra.Metadata.References,
		})
	}
	return records
}

// NormalizeDependencyCheck converts Dependency-Check results to
// normalized records. Dependencies without vulnerabilities are
// skipped. A CVSS v3 base score, when present, overrides the severity
// table score.
func (n *Normalizer) NormalizeDependencyCheck(report *models.DependencyCheckReport) []models.VulnerabilityRecord {
	info := models.SupportedTools[models.ToolDepCheck]

	var records []models.VulnerabilityRecord
	for _, dep := range report.Dependencies {
		if len(dep.Vulnerabilities) == 0 {
			continue
		}

		fileName := orDefault(dep.FileName, "unknown")
		for _, vuln := range dep.Vulnerabilities {
			severity := models.NormalizeSeverity(vuln.Severity)
			id := orDefault(vuln.Name, "CVE-UNKNOWN")

			score := models.ScoreForSeverity(severity, n.scores)
			cvssScore := 0.0
			cvssVector := "NETWORK"
			if vuln.CVSSv3 != nil {
				if vuln.CVSSv3.BaseScore != nil {
					score = *vuln.CVSSv3.BaseScore
					cvssScore = *vuln.CVSSv3.BaseScore
				}
				if vuln.CVSSv3.AttackVector != "" {
					cvssVector = vuln.CVSSv3.AttackVector
				}
			}

			refs := make([]string, 0, len(vuln.References))
			for _, ref := range vuln.References {
				refs = append(refs, ref.URL)
			}

			records = append(records, models.VulnerabilityRecord{
				ID:            id,
				Tool:          info.Name,
				Category:      info.Category,
				Type:          "Vulnerable Dependency",
				Title:         fmt.Sprintf("%s in %s", id, fileName),
				Description:   orDefault(vuln.Description, "Known vulnerability in dependency"),
				Severity:      severity,
				SeverityScore: score,
				File:          fileName,
				Package:       fileName,
				CVSSScore:     cvssScore,
				CVSSVector:    cvssVector,
				CWE:           []string{orDefault(vuln.CWE, "CWE-1035")},
				Remediation:   fmt.Sprintf("Update %s to a patched version", fileName),
				References:    refs,
				Compliance:    []string{"ISO 27001: A.12.6.1", "PCI-DSS: 6.2"},
			})
		}
	}
	if records == nil {
		return []models.VulnerabilityRecord{}
	}
	return records
}

// NormalizeTrivy converts Trivy results to normalized records
func (n *Normalizer) NormalizeTrivy(report *models.TrivyReport) []models.VulnerabilityRecord {
	info := models.SupportedTools[models.ToolTrivy]

	var records []models.VulnerabilityRecord
	for _, result := range report.Results {
		target := orDefault(result.Target, "unknown")
		resultType := orDefault(result.Type, "OS Package")

		for _, vuln := range result.Vulnerabilities {
			severity := models.NormalizeSeverity(vuln.Severity)
			id := orDefault(vuln.VulnerabilityID, "TRIVY-UNKNOWN")
			pkg := orDefault(vuln.PkgName, "unknown")
			installed := orDefault(vuln.InstalledVersion, "unknown")

			records = append(records, models.VulnerabilityRecord{
				ID:               id,
				Tool:             info.Name,
				Category:         info.Category,
				Type:             resultType,
				Title:            fmt.Sprintf("%s in %s", id, pkg),
				Description:      orDefault(vuln.Description, orDefault(vuln.Title, "Container vulnerability")),
				Severity:         severity,
				SeverityScore:    models.ScoreForSeverity(severity, n.scores),
				Package:          pkg,
				InstalledVersion: installed,
				FixedVersion:     orDefault(vuln.FixedVersion, "Not available"),
				Target:           target,
				CVSSScore:        vuln.CVSS["nvd"].V3Score,
				Remediation:      fmt.Sprintf("Update %s from %s to %s", pkg, installed, orDefault(vuln.FixedVersion, "latest")),
				References:       vuln.References,
				Compliance:       []string{"ISO 27001: A.12.6.1", "CIS Docker Benchmark"},
			})
		}
	}
	if records == nil {
		return []models.VulnerabilityRecord{}
	}
	return records
}

// NormalizeZAP converts OWASP ZAP alerts to normalized records. Only
// the first site's alerts are read. Severity comes from the first
// token of the compound riskdesc string.
func (n *Normalizer) NormalizeZAP(report *models.ZAPReport) []models.VulnerabilityRecord {
	if len(report.Site) == 0 {
		return []models.VulnerabilityRecord{}
	}
	info := models.SupportedTools[models.ToolZAP]
	site := report.Site[0]

	records := make([]models.VulnerabilityRecord, 0, len(site.Alerts))
	for _, alert := range site.Alerts {
		severity := models.SeverityMedium
		if fields := strings.Fields(alert.RiskDesc); len(fields) > 0 {
			severity = models.NormalizeSeverity(fields[0])
		}

		var instance models.ZAPInstance
		if len(alert.Instances) > 0 {
			instance = alert.Instances[0]
		}

		var refs []string
		if alert.Reference != "" {
			refs = strings.Split(alert.Reference, "\n")
		}

		records = append(records, models.VulnerabilityRecord{
			ID:            "ZAP-" + orDefault(alert.PluginID, "UNKNOWN"),
			Tool:          info.Name,
			Category:      info.Category,
			Type:          "Web Application Vulnerability",
			Title:         orDefault(alert.Name, "Security issue detected"),
			Description:   orDefault(alert.Desc, "Web application vulnerability"),
			Severity:      severity,
			SeverityScore: models.ScoreForSeverity(severity, n.scores),
			URL:           orDefault(instance.URI, "unknown"),
			Method:        orDefault(instance.Method, "GET"),
			Parameter:     instance.Param,
			Attack:        instance.Attack,
			Evidence:      instance.Evidence,
			Solution:      orDefault(alert.Solution, "Review and remediate"),
			Remediation:   orDefault(alert.Solution, "Review security best practices"),
			CWE:           []string{"CWE-" + orDefault(alert.CWEID, "0")},
			OWASP:         []string{orDefault(alert.WASCID, "OWASP-Unknown")},
			References:    refs,
			Compliance:    []string{"ISO 27001: A.14.2.1", "OWASP Top 10"},
		})
	}
	return records
}

// orDefault substitutes a fallback for empty source fields
func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

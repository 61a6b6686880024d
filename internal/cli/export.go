package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/scanhub/scanhub/internal/aggregator"
	"github.com/scanhub/scanhub/internal/models"
	"github.com/scanhub/scanhub/internal/storage"
)

var (
	exportFormat string
	exportOutput string
	exportLastN  int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export vulnerability data for compliance reporting",
	Long: `Export stored runs in formats suitable for audit evidence and code
scanning integrations.

Supported formats:
  csv    Tabular format for spreadsheets and compliance tools
  json   Structured JSON for programmatic consumption
  sarif  SARIF 2.1.0 for GitHub Advanced Security and code scanning

Example:
  scanhub export --format csv -o audit-evidence.csv
  scanhub export --format sarif -o results.sarif --last 1
  scanhub export --format json --last 30 -o evidence.json`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv",
		"output format: csv, json, or sarif")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "",
		"write output to file (default: stdout)")
	exportCmd.Flags().IntVarP(&exportLastN, "last", "n", 1,
		"number of recent runs to include")
}

// ComplianceRecord is a single row in the compliance export.
type ComplianceRecord struct {
	RunScanDate   string `json:"run_scan_date"`
	Tool          string `json:"tool"`
	Category      string `json:"category"`
	Severity      string `json:"severity"`
	SeverityScore string `json:"severity_score"`
	ID            string `json:"id"`
	Title         string `json:"title"`
	Location      string `json:"location"`
	RiskLevel     string `json:"risk_level"`
	RiskScore     string `json:"risk_score"`
}

// ComplianceExport is the full export payload.
type ComplianceExport struct {
	ExportedAt   string             `json:"exported_at"`
	RunCount     int                `json:"run_count"`
	FindingCount int                `json:"finding_count"`
	Records      []ComplianceRecord `json:"records"`
}

func runExport(cmd *cobra.Command, args []string) error {
	storagePath, err := getStoragePath(cfg.StorageDir)
	if err != nil {
		logError("Failed to resolve storage path: %v", err)
		return err
	}

	store := storage.NewLocal(storagePath)

	reports, err := store.GetLastNRuns(exportLastN)
	if err != nil || len(reports) == 0 {
		fmt.Println("No stored runs found. Run 'scanhub process --store' first.")
		return nil
	}

	logVerbose("Exporting %d runs", len(reports))

	export := buildComplianceExport(reports)

	writer := os.Stdout
	if exportOutput != "" {
		writer, err = os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = writer.Close() }()
	}

	switch exportFormat {
	case "csv":
		return writeCSV(writer, export)
	case "json":
		return writeExportJSON(writer, export)
	case "sarif":
		return writeSARIF(writer, reports)
	default:
		return fmt.Errorf("unsupported format: %s (use csv, json, or sarif)", exportFormat)
	}
}

func buildComplianceExport(reports []*models.NormalizedReport) *ComplianceExport {
	var records []ComplianceRecord

	for _, report := range reports {
		scanDate := report.Metadata.ScanDate
		riskLevel := report.RiskMetrics.RiskLevel
		riskScore := fmt.Sprintf("%d", report.RiskMetrics.RiskScore)

		for _, vuln := range report.Vulnerabilities {
			records = append(records, ComplianceRecord{
				RunScanDate:   scanDate,
				Tool:          vuln.Tool,
				Category:      vuln.Category,
				Severity:      vuln.Severity,
				SeverityScore: fmt.Sprintf("%.1f", vuln.SeverityScore),
				ID:            vuln.ID,
				Title:         vuln.Title,
				Location:      vuln.Location(),
				RiskLevel:     riskLevel,
				RiskScore:     riskScore,
			})
		}
	}

	// Sort by severity (critical first), then tool, then location.
	sevOrder := map[string]int{
		models.SeverityCritical: 0,
		models.SeverityHigh:     1,
		models.SeverityMedium:   2,
		models.SeverityLow:      3,
		models.SeverityInfo:     4,
	}
	sort.Slice(records, func(i, j int) bool {
		si, sj := sevOrder[records[i].Severity], sevOrder[records[j].Severity]
		if si != sj {
			return si < sj
		}
		if records[i].Tool != records[j].Tool {
			return records[i].Tool < records[j].Tool
		}
		return records[i].Location < records[j].Location
	})

	return &ComplianceExport{
		ExportedAt:   time.Now().UTC().Format(time.RFC3339),
		RunCount:     len(reports),
		FindingCount: len(records),
		Records:      records,
	}
}

func writeCSV(w *os.File, export *ComplianceExport) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{
		"run_scan_date", "tool", "category", "severity", "severity_score",
		"id", "title", "location", "risk_level", "risk_score",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range export.Records {
		row := []string{
			r.RunScanDate, r.Tool, r.Category, r.Severity, r.SeverityScore,
			r.ID, r.Title, r.Location, r.RiskLevel, r.RiskScore,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func writeExportJSON(w *os.File, export *ComplianceExport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(export)
}

// SARIF 2.1.0 output for GitHub Advanced Security integration.
// Minimal structures, only what's needed for valid SARIF.

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string             `json:"id"`
	ShortDescription sarifMessage       `json:"shortDescription"`
	DefaultConfig    sarifDefaultConfig `json:"defaultConfiguration"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysical `json:"physicalLocation"`
}

type sarifPhysical struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           *sarifRegion  `json:"region,omitempty"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
}

func writeSARIF(w *os.File, reports []*models.NormalizedReport) error {
	rulesMap := map[string]sarifRule{}
	var results []sarifResult

	for _, report := range reports {
		for _, vuln := range report.Vulnerabilities {
			ruleID := sarifRuleID(vuln)
			if _, exists := rulesMap[ruleID]; !exists {
				rulesMap[ruleID] = sarifRule{
					ID:               ruleID,
					ShortDescription: sarifMessage{Text: vuln.Title},
					DefaultConfig:    sarifDefaultConfig{Level: sarifLevel(vuln.Severity)},
				}
			}

			var region *sarifRegion
			if vuln.Line > 0 {
				region = &sarifRegion{StartLine: vuln.Line}
			}

			results = append(results, sarifResult{
				RuleID:  ruleID,
				Level:   sarifLevel(vuln.Severity),
				Message: sarifMessage{Text: sarifMessageText(vuln)},
				Locations: []sarifLocation{{
					PhysicalLocation: sarifPhysical{
						ArtifactLocation: sarifArtifact{URI: vuln.Location()},
						Region:           region,
					},
				}},
			})
		}
	}

	var rules []sarifRule
	for _, r := range rulesMap {
		rules = append(rules, r)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })

	log := sarifLog{
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool: sarifTool{
				Driver: sarifDriver{
					Name:    "scanhub",
					Version: aggregator.PipelineVersion,
					Rules:   rules,
				},
			},
			Results: results,
		}},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(log)
}

// sarifRuleID builds a stable rule identifier. Rule IDs repeat across tools
// (a CVE can show up in both dependency-check and trivy), so the tool name
// is folded in.
func sarifRuleID(vuln models.VulnerabilityRecord) string {
	id := vuln.ID
	if id == "" {
		id = vuln.Type
	}
	return vuln.Tool + "/" + id
}

func sarifLevel(severity string) string {
	switch severity {
	case models.SeverityCritical, models.SeverityHigh:
		return "error"
	case models.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}

func sarifMessageText(vuln models.VulnerabilityRecord) string {
	parts := []string{vuln.Tool + ": " + vuln.Title}
	if vuln.Package != "" && vuln.FixedVersion != "" {
		parts = append(parts, fmt.Sprintf("Upgrade %s to %s", vuln.Package, vuln.FixedVersion))
	}
	return strings.Join(parts, ". ")
}

package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scanhub/scanhub/internal/aggregator"
	"github.com/scanhub/scanhub/internal/models"
	"github.com/scanhub/scanhub/internal/storage"
)

var (
	explainFormat string
	explainInput  string
)

var explainScoreCmd = &cobra.Command{
	Use:   "explain-score",
	Short: "Show the risk score formula step by step",
	Long: `Explain-score loads the latest stored run and shows exactly how the risk
score and risk level were derived:

  1. Finding counts per severity and their weights
  2. The formula: score = 10*critical + 5*high + 2*medium + 1*low
  3. The risk level rules, evaluated top to bottom
  4. Finding counts per tool

Reads the latest run stored with --store, or a normalized document given
with --input.`,
	RunE: runExplainScore,
}

func init() {
	explainScoreCmd.Flags().StringVar(&explainFormat, "format", "text",
		"output format: text or json")
	explainScoreCmd.Flags().StringVarP(&explainInput, "input", "i", "",
		"explain a normalized document instead of the latest stored run")
}

// explainResult holds the structured explanation.
type explainResult struct {
	ScanDate    string                 `json:"scan_date"`
	PerSeverity []severityContribution `json:"per_severity"`
	RiskScore   int                    `json:"risk_score"`
	RiskLevel   string                 `json:"risk_level"`
	Formula     string                 `json:"formula"`
	Rules       []levelRule            `json:"rules"`
	ByTool      map[string]int         `json:"findings_by_tool"`
}

type severityContribution struct {
	Severity string `json:"severity"`
	Count    int    `json:"count"`
	Weight   int    `json:"weight"`
	Subtotal int    `json:"subtotal"`
}

type levelRule struct {
	Condition string `json:"condition"`
	Level     string `json:"level"`
	Matched   bool   `json:"matched"`
}

func runExplainScore(cmd *cobra.Command, args []string) error {
	report, err := loadExplainReport()
	if err != nil {
		return err
	}

	result := buildExplanation(report)

	if explainFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	return writeExplainText(result)
}

func loadExplainReport() (*models.NormalizedReport, error) {
	if explainInput != "" {
		data, err := os.ReadFile(explainInput)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", explainInput, err)
		}
		var report models.NormalizedReport
		if err := json.Unmarshal(data, &report); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", explainInput, err)
		}
		return &report, nil
	}

	storagePath, err := getStoragePath(cfg.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage path: %w", err)
	}

	store := storage.NewLocal(storagePath)
	report, err := store.GetLatestRun()
	if err != nil {
		return nil, fmt.Errorf("no stored runs found. Run 'scanhub process --store' first: %w", err)
	}
	return report, nil
}

func buildExplanation(report *models.NormalizedReport) explainResult {
	metrics := report.RiskMetrics

	result := explainResult{
		ScanDate: report.Metadata.ScanDate,
		PerSeverity: []severityContribution{
			contribution(models.SeverityCritical, metrics.Critical, aggregator.RiskWeightCritical),
			contribution(models.SeverityHigh, metrics.High, aggregator.RiskWeightHigh),
			contribution(models.SeverityMedium, metrics.Medium, aggregator.RiskWeightMedium),
			contribution(models.SeverityLow, metrics.Low, aggregator.RiskWeightLow),
			contribution(models.SeverityInfo, metrics.Info, 0),
		},
		RiskScore: metrics.RiskScore,
		RiskLevel: metrics.RiskLevel,
		Formula: fmt.Sprintf("%d*%d + %d*%d + %d*%d + %d*%d = %d",
			aggregator.RiskWeightCritical, metrics.Critical,
			aggregator.RiskWeightHigh, metrics.High,
			aggregator.RiskWeightMedium, metrics.Medium,
			aggregator.RiskWeightLow, metrics.Low,
			metrics.RiskScore),
		Rules: []levelRule{
			{Condition: "critical > 0", Level: models.RiskCritical},
			{Condition: "high > 5", Level: models.RiskHigh},
			{Condition: "high > 0", Level: models.RiskMediumHigh},
			{Condition: "medium > 10", Level: models.RiskMedium},
			{Condition: "otherwise", Level: models.RiskLow},
		},
		ByTool: make(map[string]int, len(report.ToolSummary)),
	}

	for i := range result.Rules {
		result.Rules[i].Matched = result.Rules[i].Level == metrics.RiskLevel
	}

	for tool, entry := range report.ToolSummary {
		result.ByTool[tool] = entry.Count
	}

	return result
}

func contribution(severity string, count, weight int) severityContribution {
	return severityContribution{
		Severity: severity,
		Count:    count,
		Weight:   weight,
		Subtotal: count * weight,
	}
}

func writeExplainText(result explainResult) error {
	fmt.Println("Risk Score Breakdown")
	fmt.Println("====================")
	fmt.Println()
	fmt.Printf("Scan date: %s\n", result.ScanDate)
	fmt.Println()

	// Step 1: Per-severity contributions
	fmt.Println("1. Findings by severity:")
	for _, sc := range result.PerSeverity {
		fmt.Printf("   %-10s %4d × %2d = %4d\n", sc.Severity, sc.Count, sc.Weight, sc.Subtotal)
	}
	fmt.Println()

	// Step 2: Formula
	fmt.Println("2. Formula:")
	fmt.Println("   score = 10*critical + 5*high + 2*medium + 1*low")
	fmt.Printf("   score = %s\n", result.Formula)
	fmt.Println()

	// Step 3: Risk level rules
	fmt.Println("3. Risk level rules (first match wins):")
	for _, rule := range result.Rules {
		marker := "  "
		if rule.Matched {
			marker = "→ "
		}
		fmt.Printf("   %s%-12s %s\n", marker, rule.Condition, rule.Level)
	}
	fmt.Println()

	// Step 4: Findings by tool, in registry order
	fmt.Println("4. Findings by tool:")
	for _, tool := range models.ToolOrder {
		if count, ok := result.ByTool[string(tool)]; ok {
			fmt.Printf("   %-17s %d\n", string(tool), count)
		}
	}
	fmt.Println()

	fmt.Printf("Result: %s (score %d)\n", result.RiskLevel, result.RiskScore)
	return nil
}

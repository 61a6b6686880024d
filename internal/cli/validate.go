package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scanhub/scanhub/internal/collector"
	"github.com/scanhub/scanhub/internal/models"
	"github.com/scanhub/scanhub/internal/validator"
)

var validateTool string

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a scanner report before processing",
	Long: `Validate checks that a scanner report file has the structure the pipeline
expects: required fields present, severities recognized, scores in range.

The tool is detected from the filename (gitleaks-report.json and friends) or
from the JSON structure; use --tool to override.

Returns exit 0 if valid, exit 2 if invalid with details on stderr.

Example:
  scanhub validate reports/trivy-report.json
  scanhub validate --tool zap scan-output.json`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateTool, "tool", "", "scanner that produced the report: gitleaks, semgrep, dependency-check, trivy, or zap")
}

func runValidate(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	toolType, err := resolveToolType(filePath, data)
	if err != nil {
		return err
	}

	v := validator.New()
	if err := v.ValidateReport(toolType, data); err != nil {
		fmt.Fprintf(os.Stderr, "INVALID: %v\n", err)
		os.Exit(ExitInvalidInput)
		return nil
	}

	fmt.Printf("VALID: %s report\n", collector.GetToolName(toolType))
	return nil
}

// resolveToolType picks the scanner from the --tool flag, the filename, or
// the JSON structure, in that order.
func resolveToolType(filePath string, data []byte) (models.ToolType, error) {
	if validateTool != "" {
		toolType := models.ToolType(validateTool)
		if err := collector.ValidateToolType(toolType); err != nil {
			return models.ToolUnknown, fmt.Errorf("unsupported tool %q: use gitleaks, semgrep, dependency-check, trivy, or zap", validateTool)
		}
		return toolType, nil
	}

	if toolType, ok := collector.DetectToolTypeFromFilename(filePath); ok {
		return toolType, nil
	}

	toolType, err := collector.DetectToolType(data)
	if err != nil {
		return models.ToolUnknown, fmt.Errorf("could not detect scanner for %s: %w (use --tool)", filePath, err)
	}
	return toolType, nil
}

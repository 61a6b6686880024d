package collector

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/scanhub/scanhub/internal/models"
)

// DetectToolTypeFromFilename matches a report filename against the
// expected filenames in the tool registry.
func DetectToolTypeFromFilename(name string) (models.ToolType, bool) {
	base := filepath.Base(name)
	for _, tool := range models.ToolOrder {
		if models.SupportedTools[tool].ReportFile == base {
			return tool, true
		}
	}
	return models.ToolUnknown, false
}

// DetectToolType identifies which scanner produced the JSON data.
// It uses a two-phase approach:
// 1. Check for a bare findings array (only Gitleaks emits one)
// 2. Structural analysis of top-level keys
func DetectToolType(data []byte) (models.ToolType, error) {
	var asList []json.RawMessage
	if err := json.Unmarshal(data, &asList); err == nil {
		return models.ToolGitleaks, nil
	}

	return detectByStructure(data)
}

// detectByStructure uses JSON structure to identify the tool
func detectByStructure(data []byte) (models.ToolType, error) {
	var structure map[string]interface{}
	if err := json.Unmarshal(data, &structure); err != nil {
		return models.ToolUnknown, fmt.Errorf("failed to parse JSON: %w", err)
	}

	// Gitleaks wrapped shape
	if hasKey(structure, "findings") {
		return models.ToolGitleaks, nil
	}

	// Semgrep: results entries carry check_id
	if hasKey(structure, "results") {
		if results, ok := structure["results"].([]interface{}); ok {
			if len(results) == 0 {
				return models.ToolSemgrep, nil
			}
			if first, ok := results[0].(map[string]interface{}); ok && hasKey(first, "check_id") {
				return models.ToolSemgrep, nil
			}
		}
	}

	// Dependency-Check: dependencies array at the top level
	if hasKey(structure, "dependencies") {
		return models.ToolDepCheck, nil
	}

	// Trivy: capitalized Results, usually alongside SchemaVersion or
	// ArtifactName
	if hasKey(structure, "Results") {
		return models.ToolTrivy, nil
	}

	// ZAP: site array whose entries carry alerts
	if hasKey(structure, "site") {
		if sites, ok := structure["site"].([]interface{}); ok {
			if len(sites) == 0 {
				return models.ToolZAP, nil
			}
			if first, ok := sites[0].(map[string]interface{}); ok && hasKey(first, "alerts") {
				return models.ToolZAP, nil
			}
		}
	}

	return models.ToolUnknown, fmt.Errorf("unable to detect tool type from structure")
}

// hasKey checks if a key exists in a map
func hasKey(m map[string]interface{}, key string) bool {
	_, exists := m[key]
	return exists
}

// ValidateToolType checks if detected tool type is supported
func ValidateToolType(toolType models.ToolType) error {
	if toolType == models.ToolUnknown {
		return fmt.Errorf("unknown tool type")
	}

	if !models.IsSupportedTool(toolType) {
		return fmt.Errorf("tool type '%s' is not supported", toolType)
	}

	return nil
}

// GetToolName returns the human-readable name for a tool type
func GetToolName(toolType models.ToolType) string {
	if info, ok := models.GetToolInfo(toolType); ok {
		return info.Name
	}
	return string(toolType)
}

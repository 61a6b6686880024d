package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scanhub/scanhub/internal/config"
	"github.com/scanhub/scanhub/internal/storage"
)

var statusFormat string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and stored run state",
	Long: `Status displays the active ScanHub configuration, where runs are stored,
and a summary of the latest stored run.

Example:
  scanhub status
  scanhub status --format json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusFormat, "format", "text",
		"output format: text or json")
}

type statusResult struct {
	ConfigFile string        `json:"config_file,omitempty"`
	Config     statusConfig  `json:"config"`
	Storage    statusStorage `json:"storage"`
	LatestRun  *statusRun    `json:"latest_run,omitempty"`
}

type statusConfig struct {
	ReportsDir    string `json:"reports_dir"`
	StorageDir    string `json:"storage_dir"`
	Format        string `json:"format"`
	FailThreshold int    `json:"fail_threshold"`
	LastRuns      int    `json:"last_runs"`
}

type statusStorage struct {
	Path       string `json:"path"`
	StoredRuns int    `json:"stored_runs"`
}

type statusRun struct {
	ScanDate       string `json:"scan_date"`
	Total          int    `json:"total"`
	RiskScore      int    `json:"risk_score"`
	RiskLevel      string `json:"risk_level"`
	ProcessedTools int    `json:"processed_tools"`
	TotalTools     int    `json:"total_tools"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	result := statusResult{
		ConfigFile: resolveConfigFile(),
		Config: statusConfig{
			ReportsDir:    cfg.ReportsDir,
			StorageDir:    cfg.StorageDir,
			Format:        cfg.Format,
			FailThreshold: cfg.FailThreshold,
			LastRuns:      cfg.LastRuns,
		},
	}

	storagePath, err := getStoragePath(cfg.StorageDir)
	if err != nil {
		return err
	}
	result.Storage.Path = storagePath

	store := storage.NewLocal(storagePath)
	if runs, err := store.ListRuns(); err == nil {
		result.Storage.StoredRuns = len(runs)
	}

	if latest, err := store.GetLatestRun(); err == nil {
		result.LatestRun = &statusRun{
			ScanDate:       latest.Metadata.ScanDate,
			Total:          latest.RiskMetrics.Total,
			RiskScore:      latest.RiskMetrics.RiskScore,
			RiskLevel:      latest.RiskMetrics.RiskLevel,
			ProcessedTools: latest.Metadata.ProcessedTools,
			TotalTools:     latest.Metadata.TotalTools,
		}
	}

	if statusFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	return writeStatusText(result)
}

// resolveConfigFile returns the config file in effect, or "" when running
// on defaults.
func resolveConfigFile() string {
	if configFile != "" {
		return configFile
	}
	path := config.ConfigPath()
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

func writeStatusText(result statusResult) error {
	if result.ConfigFile != "" {
		fmt.Printf("Config:    %s\n", result.ConfigFile)
	} else {
		fmt.Println("Config:    not found (using defaults)")
	}

	fmt.Printf("Reports:   %s\n", result.Config.ReportsDir)
	fmt.Printf("Storage:   %s (%d stored runs)\n", result.Storage.Path, result.Storage.StoredRuns)
	fmt.Printf("Format:    %s\n", result.Config.Format)

	if result.Config.FailThreshold > 0 {
		fmt.Printf("Threshold: fail above risk score %d\n", result.Config.FailThreshold)
	} else {
		fmt.Println("Threshold: disabled")
	}

	if result.LatestRun != nil {
		fmt.Println()
		fmt.Printf("Latest Run: %s\n", formatRunDate(result.LatestRun.ScanDate))
		fmt.Printf("  Findings: %d (risk score %d, %s)\n",
			result.LatestRun.Total, result.LatestRun.RiskScore, result.LatestRun.RiskLevel)
		fmt.Printf("  Tools: %d of %d processed\n",
			result.LatestRun.ProcessedTools, result.LatestRun.TotalTools)
	}

	return nil
}

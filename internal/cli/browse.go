package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/scanhub/scanhub/internal/aggregator"
	"github.com/scanhub/scanhub/internal/models"
	"github.com/scanhub/scanhub/internal/storage"
	"github.com/scanhub/scanhub/internal/tui"
)

var (
	browseInput string
	browseLastN int
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse findings in an interactive terminal UI",
	Long: `Browse opens the latest stored run in an interactive table: scroll through
findings, search, filter by tool or severity, change the sort order, and
copy a finding to the clipboard.

Requires an interactive terminal. Use --input to browse a normalized
document file instead of the latest stored run.

Keys:
  ↑/↓ move   /:search   t:filter tool   f:cycle severity
  s:cycle sort   c:copy   esc:clear   q:quit`,
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().StringVarP(&browseInput, "input", "i", "",
		"browse a normalized document instead of the latest stored run")
	browseCmd.Flags().IntVarP(&browseLastN, "last", "n", 0,
		"number of runs to include in the trend sparkline (default from config)")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("browse requires an interactive terminal (try 'scanhub process --format text' instead)")
	}

	if browseLastN == 0 {
		browseLastN = cfg.LastRuns
	}

	if browseInput != "" {
		report, err := loadNormalizedFile(browseInput)
		if err != nil {
			return err
		}
		return tui.Run(report, nil, nil)
	}

	storagePath, err := getStoragePath(cfg.StorageDir)
	if err != nil {
		return fmt.Errorf("failed to resolve storage path: %w", err)
	}

	store := storage.NewLocal(storagePath)

	reports, err := store.GetLastNRuns(browseLastN)
	if err != nil || len(reports) == 0 {
		fmt.Println("No stored runs found. Run 'scanhub process --store' first.")
		return nil
	}

	latest := reports[len(reports)-1]

	analyzer := aggregator.NewTrendAnalyzer()
	summary := analyzer.AnalyzeLastNRuns(reports)

	var trend *models.Trend
	if len(reports) >= 2 {
		trend = analyzer.CalculateTrend(latest, reports[len(reports)-2])
	}

	logVerbose("Browsing run from %s with %d findings",
		latest.Metadata.ScanDate, latest.RiskMetrics.Total)

	return tui.Run(latest, summary, trend)
}

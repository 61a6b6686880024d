package discovery

import (
	"os"
	"path/filepath"

	"github.com/scanhub/scanhub/internal/models"
)

// LookPathFunc matches the signature of exec.LookPath.
type LookPathFunc func(file string) (string, error)

// StatFunc matches the signature of os.Stat.
type StatFunc func(name string) (os.FileInfo, error)

// Discoverer probes the local environment to find installed scanners
// and the report files they have produced. Injectable deps make it
// fully testable.
type Discoverer struct {
	lookPath LookPathFunc
	stat     StatFunc
}

// New creates a Discoverer with the given dependency functions.
func New(lookPath LookPathFunc, stat StatFunc) *Discoverer {
	return &Discoverer{
		lookPath: lookPath,
		stat:     stat,
	}
}

// ToolDiscovery describes what was found for a single scanner.
type ToolDiscovery struct {
	Tool       models.ToolType `json:"tool"`
	Binary     string          `json:"binary"`
	BinaryPath string          `json:"binary_path,omitempty"`
	Installed  bool            `json:"installed"`
	ReportFile string          `json:"report_file"`
	ReportPath string          `json:"report_path,omitempty"`
	HasReport  bool            `json:"has_report"`
}

// DiscoveryPlan is the complete result of a discovery scan.
type DiscoveryPlan struct {
	ReportsDir     string          `json:"reports_dir"`
	Tools          []ToolDiscovery `json:"tools"`
	TotalInstalled int             `json:"total_installed"`
	TotalReports   int             `json:"total_reports"`
}

// Discover checks which scanners are installed and which report files
// exist in the reports directory. No scanner is executed, no network
// calls are made.
func (d *Discoverer) Discover(reportsDir string) *DiscoveryPlan {
	plan := &DiscoveryPlan{ReportsDir: reportsDir}

	// Registry order doubles as presentation order
	for _, toolType := range models.ToolOrder {
		info := Registry[toolType]
		td := ToolDiscovery{
			Tool:       toolType,
			Binary:     info.Binary,
			ReportFile: info.ReportFile,
		}

		// Check if binary exists in PATH
		if path, err := d.lookPath(info.Binary); err == nil {
			td.Installed = true
			td.BinaryPath = path
		}

		// Check if the report file exists
		reportPath := filepath.Join(reportsDir, info.ReportFile)
		if fi, err := d.stat(reportPath); err == nil && !fi.IsDir() {
			td.HasReport = true
			td.ReportPath = reportPath
		}

		plan.Tools = append(plan.Tools, td)

		if td.Installed {
			plan.TotalInstalled++
		}
		if td.HasReport {
			plan.TotalReports++
		}
	}

	return plan
}

// ToolsWithReports returns only the scanners whose report file exists.
func (p *DiscoveryPlan) ToolsWithReports() []ToolDiscovery {
	var ready []ToolDiscovery
	for _, t := range p.Tools {
		if t.HasReport {
			ready = append(ready, t)
		}
	}
	return ready
}

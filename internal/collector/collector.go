package collector

import (
	"os"
	"path/filepath"
	"time"

	"github.com/scanhub/scanhub/internal/logging"
	"github.com/scanhub/scanhub/internal/models"
)

// Config holds configuration for the collector
type Config struct {
	ReportsDir string
}

// Collector loads scanner reports from the reports directory. Tools
// are loaded one at a time in registry order; a missing or malformed
// report is recorded against that tool and never fails the run.
type Collector struct {
	config Config
}

// New creates a new collector with the given configuration
func New(config Config) *Collector {
	if config.ReportsDir == "" {
		config.ReportsDir = "."
	}
	return &Collector{config: config}
}

// LoadResult holds the outcome of loading a single tool's report
type LoadResult struct {
	Tool     models.ToolType
	File     string // expected report filename
	Path     string // full path probed
	Exists   bool   // report file was present
	Duration time.Duration
	Report   interface{} // parsed typed report, nil when absent or malformed
	Err      error       // read or parse failure
}

// OK reports whether the tool's report was present and parseable
func (r LoadResult) OK() bool {
	return r.Exists && r.Err == nil
}

// Source converts the load result into the aggregation carrier
func (r LoadResult) Source() models.SourceReport {
	return models.SourceReport{
		Tool:        r.Tool,
		FileExisted: r.Exists,
		ParseFailed: r.Err != nil,
		Raw:         r.Report,
	}
}

// Collect loads every supported tool's report in registry order.
// Missing and malformed reports are recorded in the results, not
// returned as errors.
func (c *Collector) Collect() []LoadResult {
	results := make([]LoadResult, 0, len(models.ToolOrder))
	for _, tool := range models.ToolOrder {
		results = append(results, c.loadTool(tool))
	}
	return results
}

// Sources converts load results into aggregation carriers, preserving
// order
func Sources(results []LoadResult) []models.SourceReport {
	sources := make([]models.SourceReport, 0, len(results))
	for _, result := range results {
		sources = append(sources, result.Source())
	}
	return sources
}

// loadTool reads and parses one tool's expected report file
func (c *Collector) loadTool(tool models.ToolType) LoadResult {
	info := models.SupportedTools[tool]
	result := LoadResult{
		Tool: tool,
		File: info.ReportFile,
		Path: filepath.Join(c.config.ReportsDir, info.ReportFile),
	}

	start := time.Now()
	data, err := os.ReadFile(result.Path)
	if err != nil {
		result.Duration = time.Since(start)
		if os.IsNotExist(err) {
			logging.L().Infof("report not found: %s", result.File)
			return result
		}
		// The file is there but unreadable; it still counts as present.
		result.Exists = true
		result.Err = err
		logging.L().Warnf("failed to read %s: %v", result.File, err)
		return result
	}

	result.Exists = true
	report, err := ParseReport(data, tool)
	result.Duration = time.Since(start)
	if err != nil {
		result.Err = err
		logging.L().Warnf("failed to parse %s: %v", result.File, err)
		return result
	}

	result.Report = report
	logging.L().Infof("processed %s in %s", result.File, result.Duration)
	return result
}

package models

// Trend captures the change between two normalization runs.
type Trend struct {
	Direction        string  `json:"direction"`
	ChangePercent    float64 `json:"change_percent"`
	PreviousTotal    int     `json:"previous_total"`
	CurrentTotal     int     `json:"current_total"`
	PreviousScore    int     `json:"previous_score"`
	CurrentScore     int     `json:"current_score"`
	NewFindings      int     `json:"new_findings"`
	ResolvedFindings int     `json:"resolved_findings"`
	ComparedWith     string  `json:"compared_with"`
}

// ToolTrend captures per-tool movement between the earliest and latest run.
type ToolTrend struct {
	Name          string  `json:"name"`
	CurrentCount  int     `json:"current_count"`
	PreviousCount int     `json:"previous_count"`
	Change        int     `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// TrendSummary describes risk movement across the last N runs.
type TrendSummary struct {
	TimeRange      string                `json:"time_range"`
	RunsAnalyzed   int                   `json:"runs_analyzed"`
	ScoreSparkline []int                 `json:"score_sparkline"`
	TotalSparkline []int                 `json:"total_sparkline"`
	ByTool         map[string]*ToolTrend `json:"by_tool"`
}

// Recommendation is a prioritized remediation suggestion derived from findings.
type Recommendation struct {
	Severity string `json:"severity"`
	Tool     string `json:"tool"`
	Action   string `json:"action"`
	Impact   string `json:"impact"`
	Count    int    `json:"count"`
}

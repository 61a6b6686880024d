package models

// GitleaksReport represents the complete output from Gitleaks.
// Gitleaks emits a bare array of findings by default; some CI wrappers
// nest the array under a "findings" key. The parser accepts both and
// fills Findings either way.
type GitleaksReport struct {
	Findings []GitleaksFinding `json:"findings"`
}

// GitleaksFinding is a single leaked-secret detection
type GitleaksFinding struct {
	RuleID      string   `json:"RuleID"`
	Description string   `json:"Description"`
	Match       string   `json:"Match"`
	Secret      string   `json:"Secret,omitempty"`
	File        string   `json:"File"`
	StartLine   int      `json:"StartLine"`
	EndLine     int      `json:"EndLine,omitempty"`
	Commit      string   `json:"Commit"`
	Author      string   `json:"Author,omitempty"`
	Email       string   `json:"Email,omitempty"`
	Date        string   `json:"Date,omitempty"`
	Entropy     float64  `json:"Entropy,omitempty"`
	Tags        []string `json:"Tags,omitempty"`
}

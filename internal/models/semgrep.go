package models

// SemgrepReport represents the complete output from Semgrep
type SemgrepReport struct {
	Version string          `json:"version,omitempty"`
	Results []SemgrepResult `json:"results"`
}

// SemgrepResult is a single static-analysis finding
type SemgrepResult struct {
	CheckID string          `json:"check_id"`
	Path    string          `json:"path"`
	Start   SemgrepPosition `json:"start"`
	End     SemgrepPosition `json:"end"`
	Extra   SemgrepExtra    `json:"extra"`
}

// SemgrepPosition locates a finding within a file
type SemgrepPosition struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

// SemgrepExtra carries the rule message, severity, and matched lines
type SemgrepExtra struct {
	Message  string          `json:"message"`
	Severity string          `json:"severity"`
	Lines    string          `json:"lines"`
	Metadata SemgrepMetadata `json:"metadata"`
}

// SemgrepMetadata is the rule metadata block. All fields are optional;
// rules vary widely in what they attach.
type SemgrepMetadata struct {
	Category   string   `json:"category,omitempty"`
	Source     string   `json:"source,omitempty"`
	Fix        string   `json:"fix,omitempty"`
	CWE        []string `json:"cwe,omitempty"`
	OWASP      []string `json:"owasp,omitempty"`
	References []string `json:"references,omitempty"`
}

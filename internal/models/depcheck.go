package models

// DependencyCheckReport represents the complete output from OWASP
// Dependency-Check
type DependencyCheckReport struct {
	ReportSchema string                      `json:"reportSchema,omitempty"`
	ScanInfo     *DependencyCheckScanInfo    `json:"scanInfo,omitempty"`
	ProjectInfo  *DependencyCheckProjectInfo `json:"projectInfo,omitempty"`
	Dependencies []DependencyCheckDependency `json:"dependencies"`
}

// DependencyCheckScanInfo identifies the scanning engine
type DependencyCheckScanInfo struct {
	EngineVersion string `json:"engineVersion,omitempty"`
}

// DependencyCheckProjectInfo identifies the scanned project
type DependencyCheckProjectInfo struct {
	Name       string `json:"name,omitempty"`
	ReportDate string `json:"reportDate,omitempty"`
}

// DependencyCheckDependency is one scanned artifact. Dependencies
// without a vulnerabilities key are clean and are skipped during
// normalization.
type DependencyCheckDependency struct {
	FileName        string                         `json:"fileName"`
	FilePath        string                         `json:"filePath,omitempty"`
	Vulnerabilities []DependencyCheckVulnerability `json:"vulnerabilities,omitempty"`
}

// DependencyCheckVulnerability is a single known CVE in a dependency
type DependencyCheckVulnerability struct {
	Name        string                     `json:"name"`
	Severity    string                     `json:"severity"`
	Description string                     `json:"description"`
	CWE         string                     `json:"cwe,omitempty"`
	CVSSv3      *DependencyCheckCVSSv3     `json:"cvssv3,omitempty"`
	References  []DependencyCheckReference `json:"references,omitempty"`
}

// DependencyCheckCVSSv3 carries the CVSS v3 vector for a vulnerability.
// BaseScore is a pointer: the table score applies only when the report
// supplies no base score at all.
type DependencyCheckCVSSv3 struct {
	BaseScore    *float64 `json:"baseScore,omitempty"`
	AttackVector string   `json:"attackVector,omitempty"`
	BaseSeverity string   `json:"baseSeverity,omitempty"`
}

// DependencyCheckReference is an advisory link
type DependencyCheckReference struct {
	Source string `json:"source,omitempty"`
	URL    string `json:"url"`
	Name   string `json:"name,omitempty"`
}

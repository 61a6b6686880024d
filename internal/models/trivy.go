package models

// TrivyReport represents the complete output from Trivy
type TrivyReport struct {
	SchemaVersion int           `json:"SchemaVersion,omitempty"`
	ArtifactName  string        `json:"ArtifactName,omitempty"`
	ArtifactType  string        `json:"ArtifactType,omitempty"`
	Results       []TrivyResult `json:"Results"`
}

// TrivyResult groups vulnerabilities by scan target (an image layer,
// an OS package set, or a lockfile)
type TrivyResult struct {
	Target          string               `json:"Target"`
	Class           string               `json:"Class,omitempty"`
	Type            string               `json:"Type"`
	Vulnerabilities []TrivyVulnerability `json:"Vulnerabilities"`
}

// TrivyVulnerability is a single CVE against an installed package
type TrivyVulnerability struct {
	VulnerabilityID  string               `json:"VulnerabilityID"`
	PkgName          string               `json:"PkgName"`
	InstalledVersion string               `json:"InstalledVersion"`
	FixedVersion     string               `json:"FixedVersion,omitempty"`
	Title            string               `json:"Title,omitempty"`
	Description      string               `json:"Description,omitempty"`
	Severity         string               `json:"Severity"`
	PrimaryURL       string               `json:"PrimaryURL,omitempty"`
	References       []string             `json:"References,omitempty"`
	CVSS             map[string]TrivyCVSS `json:"CVSS,omitempty"`
}

// TrivyCVSS holds one source's CVSS scores. Only the nvd entry's
// V3Score feeds the normalized cvss_score field.
type TrivyCVSS struct {
	V2Vector string  `json:"V2Vector,omitempty"`
	V3Vector string  `json:"V3Vector,omitempty"`
	V2Score  float64 `json:"V2Score,omitempty"`
	V3Score  float64 `json:"V3Score,omitempty"`
}

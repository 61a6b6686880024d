package models

// ZAPReport represents the complete output from OWASP ZAP.
// ZAP's JSON export keys metadata fields with an @ prefix and encodes
// numeric identifiers as strings.
type ZAPReport struct {
	Version   string    `json:"@version,omitempty"`
	Generated string    `json:"@generated,omitempty"`
	Site      []ZAPSite `json:"site"`
}

// ZAPSite groups alerts for one scanned site. Only the first site is
// normalized.
type ZAPSite struct {
	Name   string     `json:"@name,omitempty"`
	Host   string     `json:"@host,omitempty"`
	Port   string     `json:"@port,omitempty"`
	SSL    string     `json:"@ssl,omitempty"`
	Alerts []ZAPAlert `json:"alerts"`
}

// ZAPAlert is a single dynamic-analysis alert. RiskDesc is a compound
// string like "High (Medium)"; its first token carries the severity.
type ZAPAlert struct {
	PluginID   string        `json:"pluginid"`
	AlertRef   string        `json:"alertRef,omitempty"`
	Alert      string        `json:"alert,omitempty"`
	Name       string        `json:"name"`
	RiskCode   string        `json:"riskcode,omitempty"`
	Confidence string        `json:"confidence,omitempty"`
	RiskDesc   string        `json:"riskdesc"`
	Desc       string        `json:"desc"`
	Instances  []ZAPInstance `json:"instances"`
	Count      string        `json:"count,omitempty"`
	Solution   string        `json:"solution"`
	Reference  string        `json:"reference,omitempty"`
	CWEID      string        `json:"cweid,omitempty"`
	WASCID     string        `json:"wascid,omitempty"`
	SourceID   string        `json:"sourceid,omitempty"`
}

// ZAPInstance is one observed occurrence of an alert
type ZAPInstance struct {
	URI      string `json:"uri"`
	Method   string `json:"method"`
	Param    string `json:"param,omitempty"`
	Attack   string `json:"attack,omitempty"`
	Evidence string `json:"evidence,omitempty"`
}

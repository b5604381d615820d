package models

// HostRecord holds the attributes of one host block from a parsed scan
// response. Records are built once by the parser and never modified by the
// derived views.
type HostRecord map[string]string

// VulnerabilityFinding represents one identified weakness on a scanned host
type VulnerabilityFinding struct {
	ID          string  `json:"id"`          // Advisory identifier (e.g., CVE)
	Severity    float64 `json:"severity"`    // Severity on a 0-10 scale
	Description string  `json:"description"` // Human-readable description
}

// OpenServiceEntry represents one exposed network service on a scanned host
type OpenServiceEntry struct {
	Port    int     `json:"port"`    // TCP/UDP port number
	Service string  `json:"service"` // Service name
	Product string  `json:"product"` // Product banner, if identified
	Version string  `json:"version"` // Product version, if identified
	Risk    float64 `json:"risk"`    // Risk weight in [0,1]
}

// RiskReport is the structured risk assessment derived from one scan record
type RiskReport struct {
	RiskScore       float64                `json:"risk_score"` // Aggregate score on a 0-10 scale
	RiskLevel       string                 `json:"risk_level"` // LOW, MEDIUM or HIGH
	Vulnerabilities []VulnerabilityFinding `json:"vulnerabilities"`
	OpenServices    []OpenServiceEntry     `json:"open_services"`
}

// AnalysisResult is the envelope returned by the attack vector analyzer.
// The JSON shape is the persisted artifact contract and is written verbatim.
type AnalysisResult struct {
	Success       bool     `json:"success"`
	AttackVector  string   `json:"attack_vector"`
	RiskScore     *float64 `json:"risk_score,omitempty"`
	HighVulnCount *int     `json:"high_vuln_count,omitempty"`
	AvgVulnScore  *float64 `json:"avg_vuln_score,omitempty"`
	Error         string   `json:"error,omitempty"`
}

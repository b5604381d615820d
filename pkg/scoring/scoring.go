package scoring

import (
	"math"

	"github.com/maritime-sec/port-twin/pkg/models"
	"github.com/maritime-sec/port-twin/pkg/shodan"
)

// Level is the three-tier severity classification used for both device scores
// and host-scan risk scores
type Level int

const (
	Low Level = iota
	Medium
	High
)

// Classification thresholds. Boundary values belong to the higher tier.
const (
	HighThreshold   = 7.0
	MediumThreshold = 4.0
)

// Classify maps a 0-10 score to its severity level
func Classify(score float64) Level {
	switch {
	case score >= HighThreshold:
		return High
	case score >= MediumThreshold:
		return Medium
	default:
		return Low
	}
}

// String returns the severity label
func (l Level) String() string {
	switch l {
	case High:
		return "HIGH"
	case Medium:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// RAG returns the Red-Amber-Green status label for the level
func (l Level) RAG() string {
	switch l {
	case High:
		return "RED"
	case Medium:
		return "AMBER"
	default:
		return "GREEN"
	}
}

// serviceRisk holds the exposure weight for a known service
type serviceRisk struct {
	ports  []int
	names  []string
	weight float64
}

// Exposure weights for services commonly found on port infrastructure.
// Industrial protocols and cleartext remote access rank highest.
var serviceRisks = []serviceRisk{
	{ports: []int{502}, names: []string{"modbus"}, weight: 0.95},
	{ports: []int{102}, names: []string{"s7", "siemens"}, weight: 0.95},
	{ports: []int{20000}, names: []string{"dnp3"}, weight: 0.9},
	{ports: []int{23}, names: []string{"telnet"}, weight: 0.9},
	{ports: []int{5900}, names: []string{"vnc"}, weight: 0.85},
	{ports: []int{3389}, names: []string{"rdp"}, weight: 0.8},
	{ports: []int{21}, names: []string{"ftp"}, weight: 0.7},
	{ports: []int{1883}, names: []string{"mqtt"}, weight: 0.7},
	{ports: []int{161}, names: []string{"snmp"}, weight: 0.6},
	{ports: []int{554}, names: []string{"rtsp"}, weight: 0.6},
	{ports: []int{80, 8080}, names: []string{"http"}, weight: 0.5},
	{ports: []int{22}, names: []string{"ssh"}, weight: 0.3},
	{ports: []int{443, 8443}, names: []string{"https"}, weight: 0.2},
}

const defaultServiceWeight = 0.4

// Severity scores for advisories seen on port infrastructure in past scans.
// Unlisted advisories get a conservative mid-range severity.
var knownSeverities = map[string]float64{
	"CVE-2017-7921":  9.8, // Hikvision camera authentication bypass
	"CVE-2021-36260": 9.8, // Hikvision web server command injection
	"CVE-2019-3924":  7.5, // MikroTik directory traversal
	"CVE-2018-14847": 9.1, // MikroTik WinBox authentication bypass
	"CVE-2015-5374":  7.8, // Siemens SIPROTEC denial of service
	"CVE-2020-15782": 8.1, // Siemens S7 memory protection bypass
}

const defaultSeverity = 5.0

// ServiceWeight returns the exposure weight in [0,1] for a service banner
func ServiceWeight(banner shodan.ServiceBanner) float64 {
	name := banner.ServiceName()
	for _, risk := range serviceRisks {
		for _, port := range risk.ports {
			if banner.Port == port {
				return risk.weight
			}
		}
		for _, known := range risk.names {
			if name == known {
				return risk.weight
			}
		}
	}
	return defaultServiceWeight
}

// AnalyzeHost derives a structured risk report from one raw scan record.
// Missing or malformed fields degrade to empty values; the function never
// fails on structurally incomplete input.
func AnalyzeHost(host shodan.HostReport) models.RiskReport {
	report := models.RiskReport{
		Vulnerabilities: []models.VulnerabilityFinding{},
		OpenServices:    []models.OpenServiceEntry{},
	}

	var maxRisk, riskSum float64
	for _, banner := range host.Services {
		weight := ServiceWeight(banner)
		report.OpenServices = append(report.OpenServices, models.OpenServiceEntry{
			Port:    banner.Port,
			Service: banner.ServiceName(),
			Product: banner.Product,
			Version: banner.Version,
			Risk:    weight,
		})

		riskSum += weight
		if weight > maxRisk {
			maxRisk = weight
		}
	}

	for _, cve := range host.Vulns {
		severity, ok := knownSeverities[cve]
		if !ok {
			severity = defaultSeverity
		}
		report.Vulnerabilities = append(report.Vulnerabilities, models.VulnerabilityFinding{
			ID:          cve,
			Severity:    severity,
			Description: "Known vulnerability affecting an exposed service",
		})
	}

	var meanRisk float64
	if len(report.OpenServices) > 0 {
		meanRisk = riskSum / float64(len(report.OpenServices))
	}

	score := maxRisk*6 + meanRisk*2 + 0.8*float64(len(report.Vulnerabilities))
	report.RiskScore = Round1(math.Min(10, score))
	report.RiskLevel = Classify(report.RiskScore).String()

	return report
}

// DeviceFromHost converts a scanned host and its risk report into a device
// entry for the port twin
func DeviceFromHost(host shodan.HostReport, report models.RiskReport) models.Device {
	ip := host.IP
	if ip == "" {
		ip = "Unknown"
	}

	city, country := host.City, host.Country
	if city == "" {
		city = "Unknown"
	}
	if country == "" {
		country = "Unknown"
	}

	return models.Device{
		Name:        "Port System " + ip,
		DeviceType:  "ICS/SCADA",
		VulnScore:   report.RiskScore,
		CVEs:        host.Vulns,
		Location:    &[2]float64{0.5, 0.5},
		Description: "Port system in " + city + ", " + country,
	}
}

// Round1 rounds to one decimal place
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

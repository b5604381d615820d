package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maritime-sec/port-twin/pkg/shodan"
)

func TestClassifyThresholds(t *testing.T) {
	tests := []struct {
		score float64
		want  Level
	}{
		{0, Low},
		{3.9, Low},
		{4.0, Medium}, // boundary belongs to the higher tier
		{5.5, Medium},
		{6.9, Medium},
		{7.0, High}, // boundary belongs to the higher tier
		{9.8, High},
		{10, High},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.score), "score %v", tt.score)
	}
}

func TestLevelLabels(t *testing.T) {
	assert.Equal(t, "LOW", Low.String())
	assert.Equal(t, "MEDIUM", Medium.String())
	assert.Equal(t, "HIGH", High.String())

	assert.Equal(t, "GREEN", Low.RAG())
	assert.Equal(t, "AMBER", Medium.RAG())
	assert.Equal(t, "RED", High.RAG())
}

func TestAnalyzeHostEmptyRecord(t *testing.T) {
	report := AnalyzeHost(shodan.HostReport{})

	assert.Equal(t, 0.0, report.RiskScore)
	assert.Equal(t, "LOW", report.RiskLevel)
	assert.Empty(t, report.Vulnerabilities)
	assert.Empty(t, report.OpenServices)
}

func TestAnalyzeHostIndustrialExposure(t *testing.T) {
	host := shodan.HostReport{
		IP:      "203.0.113.10",
		City:    "Rotterdam",
		Country: "Netherlands",
		Vulns:   []string{"CVE-2020-15782", "CVE-2999-0001"},
		Services: []shodan.ServiceBanner{
			{Port: 502, Product: "Modbus/TCP"},
			{Port: 23, Product: "BusyBox telnetd", Version: "1.21"},
			{Port: 443},
		},
	}

	report := AnalyzeHost(host)

	require.Len(t, report.OpenServices, 3)
	assert.Equal(t, 0.95, report.OpenServices[0].Risk)
	assert.Equal(t, 0.9, report.OpenServices[1].Risk)
	assert.Equal(t, 0.2, report.OpenServices[2].Risk)

	require.Len(t, report.Vulnerabilities, 2)
	assert.Equal(t, 8.1, report.Vulnerabilities[0].Severity)
	assert.Equal(t, 5.0, report.Vulnerabilities[1].Severity, "unknown advisories get the default severity")

	assert.LessOrEqual(t, report.RiskScore, 10.0)
	assert.Equal(t, "HIGH", report.RiskLevel)
}

func TestAnalyzeHostScoreCappedAtTen(t *testing.T) {
	host := shodan.HostReport{
		Vulns: []string{"a", "b", "c", "d", "e", "f", "g", "h"},
		Services: []shodan.ServiceBanner{
			{Port: 502}, {Port: 102}, {Port: 23},
		},
	}

	report := AnalyzeHost(host)
	assert.Equal(t, 10.0, report.RiskScore)
}

func TestServiceWeightByName(t *testing.T) {
	banner := shodan.ServiceBanner{Port: 10502}
	banner.Shodan.Module = "modbus"
	assert.Equal(t, 0.95, ServiceWeight(banner), "service name matches even on a non-standard port")

	unknown := shodan.ServiceBanner{Port: 31337}
	assert.Equal(t, 0.4, ServiceWeight(unknown))
}

func TestDeviceFromHost(t *testing.T) {
	host := shodan.HostReport{
		IP:      "198.51.100.7",
		City:    "Singapore",
		Country: "Singapore",
		Vulns:   []string{"CVE-2017-7921"},
	}
	report := AnalyzeHost(host)

	device := DeviceFromHost(host, report)

	assert.Equal(t, "Port System 198.51.100.7", device.Name)
	assert.Equal(t, "ICS/SCADA", device.DeviceType)
	assert.Equal(t, report.RiskScore, device.VulnScore)
	assert.Equal(t, host.Vulns, device.CVEs)
	require.NotNil(t, device.Location)
	assert.Equal(t, [2]float64{0.5, 0.5}, *device.Location)
}

func TestDeviceFromHostMissingFields(t *testing.T) {
	device := DeviceFromHost(shodan.HostReport{}, AnalyzeHost(shodan.HostReport{}))

	assert.Equal(t, "Port System Unknown", device.Name)
	assert.Equal(t, "Port system in Unknown, Unknown", device.Description)
	assert.Equal(t, 0.0, device.VulnScore)
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 5.9, Round1(5.866666))
	assert.Equal(t, 6.7, Round1(6.666666))
	assert.Equal(t, 2.0, Round1(1.95))
}

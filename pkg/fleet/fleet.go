// Package fleet provides the simulated maritime device inventory used by the
// demo mode, the dashboard's initial state and the test suite.
package fleet

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/maritime-sec/port-twin/pkg/models"
)

// DemoDevices returns a deterministic fleet of port IoT devices spanning all
// three severity tiers
func DemoDevices() []models.Device {
	return []models.Device{
		{
			Name:        "Harbor CCTV Gateway",
			DeviceType:  "CCTV",
			VulnScore:   9.1,
			CVEs:        []string{"CVE-2017-7921", "CVE-2021-36260"},
			Location:    &[2]float64{0.62, 0.41},
			Description: "Camera aggregation gateway covering berths 3 through 7",
		},
		{
			Name:        "STS Crane Controller 1",
			DeviceType:  "ICS/SCADA",
			VulnScore:   8.4,
			CVEs:        []string{"CVE-2020-15782"},
			Location:    &[2]float64{0.35, 0.58},
			Description: "Ship-to-shore crane PLC at berth 4",
		},
		{
			Name:        "AIS Shore Receiver",
			DeviceType:  "Navigation",
			VulnScore:   5.6,
			CVEs:        []string{},
			Location:    &[2]float64{0.18, 0.22},
			Description: "Vessel traffic receiver for the harbor approach",
		},
		{
			Name:        "Reefer Telemetry Unit 12",
			DeviceType:  "IoT Sensor",
			VulnScore:   4.7,
			CVEs:        []string{"CVE-2019-3924"},
			Location:    &[2]float64{0.74, 0.66},
			Description: "Refrigerated container monitoring unit in yard block C",
		},
		{
			Name:        "Berth Access Controller",
			DeviceType:  "Access Control",
			VulnScore:   3.2,
			CVEs:        []string{},
			Location:    &[2]float64{0.48, 0.31},
			Description: "Badge reader controller at the terminal gate",
		},
		{
			Name:        "Tide Monitoring Buoy",
			DeviceType:  "Environmental Sensor",
			VulnScore:   2.1,
			CVEs:        []string{},
			Location:    &[2]float64{0.08, 0.79},
			Description: "Water level and current sensor at the outer breakwater",
		},
	}
}

// LoadDevices reads a device inventory from a JSON array file. Missing scores
// and CVE lists decode to their documented defaults (0 and empty).
func LoadDevices(path string) ([]models.Device, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading device inventory: %w", err)
	}

	var devices []models.Device
	if err := json.Unmarshal(data, &devices); err != nil {
		return nil, fmt.Errorf("decoding device inventory %s: %w", path, err)
	}

	return devices, nil
}

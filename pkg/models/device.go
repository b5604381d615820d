package models

// Device represents a networked asset in the port's digital twin
type Device struct {
	Name        string      `json:"name"`                  // Display name of the device
	DeviceType  string      `json:"device_type"`           // Category (e.g., "ICS/SCADA", "CCTV")
	VulnScore   float64     `json:"vuln_score"`            // Vulnerability score on a 0-10 scale, 0 when unknown
	CVEs        []string    `json:"cves,omitempty"`        // Known advisories affecting the device
	Location    *[2]float64 `json:"location,omitempty"`    // Normalized map position in [0,1]x[0,1], display only
	Description string      `json:"description,omitempty"` // Free-form description
}

// DisplayName returns the device name or a default label when unset
func (d Device) DisplayName() string {
	if d.Name == "" {
		return "Unknown Device"
	}
	return d.Name
}

// TypeLabel returns the device type or a default label when unset
func (d Device) TypeLabel() string {
	if d.DeviceType == "" {
		return "Unknown"
	}
	return d.DeviceType
}

// CVEList returns the device's advisories, never nil
func (d Device) CVEList() []string {
	if len(d.CVEs) == 0 {
		return []string{"None"}
	}
	return d.CVEs
}

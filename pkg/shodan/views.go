package shodan

import (
	"sort"
	"strconv"
)

// HostVulnerability is one vulnerability marker carried through from a host
// record. Fields absent from the record stay empty.
type HostVulnerability struct {
	IP          string `json:"ip"`
	Port        string `json:"port,omitempty"`
	Service     string `json:"service,omitempty"`
	CVE         string `json:"cve,omitempty"`
	Description string `json:"description,omitempty"`
}

// Summary aggregates basic statistics over a parsed document
type Summary struct {
	TotalHosts    int      `json:"total_hosts"`
	UniqueIPs     int      `json:"unique_ips"`
	Countries     []string `json:"countries"`
	Organizations []string `json:"organizations"`
}

// ExtractPortServices maps every numeric port in the document to the unique
// service names observed on it. Hosts with a non-numeric or missing port are
// skipped silently.
func ExtractPortServices(doc *ParsedDocument) map[int][]string {
	portServices := make(map[int][]string)

	for _, host := range doc.Hosts {
		port, service := host["Port"], host["Service"]
		if port == "" || service == "" {
			continue
		}

		portNum, err := strconv.Atoi(port)
		if err != nil {
			continue
		}

		if !contains(portServices[portNum], service) {
			portServices[portNum] = append(portServices[portNum], service)
		}
	}

	return portServices
}

// ExtractVulnerabilities emits one record for every host carrying a CVE or
// Vulnerability marker
func ExtractVulnerabilities(doc *ParsedDocument) []HostVulnerability {
	var vulns []HostVulnerability

	for _, host := range doc.Hosts {
		_, hasCVE := host["CVE"]
		_, hasVuln := host["Vulnerability"]
		if !hasCVE && !hasVuln {
			continue
		}

		ip := host["IP"]
		if ip == "" {
			ip = "Unknown"
		}

		vulns = append(vulns, HostVulnerability{
			IP:          ip,
			Port:        host["Port"],
			Service:     host["Service"],
			CVE:         host["CVE"],
			Description: host["Vulnerability"],
		})
	}

	return vulns
}

// Summarize computes host counts and the distinct countries and organizations
// seen in a parsed document. The distinct sets are sorted for stable output.
func Summarize(doc *ParsedDocument) Summary {
	ips := make(map[string]struct{})
	countries := make(map[string]struct{})
	orgs := make(map[string]struct{})

	for _, host := range doc.Hosts {
		if ip, ok := host["IP"]; ok {
			ips[ip] = struct{}{}
		}
		if country, ok := host["Country"]; ok {
			countries[country] = struct{}{}
		}
		if org, ok := host["Organization"]; ok {
			orgs[org] = struct{}{}
		}
	}

	return Summary{
		TotalHosts:    len(doc.Hosts),
		UniqueIPs:     len(ips),
		Countries:     sortedKeys(countries),
		Organizations: sortedKeys(orgs),
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

package attack

import (
	"context"
	"fmt"
	"strings"

	"github.com/maritime-sec/port-twin/pkg/config"
	"github.com/maritime-sec/port-twin/pkg/models"
)

// GenerationMode identifies which narrative generator handles a request
type GenerationMode int

const (
	ModeRule GenerationMode = iota
	ModeSimulated
	ModeRemote
)

// String returns the mode label used in logs and metrics
func (m GenerationMode) String() string {
	switch m {
	case ModeRemote:
		return "remote"
	case ModeSimulated:
		return "simulated"
	default:
		return "rule-based"
	}
}

// ResolveMode picks the generator for a request. Remote generation needs an
// explicit AI request, a configured capability and a real credential; a
// simulation-flagged credential selects the deterministic simulated
// generator; everything else uses the rule-based one.
func ResolveMode(cfg config.GenerationConfig, useAI bool) GenerationMode {
	if !useAI {
		return ModeRule
	}
	if cfg.Simulated() {
		return ModeSimulated
	}
	if cfg.Available && cfg.APIKey != "" {
		return ModeRemote
	}
	return ModeRule
}

// NoDevicesMessage is returned by every generator on an empty device set
const NoDevicesMessage = "No devices available for attack vector analysis."

// Per-target purpose and method for simulated lateral movement, indexed by
// position in the ranked target list.
var lateralPlays = []struct {
	purpose string
	method  string
}{
	{
		purpose: "Expand control over cargo handling systems",
		method:  "Credential reuse across shared maintenance interfaces",
	},
	{
		purpose: "Intercept vessel traffic and berth telemetry",
		method:  "Exploitation of unpatched network services",
	},
	{
		purpose: "Stage disruption of physical port operations",
		method:  "Abuse of unauthenticated industrial protocols",
	},
}

// RuleBasedNarrative produces a condensed attack narrative without any
// external generation capability
func RuleBasedNarrative(devices []models.Device) string {
	selection, ok := SelectPath(devices)
	if !ok {
		return NoDevicesMessage
	}

	entry := selection.EntryPoint
	var b strings.Builder

	b.WriteString("## Potential Attack Vector (Rule-based Analysis)\n\n")
	b.WriteString("### Initial Entry Point\n")
	fmt.Fprintf(&b, "- **%s** (%s)\n", entry.DisplayName(), entry.TypeLabel())
	fmt.Fprintf(&b, "- Vulnerability Score: %g\n", entry.VulnScore)
	fmt.Fprintf(&b, "- CVEs: %s\n\n", strings.Join(entry.CVEList(), ", "))

	b.WriteString("### Attack Progression\n")
	fmt.Fprintf(&b, "1. Attacker exploits vulnerabilities in %s\n", entry.DisplayName())
	b.WriteString("2. Gains initial foothold in the port network\n")

	if len(selection.LateralTargets) > 0 {
		b.WriteString("\n### Lateral Movement Targets\n")
		for i, target := range selection.LateralTargets {
			fmt.Fprintf(&b, "%d. **%s** - Vulnerability Score: %g\n", i+1, target.DisplayName(), target.VulnScore)
		}
	}

	b.WriteString("\n### Recommended Mitigations\n")
	b.WriteString("1. Patch all systems with known vulnerabilities\n")
	b.WriteString("2. Implement network segmentation\n")
	b.WriteString("3. Deploy intrusion detection systems\n")
	b.WriteString("4. Regular security assessments\n")

	return b.String()
}

// SimulatedNarrative produces a deterministic narrative with the same
// sections a remote model is asked for. It never fails; an empty set yields
// the no-devices message.
func SimulatedNarrative(devices []models.Device) string {
	selection, ok := SelectPath(devices)
	if !ok {
		return NoDevicesMessage
	}

	entry := selection.EntryPoint
	var b strings.Builder

	b.WriteString("## Attack Scenario (Simulated Analysis)\n\n")
	b.WriteString("### Initial Entry Point\n")
	fmt.Fprintf(&b, "- **%s** (%s)\n", entry.DisplayName(), entry.TypeLabel())
	fmt.Fprintf(&b, "- Vulnerability Score: %g\n", entry.VulnScore)
	fmt.Fprintf(&b, "- CVEs: %s\n\n", strings.Join(entry.CVEList(), ", "))

	b.WriteString("### Attack Progression\n")
	fmt.Fprintf(&b, "1. **Initial Access**: Exploitation of %s via its known weaknesses to obtain a foothold\n", entry.DisplayName())
	b.WriteString("2. **Privilege Escalation**: Abuse of weak service accounts on the compromised device to gain administrative control\n")
	b.WriteString("3. **Persistence**: Installation of a modified firmware image or scheduled task surviving device restarts\n")
	b.WriteString("4. **Defense Evasion**: Suppression of device logs and blending of command traffic with routine telemetry\n")
	b.WriteString("5. **Credential Access**: Harvesting of operator and maintenance credentials cached on the device\n")

	if len(selection.LateralTargets) > 0 {
		b.WriteString("\n### Lateral Movement\n")
		for i, target := range selection.LateralTargets {
			play := lateralPlays[i%len(lateralPlays)]
			fmt.Fprintf(&b, "%d. **%s** (%s) - Vulnerability Score: %g\n", i+1, target.DisplayName(), target.TypeLabel(), target.VulnScore)
			fmt.Fprintf(&b, "   - Purpose: %s\n", play.purpose)
			fmt.Fprintf(&b, "   - Method: %s\n", play.method)
		}
	}

	b.WriteString("\n### Impact Assessment\n")
	b.WriteString("- **Operational**: Suspension of container handling and vessel berthing schedules\n")
	b.WriteString("- **Safety**: Loss of supervisory control over cranes and gate systems endangering personnel\n")
	b.WriteString("- **Financial**: Demurrage claims and contractual penalties accruing for every hour of downtime\n")
	b.WriteString("- **Environmental**: Misdirected handling of hazardous cargo and ballast operations\n")
	b.WriteString("- **Reputational**: Erosion of carrier and regulator confidence in the port's security posture\n")

	b.WriteString("\n### Recommended Mitigations\n")
	b.WriteString("**Immediate**\n")
	b.WriteString("- Isolate the entry point device and apply outstanding security patches\n")
	b.WriteString("- Rotate all credentials reachable from the compromised segment\n")
	b.WriteString("**Medium-term**\n")
	b.WriteString("- Segment industrial control networks away from business systems\n")
	b.WriteString("- Deploy intrusion detection with industrial protocol awareness\n")
	b.WriteString("**Long-term**\n")
	b.WriteString("- Establish a recurring vulnerability assessment program for all port assets\n")
	b.WriteString("- Build an incident response plan rehearsed with terminal operators\n")

	return b.String()
}

// GenerateNarrative resolves the generation mode and returns the narrative
// text. The remote generator is supplied by the caller so that configuration
// and transport stay explicit; a nil one degrades to the simulated generator.
func GenerateNarrative(ctx context.Context, devices []models.Device, cfg config.GenerationConfig, useAI bool, remote NarrativeGenerator) string {
	switch ResolveMode(cfg, useAI) {
	case ModeRemote:
		if remote != nil {
			return remote.Generate(ctx, devices)
		}
		return SimulatedNarrative(devices)
	case ModeSimulated:
		return SimulatedNarrative(devices)
	default:
		return RuleBasedNarrative(devices)
	}
}

package attack

import (
	"sort"

	"github.com/maritime-sec/port-twin/pkg/models"
)

// Lateral movement target selection: only devices at or above the MEDIUM
// threshold are plausible hops, and the narrative keeps at most three.
const (
	LateralThreshold  = 4.0
	MaxLateralTargets = 3
)

// PathSelection is a ranked intrusion path through the device set
type PathSelection struct {
	EntryPoint     models.Device   // Most vulnerable device, assumed initial compromise point
	LateralTargets []models.Device // Plausible onward hops, most vulnerable first
}

// RankDevices returns a new slice sorted by vulnerability score descending.
// The sort is stable: devices with equal scores keep their input order. The
// caller's slice is never reordered.
func RankDevices(devices []models.Device) []models.Device {
	ranked := make([]models.Device, len(devices))
	copy(ranked, devices)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].VulnScore > ranked[j].VulnScore
	})

	return ranked
}

// SelectPath picks the entry point and lateral movement targets from a device
// set. It returns false on an empty set so callers can short-circuit before
// any generation step.
func SelectPath(devices []models.Device) (PathSelection, bool) {
	if len(devices) == 0 {
		return PathSelection{}, false
	}

	ranked := RankDevices(devices)
	selection := PathSelection{EntryPoint: ranked[0]}

	for _, device := range ranked[1:] {
		if len(selection.LateralTargets) == MaxLateralTargets {
			break
		}
		if device.VulnScore >= LateralThreshold {
			selection.LateralTargets = append(selection.LateralTargets, device)
		}
	}

	return selection, true
}

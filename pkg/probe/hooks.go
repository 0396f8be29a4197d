// Package probe names the external entry points component F is
// specified to provide (Cortex-M/Cortex-A core register access), and
// carries the per-AP probe hook extension point the DP manager runs
// against every newly enumerated AP before CoreSight discovery.
package probe

import (
	"adiv5probe/pkg/adiv5"
	"adiv5probe/pkg/target"
)

// CortexMProbe is the entry point into the Cortex-M-class core driver
// family. forced distinguishes the ordinary CoreSight dispatch path
// from the forced fallback (§4.E) attempted when discovery found
// nothing on a DP whose IDCODE suggests a Cortex-M part. Returns the
// Target it built and true if it recognized and claimed the AP; the
// EFM32 flash driver (pkg/efm32.Probe) is this core's only in-scope
// implementation, but the signature is general enough for an
// out-of-scope core-register driver to plug in alongside it.
type CortexMProbe func(ap *adiv5.AP, forced bool) (*target.Target, bool)

// CortexAProbe is the entry point into the (external, out-of-scope)
// Cortex-A core driver.
type CortexAProbe func(ap *adiv5.AP, base uint32) (*target.Target, bool)

// APHook runs against every newly enumerated AP before component-tree
// discovery, the extension point the original implementation uses for
// vendor lock-bypass debug interfaces (Kinetis MDM-AP, nRF51 MDM-AP,
// and this core's own EFM32 AAP — see pkg/efm32.AAPHook). It returns
// the stub Target it built and true if it recognized and claimed the AP.
type APHook func(ap *adiv5.AP) (*target.Target, bool)

// Hooks bundles the probe-dispatch surface the discovery session needs.
type Hooks struct {
	CortexM CortexMProbe
	CortexA CortexAProbe

	// APHooks run in order against every valid AP, after NewAP succeeds
	// and before CoreSight component discovery walks it.
	APHooks []APHook
}

// RunAPHooks returns every Target a hook claimed the AP with.
func (h Hooks) RunAPHooks(ap *adiv5.AP) []*target.Target {
	var claimed []*target.Target
	for _, hook := range h.APHooks {
		if hook == nil {
			continue
		}
		if t, ok := hook(ap); ok {
			claimed = append(claimed, t)
		}
	}
	return claimed
}

// KinetisMDMHook and NRF51MDMHook are named extension slots for the two
// vendor lock-bypass probes the original implementation runs alongside
// the EFM32 AAP. Neither family's driver is in scope for this core (no
// MSC-equivalent register layout is specified for Kinetis or nRF51); the
// slots exist so a later driver can register without reshaping the AP
// enumeration loop, matching how the EFM32 AAP hook plugs in.
var (
	KinetisMDMHook APHook
	NRF51MDMHook   APHook
)

// Package target holds the data model a core probe attaches to a
// discovered device: flash/RAM regions and a family-specific command
// table. Component I.
package target

import "adiv5probe/pkg/adiv5"

// Option flags a probe can set on a Target.
type Option int

const (
	// OptInhibitSRST prevents the session from asserting the target's
	// system reset line, used by the EFM32 probe (§4.G) since an SRST
	// during flash operations can leave the MSC in an inconsistent
	// state.
	OptInhibitSRST Option = 1 << iota
)

// FlashRegion describes one erasable/writable flash aperture (§3).
type FlashRegion struct {
	Start      uint32
	Length     uint32
	BlockSize  uint32
	BufferSize uint32

	Erase func(region *FlashRegion, addr, length uint32) error
	Write func(region *FlashRegion, dest uint32, data []byte) error

	Parent *Target
}

// RAMRegion describes a RAM aperture attached to a target.
type RAMRegion struct {
	Start  uint32
	Length uint32
}

// Command is one entry of a target's family-specific command table
// (§4.G step 5, §6 CLI surface).
type Command struct {
	Name string
	Run  func(t *Target, args []string) error
}

// Target is created lazily by a matched core probe. The driver tag is
// kept for display only; family-specific state (device index, DI
// version, MSC base, ...) is owned by the probe's own context type
// (e.g. efm32.Context) attached via Context, not parsed back out of the
// tag (§9 re-architecture note).
type Target struct {
	AP *adiv5.AP

	DriverTag string
	Options   Option

	Flash    []*FlashRegion
	RAM      []*RAMRegion
	Commands []Command

	// Context holds the probe-specific per-target state (e.g. an
	// *efm32.Context). Command handlers type-assert this rather than
	// decoding bytes out of DriverTag.
	Context any
}

// New creates an empty target attached to ap.
func New(ap *adiv5.AP, driverTag string) *Target {
	return &Target{AP: ap, DriverTag: driverTag}
}

// HasOption reports whether opt is set.
func (t *Target) HasOption(opt Option) bool { return t.Options&opt != 0 }

// AddFlash attaches a flash region, wiring its Parent back to t.
func (t *Target) AddFlash(r *FlashRegion) {
	r.Parent = t
	t.Flash = append(t.Flash, r)
}

// AddRAM attaches a RAM region.
func (t *Target) AddRAM(r *RAMRegion) {
	t.RAM = append(t.RAM, r)
}

// RegisterCommands appends to the target's command table.
func (t *Target) RegisterCommands(cmds ...Command) {
	t.Commands = append(t.Commands, cmds...)
}

// Command looks up a registered command by name.
func (t *Target) Command(name string) (Command, bool) {
	for _, c := range t.Commands {
		if c.Name == name {
			return c, true
		}
	}
	return Command{}, false
}

// CheckError implements target_check_error (§5): after a blocking poll,
// callers consult the owning AP's DP fault state to decide whether to
// abort the in-flight operation.
func (t *Target) CheckError() error {
	if t.AP.DP().Faulted() {
		return adiv5.ErrDPFault
	}
	return nil
}

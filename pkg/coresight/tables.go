// Package coresight implements the CoreSight discovery engine: recursive
// ROM-table traversal, CIDR/PIDR/DEVARCH/DEVTYPE decoding, and
// part-number lookup with per-architecture probe dispatch. Component E.
package coresight

// Arch is the refined architecture family a discovered component
// dispatches to.
type Arch int

const (
	ArchNoSupport Arch = iota
	ArchCortexM
	ArchCortexA
	ArchV8
)

// CIDClass is the CoreSight Component ID class field (bits [15:12] of
// CIDR).
type CIDClass int

const (
	CIDClassUnknown  CIDClass = -1
	CIDClassGenVerif CIDClass = 0x0
	CIDClassROMTable CIDClass = 0x1
	CIDClassDebug    CIDClass = 0x9
	CIDClassPeriphTB CIDClass = 0xB
	CIDClassGenIPC   CIDClass = 0xE
)

// partEntry is one row of the part-number lookup table (§3).
type partEntry struct {
	partNumber   uint16
	arch         Arch
	expectedCIDC CIDClass
	label        string
}

// partTable is grounded on the original implementation's pidr_pn_bits[]
// table: the entries this core actually dispatches on (Cortex-M/A cores)
// plus a representative set of generic CoreSight infrastructure
// components classified NoSupport, which discovery must still
// acknowledge (return true) without attaching a driver.
var partTable = []partEntry{
	{0x000, ArchCortexM, CIDClassGenIPC, "Cortex-M3 SCS"},
	{0x001, ArchNoSupport, CIDClassUnknown, "Cortex-M3 ITM"},
	{0x002, ArchNoSupport, CIDClassUnknown, "Cortex-M3 DWT"},
	{0x003, ArchNoSupport, CIDClassUnknown, "Cortex-M3 FPB"},
	{0x008, ArchCortexM, CIDClassGenIPC, "Cortex-M0 SCS"},
	{0x00a, ArchNoSupport, CIDClassUnknown, "Cortex-M0 DWT"},
	{0x00b, ArchNoSupport, CIDClassUnknown, "Cortex-M0 BPU"},
	{0x00c, ArchCortexM, CIDClassGenIPC, "Cortex-M4 SCS"},
	{0x00e, ArchNoSupport, CIDClassUnknown, "Cortex-M7 FBP"},
	{0x101, ArchNoSupport, CIDClassUnknown, "System TSGEN"},
	{0x490, ArchNoSupport, CIDClassUnknown, "Cortex-A15 GIC"},
	{0x4c7, ArchNoSupport, CIDClassUnknown, "Cortex-M7 PPB"},
	{0x906, ArchNoSupport, CIDClassUnknown, "CoreSight CTI"},
	{0x907, ArchNoSupport, CIDClassUnknown, "CoreSight ETB"},
	{0x912, ArchNoSupport, CIDClassUnknown, "CoreSight TPIU"},
	{0x913, ArchNoSupport, CIDClassUnknown, "CoreSight ITM"},
	{0xc05, ArchCortexA, CIDClassDebug, "Cortex-A5 Debug"},
	{0xc07, ArchCortexA, CIDClassDebug, "Cortex-A7 Debug"},
	{0xc08, ArchCortexA, CIDClassDebug, "Cortex-A8 Debug"},
	{0xc09, ArchCortexA, CIDClassDebug, "Cortex-A9 Debug"},
	{0xd21, ArchV8, CIDClassUnknown, "Cortex-M33"},
}

// devarchEntry is one row of the DEVARCH archid lookup table.
type devarchEntry struct {
	archID uint16
	arch   Arch
}

// devarchTable is grounded on devarch_archid_bits[]: archid values
// distinguishing ARMv7-M/ARMv8-M SCS instances and ARMv8.0-8.2-A SCS
// instances from the many non-core infrastructure archids that share
// the same register aperture shape.
var devarchTable = []devarchEntry{
	{0x0a00, ArchNoSupport}, // RAS
	{0x0a01, ArchNoSupport}, // ITM
	{0x0a02, ArchNoSupport}, // DWT
	{0x0a03, ArchNoSupport}, // FPB
	{0x0a04, ArchCortexM},   // SCS (ARMv7-M)
	{0x0a17, ArchNoSupport}, // MAP
	{0x1a14, ArchNoSupport}, // CTI
	{0x2a04, ArchCortexM},   // SCS (ARMv8-M)
	{0x2a16, ArchNoSupport}, // PMU
	{0x4a13, ArchNoSupport}, // ETM
	{0x6a05, ArchNoSupport}, // SCS (ARMv8-R)
	{0x6a15, ArchCortexA},   // SCS (v8.0-A)
	{0x7a15, ArchCortexA},   // SCS (v8.1-A)
	{0x8a15, ArchCortexA},   // SCS (v8.2-A)
}

// devtypeEntry is one row of the DEVTYPE id lookup table, used only when
// DEVARCH is absent. The original implementation maps every DEVTYPE-only
// identified component to NoSupport; this core carries the table for
// completeness of the probe_armv8 fallback path, not because a core
// driver dispatches on it today.
type devtypeEntry struct {
	id   uint8
	arch Arch
}

var devtypeTable = []devtypeEntry{
	{0x00, ArchNoSupport},
	{0x04, ArchNoSupport},
	{0x10, ArchNoSupport},
	{0x11, ArchNoSupport},
	{0x21, ArchNoSupport},
	{0x30, ArchNoSupport},
}

func lookupPart(partNumber uint16) (partEntry, bool) {
	for _, e := range partTable {
		if e.partNumber == partNumber {
			return e, true
		}
	}
	return partEntry{}, false
}

func lookupDevarch(archID uint16) (Arch, bool) {
	for _, e := range devarchTable {
		if e.archID == archID {
			return e.arch, true
		}
	}
	return ArchNoSupport, false
}

func lookupDevtype(id uint8) (Arch, bool) {
	for _, e := range devtypeTable {
		if e.id == id {
			return e.arch, true
		}
	}
	return ArchNoSupport, false
}

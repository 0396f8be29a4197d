package efm32

import (
	"time"

	"adiv5probe/pkg/adiv5"
	"adiv5probe/pkg/target"
)

// AAP (Authentication Access Port) register addresses and IDR match
// (§4.H): the AAP appears as an extra AP on the SW-DP even when the
// main MEM-AP is locked, and exposes a single DEVICEERASE command that
// wipes flash, SRAM and the lock-bits page but leaves User Data and any
// bootloader region untouched.
const (
	aapIDR     = 0x06E60001
	aapIDRMask = 0x0FFFFF0F

	regAAPCmd    = 0x00
	regAAPCmdKey = 0x04
	regAAPStatus = 0x08

	aapStatusLocked    = 1 << 1
	aapStatusEraseBusy = 1 << 0

	aapCmdKey = 0xCFACC118
)

const aapErasePollInterval = time.Millisecond

// MatchAAP reports whether ap's IDR identifies it as an EFM32 AAP, and
// extracts the revision field (both revision 1 and 2 AAPs are seen in
// the field).
func MatchAAP(ap *adiv5.AP) (revision uint8, ok bool) {
	if ap.IDR&aapIDRMask != aapIDR {
		return 0, false
	}
	return uint8(ap.IDR >> 28), true
}

// AAPHook is a probe.APHook: it matches the EFM32 Authentication Access
// Port on any newly enumerated AP and, when matched, builds its stub
// target in place of ordinary CoreSight discovery (the AAP has no BASE
// register to walk).
func AAPHook(ap *adiv5.AP) (*target.Target, bool) {
	revision, ok := MatchAAP(ap)
	if !ok {
		return nil, false
	}
	return NewAAPTarget(ap, revision), true
}

// NewAAPTarget implements efm32_aap_probe (§4.H): builds a stub target
// whose only real operation is the erase_mass command. Every other
// target lifecycle hook is a no-op since the AAP has no general memory
// access, matching the original's nop_function wiring.
func NewAAPTarget(ap *adiv5.AP, revision uint8) *target.Target {
	t := target.New(ap, "EFM32 Authentication Access Port")
	t.RegisterCommands(target.Command{
		Name: "erase_mass",
		Run: func(t *target.Target, args []string) error {
			return DeviceErase(t.AP)
		},
	})
	return t
}

// DeviceErase implements efm32_aap_cmd_device_erase (§4.H): refuses to
// start while an erase is already in progress, otherwise issues
// CMDKEY+CMD and blocks until STATUS.ERASEBUSY clears. The poll is
// intentionally unbounded, as in the original — a device mid-erase can
// take an unpredictable amount of time and there is no partial-erase
// state to recover to.
func DeviceErase(ap *adiv5.AP) error {
	status, err := ap.Read(regAAPStatus)
	if err != nil {
		return err
	}
	if status&aapStatusEraseBusy != 0 {
		return ErrEraseBusy
	}

	if err := ap.Write(regAAPCmdKey, aapCmdKey); err != nil {
		return err
	}
	if err := ap.Write(regAAPCmd, 1); err != nil {
		return err
	}

	for {
		status, err := ap.Read(regAAPStatus)
		if err != nil {
			return err
		}
		if status&aapStatusEraseBusy == 0 {
			return nil
		}
		time.Sleep(aapErasePollInterval)
	}
}

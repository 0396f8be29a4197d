package adiv5

import "log/slog"

// AP register addresses (within the bank selected by SELECT).
const (
	RegCSW  = 0x00
	RegTAR  = 0x04
	RegDRW  = 0x0C
	RegCFG  = 0xF4
	RegBASE = 0xF8
	RegIDR  = 0xFC
)

// CSW bits cleared on store and rewritten per-transfer.
const (
	cswSizeMask    = 0x7
	cswAddrIncMask = 0x3 << 4
	cswTrInProg    = 1 << 7
)

// BASE register.
const (
	baseNoEntries = 0xFFFFFFFF
	basePresent   = 1 << 0
)

// AP models an ARM Access Port. It holds one strong reference to its
// owning DP; the DP never holds a strong reference back (§3, §9).
type AP struct {
	dp    *DP
	apsel uint8

	IDR  uint32
	Base uint32
	CFG  uint32
	CSW  uint32

	refcount int
	log      *slog.Logger
}

// NewAP implements ap_new (§4.C):
//  1. read IDR; zero means "absent", not an error.
//  2. read BASE, CFG, CSW, masking SIZE/ADDRINC out of CSW and clearing
//     (and logging) a set TRINPROG bit.
//  3. take a DP reference.
//
// A nil, false return means "absent"; any non-nil error is a transport
// fault that should abort enumeration.
func NewAP(dp *DP, apsel uint8) (*AP, bool, error) {
	idr, err := apRead(dp, apsel, RegIDR)
	if err != nil {
		return nil, false, err
	}
	if idr == 0 {
		return nil, false, nil
	}

	base, err := apRead(dp, apsel, RegBASE)
	if err != nil {
		return nil, false, err
	}
	cfg, err := apRead(dp, apsel, RegCFG)
	if err != nil {
		return nil, false, err
	}
	csw, err := apRead(dp, apsel, RegCSW)
	if err != nil {
		return nil, false, err
	}

	if csw&cswTrInProg != 0 {
		dp.log.Warn("AP reports TRINPROG set, clearing", slog.Int("apsel", int(apsel)))
		csw &^= cswTrInProg
	}
	csw &^= cswSizeMask | cswAddrIncMask

	ap := &AP{dp: dp, apsel: apsel, IDR: idr, Base: base, CFG: cfg, CSW: csw, log: dp.log}
	dp.Ref()
	ap.refcount = 1
	return ap, true, nil
}

// Ref increments the AP's reference count.
func (a *AP) Ref() { a.refcount++ }

// Unref decrements the AP's reference count. When it reaches zero the AP
// releases its DP reference; callers must not use the AP afterward.
func (a *AP) Unref() {
	a.refcount--
	if a.refcount <= 0 {
		a.dp.Unref()
	}
}

// DP returns the owning debug port.
func (a *AP) DP() *DP { return a.dp }

// APSel returns the AP's select index (0..255).
func (a *AP) APSel() uint8 { return a.apsel }

// BasePresent reports whether BASE names a usable ROM table entry point.
func (a *AP) BasePresent() bool {
	return a.Base != baseNoEntries && a.Base&basePresent != 0
}

// apRead and apWrite implement the AP access formula from §4.C: write
// SELECT = (apsel<<24) | (addr&0xF0), then perform a DP access at the
// low 4 bits of addr.
func apRead(dp *DP, apsel uint8, addr uint8) (uint32, error) {
	if err := selectAP(dp, apsel, addr); err != nil {
		return 0, err
	}
	return dp.read(addr & 0xF)
}

func apWrite(dp *DP, apsel uint8, addr uint8, value uint32) error {
	if err := selectAP(dp, apsel, addr); err != nil {
		return err
	}
	return dp.write(addr&0xF, value)
}

func selectAP(dp *DP, apsel uint8, addr uint8) error {
	sel := uint32(apsel)<<24 | uint32(addr&0xF0)
	return dp.write(regSELECT, sel)
}

// Read reads one AP register.
func (a *AP) Read(addr uint8) (uint32, error) { return apRead(a.dp, a.apsel, addr) }

// Write writes one AP register.
func (a *AP) Write(addr uint8, value uint32) error { return apWrite(a.dp, a.apsel, addr, value) }

// maxVoidAPs is the number of consecutive absent APs that stops
// enumeration (§4.E duplicate-BASE/void-AP termination rules).
const maxVoidAPs = 8

// EnumerateAPs performs AP enumeration for apsel 0..255 per §4.B step 5
// and §4.E: stop after 8 consecutive absent APs, stop immediately if
// apsel 0 is absent, and stop (without keeping the new AP) if BASE
// duplicates the immediately preceding AP's BASE.
func EnumerateAPs(dp *DP) []*AP {
	var aps []*AP
	voidCount := 0
	var lastBase uint32
	haveLastBase := false

	for apsel := 0; apsel <= 255; apsel++ {
		ap, present, err := NewAP(dp, uint8(apsel))
		if err != nil {
			dp.log.Error("AP enumeration transport error", slog.Int("apsel", apsel), slog.Any("err", err))
			break
		}
		if !present {
			if apsel == 0 {
				break
			}
			voidCount++
			if voidCount >= maxVoidAPs {
				break
			}
			continue
		}
		voidCount = 0

		if haveLastBase && ap.Base == lastBase {
			ap.Unref()
			break
		}
		lastBase = ap.Base
		haveLastBase = true

		aps = append(aps, ap)
	}

	return aps
}

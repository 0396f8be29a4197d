package adiv5

import (
	"log/slog"
	"testing"
)

// apRegAccess is a LowAccess backing a handful of APs, addressed through
// the real selectAP/apRead/apWrite encoding (SELECT = apsel<<24 | addr&0xF0).
type apRegAccess struct {
	selectReg uint32
	aps       map[uint8]map[uint8]uint32 // apsel -> (bank|addr&0xF) -> value
}

func newAPRegAccess() *apRegAccess {
	return &apRegAccess{aps: map[uint8]map[uint8]uint32{}}
}

func (a *apRegAccess) setAP(apsel uint8, idr, base, cfg, csw uint32) {
	a.aps[apsel] = map[uint8]uint32{
		RegIDR:  idr,
		RegBASE: base,
		RegCFG:  cfg,
		RegCSW:  csw,
	}
}

// Read never special-cases regSELECT: nothing in this package issues a
// bare read of the SELECT register (only AP reads preceded by a SELECT
// write), and RegBASE's low nibble (0xF8&0xF == 0x8) numerically
// collides with regSELECT, so a read-side shortcut would misroute it.
func (a *apRegAccess) Read(addr uint8) (uint32, error) {
	apsel := uint8(a.selectReg >> 24)
	bank := uint8(a.selectReg & 0xF0)
	return a.aps[apsel][bank|addr], nil
}

func (a *apRegAccess) Write(addr uint8, value uint32) error {
	if addr == regSELECT {
		a.selectReg = value
		return nil
	}
	apsel := uint8(a.selectReg >> 24)
	bank := uint8(a.selectReg & 0xF0)
	if a.aps[apsel] == nil {
		a.aps[apsel] = map[uint8]uint32{}
	}
	a.aps[apsel][bank|addr] = value
	return nil
}

func (a *apRegAccess) Abort(flags uint32) error { return nil }

func newTestDP(access LowAccess) *DP {
	return &DP{access: access, log: slog.Default()}
}

func TestNewAPAbsentWhenIDRZero(t *testing.T) {
	access := newAPRegAccess()
	access.setAP(0, 0, 0, 0, 0)
	dp := newTestDP(access)

	ap, present, err := NewAP(dp, 0)
	if err != nil {
		t.Fatalf("NewAP() error = %v", err)
	}
	if present || ap != nil {
		t.Errorf("NewAP() = (%v, %v), want (nil, false) for IDR=0", ap, present)
	}
}

func TestNewAPClearsTrInProgAndSizeBits(t *testing.T) {
	access := newAPRegAccess()
	access.setAP(0, 0x24770011, basePresent, 0, cswTrInProg|0x3|cswAddrIncMask)
	dp := newTestDP(access)

	ap, present, err := NewAP(dp, 0)
	if err != nil || !present {
		t.Fatalf("NewAP() = (%v, %v, %v), want a present AP", ap, present, err)
	}
	if ap.CSW&cswTrInProg != 0 {
		t.Error("NewAP() left TRINPROG set in cached CSW")
	}
	if ap.CSW&(cswSizeMask|cswAddrIncMask) != 0 {
		t.Error("NewAP() left SIZE/ADDRINC bits set in cached CSW")
	}
	if ap.refcount != 1 {
		t.Errorf("refcount = %d, want 1", ap.refcount)
	}
}

func TestBasePresent(t *testing.T) {
	tests := []struct {
		name string
		base uint32
		want bool
	}{
		{"no entries sentinel", baseNoEntries, false},
		{"present bit clear", 0x10000000, false},
		{"present bit set", 0x10000001, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ap := &AP{Base: tt.base}
			if got := ap.BasePresent(); got != tt.want {
				t.Errorf("BasePresent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnumerateAPsStopsOnVoidAP0(t *testing.T) {
	access := newAPRegAccess()
	// apsel 0 absent (IDR=0) -> enumeration must stop immediately.
	dp := newTestDP(access)

	aps := EnumerateAPs(dp)
	if len(aps) != 0 {
		t.Errorf("EnumerateAPs() returned %d APs, want 0 when AP0 is absent", len(aps))
	}
}

func TestEnumerateAPsStopsOnDuplicateBase(t *testing.T) {
	access := newAPRegAccess()
	access.setAP(0, 0x04770011, 0x10000001, 0, 0)
	access.setAP(1, 0x04770011, 0x10000001, 0, 0) // same BASE as AP0
	dp := newTestDP(access)

	aps := EnumerateAPs(dp)
	if len(aps) != 1 {
		t.Fatalf("EnumerateAPs() returned %d APs, want 1 (duplicate BASE stops enumeration)", len(aps))
	}
	if aps[0].APSel() != 0 {
		t.Errorf("first AP has APSel() = %d, want 0", aps[0].APSel())
	}
}

func TestEnumerateAPsCollectsDistinctBases(t *testing.T) {
	access := newAPRegAccess()
	access.setAP(0, 0x04770011, 0x10000001, 0, 0)
	access.setAP(1, 0x04770011, 0x20000001, 0, 0)
	dp := newTestDP(access)

	aps := EnumerateAPs(dp)
	if len(aps) != 2 {
		t.Fatalf("EnumerateAPs() returned %d APs, want 2", len(aps))
	}
}

package efm32

import (
	"errors"
	"testing"

	"adiv5probe/pkg/adiv5"
)

// aapAccess is a minimal LowAccess exposing the AAP's config registers
// (IDR/BASE/CFG, bank 0xF0) and its CMD/CMDKEY/STATUS registers (bank
// 0x00), addressed through the real bank|suboffset encoding like the
// other packages' mocks: every AP register access reaches this Read/
// Write with only its low nibble, the bank having been set by a prior
// SELECT write.
type aapAccess struct {
	selectReg uint32
	idr       uint32
	status    uint32
	cmd       uint32
	cmdKey    uint32
}

func newAAPAccess(idr uint32) *aapAccess { return &aapAccess{idr: idr} }

func (a *aapAccess) Read(addr uint8) (uint32, error) {
	bank := uint8(a.selectReg & 0xF0)
	switch bank | addr {
	case adiv5.RegIDR:
		return a.idr, nil
	case regAAPStatus:
		return a.status, nil
	}
	return 0, nil
}

func (a *aapAccess) Write(addr uint8, value uint32) error {
	if addr == dpSelectAddr {
		a.selectReg = value
		return nil
	}
	bank := uint8(a.selectReg & 0xF0)
	switch bank | addr {
	case regAAPCmd:
		a.cmd = value
	case regAAPCmdKey:
		a.cmdKey = value
	}
	return nil
}

func (a *aapAccess) Abort(flags uint32) error { return nil }

func buildAAP(t *testing.T, access *aapAccess) *adiv5.AP {
	t.Helper()
	dp := adiv5.New(access, nil)
	ap, present, err := adiv5.NewAP(dp, 0)
	if err != nil || !present {
		t.Fatalf("NewAP() = (%v, %v, %v), want a present AP", ap, present, err)
	}
	return ap
}

func TestMatchAAPAcceptsRevisionsOneAndTwo(t *testing.T) {
	tests := []struct {
		name     string
		idr      uint32
		wantRev  uint8
		wantOK   bool
	}{
		{"revision 1", 0x16E60001, 1, true},
		{"revision 2", 0x26E60001, 2, true},
		{"non-AAP IDR", 0x24770011, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			access := newAAPAccess(tt.idr)
			ap := buildAAP(t, access)
			rev, ok := MatchAAP(ap)
			if ok != tt.wantOK {
				t.Fatalf("MatchAAP() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && rev != tt.wantRev {
				t.Errorf("MatchAAP() revision = %d, want %d", rev, tt.wantRev)
			}
		})
	}
}

func TestDeviceEraseRefusesWhenAlreadyBusy(t *testing.T) {
	access := newAAPAccess(aapIDR)
	access.status = aapStatusEraseBusy
	ap := buildAAP(t, access)

	err := DeviceErase(ap)
	if !errors.Is(err, ErrEraseBusy) {
		t.Errorf("DeviceErase() error = %v, want ErrEraseBusy", err)
	}
	if access.cmdKey != 0 {
		t.Error("DeviceErase() wrote CMDKEY while an erase was already in progress")
	}
}

func TestDeviceEraseIssuesCommandAndWaitsForBusyClear(t *testing.T) {
	access := newAAPAccess(aapIDR)
	ap := buildAAP(t, access)

	if err := DeviceErase(ap); err != nil {
		t.Fatalf("DeviceErase() error = %v", err)
	}
	if access.cmdKey != aapCmdKey {
		t.Errorf("CMDKEY = 0x%X, want 0x%X", access.cmdKey, aapCmdKey)
	}
	if access.cmd != 1 {
		t.Errorf("CMD = %d, want 1", access.cmd)
	}
}

func TestAAPHookDispatchesOnMatchingIDR(t *testing.T) {
	access := newAAPAccess(aapIDR)
	ap := buildAAP(t, access)

	tgt, ok := AAPHook(ap)
	if !ok {
		t.Fatal("AAPHook() ok = false for a matching AAP IDR, want true")
	}
	if _, found := tgt.Command("erase_mass"); !found {
		t.Error("AAP target is missing its erase_mass command")
	}
}

func TestAAPHookRejectsNonAAPIDR(t *testing.T) {
	access := newAAPAccess(0x24770011)
	ap := buildAAP(t, access)

	if _, ok := AAPHook(ap); ok {
		t.Error("AAPHook() ok = true for a non-AAP IDR, want false")
	}
}

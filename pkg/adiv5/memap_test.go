package adiv5

import "testing"

func TestAlignOf(t *testing.T) {
	tests := []struct {
		name string
		x    uint32
		want Align
	}{
		{"word aligned", 0x1000, AlignWord},
		{"zero is word aligned", 0, AlignWord},
		{"halfword aligned", 0x1002, AlignHalfword},
		{"odd is byte aligned", 0x1001, AlignByte},
		{"odd plus two still byte aligned", 0x1003, AlignByte},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := alignOf(tt.x); got != tt.want {
				t.Errorf("alignOf(0x%X) = %v, want %v", tt.x, got, tt.want)
			}
		})
	}
}

func TestTransferAlign(t *testing.T) {
	tests := []struct {
		name   string
		addr   int
		length int
		want   Align
	}{
		{"both word aligned", 0x1000, 16, AlignWord},
		{"word addr, odd length", 0x1000, 3, AlignByte},
		{"halfword addr caps word length", 0x1002, 8, AlignHalfword},
		{"byte addr caps everything", 0x1001, 4, AlignByte},
		{"both byte", 0x1001, 1, AlignByte},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := transferAlign(uint32(tt.addr), uint32(tt.length)); got != tt.want {
				t.Errorf("transferAlign(0x%X, %d) = %v, want %v", tt.addr, tt.length, got, tt.want)
			}
		})
	}
}

func TestExtractWord(t *testing.T) {
	dst := make([]byte, 4)
	extract(dst, 0x2000, 0xAABBCCDD, AlignWord)
	want := []byte{0xDD, 0xCC, 0xBB, 0xAA}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("extract word byte %d = 0x%02X, want 0x%02X", i, dst[i], want[i])
		}
	}
}

func TestExtractHalfwordLane(t *testing.T) {
	dst := make([]byte, 2)
	// src addr 0x2002 selects the upper halfword lane.
	extract(dst, 0x2002, 0xAABBCCDD, AlignHalfword)
	if dst[0] != 0xBB || dst[1] != 0xAA {
		t.Errorf("extract upper lane: got [%02X %02X], want [BB AA]", dst[0], dst[1])
	}

	dst2 := make([]byte, 2)
	extract(dst2, 0x2000, 0xAABBCCDD, AlignHalfword)
	if dst2[0] != 0xDD || dst2[1] != 0xCC {
		t.Errorf("extract lane with src&2==0: got [%02X %02X], want [DD CC]", dst2[0], dst2[1])
	}
}

func TestExtractByteLane(t *testing.T) {
	val := uint32(0xAABBCCDD)
	tests := []struct {
		src  uint32
		want byte
	}{
		{0x2000, 0xDD},
		{0x2001, 0xCC},
		{0x2002, 0xBB},
		{0x2003, 0xAA},
	}
	for _, tt := range tests {
		dst := make([]byte, 1)
		extract(dst, tt.src, val, AlignByte)
		if dst[0] != tt.want {
			t.Errorf("extract byte lane src=0x%X = 0x%02X, want 0x%02X", tt.src, dst[0], tt.want)
		}
	}
}

func TestPackWord(t *testing.T) {
	src := []byte{0xDD, 0xCC, 0xBB, 0xAA}
	got := pack(src, 0x2000, AlignWord)
	if got != 0xAABBCCDD {
		t.Errorf("pack word = 0x%08X, want 0xAABBCCDD", got)
	}
}

func TestPackHalfwordLane(t *testing.T) {
	src := []byte{0xDD, 0xCC}
	if got := pack(src, 0x2000, AlignHalfword); got != 0x0000CCDD {
		t.Errorf("pack halfword at lane 0 = 0x%08X, want 0x0000CCDD", got)
	}
	if got := pack(src, 0x2002, AlignHalfword); got != 0xCCDD0000 {
		t.Errorf("pack halfword at lane 1 = 0x%08X, want 0xCCDD0000", got)
	}
}

func TestPackByteLane(t *testing.T) {
	src := []byte{0xEE}
	tests := []struct {
		dest uint32
		want uint32
	}{
		{0x2000, 0x000000EE},
		{0x2001, 0x0000EE00},
		{0x2002, 0x00EE0000},
		{0x2003, 0xEE000000},
	}
	for _, tt := range tests {
		if got := pack(src, tt.dest, AlignByte); got != tt.want {
			t.Errorf("pack byte dest=0x%X = 0x%08X, want 0x%08X", tt.dest, got, tt.want)
		}
	}
}

// roundTripAccess is a LowAccess backing a single AP's CSW/TAR/DRW
// registers, just enough to drive MemRead/MemWrite through a real pipeline
// without modelling SELECT banking (tests stay on one fixed bank). DRW
// reads are posted: each returns the word latched by the previous read
// and latches the word at TAR. Every DRW access advances TAR by one word.
// RDBUFF shares DRW's low address bits, so it reads as one more DRW read.
type roundTripAccess struct {
	csw     uint32
	tar     uint32
	pending uint32
	mem     map[uint32]byte
}

func newRoundTripAccess() *roundTripAccess {
	return &roundTripAccess{mem: map[uint32]byte{}}
}

func (r *roundTripAccess) Read(addr uint8) (uint32, error) {
	switch addr & 0xF {
	case RegCSW:
		return r.csw, nil
	case RegTAR:
		return r.tar, nil
	case RegDRW:
		v := r.pending
		r.pending = uint32(r.mem[r.tar]) | uint32(r.mem[r.tar+1])<<8 | uint32(r.mem[r.tar+2])<<16 | uint32(r.mem[r.tar+3])<<24
		r.tar += 4
		return v, nil
	}
	return 0, nil
}

func (r *roundTripAccess) Write(addr uint8, value uint32) error {
	switch addr & 0xF {
	case RegCSW:
		r.csw = value
	case RegTAR:
		r.tar = value
	case RegDRW:
		r.mem[r.tar] = byte(value)
		r.mem[r.tar+1] = byte(value >> 8)
		r.mem[r.tar+2] = byte(value >> 16)
		r.mem[r.tar+3] = byte(value >> 24)
		r.tar += 4
	}
	return nil
}

func (r *roundTripAccess) Abort(flags uint32) error { return nil }

func newTestAP(access LowAccess) *AP {
	dp := newTestDP(access)
	return &AP{dp: dp, apsel: 0}
}

func TestMemWriteThenMemReadRoundTrip(t *testing.T) {
	access := newRoundTripAccess()
	ap := newTestAP(access)

	want := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	if err := MemWrite(ap, 0x2000, want, uint32(len(want))); err != nil {
		t.Fatalf("MemWrite() error = %v", err)
	}

	got := make([]byte, len(want))
	if err := MemRead(ap, got, 0x2000, uint32(len(got))); err != nil {
		t.Fatalf("MemRead() error = %v", err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("byte %d = 0x%02X, want 0x%02X", i, got[i], want[i])
		}
	}
}

func TestMemReadZeroLengthIsNoop(t *testing.T) {
	access := newRoundTripAccess()
	ap := newTestAP(access)
	if err := MemRead(ap, nil, 0x2000, 0); err != nil {
		t.Errorf("MemRead() with length 0 returned error: %v", err)
	}
}

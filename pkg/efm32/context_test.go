package efm32

import "testing"

func TestMSCOffsetsNewLayout(t *testing.T) {
	c := &Context{MSCBase: mscNewLayoutBase}
	tests := []struct {
		name string
		got  uint32
		want uint32
	}{
		{"WRITECTRL", c.offWriteCtrl(), 0x0c},
		{"WRITECMD", c.offWriteCmd(), 0x10},
		{"ADDRB", c.offAddrB(), 0x14},
		{"IF", c.offIF(), 0x20},
		{"LOCK", c.offLock(), 0x3c},
		{"MASSLOCK", c.offMassLock(), 0x40},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s offset = 0x%02x, want 0x%02x", tt.name, tt.got, tt.want)
		}
	}
}

func TestMSCOffsetsOldLockLayout(t *testing.T) {
	// mscOldLockBase shares LOCK's relocated offset with the new layout
	// but keeps the original WRITECTRL/WRITECMD/ADDRB/IF/MASSLOCK offsets.
	c := &Context{MSCBase: mscOldLockBase}
	tests := []struct {
		name string
		got  uint32
		want uint32
	}{
		{"WRITECTRL", c.offWriteCtrl(), 0x08},
		{"WRITECMD", c.offWriteCmd(), 0x0c},
		{"ADDRB", c.offAddrB(), 0x10},
		{"IF", c.offIF(), 0x30},
		{"LOCK", c.offLock(), 0x3c},
		{"MASSLOCK", c.offMassLock(), 0x54},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s offset = 0x%02x, want 0x%02x", tt.name, tt.got, tt.want)
		}
	}
}

func TestMSCOffsetsPreLockRelocationLayout(t *testing.T) {
	// Any MSC base other than the two special-cased ones (e.g. the
	// Series-1 0x400e0000 base) gets the fully original offset set,
	// including LOCK at 0x40 rather than 0x3c.
	c := &Context{MSCBase: 0x400e0000}
	if got := c.offLock(); got != 0x40 {
		t.Errorf("offLock() = 0x%02x, want 0x40", got)
	}
	if got := c.offMassLock(); got != 0x54 {
		t.Errorf("offMassLock() = 0x%02x, want 0x54", got)
	}
	if got := c.offWriteCtrl(); got != 0x08 {
		t.Errorf("offWriteCtrl() = 0x%02x, want 0x08", got)
	}
}

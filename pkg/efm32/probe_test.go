package efm32

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

func TestVariantStringFormat(t *testing.T) {
	dev := Device{Name: "EFM32GG", Description: "Giant Gecko"}
	got := variantString(3, dev, 230)
	want := "EFM32GG Giant Gecko (F230, DI v3)"
	if got != want {
		t.Errorf("variantString() = %q, want %q", got, want)
	}
}

func discardLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunBootloaderCommandRejectsDeviceWithNoBootloader(t *testing.T) {
	ctx := &Context{Device: Device{BootloaderSize: 0}}
	err := runBootloaderCommand(nil, ctx, nil, discardLog())
	if !errors.Is(err, ErrNoBootloader) {
		t.Errorf("runBootloaderCommand() error = %v, want ErrNoBootloader", err)
	}
}

func TestRunBootloaderCommandReportsStatusWithNoArgs(t *testing.T) {
	access := newFlashAccess()
	ctx, _ := newFlashContext(t, access, mscNewLayoutBase, 2048)
	ctx.Device.BootloaderSize = 8192
	access.putWord(offLockBitsCLW0, clw0BootloaderEnable)

	if err := runBootloaderCommand(nil, ctx, nil, discardLog()); err != nil {
		t.Fatalf("runBootloaderCommand() error = %v", err)
	}
	// Status-only path must not touch WRITECTRL/LOCK.
	if got := access.getWord(ctx.MSCBase + ctx.offLock()); got != 0 {
		t.Errorf("LOCK = 0x%X after a status-only query, want untouched (0)", got)
	}
}

func TestRunBootloaderCommandEnableArgSetsBit(t *testing.T) {
	access := newFlashAccess()
	statusAddrHook = mscNewLayoutBase + offStatus
	ctx, tgt := newFlashContext(t, access, mscNewLayoutBase, 2048)
	ctx.Device.BootloaderSize = 8192

	if err := runBootloaderCommand(tgt, ctx, []string{"enable"}, discardLog()); err != nil {
		t.Fatalf("runBootloaderCommand() error = %v", err)
	}
	if got := access.getWord(ctx.MSCBase + offWData); got&clw0BootloaderEnable == 0 {
		t.Error("runBootloaderCommand([\"enable\"]) did not set CLW0BootloaderEnable in WDATA")
	}
}

func TestRunBootloaderCommandNonEnableArgClearsBit(t *testing.T) {
	access := newFlashAccess()
	statusAddrHook = mscNewLayoutBase + offStatus
	access.putWord(offLockBitsCLW0, clw0BootloaderEnable)
	ctx, tgt := newFlashContext(t, access, mscNewLayoutBase, 2048)
	ctx.Device.BootloaderSize = 8192

	if err := runBootloaderCommand(tgt, ctx, []string{"disable"}, discardLog()); err != nil {
		t.Fatalf("runBootloaderCommand() error = %v", err)
	}
	if got := access.getWord(ctx.MSCBase + offWData); got&clw0BootloaderEnable != 0 {
		t.Error("runBootloaderCommand([\"disable\"]) left CLW0BootloaderEnable set in WDATA")
	}
}

package efm32

import (
	"fmt"
	"log/slog"

	"adiv5probe/pkg/adiv5"
	"adiv5probe/pkg/target"
)

const sramBase = 0x20000000

// StubProvider supplies the flash-write stub's target-resident machine
// code for a device (the out-of-scope component N collaborator,
// get_flash_stub, §4.N). No stub image ships with this driver; the
// extension point exists so a family-specific one can register without
// reshaping probe(), matching how probe.KinetisMDMHook plugs in.
type StubProvider func(dev Device) ([]byte, bool)

// NewProbe returns a probe.CortexMProbe bound to log: dispatch the DI
// schema from the DP's IDCODE, read and validate the part family, then
// attach flash/RAM regions and the family's command table to a new
// Target (§4.G, efm32_probe). forced is accepted only to satisfy the
// probe.CortexMProbe signature; this driver never needs the
// forced-fallback path since its dispatch is keyed on IDCODE, not
// CoreSight discovery. stub and run are the out-of-scope flash-write
// collaborators (get_flash_stub and cortexm_run_stub); the main flash
// region's Write is only wired when both are supplied.
func NewProbe(log *slog.Logger, stub StubProvider, run RunStub) func(ap *adiv5.AP, forced bool) (*target.Target, bool) {
	if log == nil {
		log = slog.Default()
	}
	return func(ap *adiv5.AP, forced bool) (*target.Target, bool) {
		return probe(ap, log, stub, run)
	}
}

func probe(ap *adiv5.AP, log *slog.Logger, stub StubProvider, run RunStub) (*target.Target, bool) {
	diVersion, ok := DISchemaForIDCode(ap.DP().IDCode())
	if !ok {
		return nil, false
	}

	ctx, ok, err := Identify(ap, diVersion)
	if err != nil {
		log.Error("efm32 identify failed", slog.Any("err", err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	partNumber, err := PartNumber(ap, diVersion)
	if err != nil {
		log.Error("efm32 part number read failed", slog.Any("err", err))
		return nil, false
	}

	t := target.New(ap, variantString(diVersion, ctx.Device, partNumber))
	t.Options |= target.OptInhibitSRST
	t.Context = ctx

	t.AddRAM(&target.RAMRegion{Start: sramBase, Length: ctx.RAMSize})
	mainFlash := &target.FlashRegion{
		Start:      0,
		Length:     ctx.FlashSize,
		BlockSize:  ctx.Device.FlashPageSize,
		BufferSize: ctx.Device.FlashPageSize,
		Erase: func(r *target.FlashRegion, addr, length uint32) error {
			return ctx.ErasePage(r.Parent, addr, length)
		},
	}
	if stub != nil && run != nil {
		mainFlash.Write = func(r *target.FlashRegion, dest uint32, data []byte) error {
			code, ok := stub(ctx.Device)
			if !ok {
				return fmt.Errorf("efm32: no flash-write stub available for %s", ctx.Device.Name)
			}
			bufferBase := sramBase + uint32(len(code))
			return ctx.Write(r.Parent, WriteStub{Code: code}, sramBase, bufferBase, dest, data, run)
		}
	}
	t.AddFlash(mainFlash)
	if ctx.Device.UserDataSize > 0 {
		t.AddFlash(&target.FlashRegion{
			Start:     offUserData,
			Length:    ctx.Device.UserDataSize,
			BlockSize: ctx.Device.FlashPageSize,
		})
	}
	if ctx.Device.BootloaderSize > 0 {
		t.AddFlash(&target.FlashRegion{
			Start:     offBootloader,
			Length:    ctx.Device.BootloaderSize,
			BlockSize: ctx.Device.FlashPageSize,
		})
	}

	t.RegisterCommands(
		target.Command{Name: "erase_mass", Run: func(t *target.Target, args []string) error {
			return ctx.MassErase(t)
		}},
		target.Command{Name: "serial", Run: func(t *target.Target, args []string) error {
			log.Info("unique number", slog.String("id", fmt.Sprintf("0x%016X", ctx.UniqueID)))
			return nil
		}},
		target.Command{Name: "efm_info", Run: func(t *target.Target, args []string) error {
			return printInfo(t, ctx, log)
		}},
		target.Command{Name: "bootloader", Run: func(t *target.Target, args []string) error {
			return runBootloaderCommand(t, ctx, args, log)
		}},
	)

	return t, true
}

func variantString(diVersion int, dev Device, partNumber uint16) string {
	return fmt.Sprintf("%s %s (F%d, DI v%d)", dev.Name, dev.Description, partNumber, diVersion)
}

func printInfo(t *target.Target, ctx *Context, log *slog.Logger) error {
	log.Info("EFM32 device info",
		slog.String("family", ctx.Device.Name),
		slog.Int("di_version", ctx.DIVersion),
		slog.Uint64("flash_bytes", uint64(ctx.FlashSize)),
		slog.Uint64("ram_bytes", uint64(ctx.RAMSize)),
		slog.String("package", ctx.PackageType),
		slog.String("temp_grade", ctx.TempGrade),
		slog.Bool("has_radio", ctx.Device.HasRadio),
	)
	return nil
}

// runBootloaderCommand implements efm32_cmd_bootloader (§4.G): with no
// arguments, report the CLW0.BOOTLOADER_ENABLE bit; otherwise set it
// according to the first character of args[0] ('e' enables).
func runBootloaderCommand(t *target.Target, ctx *Context, args []string, log *slog.Logger) error {
	if ctx.Device.BootloaderSize == 0 {
		return ErrNoBootloader
	}
	if len(args) == 0 {
		enabled, err := ctx.BootloaderEnabled()
		if err != nil {
			return err
		}
		log.Info("bootloader status", slog.Bool("enabled", enabled))
		return nil
	}
	return ctx.SetBootloader(t, len(args[0]) > 0 && args[0][0] == 'e')
}

package efm32

import "adiv5probe/pkg/adiv5"

// DI field layout (§3): word offsets within each schema's device-info
// block, shared PART-field bit positions, and the V4 two-field part
// family split.
const (
	diPartNumberShift = 0
	diPartNumberMask  = 0xFFFF
	diPartFamilyShift = 16
	diPartFamilyMask  = 0xFF

	diV4FamilyNumShift = 16
	diV4FamilyNumMask  = 0x3F
	diV4FamilyShift    = 24
	diV4FamilyMask     = 0x3F

	diMSizeFlashShift = 0
	diMSizeFlashMask  = 0xFFFF
	diMSizeSRAMShift  = 16
	diMSizeSRAMMask   = 0xFFFF

	diMeminfoPageSizeShift   = 24
	diMeminfoPageSizeMask    = 0xFF
	diV4MeminfoPageSizeShift = 0
	diV4MeminfoPageSizeMask  = 0xFF

	diPkginfoTempGradeShift = 0
	diPkginfoTempGradeMask  = 0xFF
	diPkginfoPkgTypeShift   = 8
	diPkginfoPkgTypeMask    = 0xFF
)

// Word offsets of the registers this driver reads, relative to each
// schema's DI base address. Only V1/V2 share a MEMINFO-derived page
// size; V3 keeps MEMINFO for misc-chip info while V4 moves it to
// PKGINFO (§3).
var diOffsets = map[int]struct {
	base, meminfo, pkginfo, part, msize, uniqueL, uniqueH uint32
}{
	1: {offDIv1, 0x34, 0, 0x4C, 0x48, 0x40, 0x44},
	2: {offDIv2, 0x3C, 0, 0x54, 0x50, 0x48, 0x4C},
	// V3 packs misc-chip info directly into MEMINFO rather than a
	// separate PKGINFO register (unlike V4).
	3: {offDIv3, 0x34, 0x34, 0x4C, 0x48, 0x40, 0x44},
	4: {offDIv4, 0x08, 0x10, 0x04, 0x0C, 0x48, 0x4C},
}

func read32(ap *adiv5.AP, addr uint32) (uint32, error) {
	var buf [4]byte
	if err := adiv5.MemRead(ap, buf[:], addr, 4); err != nil {
		return 0, err
	}
	return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24, nil
}

// DISchemaForIDCode implements the IDCODE-based DI schema dispatch of
// §4.G / AN0062 section 2.2. DI version 1 has no distinguishing IDCODE
// (the original implementation leaves its OUI-based detection commented
// out and unreachable); this resolves the corresponding open question
// by keeping the V1 schema fully implemented below but never
// auto-selected here. A caller that already knows a part uses V1 (e.g.
// a user override) can still pass diVersion 1 directly to Identify.
func DISchemaForIDCode(idcode uint32) (int, bool) {
	switch idcode {
	case 0x2BA01477:
		return 3, true
	case 0x0BC11477:
		return 2, true
	case 0x6BA02477:
		return 4, true
	default:
		return 0, false
	}
}

// PartFamily reads the part-family field, merging the two V4 subfields
// (family + family-number) the way the original accumulates them.
func PartFamily(ap *adiv5.AP, diVersion int) (uint8, error) {
	off, ok := diOffsets[diVersion]
	if !ok {
		return 0, nil
	}
	reg, err := read32(ap, off.base+off.part)
	if err != nil {
		return 0, err
	}
	if diVersion == 4 {
		part := uint8((reg >> diV4FamilyNumShift) & diV4FamilyNumMask)
		part += uint8((reg >> diV4FamilyShift) & diV4FamilyMask)
		return part, nil
	}
	return uint8((reg >> diPartFamilyShift) & diPartFamilyMask), nil
}

// PartNumber reads the raw part-number field.
func PartNumber(ap *adiv5.AP, diVersion int) (uint16, error) {
	off, ok := diOffsets[diVersion]
	if !ok {
		return 0, nil
	}
	reg, err := read32(ap, off.base+off.part)
	if err != nil {
		return 0, err
	}
	return uint16((reg >> diPartNumberShift) & diPartNumberMask), nil
}

// FlashAndRAMSize reads MSIZE and returns both sizes in bytes.
func FlashAndRAMSize(ap *adiv5.AP, diVersion int) (flashBytes, ramBytes uint32, err error) {
	off, ok := diOffsets[diVersion]
	if !ok || off.msize == 0 {
		return 0, 0, nil
	}
	reg, err := read32(ap, off.base+off.msize)
	if err != nil {
		return 0, 0, err
	}
	flashKiB := (reg >> diMSizeFlashShift) & diMSizeFlashMask
	ramKiB := (reg >> diMSizeSRAMShift) & diMSizeSRAMMask
	return flashKiB * 1024, ramKiB * 1024, nil
}

// UniqueNumber reads the 64-bit unique device id. DI v4 repurposes the
// EUI64 pair for this (§3).
func UniqueNumber(ap *adiv5.AP, diVersion int) (uint64, error) {
	off, ok := diOffsets[diVersion]
	if !ok {
		return 0, nil
	}
	lo, err := read32(ap, off.base+off.uniqueL)
	if err != nil {
		return 0, err
	}
	hi, err := read32(ap, off.base+off.uniqueH)
	if err != nil {
		return 0, err
	}
	return uint64(hi)<<32 | uint64(lo), nil
}

// PackagePinInfo reads PKGINFO (v3/v4 only): temperature grade, package
// type, pin count. Returns zeros on schemas that lack this field.
func PackagePinInfo(ap *adiv5.AP, diVersion int) (tempGrade, pkgType, pinCount uint8, err error) {
	off, ok := diOffsets[diVersion]
	if !ok || off.pkginfo == 0 {
		return 0, 0, 0, nil
	}
	reg, err := read32(ap, off.base+off.pkginfo)
	if err != nil {
		return 0, 0, 0, err
	}
	tempGrade = uint8((reg >> diPkginfoTempGradeShift) & diPkginfoTempGradeMask)
	pkgType = uint8((reg >> diPkginfoPkgTypeShift) & diPkginfoPkgTypeMask)
	pinCount = uint8((reg >> 16) & 0xFF)
	return tempGrade, pkgType, pinCount, nil
}

// Identify implements efm32_probe (§4.G): given an AP whose DP IDCODE
// already selected a DI schema, read the part family, reject unknown
// families, then populate a Context with the matched device and its
// per-chip sizes. The bool return distinguishes "not an EFM32 part" (no
// error, Context nil) from a transport fault.
func Identify(ap *adiv5.AP, diVersion int) (*Context, bool, error) {
	family, err := PartFamily(ap, diVersion)
	if err != nil {
		return nil, false, err
	}
	dev, ok := LookupDevice(int(family))
	if !ok {
		return nil, false, nil
	}

	flashSize, ramSize, err := FlashAndRAMSize(ap, diVersion)
	if err != nil {
		return nil, false, err
	}
	unique, err := UniqueNumber(ap, diVersion)
	if err != nil {
		return nil, false, err
	}

	ctx := &Context{
		AP:        ap,
		Device:    dev,
		DIVersion: diVersion,
		MSCBase:   dev.MSCBase,
		FlashSize: flashSize,
		RAMSize:   ramSize,
		UniqueID:  unique,
	}

	if diVersion == 3 || diVersion == 4 {
		tempGrade, pkgType, _, err := PackagePinInfo(ap, diVersion)
		if err != nil {
			return nil, false, err
		}
		ctx.TempGrade, _ = LookupTempGrade(tempGrade)
		ctx.PackageType, _ = LookupPackageType(pkgType)
	}

	return ctx, true, nil
}

// Package efm32 implements the EFM32/EZR32/EFR32 flash controller
// driver: device-information parsing (four DI schema versions), page
// erase and stub-assisted page write, mass erase, and the
// Authentication Access Port unlock path. Components G, H, and the AAP
// portion of §4.H.
package efm32

// Device describes one chip family's flash layout (§3 flash device
// descriptor). Table grounded on the original implementation's
// efm32_devices[].
type Device struct {
	FamilyID       int
	DIVersion      int
	Name           string
	FlashPageSize  uint32 // bytes
	MSCBase        uint32
	HasRadio       bool
	UserDataSize   uint32 // bytes
	BootloaderSize uint32 // bytes
	Description    string
}

// UnknownFamily mirrors EFM32_UNKNOWN_FAMILY. LookupDevice does not
// return it; a miss is reported as (Device{}, false).
const UnknownFamily = 9999

var devices = []Device{
	// First-gen micros (DI v1)
	{71, 1, "EFM32G", 512, 0x400c0000, false, 512, 0, "Gecko"},
	{72, 1, "EFM32GG", 2048, 0x400c0000, false, 4096, 0, "Giant Gecko"},
	{73, 1, "EFM32TG", 512, 0x400c0000, false, 512, 0, "Tiny Gecko"},
	{74, 1, "EFM32LG", 2048, 0x400c0000, false, 2048, 0, "Leopard Gecko"},
	{75, 1, "EFM32WG", 2048, 0x400c0000, false, 2048, 0, "Wonder Gecko"},
	{76, 1, "EFM32ZG", 1024, 0x400c0000, false, 1024, 0, "Zero Gecko"},
	{77, 1, "EFM32HG", 1024, 0x400c0000, false, 1024, 0, "Happy Gecko"},

	// First (1.5) gen micro + radio (DI v2)
	{120, 2, "EZR32WG", 2048, 0x400c0000, true, 2048, 0, "EZR Wonder Gecko"},
	{121, 2, "EZR32LG", 2048, 0x400c0000, true, 2048, 0, "EZR Leopard Gecko"},
	{122, 2, "EZR32HG", 1024, 0x400c0000, true, 1024, 0, "EZR Happy Gecko"},

	// Second-gen micros (DI v3)
	{81, 3, "EFM32PG1B", 2048, 0x400e0000, false, 2048, 10240, "Pearl Gecko"},
	{83, 3, "EFM32JG1B", 2048, 0x400e0000, false, 2048, 10240, "Jade Gecko"},
	{85, 3, "EFM32PG12B", 2048, 0x400e0000, false, 2048, 32768, "Pearl Gecko 12"},
	{87, 3, "EFM32JG12B", 2048, 0x400e0000, false, 2048, 32768, "Jade Gecko 12"},

	// Second (2.5) gen micros, relocated MSC
	{100, 3, "EFM32GG11B", 4096, 0x40000000, false, 4096, 32768, "Giant Gecko 11"},
	{103, 3, "EFM32TG11B", 2048, 0x40000000, false, 2048, 18432, "Tiny Gecko 11"},
	{106, 3, "EFM32GG12B", 2048, 0x40000000, false, 2048, 32768, "Giant Gecko 12"},

	// Second-gen micro + radio (DI v3)
	{16, 3, "EFR32MG1P", 2048, 0x400e0000, true, 2048, 10240, "Mighty Gecko"},
	{17, 3, "EFR32MG1B", 2048, 0x400e0000, true, 2048, 10240, "Mighty Gecko"},
	{18, 3, "EFR32MG1V", 2048, 0x400e0000, true, 2048, 10240, "Mighty Gecko"},
	{19, 3, "EFR32BG1P", 2048, 0x400e0000, true, 2048, 10240, "Blue Gecko"},
	{20, 3, "EFR32BG1B", 2048, 0x400e0000, true, 2048, 10240, "Blue Gecko"},
	{21, 3, "EFR32BG1V", 2048, 0x400e0000, true, 2048, 10240, "Blue Gecko"},
	{25, 3, "EFR32FG1P", 2048, 0x400e0000, true, 2048, 10240, "Flex Gecko"},
	{26, 3, "EFR32FG1B", 2048, 0x400e0000, true, 2048, 10240, "Flex Gecko"},
	{27, 3, "EFR32FG1V", 2048, 0x400e0000, true, 2048, 10240, "Flex Gecko"},
	{28, 3, "EFR32MG12P", 2048, 0x400e0000, true, 2048, 32768, "Mighty Gecko"},
	{29, 3, "EFR32MG12B", 2048, 0x400e0000, true, 2048, 32768, "Mighty Gecko"},
	{30, 3, "EFR32MG12V", 2048, 0x400e0000, true, 2048, 32768, "Mighty Gecko"},
	{31, 3, "EFR32BG12P", 2048, 0x400e0000, true, 2048, 32768, "Blue Gecko"},
	{32, 3, "EFR32BG12B", 2048, 0x400e0000, true, 2048, 32768, "Blue Gecko"},
	{33, 3, "EFR32BG12V", 2048, 0x400e0000, true, 2048, 32768, "Blue Gecko"},
	{37, 3, "EFR32FG12P", 2048, 0x400e0000, true, 2048, 32768, "Flex Gecko"},
	{38, 3, "EFR32FG12B", 2048, 0x400e0000, true, 2048, 32768, "Flex Gecko"},
	{39, 3, "EFR32FG12V", 2048, 0x400e0000, true, 2048, 32768, "Flex Gecko"},
	{40, 3, "EFR32MG13P", 2048, 0x400e0000, true, 2048, 16384, "Mighty Gecko"},
	{41, 3, "EFR32MG13B", 2048, 0x400e0000, true, 2048, 16384, "Mighty Gecko"},
	{42, 3, "EFR32MG13V", 2048, 0x400e0000, true, 2048, 16384, "Mighty Gecko"},
	{43, 3, "EFR32BG13P", 2048, 0x400e0000, true, 2048, 16384, "Blue Gecko"},
	{44, 3, "EFR32BG13B", 2048, 0x400e0000, true, 2048, 16384, "Blue Gecko"},
	{45, 3, "EFR32BG13V", 2048, 0x400e0000, true, 2048, 16384, "Blue Gecko"},
	{49, 3, "EFR32FG13P", 2048, 0x400e0000, true, 2048, 16384, "Flex Gecko"},
	{50, 3, "EFR32FG13B", 2048, 0x400e0000, true, 2048, 16384, "Flex Gecko"},
	{51, 3, "EFR32FG13V", 2048, 0x400e0000, true, 2048, 16384, "Flex Gecko"},
	{52, 3, "EFR32MG14P", 2048, 0x400e0000, true, 2048, 16384, "Mighty Gecko"},
	{53, 3, "EFR32MG14B", 2048, 0x400e0000, true, 2048, 16384, "Mighty Gecko"},
	{54, 3, "EFR32MG14V", 2048, 0x400e0000, true, 2048, 16384, "Mighty Gecko"},
	{55, 3, "EFR32BG14P", 2048, 0x400e0000, true, 2048, 16384, "Blue Gecko"},
	{56, 3, "EFR32BG14B", 2048, 0x400e0000, true, 2048, 16384, "Blue Gecko"},
	{57, 3, "EFR32BG14V", 2048, 0x400e0000, true, 2048, 16384, "Blue Gecko"},
	{58, 3, "EFR32ZG14P", 2048, 0x400e0000, true, 2048, 16384, "Zero Gecko"},
	{61, 3, "EFR32FG14P", 2048, 0x400e0000, true, 2048, 16384, "Flex Gecko"},
	{62, 3, "EFR32FG14B", 2048, 0x400e0000, true, 2048, 16384, "Flex Gecko"},
	{63, 3, "EFR32FG14V", 2048, 0x400e0000, true, 2048, 16384, "Flex Gecko"},

	// Third-gen micro + radio (DI v4)
	{128, 4, "EFR32xG21", 8192, 0x40030000, true, 1024, 0, "Flex Gecko"},
	{129, 4, "EFR32xG21", 8192, 0x40030000, true, 1024, 0, "Mighty Gecko"},
	{130, 4, "EFR32xG21", 8192, 0x40030000, true, 1024, 0, "Blue Gecko"},
	{221, 4, "EFR32xG22", 8192, 0x40030000, true, 1024, 0, "Flex Gecko"},
	{222, 4, "EFR32xG22", 8192, 0x40030000, true, 1024, 0, "Mighty Gecko"},
	{223, 4, "EFR32xG22", 8192, 0x40030000, true, 1024, 0, "Blue Gecko"},
}

// LookupDevice linear-scans the device table by family id (§4.G step
// 2). The kiB fields passed through DI are not re-derived here; callers
// read flash/RAM size directly from the device-information page.
func LookupDevice(familyID int) (Device, bool) {
	for _, d := range devices {
		if d.FamilyID == familyID {
			return d, true
		}
	}
	return Device{}, false
}

// PackageType names a PKGINFO package-type code (DI v3/v4 only).
var packageTypes = map[uint8]string{
	74: "WLCSP",
	76: "BGA",
	77: "QFN",
	81: "QFxP",
}

// TempGrade names a PKGINFO temperature-grade code (DI v3/v4 only).
var tempGrades = map[uint8]string{
	0: "-40 to 85 degC",
	1: "-40 to 125 degC",
	2: "-40 to 105 degC",
	3: "0 to 70 degC",
}

// LookupPackageType returns ("unknown", false) on a miss rather than an
// empty string, so callers can distinguish "looked up and unknown" from
// "field absent on this schema".
func LookupPackageType(code uint8) (string, bool) {
	name, ok := packageTypes[code]
	if !ok {
		return "unknown", false
	}
	return name, true
}

// LookupTempGrade mirrors LookupPackageType. This resolves the §9 open
// question: the original indexes a possibly-unset pointer on a lookup
// miss; here a miss is an explicit, handled case (never a nil
// dereference).
func LookupTempGrade(code uint8) (string, bool) {
	name, ok := tempGrades[code]
	if !ok {
		return "unknown", false
	}
	return name, true
}

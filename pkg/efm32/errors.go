package efm32

import "errors"

// ErrEraseBusy is returned when DeviceErase is invoked while a prior
// AAP erase is still in progress.
var ErrEraseBusy = errors.New("efm32: AAP erase already in progress")

// ErrNoBootloader is returned by the bootloader command on a device
// family with no bootloader region.
var ErrNoBootloader = errors.New("efm32: device has no bootloader")

package efm32

import (
	"fmt"
	"time"

	"adiv5probe/pkg/adiv5"
	"adiv5probe/pkg/target"
)

// busyPollInterval is the sleep between MSC_STATUS.BUSY polls, and
// busyPollTimeout bounds how long this driver spins on BUSY in total; a
// sticky DP fault (target_check_error) ends the wait sooner.
const (
	busyPollInterval = time.Millisecond
	busyPollTimeout  = 200 * time.Millisecond
)

func (c *Context) writeWord(addr, value uint32) error {
	var buf [4]byte
	buf[0] = byte(value)
	buf[1] = byte(value >> 8)
	buf[2] = byte(value >> 16)
	buf[3] = byte(value >> 24)
	return adiv5.MemWrite(c.AP, addr, buf[:], 4)
}

func (c *Context) readWord(addr uint32) (uint32, error) {
	return read32(c.AP, addr)
}

// waitNotBusy polls MSC_STATUS.BUSY, returning when it clears, when the
// owning AP's DP reports a sticky fault (target_check_error, §5), or with
// an error once busyPollTimeout has elapsed.
func (c *Context) waitNotBusy(t *target.Target) error {
	start := time.Now()
	for {
		status, err := c.readWord(c.MSCBase + offStatus)
		if err != nil {
			return err
		}
		if status&statusBusy == 0 {
			return nil
		}
		if err := t.CheckError(); err != nil {
			return err
		}
		if time.Since(start) >= busyPollTimeout {
			return fmt.Errorf("efm32: MSC_STATUS.BUSY still set after %v", busyPollTimeout)
		}
		time.Sleep(busyPollInterval)
	}
}

// ErasePage implements efm32_flash_erase (§4.G): unlock, enable
// write/erase, then erase each block-sized row covering [addr, addr+len).
func (c *Context) ErasePage(t *target.Target, addr, length uint32) error {
	if err := c.writeWord(c.MSCBase+c.offLock(), lockKey); err != nil {
		return err
	}
	if err := c.writeWord(c.MSCBase+c.offWriteCtrl(), 1); err != nil {
		return err
	}

	for length > 0 {
		if err := c.writeWord(c.MSCBase+c.offAddrB(), addr); err != nil {
			return err
		}
		if err := c.writeWord(c.MSCBase+c.offWriteCmd(), writeCmdLaddrIM); err != nil {
			return err
		}
		if err := c.writeWord(c.MSCBase+c.offWriteCmd(), writeCmdErasePage); err != nil {
			return err
		}
		if err := c.waitNotBusy(t); err != nil {
			return err
		}

		blockSize := c.Device.FlashPageSize
		addr += blockSize
		if length > blockSize {
			length -= blockSize
		} else {
			length = 0
		}
	}
	return nil
}

// WriteStub carries the target-resident flash-write stub's machine code,
// the Go-side counterpart of the original's SRAM-resident flashloader
// (component N, get_flash_stub). Page writes go through a stub because
// the MSC requires a tight, uninterruptible write sequence the host-side
// transaction rate cannot guarantee over a debug link.
type WriteStub struct {
	Code []byte // target-resident stub machine code
}

// RunStub is the out-of-scope core-register entry point a Cortex-M
// driver supplies to step the loaded stub to completion (the original's
// cortexm_run_stub): entry is the stub's load address, dest/bufferBase/
// length describe the write it should perform, and mscBase lets it find
// the MSC registers without another discovery pass.
type RunStub func(entry, dest, bufferBase uint32, length int, mscBase uint32) error

// Write implements efm32_flash_write (§4.G): load the stub and source
// buffer into RAM, then invoke run with (dest, bufferAddr, len, mscBase).
func (c *Context) Write(t *target.Target, stub WriteStub, sramBase, bufferBase, dest uint32, src []byte, run RunStub) error {
	if err := adiv5.MemWrite(c.AP, sramBase, stub.Code, uint32(len(stub.Code))); err != nil {
		return err
	}
	if err := adiv5.MemWrite(c.AP, bufferBase, src, uint32(len(src))); err != nil {
		return err
	}
	return run(sramBase, dest, bufferBase, len(src), c.MSCBase)
}

// MassErase implements efm32_cmd_erase_all (§4.G): ERASEMAIN0 wipes the
// whole flash array. It does not touch the User Data or Bootloader
// pages.
func (c *Context) MassErase(t *target.Target) error {
	if err := c.writeWord(c.MSCBase+c.offWriteCtrl(), 1); err != nil {
		return err
	}
	if err := c.writeWord(c.MSCBase+c.offMassLock(), massLockKey); err != nil {
		return err
	}
	if err := c.writeWord(c.MSCBase+c.offWriteCmd(), writeCmdEraseMain0); err != nil {
		return err
	}
	if err := c.waitNotBusy(t); err != nil {
		return err
	}
	return c.writeWord(c.MSCBase+c.offMassLock(), 0)
}

// BootloaderEnabled reads the CLW0.BOOTLOADER_ENABLE bit from the
// lock-bits page (§4.G).
func (c *Context) BootloaderEnabled() (bool, error) {
	clw0, err := c.readWord(offLockBitsCLW0)
	if err != nil {
		return false, err
	}
	return clw0&clw0BootloaderEnable != 0, nil
}

// SetBootloader writes a new CLW0.BOOTLOADER_ENABLE value. Flash lock
// bits can only be cleared, not set, once written from their erased
// state without a full page erase — the original implementation
// relies on the WRITEONCE command to flip a single bit in place, which
// only works going from 1 to 0.
func (c *Context) SetBootloader(t *target.Target, enabled bool) error {
	clw0, err := c.readWord(offLockBitsCLW0)
	if err != nil {
		return err
	}
	if enabled {
		clw0 |= clw0BootloaderEnable
	} else {
		clw0 &^= clw0BootloaderEnable
	}

	if err := c.writeWord(c.MSCBase+c.offLock(), lockKey); err != nil {
		return err
	}
	if err := c.writeWord(c.MSCBase+c.offWriteCtrl(), 1); err != nil {
		return err
	}
	if err := c.writeWord(c.MSCBase+c.offAddrB(), offLockBitsCLW0); err != nil {
		return err
	}
	if err := c.writeWord(c.MSCBase+c.offWriteCmd(), writeCmdLaddrIM); err != nil {
		return err
	}
	if err := c.writeWord(c.MSCBase+offWData, clw0); err != nil {
		return err
	}
	if err := c.writeWord(c.MSCBase+c.offWriteCmd(), writeCmdWriteOnce); err != nil {
		return err
	}
	return c.waitNotBusy(t)
}

// Package adiv5 implements the ADIv5 debug transport: DP initialization,
// AP enumeration, and sized/aligned MEM-AP memory access. Components
// B, C, and D of the design.
package adiv5

import (
	"errors"
	"log/slog"
	"time"
)

// DP register addresses (4-bit).
const (
	regIDCODE   = 0x0
	regCTRLSTAT = 0x4
	regSELECT   = 0x8
	regRDBUFF   = 0xC
	regABORT    = 0x0 // write-only
)

// CTRL/STAT bits.
const (
	ctrlCSYSPWRUPACK = 1 << 31
	ctrlCSYSPWRUPREQ = 1 << 30
	ctrlCDBGPWRUPACK = 1 << 29
	ctrlCDBGPWRUPREQ = 1 << 28
	ctrlCDBGRSTACK   = 1 << 27
	ctrlCDBGRSTREQ   = 1 << 26
)

// ABORT flags.
const abortDAPABORT = 1 << 0

// DPIDR version field (bits [15:12]).
const (
	dpidrVersionShift = 12
	dpidrVersionMask  = 0xF
	dpVersion2        = 2
)

const dpResetTimeout = 200 * time.Millisecond
const dpResetPoll = 1 * time.Millisecond

// LowAccess is the raw DP register access function handle named in the
// data model (§3): a single 4-bit-address read/write with an error flag.
// pkg/transport.Probe implements this over a real connection; tests
// implement it over a mock register file.
type LowAccess interface {
	Read(addr uint8) (uint32, error)
	Write(addr uint8, value uint32) error
	Abort(flags uint32) error
}

// DP models an ARM debug port. It exists while refcount > 0: each owning
// AP holds one reference, plus one held for the duration of dp_init.
type DP struct {
	access LowAccess
	log    *slog.Logger

	idcode   uint32
	targetID uint32
	dpVer    uint32

	refcount int
	faulted  bool
}

// New constructs a DP around a raw access handle. The DP is not usable
// until Init succeeds.
func New(access LowAccess, log *slog.Logger) *DP {
	if log == nil {
		log = slog.Default()
	}
	return &DP{access: access, log: log}
}

// Ref increments the reference count.
func (d *DP) Ref() { d.refcount++ }

// Unref decrements the reference count. Callers must not use the DP
// again once refcount reaches zero.
func (d *DP) Unref() { d.refcount-- }

// Refcount returns the current reference count (for invariant checks).
func (d *DP) Refcount() int { return d.refcount }

// IDCode returns the DP's IDCODE, valid after Init.
func (d *DP) IDCode() uint32 { return d.idcode }

// TargetID returns the DPv2 TARGETID, zero on DPv1.
func (d *DP) TargetID() uint32 { return d.targetID }

// Version returns the DPIDR version field (1 or 2), valid after Init.
func (d *DP) Version() uint32 { return d.dpVer }

// Faulted reports whether the DP has a sticky transport fault pending.
func (d *DP) Faulted() bool { return d.faulted }

// ClearFault clears the sticky fault flag, per the cancellation model
// in §5: further operations are refused until the caller does this.
func (d *DP) ClearFault() { d.faulted = false }

func (d *DP) read(addr uint8) (uint32, error) {
	if d.faulted {
		return 0, ErrDPFault
	}
	v, err := d.access.Read(addr)
	if err != nil {
		d.faulted = true
		return 0, err
	}
	return v, nil
}

func (d *DP) write(addr uint8, value uint32) error {
	if d.faulted {
		return ErrDPFault
	}
	if err := d.access.Write(addr, value); err != nil {
		d.faulted = true
		return err
	}
	return nil
}

// Init performs the DP initialization sequence (§4.B):
//  1. take a reference; read CTRL/STAT, retrying once with ABORT:DAPABORT
//     on a timeout.
//  2. request system+debug power-up and spin until both acks are set
//     (no timeout — must succeed for the session to proceed).
//  3. request a debug reset, poll the ack with a 200ms deadline, then
//     clear the request and poll for deassert (also 200ms); failure here
//     is logged and non-fatal.
//  4. read DPIDR; on DPv2, read TARGETID via bank 2 and restore bank 0.
//
// AP enumeration (§4.C) is the caller's responsibility via EnumerateAPs, to
// keep this method focused on the DP's own bring-up.
func (d *DP) Init() error {
	d.Ref()
	defer d.Unref()

	if _, err := d.readCtrlStatWithRetry(); err != nil {
		return err
	}

	if err := d.powerUp(); err != nil {
		return err
	}

	d.resetSequence()

	idcode, err := d.read(regIDCODE)
	if err != nil {
		return err
	}
	d.idcode = idcode
	d.dpVer = (idcode >> dpidrVersionShift) & dpidrVersionMask

	if d.dpVer >= dpVersion2 {
		if err := d.write(regSELECT, 0x2); err != nil {
			return err
		}
		targetID, err := d.read(regCTRLSTAT)
		if err != nil {
			return err
		}
		d.targetID = targetID
		if err := d.write(regSELECT, 0x0); err != nil {
			return err
		}
	}

	return nil
}

// readCtrlStatWithRetry implements the try/catch-over-timeout control
// flow named in §9: a Go function returning (value, error) with a
// sentinel timeout checked via errors.Is, rather than exception handling.
func (d *DP) readCtrlStatWithRetry() (uint32, error) {
	v, err := d.read(regCTRLSTAT)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, ErrDPTimeout) {
		return 0, err
	}
	d.log.Warn("CTRL/STAT read timed out, issuing DAPABORT and retrying")
	d.faulted = false
	if aerr := d.access.Abort(abortDAPABORT); aerr != nil {
		return 0, aerr
	}
	return d.read(regCTRLSTAT)
}

func (d *DP) powerUp() error {
	if err := d.write(regCTRLSTAT, ctrlCSYSPWRUPREQ|ctrlCDBGPWRUPREQ); err != nil {
		return err
	}
	for {
		v, err := d.read(regCTRLSTAT)
		if err != nil {
			return err
		}
		if v&(ctrlCSYSPWRUPACK|ctrlCDBGPWRUPACK) == (ctrlCSYSPWRUPACK | ctrlCDBGPWRUPACK) {
			return nil
		}
	}
}

// resetSequence requests and releases CDBGRSTREQ. Failure is logged and
// swallowed: per §4.B step 3 this is non-fatal.
func (d *DP) resetSequence() {
	if err := d.write(regCTRLSTAT, ctrlCSYSPWRUPREQ|ctrlCDBGPWRUPREQ|ctrlCDBGRSTREQ); err != nil {
		d.log.Warn("debug reset request failed", slog.Any("err", err))
		return
	}
	err := waitUntil(dpResetTimeout, dpResetPoll, func() (bool, error) {
		v, err := d.read(regCTRLSTAT)
		if err != nil {
			return false, err
		}
		return v&ctrlCDBGRSTACK != 0, nil
	})
	if err != nil {
		d.log.Warn("debug reset ack timed out", slog.Any("err", err))
	}

	if err := d.write(regCTRLSTAT, ctrlCSYSPWRUPREQ|ctrlCDBGPWRUPREQ); err != nil {
		d.log.Warn("debug reset deassert failed", slog.Any("err", err))
		return
	}
	err = waitUntil(dpResetTimeout, dpResetPoll, func() (bool, error) {
		v, err := d.read(regCTRLSTAT)
		if err != nil {
			return false, err
		}
		return v&ctrlCDBGRSTACK == 0, nil
	})
	if err != nil {
		d.log.Warn("debug reset deassert ack timed out", slog.Any("err", err))
	}
}

func waitUntil(deadline, poll time.Duration, cond func() (bool, error)) error {
	start := time.Now()
	for {
		ok, err := cond()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if time.Since(start) >= deadline {
			return ErrDPTimeout
		}
		time.Sleep(poll)
	}
}

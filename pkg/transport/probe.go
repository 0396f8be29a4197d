// Package transport gives the ADIv5 "low-level DP transport" collaborator
// (component A of the design) a concrete, testable shape: framing a single
// DP register transaction into a request/response packet carried over a
// connection.Connection, with the ack/WAIT retry and abort-on-timeout
// behavior that collaborator is specified to provide. The exact wire
// framing below plays the same role a real SWD/JTAG adapter protocol
// would; it is not itself ADIv5's bit-banged wire format.
package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"adiv5probe/pkg/adiv5"
	"adiv5probe/pkg/connection"
)

const (
	requestSync  = 0x55
	responseSync = 0xAA

	opRead  = 0x00
	opWrite = 0x01

	ackOK    = 0x00
	ackWait  = 0x01
	ackFault = 0x02
)

// ErrFault indicates the adapter reported a protocol fault (FAULT ack).
var ErrFault = errors.New("transport: fault ack")

// ErrTimeout indicates a transaction exceeded its WAIT retry budget.
var ErrTimeout = errors.New("transport: timeout waiting for ack")

// maxWaitRetries bounds how many WAIT acks a single transaction tolerates
// before giving up; the DP manager is responsible for issuing ABORT and
// retrying the whole operation (§4.B step 1), not this layer.
const maxWaitRetries = 8

// Probe implements one DP register read/write transaction over a
// connection.Connection. It is the concrete backing for the DP's raw
// access function handle described in the data model (§3).
type Probe struct {
	conn connection.Connection
	log  *slog.Logger
}

// New wraps an already-open connection.
func New(conn connection.Connection, log *slog.Logger) *Probe {
	if log == nil {
		log = slog.Default()
	}
	return &Probe{conn: conn, log: log}
}

// Close releases the underlying connection.
func (p *Probe) Close() error {
	return p.conn.Close()
}

// Read performs a DP register read at the given 4-bit address. A WAIT-retry
// exhaustion is reported as adiv5.ErrDPTimeout (wrapping ErrTimeout) so the
// DP manager's ABORT-and-retry step (§4.B step 1) recognizes it the same
// way it would a mock's direct ErrDPTimeout.
func (p *Probe) Read(addr uint8) (uint32, error) {
	v, err := p.transact(opRead, addr, 0)
	if errors.Is(err, ErrTimeout) {
		return v, fmt.Errorf("%w: %w", adiv5.ErrDPTimeout, err)
	}
	return v, err
}

// Write performs a DP register write at the given 4-bit address.
func (p *Probe) Write(addr uint8, value uint32) error {
	_, err := p.transact(opWrite, addr, value)
	return err
}

// Abort sends the DAPABORT sequence; used by the DP manager when a read
// times out (§4.B step 1).
func (p *Probe) Abort(flags uint32) error {
	return p.Write(0x0, flags)
}

func (p *Probe) transact(op byte, addr uint8, value uint32) (uint32, error) {
	var lastErr error
	for attempt := 0; attempt < maxWaitRetries; attempt++ {
		result, ack, err := p.transactOnce(op, addr, value)
		if err != nil {
			return 0, err
		}
		switch ack {
		case ackOK:
			return result, nil
		case ackWait:
			lastErr = ErrTimeout
			continue
		case ackFault:
			return 0, ErrFault
		default:
			return 0, fmt.Errorf("transport: unrecognized ack byte 0x%02x", ack)
		}
	}
	return 0, lastErr
}

func (p *Probe) transactOnce(op byte, addr uint8, value uint32) (uint32, byte, error) {
	req := make([]byte, 7)
	req[0] = requestSync
	req[1] = op
	req[2] = addr & 0x0F
	binary.BigEndian.PutUint32(req[3:7], value)
	req = append(req, lrc(req))

	if _, err := p.conn.Write(req); err != nil {
		return 0, 0, fmt.Errorf("transport: write request: %w", err)
	}

	sync, err := p.conn.Read(1)
	if err != nil {
		return 0, 0, fmt.Errorf("transport: read sync: %w", err)
	}
	if sync[0] != responseSync {
		return 0, 0, fmt.Errorf("transport: bad response sync byte 0x%02x", sync[0])
	}

	hdr, err := p.conn.Read(5)
	if err != nil {
		return 0, 0, fmt.Errorf("transport: read response header: %w", err)
	}
	ack := hdr[0]
	result := binary.BigEndian.Uint32(hdr[1:5])

	if _, err := p.conn.Read(1); err != nil {
		return 0, 0, fmt.Errorf("transport: read response LRC: %w", err)
	}

	return result, ack, nil
}

func lrc(data []byte) byte {
	var v byte
	for _, b := range data {
		v ^= b
	}
	return v
}

// PlatformTimeout spins until cond returns true or the deadline elapses,
// matching the blocking platform_timeout(ms) helper named in §5.
func PlatformTimeout(deadline time.Duration, poll time.Duration, cond func() (bool, error)) error {
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
			return ErrTimeout
		}
		time.Sleep(poll)
	}
}

package connection

import (
	"fmt"
	"io"
	"log/slog"
	"net"

	"go.bug.st/serial"
)

// Bridge relays DP-register transactions (pkg/transport's wire framing)
// from a TCP listener to a physical probe adapter on a serial port. It
// exists so a probe adapter attached to one machine can be shared over
// the network, the same role the teacher's bridge plays for its own
// wire protocol.
type Bridge struct {
	tcpHost    string
	tcpPort    int
	serialPort string
	baudRate   int
	log        *slog.Logger
}

// NewBridge creates a new TCP bridge.
func NewBridge(tcpHost string, tcpPort int, serialPort string, baudRate int, log *slog.Logger) *Bridge {
	if log == nil {
		log = slog.Default()
	}
	return &Bridge{
		tcpHost:    tcpHost,
		tcpPort:    tcpPort,
		serialPort: serialPort,
		baudRate:   baudRate,
		log:        log,
	}
}

// Listen starts the TCP server and relays transactions to the serial port.
func (b *Bridge) Listen() error {
	addr := fmt.Sprintf("%s:%d", b.tcpHost, b.tcpPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start TCP listener: %w", err)
	}
	defer listener.Close()

	b.log.Info("bridge listening", slog.String("addr", addr), slog.String("serial", b.serialPort))

	for {
		conn, err := listener.Accept()
		if err != nil {
			b.log.Error("accept failed", slog.Any("err", err))
			continue
		}
		b.log.Info("client connected", slog.String("remote", conn.RemoteAddr().String()))
		go b.handleConnection(conn)
	}
}

// handleConnection relays one TCP client's transactions to the serial
// port, one request/response pair at a time. The request shape mirrors
// pkg/transport.Probe: a 7-byte header (sync, op, addr, 4-byte value) plus
// a trailing LRC byte; the response is a 1-byte sync, 1-byte ack, 4-byte
// value, and LRC.
func (b *Bridge) handleConnection(tcpConn net.Conn) {
	defer tcpConn.Close()

	mode := &serial.Mode{BaudRate: b.baudRate}
	serialConn, err := serial.Open(b.serialPort, mode)
	if err != nil {
		b.log.Error("opening serial port", slog.Any("err", err))
		return
	}
	defer serialConn.Close()

	for {
		request := make([]byte, 8)
		if _, err := io.ReadFull(tcpConn, request); err != nil {
			if err != io.EOF {
				b.log.Error("reading request", slog.Any("err", err))
			}
			return
		}

		if _, err := serialConn.Write(request); err != nil {
			b.log.Error("writing to serial port", slog.Any("err", err))
			return
		}

		response := make([]byte, 7)
		if _, err := io.ReadFull(serialConn, response); err != nil {
			b.log.Error("reading response from serial port", slog.Any("err", err))
			return
		}

		if _, err := tcpConn.Write(response); err != nil {
			b.log.Error("writing response to client", slog.Any("err", err))
			return
		}
	}
}

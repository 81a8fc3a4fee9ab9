package hal

import (
	"context"
)

// SetupPacket represents a USB SETUP packet in the HAL layer.
// This is a fixed-size, zero-allocation structure for SETUP transactions.
type SetupPacket struct {
	RequestType uint8  // Request characteristics
	Request     uint8  // Specific request
	Value       uint16 // Request-specific value
	Index       uint16 // Request-specific index
	Length      uint16 // Number of bytes to transfer
}

// SetupPacketSize is the size of a USB SETUP packet in bytes.
const SetupPacketSize = 8

// ParseSetupPacket parses raw bytes into a SetupPacket.
// Returns false if data is too short.
func ParseSetupPacket(data []byte, out *SetupPacket) bool {
	if len(data) < SetupPacketSize {
		return false
	}
	out.RequestType = data[0]
	out.Request = data[1]
	out.Value = uint16(data[2]) | uint16(data[3])<<8
	out.Index = uint16(data[4]) | uint16(data[5])<<8
	out.Length = uint16(data[6]) | uint16(data[7])<<8
	return true
}

// MarshalTo writes the setup packet to buf.
// Returns the number of bytes written (8), or 0 if buf is too small.
func (s *SetupPacket) MarshalTo(buf []byte) int {
	if len(buf) < SetupPacketSize {
		return 0
	}
	buf[0] = s.RequestType
	buf[1] = s.Request
	buf[2] = byte(s.Value)
	buf[3] = byte(s.Value >> 8)
	buf[4] = byte(s.Index)
	buf[5] = byte(s.Index >> 8)
	buf[6] = byte(s.Length)
	buf[7] = byte(s.Length >> 8)
	return SetupPacketSize
}

// VendorHAL defines the Hardware Abstraction Layer interface for the
// ui_to_usb vendor device.
//
// The HAL provides the operations the firmware core needs from the
// surrounding platform: the USB controller (endpoint I/O, control transfer
// completion) and a monotonic millisecond clock. Platform ports implement
// this interface; the core never touches hardware registers directly.
//
// The control-transfer methods (ReadSetup, Reply, Ack, Stall) may be driven
// from a different execution context than the bulk path. The core keeps the
// two paths on disjoint state, so implementations only need to serialize
// access to their own hardware registers.
type VendorHAL interface {
	// Init initializes the USB controller hardware.
	// The context can be used to cancel initialization.
	Init(ctx context.Context) error

	// Start enables the USB controller and attaches to the bus.
	// After Start returns, the device should be visible to the host.
	Start() error

	// Stop detaches from the bus and disables the USB controller.
	Stop() error

	// NowMS returns a monotonic millisecond counter. The counter is
	// expected to wrap during normal device lifetime; callers must use
	// wrap-safe (unsigned) subtraction when comparing timestamps.
	NowMS() uint32

	// Mounted returns true once the host has configured the vendor
	// interface. Bulk data is only meaningful while mounted.
	Mounted() bool

	// ReadBulk reads the next packet pending on the bulk OUT endpoint
	// into buf. Blocks until data is available or the context is
	// cancelled. Returns the number of bytes read (1..len(buf)).
	ReadBulk(ctx context.Context, buf []byte) (int, error)

	// ReadSetup reads the next control transfer SETUP packet.
	// Blocks until a SETUP packet is available or the context is cancelled.
	// The caller provides the output structure to avoid allocation.
	ReadSetup(ctx context.Context, out *SetupPacket) error

	// Reply sends data for the data stage of a device-to-host control
	// transfer and completes the transfer.
	Reply(data []byte) error

	// Ack completes a control transfer with a zero-length status stage.
	Ack() error

	// Stall stalls the control endpoint, signaling a request error
	// to the host.
	Stall() error
}

package device

import (
	"encoding/binary"
	"fmt"

	"github.com/betz-engineering/uitousb/pkg"
)

// Request type masks (USB 2.0 Spec Table 9-2).
const (
	RequestTypeDirectionMask = 0x80 // Direction bit mask
	RequestTypeTypeMask      = 0x60 // Type bits mask
	RequestTypeRecipientMask = 0x1F // Recipient bits mask
)

// Request type direction values.
const (
	RequestDirectionHostToDevice = 0x00 // Host to device
	RequestDirectionDeviceToHost = 0x80 // Device to host
)

// Request type values.
const (
	RequestTypeStandard = 0x00 // Standard request
	RequestTypeClass    = 0x20 // Class-specific request
	RequestTypeVendor   = 0x40 // Vendor-specific request
)

// Request recipient values.
const (
	RequestRecipientDevice    = 0x00 // Device recipient
	RequestRecipientInterface = 0x01 // Interface recipient
	RequestRecipientEndpoint  = 0x02 // Endpoint recipient
)

// Combined bmRequestType values for the vendor commands this device speaks.
// These match the REQ constants of the host library.
const (
	RequestTypeVendorOut = RequestDirectionHostToDevice | RequestTypeVendor | RequestRecipientDevice // 0x40
	RequestTypeVendorIn  = RequestDirectionDeviceToHost | RequestTypeVendor | RequestRecipientDevice // 0xC0
)

// Stage identifies the phase of a control transfer being processed.
// All command work happens at the SETUP stage; the data and status stages
// are completed by the USB runtime.
type Stage uint8

// Control transfer stages.
const (
	StageSetup Stage = iota // SETUP packet received
	StageData               // Data stage in progress
	StageAck                // Status (handshake) stage
)

// String returns a human-readable stage name.
func (s Stage) String() string {
	switch s {
	case StageSetup:
		return "setup"
	case StageData:
		return "data"
	case StageAck:
		return "ack"
	default:
		return "unknown"
	}
}

// SetupPacket represents an 8-byte USB SETUP packet.
type SetupPacket struct {
	RequestType uint8  // bmRequestType: direction, type, recipient
	Request     uint8  // bRequest: specific request code
	Value       uint16 // wValue: request-specific parameter
	Index       uint16 // wIndex: request-specific index
	Length      uint16 // wLength: number of bytes to transfer
}

// SetupPacketSize is the size of a USB SETUP packet in bytes.
const SetupPacketSize = 8

// ParseSetupPacket parses a setup packet from 8 bytes into out.
// Returns an error if the data is too short.
func ParseSetupPacket(data []byte, out *SetupPacket) error {
	if len(data) < SetupPacketSize {
		return pkg.ErrSetupPacketTooShort
	}
	out.RequestType = data[0]
	out.Request = data[1]
	out.Value = binary.LittleEndian.Uint16(data[2:4])
	out.Index = binary.LittleEndian.Uint16(data[4:6])
	out.Length = binary.LittleEndian.Uint16(data[6:8])
	return nil
}

// MarshalTo serializes the setup packet to buf.
// Returns the number of bytes written (always 8 if buf is large enough).
func (s *SetupPacket) MarshalTo(buf []byte) int {
	if len(buf) < SetupPacketSize {
		return 0
	}
	buf[0] = s.RequestType
	buf[1] = s.Request
	binary.LittleEndian.PutUint16(buf[2:4], s.Value)
	binary.LittleEndian.PutUint16(buf[4:6], s.Index)
	binary.LittleEndian.PutUint16(buf[6:8], s.Length)
	return SetupPacketSize
}

// Direction returns the transfer direction.
func (s *SetupPacket) Direction() uint8 {
	return s.RequestType & RequestTypeDirectionMask
}

// IsDeviceToHost returns true if this is a device-to-host transfer.
func (s *SetupPacket) IsDeviceToHost() bool {
	return s.Direction() == RequestDirectionDeviceToHost
}

// IsHostToDevice returns true if this is a host-to-device transfer.
func (s *SetupPacket) IsHostToDevice() bool {
	return s.Direction() == RequestDirectionHostToDevice
}

// Type returns the request type (Standard, Class, or Vendor).
func (s *SetupPacket) Type() uint8 {
	return s.RequestType & RequestTypeTypeMask
}

// IsStandard returns true if this is a standard request.
func (s *SetupPacket) IsStandard() bool {
	return s.Type() == RequestTypeStandard
}

// IsVendor returns true if this is a vendor-specific request.
func (s *SetupPacket) IsVendor() bool {
	return s.Type() == RequestTypeVendor
}

// Recipient returns the request recipient.
func (s *SetupPacket) Recipient() uint8 {
	return s.RequestType & RequestTypeRecipientMask
}

// HasDataStage returns true if the transfer carries a data stage.
func (s *SetupPacket) HasDataStage() bool {
	return s.Length > 0
}

// String returns a human-readable representation of the setup packet.
func (s *SetupPacket) String() string {
	dir := "OUT"
	if s.IsDeviceToHost() {
		dir = "IN"
	}
	reqType := "Standard"
	switch s.Type() {
	case RequestTypeClass:
		reqType = "Class"
	case RequestTypeVendor:
		reqType = "Vendor"
	}
	return fmt.Sprintf("SETUP[%s %s] Request=0x%02X Value=0x%04X Index=0x%04X Length=%d",
		dir, reqType, s.Request, s.Value, s.Index, s.Length)
}

// VendorInSetup initializes out as a device-to-host vendor request.
func VendorInSetup(out *SetupPacket, request uint8, value uint16, length uint16) {
	out.RequestType = RequestTypeVendorIn
	out.Request = request
	out.Value = value
	out.Index = 0
	out.Length = length
}

// VendorOutSetup initializes out as a host-to-device vendor request.
func VendorOutSetup(out *SetupPacket, request uint8, value uint16) {
	out.RequestType = RequestTypeVendorOut
	out.Request = request
	out.Value = value
	out.Index = 0
	out.Length = 0
}

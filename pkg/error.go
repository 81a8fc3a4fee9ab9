package pkg

import "errors"

// Protocol and state errors.
var (
	// ErrStall indicates a control request was rejected with a protocol stall.
	ErrStall = errors.New("control request stalled")

	// ErrSetupPacketTooShort indicates the setup packet data is too short.
	ErrSetupPacketTooShort = errors.New("setup packet too short")

	// ErrBufferTooSmall indicates the provided buffer is too small.
	ErrBufferTooSmall = errors.New("buffer too small")

	// ErrAlreadyRunning indicates the stack is already running.
	ErrAlreadyRunning = errors.New("already running")

	// ErrClosed indicates the transport has been closed.
	ErrClosed = errors.New("transport closed")

	// ErrFrameSize indicates a framebuffer payload of the wrong length.
	ErrFrameSize = errors.New("framebuffer must be exactly one frame")

	// ErrNoDevice indicates no matching device is present.
	ErrNoDevice = errors.New("device not present")

	// ErrDescriptorTooShort indicates the descriptor data is too short.
	ErrDescriptorTooShort = errors.New("descriptor too short")

	// ErrDescriptorTypeMismatch indicates the descriptor type does not match expected.
	ErrDescriptorTypeMismatch = errors.New("descriptor type mismatch")
)

// Package loopback implements an in-memory HAL for the ui_to_usb device
// stack.
//
// It is intended for tests and simulation: the same [HAL] value exposes
// the device-side [hal.VendorHAL] interface to the stack and a host-side
// API (SendStream, ControlTransfer, AdvanceClock) to the test driving it.
// No hardware, kernel driver, or filesystem plumbing is involved.
//
// # Deterministic Time
//
// The millisecond clock is simulated and only advances through
// [HAL.AdvanceClock]. Frame resynchronization behavior, which depends on
// inter-packet gaps, can therefore be exercised exactly:
//
//	h := loopback.New()
//	stack := device.NewStack(dev, h, sink, board)
//	stack.Start(ctx)
//
//	h.SendStream(frame)        // packets arrive at the current time
//	h.AdvanceClock(10)         // silence longer than the resync timeout
//	h.SendStream(nextFrame)    // first packet starts a new frame
//
// # Control Transfers
//
// ControlTransfer blocks until the stack's control loop has produced a
// verdict, mirroring the synchronous SETUP-stage handling on hardware. A
// stalled request is reported as [pkg.ErrStall], matching what a libusb
// host observes as a pipe error.
package loopback

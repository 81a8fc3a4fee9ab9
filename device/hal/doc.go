// Package hal defines the Hardware Abstraction Layer interface for the
// ui_to_usb firmware core.
//
// The HAL is the boundary between the protocol engines in
// [github.com/betz-engineering/uitousb/device] and the platform: the USB
// controller driver supplies SETUP packets and bulk OUT data, consumes
// control transfer completions (reply, ack, stall), and provides the
// monotonic millisecond clock used for frame resynchronization.
//
// Everything on the device side of this interface is portable Go with no
// hardware knowledge. Platform ports (a microcontroller USB peripheral, or
// the in-memory loopback in
// [github.com/betz-engineering/uitousb/device/hal/loopback]) implement
// [VendorHAL] to bind the core to a concrete transport.
//
// # Zero-Allocation Design
//
// The interface follows caller-provided-buffer conventions so ports can run
// without heap allocation in the data path:
//
//   - ReadBulk fills a caller buffer and returns a length
//   - ReadSetup fills a caller-provided SetupPacket
//
// # Clock
//
// NowMS is a free-running uint32 millisecond counter. It wraps roughly
// every 49.7 days; all comparisons against it must use unsigned
// subtraction so the wrap is transparent.
package hal

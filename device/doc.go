// Package device implements the core of the ui_to_usb firmware: the two
// protocol engines that bridge a host computer to the UI peripheral.
//
// It is platform-agnostic and interacts with hardware via the
// [hal.VendorHAL] interface defined in
// [github.com/betz-engineering/uitousb/device/hal]. The HAL supplies bulk
// OUT packets, SETUP packets, control transfer completion, and the
// monotonic clock; everything else here is portable Go.
//
// # Architecture
//
//   - [FrameAssembler] reassembles the unstructured bulk byte stream into
//     fixed 8192-byte framebuffer updates using an idle-timeout heuristic;
//     there is no in-band framing
//   - [CommandDispatcher] maps vendor control requests to UI-state actions
//     and produces a [Verdict] (ack, stall, or data reply)
//   - [Device] carries the static identity: descriptors and version
//   - [Stack] binds the engines to a HAL and runs the bulk and control
//     paths
//
// The two engines share no state and never block each other. Within the
// bulk path, ingestion is strictly serialized; the control path runs
// synchronously per transfer. This matches the poll-task/interrupt split
// of a microcontroller build, where the control handler may preempt the
// poll loop but touches only UI accessors.
//
// # Error Model
//
// Exactly two failure surfaces exist, deliberately asymmetric:
//
//   - Unknown control requests stall the control endpoint, a loud,
//     host-visible transfer error
//   - Bulk bytes past frame capacity are dropped silently with no signal
//     to either side
//
// Neither failure leaves residual state: a dropped byte or a stalled
// command has no effect beyond the current frame or transfer.
//
// # Zero-Allocation Design
//
// Following the usual embedded conventions, serialization uses
// MarshalTo(buf), parsers fill caller-provided structs, and the hot loops
// reuse fixed buffers.
package device

package device

import (
	"github.com/betz-engineering/uitousb/pkg"
)

// Vendor request codes (bRequest of a vendor control transfer).
const (
	RequestReset          = 0x10 // Reinitialize the UI subsystem
	RequestVersion        = 0x11 // Read the firmware version string
	RequestButtonsEncoder = 0x20 // Read button flags + consume encoder delta
	RequestSetLEDs        = 0x21 // Set LED bitmask from wValue
	// 0x28/0x29 are reserved for the aux IO expander on a future board rev.
	RequestSetBrightness = 0x31 // Set OLED brightness from wValue, clamped
	RequestSetInverted   = 0x32 // Set OLED inversion flag from wValue
)

// UIPort is the set of UI-state accessors the command dispatcher drives.
//
// The dispatcher owns no persistent state; every command resolves to one or
// two calls on this interface. Implementations own serialization: the
// dispatcher may run in a different execution context (interrupt on real
// hardware) than the rest of the firmware.
type UIPort interface {
	// Reinit reinitializes the UI subsystem (display, LEDs, input state).
	Reinit()

	// SetLEDs applies an LED bitmask.
	SetLEDs(mask uint16)

	// ButtonFlags returns the current button flag byte. Event bits
	// (short/long press) accumulated since the previous read are
	// consumed by the read.
	ButtonFlags() uint8

	// ConsumeEncoderTicks returns encoder ticks accumulated since the
	// previous call and atomically zeros the accumulator. A second
	// immediate read without intervening motion must return 0.
	ConsumeEncoderTicks() int8

	// SetBrightness applies a display brightness level, 0..MaxBrightness.
	SetBrightness(level uint8)

	// SetInverted applies the display inversion flag.
	SetInverted(inverted bool)

	// Version returns the firmware version bytes (ASCII, no terminator).
	Version() []byte
}

// VerdictKind classifies the outcome of a control request.
type VerdictKind uint8

// Verdict kinds.
const (
	VerdictAck   VerdictKind = iota // Complete with an empty status stage
	VerdictStall                    // Stall the control endpoint
	VerdictReply                    // Send reply bytes in the data stage
)

// String returns a human-readable verdict name.
func (k VerdictKind) String() string {
	switch k {
	case VerdictAck:
		return "ack"
	case VerdictStall:
		return "stall"
	case VerdictReply:
		return "reply"
	default:
		return "unknown"
	}
}

// Verdict is the dispatcher's answer to one control transfer. It is
// consumed immediately by the USB runtime to drive the next transfer
// stage and is never persisted.
type Verdict struct {
	Kind VerdictKind
	Data []byte // Reply payload, valid only for VerdictReply
}

// Ack returns an acknowledgment verdict (status stage, no data).
func Ack() Verdict {
	return Verdict{Kind: VerdictAck}
}

// Stall returns a protocol stall verdict.
func Stall() Verdict {
	return Verdict{Kind: VerdictStall}
}

// Reply returns a data reply verdict. The payload must remain valid until
// the runtime has consumed it.
func Reply(data []byte) Verdict {
	return Verdict{Kind: VerdictReply, Data: data}
}

// InputReport is the 2-byte payload of a RequestButtonsEncoder reply.
// It is a point-in-time snapshot, produced on demand and never queued.
type InputReport struct {
	ButtonFlags  uint8 // Button state and event bits
	EncoderDelta int8  // Signed ticks since the previous read
}

// InputReportSize is the wire size of an input report in bytes.
const InputReportSize = 2

// MarshalTo serializes the report to buf: byte 0 is the button flags,
// byte 1 the encoder delta as a two's-complement octet.
// Returns the number of bytes written, or 0 if buf is too small.
func (r *InputReport) MarshalTo(buf []byte) int {
	if len(buf) < InputReportSize {
		return 0
	}
	buf[0] = r.ButtonFlags
	buf[1] = byte(r.EncoderDelta)
	return InputReportSize
}

// ParseInputReport parses a report from data into out.
// Returns an error if the data is too short.
func ParseInputReport(data []byte, out *InputReport) error {
	if len(data) < InputReportSize {
		return pkg.ErrBufferTooSmall
	}
	out.ButtonFlags = data[0]
	out.EncoderDelta = int8(data[1])
	return nil
}

// CommandDispatcher maps vendor control requests to UI-state actions.
//
// It is a synchronous request/response machine: every HandleSetup call
// completes before the next control event is processed, and no state
// survives a request beyond the side effects applied through [UIPort].
type CommandDispatcher struct {
	ui UIPort

	// replyBuf backs input report replies so the hot path does not
	// allocate.
	replyBuf [InputReportSize]byte
}

// NewCommandDispatcher creates a dispatcher driving the given UI port.
func NewCommandDispatcher(ui UIPort) *CommandDispatcher {
	return &CommandDispatcher{ui: ui}
}

// HandleSetup processes one control transfer event.
//
// Only the SETUP stage carries work; the data and status stages of a
// transfer already answered at SETUP succeed as no-ops. Unknown request
// codes stall rather than ack silently, giving the host a distinguishable
// failure instead of a quiet no-op.
func (d *CommandDispatcher) HandleSetup(stage Stage, setup *SetupPacket) Verdict {
	if stage != StageSetup {
		return Ack()
	}

	switch setup.Request {
	case RequestReset:
		d.ui.Reinit()
		return Ack()

	case RequestVersion:
		return Reply(d.ui.Version())

	case RequestButtonsEncoder:
		report := InputReport{
			ButtonFlags:  d.ui.ButtonFlags(),
			EncoderDelta: d.ui.ConsumeEncoderTicks(),
		}
		n := report.MarshalTo(d.replyBuf[:])
		return Reply(d.replyBuf[:n])

	case RequestSetLEDs:
		d.ui.SetLEDs(setup.Value)
		return Ack()

	case RequestSetBrightness:
		// Saturate rather than reject: out-of-range but otherwise
		// well-formed requests need no host-side error path.
		level := setup.Value
		if level > MaxBrightness {
			level = MaxBrightness
		}
		d.ui.SetBrightness(uint8(level))
		return Ack()

	case RequestSetInverted:
		d.ui.SetInverted(setup.Value != 0)
		return Ack()

	default:
		pkg.LogDebug(pkg.ComponentCommand, "unknown vendor request",
			"request", setup.Request,
			"value", setup.Value)
		return Stall()
	}
}

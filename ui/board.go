// Package ui owns the peripheral's user-interface state: LED mask,
// display brightness and inversion, button press tracking, and the
// encoder tick accumulator.
//
// [Board] implements the device.UIPort accessor contract. The command
// dispatcher may call accessors from a different execution context than
// the input scanner (on hardware the control handler runs at interrupt
// priority), so the board serializes all state behind a mutex; the
// protocol core stays lock-free.
package ui

import (
	"sync"

	"github.com/betz-engineering/uitousb/device"
	"github.com/betz-engineering/uitousb/pkg"
)

var _ device.UIPort = (*Board)(nil)

// Button flag bits reported by the BTNS_ENC input report. State bits
// reflect the instantaneous electrical state; short/long bits are events
// accumulated since the previous read and are consumed by the read.
const (
	FlagBtn0State = 1 << 0
	FlagBtn1State = 1 << 1
	FlagBtn0Short = 1 << 2
	FlagBtn1Short = 1 << 3
	FlagBtn0Long  = 1 << 4
	FlagBtn1Long  = 1 << 5
)

// NumButtons is the number of physical buttons on the board.
const NumButtons = 2

// LongPressMS is how long a button must stay held to register a long
// press instead of a short one.
const LongPressMS = 500

// Display is the slice of the OLED driver the UI layer controls.
// Framebuffer data bypasses this interface entirely; it flows from the
// frame assembler straight to the display sink.
type Display interface {
	// Init (re)initializes the panel into its default state.
	Init() error

	// SetBrightness applies a brightness level, 0 (off) to 16 (full).
	SetBrightness(level uint8) error

	// SetInverted enables or disables display inversion.
	SetInverted(inverted bool) error
}

// LEDWriter applies an LED bitmask to the board's indicator LEDs.
// The mask packs two RGB LEDs: bits 0..2 are LED A (R, G, B), bits 4..6
// are LED B.
type LEDWriter interface {
	SetLEDs(mask uint16)
}

// LEDFunc adapts a function to the LEDWriter interface.
type LEDFunc func(mask uint16)

// SetLEDs calls f(mask).
func (f LEDFunc) SetLEDs(mask uint16) { f(mask) }

// buttonState tracks one button between scans.
type buttonState struct {
	pressed   bool
	pressedAt uint32
	longFired bool
}

// Board is the UI-state aggregate. It implements device.UIPort.
type Board struct {
	mu      sync.Mutex
	display Display
	leds    LEDWriter
	version []byte

	buttons [NumButtons]buttonState
	events  uint8 // pending short/long flag bits
	encoder int32 // accumulated ticks since the last consuming read

	ledMask    uint16
	brightness uint8
	inverted   bool
}

// NewBoard creates a board driving the given display and LEDs.
// leds may be nil if the build has no indicator LEDs.
func NewBoard(display Display, leds LEDWriter, version []byte) *Board {
	return &Board{
		display:    display,
		leds:       leds,
		version:    version,
		brightness: 16,
	}
}

// Reinit restores the UI subsystem to its power-on state: panel
// reinitialized, full brightness, inversion off, LEDs dark, input
// accumulators cleared.
func (b *Board) Reinit() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.display.Init(); err != nil {
		pkg.LogWarn(pkg.ComponentUI, "display reinit failed", "error", err)
	}
	b.brightness = 16
	b.inverted = false
	b.ledMask = 0
	if b.leds != nil {
		b.leds.SetLEDs(0)
	}
	b.events = 0
	b.encoder = 0
	for i := range b.buttons {
		b.buttons[i] = buttonState{}
	}

	pkg.LogInfo(pkg.ComponentUI, "ui reinitialized")
}

// SetLEDs applies and remembers an LED bitmask.
func (b *Board) SetLEDs(mask uint16) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ledMask = mask
	if b.leds != nil {
		b.leds.SetLEDs(mask)
	}
}

// LEDMask returns the last applied LED bitmask.
func (b *Board) LEDMask() uint16 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ledMask
}

// ButtonFlags returns the current button flag byte. Pending short/long
// event bits are consumed; state bits reflect the buttons as they are
// now.
func (b *Board) ButtonFlags() uint8 {
	b.mu.Lock()
	defer b.mu.Unlock()

	flags := b.events
	b.events = 0
	if b.buttons[0].pressed {
		flags |= FlagBtn0State
	}
	if b.buttons[1].pressed {
		flags |= FlagBtn1State
	}
	return flags
}

// ConsumeEncoderTicks returns the ticks accumulated since the previous
// call and zeros the accumulator. Accumulations beyond the int8 range
// saturate; the host polls every GUI frame, so saturation means it has
// fallen far behind and exact counts no longer matter.
func (b *Board) ConsumeEncoderTicks() int8 {
	b.mu.Lock()
	defer b.mu.Unlock()

	ticks := b.encoder
	b.encoder = 0
	if ticks > 127 {
		ticks = 127
	} else if ticks < -128 {
		ticks = -128
	}
	return int8(ticks)
}

// SetBrightness applies a display brightness level.
func (b *Board) SetBrightness(level uint8) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.brightness = level
	if err := b.display.SetBrightness(level); err != nil {
		pkg.LogWarn(pkg.ComponentUI, "set brightness failed",
			"level", level,
			"error", err)
	}
}

// Brightness returns the last applied brightness level.
func (b *Board) Brightness() uint8 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.brightness
}

// SetInverted applies the display inversion flag.
func (b *Board) SetInverted(inverted bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inverted = inverted
	if err := b.display.SetInverted(inverted); err != nil {
		pkg.LogWarn(pkg.ComponentUI, "set inverted failed",
			"inverted", inverted,
			"error", err)
	}
}

// Inverted returns the last applied inversion flag.
func (b *Board) Inverted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inverted
}

// Version returns the firmware version bytes.
func (b *Board) Version() []byte {
	return b.version
}

// Input Scanning
//
// The input side is driven by the platform's poll loop: SetButton on
// electrical edges (already debounced by the caller or by hardware),
// Tick periodically so long presses fire while the button is still held,
// AddEncoderTicks from the quadrature decoder.

// SetButton records a button edge at monotonic time nowMS.
func (b *Board) SetButton(index int, pressed bool, nowMS uint32) {
	if index < 0 || index >= NumButtons {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	btn := &b.buttons[index]
	if pressed == btn.pressed {
		return
	}

	if pressed {
		btn.pressed = true
		btn.pressedAt = nowMS
		btn.longFired = false
		return
	}

	// Release: a hold shorter than the long-press threshold is a short
	// press. The long event, if any, already fired from Tick.
	btn.pressed = false
	if !btn.longFired && nowMS-btn.pressedAt < LongPressMS {
		b.events |= shortFlag(index)
	}
}

// Tick advances hold tracking; long-press events fire here once the
// threshold elapses, without waiting for the release.
func (b *Board) Tick(nowMS uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.buttons {
		btn := &b.buttons[i]
		if btn.pressed && !btn.longFired && nowMS-btn.pressedAt >= LongPressMS {
			btn.longFired = true
			b.events |= longFlag(i)
		}
	}
}

// AddEncoderTicks accumulates encoder motion. delta is signed; the sign
// encodes rotation direction.
func (b *Board) AddEncoderTicks(delta int32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.encoder += delta
}

func shortFlag(index int) uint8 {
	if index == 0 {
		return FlagBtn0Short
	}
	return FlagBtn1Short
}

func longFlag(index int) uint8 {
	if index == 0 {
		return FlagBtn0Long
	}
	return FlagBtn1Long
}

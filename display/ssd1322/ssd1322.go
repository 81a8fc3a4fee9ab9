// Package ssd1322 drives a 256x64 4-bit grayscale OLED panel on the
// SSD1322 controller over 4-wire SPI.
//
// The device writes the panel two ways: command traffic from the UI
// layer (brightness, inversion, reinit) and raw framebuffer streaming
// from the frame assembler. Streaming deliberately skips any staging
// buffer; each bulk chunk goes to the panel RAM as it arrives, with the
// RAM address window re-armed on the first chunk of every frame.
package ssd1322

import (
	"time"

	"tinygo.org/x/drivers"

	"github.com/betz-engineering/uitousb/device"
	"github.com/betz-engineering/uitousb/pkg"
	"github.com/betz-engineering/uitousb/ui"
)

// Panel geometry. 256 columns at 4 bits per pixel is 128 bytes per row,
// addressed as 64 controller columns of 4 pixels each.
const (
	Width  = 256
	Height = 64

	colStart = 0x1C
	colEnd   = 0x5B
	rowStart = 0x00
	rowEnd   = 0x3F
)

// SSD1322 command set, the subset this driver uses.
const (
	cmdEnableGrayscale  = 0x00
	cmdSetColumnAddress = 0x15
	cmdWriteRAM         = 0x5C
	cmdSetRowAddress    = 0x75
	cmdSetRemap         = 0xA0
	cmdStartLine        = 0xA1
	cmdDisplayOffset    = 0xA2
	cmdNormalDisplay    = 0xA6
	cmdInvertDisplay    = 0xA7
	cmdFunctionSelect   = 0xAB
	cmdDisplayOff       = 0xAE
	cmdDisplayOn        = 0xAF
	cmdPhaseLength      = 0xB1
	cmdClockDivider     = 0xB3
	cmdSecondPrecharge  = 0xB6
	cmdPrechargeVoltage = 0xBB
	cmdVCOMH            = 0xBE
	cmdContrast         = 0xC1
	cmdMasterContrast   = 0xC7
	cmdMultiplexRatio   = 0xCA
	cmdCommandLock      = 0xFD
)

// PinFunc drives a single GPIO line.
type PinFunc func(high bool)

// Device is an SSD1322 driver. It implements the frame sink consumed by
// the frame assembler.
type Device struct {
	bus   drivers.SPI
	dc    PinFunc
	cs    PinFunc
	reset PinFunc

	buf [2]byte
}

var _ device.DisplaySink = (*Device)(nil)
var _ ui.Display = (*Device)(nil)

// New creates a driver on the given SPI bus and control lines.
// reset may be nil when the reset line is strapped in hardware.
func New(bus drivers.SPI, dc, cs, reset PinFunc) *Device {
	return &Device{
		bus:   bus,
		dc:    dc,
		cs:    cs,
		reset: reset,
	}
}

// Init resets the controller and programs the panel configuration,
// leaving the display on at full contrast with inversion off. The
// panel RAM is not cleared; the host pushes a frame immediately after
// reset.
func (d *Device) Init() error {
	if d.reset != nil {
		d.reset(false)
		time.Sleep(10 * time.Millisecond)
		d.reset(true)
		time.Sleep(100 * time.Millisecond)
	}

	steps := []struct {
		cmd  uint8
		args []byte
	}{
		{cmdCommandLock, []byte{0x12}}, // unlock
		{cmdDisplayOff, nil},
		{cmdClockDivider, []byte{0x91}},
		{cmdMultiplexRatio, []byte{0x3F}},
		{cmdDisplayOffset, []byte{0x00}},
		{cmdStartLine, []byte{0x00}},
		{cmdSetRemap, []byte{0x14, 0x11}},
		{cmdFunctionSelect, []byte{0x01}}, // internal VDD
		{cmdContrast, []byte{0xFF}},
		{cmdMasterContrast, []byte{0x0F}},
		{cmdEnableGrayscale, nil},
		{cmdPhaseLength, []byte{0xE2}},
		{cmdPrechargeVoltage, []byte{0x1F}},
		{cmdSecondPrecharge, []byte{0x08}},
		{cmdVCOMH, []byte{0x07}},
		{cmdNormalDisplay, nil},
		{cmdDisplayOn, nil},
	}
	for _, s := range steps {
		if err := d.command(s.cmd, s.args...); err != nil {
			return err
		}
	}

	pkg.LogInfo(pkg.ComponentDisplay, "panel initialized",
		"width", Width,
		"height", Height)
	return nil
}

// WriteFrame streams framebuffer bytes to the panel RAM. first marks
// the start of a frame and re-arms the RAM address window, so a resync
// or a reset upstream lands the next frame at the panel origin.
func (d *Device) WriteFrame(first bool, data []byte) {
	if first {
		if err := d.command(cmdSetColumnAddress, colStart, colEnd); err != nil {
			pkg.LogWarn(pkg.ComponentDisplay, "set column window failed", "error", err)
			return
		}
		if err := d.command(cmdSetRowAddress, rowStart, rowEnd); err != nil {
			pkg.LogWarn(pkg.ComponentDisplay, "set row window failed", "error", err)
			return
		}
		if err := d.command(cmdWriteRAM); err != nil {
			pkg.LogWarn(pkg.ComponentDisplay, "write RAM command failed", "error", err)
			return
		}
	}
	if len(data) == 0 {
		return
	}
	if err := d.data(data); err != nil {
		pkg.LogWarn(pkg.ComponentDisplay, "frame data write failed",
			"bytes", len(data),
			"error", err)
	}
}

// SetBrightness maps a 0..16 level onto the panel: 0 blanks the display
// entirely, everything else turns it on and scales the contrast.
func (d *Device) SetBrightness(level uint8) error {
	if level == 0 {
		return d.command(cmdDisplayOff)
	}
	if level > device.MaxBrightness {
		level = device.MaxBrightness
	}
	if err := d.command(cmdDisplayOn); err != nil {
		return err
	}
	return d.command(cmdContrast, uint8(uint16(level)*16-1))
}

// SetInverted switches the panel between normal and inverted rendering.
func (d *Device) SetInverted(inverted bool) error {
	if inverted {
		return d.command(cmdInvertDisplay)
	}
	return d.command(cmdNormalDisplay)
}

func (d *Device) command(cmd uint8, args ...uint8) error {
	d.cs(false)
	defer d.cs(true)

	d.dc(false)
	d.buf[0] = cmd
	if err := d.bus.Tx(d.buf[:1], nil); err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	d.dc(true)
	return d.bus.Tx(args, nil)
}

func (d *Device) data(buf []byte) error {
	d.cs(false)
	defer d.cs(true)

	d.dc(true)
	return d.bus.Tx(buf, nil)
}

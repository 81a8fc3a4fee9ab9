// Package host is the PC-side client for the UI peripheral. It locates
// the board over libusb, issues the vendor control requests the device
// understands, and streams framebuffers to the bulk endpoint.
package host

import (
	"fmt"
	"image"

	"github.com/google/gousb"

	"github.com/betz-engineering/uitousb/device"
	"github.com/betz-engineering/uitousb/pkg"
)

// LED mask bits. Two RGB LEDs occupy the low byte, one nibble each.
const (
	LEDARed   = 1 << 0
	LEDAGreen = 1 << 1
	LEDABlue  = 1 << 2
	LEDBRed   = 1 << 4
	LEDBGreen = 1 << 5
	LEDBBlue  = 1 << 6
)

// Client is an open connection to one UI board.
type Client struct {
	ctx     *gousb.Context
	dev     *gousb.Device
	intf    *gousb.Interface
	release func()
	out     *gousb.OutEndpoint

	ledMask uint16
}

// Open finds the first attached UI board and claims its vendor
// interface. The VID/PID pair is a shared hobbyist allocation, so
// candidates are confirmed by their manufacturer and product strings.
func Open() (*Client, error) {
	ctx := gousb.NewContext()

	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == gousb.ID(device.VendorID) &&
			desc.Product == gousb.ID(device.ProductID)
	})
	if err != nil {
		// OpenDevices returns the devices it did open alongside the
		// error; close them before giving up.
		for _, d := range devs {
			d.Close()
		}
		ctx.Close()
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}

	var board *gousb.Device
	for _, d := range devs {
		if board == nil && isBoard(d) {
			board = d
			continue
		}
		d.Close()
	}
	if board == nil {
		ctx.Close()
		return nil, pkg.ErrNoDevice
	}

	if err := board.SetAutoDetach(true); err != nil {
		board.Close()
		ctx.Close()
		return nil, fmt.Errorf("detaching kernel driver: %w", err)
	}

	intf, release, err := board.DefaultInterface()
	if err != nil {
		board.Close()
		ctx.Close()
		return nil, fmt.Errorf("claiming interface: %w", err)
	}

	out, err := intf.OutEndpoint(device.BulkOutEndpoint)
	if err != nil {
		release()
		board.Close()
		ctx.Close()
		return nil, fmt.Errorf("opening bulk endpoint: %w", err)
	}

	serial, _ := board.SerialNumber()
	pkg.LogInfo(pkg.ComponentHost, "board opened", "serial", serial)

	return &Client{
		ctx:     ctx,
		dev:     board,
		intf:    intf,
		release: release,
		out:     out,
	}, nil
}

func isBoard(d *gousb.Device) bool {
	manufacturer, err := d.Manufacturer()
	if err != nil || manufacturer != device.ManufacturerString {
		return false
	}
	product, err := d.Product()
	if err != nil || product != device.ProductString {
		return false
	}
	return true
}

// Close releases the interface and closes the device.
func (c *Client) Close() error {
	if c.release != nil {
		c.release()
		c.release = nil
	}
	err := c.dev.Close()
	c.ctx.Close()
	return err
}

// Serial returns the board's serial number string.
func (c *Client) Serial() (string, error) {
	return c.dev.SerialNumber()
}

// Reset reinitializes the board's UI subsystem: display, LEDs, and
// input accumulators return to their power-on defaults.
func (c *Client) Reset() error {
	return c.vendorOut(device.RequestReset, 0)
}

// FirmwareVersion reads the firmware version string.
func (c *Client) FirmwareVersion() (string, error) {
	buf := make([]byte, 64)
	n, err := c.vendorIn(device.RequestVersion, buf)
	if err != nil {
		return "", err
	}
	return string(buf[:n]), nil
}

// Inputs reads the button flags and the encoder delta accumulated since
// the previous read. Reading consumes the delta and any pending press
// events, so poll from a single goroutine.
func (c *Client) Inputs() (device.InputReport, error) {
	var report device.InputReport
	buf := make([]byte, device.InputReportSize)
	n, err := c.vendorIn(device.RequestButtonsEncoder, buf)
	if err != nil {
		return report, err
	}
	if err := device.ParseInputReport(buf[:n], &report); err != nil {
		return report, fmt.Errorf("input report: short read (%d bytes): %w", n, err)
	}
	return report, nil
}

// SetLEDs applies a full LED bitmask.
func (c *Client) SetLEDs(mask uint16) error {
	if err := c.vendorOut(device.RequestSetLEDs, mask); err != nil {
		return err
	}
	c.ledMask = mask
	return nil
}

// SetLED updates one LED's RGB nibble, leaving the other LED unchanged.
// led is 0 or 1; rgb packs red, green, and blue into bits 0..2.
func (c *Client) SetLED(led int, rgb uint8) error {
	if led < 0 || led > 1 {
		return fmt.Errorf("led index %d out of range", led)
	}
	return c.SetLEDs(mergeLED(c.ledMask, led, rgb))
}

// mergeLED replaces one LED's nibble within a combined mask.
func mergeLED(mask uint16, led int, rgb uint8) uint16 {
	shift := uint(4 * led)
	mask &^= 0x0007 << shift
	mask |= uint16(rgb&0x07) << shift
	return mask
}

// SetBrightness sets the OLED brightness, 0 (off) to 16 (full). The
// firmware clamps higher values to 16.
func (c *Client) SetBrightness(level uint8) error {
	return c.vendorOut(device.RequestSetBrightness, uint16(level))
}

// SetInverted enables or disables display inversion.
func (c *Client) SetInverted(inverted bool) error {
	var value uint16
	if inverted {
		value = 1
	}
	return c.vendorOut(device.RequestSetInverted, value)
}

// SendFrame streams one full framebuffer to the display. data must be
// exactly one frame; the device relies on transfer pacing to delimit
// frames, so partial writes would shear the picture.
func (c *Client) SendFrame(data []byte) error {
	if len(data) != device.FrameSize {
		return fmt.Errorf("frame is %d bytes, expected %d: %w",
			len(data), device.FrameSize, pkg.ErrFrameSize)
	}
	n, err := c.out.Write(data)
	if err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	if n != device.FrameSize {
		return fmt.Errorf("short frame write (%d of %d bytes)", n, device.FrameSize)
	}
	return nil
}

// SendImage converts an image to the panel's format and sends it.
// The image is sampled at the panel size; see [Frame.FromImage].
func (c *Client) SendImage(img image.Image) error {
	var frame Frame
	frame.FromImage(img)
	return c.SendFrame(frame.Packed())
}

func (c *Client) vendorOut(request uint8, value uint16) error {
	_, err := c.dev.Control(
		gousb.ControlOut|gousb.ControlVendor|gousb.ControlDevice,
		request, value, 0, nil)
	if err != nil {
		return fmt.Errorf("vendor request 0x%02X: %w", request, err)
	}
	return nil
}

func (c *Client) vendorIn(request uint8, buf []byte) (int, error) {
	n, err := c.dev.Control(
		gousb.ControlIn|gousb.ControlVendor|gousb.ControlDevice,
		request, 0, 0, buf)
	if err != nil {
		return 0, fmt.Errorf("vendor request 0x%02X: %w", request, err)
	}
	return n, nil
}

package host

import (
	"image"
	"image/color"
	"testing"

	"github.com/betz-engineering/uitousb/device"
)

func TestFramePacking(t *testing.T) {
	var f Frame
	f.SetPixel(0, 0, 0x0F)
	f.SetPixel(1, 0, 0x03)
	f.SetPixel(255, 63, 0x0A)

	buf := f.Packed()
	if len(buf) != device.FrameSize {
		t.Fatalf("packed size = %d, expected %d", len(buf), device.FrameSize)
	}

	// Leftmost pixel rides the high nibble.
	if buf[0] != 0xF3 {
		t.Errorf("buf[0] = %#02x, expected 0xF3", buf[0])
	}
	// The bottom-right pixel lands in the low nibble of the last byte.
	if buf[device.FrameSize-1] != 0x0A {
		t.Errorf("last byte = %#02x, expected 0x0A", buf[device.FrameSize-1])
	}
}

func TestFrameSetPixel(t *testing.T) {
	var f Frame

	// Saturation and bounds.
	f.SetPixel(5, 5, 200)
	if f.Pixel(5, 5) != 0x0F {
		t.Errorf("Pixel(5,5) = %d, expected saturation to 15", f.Pixel(5, 5))
	}
	f.SetPixel(-1, 0, 0x0F)
	f.SetPixel(FrameWidth, 0, 0x0F)
	f.SetPixel(0, FrameHeight, 0x0F)
	if f.Pixel(-1, 0) != 0 || f.Pixel(FrameWidth, 0) != 0 {
		t.Error("out-of-range writes must be ignored")
	}
}

func TestFrameFill(t *testing.T) {
	var f Frame
	f.Fill(7)
	buf := f.Packed()
	for i, b := range buf {
		if b != 0x77 {
			t.Fatalf("buf[%d] = %#02x, expected 0x77", i, b)
		}
	}
}

func TestFrameFromImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 2))
	img.SetGray(0, 0, color.Gray{Y: 0xFF})
	img.SetGray(1, 0, color.Gray{Y: 0x80})
	img.SetGray(2, 1, color.Gray{Y: 0x10})

	var f Frame
	f.Fill(0x0F) // FromImage must clear first
	f.FromImage(img)

	for _, tt := range []struct {
		x, y   int
		expect uint8
	}{
		{0, 0, 0x0F},
		{1, 0, 0x08},
		{2, 1, 0x01},
		{3, 1, 0x00},
		{200, 50, 0x00}, // outside the source image
	} {
		if got := f.Pixel(tt.x, tt.y); got != tt.expect {
			t.Errorf("Pixel(%d,%d) = %#02x, expected %#02x", tt.x, tt.y, got, tt.expect)
		}
	}
}

func TestFrameFromImageCropped(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, FrameWidth*2, FrameHeight*2))
	for y := 0; y < FrameHeight*2; y++ {
		for x := 0; x < FrameWidth*2; x++ {
			img.SetGray(x, y, color.Gray{Y: 0xFF})
		}
	}

	var f Frame
	f.FromImage(img)

	if f.Pixel(FrameWidth-1, FrameHeight-1) != 0x0F {
		t.Error("in-panel pixel lost during crop")
	}
	// Must not panic or wrap; packing still yields a full frame.
	if len(f.Packed()) != device.FrameSize {
		t.Error("packed size changed after oversized source")
	}
}

func TestMergeLED(t *testing.T) {
	for _, tt := range []struct {
		name   string
		mask   uint16
		led    int
		rgb    uint8
		expect uint16
	}{
		{"set A", 0x0000, 0, 0x05, 0x0005},
		{"set B", 0x0000, 1, 0x07, 0x0070},
		{"replace A keeps B", 0x0075, 0, 0x02, 0x0072},
		{"replace B keeps A", 0x0075, 1, 0x00, 0x0005},
		{"rgb masked to 3 bits", 0x0000, 0, 0xFF, 0x0007},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if got := mergeLED(tt.mask, tt.led, tt.rgb); got != tt.expect {
				t.Errorf("mergeLED(%#04x, %d, %#02x) = %#04x, expected %#04x",
					tt.mask, tt.led, tt.rgb, got, tt.expect)
			}
		})
	}
}

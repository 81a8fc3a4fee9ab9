package host

import (
	"image"
	"image/color"

	"github.com/betz-engineering/uitousb/device"
)

// Panel dimensions in pixels.
const (
	FrameWidth  = 256
	FrameHeight = 64
)

// Frame is a host-side framebuffer: one 4-bit grayscale level per
// pixel, unpacked for easy drawing. Packed wire format is produced on
// demand.
type Frame struct {
	pix [FrameWidth * FrameHeight]uint8
}

// SetPixel sets one pixel to a 0..15 grayscale level. Out-of-range
// coordinates are ignored; levels above 15 saturate.
func (f *Frame) SetPixel(x, y int, level uint8) {
	if x < 0 || x >= FrameWidth || y < 0 || y >= FrameHeight {
		return
	}
	if level > 0x0F {
		level = 0x0F
	}
	f.pix[y*FrameWidth+x] = level
}

// Pixel returns the grayscale level at (x, y), or 0 outside the panel.
func (f *Frame) Pixel(x, y int) uint8 {
	if x < 0 || x >= FrameWidth || y < 0 || y >= FrameHeight {
		return 0
	}
	return f.pix[y*FrameWidth+x]
}

// Clear sets every pixel to black.
func (f *Frame) Clear() {
	f.Fill(0)
}

// Fill sets every pixel to the same level.
func (f *Frame) Fill(level uint8) {
	if level > 0x0F {
		level = 0x0F
	}
	for i := range f.pix {
		f.pix[i] = level
	}
}

// FromImage renders an image into the frame. Pixels are converted
// through the grayscale color model and quantized to 4 bits; images
// smaller than the panel leave the remainder black, larger images are
// cropped.
func (f *Frame) FromImage(img image.Image) {
	f.Clear()
	bounds := img.Bounds()
	w := min(bounds.Dx(), FrameWidth)
	h := min(bounds.Dy(), FrameHeight)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gray := color.GrayModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray)
			f.pix[y*FrameWidth+x] = gray.Y >> 4
		}
	}
}

// Packed returns the wire-format framebuffer: two pixels per byte, the
// leftmost pixel in the high nibble, rows top to bottom.
func (f *Frame) Packed() []byte {
	buf := make([]byte, device.FrameSize)
	f.PackTo(buf)
	return buf
}

// PackTo packs the frame into buf, which must hold a full frame.
func (f *Frame) PackTo(buf []byte) {
	_ = buf[device.FrameSize-1]
	for i := 0; i < len(f.pix); i += 2 {
		buf[i/2] = f.pix[i]<<4 | f.pix[i+1]&0x0F
	}
}

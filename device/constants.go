package device

// Framebuffer geometry. The SSD1322 panel is 256x64 at 4 bits per pixel,
// so one full frame is 8192 bytes.
const (
	FrameSize = 8192
)

// SyncTimeoutMS is the bulk-stream resynchronization timeout in
// milliseconds. If no bulk packet arrives for longer than this, the next
// packet is treated as the start of a new frame. There is no in-band frame
// marker; boundaries are inferred purely from this idle gap. The value must
// be short enough to fit inside the gap the host naturally leaves between
// framebuffer pushes, yet long enough to absorb ordinary USB scheduling
// jitter.
const SyncTimeoutMS = 4

// BulkMaxPacketSize is the wMaxPacketSize of the bulk OUT endpoint.
const BulkMaxPacketSize = 64

// USB identification. The device enumerates as vendor-specific class so no
// generic host driver binds; the host library claims it via libusb.
const (
	VendorID  = 0x16C0
	ProductID = 0x05DC

	// BulkOutEndpoint is the address of the host-to-device bulk endpoint
	// carrying framebuffer data.
	BulkOutEndpoint = 0x01
)

// Device identification strings.
const (
	ManufacturerString = "betz-engineering.ch"
	ProductString      = "ui_to_usb"
)

// MaxBrightness is the highest brightness level the OLED accepts.
// SET_BRIGHTNESS requests above this are saturated, not rejected.
const MaxBrightness = 16

package loopback

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/betz-engineering/uitousb/device/hal"
	"github.com/betz-engineering/uitousb/pkg"
)

// bulkQueueDepth is the number of bulk packets buffered between the host
// side and the device stack. Generous enough to hold a full frame.
const bulkQueueDepth = 256

// maxPacketSize mirrors the bulk endpoint's wMaxPacketSize.
const maxPacketSize = 64

// controlResult carries a control transfer outcome back to the host side.
type controlResult struct {
	stalled bool
	data    []byte
}

// HAL is an in-memory implementation of [hal.VendorHAL] with a host-side
// API on the same object. The device stack consumes one end; a test or
// simulation drives the other.
//
// Time does not pass on its own: the millisecond clock only moves when the
// host side calls [HAL.AdvanceClock], which makes resync timing fully
// deterministic.
type HAL struct {
	now     atomic.Uint32
	mounted atomic.Bool

	bulk    chan []byte
	setups  chan hal.SetupPacket
	results chan controlResult

	closeOnce sync.Once
	closed    chan struct{}
}

// New creates a loopback HAL.
func New() *HAL {
	return &HAL{
		bulk:    make(chan []byte, bulkQueueDepth),
		setups:  make(chan hal.SetupPacket),
		results: make(chan controlResult),
		closed:  make(chan struct{}),
	}
}

// Device Side

// Init initializes the loopback controller. Always succeeds.
func (h *HAL) Init(ctx context.Context) error {
	return nil
}

// Start attaches to the virtual bus. The loopback host configures the
// device immediately, so the interface mounts right away.
func (h *HAL) Start() error {
	h.mounted.Store(true)
	pkg.LogDebug(pkg.ComponentHAL, "loopback started")
	return nil
}

// Stop detaches from the virtual bus and releases blocked readers.
func (h *HAL) Stop() error {
	h.mounted.Store(false)
	h.closeOnce.Do(func() { close(h.closed) })
	return nil
}

// NowMS returns the simulated millisecond clock.
func (h *HAL) NowMS() uint32 {
	return h.now.Load()
}

// Mounted reports whether the virtual host has the interface configured.
func (h *HAL) Mounted() bool {
	return h.mounted.Load()
}

// ReadBulk blocks for the next bulk OUT packet.
func (h *HAL) ReadBulk(ctx context.Context, buf []byte) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-h.closed:
		return 0, pkg.ErrClosed
	case pkt := <-h.bulk:
		return copy(buf, pkt), nil
	}
}

// ReadSetup blocks for the next control transfer SETUP packet.
func (h *HAL) ReadSetup(ctx context.Context, out *hal.SetupPacket) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-h.closed:
		return pkg.ErrClosed
	case s := <-h.setups:
		*out = s
		return nil
	}
}

// Reply completes the pending control transfer with data.
func (h *HAL) Reply(data []byte) error {
	return h.complete(controlResult{data: append([]byte(nil), data...)})
}

// Ack completes the pending control transfer with an empty status stage.
func (h *HAL) Ack() error {
	return h.complete(controlResult{})
}

// Stall fails the pending control transfer.
func (h *HAL) Stall() error {
	return h.complete(controlResult{stalled: true})
}

func (h *HAL) complete(res controlResult) error {
	select {
	case <-h.closed:
		return pkg.ErrClosed
	case h.results <- res:
		return nil
	}
}

// Host Side

// AdvanceClock moves the simulated clock forward by ms milliseconds.
func (h *HAL) AdvanceClock(ms uint32) {
	h.now.Add(ms)
}

// SetConfigured flips the configured state of the virtual interface,
// as a host deconfiguring or re-enumerating the device would.
func (h *HAL) SetConfigured(configured bool) {
	h.mounted.Store(configured)
}

// SendPacket delivers one bulk OUT packet to the device. Packets longer
// than the endpoint's max packet size are rejected; use [HAL.SendStream]
// for arbitrary payloads.
func (h *HAL) SendPacket(data []byte) error {
	if len(data) > maxPacketSize {
		return pkg.ErrBufferTooSmall
	}
	pkt := append([]byte(nil), data...)
	select {
	case <-h.closed:
		return pkg.ErrClosed
	case h.bulk <- pkt:
		return nil
	}
}

// SendStream splits data into max-packet-size bulk packets and delivers
// them back to back, the way a host controller schedules a large bulk
// write.
func (h *HAL) SendStream(data []byte) error {
	for len(data) > 0 {
		n := len(data)
		if n > maxPacketSize {
			n = maxPacketSize
		}
		if err := h.SendPacket(data[:n]); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// ControlTransfer issues one control transfer and waits for the device's
// verdict. A device stall surfaces as [pkg.ErrStall]; otherwise the reply
// payload (nil for plain acknowledgments) is returned.
func (h *HAL) ControlTransfer(ctx context.Context, setup *hal.SetupPacket) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.closed:
		return nil, pkg.ErrClosed
	case h.setups <- *setup:
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.closed:
		return nil, pkg.ErrClosed
	case res := <-h.results:
		if res.stalled {
			return nil, pkg.ErrStall
		}
		return res.data, nil
	}
}

// Compile-time interface check
var _ hal.VendorHAL = (*HAL)(nil)

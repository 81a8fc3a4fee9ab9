package device

import (
	"github.com/betz-engineering/uitousb/pkg"
)

// DisplaySink receives framebuffer spans as they arrive from the host.
//
// first is true when data begins a new frame; implementations use it to
// rewind their write address before streaming the span. The sink must not
// retain data after the call returns.
type DisplaySink interface {
	WriteFrame(first bool, data []byte)
}

// FrameAssembler turns the unstructured bulk OUT byte stream into discrete
// fixed-size framebuffer updates.
//
// The stream carries no frame-boundary markers. A frame boundary is
// inferred whenever the bus has been idle for longer than [SyncTimeoutMS];
// the next packet after such a gap starts a new frame at offset zero. Bytes
// past [FrameSize] within one frame are discarded until the next gap.
//
// The assembler retains no frame content. Each ingested chunk is forwarded
// immediately to the sink; only the write cursor and the last-activity
// timestamp persist between calls.
//
// FrameAssembler is not safe for concurrent use. Ingest calls are expected
// to be serialized by the single polling task that drains the bulk
// endpoint.
type FrameAssembler struct {
	sink DisplaySink

	// cursor is the next write offset into the current frame,
	// 0..FrameSize inclusive.
	cursor int

	// lastActivity is the NowMS timestamp of the most recent non-empty
	// chunk. Compared with unsigned subtraction so counter wrap is
	// transparent.
	lastActivity uint32

	framesStarted uint64
	bytesDropped  uint64
}

// NewFrameAssembler creates a frame assembler forwarding to sink.
func NewFrameAssembler(sink DisplaySink) *FrameAssembler {
	return &FrameAssembler{sink: sink}
}

// Ingest consumes one bulk packet received at monotonic time nowMS.
//
// An empty chunk is a complete no-op: it neither forwards data nor
// refreshes the activity timestamp, so it cannot defeat resynchronization.
func (a *FrameAssembler) Ingest(chunk []byte, nowMS uint32) {
	if len(chunk) == 0 {
		return
	}

	// Idle gap longer than the timeout means the host started a new
	// frame. This comparison is the sole resynchronization mechanism.
	if nowMS-a.lastActivity > SyncTimeoutMS {
		if a.cursor != 0 && a.cursor != FrameSize {
			pkg.LogDebug(pkg.ComponentFrame, "resync inside partial frame",
				"cursor", a.cursor)
		}
		a.cursor = 0
	}
	a.lastActivity = nowMS

	// Frame already full: discard silently until the next resync. The
	// host gets no backpressure signal; a quiet period is implicitly
	// required before the next frame is accepted.
	if a.cursor >= FrameSize {
		a.bytesDropped += uint64(len(chunk))
		return
	}

	// Truncate at the frame boundary. The remainder is dropped, not
	// carried into the next frame; boundary-misaligned writes corrupt at
	// most the current frame and are healed by the next resync.
	if remaining := FrameSize - a.cursor; len(chunk) > remaining {
		a.bytesDropped += uint64(len(chunk) - remaining)
		chunk = chunk[:remaining]
	}

	first := a.cursor == 0
	if first {
		a.framesStarted++
	}
	a.sink.WriteFrame(first, chunk)
	a.cursor += len(chunk)
}

// Cursor returns the current write offset into the frame.
func (a *FrameAssembler) Cursor() int {
	return a.cursor
}

// FramesStarted returns the number of frame starts observed.
func (a *FrameAssembler) FramesStarted() uint64 {
	return a.framesStarted
}

// BytesDropped returns the number of bytes discarded past frame capacity.
func (a *FrameAssembler) BytesDropped() uint64 {
	return a.bytesDropped
}

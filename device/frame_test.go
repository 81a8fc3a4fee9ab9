package device

import (
	"bytes"
	"testing"
)

// recordSink captures forwarded spans for inspection.
type recordSink struct {
	spans []recordedSpan
}

type recordedSpan struct {
	first bool
	data  []byte
}

func (s *recordSink) WriteFrame(first bool, data []byte) {
	s.spans = append(s.spans, recordedSpan{
		first: first,
		data:  append([]byte(nil), data...),
	})
}

func (s *recordSink) concat() []byte {
	var out []byte
	for _, span := range s.spans {
		out = append(out, span.data...)
	}
	return out
}

func chunkOf(b byte, n int) []byte {
	return bytes.Repeat([]byte{b}, n)
}

func TestFrameAssemblerContiguity(t *testing.T) {
	sink := &recordSink{}
	a := NewFrameAssembler(sink)

	// Chunks with inter-arrival gaps at or below the timeout must be
	// forwarded as one contiguous frame.
	var want []byte
	now := uint32(100)
	for i := 0; i < 20; i++ {
		chunk := chunkOf(byte(i), 50)
		a.Ingest(chunk, now)
		want = append(want, chunk...)
		now += 4 // gap == timeout is not a resync
	}

	got := sink.concat()
	if !bytes.Equal(got, want) {
		t.Errorf("forwarded bytes differ: got %d bytes, want %d", len(got), len(want))
	}
	if a.Cursor() != 20*50 {
		t.Errorf("Cursor() = %d, want %d", a.Cursor(), 20*50)
	}
	if !sink.spans[0].first {
		t.Error("first span not flagged as frame start")
	}
	for i, span := range sink.spans[1:] {
		if span.first {
			t.Errorf("span %d flagged as frame start", i+1)
		}
	}
}

func TestFrameAssemblerResync(t *testing.T) {
	sink := &recordSink{}
	a := NewFrameAssembler(sink)

	a.Ingest(chunkOf(0xAA, 10), 0)
	a.Ingest(chunkOf(0xBB, 10), 10) // 10ms gap > 4ms: new frame

	if len(sink.spans) != 2 {
		t.Fatalf("spans = %d, want 2", len(sink.spans))
	}
	if !sink.spans[0].first || !sink.spans[1].first {
		t.Errorf("both ingests must start a frame: got %v, %v",
			sink.spans[0].first, sink.spans[1].first)
	}
	if a.Cursor() != 10 {
		t.Errorf("Cursor() = %d, want 10 (reset before second chunk)", a.Cursor())
	}
	if a.FramesStarted() != 2 {
		t.Errorf("FramesStarted() = %d, want 2", a.FramesStarted())
	}
}

func TestFrameAssemblerResyncRegardlessOfCursor(t *testing.T) {
	tests := []struct {
		name   string
		cursor int
	}{
		{"mid frame", 1000},
		{"one byte", 1},
		{"full frame", FrameSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordSink{}
			a := NewFrameAssembler(sink)

			now := uint32(0)
			filled := 0
			for filled < tt.cursor {
				n := tt.cursor - filled
				if n > BulkMaxPacketSize {
					n = BulkMaxPacketSize
				}
				a.Ingest(chunkOf(0x11, n), now)
				filled += n
				now++
			}
			if a.Cursor() != tt.cursor {
				t.Fatalf("setup cursor = %d, want %d", a.Cursor(), tt.cursor)
			}

			sink.spans = nil
			a.Ingest(chunkOf(0x22, 8), now+SyncTimeoutMS+1)
			if len(sink.spans) != 1 || !sink.spans[0].first {
				t.Errorf("expected a single frame-start span after gap, got %+v", sink.spans)
			}
			if a.Cursor() != 8 {
				t.Errorf("Cursor() = %d, want 8", a.Cursor())
			}
		})
	}
}

func TestFrameAssemblerOverflowContainment(t *testing.T) {
	sink := &recordSink{}
	a := NewFrameAssembler(sink)

	// Fill an entire frame with back-to-back packets.
	now := uint32(0)
	for i := 0; i < FrameSize/BulkMaxPacketSize; i++ {
		a.Ingest(chunkOf(0x33, BulkMaxPacketSize), now)
	}
	if a.Cursor() != FrameSize {
		t.Fatalf("Cursor() = %d, want %d", a.Cursor(), FrameSize)
	}

	// Excess packets before the next resync forward nothing.
	sink.spans = nil
	a.Ingest(chunkOf(0x44, BulkMaxPacketSize), now+1)
	a.Ingest(chunkOf(0x44, BulkMaxPacketSize), now+2)
	if len(sink.spans) != 0 {
		t.Errorf("overflow ingest forwarded %d spans, want 0", len(sink.spans))
	}
	if a.BytesDropped() != 2*BulkMaxPacketSize {
		t.Errorf("BytesDropped() = %d, want %d", a.BytesDropped(), 2*BulkMaxPacketSize)
	}
	if a.Cursor() != FrameSize {
		t.Errorf("Cursor() = %d, want %d", a.Cursor(), FrameSize)
	}
}

func TestFrameAssemblerBoundaryTruncation(t *testing.T) {
	sink := &recordSink{}
	a := NewFrameAssembler(sink)

	// Place the cursor at 8190, then ingest a 64-byte packet.
	now := uint32(0)
	for a.Cursor() < FrameSize-2 {
		n := FrameSize - 2 - a.Cursor()
		if n > BulkMaxPacketSize {
			n = BulkMaxPacketSize
		}
		a.Ingest(chunkOf(0x55, n), now)
	}

	sink.spans = nil
	a.Ingest(chunkOf(0x66, BulkMaxPacketSize), now+1)
	if len(sink.spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(sink.spans))
	}
	if got := len(sink.spans[0].data); got != 2 {
		t.Errorf("forwarded length = %d, want 2", got)
	}
	if a.Cursor() != FrameSize {
		t.Errorf("Cursor() = %d, want %d", a.Cursor(), FrameSize)
	}

	// The truncated remainder is dropped, not carried into the next frame.
	sink.spans = nil
	a.Ingest(chunkOf(0x77, 4), now+SyncTimeoutMS+2)
	if len(sink.spans) != 1 || !sink.spans[0].first || len(sink.spans[0].data) != 4 {
		t.Errorf("post-truncation frame start malformed: %+v", sink.spans)
	}
}

func TestFrameAssemblerZeroLengthChunk(t *testing.T) {
	sink := &recordSink{}
	a := NewFrameAssembler(sink)

	a.Ingest(chunkOf(0x88, 10), 0)

	// A zero-length read must not refresh the activity timestamp: the
	// gap is measured from t=0, not t=3.
	a.Ingest(nil, 3)
	a.Ingest(chunkOf(0x99, 10), 6)

	if len(sink.spans) != 2 {
		t.Fatalf("spans = %d, want 2", len(sink.spans))
	}
	if !sink.spans[1].first {
		t.Error("6ms gap after the last real chunk must force a resync")
	}
	if a.Cursor() != 10 {
		t.Errorf("Cursor() = %d, want 10", a.Cursor())
	}
}

func TestFrameAssemblerClockWrap(t *testing.T) {
	sink := &recordSink{}
	a := NewFrameAssembler(sink)

	// Straddle the uint32 wrap with a 3ms gap: no resync.
	a.Ingest(chunkOf(0x10, 8), 0xFFFFFFFE)
	a.Ingest(chunkOf(0x20, 8), 1)

	if len(sink.spans) != 2 {
		t.Fatalf("spans = %d, want 2", len(sink.spans))
	}
	if sink.spans[1].first {
		t.Error("3ms gap across the wrap must not resync")
	}
	if a.Cursor() != 16 {
		t.Errorf("Cursor() = %d, want 16", a.Cursor())
	}

	// A real gap across the wrap still resyncs.
	a.Ingest(chunkOf(0x30, 8), 10)
	if !sink.spans[2].first {
		t.Error("9ms gap across the wrap must resync")
	}
}

func TestFrameAssemblerScenarios(t *testing.T) {
	t.Run("two chunks within timeout", func(t *testing.T) {
		sink := &recordSink{}
		a := NewFrameAssembler(sink)

		a.Ingest(chunkOf(0x01, 100), 0)
		a.Ingest(chunkOf(0x02, 50), 2)

		if got := len(sink.concat()); got != 150 {
			t.Errorf("forwarded bytes = %d, want 150", got)
		}
		if !sink.spans[0].first || sink.spans[1].first {
			t.Errorf("flags = %v, %v; want true, false",
				sink.spans[0].first, sink.spans[1].first)
		}
		if a.Cursor() != 150 {
			t.Errorf("Cursor() = %d, want 150", a.Cursor())
		}
	})

	t.Run("two chunks across gap", func(t *testing.T) {
		sink := &recordSink{}
		a := NewFrameAssembler(sink)

		a.Ingest(chunkOf(0x01, 10), 0)
		a.Ingest(chunkOf(0x02, 10), 10)

		if !sink.spans[0].first || !sink.spans[1].first {
			t.Error("both chunks must be frame starts")
		}
		if a.Cursor() != 10 {
			t.Errorf("Cursor() = %d, want 10, not 20", a.Cursor())
		}
	})
}

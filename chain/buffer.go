package chain

import "encoding/hex"

// ByteBuffer is an inbound read buffer: backing storage plus a cursor. Its
// lifetime is the duration of one messageReceived dispatch; CodecFilter
// never retains one across events (§3).
type ByteBuffer struct {
	buf   []byte
	pos   int
	limit int
}

// NewByteBuffer wraps data as a ByteBuffer positioned at zero with the
// limit set to len(data).
func NewByteBuffer(data []byte) *ByteBuffer {
	return &ByteBuffer{buf: data, pos: 0, limit: len(data)}
}

// Position returns the current read cursor.
func (b *ByteBuffer) Position() int { return b.pos }

// SetPosition moves the read cursor. It is the caller's responsibility to
// keep 0 <= i <= Limit(); used by decoders to mark how much input they
// consumed, and by the hex-dump capture to restore the cursor it moved.
func (b *ByteBuffer) SetPosition(i int) { b.pos = i }

// Limit returns the exclusive upper bound of valid data in the buffer.
func (b *ByteBuffer) Limit() int { return b.limit }

// HasRemaining reports whether any unread bytes remain.
func (b *ByteBuffer) HasRemaining() bool { return b.pos < b.limit }

// Remaining returns the count of unread bytes.
func (b *ByteBuffer) Remaining() int { return b.limit - b.pos }

// Bytes returns the unread portion of the buffer without consuming it.
func (b *ByteBuffer) Bytes() []byte { return b.buf[b.pos:b.limit] }

// GetHexDump returns a hex dump of the region from start to the current
// position, used to annotate decode errors (§4.2, property 9).
func (b *ByteBuffer) GetHexDump(start int) string {
	if start < 0 {
		start = 0
	}
	end := b.pos
	if end > b.limit {
		end = b.limit
	}
	if start > end {
		start = end
	}
	return hex.Dump(b.buf[start:end])
}

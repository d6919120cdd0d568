package iofilter

import (
	"errors"
	"testing"

	assert "github.com/stretchr/testify/require"

	"github.com/damianoneill/iofilter/chain"
	"github.com/damianoneill/iofilter/chain/chaintest"
	"github.com/damianoneill/iofilter/codec"
	"github.com/damianoneill/iofilter/examples/lenprefix"
)

func newLenprefixFilter(t *testing.T) (*CodecFilter, *chaintest.Session) {
	t.Helper()
	factory, err := codec.NewSharedFactory(&lenprefix.Encoder{}, &lenprefix.Decoder{})
	assert.NoError(t, err)

	f := NewCodecFilter(factory)
	session := chaintest.NewSession()
	assert.NoError(t, f.OnAdd(session))
	return f, session
}

// S1 — Split frame across two reads.
func TestSplitFrameAcrossTwoReads(t *testing.T) {
	f, session := newLenprefixFilter(t)
	next := chaintest.NewRecordingNextFilter()

	buf1 := chain.NewByteBuffer([]byte{0x00, 0x03, 0x41, 0x42})
	f.MessageReceived(session, next, buf1)
	assert.Empty(t, next.Received, "no complete frame yet")
	assert.Equal(t, 4, buf1.Position())

	buf2 := chain.NewByteBuffer([]byte{0x43})
	f.MessageReceived(session, next, buf2)
	assert.Equal(t, []interface{}{"ABC"}, next.Received)
	assert.Equal(t, 1, buf2.Position())
}

// S2 — Two frames in one read.
func TestTwoFramesInOneRead(t *testing.T) {
	f, session := newLenprefixFilter(t)
	next := chaintest.NewRecordingNextFilter()

	buf := chain.NewByteBuffer([]byte{0x00, 0x02, 0x41, 0x42, 0x00, 0x01, 0x43})
	f.MessageReceived(session, next, buf)

	assert.Equal(t, []interface{}{"AB", "C"}, next.Received)
}

// S3 — Recoverable error with progress.
func TestRecoverableErrorWithProgress(t *testing.T) {
	factory, err := codec.NewSharedFactory(&lenprefix.Encoder{}, &lenprefix.BadByteDecoder{BadByte: 0xFF, Advance: true})
	assert.NoError(t, err)
	f := NewCodecFilter(factory)
	session := chaintest.NewSession()
	assert.NoError(t, f.OnAdd(session))
	next := chaintest.NewRecordingNextFilter()

	buf := chain.NewByteBuffer([]byte{0xFF, 0x00, 0x01, 0x41})
	f.MessageReceived(session, next, buf)

	assert.Len(t, next.Exceptions, 1)
	assert.Equal(t, []interface{}{"\x00", "\x01", "A"}, next.Received)
}

// S4 — Recoverable error without progress.
func TestRecoverableErrorWithoutProgress(t *testing.T) {
	factory, err := codec.NewSharedFactory(&lenprefix.Encoder{}, &lenprefix.BadByteDecoder{BadByte: 0xFF, Advance: false})
	assert.NoError(t, err)
	f := NewCodecFilter(factory)
	session := chaintest.NewSession()
	assert.NoError(t, f.OnAdd(session))
	next := chaintest.NewRecordingNextFilter()

	buf := chain.NewByteBuffer([]byte{0xFF, 0x00, 0x01, 0x41})
	f.MessageReceived(session, next, buf)

	assert.Len(t, next.Exceptions, 1)
	assert.Empty(t, next.Received)
	assert.Equal(t, 0, buf.Position())
}

// S5 — finishDecode emits a terminal message.
func TestFinishDecodeEmitsTerminalMessage(t *testing.T) {
	factory, err := codec.NewSharedFactory(&lenprefix.Encoder{}, &lenprefix.BufferedDecoder{})
	assert.NoError(t, err)
	f := NewCodecFilter(factory)
	session := chaintest.NewSession()
	assert.NoError(t, f.OnAdd(session))
	next := chaintest.NewRecordingNextFilter()

	f.MessageReceived(session, next, chain.NewByteBuffer([]byte("X")))
	assert.Empty(t, next.Received, "withheld until finish")

	f.SessionClosed(session, next)

	assert.Equal(t, []interface{}{"X"}, next.Received)
	assert.Equal(t, 1, next.Closed)
}

// S6 — Pre-encoded bypass.
func TestPreEncodedBypass(t *testing.T) {
	f, session := newLenprefixFilter(t)
	next := chaintest.NewRecordingNextFilter()

	req := chaintest.NewWriteRequest(chain.NewByteBuffer([]byte("already encoded")))
	err := f.FilterWrite(session, next, req)

	assert.NoError(t, err)
	assert.Len(t, next.Written, 1)
	assert.Same(t, req, next.Written[0])
}

func TestFileRegionBypass(t *testing.T) {
	f, session := newLenprefixFilter(t)
	next := chaintest.NewRecordingNextFilter()

	req := chaintest.NewWriteRequest(chaintest.FileRegion{})
	err := f.FilterWrite(session, next, req)

	assert.NoError(t, err)
	assert.Len(t, next.Written, 1)
}

func TestNonByteBufferPassesThroughUndecoded(t *testing.T) {
	f, session := newLenprefixFilter(t)
	next := chaintest.NewRecordingNextFilter()

	f.MessageReceived(session, next, "not a byte buffer")

	assert.Equal(t, []interface{}{"not a byte buffer"}, next.Received)
}

func TestEncodeProducesWrite(t *testing.T) {
	f, session := newLenprefixFilter(t)
	next := chaintest.NewRecordingNextFilter()

	req := chaintest.NewWriteRequest("hello")
	err := f.FilterWrite(session, next, req)
	assert.NoError(t, err)

	assert.Len(t, next.Written, 1)
	encoded, ok := next.Written[0].GetMessage().(*chain.ByteBuffer)
	assert.True(t, ok)
	assert.Equal(t, []byte{0x00, 0x05, 'h', 'e', 'l', 'l', 'o'}, encoded.Bytes())
}

// Property 8: encoder elision completes the future without a downstream write.
type elidingEncoder struct{}

func (elidingEncoder) Encode(session chain.Session, msg interface{}, out *codec.EncoderOutput) error {
	return nil
}
func (elidingEncoder) Dispose(session chain.Session) error { return nil }

func TestEncoderElisionCompletesFuture(t *testing.T) {
	factory, err := codec.NewSharedFactory(elidingEncoder{}, &lenprefix.Decoder{})
	assert.NoError(t, err)
	f := NewCodecFilter(factory)
	session := chaintest.NewSession()
	assert.NoError(t, f.OnAdd(session))
	next := chaintest.NewRecordingNextFilter()

	req := chaintest.NewWriteRequest("coalesced away")
	err = f.FilterWrite(session, next, req)

	assert.NoError(t, err)
	assert.Empty(t, next.Written)
	assert.True(t, req.GetFuture().IsWritten())
}

// Property 7: a second EncoderOutput.Write within one encode call fails loudly.
type doubleWriteEncoder struct{}

func (doubleWriteEncoder) Encode(session chain.Session, msg interface{}, out *codec.EncoderOutput) error {
	if err := out.Write(chain.NewByteBuffer([]byte("first"))); err != nil {
		return err
	}
	return out.Write(chain.NewByteBuffer([]byte("second")))
}
func (doubleWriteEncoder) Dispose(session chain.Session) error { return nil }

func TestEncoderSecondWriteIsIllegalUsage(t *testing.T) {
	factory, err := codec.NewSharedFactory(doubleWriteEncoder{}, &lenprefix.Decoder{})
	assert.NoError(t, err)
	f := NewCodecFilter(factory)
	session := chaintest.NewSession()
	assert.NoError(t, f.OnAdd(session))
	next := chaintest.NewRecordingNextFilter()

	req := chaintest.NewWriteRequest("x")
	err = f.FilterWrite(session, next, req)

	var illegal *codec.IllegalUsage
	assert.ErrorAs(t, err, &illegal)
}

// Property 1: adding the same filter instance twice fails; two distinct
// instances are independent.
func TestDuplicateAddFailsDistinctInstancesSucceed(t *testing.T) {
	factory, err := codec.NewSharedFactory(&lenprefix.Encoder{}, &lenprefix.Decoder{})
	assert.NoError(t, err)

	f1 := NewCodecFilter(factory)
	session := chaintest.NewSession()
	assert.NoError(t, f1.OnAdd(session))
	assert.Error(t, f1.OnAdd(session))

	f2 := NewCodecFilter(factory)
	assert.NoError(t, f2.OnAdd(session), "a distinct filter instance must still be addable")
}

// Property 5 / realignment safety: decode loop stops when the session
// moves to a different worker, leaving remaining bytes in place.
func TestRealignmentStopsDecodeLoopWithoutLossOrDuplication(t *testing.T) {
	dec := &realignAfterOneFrameDecoder{}
	factory, err := codec.NewSharedFactory(&lenprefix.Encoder{}, dec)
	assert.NoError(t, err)
	f := NewCodecFilter(factory)
	session := chaintest.NewSession()
	assert.NoError(t, f.OnAdd(session))
	next := chaintest.NewRecordingNextFilter()

	buf := chain.NewByteBuffer([]byte{0x00, 0x01, 0x41, 0x00, 0x01, 0x42})

	f.MessageReceived(session, next, buf)
	assert.Equal(t, []interface{}{"A"}, next.Received)
	assert.Equal(t, 3, buf.Position(), "second frame must be left unconsumed")

	next2 := chaintest.NewRecordingNextFilter()
	f.MessageReceived(session, next2, buf)
	assert.Equal(t, []interface{}{"B"}, next2.Received)
}

// realignAfterOneFrameDecoder decodes exactly one length-prefixed frame per
// call (unlike lenprefix.Decoder, which drains every complete frame
// present), then realigns the session's worker as a side effect —
// simulating the runtime reassigning the session mid-decode-loop (§4.2,
// §4.6), one call per CodecFilter decode-loop iteration.
type realignAfterOneFrameDecoder struct {
	realigns int
}

func (d *realignAfterOneFrameDecoder) Decode(session chain.Session, in *chain.ByteBuffer, out *codec.DecoderOutput) error {
	if in.Remaining() < 2 {
		return nil
	}
	frameLen := int(in.Bytes()[1])
	if in.Remaining() < 2+frameLen {
		return nil
	}
	payload := in.Bytes()[2 : 2+frameLen]
	out.Write(string(payload))
	in.SetPosition(in.Position() + 2 + frameLen)

	if d.realigns == 0 {
		d.realigns++
		session.(*chaintest.Session).Realign("worker-1")
	}
	return nil
}

func (d *realignAfterOneFrameDecoder) FinishDecode(session chain.Session, out *codec.DecoderOutput) error {
	return nil
}
func (d *realignAfterOneFrameDecoder) Dispose(session chain.Session) error { return nil }

// Property 6 / close finalization: dispose runs exactly once per codec.
func TestCloseFinalizationDisposesOnce(t *testing.T) {
	decDisposed, encDisposed := 0, 0
	dec := &countingDecoder{disposed: &decDisposed}
	enc := &countingEncoder{disposed: &encDisposed}

	factory, err := codec.NewSharedFactory(enc, dec)
	assert.NoError(t, err)
	f := NewCodecFilter(factory)
	session := chaintest.NewSession()
	assert.NoError(t, f.OnAdd(session))
	next := chaintest.NewRecordingNextFilter()

	f.SessionClosed(session, next)

	assert.Equal(t, 1, decDisposed)
	assert.Equal(t, 1, encDisposed)
	assert.Equal(t, 1, next.Closed)
}

type countingDecoder struct {
	disposed *int
}

func (d *countingDecoder) Decode(session chain.Session, in *chain.ByteBuffer, out *codec.DecoderOutput) error {
	return nil
}
func (d *countingDecoder) FinishDecode(session chain.Session, out *codec.DecoderOutput) error {
	return nil
}
func (d *countingDecoder) Dispose(session chain.Session) error {
	*d.disposed++
	return nil
}

type countingEncoder struct {
	disposed *int
}

func (e *countingEncoder) Encode(session chain.Session, msg interface{}, out *codec.EncoderOutput) error {
	return nil
}
func (e *countingEncoder) Dispose(session chain.Session) error {
	*e.disposed++
	return nil
}

// Dispose errors are logged and swallowed, never interrupting teardown.
func TestDisposeFailureIsSwallowed(t *testing.T) {
	boom := errors.New("boom")
	factory, err := codec.NewSharedFactory(&failingDisposeEncoder{err: boom}, &failingDisposeDecoder{err: boom})
	assert.NoError(t, err)
	f := NewCodecFilter(factory)
	session := chaintest.NewSession()
	assert.NoError(t, f.OnAdd(session))
	next := chaintest.NewRecordingNextFilter()

	assert.NotPanics(t, func() {
		f.SessionClosed(session, next)
	})
	assert.Equal(t, 1, next.Closed)
}

type failingDisposeDecoder struct{ err error }

func (d *failingDisposeDecoder) Decode(session chain.Session, in *chain.ByteBuffer, out *codec.DecoderOutput) error {
	return nil
}
func (d *failingDisposeDecoder) FinishDecode(session chain.Session, out *codec.DecoderOutput) error {
	return nil
}
func (d *failingDisposeDecoder) Dispose(session chain.Session) error { return d.err }

type failingDisposeEncoder struct{ err error }

func (e *failingDisposeEncoder) Encode(session chain.Session, msg interface{}, out *codec.EncoderOutput) error {
	return nil
}
func (e *failingDisposeEncoder) Dispose(session chain.Session) error { return e.err }

// Property 9: hex-dump preservation.
func TestHexDumpPreservedIfAlreadySet(t *testing.T) {
	factory, err := codec.NewSharedFactory(&lenprefix.Encoder{}, &alreadyDumpedDecoder{})
	assert.NoError(t, err)
	f := NewCodecFilter(factory)
	session := chaintest.NewSession()
	assert.NoError(t, f.OnAdd(session))
	next := chaintest.NewRecordingNextFilter()

	buf := chain.NewByteBuffer([]byte{0x01})
	f.MessageReceived(session, next, buf)

	assert.Len(t, next.Exceptions, 1)
	var derr *codec.DecoderError
	assert.ErrorAs(t, next.Exceptions[0], &derr)
	assert.Equal(t, "preset", derr.HexDump)
}

type alreadyDumpedDecoder struct{}

func (d *alreadyDumpedDecoder) Decode(session chain.Session, in *chain.ByteBuffer, out *codec.DecoderOutput) error {
	de := codec.NewDecoderError(errors.New("boom"))
	de.HexDump = "preset"
	return de
}
func (d *alreadyDumpedDecoder) FinishDecode(session chain.Session, out *codec.DecoderOutput) error {
	return nil
}
func (d *alreadyDumpedDecoder) Dispose(session chain.Session) error { return nil }

func TestZeroLengthBufferIsNoOp(t *testing.T) {
	f, session := newLenprefixFilter(t)
	next := chaintest.NewRecordingNextFilter()

	f.MessageReceived(session, next, chain.NewByteBuffer(nil))

	assert.Empty(t, next.Received)
	assert.Empty(t, next.Exceptions)
}

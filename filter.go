// Package iofilter implements a protocol codec filter for session-oriented,
// event-driven filter chains: CodecFilter translates inbound byte buffers
// into application messages via a pluggable Decoder, and outbound
// application messages into byte buffers via a pluggable Encoder.
//
// See SPEC_FULL.md for the full module map; this file implements the core
// described in spec.md §4.
package iofilter

import (
	"github.com/google/uuid"

	"github.com/damianoneill/iofilter/chain"
	"github.com/damianoneill/iofilter/codec"
)

// attrKey is a per-filter-instance, per-kind session attribute key. Keying
// by the filter instance's own id (rather than a fixed string) is what lets
// two distinct CodecFilter instances coexist on the same session's chain,
// each with independent codec state (§4.1, property 1).
type attrKey struct {
	instance uuid.UUID
	kind     string
}

const (
	kindEncoder       = "encoder"
	kindDecoder       = "decoder"
	kindDecoderOutput = "decoderOutput"
	kindEncoderOutput = "encoderOutput"
)

// CodecFilter is the event handler wired into a session's filter chain. It
// dispatches lifecycle, inbound and outbound events, orchestrating the
// decode loop and the encode-then-forward path described in spec.md §4.
type CodecFilter struct {
	instance uuid.UUID
	factory  codec.Factory
	trace    *FilterTrace
	config   *FilterConfig
}

// Option configures a CodecFilter at construction time.
type Option func(*CodecFilter)

// WithTrace overrides the filter's trace hooks (default DefaultTrace).
func WithTrace(t *FilterTrace) Option {
	return func(f *CodecFilter) { f.trace = withTraceDefaults(t) }
}

// WithConfig overrides the filter's FilterConfig (default DefaultFilterConfig).
func WithConfig(c *FilterConfig) Option {
	return func(f *CodecFilter) { f.config = c }
}

// NewCodecFilter creates a CodecFilter bound to factory. Each call produces
// a distinct filter instance (§3 invariant: a single filter instance is not
// added twice to the same chain; two New calls are always two instances).
func NewCodecFilter(factory codec.Factory, opts ...Option) *CodecFilter {
	f := &CodecFilter{
		instance: uuid.New(),
		factory:  factory,
		trace:    DefaultTrace,
		config:   DefaultFilterConfig,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *CodecFilter) key(kind string) attrKey { return attrKey{instance: f.instance, kind: kind} }

// OnAdd binds an encoder and decoder for session, obtained from the
// filter's Factory, and stashes them under session attributes keyed to this
// filter instance (§4.1). It fails with IllegalUsage if this same filter
// instance has already been added to session's chain.
func (f *CodecFilter) OnAdd(session chain.Session) error {
	if _, present := session.GetAttribute(f.key(kindDecoder)); present {
		return codec.NewIllegalUsage("codec filter instance already added to this session's chain")
	}

	enc, err := f.factory.Encoder(session)
	if err != nil {
		return err
	}
	dec, err := f.factory.Decoder(session)
	if err != nil {
		return err
	}

	session.SetAttribute(f.key(kindEncoder), enc)
	session.SetAttribute(f.key(kindDecoder), dec)
	return nil
}

// OnRemove disposes the encoder, decoder and DecoderOutput bound to
// session by this filter instance. EncoderOutput is implicitly released by
// attribute removal (§4.1). Each dispose is isolated: a failure is traced
// at warning level and does not interrupt the rest of teardown.
func (f *CodecFilter) OnRemove(session chain.Session) {
	if dec, ok := f.decoderOf(session); ok {
		if err := dec.Dispose(session); err != nil {
			f.trace.DisposeFailed(session, kindDecoder, err)
		}
	}
	if enc, ok := f.encoderOf(session); ok {
		if err := enc.Dispose(session); err != nil {
			f.trace.DisposeFailed(session, kindEncoder, err)
		}
	}

	session.RemoveAttribute(f.key(kindDecoder))
	session.RemoveAttribute(f.key(kindEncoder))
	session.RemoveAttribute(f.key(kindDecoderOutput))
	session.RemoveAttribute(f.key(kindEncoderOutput))
}

func (f *CodecFilter) decoderOf(session chain.Session) (codec.Decoder, bool) {
	v, ok := session.GetAttribute(f.key(kindDecoder))
	if !ok {
		return nil, false
	}
	dec, ok := v.(codec.Decoder)
	return dec, ok
}

func (f *CodecFilter) encoderOf(session chain.Session) (codec.Encoder, bool) {
	v, ok := session.GetAttribute(f.key(kindEncoder))
	if !ok {
		return nil, false
	}
	enc, ok := v.(codec.Encoder)
	return enc, ok
}

func (f *CodecFilter) decoderOutputOf(session chain.Session) *codec.DecoderOutput {
	key := f.key(kindDecoderOutput)
	if v, ok := session.GetAttribute(key); ok {
		return v.(*codec.DecoderOutput)
	}
	do := codec.NewDecoderOutput()
	session.SetAttribute(key, do)
	return do
}

func (f *CodecFilter) encoderOutputOf(session chain.Session) *codec.EncoderOutput {
	key := f.key(kindEncoderOutput)
	if v, ok := session.GetAttribute(key); ok {
		return v.(*codec.EncoderOutput)
	}
	eo := codec.NewEncoderOutput()
	session.SetAttribute(key, eo)
	return eo
}

// MessageReceived implements the inbound path (§4.2). If msg is not a
// *chain.ByteBuffer it is forwarded unchanged and the decoder is not
// invoked (property 2). Otherwise the decode loop runs: while the buffer
// has remaining bytes and the session has not been realigned to a
// different worker, Decode is called under the DecoderOutput's exclusive
// hold and the output is flushed; decode errors are classified and
// reported via exceptionCaught, and the loop continues only if the error
// is recoverable and the decoder made progress.
func (f *CodecFilter) MessageReceived(session chain.Session, nextFilter chain.NextFilter, msg interface{}) {
	in, ok := msg.(*chain.ByteBuffer)
	if !ok {
		nextFilter.MessageReceived(session, msg)
		return
	}

	dec, ok := f.decoderOf(session)
	if !ok {
		nextFilter.ExceptionCaught(session, codec.NewIllegalUsage("no decoder bound for session"))
		return
	}
	decoderOut := f.decoderOutputOf(session)

	ioThread := session.WorkerToken()
	iterations := 0

	for in.HasRemaining() {
		if session.WorkerToken() != ioThread {
			f.trace.Realigned(session)
			break
		}
		if f.config.MaxDecodeIterations > 0 {
			iterations++
			if iterations > f.config.MaxDecodeIterations {
				break
			}
		}

		oldPos := in.Position()
		f.trace.DecodeStart(session, oldPos)

		decoderOut.Lock()
		err := dec.Decode(session, in, decoderOut)
		if err == nil {
			decoderOut.Flush(nextFilter, session)
		}
		decoderOut.Unlock()

		if err == nil {
			continue
		}

		derr := f.classifyDecodeError(in, oldPos, err)

		decoderOut.Lock()
		decoderOut.Flush(nextFilter, session)
		decoderOut.Unlock()

		nextFilter.ExceptionCaught(session, derr)

		progressed := in.Position() != oldPos
		recoverable := codec.IsRecoverable(derr)
		f.trace.DecodeError(session, derr, recoverable, progressed)

		if !(recoverable && progressed) {
			break
		}
	}
}

// classifyDecodeError coerces err into a *codec.DecoderError (or
// *codec.RecoverableDecoderError, if err already was one), attaching a
// hex-dump of the region from oldPos to the buffer's current position if
// none is already set, preserving and restoring in's position around the
// dump capture (§4.2, property 9).
func (f *CodecFilter) classifyDecodeError(in *chain.ByteBuffer, oldPos int, err error) error {
	var de *codec.DecoderError
	var result error

	if re, ok := err.(*codec.RecoverableDecoderError); ok {
		de = re.DecoderError
		result = re
	} else {
		de = codec.NewDecoderError(err)
		result = de
	}

	if de.HexDump == "" {
		savedPos := in.Position()
		dumpFrom := oldPos
		if f.config.MaxHexDumpBytes > 0 && savedPos-dumpFrom > f.config.MaxHexDumpBytes {
			dumpFrom = savedPos - f.config.MaxHexDumpBytes
		}
		de.HexDump = in.GetHexDump(dumpFrom)
		in.SetPosition(savedPos)
	}

	return result
}

// MessageSent implements the post-write inbound path (§4.3). If req is the
// chain.Registered sentinel, pending decoded messages parked while the
// session had no registered worker are flushed under the DecoderOutput's
// exclusive hold before the event is forwarded.
func (f *CodecFilter) MessageSent(session chain.Session, nextFilter chain.NextFilter, req chain.WriteRequest) {
	if chain.IsRegistered(req) {
		decoderOut := f.decoderOutputOf(session)
		decoderOut.Lock()
		decoderOut.Flush(nextFilter, session)
		decoderOut.Unlock()
	}
	nextFilter.MessageSent(session, req)
}

// FilterWrite implements the outbound path (§4.4). A message that is
// already a raw byte buffer or file region bypasses the encoder (property
// 2); otherwise Encode is invoked and, on return, the captured payload (if
// any) overwrites the request's message and it is forwarded with the
// original future attached, or — if Encode emitted nothing — the original
// future is completed immediately (property 8). Encode errors are
// classified as EncoderError and returned, not swallowed.
func (f *CodecFilter) FilterWrite(session chain.Session, nextFilter chain.NextFilter, req chain.WriteRequest) error {
	msg := req.GetMessage()
	if isPreEncoded(msg) {
		nextFilter.FilterWrite(session, req)
		return nil
	}

	enc, ok := f.encoderOf(session)
	if !ok {
		return codec.NewIllegalUsage("no encoder bound for session")
	}
	encoderOut := f.encoderOutputOf(session)

	if err := enc.Encode(session, msg, encoderOut); err != nil {
		encoderOut.TakeForWrite()
		return codec.NewEncoderError(err)
	}

	encoded, ok := encoderOut.TakeForWrite()
	if !ok {
		f.trace.EncodeElided(session)
		req.GetFuture().SetWritten()
		return nil
	}

	req.SetMessage(encoded)
	nextFilter.FilterWrite(session, req)
	return nil
}

func isPreEncoded(msg interface{}) bool {
	if _, ok := msg.(*chain.ByteBuffer); ok {
		return true
	}
	if fr, ok := msg.(chain.FileRegion); ok {
		return fr.IsFileRegion()
	}
	return false
}

// SessionClosed implements session teardown (§4.5). FinishDecode runs
// before dispose (the decoder may still hold state); codec state is always
// disposed even if FinishDecode errors; the final flush runs after dispose
// so it drains anything FinishDecode produced (scenario S5), and the event
// is always forwarded.
func (f *CodecFilter) SessionClosed(session chain.Session, nextFilter chain.NextFilter) {
	decoderOut := f.decoderOutputOf(session)

	if dec, ok := f.decoderOf(session); ok {
		decoderOut.Lock()
		err := dec.FinishDecode(session, decoderOut)
		decoderOut.Unlock()

		if err != nil {
			derr := codec.NewDecoderError(err)
			nextFilter.ExceptionCaught(session, derr)
		}
	}

	f.OnRemove(session)

	decoderOut.Lock()
	decoderOut.Flush(nextFilter, session)
	decoderOut.Unlock()

	nextFilter.SessionClosed(session)
}

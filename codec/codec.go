// Package codec defines the pluggable decoder/encoder contracts a
// CodecFilter drives, plus the per-session output collectors
// (DecoderOutput, EncoderOutput) those contracts write into, and the
// error kinds raised along the way.
package codec

import "github.com/damianoneill/iofilter/chain"

// Decoder is a per-session, stateful protocol decoder. It is never called
// concurrently for the same session on two threads (§3).
type Decoder interface {
	// Decode consumes as much of in as forms complete messages, writing
	// each to out. It may consume zero bytes (no complete message yet),
	// some prefix (one or more messages, with a partial one left for next
	// time), or all of in.
	Decode(session chain.Session, in *chain.ByteBuffer, out *DecoderOutput) error

	// FinishDecode is called once, at session close, to let the decoder
	// emit any message it was withholding pending more input that will
	// now never arrive (§4.5, scenario S5).
	FinishDecode(session chain.Session, out *DecoderOutput) error

	// Dispose releases any resources the decoder holds for session.
	Dispose(session chain.Session) error
}

// Encoder is a per-session, stateful protocol encoder.
type Encoder interface {
	// Encode translates msg into zero or one payloads written to out.
	Encode(session chain.Session, msg interface{}, out *EncoderOutput) error

	// Dispose releases any resources the encoder holds for session.
	Dispose(session chain.Session) error
}

package iofilter

// FilterConfig carries the small set of knobs the codec filter itself
// needs, modeled on netconf/client/config.go's Config/DefaultConfig pair.
type FilterConfig struct {
	// MaxHexDumpBytes bounds how much of the input region a DecoderError's
	// auto-populated hex dump captures, so a decoder that fails on a huge
	// accumulated buffer doesn't produce an unbounded dump.
	MaxHexDumpBytes int

	// MaxDecodeIterations, if non-zero, caps the number of decode-loop
	// iterations within a single messageReceived dispatch. This is a
	// last-resort circuit breaker layered on top of the position-based
	// recoverability rule in §4.2: that rule alone already prevents a
	// decoder from looping forever at one offset, but a decoder that is
	// "recoverable" and advances by one byte each time could otherwise
	// spin for the full length of a very large buffer in one dispatch.
	MaxDecodeIterations int
}

// DefaultFilterConfig is used when a CodecFilter is constructed without an
// explicit FilterConfig.
var DefaultFilterConfig = &FilterConfig{
	MaxHexDumpBytes:     2048,
	MaxDecodeIterations: 0,
}

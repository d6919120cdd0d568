package codec

// EncoderOutput is a per-session, single-slot sink capturing exactly one
// encoded payload per Encode call (§4.7). The only valid drain path is
// TakeForWrite, called by the filter's flush-with-future step (§4.4); the
// general flush() the source declares unsupported is deliberately absent
// here rather than present-and-silently-succeeding (§9 open question).
type EncoderOutput struct {
	occupied bool
	msg      interface{}
}

// NewEncoderOutput creates an empty EncoderOutput.
func NewEncoderOutput() *EncoderOutput {
	return &EncoderOutput{}
}

// Write captures msg as the one encoded payload for the in-flight Encode
// call. A second call before the slot is drained is a programming error
// (§3, property 7).
func (e *EncoderOutput) Write(msg interface{}) error {
	if e.occupied {
		return NewIllegalUsage("EncoderOutput.Write called twice within one encode call")
	}
	e.occupied = true
	e.msg = msg
	return nil
}

// TakeForWrite atomically reads and clears the slot, returning the captured
// message and whether one was present. This is the only supported drain
// path (§4.4, §9); there is deliberately no general-purpose Flush.
func (e *EncoderOutput) TakeForWrite() (msg interface{}, ok bool) {
	msg, ok = e.msg, e.occupied
	e.msg = nil
	e.occupied = false
	return msg, ok
}

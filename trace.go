package iofilter

import (
	"log"

	"github.com/imdario/mergo"
)

// FilterTrace defines hooks for observing a CodecFilter's lifecycle. It is
// the same idiom netconf/client/trace.go uses for its ClientTrace: a
// struct of optional callbacks, so a caller supplies only the hooks they
// care about and the rest default to no-ops via WithTrace/mergo.
type FilterTrace struct {
	// DecodeStart is called before each decode-loop iteration.
	DecodeStart func(session interface{}, oldPos int)

	// DecodeError is called when a decode call fails, after classification,
	// hex-dump capture and the exceptionCaught event.
	DecodeError func(session interface{}, err error, recoverable, progressed bool)

	// Realigned is called when the decode loop breaks because the session
	// moved to a different worker. A DecoderOutput flush that stops for the
	// same reason does not call it.
	Realigned func(session interface{})

	// EncodeElided is called when an Encode call produced no payload, so
	// the write future is completed immediately instead of being
	// forwarded downstream (§4.4, property 8).
	EncodeElided func(session interface{})

	// DisposeFailed is called when disposing a decoder or encoder fails; per §4.1/§7 the failure is logged and
	// swallowed, never interrupting the rest of teardown.
	DisposeFailed func(session interface{}, what string, err error)
}

// NoOpTrace is a FilterTrace whose hooks all do nothing, mirroring
// netconf/client/trace.go's NoOpLoggingHooks. Every other trace is built by
// merging its overrides over this one, so every hook is always safe to call
// unconditionally, even one a caller never set.
var NoOpTrace = &FilterTrace{
	DecodeStart:   func(session interface{}, oldPos int) {},
	DecodeError:   func(session interface{}, err error, recoverable, progressed bool) {},
	Realigned:     func(session interface{}) {},
	EncodeElided:  func(session interface{}) {},
	DisposeFailed: func(session interface{}, what string, err error) {},
}

// DefaultTrace logs only failures, mirroring
// netconf/client/trace.go's DefaultLoggingHooks.
var DefaultTrace = withTraceDefaults(&FilterTrace{
	DecodeError: func(session interface{}, err error, recoverable, progressed bool) {
		log.Printf("iofilter: decode error session=%v recoverable=%v progressed=%v err=%v\n", session, recoverable, progressed, err)
	},
	DisposeFailed: func(session interface{}, what string, err error) {
		log.Printf("iofilter: dispose failed session=%v component=%s err=%v\n", session, what, err)
	},
})

// DiagnosticTrace logs every hook, mirroring
// netconf/client/trace.go's DiagnosticLoggingHooks.
var DiagnosticTrace = withTraceDefaults(&FilterTrace{
	DecodeStart: func(session interface{}, oldPos int) {
		log.Printf("iofilter: decode start session=%v pos=%d\n", session, oldPos)
	},
	DecodeError: DefaultTrace.DecodeError,
	Realigned: func(session interface{}) {
		log.Printf("iofilter: realigned session=%v\n", session)
	},
	EncodeElided: func(session interface{}) {
		log.Printf("iofilter: encode elided session=%v\n", session)
	},
	DisposeFailed: DefaultTrace.DisposeFailed,
})

// withTraceDefaults merges t's unset hooks in from NoOpTrace, the same way
// client.ContextClientTrace merges a partial trace over NoOpLoggingHooks
// using mergo, guaranteeing every hook on the result is non-nil and safe to
// call unconditionally.
func withTraceDefaults(t *FilterTrace) *FilterTrace {
	if t == nil {
		t = &FilterTrace{}
	}
	merged := *t
	_ = mergo.Merge(&merged, NoOpTrace)
	return &merged
}

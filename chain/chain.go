// Package chain defines the collaborator surface that a filter chain host
// exposes to a filter: sessions, the next-filter view, write requests and
// futures, and the buffer/file-region types a codec operates on.
//
// Nothing in this package is implemented by iofilter itself; concrete
// implementations are supplied by the embedding runtime (or, for tests and
// demos, by chaintest and the examples/ packages).
package chain

// WorkerToken identifies the I/O worker currently responsible for a
// session's events. It is opaque to the filter: the only operation the
// filter performs on it is equality comparison against a snapshot taken
// earlier in a decode loop or flush, to detect that the session has been
// realigned onto a different worker mid-operation.
type WorkerToken interface{}

// Session is the per-connection context a filter operates against.
type Session interface {
	// ID returns the session's identity, assigned by the transport.
	ID() string

	// IsConnected reports whether the underlying transport connection is
	// still open.
	IsConnected() bool

	// WorkerToken returns a snapshot of the worker currently responsible
	// for this session's events. It may change between events (realignment)
	// or, in principle, be observed to change mid-event by a concurrently
	// running reassignment actor.
	WorkerToken() WorkerToken

	// IsWorkerRegistered reports whether the session currently has a
	// worker registered to deliver its events. A session between
	// registrations (e.g. mid-realignment) is not registered.
	IsWorkerRegistered() bool

	// GetAttribute returns the value stored under key, and whether it was
	// present.
	GetAttribute(key interface{}) (interface{}, bool)

	// SetAttribute stores value under key.
	SetAttribute(key interface{}, value interface{})

	// RemoveAttribute deletes any value stored under key.
	RemoveAttribute(key interface{})
}

// NextFilter is a filter's view of its immediate successor in the chain.
type NextFilter interface {
	MessageReceived(session Session, msg interface{})
	MessageSent(session Session, req WriteRequest)
	FilterWrite(session Session, req WriteRequest)
	ExceptionCaught(session Session, err error)
	SessionClosed(session Session)
}

// WriteFuture is a one-shot signal of write completion.
type WriteFuture interface {
	SetWritten()
	AwaitUninterruptibly()
	IsWritten() bool
}

// WriteRequest bundles an outbound message with its completion future. The
// message starts out as the raw application object and is overwritten in
// place by the encoder path (§4.4) once encoding succeeds.
type WriteRequest interface {
	GetMessage() interface{}
	SetMessage(m interface{})
	GetFuture() WriteFuture
}

// registeredSentinel is the distinguished WriteRequest that signals the
// session has just been (re)registered on a worker, per §4.3.
type registeredSentinel struct{}

func (registeredSentinel) GetMessage() interface{} { return nil }
func (registeredSentinel) SetMessage(interface{})  {}
func (registeredSentinel) GetFuture() WriteFuture  { return nil }

// Registered is the sentinel WriteRequest passed to messageSent to signal
// that a session has just become worker-registered.
var Registered WriteRequest = registeredSentinel{}

// IsRegistered reports whether req is the Registered sentinel.
func IsRegistered(req WriteRequest) bool {
	_, ok := req.(registeredSentinel)
	return ok
}

// FileRegion is a sentinel marker type for messages representing a
// zero-copy file-region write, which bypasses the encoder unchanged (§4.4).
type FileRegion interface {
	IsFileRegion() bool
}

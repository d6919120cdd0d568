// Package chaintest provides in-memory chain.Session and chain.NextFilter
// doubles for exercising a CodecFilter without a real transport: enough of
// the real collaborator's behaviour to drive scenario tests, nothing more.
package chaintest

import (
	"sync"

	"github.com/google/uuid"

	"github.com/damianoneill/iofilter/chain"
)

// Session is an in-memory chain.Session double. Tests call Realign to
// change its Worker field and simulate realignment mid-decode (§4.2,
// scenario-style tests), and SetRegistered to change its Registered field
// and simulate registration changes (§4.3, §4.6).
type Session struct {
	mu         sync.Mutex
	id         string
	connected  bool
	Worker     interface{}
	Registered bool
	attrs      map[interface{}]interface{}
}

// NewSession creates a connected, worker-registered Session with a fresh
// id and an initial worker token of "worker-0".
func NewSession() *Session {
	return &Session{
		id:         uuid.NewString(),
		connected:  true,
		Worker:     "worker-0",
		Registered: true,
		attrs:      make(map[interface{}]interface{}),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Close marks the session disconnected, as a real transport would on
// teardown.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
}

func (s *Session) WorkerToken() chain.WorkerToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Worker
}

// Realign simulates the runtime moving the session to a new worker thread
// between, or during, units of work (§4.2, §4.6).
func (s *Session) Realign(newWorker interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Worker = newWorker
}

func (s *Session) IsWorkerRegistered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Registered
}

// SetRegistered simulates the session losing or regaining its worker
// registration independent of realignment.
func (s *Session) SetRegistered(r bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Registered = r
}

func (s *Session) GetAttribute(key interface{}) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.attrs[key]
	return v, ok
}

func (s *Session) SetAttribute(key interface{}, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs[key] = value
}

func (s *Session) RemoveAttribute(key interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attrs, key)
}

// Future is an in-memory chain.WriteFuture double.
type Future struct {
	mu      sync.Mutex
	cond    *sync.Cond
	written bool
}

// NewFuture creates an unwritten Future.
func NewFuture() *Future {
	f := &Future{}
	f.cond = sync.NewCond(&f.mu)
	return f
}

func (f *Future) SetWritten() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = true
	f.cond.Broadcast()
}

func (f *Future) AwaitUninterruptibly() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for !f.written {
		f.cond.Wait()
	}
}

func (f *Future) IsWritten() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.written
}

// WriteRequest is an in-memory chain.WriteRequest double.
type WriteRequest struct {
	msg    interface{}
	future *Future
}

// NewWriteRequest creates a WriteRequest carrying msg, with a fresh Future.
func NewWriteRequest(msg interface{}) *WriteRequest {
	return &WriteRequest{msg: msg, future: NewFuture()}
}

func (w *WriteRequest) GetMessage() interface{}      { return w.msg }
func (w *WriteRequest) SetMessage(m interface{})     { w.msg = m }
func (w *WriteRequest) GetFuture() chain.WriteFuture { return w.future }

// FileRegion is a chain.FileRegion double representing a zero-copy file
// write, used to exercise the outbound bypass path (§4.4, property 2).
type FileRegion struct{}

func (FileRegion) IsFileRegion() bool { return true }

// RecordingNextFilter is a chain.NextFilter double that records every call
// it receives, in order, for assertion.
type RecordingNextFilter struct {
	mu         sync.Mutex
	Received   []interface{}
	Sent       []chain.WriteRequest
	Written    []chain.WriteRequest
	Exceptions []error
	Closed     int
}

// NewRecordingNextFilter creates an empty RecordingNextFilter.
func NewRecordingNextFilter() *RecordingNextFilter {
	return &RecordingNextFilter{}
}

func (r *RecordingNextFilter) MessageReceived(session chain.Session, msg interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Received = append(r.Received, msg)
}

func (r *RecordingNextFilter) MessageSent(session chain.Session, req chain.WriteRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sent = append(r.Sent, req)
}

func (r *RecordingNextFilter) FilterWrite(session chain.Session, req chain.WriteRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Written = append(r.Written, req)
}

func (r *RecordingNextFilter) ExceptionCaught(session chain.Session, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Exceptions = append(r.Exceptions, err)
}

func (r *RecordingNextFilter) SessionClosed(session chain.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Closed++
}

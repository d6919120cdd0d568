package codec

import (
	"sync"

	"github.com/damianoneill/iofilter/chain"
)

// DecoderOutput is the per-session sink a Decoder writes produced messages
// into. It owns an ordered (FIFO) queue and drains it to the next filter as
// messageReceived events, honouring worker-realignment checkpoints (§4.6).
//
// DecoderOutput is the one object in this package mutated from potentially
// two threads across a realignment boundary (§5); callers coordinate that
// with Lock/Unlock, mirroring the bare sync.Mutex guards
// netconf/client/message.go uses around its own response-channel queue.
type DecoderOutput struct {
	mu    sync.Mutex
	queue []interface{}
}

// NewDecoderOutput creates an empty DecoderOutput.
func NewDecoderOutput() *DecoderOutput {
	return &DecoderOutput{}
}

// Lock acquires the DecoderOutput's exclusive hold. Callers (CodecFilter)
// take this around any decode+flush unit of work (§4.2c, §4.2d, §4.3, §4.5)
// so that a decoder's Write calls and the subsequent Flush observe a
// consistent queue even if another worker is mid-flush after realignment.
func (d *DecoderOutput) Lock() { d.mu.Lock() }

// Unlock releases the hold taken by Lock.
func (d *DecoderOutput) Unlock() { d.mu.Unlock() }

// Write enqueues msg. Callers must hold the DecoderOutput's lock (taken via
// Lock) for the duration of the Decoder call that invokes Write, per §3's
// mutual-exclusion discipline.
func (d *DecoderOutput) Write(msg interface{}) {
	d.queue = append(d.queue, msg)
}

// Pending reports whether any messages are queued, awaiting flush.
func (d *DecoderOutput) Pending() bool {
	return len(d.queue) > 0
}

// Flush drains the queue to nextFilter's MessageReceived, in enqueue order,
// stopping early if session is not worker-registered or is realigned to a
// different worker mid-drain (§4.6). Pending messages left by an early stop
// remain queued for the next Flush call. Callers must hold the
// DecoderOutput's lock.
func (d *DecoderOutput) Flush(nextFilter chain.NextFilter, session chain.Session) {
	if !session.IsWorkerRegistered() {
		return
	}

	ioThread := session.WorkerToken()
	for len(d.queue) > 0 {
		if session.WorkerToken() != ioThread {
			// Realigned mid-flush: yield, leaving the remainder queued
			// for whichever worker resumes next (§4.6).
			return
		}
		msg := d.queue[0]
		d.queue = d.queue[1:]
		nextFilter.MessageReceived(session, msg)
	}
}

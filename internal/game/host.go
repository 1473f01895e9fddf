package game

// FrameHost schedules the loop's per-frame callback. RequestFrame queues cb
// for the next frame and returns a function that cancels it.
type FrameHost interface {
	RequestFrame(cb func()) (cancel func())
}

// QueueHost holds at most one pending frame callback and runs it when the
// owner calls Fire. The terminal host fires it from its tick message.
type QueueHost struct {
	pending func()
	seq     uint64
}

// NewQueueHost creates an idle host.
func NewQueueHost() *QueueHost {
	return &QueueHost{}
}

// RequestFrame replaces the pending callback with cb.
func (h *QueueHost) RequestFrame(cb func()) func() {
	h.seq++
	id := h.seq
	h.pending = cb
	return func() {
		if h.seq == id {
			h.pending = nil
		}
	}
}

// Pending reports whether a frame is waiting.
func (h *QueueHost) Pending() bool {
	return h.pending != nil
}

// Fire runs the pending callback, if any, and reports whether it ran.
func (h *QueueHost) Fire() bool {
	cb := h.pending
	if cb == nil {
		return false
	}
	h.pending = nil
	cb()
	return true
}

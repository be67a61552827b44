package engine

// startTimer registers the zero-delay repeating mainloop.Loop timer
// (§4.5 timer mode), lazily and only once: subsequent Feed calls while
// the timer is already armed are no-ops here, matching
// sol_message_digest_common new-params + if handle->timer check.
func (h *Handle) startTimer() {
	h.mu.Lock()
	if h.timerActive {
		h.mu.Unlock()
		return
	}
	h.timerActive = true
	h.mu.Unlock()

	h.ref() // scheduler resource reference, released when the timer detaches
	h.loop.AddTimer(h.timerTick)
}

// timerTick is one tick of the timer-mode scheduler (§4.5 step 1-4). It
// runs on the mainloop.Loop's own goroutine, so callbacks fire inline
// with no dispatch queue and no locking around the callback itself.
func (h *Handle) timerTick() bool {
	h.mu.Lock()
	deleted := h.deleted
	h.mu.Unlock()

	if !deleted {
		if h.feedPending() {
			h.feedOnce()
		}
		if h.digestPendingBlob() != nil {
			h.receiveDigestOnce()
		}
	}

	// Decide whether to repeat and clear timerActive under one lock, so a
	// concurrent Feed either is seen here or finds the timer inactive and
	// re-arms it.
	h.mu.Lock()
	more := !deleted && (len(h.pending) > 0 || h.digest != nil)
	if !more {
		h.timerActive = false
	}
	h.mu.Unlock()

	if !more {
		h.unref()
	}
	return more
}

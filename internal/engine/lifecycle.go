package engine

// ref and unref implement the refcount discipline of §3/§5: the Handle
// stays alive while refcount > 0, and free runs exactly once, when it
// reaches zero with deleted already set.
func (h *Handle) ref() { h.refcount.Add(1) }

func (h *Handle) unref() {
	if h.refcount.Add(-1) == 0 {
		h.free()
	}
}

// Delete marks the Handle for destruction (§4.7). Idempotent: a second
// call logs and returns.
func (h *Handle) Delete() {
	h.mu.Lock()
	if h.deleted {
		h.mu.Unlock()
		logWarn(h, "delete called on an already-deleted handle")
		return
	}
	if h.refcount.Load() < 1 {
		h.mu.Unlock()
		logWarn(h, "delete called with refcount < 1")
		return
	}
	h.deleted = true
	h.mu.Unlock()

	logDebug(h, "delete", "pending", len(h.pending), "digest_pending", h.digest != nil)

	h.stopScheduler()

	h.unref()
}

func (h *Handle) stopScheduler() {
	switch h.cfg.Mode {
	case ModeThread:
		h.stopThread()
	case ModeTimer:
		// Nothing to signal proactively: the next scheduled tick (or
		// the absence of one, if no work was pending) observes
		// h.deleted and detaches itself. See scheduler_timer.go.
	}
}

// free runs exactly once, when refcount reaches zero after deletion. It
// cancels every blob still owed a callback, releases the in-flight
// digest if any, and hands the backend its Cleanup call.
func (h *Handle) free() {
	h.mu.Lock()
	dispatch := h.dispatch
	h.dispatch = nil
	pending := h.pending
	h.pending = nil
	digest := h.digest
	h.digest = nil
	h.mu.Unlock()

	for _, pd := range dispatch {
		if !pd.isDigest && h.cfg.OnFeedDone != nil {
			h.cfg.OnFeedDone(h, pd.blob, ErrCanceled)
		}
		pd.blob.Unref()
	}

	for _, pf := range pending {
		if h.cfg.OnFeedDone != nil {
			h.cfg.OnFeedDone(h, pf.blob, ErrCanceled)
		}
		pf.blob.Unref()
	}

	if digest != nil {
		digest.Unref()
	}

	h.ops.Cleanup(h)

	if h.externalFree != nil {
		h.externalFree(h.context)
	}
}

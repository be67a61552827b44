package engine

import "github.com/peter-holm/message-digest/blob"

// reportFeedBlob delivers a completed feed (§4.6): in thread mode it
// enqueues a dispatch entry and posts the feedback hop onto the host
// loop; in timer mode, already running on the host loop's goroutine, it
// invokes OnFeedDone inline.
func (h *Handle) reportFeedBlob(input *blob.Blob) {
	if h.cfg.Mode == ModeThread {
		h.mu.Lock()
		h.dispatch = append(h.dispatch, dispatchEntry{blob: input, isDigest: false})
		h.mu.Unlock()
		h.loop.Post(h.drainDispatch)
		return
	}

	h.ref()
	if h.cfg.OnFeedDone != nil {
		h.cfg.OnFeedDone(h, input, nil)
	}
	input.Unref()
	h.unref()
}

// reportDigestReady delivers the completed digest (§4.6), transferring
// ownership of h.digest to the dispatch queue in thread mode so a
// concurrent setupReceiveDigest never observes a stale non-nil slot.
func (h *Handle) reportDigestReady() {
	h.mu.Lock()
	d := h.digest
	h.digest = nil
	h.mu.Unlock()

	if h.cfg.Mode == ModeThread {
		h.mu.Lock()
		h.dispatch = append(h.dispatch, dispatchEntry{blob: d, isDigest: true})
		h.mu.Unlock()
		h.loop.Post(h.drainDispatch)
		return
	}

	h.ref()
	h.cfg.OnDigestReady(h, d)
	d.Unref()
	h.unref()
}

// drainDispatch is the main-loop-side feedback handler (§4.5 thread
// mode): atomically swap the dispatch queue, take one reference for the
// whole batch, and for each entry invoke the matching callback unless
// the Handle has been deleted in the meantime — unconditionally
// releasing the entry's blob reference either way.
func (h *Handle) drainDispatch() {
	h.mu.Lock()
	batch := h.dispatch
	h.dispatch = nil
	h.mu.Unlock()

	h.ref()
	for _, pd := range batch {
		h.mu.Lock()
		deleted := h.deleted
		h.mu.Unlock()

		if !deleted {
			if pd.isDigest {
				h.cfg.OnDigestReady(h, pd.blob)
			} else if h.cfg.OnFeedDone != nil {
				h.cfg.OnFeedDone(h, pd.blob, nil)
			}
		}
		pd.blob.Unref()
	}
	h.unref()
}

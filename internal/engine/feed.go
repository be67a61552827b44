package engine

import "github.com/peter-holm/message-digest/blob"

// Feed submits input for processing (§4.2). The caller receives no inline
// acknowledgement beyond the returned error; the fate of input is
// reported asynchronously via OnFeedDone.
func (h *Handle) Feed(input *blob.Blob, isLast bool) error {
	if input == nil {
		return ErrInvalidArgument
	}

	h.mu.Lock()
	if h.deleted || h.finished || h.refcount.Load() < 1 {
		h.mu.Unlock()
		return ErrInvalidArgument
	}

	total := h.accumulatedTx + uint64(input.Size())
	if total < h.accumulatedTx {
		h.mu.Unlock()
		return ErrOverflow
	}
	if h.cfg.FeedSize != 0 && total >= h.cfg.FeedSize {
		h.mu.Unlock()
		return ErrNoSpace
	}

	input.Ref()
	h.pending = append(h.pending, pendingFeed{blob: input, offset: 0, isLast: isLast})
	h.accumulatedTx = total
	h.mu.Unlock()

	if err := h.startScheduler(); err != nil {
		// Roll back under the lock (§9 open question 3): the original
		// source subtracts size and drops the queue tail outside the
		// lock, which can transiently expose an inconsistent
		// accumulatedTx to a concurrent Feed. Doing it here, under mu,
		// avoids that window entirely.
		h.mu.Lock()
		h.pending = h.pending[:len(h.pending)-1]
		h.accumulatedTx -= uint64(input.Size())
		h.mu.Unlock()
		input.Unref()
		return ErrOutOfMemory
	}

	if isLast {
		h.mu.Lock()
		h.finished = true
		h.mu.Unlock()
	}

	logDebug(h, "feed accepted", "bytes", input.Size(), "is_last", isLast)
	return nil
}

func (h *Handle) startScheduler() error {
	switch h.cfg.Mode {
	case ModeThread:
		return h.startThread()
	default:
		h.startTimer()
		return nil
	}
}

func (h *Handle) feedPending() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pending) > 0
}

func (h *Handle) peekHeadBlob() *blob.Blob {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.pending) == 0 {
		return nil
	}
	return h.pending[0].blob
}

// feedOnce executes one step of the feed driver (§4.3): pull the head
// entry, slice it to the configured block ceiling, invoke Feed, and
// either advance the offset or retire the entry.
func (h *Handle) feedOnce() {
	h.mu.Lock()
	if len(h.pending) == 0 {
		h.mu.Unlock()
		return
	}
	pf := h.pending[0]
	input := pf.blob
	offset := pf.offset
	isLast := pf.isLast
	mem := input.Mem()[offset:]
	if h.cfg.MaxFeedBlockSize > 0 && len(mem) > h.cfg.MaxFeedBlockSize {
		mem = mem[:h.cfg.MaxFeedBlockSize]
		isLast = false
	}
	h.mu.Unlock()

	n, err := h.ops.Feed(h, mem, isLast)
	if err != nil {
		if err != ErrAgain && err != ErrInterrupted {
			logWarn(h, "feed failed, retrying", "err", err)
		}
		return
	}

	if offset+n < input.Size() {
		// Re-fetch the head entry by index after reacquiring the lock
		// rather than reusing pf: a concurrent Feed() may have grown
		// the backing slice between the unlock above and here. pf
		// itself is a value copy taken before the unlock and must
		// never be written back.
		h.mu.Lock()
		if len(h.pending) > 0 {
			h.pending[0].offset += n
		}
		h.accumulatedTx -= uint64(n)
		h.mu.Unlock()
		return
	}

	if isLast {
		h.setupReceiveDigest()
	}

	h.mu.Lock()
	h.accumulatedTx -= uint64(n)
	h.pending = h.pending[1:]
	h.mu.Unlock()

	h.reportFeedBlob(input)
}

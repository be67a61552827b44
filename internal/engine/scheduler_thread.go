package engine

// startThread lazily spawns the worker goroutine (once per Handle) and
// wakes it, standing in for the pipe-backed command channel of §4.5's
// thread mode. cmdWake has capacity 1 and the send below is
// non-blocking: multiple advances coalesce into at most one backlog
// unit, exactly as §9 requires, because the driver always re-checks the
// queue on each iteration rather than trusting the wakeup count.
func (h *Handle) startThread() error {
	h.mu.Lock()
	alreadyRunning := h.running
	if !alreadyRunning {
		h.running = true
	}
	h.mu.Unlock()

	if !alreadyRunning {
		h.ref() // scheduler resource reference, released via a posted event once threadLoop exits
		go h.threadLoop()
	}

	select {
	case h.cmdWake <- struct{}{}:
	default:
	}

	return nil
}

func (h *Handle) stopThread() {
	h.cancelOnce.Do(func() { close(h.cmdCancel) })
}

// threadLoop is the worker goroutine's iterate routine (§4.5). When no
// feed or digest work is queued it blocks for a command; otherwise it
// drains the head blob through the feed driver until the head changes
// identity or cancellation is observed, then drains any pending digest
// read, and loops.
func (h *Handle) threadLoop() {
	defer func() {
		// Releasing the scheduler's own reference is itself a
		// main-loop-affine event, exactly like the finished callback in
		// §4.5: post it rather than unref inline here, so it serializes
		// on the loop's FIFO queue after any dispatch entries this run
		// already posted via reportFeedBlob/reportDigestReady. Unreffing
		// inline could free the Handle on this goroutine before the
		// loop has drained those entries, running free()'s cancellation
		// path and ops.Cleanup off the main-loop thread.
		h.loop.Post(func() {
			h.mu.Lock()
			h.running = false
			h.mu.Unlock()
			h.unref()
		})
	}()

	for {
		// Wakeups coalesce, so only wait for one when the queue is
		// actually empty; otherwise go straight back to work.
		if h.peekHeadBlob() == nil && h.digestPendingBlob() == nil {
			select {
			case <-h.cmdCancel:
				return
			case <-h.cmdWake:
			}
		}

		current := h.peekHeadBlob()
		for current != nil {
			select {
			case <-h.cmdCancel:
				return
			default:
			}

			h.feedOnce()

			next := h.peekHeadBlob()
			if next != current {
				break
			}
		}

		for h.digestPendingBlob() != nil {
			select {
			case <-h.cmdCancel:
				return
			default:
			}
			h.receiveDigestOnce()
		}
	}
}

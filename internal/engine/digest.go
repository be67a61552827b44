package engine

import "github.com/peter-holm/message-digest/blob"

// setupReceiveDigest allocates the output digest blob the first (and
// only) time the is_last chunk is fully accepted (§4.4).
func (h *Handle) setupReceiveDigest() {
	h.mu.Lock()
	if h.digest != nil {
		h.mu.Unlock()
		logWarn(h, "digest already pending, ignoring duplicate setup")
		return
	}
	h.digest = blob.New(make([]byte, h.digestSize), nil)
	h.digestOffset = 0
	h.mu.Unlock()

	logDebug(h, "digest receive armed", "size", h.digestSize)
}

func (h *Handle) digestPendingBlob() *blob.Blob {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.digest
}

// receiveDigestOnce executes one step of the digest receiver (§4.4),
// draining ReadDigest until the configured digest size is reached.
func (h *Handle) receiveDigestOnce() {
	h.mu.Lock()
	d := h.digest
	if d == nil {
		h.mu.Unlock()
		return
	}
	offset := h.digestOffset
	mem := d.Mem()[offset:]
	h.mu.Unlock()

	n, err := h.ops.ReadDigest(h, mem)
	if err != nil {
		if err != ErrAgain && err != ErrInterrupted {
			logWarn(h, "read digest failed, retrying", "err", err)
		}
		return
	}

	h.mu.Lock()
	h.digestOffset += n
	done := h.digestOffset >= d.Size()
	h.mu.Unlock()

	if done {
		h.reportDigestReady()
	}
}

package backend

import "github.com/peter-holm/message-digest/internal/engine"

// PartialAccept wraps another Ops and caps how many bytes each Feed call
// may consume, standing in for a backend that only ever accepts part of
// a write (a poll-unfriendly socket under backpressure, for instance).
// It exists to exercise the engine's partial-completion path (§4.3)
// deterministically, without a real short-write-prone backend on hand.
type PartialAccept struct {
	Inner     engine.Ops
	MaxAccept int
}

func (p PartialAccept) Feed(h *engine.Handle, buf []byte, isLast bool) (int, error) {
	b := buf
	if p.MaxAccept > 0 && len(b) > p.MaxAccept {
		b = b[:p.MaxAccept]
	}
	return p.Inner.Feed(h, b, isLast)
}

func (p PartialAccept) ReadDigest(h *engine.Handle, buf []byte) (int, error) {
	return p.Inner.ReadDigest(h, buf)
}

func (p PartialAccept) Cleanup(h *engine.Handle) {
	p.Inner.Cleanup(h)
}

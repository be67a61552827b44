package backend

import (
	"sync"

	"github.com/peter-holm/message-digest/internal/engine"
)

// Flaky wraps another Ops and returns ErrAgain on every Nth call to
// Feed and ReadDigest, simulating the transient-retry behavior a
// kernel-crypto socket exhibits under backpressure (§7). The engine is
// expected to silently retry without logging on ErrAgain/ErrInterrupted
// and make no forward progress on those calls.
type Flaky struct {
	Inner  engine.Ops
	EveryN int

	mu        sync.Mutex
	feedCalls int
	readCalls int
}

func (f *Flaky) Feed(h *engine.Handle, buf []byte, isLast bool) (int, error) {
	f.mu.Lock()
	f.feedCalls++
	again := f.EveryN > 0 && f.feedCalls%f.EveryN == 0
	f.mu.Unlock()
	if again {
		return 0, engine.ErrAgain
	}
	return f.Inner.Feed(h, buf, isLast)
}

func (f *Flaky) ReadDigest(h *engine.Handle, buf []byte) (int, error) {
	f.mu.Lock()
	f.readCalls++
	again := f.EveryN > 0 && f.readCalls%f.EveryN == 0
	f.mu.Unlock()
	if again {
		return 0, engine.ErrAgain
	}
	return f.Inner.ReadDigest(h, buf)
}

func (f *Flaky) Cleanup(h *engine.Handle) {
	f.Inner.Cleanup(h)
}

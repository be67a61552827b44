// Package backend provides reference Ops implementations for the
// message-digest engine. The engine itself never picks an algorithm —
// these are external collaborators, concrete hash algorithms being out
// of scope for internal/engine — but a Go module needs at least one
// usable backend to build and demonstrate the engine end to end.
package backend

import (
	"hash"

	"github.com/peter-holm/message-digest/internal/engine"
)

// hashContext is the per-Handle backend context HashOps stores via
// ContextParams.CopyInline: one running hash.Hash instance.
type hashContext struct {
	h hash.Hash
}

// HashOps adapts any stdlib hash.Hash constructor (crypto/sha256.New,
// crypto/sha512.New, ...) to the engine's Ops contract. Feed/ReadDigest
// never block and never return ErrAgain — hash.Hash.Write always
// consumes its whole argument — so HashOps is suited to either scheduler
// mode, grounded in how distribution/digester.go and uber-kraken's
// Digester wrap hash.Hash behind a narrower interface.
type HashOps struct{}

// NewHashOps returns an Ops built around newHash and the ContextParams
// that allocate one hash.Hash instance per Handle.
func NewHashOps(newHash func() hash.Hash) (engine.Ops, engine.ContextParams) {
	ops := &HashOps{}
	ctxParams := engine.ContextParams{
		InlineTemplate: struct{}{},
		CopyInline: func(any) any {
			return &hashContext{h: newHash()}
		},
	}
	return ops, ctxParams
}

func (*HashOps) Feed(h *engine.Handle, p []byte, isLast bool) (int, error) {
	ctx := h.Context().(*hashContext)
	return ctx.h.Write(p)
}

func (*HashOps) ReadDigest(h *engine.Handle, p []byte) (int, error) {
	ctx := h.Context().(*hashContext)
	sum := ctx.h.Sum(nil)
	return copy(p, sum), nil
}

func (*HashOps) Cleanup(*engine.Handle) {}

package backend

import (
	"encoding/binary"

	"github.com/peter-holm/message-digest/internal/engine"
)

// checksumContext holds the running accumulator for one Handle.
type checksumContext struct {
	sum uint32
}

// Checksum32Ops is the reference toy backend: a 32-bit sum of the fed
// bytes, reduced modulo 2^32 by unsigned overflow and emitted as a
// little-endian 4-byte digest. It is deterministic and never blocks,
// making it the fixture of choice for exercising the feed/digest state
// machine independent of any real cryptographic algorithm.
type Checksum32Ops struct{}

// NewChecksum32Ops returns the Ops and matching ContextParams.
func NewChecksum32Ops() (engine.Ops, engine.ContextParams) {
	ops := Checksum32Ops{}
	ctxParams := engine.ContextParams{
		InlineTemplate: struct{}{},
		CopyInline: func(any) any {
			return &checksumContext{}
		},
	}
	return ops, ctxParams
}

func (Checksum32Ops) Feed(h *engine.Handle, p []byte, isLast bool) (int, error) {
	ctx := h.Context().(*checksumContext)
	for _, b := range p {
		ctx.sum += uint32(b)
	}
	return len(p), nil
}

func (Checksum32Ops) ReadDigest(h *engine.Handle, p []byte) (int, error) {
	ctx := h.Context().(*checksumContext)
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], ctx.sum)
	return copy(p, buf[:]), nil
}

func (Checksum32Ops) Cleanup(*engine.Handle) {}

// Package blob implements the reference-counted, immutable byte buffer
// consumed by the message-digest engine.
//
// The engine treats blobs as an external collaborator (see the engine's
// Ops contract): it never mutates blob contents, only takes and drops
// references. This package provides a concrete, usable implementation of
// that contract so the engine can be built and tested end to end.
//
// IMMUTABILITY CONTRACT:
//   - Producers MUST NOT modify a Blob's bytes after handing it to Feed.
//   - Consumers (the engine, backends) MUST NOT modify a Blob's bytes.
//   - Enforcement is documentation-based, as in the teacher's Frame type.
package blob

import "sync/atomic"

// Blob is a shared, refcount-managed, immutable byte buffer.
type Blob struct {
	mem    []byte
	refs   atomic.Int32
	onZero func([]byte)
}

// New creates a Blob wrapping mem with an initial reference count of 1.
// onZero, if non-nil, is invoked with mem once the last reference is
// dropped (e.g. to return the buffer to a pool); it may be nil.
func New(mem []byte, onZero func([]byte)) *Blob {
	b := &Blob{mem: mem, onZero: onZero}
	b.refs.Store(1)
	return b
}

// Mem returns the underlying bytes. Callers must not retain mem beyond
// the reference they hold on b, and must not mutate it.
func (b *Blob) Mem() []byte { return b.mem }

// Size returns the number of bytes in the blob.
func (b *Blob) Size() int { return len(b.mem) }

// Ref increments the reference count and returns b, for chaining at
// call sites that mirror the original's sol_blob_ref(blob) idiom.
func (b *Blob) Ref() *Blob {
	b.refs.Add(1)
	return b
}

// Unref decrements the reference count, invoking onZero exactly once
// when it reaches zero.
func (b *Blob) Unref() {
	if b.refs.Add(-1) == 0 {
		if b.onZero != nil {
			b.onZero(b.mem)
		}
	}
}

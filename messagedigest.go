// Package messagedigest implements an asynchronous, blob-oriented
// streaming message-digest engine: it accepts incrementally supplied
// input chunks, drives them through a pluggable hashing backend that may
// not integrate with an event-loop poller, and delivers both per-chunk
// completion callbacks and a final digest blob through the host
// application's main loop.
//
// It exists because cryptographic hash backends (kernel-crypto-style
// socket APIs being the motivating example) are neither poll-friendly
// nor reliably non-blocking: the engine bridges that impedance mismatch
// to a cooperative event loop, via one of two scheduler variants
// selected at construction — a dedicated goroutine for backends that may
// block, or a zero-delay repeating timer for backends that never do.
//
// The engine does not choose algorithms, manage keys, or buffer input
// indefinitely; callers bound memory via Config.FeedSize. See
// internal/engine for the state machine and package backend for
// reference Ops implementations.
package messagedigest

import (
	"github.com/peter-holm/message-digest/blob"
	"github.com/peter-holm/message-digest/internal/engine"
	"github.com/peter-holm/message-digest/mainloop"
)

// Handle is re-exported from internal/engine to avoid import cycles; see
// internal/engine/handle.go for the full state machine it drives.
type Handle = engine.Handle

// Ops is the backend vtable the engine drives: Feed, ReadDigest, and
// Cleanup. Concrete hash algorithms are out of scope for this module —
// see package backend for reference implementations.
type Ops = engine.Ops

// Config carries construction-time parameters beyond the Ops vtable and
// the backend context.
type Config = engine.Config

// ContextParams selects exactly one of an inline context template
// (copied into handle-owned storage) or an externally owned context.
type ContextParams = engine.ContextParams

// Mode selects which scheduler variant a Handle uses.
type Mode = engine.Mode

const (
	// ModeThread drives the handle from a dedicated goroutine, for
	// backends whose Feed/ReadDigest may block.
	ModeThread = engine.ModeThread
	// ModeTimer drives the handle from a zero-delay repeating
	// mainloop.Loop timer, for backends that never block.
	ModeTimer = engine.ModeTimer
)

// Errors surfaced synchronously by Feed and New.
var (
	ErrInvalidArgument = engine.ErrInvalidArgument
	ErrOverflow        = engine.ErrOverflow
	ErrNoSpace         = engine.ErrNoSpace
	ErrOutOfMemory     = engine.ErrOutOfMemory
	ErrCanceled        = engine.ErrCanceled
)

// ErrAgain and ErrInterrupted are the transient-retry sentinels a
// backend's Feed/ReadDigest may return.
var (
	ErrAgain       = engine.ErrAgain
	ErrInterrupted = engine.ErrInterrupted
)

// Loop is re-exported from package mainloop: the host-affine callback
// dispatcher every Handle delivers its callbacks through.
type Loop = mainloop.Loop

// NewLoop creates an idle Loop; call Run on the thread the host
// application considers its main loop.
func NewLoop() *Loop { return mainloop.New() }

// Blob is re-exported from package blob: the reference-counted,
// immutable byte buffer Feed consumes and OnDigestReady/OnFeedDone
// deliver.
type Blob = blob.Blob

// NewBlob wraps mem as a Blob with an initial reference count of 1.
// onZero, if non-nil, runs once the last reference is dropped.
func NewBlob(mem []byte, onZero func([]byte)) *Blob { return blob.New(mem, onZero) }

// New constructs a Handle (§4.1): ops, the configured digest size, the
// callback/scheduler Config, and exactly one of an inline or external
// backend context.
//
// It fails with ErrInvalidArgument if required ops, OnDigestReady, the
// Loop, or the digest size are missing, or if an external context is
// supplied without a freeing function.
func New(ops Ops, digestSize int, cfg Config, ctxParams ContextParams) (*Handle, error) {
	return engine.New(ops, digestSize, cfg, ctxParams)
}

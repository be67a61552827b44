package engine

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/peter-holm/message-digest/blob"
	"github.com/peter-holm/message-digest/mainloop"
)

type pendingFeed struct {
	blob   *blob.Blob
	offset int
	isLast bool
}

type dispatchEntry struct {
	blob     *blob.Blob
	isDigest bool
}

// Handle is the central entity: the state shared by the feed driver, the
// digest receiver, and whichever scheduler variant is active. All access
// to the fields below mu must hold mu, except the atomic refcount and the
// append-only config captured at construction.
type Handle struct {
	ops  Ops
	cfg  Config
	loop *mainloop.Loop

	// context holds either the inline-copy or the external pointer; see
	// the Context accessor below and the two construction paths in New.
	context      any
	externalFree func(any)

	traceID string

	mu            sync.Mutex
	pending       []pendingFeed
	accumulatedTx uint64
	finished      bool
	deleted       bool

	digestSize   int
	digest       *blob.Blob
	digestOffset int

	refcount atomic.Int32

	// thread-mode scheduler state (nil/zero value unused in timer mode)
	cmdWake    chan struct{}
	cmdCancel  chan struct{}
	cancelOnce sync.Once
	running    bool
	dispatch   []dispatchEntry

	// timer-mode scheduler state
	timerActive bool
}

// New constructs a Handle. Fails with ErrInvalidArgument if required ops,
// callbacks, digest size, context params, or the host loop are missing.
func New(ops Ops, digestSize int, cfg Config, ctxParams ContextParams) (*Handle, error) {
	if ops == nil || digestSize <= 0 || cfg.OnDigestReady == nil || cfg.Loop == nil {
		return nil, ErrInvalidArgument
	}
	if ctxParams.External != nil && ctxParams.ExternalFree == nil {
		return nil, ErrInvalidArgument
	}
	if ctxParams.InlineTemplate != nil && ctxParams.CopyInline == nil {
		return nil, ErrInvalidArgument
	}

	h := &Handle{
		ops:     ops,
		cfg:     cfg,
		loop:    cfg.Loop,
		traceID: uuid.New().String(),
	}
	h.refcount.Store(1)
	h.digestSize = digestSize

	if ctxParams.External != nil {
		h.context = ctxParams.External
		h.externalFree = ctxParams.ExternalFree
	} else if ctxParams.InlineTemplate != nil {
		h.context = ctxParams.CopyInline(ctxParams.InlineTemplate)
	}

	if cfg.Mode == ModeThread {
		h.cmdWake = make(chan struct{}, 1)
		h.cmdCancel = make(chan struct{})
	}

	logDebug(h, "handle created", "algorithm", cfg.Algorithm)
	return h, nil
}

// Context returns the backend-private context region: the inline copy or
// the external pointer, whichever was configured at construction.
func (h *Handle) Context() any { return h.context }

// Data returns Config.Data, the caller-supplied value threaded through
// to every callback invocation's Handle argument. Go closures make this
// largely redundant with capturing state directly in OnDigestReady/
// OnFeedDone, but it is exposed for callers that share one set of
// callbacks across many handles and need to recover per-handle state.
func (h *Handle) Data() any { return h.cfg.Data }

// TraceID returns the correlation id assigned at construction, useful for
// callers that want to fold engine logs into their own structured logs.
func (h *Handle) TraceID() string { return h.traceID }

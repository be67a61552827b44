package backend_test

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"
	"testing"
	"time"

	digest "github.com/peter-holm/message-digest"
	"github.com/peter-holm/message-digest/backend"
)

func runToDigest(t *testing.T, ops digest.Ops, ctxParams digest.ContextParams, digestSize int, data []byte, chunkSize int) []byte {
	t.Helper()

	loop := digest.NewLoop()
	go loop.Run()
	defer loop.Close()

	done := make(chan []byte, 1)
	h, err := digest.New(ops, digestSize, digest.Config{
		OnDigestReady: func(h *digest.Handle, d *digest.Blob) {
			out := append([]byte(nil), d.Mem()...)
			d.Unref()
			done <- out
		},
		Mode: digest.ModeTimer,
		Loop: loop,
	}, ctxParams)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if chunkSize <= 0 || chunkSize >= len(data) {
		if err := h.Feed(digest.NewBlob(append([]byte(nil), data...), nil), true); err != nil {
			t.Fatalf("Feed: %v", err)
		}
	} else {
		for offset := 0; offset < len(data); offset += chunkSize {
			end := offset + chunkSize
			if end > len(data) {
				end = len(data)
			}
			isLast := end == len(data)
			if err := h.Feed(digest.NewBlob(append([]byte(nil), data[offset:end]...), nil), isLast); err != nil {
				t.Fatalf("Feed: %v", err)
			}
		}
	}

	select {
	case got := <-done:
		return got
	case <-time.After(2 * time.Second):
		t.Fatal("digest never became ready")
		return nil
	}
}

// TestChecksum32OpsMatchesManualSum verifies Checksum32Ops computes the
// same little-endian sum-of-bytes digest as a direct reference
// computation.
func TestChecksum32OpsMatchesManualSum(t *testing.T) {
	data := []byte("a deterministic fixture payload")
	ops, ctxParams := backend.NewChecksum32Ops()
	got := runToDigest(t, ops, ctxParams, 4, data, 0)

	var sum uint32
	for _, b := range data {
		sum += uint32(b)
	}
	want := make([]byte, 4)
	binary.LittleEndian.PutUint32(want, sum)

	if string(got) != string(want) {
		t.Fatalf("digest = %x, want %x", got, want)
	}
}

// TestHashOpsMatchesStdlibSHA256 verifies HashOps wrapping sha256.New
// reproduces the stdlib digest for the same input.
func TestHashOpsMatchesStdlibSHA256(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	ops, ctxParams := backend.NewHashOps(func() hash.Hash { return sha256.New() })
	got := runToDigest(t, ops, ctxParams, sha256.Size, data, 7)

	want := sha256.Sum256(data)
	if string(got) != string(want[:]) {
		t.Fatalf("digest = %x, want %x", got, want)
	}
}

// TestPartialAcceptClampsWithoutCorruptingDigest verifies wrapping a
// backend in PartialAccept still yields the correct digest, only with
// more, smaller Feed calls underneath.
func TestPartialAcceptClampsWithoutCorruptingDigest(t *testing.T) {
	data := make([]byte, 133)
	for i := range data {
		data[i] = byte(i * 3)
	}

	inner, ctxParams := backend.NewChecksum32Ops()
	ops := backend.PartialAccept{Inner: inner, MaxAccept: 9}
	got := runToDigest(t, ops, ctxParams, 4, data, 0)

	var sum uint32
	for _, b := range data {
		sum += uint32(b)
	}
	want := make([]byte, 4)
	binary.LittleEndian.PutUint32(want, sum)

	if string(got) != string(want) {
		t.Fatalf("digest = %x, want %x", got, want)
	}
}

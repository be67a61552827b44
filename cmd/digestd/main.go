// Command digestd is a demo daemon wiring the message-digest engine to
// a YAML-configured backend and an MQTT publisher: it streams stdin
// through a Handle and publishes one feed-done event per chunk plus a
// final digest-ready event.
package main

import (
	"bufio"
	"context"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"flag"
	"hash"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	digest "github.com/peter-holm/message-digest"
	"github.com/peter-holm/message-digest/backend"
	"github.com/peter-holm/message-digest/internal/daemon/config"
	"github.com/peter-holm/message-digest/internal/daemon/emitter"
)

const defaultConfigPath = "config/digestd.yaml"

const readChunkBytes = 64 * 1024

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("digestd: failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	em := emitter.NewMQTTEmitter(cfg)
	if err := em.Connect(ctx); err != nil {
		slog.Error("digestd: failed to connect to mqtt broker", "err", err)
		os.Exit(1)
	}
	defer em.Disconnect()

	loop := digest.NewLoop()
	go loop.Run()
	defer loop.Close()

	ops, ctxParams, digestSize := buildOps(cfg.Algorithm)

	done := make(chan struct{})
	h, err := digest.New(ops, digestSize, digest.Config{
		Algorithm: cfg.Algorithm,
		OnDigestReady: func(h *digest.Handle, d *digest.Blob) {
			hexDigest := hex.EncodeToString(d.Mem())
			d.Unref()
			if err := em.PublishDigestReady(emitter.DigestEvent{
				InstanceID: cfg.InstanceID,
				TraceID:    h.TraceID(),
				Algorithm:  cfg.Algorithm,
				DigestHex:  hexDigest,
			}); err != nil {
				slog.Error("digestd: failed to publish digest", "err", err)
			}
			close(done)
		},
		OnFeedDone: func(h *digest.Handle, input *digest.Blob, status error) {
			size := input.Size()
			statusText := "ok"
			if status != nil {
				statusText = status.Error()
			}
			input.Unref()
			if err := em.PublishFeedDone(emitter.FeedEvent{
				InstanceID: cfg.InstanceID,
				TraceID:    h.TraceID(),
				Bytes:      size,
				Status:     statusText,
			}); err != nil {
				slog.Error("digestd: failed to publish feed-done", "err", err)
			}
		},
		FeedSize:         cfg.FeedSizeBytes,
		MaxFeedBlockSize: cfg.MaxFeedBlockBytes,
		Mode:             modeOf(cfg.Mode),
		Loop:             loop,
	}, ctxParams)
	if err != nil {
		slog.Error("digestd: failed to create handle", "err", err)
		os.Exit(1)
	}

	go feedStdin(h)

	select {
	case sig := <-sigCh:
		slog.Info("digestd: received shutdown signal", "signal", sig)
	case <-done:
		slog.Info("digestd: digest complete")
	}

	shutdownTimeout := time.Duration(cfg.ShutdownTimeoutS) * time.Second
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	h.Delete()
	<-shutdownCtx.Done()
}

func modeOf(s string) digest.Mode {
	if s == "thread" {
		return digest.ModeThread
	}
	return digest.ModeTimer
}

func buildOps(algorithm string) (digest.Ops, digest.ContextParams, int) {
	switch algorithm {
	case "sha512":
		ops, ctxParams := backend.NewHashOps(func() hash.Hash { return sha512.New() })
		return ops, ctxParams, sha512.Size
	case "checksum32":
		ops, ctxParams := backend.NewChecksum32Ops()
		return ops, ctxParams, 4
	default:
		ops, ctxParams := backend.NewHashOps(func() hash.Hash { return sha256.New() })
		return ops, ctxParams, sha256.Size
	}
}

// feedStdin streams os.Stdin into h in fixed-size chunks, marking the
// final Feed call is_last once io.EOF is reached.
func feedStdin(h *digest.Handle) {
	r := bufio.NewReaderSize(os.Stdin, readChunkBytes)
	for {
		buf := make([]byte, readChunkBytes)
		n, err := r.Read(buf)
		if n > 0 {
			isLast := err == io.EOF
			if feedErr := h.Feed(digest.NewBlob(buf[:n], nil), isLast); feedErr != nil {
				slog.Error("digestd: feed rejected", "err", feedErr)
				return
			}
			if isLast {
				return
			}
		}
		if err != nil {
			if err == io.EOF {
				// Zero bytes read with EOF on this call; signal completion
				// with an empty final chunk.
				if feedErr := h.Feed(digest.NewBlob(nil, nil), true); feedErr != nil {
					slog.Error("digestd: final feed rejected", "err", feedErr)
				}
				return
			}
			slog.Error("digestd: stdin read failed", "err", err)
			return
		}
	}
}

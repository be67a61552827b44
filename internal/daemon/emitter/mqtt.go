// Package emitter publishes digest engine completion events to an MQTT
// broker for cmd/digestd, the demo daemon.
package emitter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/peter-holm/message-digest/internal/daemon/config"
)

// DigestEvent is the JSON payload published on the digest-ready topic.
type DigestEvent struct {
	InstanceID string `json:"instance_id"`
	TraceID    string `json:"trace_id"`
	Algorithm  string `json:"algorithm"`
	DigestHex  string `json:"digest_hex"`
}

// FeedEvent is the JSON payload published on the feed-done topic.
type FeedEvent struct {
	InstanceID string `json:"instance_id"`
	TraceID    string `json:"trace_id"`
	Bytes      int    `json:"bytes"`
	Status     string `json:"status"`
}

// MQTTEmitter publishes digest engine events to MQTT.
type MQTTEmitter struct {
	cfg    *config.Config
	Client mqtt.Client

	mu        sync.RWMutex
	published map[string]uint64
	errors    uint64
	connected bool
}

// NewMQTTEmitter creates an idle MQTTEmitter.
func NewMQTTEmitter(cfg *config.Config) *MQTTEmitter {
	return &MQTTEmitter{
		cfg:       cfg,
		published: make(map[string]uint64),
	}
}

// Connect dials the configured broker.
func (e *MQTTEmitter) Connect(ctx context.Context) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", e.cfg.MQTT.Broker))
	opts.SetClientID(e.cfg.InstanceID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnect = func(mqtt.Client) {
		e.mu.Lock()
		e.connected = true
		e.mu.Unlock()
		slog.Info("digestd: mqtt connected", "broker", e.cfg.MQTT.Broker)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		e.mu.Lock()
		e.connected = false
		e.mu.Unlock()
		slog.Warn("digestd: mqtt connection lost, reconnecting", "err", err)
	}

	e.Client = mqtt.NewClient(opts)

	token := e.Client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("mqtt connect timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}

	e.mu.Lock()
	e.connected = true
	e.mu.Unlock()
	return nil
}

// PublishDigestReady publishes a completed digest.
func (e *MQTTEmitter) PublishDigestReady(ev DigestEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal digest event: %w", err)
	}
	return e.publish(e.cfg.MQTT.Topics.DigestReady, e.cfg.MQTT.QoS["digest_ready"], payload)
}

// PublishFeedDone publishes a per-chunk completion or cancellation.
func (e *MQTTEmitter) PublishFeedDone(ev FeedEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal feed event: %w", err)
	}
	return e.publish(e.cfg.MQTT.Topics.FeedDone, e.cfg.MQTT.QoS["feed_done"], payload)
}

func (e *MQTTEmitter) publish(topic string, qos byte, payload []byte) error {
	if !e.isConnected() {
		e.mu.Lock()
		e.errors++
		e.mu.Unlock()
		return fmt.Errorf("mqtt not connected")
	}

	token := e.Client.Publish(topic, qos, false, payload)
	if !token.WaitTimeout(2 * time.Second) {
		e.mu.Lock()
		e.errors++
		e.mu.Unlock()
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		e.mu.Lock()
		e.errors++
		e.mu.Unlock()
		return fmt.Errorf("publish: %w", err)
	}

	e.mu.Lock()
	e.published[topic]++
	e.mu.Unlock()

	slog.Debug("digestd: event published", "topic", topic, "qos", qos, "size", len(payload))
	return nil
}

// Disconnect closes the MQTT connection, if any.
func (e *MQTTEmitter) Disconnect() {
	if e.Client != nil && e.Client.IsConnected() {
		e.Client.Disconnect(250)
		slog.Info("digestd: mqtt disconnected")
	}
	e.mu.Lock()
	e.connected = false
	e.mu.Unlock()
}

func (e *MQTTEmitter) isConnected() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.connected
}

package config

import (
	"fmt"
	"regexp"
)

var instanceIDPattern = regexp.MustCompile(`^[a-z0-9\-]+$`)

var validAlgorithms = map[string]bool{
	"sha256":     true,
	"sha512":     true,
	"checksum32": true,
}

// Validate checks cfg for correctness and fills in defaults.
func Validate(cfg *Config) error {
	if cfg.InstanceID == "" {
		return fmt.Errorf("instance_id is required")
	}
	if !instanceIDPattern.MatchString(cfg.InstanceID) {
		return fmt.Errorf("instance_id must match pattern [a-z0-9-]+")
	}

	if cfg.Algorithm == "" {
		cfg.Algorithm = "sha256"
	}
	if !validAlgorithms[cfg.Algorithm] {
		return fmt.Errorf("algorithm must be one of sha256, sha512, checksum32, got %q", cfg.Algorithm)
	}

	switch cfg.Mode {
	case "":
		cfg.Mode = "timer"
	case "thread", "timer":
	default:
		return fmt.Errorf("mode must be 'thread' or 'timer', got %q", cfg.Mode)
	}

	if cfg.ShutdownTimeoutS <= 0 {
		cfg.ShutdownTimeoutS = 5
	}

	if cfg.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required")
	}
	if cfg.MQTT.Topics.DigestReady == "" {
		cfg.MQTT.Topics.DigestReady = fmt.Sprintf("digest/%s/ready", cfg.InstanceID)
	}
	if cfg.MQTT.Topics.FeedDone == "" {
		cfg.MQTT.Topics.FeedDone = fmt.Sprintf("digest/%s/feed-done", cfg.InstanceID)
	}
	if cfg.MQTT.QoS == nil {
		cfg.MQTT.QoS = map[string]byte{
			"digest_ready": 1,
			"feed_done":    0,
		}
	}

	return nil
}

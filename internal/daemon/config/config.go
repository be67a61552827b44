// Package config loads the YAML configuration for cmd/digestd, the
// demo daemon that wraps the message-digest engine.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the complete digestd configuration.
type Config struct {
	InstanceID        string     `yaml:"instance_id"`
	Algorithm         string     `yaml:"algorithm"`             // sha256, sha512, or checksum32
	FeedSizeBytes     uint64     `yaml:"feed_size_bytes"`       // 0 means unbounded
	MaxFeedBlockBytes int        `yaml:"max_feed_block_bytes"`  // 0 means no clamp
	Mode              string     `yaml:"mode"`                 // thread or timer
	ShutdownTimeoutS  int        `yaml:"shutdown_timeout_s"`
	MQTT              MQTTConfig `yaml:"mqtt"`
}

// MQTTConfig describes the broker digestd publishes completion events to.
type MQTTConfig struct {
	Broker string          `yaml:"broker"`
	Topics MQTTTopics      `yaml:"topics"`
	QoS    map[string]byte `yaml:"qos"`
}

// MQTTTopics names the two topics digestd publishes to.
type MQTTTopics struct {
	DigestReady string `yaml:"digest_ready"`
	FeedDone    string `yaml:"feed_done"`
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

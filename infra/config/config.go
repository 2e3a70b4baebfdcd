package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds everything the server process needs. Values come from the
// YAML file first, then environment overrides for deployment-sensitive
// fields.
type Config struct {
	Engine struct {
		Symbol string `yaml:"symbol"`
	} `yaml:"engine"`

	WAL struct {
		Dir         string `yaml:"dir"`
		SegmentSize int64  `yaml:"segment_size"`
	} `yaml:"wal"`

	Outbox struct {
		Dir string `yaml:"dir"`
	} `yaml:"outbox"`

	Snapshot struct {
		Dir         string `yaml:"dir"`
		IntervalSec int    `yaml:"interval_sec"`
	} `yaml:"snapshot"`

	Kafka struct {
		Brokers    []string `yaml:"brokers"`
		FillTopic  string   `yaml:"fill_topic"`
		DepthTopic string   `yaml:"depth_topic"`
	} `yaml:"kafka"`

	Depth struct {
		Levels     int `yaml:"levels"`
		IntervalMS int `yaml:"interval_ms"`
	} `yaml:"depth"`

	GRPC struct {
		Addr string `yaml:"addr"`
	} `yaml:"grpc"`

	WS struct {
		Addr string `yaml:"addr"`
	} `yaml:"ws"`

	Logging struct {
		Level string `yaml:"level"`
		Dir   string `yaml:"dir"`
	} `yaml:"logging"`
}

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func overrideWithEnv(cfg *Config) {
	if v := os.Getenv("BULKBOOK_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("BULKBOOK_GRPC_ADDR"); v != "" {
		cfg.GRPC.Addr = v
	}
	if v := os.Getenv("BULKBOOK_WS_ADDR"); v != "" {
		cfg.WS.Addr = v
	}
	if v := os.Getenv("BULKBOOK_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func (c *Config) validate() error {
	if c.Engine.Symbol == "" {
		return fmt.Errorf("engine.symbol is required")
	}
	if c.WAL.Dir == "" {
		return fmt.Errorf("wal.dir is required")
	}
	if c.WAL.SegmentSize <= 0 {
		return fmt.Errorf("wal.segment_size must be positive")
	}
	if c.Outbox.Dir == "" {
		return fmt.Errorf("outbox.dir is required")
	}
	if c.Depth.Levels <= 0 {
		c.Depth.Levels = 10
	}
	if c.Depth.IntervalMS <= 0 {
		c.Depth.IntervalMS = 500
	}
	if c.Snapshot.IntervalSec <= 0 {
		c.Snapshot.IntervalSec = 60
	}
	return nil
}

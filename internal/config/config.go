package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPort         = 4950
	DefaultMaxGrowth    = 4096
	DefaultInboundQueue = 256
	// DefaultMaxBitmapBytes caps the tile storage of one bitmap node.
	DefaultMaxBitmapBytes = 64 << 20
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Engine  EngineConfig  `yaml:"engine"`
	Log     LogConfig     `yaml:"log"`
	Codec   string        `yaml:"codec"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	Host           string        `yaml:"host"`
	MaxConnections int           `yaml:"max_connections"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	SendBuffer     int           `yaml:"send_buffer"`
}

// EngineConfig sizes the growth chunks of the engine's tables.
type EngineConfig struct {
	HostName     string `yaml:"host_name"`
	NodeChunk    int    `yaml:"node_chunk"`
	TableChunk   int    `yaml:"table_chunk"`
	SparseChunk  int    `yaml:"sparse_chunk"`
	MaxGrowth    int    `yaml:"max_growth"`
	InboundQueue int    `yaml:"inbound_queue"`
	// MaxBitmapBytes is summed over every layer of a bitmap node.
	MaxBitmapBytes int64 `yaml:"max_bitmap_bytes"`
}

type LogConfig struct {
	Verbosity string `yaml:"verbosity"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         DefaultPort,
			Host:         "127.0.0.1",
			WriteTimeout: 10 * time.Second,
			SendBuffer:   256,
		},
		Engine: EngineConfig{
			HostName:       "verse",
			NodeChunk:      16,
			TableChunk:     16,
			SparseChunk:    64,
			MaxGrowth:      DefaultMaxGrowth,
			InboundQueue:   DefaultInboundQueue,
			MaxBitmapBytes: DefaultMaxBitmapBytes,
		},
		Log: LogConfig{
			Verbosity: "info",
		},
		Codec: "json",
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

// Load reads path and overlays it on the defaults. A missing file is an
// error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return defaultConfig(), nil
	}
	return cfg, err
}

// Validate rejects sizes the engine cannot work with.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.SendBuffer <= 0 {
		return errors.New("server.send_buffer must be positive")
	}
	if c.Server.WriteTimeout < 0 {
		return errors.New("server.write_timeout must not be negative")
	}
	if c.Server.MaxConnections < 0 {
		return errors.New("server.max_connections must not be negative")
	}
	if c.Engine.NodeChunk <= 0 || c.Engine.TableChunk <= 0 || c.Engine.SparseChunk <= 0 {
		return errors.New("engine chunk sizes must be positive")
	}
	if c.Engine.MaxGrowth <= 0 {
		return errors.New("engine.max_growth must be positive")
	}
	if c.Engine.MaxBitmapBytes <= 0 {
		return errors.New("engine.max_bitmap_bytes must be positive")
	}
	if c.Engine.InboundQueue <= 0 {
		return errors.New("engine.inbound_queue must be positive")
	}
	switch c.Codec {
	case "json", "msgpack":
	default:
		return fmt.Errorf("unknown codec %q", c.Codec)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

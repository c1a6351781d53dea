package config

import "time"

// Config is the process-wide configuration tree.
type Config struct {
	Server ServerConfig `koanf:"server"`
	Log    LogConfig    `koanf:"log"`
	Engine EngineConfig `koanf:"engine"`
}

type ServerConfig struct {
	Host string `koanf:"host" validate:"required"`
	Port int    `koanf:"port" validate:"required,min=1,max=65535"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `koanf:"json"`
}

// EngineConfig bounds the execution engine. MaxTimeout caps every per-call
// deadline regardless of what an action configures.
type EngineConfig struct {
	MaxTimeout     time.Duration `koanf:"max_timeout"      validate:"required"`
	MaxBodyBytes   int64         `koanf:"max_body_bytes"   validate:"min=1024"`
	MaxConcurrency int64         `koanf:"max_concurrency"  validate:"min=1"`
	MaxGraphNodes  int           `koanf:"max_graph_nodes"  validate:"min=1"`
}

// Default returns the built-in configuration, the lowest-precedence source.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Log: LogConfig{
			Level: "info",
		},
		Engine: EngineConfig{
			MaxTimeout:     120 * time.Second,
			MaxBodyBytes:   1 << 20,
			MaxConcurrency: 4,
			MaxGraphNodes:  32,
		},
	}
}

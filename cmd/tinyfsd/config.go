package main

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envVarPrefix = "TINYFSD"

// Config is the process configuration, loaded from the environment with a
// TINYFSD_ prefix and overridable per field by CLI flags in main.go.
type Config struct {
	Addr           string        `envconfig:"ADDR" default:"127.0.0.1:9000"`
	DiskPath       string        `envconfig:"DISK_PATH" default:"tinyfs.img"`
	MaxWorkers     int           `envconfig:"MAX_WORKERS" default:"64"`
	IdleTimeout    time.Duration `envconfig:"IDLE_TIMEOUT" default:"5m"`
	Verbosity      int64         `envconfig:"VERBOSITY" default:"0"`
	ConfiguredSize int64         `envconfig:"CONFIGURED_SIZE" default:"0"`
}

// LoadConfig reads Config from the environment. CLI flags, when set, take
// precedence and are applied by main.go after this call.
func LoadConfig() (*Config, error) {
	var c Config
	if err := envconfig.Process(envVarPrefix, &c); err != nil {
		return nil, fmt.Errorf("parsing environment variables: %w", err)
	}
	return &c, nil
}

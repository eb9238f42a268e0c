// Package config provides engine-level configuration for expression
// binding and evaluation: the default batch capacity, the CONCAT null
// policy, and the memory budget handed to bound trees.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ConcatNullPolicy selects how the variadic concatenation operator
// treats a null argument at a row.
type ConcatNullPolicy string

const (
	// ConcatPropagateNull nulls the whole output row when any argument
	// is null. This is the default.
	ConcatPropagateNull ConcatNullPolicy = "propagate"
	// ConcatNullAsEmpty treats a null argument as the empty string.
	ConcatNullAsEmpty ConcatNullPolicy = "empty"
)

// Config holds the global engine configuration.
type Config struct {
	// BatchCapacity is the default maximum row count negotiated at
	// bind time when the caller does not choose one.
	BatchCapacity int `json:"batch_capacity" yaml:"batch_capacity"`

	// ConcatNullPolicy selects null handling for CONCAT.
	ConcatNullPolicy ConcatNullPolicy `json:"concat_null_policy" yaml:"concat_null_policy"`

	// MemoryLimit bounds the bytes a bound tree's allocator may hand
	// out; zero means unbounded.
	MemoryLimit int64 `json:"memory_limit" yaml:"memory_limit"`

	// VerboseErrors renders offending expression nodes in verbose form
	// inside error messages.
	VerboseErrors bool `json:"verbose_errors" yaml:"verbose_errors"`
}

const defaultBatchCapacity = 1024

// Default returns the configuration used when nothing is loaded.
func Default() Config {
	return Config{
		BatchCapacity:    defaultBatchCapacity,
		ConcatNullPolicy: ConcatPropagateNull,
		MemoryLimit:      0,
		VerboseErrors:    false,
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if c.BatchCapacity <= 0 {
		return fmt.Errorf("batch_capacity must be positive, got %d", c.BatchCapacity)
	}
	switch c.ConcatNullPolicy {
	case ConcatPropagateNull, ConcatNullAsEmpty:
	default:
		return fmt.Errorf("unknown concat_null_policy %q", c.ConcatNullPolicy)
	}
	if c.MemoryLimit < 0 {
		return fmt.Errorf("memory_limit must not be negative, got %d", c.MemoryLimit)
	}
	return nil
}

var (
	globalMu     sync.RWMutex
	globalConfig = Default()
)

// GetGlobalConfig returns the current global configuration.
func GetGlobalConfig() Config {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalConfig
}

// SetGlobalConfig replaces the global configuration.
func SetGlobalConfig(c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = c
	return nil
}

// ResetGlobalConfig restores the defaults; used by tests.
func ResetGlobalConfig() {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = Default()
}

// LoadConfigFromFile loads a configuration from a JSON or YAML file,
// chosen by extension.
func LoadConfigFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 configuration path is caller-controlled
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing JSON config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing YAML config: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config file extension: %s", filepath.Ext(path))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Environment variable names for overrides.
const (
	envBatchCapacity    = "QUIVER_BATCH_CAPACITY"
	envConcatNullPolicy = "QUIVER_CONCAT_NULL_POLICY"
	envMemoryLimit      = "QUIVER_MEMORY_LIMIT"
	envVerboseErrors    = "QUIVER_VERBOSE_ERRORS"
)

// ApplyEnvironmentOverrides overlays environment variables onto c and
// returns the result. Unset variables leave the field untouched;
// malformed values are reported rather than ignored.
func ApplyEnvironmentOverrides(c Config) (Config, error) {
	if v := os.Getenv(envBatchCapacity); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", envBatchCapacity, err)
		}
		c.BatchCapacity = n
	}
	if v := os.Getenv(envConcatNullPolicy); v != "" {
		c.ConcatNullPolicy = ConcatNullPolicy(v)
	}
	if v := os.Getenv(envMemoryLimit); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", envMemoryLimit, err)
		}
		c.MemoryLimit = n
	}
	if v := os.Getenv(envVerboseErrors); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", envVerboseErrors, err)
		}
		c.VerboseErrors = b
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brettbedarf/filetree/internal/util"
	"gopkg.in/yaml.v3"
)

// Bytes per MB
const MB = 1024 * 1024

// CLI style verbosity values accepted by [ConfigOverride.LogLvl]
const (
	ErrorVerbose = iota + 1
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultLogLvl = util.InfoLevel

	DefaultOrdering = "lexical"

	// Invariant checks run around every mutation unless disabled
	DefaultCheckInvariants = true

	DefaultRootMustBeDir = true

	// 0 means unlimited
	DefaultMaxNodes = 0

	DefaultMaxFileSize = 64 * MB

	DefaultFsName = "filetree"
	DefaultName   = "filetree"
)

// Config contains runtime configuration values for a tree.
type Config struct {
	MountOptions
	LogLvl          util.LogLevel // Internal log level (Default info)
	Ordering        string        // Sibling ordering policy name, see package ordering (Default "lexical")
	CheckInvariants bool          // Validate the whole tree before and after each mutation (Default true)
	RootMustBeDir   bool          // Reject trees whose root is a file (Default true)
	MaxNodes        int           // Node capacity of the arena; 0 is unlimited (Default 0)
	MaxFileSize     int           // Largest accepted file content in bytes; 0 is unlimited (Default 64MB)
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	// LogLvl is a CLI style verbosity between 1 (error) and 5 (trace); it is
	// converted to a [util.LogLevel] on merge
	LogLvl          *int    `yaml:"log_level,omitempty" json:"log_level,omitempty"`
	Ordering        *string `yaml:"ordering,omitempty" json:"ordering,omitempty"`
	CheckInvariants *bool   `yaml:"check_invariants,omitempty" json:"check_invariants,omitempty"`
	RootMustBeDir   *bool   `yaml:"root_must_be_dir,omitempty" json:"root_must_be_dir,omitempty"`
	MaxNodes        *int    `yaml:"max_nodes,omitempty" json:"max_nodes,omitempty"`
	MaxFileSize     *int    `yaml:"max_file_size,omitempty" json:"max_file_size,omitempty"`
	Debug           *bool   `yaml:"debug,omitempty" json:"debug,omitempty"`
	FsName          *string `yaml:"fs_name,omitempty" json:"fs_name,omitempty"`
	Name            *string `yaml:"name,omitempty" json:"name,omitempty"`
}

// NewConfig creates a Config from defaults with override applied on top.
// override may be nil.
func NewConfig(override *ConfigOverride) *Config {
	cfg := &Config{
		MountOptions: MountOptions{
			FsName: DefaultFsName,
			Name:   DefaultName,
		},
		LogLvl:          DefaultLogLvl,
		Ordering:        DefaultOrdering,
		CheckInvariants: DefaultCheckInvariants,
		RootMustBeDir:   DefaultRootMustBeDir,
		MaxNodes:        DefaultMaxNodes,
		MaxFileSize:     DefaultMaxFileSize,
	}
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.LogLvl != nil {
		c.LogLvl = util.VerbosityToLevel(*override.LogLvl)
	}
	if override.Ordering != nil {
		c.Ordering = *override.Ordering
	}
	if override.CheckInvariants != nil {
		c.CheckInvariants = *override.CheckInvariants
	}
	if override.RootMustBeDir != nil {
		c.RootMustBeDir = *override.RootMustBeDir
	}
	if override.MaxNodes != nil {
		c.MaxNodes = *override.MaxNodes
	}
	if override.MaxFileSize != nil {
		c.MaxFileSize = *override.MaxFileSize
	}
	if override.Debug != nil {
		c.Debug = *override.Debug
	}
	if override.FsName != nil {
		c.FsName = *override.FsName
	}
	if override.Name != nil {
		c.Name = *override.Name
	}
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
func NewConfigFromFile(path string) (*Config, error) {
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	return NewConfig(override), nil
}

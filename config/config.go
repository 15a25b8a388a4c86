// Package config holds the settings of the LXD backend.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the prefix of the environment variables overriding the configuration file.
const EnvPrefix = "MULTIPASS_LXD"

// Config holds the backend settings.
type Config struct {
	// Path to the daemon unix socket, empty to auto-detect
	Socket string `yaml:"socket" envconfig:"SOCKET"`

	// Managed bridge instances are attached to
	Bridge string `yaml:"bridge" envconfig:"BRIDGE"`

	// Project instances live in
	Project string `yaml:"project" envconfig:"PROJECT"`

	// Storage pool root disks are allocated from
	StoragePool string `yaml:"storage_pool" envconfig:"STORAGE_POOL"`

	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`

	// Image remotes, name to simplestreams URL
	Remotes map[string]string `yaml:"remotes" ignored:"true"`

	Snap Snap `yaml:"-" ignored:"true"`
}

// Snap holds the snap environment the backend may be running in.
type Snap struct {
	Name   string `envconfig:"SNAP_NAME"`
	Common string `envconfig:"SNAP_COMMON"`
}

// RefreshMarker returns the path of the file present while the snap is being refreshed.
func (s Snap) RefreshMarker() string {
	if s.Common == "" {
		return ""
	}

	return filepath.Join(s.Common, "snap_refresh")
}

// Refreshing returns whether the multipass snap is being refreshed.
func (s Snap) Refreshing() bool {
	if s.Name != "multipass" {
		return false
	}

	marker := s.RefreshMarker()
	if marker == "" {
		return false
	}

	_, err := os.Stat(marker)
	return err == nil
}

// DefaultRemotes are the image remotes available when none are configured.
var DefaultRemotes = map[string]string{
	"release": "https://cloud-images.ubuntu.com/releases",
	"daily":   "https://cloud-images.ubuntu.com/daily",
}

// NewConfig returns the default configuration.
func NewConfig() *Config {
	return &Config{
		Bridge:         "mpbr0",
		Project:        "multipass",
		StoragePool:    "default",
		RequestTimeout: 5 * time.Second,
	}
}

// LoadConfig reads the configuration file at path, if any, and applies the environment on top of it.
//
// A missing file is not an error when path is empty.
func LoadConfig(path string) (*Config, error) {
	c := NewConfig()

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("Unable to read the configuration file: %w", err)
		}

		err = yaml.Unmarshal(content, c)
		if err != nil {
			return nil, fmt.Errorf("Unable to decode the configuration: %w", err)
		}
	}

	// Configured remotes replace the default ones
	if len(c.Remotes) == 0 {
		c.Remotes = make(map[string]string, len(DefaultRemotes))
		for k, v := range DefaultRemotes {
			c.Remotes[k] = v
		}
	}

	err := envconfig.Process(EnvPrefix, c)
	if err != nil {
		return nil, fmt.Errorf("Unable to apply the environment: %w", err)
	}

	err = envconfig.Process("", &c.Snap)
	if err != nil {
		return nil, fmt.Errorf("Unable to apply the snap environment: %w", err)
	}

	err = c.validate()
	if err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) validate() error {
	if c.Bridge == "" {
		return fmt.Errorf("A bridge name is required")
	}

	if c.Project == "" {
		return fmt.Errorf("A project name is required")
	}

	if c.StoragePool == "" {
		return fmt.Errorf("A storage pool is required")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("Invalid request timeout %q", c.RequestTimeout)
	}

	return nil
}

// SaveConfig writes the configuration to path.
func (c *Config) SaveConfig(path string) error {
	content, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("Unable to encode the configuration: %w", err)
	}

	err = os.MkdirAll(filepath.Dir(path), 0750)
	if err != nil {
		return err
	}

	return os.WriteFile(path, content, 0600)
}

package main

import (
	"fmt"
	"os"

	"github.com/fwojciec/linkmigrator/resourcemap"
	"gopkg.in/yaml.v3"
)

// Config overrides resource map behaviour. It is read from the YAML file
// given with --config.
type Config struct {
	// FixRelativeURLs disables relative link rewriting when false.
	FixRelativeURLs *bool `yaml:"fix_relative_urls"`

	// DestinationHosts replaces the hosts of the resource map.
	DestinationHosts []string `yaml:"destination_hosts"`

	// DomainSubstitutions maps absolute URL prefixes to replacements.
	DomainSubstitutions map[string]string `yaml:"domain_substitutions"`

	// EmbeddedImagesDir enables data URI extraction into this directory.
	EmbeddedImagesDir string `yaml:"embedded_images_dir"`
}

// LoadConfig reads the config file at path. An empty path yields the
// zero Config.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return ParseConfig(data)
}

// ParseConfig parses YAML data into a Config.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return &cfg, nil
}

// Apply sets the overrides of c on svc.
func (c *Config) Apply(svc *resourcemap.Service) {
	if c.FixRelativeURLs != nil {
		svc.KeepRelativeURLs = !*c.FixRelativeURLs
	}
	if len(c.DestinationHosts) > 0 {
		svc.Hosts = c.DestinationHosts
	}
	if len(c.DomainSubstitutions) > 0 {
		svc.Substitutions = c.DomainSubstitutions
	}
	if c.EmbeddedImagesDir != "" {
		svc.EmbeddedImages = true
	}
}

// Package yaml loads cmd/resctld and cmd/resctl-bench's own bootstrap
// configuration (spec.md §6 [AMBIENT] "Configuration": distinct from
// the JSON command/state files the agent watches at runtime), grounded
// on the teacher's infrastructure/persistence/config/yaml.Loader
// (os.ReadFile + yaml.Unmarshal, a remembered last-loaded path for
// Reload).
package yaml

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kodflow/resctld/internal/domain/config"
)

// ErrNoConfigurationLoaded is returned by Reload when called before
// any Load.
var ErrNoConfigurationLoaded = errors.New("yaml: no configuration loaded")

// AgentLoader loads an AgentConfig from a YAML file, filling in
// DefaultAgentConfig's values for anything the file omits.
type AgentLoader struct {
	lastPath string
}

// NewAgentLoader returns a ready-to-use AgentLoader.
func NewAgentLoader() *AgentLoader { return &AgentLoader{} }

// Load reads and parses path, merging it onto DefaultAgentConfig.
func (l *AgentLoader) Load(path string) (config.AgentConfig, error) {
	cfg := config.DefaultAgentConfig()
	data, err := os.ReadFile(path) // #nosec G304 -- path is trusted CLI/bootstrap input
	if err != nil {
		return cfg, fmt.Errorf("reading agent config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing agent config %s: %w", path, err)
	}
	l.lastPath = path
	return cfg, nil
}

// Reload re-reads the last path given to Load.
func (l *AgentLoader) Reload() (config.AgentConfig, error) {
	if l.lastPath == "" {
		return config.AgentConfig{}, ErrNoConfigurationLoaded
	}
	return l.Load(l.lastPath)
}

// SweepLoader loads a SweepConfig from a YAML file, filling in
// DefaultSweepConfig's values for anything the file omits.
type SweepLoader struct {
	lastPath string
}

// NewSweepLoader returns a ready-to-use SweepLoader.
func NewSweepLoader() *SweepLoader { return &SweepLoader{} }

// Load reads and parses path, merging it onto DefaultSweepConfig.
func (l *SweepLoader) Load(path string) (config.SweepConfig, error) {
	cfg := config.DefaultSweepConfig()
	data, err := os.ReadFile(path) // #nosec G304 -- path is trusted CLI/bootstrap input
	if err != nil {
		return cfg, fmt.Errorf("reading sweep config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing sweep config %s: %w", path, err)
	}
	l.lastPath = path
	return cfg, nil
}

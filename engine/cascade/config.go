package cascade

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config tunes the cascade rules. Each rule can be disabled independently;
// numeric knobs apply only to the rule that reads them.
type Config struct {
	MaxDepth int `yaml:"max_depth"`

	FactionRipple  bool `yaml:"faction_ripple"`
	NPCReactions   bool `yaml:"npc_reactions"`
	ThreadMatching bool `yaml:"thread_matching"`

	// A relation at or above AlliedThreshold makes two factions allies; at
	// or below HostileThreshold, enemies. Anything between does not ripple.
	AlliedThreshold  int     `yaml:"allied_threshold"`
	HostileThreshold int     `yaml:"hostile_threshold"`
	AlliedMultiplier float64 `yaml:"allied_multiplier"`
	// Negative: enemies of a faction benefit from its losses.
	HostileMultiplier float64 `yaml:"hostile_multiplier"`

	// Minimum |delta| before NPCs of the affected faction react.
	ReactionThreshold int `yaml:"reaction_threshold"`
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		MaxDepth:          5,
		FactionRipple:     true,
		NPCReactions:      true,
		ThreadMatching:    true,
		AlliedThreshold:   50,
		HostileThreshold:  -50,
		AlliedMultiplier:  0.5,
		HostileMultiplier: -0.25,
		ReactionThreshold: 5,
	}
}

// LoadConfig reads a YAML tuning file over the defaults, so a file only
// needs to name the knobs it changes.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("cascade config %s: %w", path, err)
	}
	if cfg.MaxDepth <= 0 {
		return cfg, fmt.Errorf("cascade config %s: max_depth must be positive", path)
	}
	return cfg, nil
}

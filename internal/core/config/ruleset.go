// internal/core/config/ruleset.go
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

/*
 * Ruleset data file.
 *
 * One TOML file carries the authored world tables and the rule-text tables.
 * Rule texts stay raw strings here; parsing and validation happen in the
 * loader so that a malformed rule aborts the whole load with gate context.
 *
 * Table layout mirrors how the rules are authored: exits and encounters are
 * nested (region -> destination/type -> rule text), the rest are flat
 * gate -> rule text tables.
 */

// RawRuleSet holds the rule-text tables exactly as authored.
type RawRuleSet struct {
	Exits          map[string]map[string]string `mapstructure:"exits"`
	Encounters     map[string]map[string]string `mapstructure:"encounters"`
	Locations      map[string]string            `mapstructure:"locations"`
	Events         map[string]string            `mapstructure:"events"`
	LocationTypes  map[string]string            `mapstructure:"location_types"`
	EncounterTypes map[string]string            `mapstructure:"encounter_types"`
	Common         map[string]string            `mapstructure:"common"`
}

// WorldData holds the item, event, and option namespaces rules resolve
// against.
type WorldData struct {
	// Items maps item identifiers to host-facing labels.
	Items map[string]string `mapstructure:"items"`

	// Events lists event identifiers; they resolve as their own label.
	Events []string `mapstructure:"events"`

	// Options holds the configured value of every known option.
	Options map[string]int `mapstructure:"options"`

	// OptionValues holds the enumerated option-value constants reachable
	// from rule text under the reserved prefix.
	OptionValues map[string]int `mapstructure:"option_values"`

	// RequiredItems are unconditionally progression-critical regardless of
	// any rule walk.
	RequiredItems []string `mapstructure:"required_items"`
}

// RulesetFile is the full parsed data file.
type RulesetFile struct {
	World WorldData  `mapstructure:"world"`
	Rules RawRuleSet `mapstructure:"rules"`
}

// LoadRuleset reads the data file. Rule texts are not parsed here.
func LoadRuleset(path string) (*RulesetFile, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read ruleset file: %w", err)
	}

	var file RulesetFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("failed to decode ruleset file: %w", err)
	}

	return &file, nil
}

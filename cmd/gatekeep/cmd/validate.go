package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/ferrule/gatekeep/internal/core/config"
	"github.com/ferrule/gatekeep/internal/core/loader"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Parse and compile every rule of a ruleset",
	Long: `Validate loads the ruleset data file, parses every gate's rule text,
and compiles the full set. Loading is all-or-nothing: the first syntax or
semantic error is reported with its gate and the ruleset is rejected.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := loadRuleset()
		if err != nil {
			return err
		}

		gates := len(set.Locations) + len(set.Events) + len(set.LocationTypes) + len(set.EncounterTypes)
		for _, dests := range set.Exits {
			gates += len(dests)
		}
		for _, kinds := range set.Encounters {
			gates += len(kinds)
		}
		log.Printf("gatekeep v%s: ruleset %s, %d gates compiled, %d items tracked", Version, set.ID, gates, len(set.Deps))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// loadRuleset resolves the data path from flags and config, then loads and
// compiles the full ruleset.
func loadRuleset() (*loader.CompiledSet, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}
	path := cfg.DataPath
	if dataFile != "" {
		path = dataFile
	}

	file, err := config.LoadRuleset(path)
	if err != nil {
		return nil, err
	}

	set, err := loader.Load(file, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("ruleset %s: %w", path, err)
	}
	return set, nil
}

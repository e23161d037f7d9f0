package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Report when each item is required",
	Long: `Deps loads and compiles the ruleset, then prints the static dependency
analysis: for every item, the configurations under which collecting it is
required to pass at least one gate. "always" means required under every
configuration; conditional requirements list the branch conditions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := loadRuleset()
		if err != nil {
			return err
		}

		for _, item := range set.Deps.Items() {
			fmt.Printf("%-32s %s\n", item, set.Deps.CondString(item))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(depsCmd)
}

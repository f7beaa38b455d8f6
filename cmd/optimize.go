package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kfiore/perfpulse/internal"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Apply safe automatic remediations",
	Long: `Run the bounded auto-remediations: prune expired cache entries when the
store has grown past the configured threshold, and request a garbage
collection under high memory pressure. Prints the actions applied.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfiguration(cmd)
		if err != nil {
			return err
		}

		app := internal.NewApplication(cfg)
		defer app.Shutdown()

		applied := app.Optimizer().Optimize()
		if len(applied) == 0 {
			fmt.Println("nothing to do")
			return nil
		}
		fmt.Printf("applied: %s\n", strings.Join(applied, ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(optimizeCmd)
}

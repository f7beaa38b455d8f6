package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kfiore/perfpulse/internal"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a one-shot performance report",
	Long:  `Analyze the current cache, metrics, and resource state and print the formatted report once.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfiguration(cmd)
		if err != nil {
			return err
		}

		app := internal.NewApplication(cfg)
		defer app.Shutdown()

		fmt.Println(app.Optimizer().FormatReport())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

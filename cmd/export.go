package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kfiore/perfpulse/internal"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a JSON snapshot of all stores",
	Long:  `Capture cache statistics, metric summaries, resource figures, and the current analysis as a JSON document.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfiguration(cmd)
		if err != nil {
			return err
		}

		app := internal.NewApplication(cfg)
		defer app.Shutdown()

		return app.Export(exportOutput)
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}

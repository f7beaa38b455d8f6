package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kfiore/perfpulse/internal"
)

var (
	chartOperation string
	chartWidth     int
	chartHeight    int
)

var chartCmd = &cobra.Command{
	Use:   "chart <metric>",
	Short: "Render a latency histogram for a timing metric",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfiguration(cmd)
		if err != nil {
			return err
		}

		app := internal.NewApplication(cfg)
		defer app.Shutdown()

		fmt.Println(app.Metrics().Chart(args[0], chartOperation, chartWidth, chartHeight))
		return nil
	},
}

func init() {
	chartCmd.Flags().StringVar(&chartOperation, "operation", "", "restrict to one operation")
	chartCmd.Flags().IntVar(&chartWidth, "width", 60, "chart width in columns")
	chartCmd.Flags().IntVar(&chartHeight, "height", 10, "chart height in rows")
	rootCmd.AddCommand(chartCmd)
}

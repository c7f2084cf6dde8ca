package main

import (
	"os"
	"route-sequencer-service/internal/config"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dbtool",
	Short: "Database and route sequencing utilities",
	Long: `
dbtool prepares and seeds the PostgreSQL/PostGIS database. It can also run
the route sequencer offline against a JSON list of stops.
`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		config.LoadDotEnv()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

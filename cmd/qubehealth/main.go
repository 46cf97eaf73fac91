// Command qubehealth runs the appointments API and its schema migrations.
//
// @title        Qube Health Appointments API
// @version      1.0
// @description  Patients, staff and meetings with double-booking protection.
// @BasePath     /
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:          "qubehealth",
		Short:        "Qube Health appointments API",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

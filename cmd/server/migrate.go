package main

import (
	"fmt"

	"notes-app/internal/config"
	"notes-app/internal/repository"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the CouchDB database and its indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if cfg.Database.Driver != config.DriverCouchDB {
			return fmt.Errorf("migrate requires DB_DRIVER=%s, got %q", config.DriverCouchDB, cfg.Database.Driver)
		}

		client, err := repository.Connect(cmd.Context(), cfg.Database.CouchURL())
		if err != nil {
			return err
		}
		defer client.Close()

		if err := repository.EnsureSchema(cmd.Context(), client, cfg.Database.Name); err != nil {
			return err
		}

		cmd.Printf("database %s is ready\n", cfg.Database.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"route-sequencer-service/internal/adapters/repositories"
	"route-sequencer-service/internal/config"
	"route-sequencer-service/internal/platform/db"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Creates the PostGIS extension and the orders, drivers and depots tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd.Context(), func(ctx context.Context, conn *sql.DB) error {
				log.Println("Initializing database schema...")
				if err := repositories.InitSchema(ctx, conn); err != nil {
					return fmt.Errorf("schema initialization failed: %w", err)
				}
				log.Println("Schema ready.")
				return nil
			})
		},
	}
}

func newSeedCmd() *cobra.Command {
	var seedPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Creates the schema and loads depots, drivers and orders from a JSON file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Resolved here so that a SEED_PATH from .env is honoured.
			if seedPath == "" {
				seedPath = config.Get("SEED_PATH", "data/seeds/orders.json")
			}
			return withDB(cmd.Context(), func(ctx context.Context, conn *sql.DB) error {
				return initAndSeed(ctx, conn, seedPath)
			})
		},
	}
	cmd.Flags().StringVar(&seedPath, "file", "", "seed JSON file (default $SEED_PATH or data/seeds/orders.json)")

	return cmd
}

func init() {
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newSeedCmd())
}

func withDB(ctx context.Context, fn func(context.Context, *sql.DB) error) error {
	databaseURL := config.Get("DATABASE_URL", "")
	if databaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	conn, err := db.Open(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(ctx, conn)
}

func initAndSeed(ctx context.Context, conn *sql.DB, seedPath string) error {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	log.Println("Schema ready.")

	log.Println("Seeding database...")
	if err := repositories.SeedFromJSON(ctx, conn, seedPath); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	log.Println("Seeding complete.")

	return nil
}

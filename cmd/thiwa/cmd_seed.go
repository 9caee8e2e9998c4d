package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gtera/thiwa/config"
	"github.com/gtera/thiwa/internal/localstore"
	"github.com/gtera/thiwa/internal/remote"
	"github.com/gtera/thiwa/internal/shop"
)

// thiwa seed writes the default catalogue, gallery, and settings documents
// to the shared store. Intended for a fresh deployment; running it against a
// populated store inserts duplicates.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the shared store with the default catalogue and settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}

		driver, err := remote.NewMongoDriver(config.MongoURI(), config.MongoDB())
		if err != nil {
			return fmt.Errorf("connect remote store: %w", err)
		}
		ctx := context.Background()
		defer driver.Close(ctx)

		store := shop.New(driver, localstore.NewMemStore())
		for _, col := range []remote.Collection{remote.Products, remote.Gallery, remote.Settings} {
			if err := store.SeedDefaults(ctx, col); err != nil {
				return fmt.Errorf("seed %s: %w", col, err)
			}
			fmt.Printf("Seeded %s.\n", col)
		}
		return nil
	},
}

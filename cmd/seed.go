package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/AlefLorenzo/DeliveryFoods/internal/factories"
	"github.com/AlefLorenzo/DeliveryFoods/internal/repositories"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load generated users, restaurants and products plus the default quick messages",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().Int("seed.restaurants", 10, "number of restaurants to generate")
	seedCmd.Flags().Int("seed.customers", 50, "number of customers to generate")
	seedCmd.Flags().Int("seed.couriers", 10, "number of couriers to generate")
	seedCmd.Flags().Int64("seed.seed", 42, "random seed")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	app, err := newApplication(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.chat.SeedQuickMessages(ctx); err != nil {
		return err
	}

	dataset := factories.Generate(cfg.Seed)
	if err := seedDataset(ctx, app.store, dataset, true); err != nil {
		return err
	}
	log.Printf("[seed] stored %d users, %d restaurants and %d products",
		len(dataset.Users()), len(dataset.Restaurants), len(dataset.Products))
	return nil
}

func seedDataset(ctx context.Context, store repositories.Store, dataset *factories.Dataset, showProgress bool) error {
	total := int64(len(dataset.Restaurants) + len(dataset.Products) + 1)
	bar := progressbar.DefaultSilent(total)
	if showProgress {
		bar = progressbar.NewOptions64(total,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("seeding"),
			progressbar.OptionShowCount(),
		)
	}
	defer bar.Finish()

	if err := store.Users().BulkCreate(ctx, dataset.Users()); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	bar.Add(1)

	for _, restaurant := range dataset.Restaurants {
		if err := store.Restaurants().Create(ctx, restaurant); err != nil {
			return fmt.Errorf("seed restaurant %s: %w", restaurant.ID, err)
		}
		bar.Add(1)
	}
	for _, product := range dataset.Products {
		if err := store.Products().Create(ctx, product); err != nil {
			return fmt.Errorf("seed product %s: %w", product.ID, err)
		}
		bar.Add(1)
	}
	return nil
}

package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AlefLorenzo/DeliveryFoods/internal/api"
	"github.com/AlefLorenzo/DeliveryFoods/internal/auth"
	"github.com/AlefLorenzo/DeliveryFoods/internal/factories"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and real-time stream",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("http.addr", ":8080", "listen address")
	serveCmd.Flags().Bool("demo-data", false, "seed generated restaurants and users at startup (memory store)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.chat.SeedQuickMessages(ctx); err != nil {
		return err
	}
	if demo, _ := cmd.Flags().GetBool("demo-data"); demo {
		dataset := factories.Generate(cfg.Seed)
		if err := seedDataset(ctx, app.store, dataset, false); err != nil {
			return err
		}
		log.Printf("[api] demo data loaded: %d restaurants, %d users", len(dataset.Restaurants), len(dataset.Users()))
	}

	server := api.NewServer(api.Dependencies{
		Store:        app.store,
		Orders:       app.orders,
		Chat:         app.chat,
		Earnings:     app.ledger,
		Presence:     app.presence,
		Availability: app.availability,
		Tokens:       tokens,
		Hub:          app.hub,
	})

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      server.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[api] listening on %s", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Printf("[api] shutting down")
	// open SSE streams end when the hub closes their channels
	app.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

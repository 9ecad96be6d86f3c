package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/AlefLorenzo/DeliveryFoods/internal/cloudwriter"
	"github.com/AlefLorenzo/DeliveryFoods/internal/earnings"
)

var exportCmd = &cobra.Command{
	Use:   "export-earnings <courier-id>",
	Short: "Write a courier's earnings statement as a Parquet file",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().String("from", "", "start of the statement (RFC3339, inclusive)")
	exportCmd.Flags().String("to", "", "end of the statement (RFC3339, exclusive)")
	exportCmd.Flags().String("export.destination", "local", "local or cloud")
	exportCmd.Flags().String("export.output_path", "exports", "output directory for local statements")
	rootCmd.AddCommand(exportCmd)
}

func parseBound(cmd *cobra.Command, name string) (time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return t, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	from, err := parseBound(cmd, "from")
	if err != nil {
		return err
	}
	to, err := parseBound(cmd, "to")
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	app, err := newApplication(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	var factory cloudwriter.CloudWriterFactory
	if cfg.Export.Destination == "cloud" {
		factory, err = cloudwriter.NewS3WriterFactory(ctx, cfg.Export.CloudStorage.Region)
		if err != nil {
			return err
		}
	}

	exporter := earnings.NewExporter(app.ledger, cfg.Export, factory)
	location, rows, err := exporter.ExportStatement(ctx, args[0], from, to)
	if err != nil {
		return err
	}
	log.Printf("[export] wrote %d earning(s) to %s", rows, location)
	return nil
}

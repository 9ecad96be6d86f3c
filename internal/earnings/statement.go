package earnings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/AlefLorenzo/DeliveryFoods/internal/cloudwriter"
	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
)

// StatementRow is one earning in a parquet statement.
type StatementRow struct {
	EarningID   string  `parquet:"name=earning_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	CourierID   string  `parquet:"name=courier_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	OrderID     string  `parquet:"name=order_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Amount      float64 `parquet:"name=amount, type=DOUBLE"`
	ConfirmedAt int64   `parquet:"name=confirmed_at, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
}

// Exporter writes courier statements either under a local directory or to a bucket.
type Exporter struct {
	ledger  *Ledger
	config  models.ExportConfig
	factory cloudwriter.CloudWriterFactory
}

// NewExporter writes locally when factory is nil.
func NewExporter(ledger *Ledger, config models.ExportConfig, factory cloudwriter.CloudWriterFactory) *Exporter {
	return &Exporter{ledger: ledger, config: config, factory: factory}
}

func statementPath(courierID string, from, to time.Time) string {
	format := func(t time.Time, fallback string) string {
		if t.IsZero() {
			return fallback
		}
		return t.Format("20060102")
	}
	name := fmt.Sprintf("statement_%s_%s.parquet", format(from, "start"), format(to, "now"))
	return filepath.Join("courier="+courierID, name)
}

// ExportStatement writes every earning of the courier in [from, to) and
// returns where the statement went and how many rows it holds.
func (e *Exporter) ExportStatement(ctx context.Context, courierID string, from, to time.Time) (string, int, error) {
	entries, err := e.ledger.earnings.ListByCourier(ctx, courierID, from, to, 0)
	if err != nil {
		return "", 0, fmt.Errorf("list earnings: %w", err)
	}

	objectPath := statementPath(courierID, from, to)
	var (
		fw       source.ParquetFile
		location string
	)
	if e.factory != nil {
		cw, err := e.factory.NewWriter(e.config.CloudStorage.BucketName, objectPath)
		if err != nil {
			return "", 0, fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		fw = cloudwriter.NewParquetFile(cw)
		location = fmt.Sprintf("s3://%s/%s", e.config.CloudStorage.BucketName, objectPath)
	} else {
		location = filepath.Join(e.config.OutputPath, objectPath)
		if err := os.MkdirAll(filepath.Dir(location), 0o755); err != nil {
			return "", 0, err
		}
		fw, err = local.NewLocalFileWriter(location)
		if err != nil {
			return "", 0, fmt.Errorf("failed to create local file writer: %w", err)
		}
	}

	pw, err := writer.NewParquetWriter(fw, new(StatementRow), 4)
	if err != nil {
		fw.Close()
		return "", 0, fmt.Errorf("failed to create ParquetWriter: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	// oldest first
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		row := StatementRow{
			EarningID:   entry.ID,
			CourierID:   entry.CourierID,
			OrderID:     entry.OrderID,
			Amount:      entry.Amount,
			ConfirmedAt: entry.ConfirmedAt.UnixMilli(),
		}
		if err := pw.Write(row); err != nil {
			fw.Close()
			return "", 0, fmt.Errorf("failed to write row: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return "", 0, fmt.Errorf("failed to finish statement: %w", err)
	}
	if err := fw.Close(); err != nil {
		return "", 0, err
	}
	return location, len(entries), nil
}

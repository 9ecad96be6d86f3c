package earnings

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"

	"github.com/AlefLorenzo/DeliveryFoods/internal/apperrors"
	"github.com/AlefLorenzo/DeliveryFoods/internal/cloudwriter"
	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
	"github.com/AlefLorenzo/DeliveryFoods/internal/repositories"
	"github.com/AlefLorenzo/DeliveryFoods/internal/repositories/memory"
)

type recorder struct {
	mu       sync.Mutex
	topics   []string
	payloads []any
}

func (r *recorder) Publish(_ context.Context, topic, _ string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topic)
	r.payloads = append(r.payloads, payload)
	return nil
}

// 2024-06-05 is a Wednesday.
var wednesday = time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)

func newLedger(t *testing.T) (*Ledger, *memory.Store, *recorder) {
	t.Helper()
	store := memory.NewStore()
	rec := &recorder{}
	ledger := NewLedger(store.Orders(), store.Earnings(), rec, nil)
	ledger.now = func() time.Time { return wednesday }
	return ledger, store, rec
}

func addOrder(t *testing.T, store *memory.Store, id, courierID string, status models.OrderStatus, fee float64) {
	t.Helper()
	require.NoError(t, store.Orders().Create(context.Background(), &models.Order{
		ID:          id,
		CustomerID:  "c1",
		CourierID:   courierID,
		DeliveryFee: fee,
		Status:      status,
	}))
}

func TestRegisterEarning(t *testing.T) {
	ctx := context.Background()
	ledger, store, rec := newLedger(t)
	addOrder(t, store, "o1", "k1", models.OrderStatusDelivered, 7.9)

	earning, err := ledger.RegisterEarning(ctx, "o1", "k1")
	require.NoError(t, err)
	assert.Equal(t, 7.9, earning.Amount)
	assert.Equal(t, wednesday, earning.ConfirmedAt)

	require.Len(t, rec.topics, 1)
	assert.Equal(t, "courier-k1-earnings", rec.topics[0])
	added := rec.payloads[0].(EarningAdded)
	assert.Equal(t, 1, added.Totals.Deliveries)
	assert.Equal(t, 7.9, added.Totals.Total)
}

type brokenTotals struct {
	repositories.EarningsRepository
}

func (brokenTotals) Totals(context.Context, string, time.Time, time.Time) (models.EarningsTotals, error) {
	return models.EarningsTotals{}, errors.New("connection reset")
}

func TestRegisterEarningLogsWhenTotalsFail(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	rec := &recorder{}
	ledger := NewLedger(store.Orders(), brokenTotals{store.Earnings()}, rec, nil)
	ledger.now = func() time.Time { return wednesday }
	addOrder(t, store, "o1", "k1", models.OrderStatusDelivered, 7.9)

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	earning, err := ledger.RegisterEarning(ctx, "o1", "k1")
	require.NoError(t, err)
	assert.Equal(t, 7.9, earning.Amount)
	assert.Empty(t, rec.topics)
	assert.Contains(t, buf.String(), "[earnings] failed to load totals for courier k1")
	assert.Contains(t, buf.String(), "connection reset")

	stored, err := store.Earnings().GetByOrderID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, earning.ID, stored.ID)
}

func TestRegisterEarningOnlyOncePerOrder(t *testing.T) {
	ctx := context.Background()
	ledger, store, _ := newLedger(t)
	addOrder(t, store, "o1", "k1", models.OrderStatusDelivered, 5)

	_, err := ledger.RegisterEarning(ctx, "o1", "k1")
	require.NoError(t, err)

	_, err = ledger.RegisterEarning(ctx, "o1", "k1")
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	history, err := ledger.History(ctx, "k1", 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestRegisterEarningPreconditions(t *testing.T) {
	ctx := context.Background()
	ledger, store, _ := newLedger(t)
	addOrder(t, store, "moving", "k1", models.OrderStatusDelivering, 5)
	addOrder(t, store, "done", "k1", models.OrderStatusDelivered, 5)

	tests := []struct {
		name      string
		orderID   string
		courierID string
		want      error
	}{
		{"not delivered", "moving", "k1", apperrors.ErrConflict},
		{"other courier", "done", "k2", apperrors.ErrAuthorization},
		{"unknown order", "nope", "k1", apperrors.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ledger.RegisterEarning(ctx, tt.orderID, tt.courierID)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTotalsAndPeriods(t *testing.T) {
	ctx := context.Background()
	ledger, store, _ := newLedger(t)

	earnings := []struct {
		order  string
		amount float64
		at     time.Time
	}{
		{"today", 8, wednesday.Add(-time.Hour)},
		{"sunday", 6, time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC)},
		{"saturday", 4, time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)},
		{"may", 3.5, time.Date(2024, 5, 20, 20, 0, 0, 0, time.UTC)},
	}
	for _, e := range earnings {
		require.NoError(t, store.Earnings().Create(ctx, &models.CourierEarning{
			ID: "e-" + e.order, CourierID: "k1", OrderID: e.order, Amount: e.amount, ConfirmedAt: e.at,
		}))
	}

	all, err := ledger.Totals(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, models.EarningsTotals{Total: 21.5, Deliveries: 4, Average: 5.38}, all)

	today, err := ledger.Today(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, 8.0, today.Total)

	week, err := ledger.Week(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, 14.0, week.Total, "week starts on Sunday")

	month, err := ledger.Month(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, 18.0, month.Total)

	_, err = ledger.Period(ctx, "k1", "fortnight")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	empty, err := ledger.Totals(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, empty.Average)

	history, err := ledger.History(ctx, "k1", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "today", history[0].OrderID)
}

func TestBounds(t *testing.T) {
	from, to := Bounds(PeriodWeek, wednesday)
	assert.Equal(t, time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC), to)

	from, to = Bounds(PeriodAll, wednesday)
	assert.True(t, from.IsZero())
	assert.True(t, to.IsZero())
}

func seedEarnings(t *testing.T, store *memory.Store) {
	t.Helper()
	for i, at := range []time.Time{wednesday.Add(-2 * time.Hour), wednesday.Add(-time.Hour)} {
		require.NoError(t, store.Earnings().Create(context.Background(), &models.CourierEarning{
			ID:          "e" + string(rune('1'+i)),
			CourierID:   "k1",
			OrderID:     "o" + string(rune('1'+i)),
			Amount:      5,
			ConfirmedAt: at,
		}))
	}
}

func TestExportStatementLocal(t *testing.T) {
	ctx := context.Background()
	ledger, store, _ := newLedger(t)
	seedEarnings(t, store)

	dir := t.TempDir()
	exporter := NewExporter(ledger, models.ExportConfig{OutputPath: dir}, nil)
	path, rows, err := exporter.ExportStatement(ctx, "k1", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
	assert.Equal(t, filepath.Join(dir, "courier=k1", "statement_start_now.parquet"), path)

	fr, err := local.NewLocalFileReader(path)
	require.NoError(t, err)
	defer fr.Close()
	pr, err := reader.NewParquetReader(fr, new(StatementRow), 1)
	require.NoError(t, err)
	defer pr.ReadStop()

	require.Equal(t, int64(2), pr.GetNumRows())
	read := make([]StatementRow, 2)
	require.NoError(t, pr.Read(&read))
	assert.Equal(t, "o1", read[0].OrderID)
	assert.Equal(t, 5.0, read[1].Amount)
}

func TestExportStatementToBucket(t *testing.T) {
	ctx := context.Background()
	ledger, store, _ := newLedger(t)
	seedEarnings(t, store)

	factory := cloudwriter.NewMemoryWriterFactory()
	config := models.ExportConfig{CloudStorage: models.CloudStorageConfig{BucketName: "statements"}}
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	location, rows, err := NewExporter(ledger, config, factory).ExportStatement(ctx, "k1", from, to)
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
	assert.Equal(t, "s3://statements/courier=k1/statement_20240601_20240701.parquet", location)

	object := factory.Objects["statements/courier=k1/statement_20240601_20240701.parquet"]
	require.NotEmpty(t, object)
	assert.Equal(t, "PAR1", string(object[:4]))
}

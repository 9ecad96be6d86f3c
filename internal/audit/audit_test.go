package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
	"github.com/AlefLorenzo/DeliveryFoods/internal/repositories"
	"github.com/AlefLorenzo/DeliveryFoods/internal/repositories/memory"
)

func TestRecord(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	logger := NewLogger(store.Audit())

	logger.Record(ctx, "c1", models.AuditCreateOrder, OrderResource("o1"), map[string]any{"total": 47.9})

	entries, err := store.Audit().ListByResource(ctx, "order:o1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditCreateOrder, entries[0].Action)
	assert.Equal(t, "c1", entries[0].UserID)
	assert.NotEmpty(t, entries[0].ID)
}

type failingAudit struct {
	repositories.AuditRepository
}

func (failingAudit) Create(context.Context, *models.AuditEntry) error {
	return errors.New("disk full")
}

func TestRecordSwallowsFailures(t *testing.T) {
	assert.NotPanics(t, func() {
		NewLogger(failingAudit{}).Record(context.Background(), "c1", models.AuditCreateOrder, "order:o1", nil)
	})

	var nilLogger *Logger
	assert.NotPanics(t, func() {
		nilLogger.Record(context.Background(), "c1", models.AuditCreateOrder, "order:o1", nil)
	})
}

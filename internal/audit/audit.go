package audit

import (
	"context"
	"log"
	"time"

	"github.com/lucsky/cuid"

	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
	"github.com/AlefLorenzo/DeliveryFoods/internal/repositories"
)

// Logger writes the audit trail. Recording never fails the caller.
type Logger struct {
	repo repositories.AuditRepository
	now  func() time.Time
}

func NewLogger(repo repositories.AuditRepository) *Logger {
	return &Logger{repo: repo, now: time.Now}
}

func (l *Logger) Record(ctx context.Context, userID, action, resource string, details map[string]any) {
	if l == nil || l.repo == nil {
		return
	}
	entry := &models.AuditEntry{
		ID:        cuid.New(),
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		Details:   details,
		CreatedAt: l.now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("[audit] failed to record %s on %s: %v", action, resource, err)
	}
}

func OrderResource(orderID string) string {
	return "order:" + orderID
}

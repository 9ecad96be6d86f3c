package postgres

import (
	"context"
	"encoding/json"

	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
	"github.com/AlefLorenzo/DeliveryFoods/internal/repositories"
)

type AuditRepository struct {
	db querier
}

func (r *AuditRepository) Create(ctx context.Context, entry *models.AuditEntry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
        INSERT INTO audit_logs (id, user_id, action, resource, details, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, entry.ID, entry.UserID, entry.Action, entry.Resource, details, entry.CreatedAt)
	return err
}

func (r *AuditRepository) ListByResource(ctx context.Context, resource string) ([]*models.AuditEntry, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, user_id, action, resource, details, created_at
        FROM audit_logs WHERE resource = $1 ORDER BY created_at
    `, resource)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.AuditEntry
	for rows.Next() {
		entry := &models.AuditEntry{}
		var details []byte
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Action, &entry.Resource, &details, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &entry.Details); err != nil {
				return nil, err
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

type QuickMessageRepository struct {
	db querier
}

func (r *QuickMessageRepository) Upsert(ctx context.Context, message *models.QuickMessage) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO quick_messages (id, text, category, icon, position)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (id) DO NOTHING
    `, message.ID, message.Text, string(message.Category), message.Icon, message.Position)
	return err
}

func (r *QuickMessageRepository) GetByID(ctx context.Context, id string) (*models.QuickMessage, error) {
	message := &models.QuickMessage{}
	var category string
	err := r.db.QueryRow(ctx,
		`SELECT id, text, category, icon, position FROM quick_messages WHERE id = $1`, id,
	).Scan(&message.ID, &message.Text, &category, &message.Icon, &message.Position)
	if err != nil {
		return nil, mapError(err)
	}
	message.Category = models.QuickMessageCategory(category)
	return message, nil
}

func (r *QuickMessageRepository) ListByCategory(ctx context.Context, category models.QuickMessageCategory) ([]*models.QuickMessage, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, text, category, icon, position FROM quick_messages
        WHERE ($1 = '' OR category = $1)
        ORDER BY category, position
    `, string(category))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*models.QuickMessage
	for rows.Next() {
		message := &models.QuickMessage{}
		var cat string
		if err := rows.Scan(&message.ID, &message.Text, &cat, &message.Icon, &message.Position); err != nil {
			return nil, err
		}
		message.Category = models.QuickMessageCategory(cat)
		messages = append(messages, message)
	}
	return messages, rows.Err()
}

var (
	_ repositories.AuditRepository        = (*AuditRepository)(nil)
	_ repositories.QuickMessageRepository = (*QuickMessageRepository)(nil)
)

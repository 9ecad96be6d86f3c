package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/lucsky/cuid"

	"github.com/AlefLorenzo/DeliveryFoods/internal/apperrors"
	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
)

type defaultMessage struct {
	text string
	icon string
}

var (
	courierDefaults = []defaultMessage{
		{"I'm on my way!", "🚴"},
		{"I've arrived!", "📍"},
		{"I can't find the address", "🔍"},
		{"I'll be 5 minutes late", "⏰"},
		{"Can you answer the phone?", "📞"},
	}
	customerDefaults = []defaultMessage{
		{"Are you on your way?", "❓"},
		{"Have you arrived?", "📍"},
		{"I'm at the gate", "🏠"},
		{"Can you wait 2 minutes?", "⏰"},
	}
)

// QuickMessages lists templates ordered by category then position. An empty category lists all.
func (s *Service) QuickMessages(ctx context.Context, category models.QuickMessageCategory) ([]*models.QuickMessage, error) {
	if category != "" && !category.Valid() {
		return nil, apperrors.Validation("unknown quick message category %q", category)
	}
	messages, err := s.templates.ListByCategory(ctx, category)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if messages == nil {
		messages = []*models.QuickMessage{}
	}
	return messages, nil
}

func (s *Service) CreateQuickMessage(ctx context.Context, message *models.QuickMessage) error {
	message.Text = strings.TrimSpace(message.Text)
	if message.Text == "" {
		return apperrors.Validation("quick message text is required")
	}
	if !message.Category.Valid() {
		return apperrors.Validation("unknown quick message category %q", message.Category)
	}
	if message.ID == "" {
		message.ID = cuid.New()
	}
	if err := s.templates.Upsert(ctx, message); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// SeedQuickMessages installs the default templates under fixed ids; running it again changes nothing.
func (s *Service) SeedQuickMessages(ctx context.Context) error {
	seed := func(prefix string, category models.QuickMessageCategory, defaults []defaultMessage) error {
		for i, d := range defaults {
			message := &models.QuickMessage{
				ID:       fmt.Sprintf("%s-%d", prefix, i+1),
				Text:     d.text,
				Category: category,
				Icon:     d.icon,
				Position: i + 1,
			}
			if err := s.templates.Upsert(ctx, message); err != nil {
				return fmt.Errorf("seed quick message %s: %w", message.ID, err)
			}
		}
		return nil
	}

	if err := seed("courier", models.QuickCourierToCustomer, courierDefaults); err != nil {
		return err
	}
	return seed("customer", models.QuickCustomerToCourier, customerDefaults)
}

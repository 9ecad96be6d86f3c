package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/lucsky/cuid"

	"github.com/AlefLorenzo/DeliveryFoods/internal/apperrors"
	"github.com/AlefLorenzo/DeliveryFoods/internal/broadcast"
	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
	"github.com/AlefLorenzo/DeliveryFoods/internal/ratelimit"
	"github.com/AlefLorenzo/DeliveryFoods/internal/repositories"
)

// Rate limit key scopes.
const (
	ScopeSender  = "sender"
	ScopeChannel = "channel"
)

var openingMessages = map[models.ChannelType]string{
	models.ChannelCustomerRestaurant: "Chat opened. You can ask the restaurant anything about your order.",
	models.ChannelCustomerCourier:    "A courier was assigned to your order. Use the quick messages to talk to them.",
	models.ChannelRestaurantCourier:  "Courier assigned. Use this channel to coordinate the pickup.",
}

type Service struct {
	channels  repositories.ChatRepository
	templates repositories.QuickMessageRepository
	limiter   ratelimit.Limiter
	publisher broadcast.Publisher
	scope     string
	now       func() time.Time
}

type Option func(*Service)

func WithRateLimitScope(scope string) Option {
	return func(s *Service) {
		s.scope = scope
	}
}

func NewService(channels repositories.ChatRepository, templates repositories.QuickMessageRepository, limiter ratelimit.Limiter, publisher broadcast.Publisher, opts ...Option) *Service {
	s := &Service{
		channels:  channels,
		templates: templates,
		limiter:   limiter,
		publisher: publisher,
		scope:     ScopeSender,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateChannel opens a channel between exactly two users and posts the opening system message.
func (s *Service) CreateChannel(ctx context.Context, orderID string, channelType models.ChannelType, a, b string) (*models.ChatChannel, error) {
	if !channelType.Valid() {
		return nil, apperrors.Validation("unknown channel type %q", channelType)
	}
	if a == "" || b == "" || a == b {
		return nil, apperrors.Validation("a channel needs two distinct participants")
	}

	channel := &models.ChatChannel{
		ID:           cuid.New(),
		OrderID:      orderID,
		Type:         channelType,
		Participants: models.NewParticipants(a, b),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.channels.CreateChannel(ctx, channel); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.Conflict("order %s already has a %s channel", orderID, channelType)
		}
		return nil, apperrors.Internal(err)
	}

	if _, err := s.SendSystemMessage(ctx, channel, openingMessages[channelType]); err != nil {
		log.Printf("[chat] failed to post opening message on %s: %v", channel.ID, err)
	}
	return channel, nil
}

// EnsureChannel returns the order's channel of that type, creating it when missing.
func (s *Service) EnsureChannel(ctx context.Context, orderID string, channelType models.ChannelType, a, b string) (*models.ChatChannel, bool, error) {
	channel, err := s.channels.GetChannel(ctx, orderID, channelType)
	if err == nil {
		return channel, false, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, false, apperrors.Internal(err)
	}

	channel, err = s.CreateChannel(ctx, orderID, channelType, a, b)
	if errors.Is(err, apperrors.ErrConflict) {
		// lost a race with another creator
		channel, err = s.channels.GetChannel(ctx, orderID, channelType)
		if err != nil {
			return nil, false, apperrors.Internal(err)
		}
		return channel, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return channel, true, nil
}

// SendSystemMessage stores a message with no sender. It is not rate limited
// and is accepted on every channel type.
func (s *Service) SendSystemMessage(ctx context.Context, channel *models.ChatChannel, text string) (*models.ChatMessage, error) {
	message := &models.ChatMessage{
		ID:        cuid.New(),
		ChannelID: channel.ID,
		Text:      text,
		ReadBy:    []string{},
		CreatedAt: s.now().UTC(),
	}
	if err := s.channels.CreateMessage(ctx, message); err != nil {
		return nil, apperrors.Internal(err)
	}
	broadcast.Notify(ctx, s.publisher, broadcast.ChatTopic(channel.ID), models.EventChatMessage, message)
	return message, nil
}

type SendMessageInput struct {
	OrderID    string
	Type       models.ChannelType
	SenderID   string
	Text       string
	IsTemplate bool
	TemplateID string
}

func (s *Service) SendMessage(ctx context.Context, in SendMessageInput) (*models.ChatMessage, error) {
	channel, err := s.memberChannel(ctx, in.OrderID, in.Type, in.SenderID)
	if err != nil {
		return nil, err
	}

	if channel.Type.TemplateOnly() && !in.IsTemplate {
		return nil, apperrors.Conflict("only quick messages are allowed on the %s channel", channel.Type)
	}

	text := strings.TrimSpace(in.Text)
	var templateID *string
	if in.TemplateID != "" {
		template, err := s.templates.GetByID(ctx, in.TemplateID)
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound("quick message %s not found", in.TemplateID)
		}
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		text = template.Text
		id := template.ID
		templateID = &id
	}
	if text == "" {
		return nil, apperrors.Validation("message text is required")
	}

	allowed, retryAfter, err := s.limiter.Allow(ctx, s.rateKey(in))
	if err != nil {
		log.Printf("[chat] rate limiter unavailable, letting message through: %v", err)
	} else if !allowed {
		return nil, apperrors.RateLimited(retryAfter)
	}

	sender := in.SenderID
	message := &models.ChatMessage{
		ID:         cuid.New(),
		ChannelID:  channel.ID,
		SenderID:   &sender,
		Text:       text,
		IsTemplate: in.IsTemplate,
		TemplateID: templateID,
		ReadBy:     []string{sender},
		CreatedAt:  s.now().UTC(),
	}
	if err := s.channels.CreateMessage(ctx, message); err != nil {
		return nil, apperrors.Internal(err)
	}

	broadcast.Notify(ctx, s.publisher, broadcast.ChatTopic(channel.ID), models.EventChatMessage, message)
	return message, nil
}

func (s *Service) rateKey(in SendMessageInput) string {
	if s.scope == ScopeChannel {
		return fmt.Sprintf("chat:%s:%s:%s", in.SenderID, in.OrderID, in.Type)
	}
	return "chat:" + in.SenderID
}

// GetMessages returns the channel history, oldest first.
func (s *Service) GetMessages(ctx context.Context, orderID string, channelType models.ChannelType, requesterID string) ([]*models.ChatMessage, error) {
	channel, err := s.memberChannel(ctx, orderID, channelType, requesterID)
	if err != nil {
		return nil, err
	}
	messages, err := s.channels.ListMessages(ctx, channel.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if messages == nil {
		messages = []*models.ChatMessage{}
	}
	return messages, nil
}

// GetChannelsForOrder lists the channels the requester belongs to, each with its latest message.
func (s *Service) GetChannelsForOrder(ctx context.Context, orderID, requesterID string) ([]*models.ChatChannel, error) {
	channels, err := s.channels.ListChannels(ctx, orderID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	visible := []*models.ChatChannel{}
	for _, channel := range channels {
		if !channel.Participants.Has(requesterID) {
			continue
		}
		last, err := s.channels.LastMessage(ctx, channel.ID)
		switch {
		case err == nil:
			channel.LastMessage = last
		case !errors.Is(err, repositories.ErrNotFound):
			return nil, apperrors.Internal(err)
		}
		visible = append(visible, channel)
	}
	return visible, nil
}

// MarkAsRead adds userID to the read set of every message in the channel.
func (s *Service) MarkAsRead(ctx context.Context, orderID string, channelType models.ChannelType, userID string) (int, error) {
	channel, err := s.memberChannel(ctx, orderID, channelType, userID)
	if err != nil {
		return 0, err
	}
	updated, err := s.channels.MarkRead(ctx, channel.ID, userID)
	if err != nil {
		return 0, apperrors.Internal(err)
	}
	return updated, nil
}

// memberChannel loads the channel and checks userID is one of its two participants.
func (s *Service) memberChannel(ctx context.Context, orderID string, channelType models.ChannelType, userID string) (*models.ChatChannel, error) {
	if !channelType.Valid() {
		return nil, apperrors.Validation("unknown channel type %q", channelType)
	}
	channel, err := s.channels.GetChannel(ctx, orderID, channelType)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.NotFound("no %s channel for order %s", channelType, orderID)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !channel.Participants.Has(userID) {
		return nil, apperrors.Authorization("you are not a participant of this channel")
	}
	return channel, nil
}

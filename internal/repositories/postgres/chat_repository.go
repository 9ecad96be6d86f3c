package postgres

import (
	"context"

	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
	"github.com/AlefLorenzo/DeliveryFoods/internal/repositories"
)

type ChatRepository struct {
	db querier
}

func (r *ChatRepository) CreateChannel(ctx context.Context, channel *models.ChatChannel) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO chat_channels (id, order_id, type, participants, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `, channel.ID, channel.OrderID, string(channel.Type), channel.Participants[:], channel.CreatedAt)
	return mapError(err)
}

const selectChannels = `SELECT id, order_id, type, participants, created_at FROM chat_channels`

func (r *ChatRepository) scanChannels(ctx context.Context, query string, args ...any) ([]*models.ChatChannel, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []*models.ChatChannel
	for rows.Next() {
		channel := &models.ChatChannel{}
		var channelType string
		var participants []string
		if err := rows.Scan(&channel.ID, &channel.OrderID, &channelType, &participants, &channel.CreatedAt); err != nil {
			return nil, err
		}
		channel.Type = models.ChannelType(channelType)
		copy(channel.Participants[:], participants)
		channels = append(channels, channel)
	}
	return channels, rows.Err()
}

func (r *ChatRepository) GetChannel(ctx context.Context, orderID string, channelType models.ChannelType) (*models.ChatChannel, error) {
	channels, err := r.scanChannels(ctx, selectChannels+` WHERE order_id = $1 AND type = $2`, orderID, string(channelType))
	if err != nil {
		return nil, err
	}
	if len(channels) == 0 {
		return nil, repositories.ErrNotFound
	}
	return channels[0], nil
}

func (r *ChatRepository) GetChannelByID(ctx context.Context, id string) (*models.ChatChannel, error) {
	channels, err := r.scanChannels(ctx, selectChannels+` WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(channels) == 0 {
		return nil, repositories.ErrNotFound
	}
	return channels[0], nil
}

func (r *ChatRepository) ListChannels(ctx context.Context, orderID string) ([]*models.ChatChannel, error) {
	return r.scanChannels(ctx, selectChannels+` WHERE order_id = $1 ORDER BY created_at`, orderID)
}

func (r *ChatRepository) CreateMessage(ctx context.Context, message *models.ChatMessage) error {
	readBy := message.ReadBy
	if readBy == nil {
		readBy = []string{}
	}
	_, err := r.db.Exec(ctx, `
        INSERT INTO chat_messages (id, channel_id, sender_id, text, is_template, template_id, read_by, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, message.ID, message.ChannelID, message.SenderID, message.Text, message.IsTemplate,
		message.TemplateID, readBy, message.CreatedAt)
	return mapError(err)
}

const selectMessages = `
    SELECT id, channel_id, sender_id, text, is_template, template_id, read_by, created_at
    FROM chat_messages
`

func (r *ChatRepository) scanMessages(ctx context.Context, query string, args ...any) ([]*models.ChatMessage, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*models.ChatMessage
	for rows.Next() {
		message := &models.ChatMessage{}
		if err := rows.Scan(
			&message.ID,
			&message.ChannelID,
			&message.SenderID,
			&message.Text,
			&message.IsTemplate,
			&message.TemplateID,
			&message.ReadBy,
			&message.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}

func (r *ChatRepository) ListMessages(ctx context.Context, channelID string) ([]*models.ChatMessage, error) {
	return r.scanMessages(ctx, selectMessages+` WHERE channel_id = $1 ORDER BY created_at, id`, channelID)
}

func (r *ChatRepository) LastMessage(ctx context.Context, channelID string) (*models.ChatMessage, error) {
	messages, err := r.scanMessages(ctx, selectMessages+` WHERE channel_id = $1 ORDER BY created_at DESC LIMIT 1`, channelID)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, repositories.ErrNotFound
	}
	return messages[0], nil
}

func (r *ChatRepository) MarkRead(ctx context.Context, channelID, userID string) (int, error) {
	tag, err := r.db.Exec(ctx, `
        UPDATE chat_messages
        SET read_by = array_append(read_by, $2)
        WHERE channel_id = $1 AND NOT ($2 = ANY(read_by))
    `, channelID, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

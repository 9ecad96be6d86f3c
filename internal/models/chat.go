package models

import "time"

// Participants is the fixed pair of users allowed on a channel.
type Participants [2]string

func NewParticipants(a, b string) Participants {
	return Participants{a, b}
}

func (p Participants) Has(userID string) bool {
	return userID != "" && (p[0] == userID || p[1] == userID)
}

// Other returns the member that is not userID.
func (p Participants) Other(userID string) string {
	if p[0] == userID {
		return p[1]
	}
	return p[0]
}

type ChatChannel struct {
	ID           string       `json:"id"`
	OrderID      string       `json:"orderId"`
	Type         ChannelType  `json:"type"`
	Participants Participants `json:"participants"`
	CreatedAt    time.Time    `json:"createdAt"`
	LastMessage  *ChatMessage `json:"lastMessage,omitempty"`
}

type ChatMessage struct {
	ID         string    `json:"id"`
	ChannelID  string    `json:"channelId"`
	SenderID   *string   `json:"senderId"` // nil for system messages
	Text       string    `json:"text"`
	IsTemplate bool      `json:"isTemplate"`
	TemplateID *string   `json:"templateId,omitempty"`
	ReadBy     []string  `json:"readBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (m *ChatMessage) IsSystem() bool {
	return m.SenderID == nil
}

func (m *ChatMessage) ReadByUser(userID string) bool {
	for _, id := range m.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}

type QuickMessage struct {
	ID       string               `json:"id"`
	Text     string               `json:"text"`
	Category QuickMessageCategory `json:"category"`
	Icon     string               `json:"icon,omitempty"`
	Position int                  `json:"order"`
}

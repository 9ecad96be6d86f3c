package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/AlefLorenzo/DeliveryFoods/internal/apperrors"
	"github.com/AlefLorenzo/DeliveryFoods/internal/chat"
	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
)

type sendMessageRequest struct {
	Text       string `json:"text" validate:"max=1000"`
	IsTemplate bool   `json:"isTemplate"`
	TemplateID string `json:"templateId"`
}

type quickMessageRequest struct {
	Text     string `json:"text" validate:"required,max=200"`
	Category string `json:"category" validate:"required,oneof=COURIER_TO_CUSTOMER CUSTOMER_TO_COURIER"`
	Icon     string `json:"icon"`
	Position int    `json:"order" validate:"min=0"`
}

// parseChannelType accepts "customer-courier" as well as "CUSTOMER_COURIER".
func parseChannelType(raw string) (models.ChannelType, error) {
	channelType := models.ChannelType(strings.ToUpper(strings.ReplaceAll(raw, "-", "_")))
	if !channelType.Valid() {
		return "", apperrors.Validation("unknown channel type %q", raw)
	}
	return channelType, nil
}

func (s *Server) listQuickMessages(w http.ResponseWriter, r *http.Request) {
	category := models.QuickMessageCategory(r.URL.Query().Get("category"))
	messages, err := s.chat.QuickMessages(r.Context(), category)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func (s *Server) createQuickMessage(w http.ResponseWriter, r *http.Request) {
	var req quickMessageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	message := &models.QuickMessage{
		Text:     req.Text,
		Category: models.QuickMessageCategory(req.Category),
		Icon:     req.Icon,
		Position: req.Position,
	}
	if err := s.chat.CreateQuickMessage(r.Context(), message); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, message)
}

func (s *Server) listChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := s.chat.GetChannelsForOrder(r.Context(), chi.URLParam(r, "orderId"), actorFrom(r.Context()).ID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, channels)
}

func (s *Server) getMessages(w http.ResponseWriter, r *http.Request) {
	channelType, err := parseChannelType(chi.URLParam(r, "channelType"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	messages, err := s.chat.GetMessages(r.Context(), chi.URLParam(r, "orderId"), channelType, actorFrom(r.Context()).ID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	channelType, err := parseChannelType(chi.URLParam(r, "channelType"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	var req sendMessageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	message, err := s.chat.SendMessage(r.Context(), chat.SendMessageInput{
		OrderID:    chi.URLParam(r, "orderId"),
		Type:       channelType,
		SenderID:   actorFrom(r.Context()).ID,
		Text:       req.Text,
		IsTemplate: req.IsTemplate,
		TemplateID: req.TemplateID,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, message)
}

func (s *Server) markRead(w http.ResponseWriter, r *http.Request) {
	channelType, err := parseChannelType(chi.URLParam(r, "channelType"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	updated, err := s.chat.MarkAsRead(r.Context(), chi.URLParam(r, "orderId"), channelType, actorFrom(r.Context()).ID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": updated})
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AlefLorenzo/DeliveryFoods/internal/earnings"
	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
)

type courierStatusRequest struct {
	IsOnline *bool `json:"isOnline" validate:"required"`
}

type locationRequest struct {
	Lat     float64 `json:"lat" validate:"latitude"`
	Lng     float64 `json:"lng" validate:"longitude"`
	OrderID string  `json:"orderId"`
}

func (s *Server) getCourierStatus(w http.ResponseWriter, r *http.Request) {
	courierID := r.URL.Query().Get("courierId")
	if courierID == "" {
		courierID = actorFrom(r.Context()).ID
	}
	status, err := s.presence.Get(r.Context(), courierID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) setCourierStatus(w http.ResponseWriter, r *http.Request) {
	var req courierStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	status, err := s.presence.SetOnline(r.Context(), actorFrom(r.Context()).ID, *req.IsOnline)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) updateLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	location, err := s.presence.UpdateLocation(r.Context(), actorFrom(r.Context()).ID, req.OrderID, models.Location{
		Lat: req.Lat,
		Lon: req.Lng,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, location)
}

func (s *Server) getEarnings(w http.ResponseWriter, r *http.Request) {
	courierID := chi.URLParam(r, "courierId")
	if err := selfOrAdmin(actorFrom(r.Context()), courierID); err != nil {
		writeAppError(w, err)
		return
	}
	period := r.URL.Query().Get("period")
	totals, err := s.ledger.Period(r.Context(), courierID, period)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if period == "" {
		period = earnings.PeriodAll
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"courierId":  courierID,
		"period":     period,
		"total":      totals.Total,
		"deliveries": totals.Deliveries,
		"average":    totals.Average,
	})
}

func (s *Server) getEarningsHistory(w http.ResponseWriter, r *http.Request) {
	courierID := chi.URLParam(r, "courierId")
	if err := selfOrAdmin(actorFrom(r.Context()), courierID); err != nil {
		writeAppError(w, err)
		return
	}
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		writeAppError(w, err)
		return
	}
	history, err := s.ledger.History(r.Context(), courierID, limit)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

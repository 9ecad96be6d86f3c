package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/AlefLorenzo/DeliveryFoods/internal/auth"
	"github.com/AlefLorenzo/DeliveryFoods/internal/availability"
	"github.com/AlefLorenzo/DeliveryFoods/internal/broadcast"
	"github.com/AlefLorenzo/DeliveryFoods/internal/chat"
	"github.com/AlefLorenzo/DeliveryFoods/internal/earnings"
	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
	"github.com/AlefLorenzo/DeliveryFoods/internal/orders"
	"github.com/AlefLorenzo/DeliveryFoods/internal/presence"
	"github.com/AlefLorenzo/DeliveryFoods/internal/repositories"
)

// Dependencies are the services the HTTP layer exposes.
type Dependencies struct {
	Store        repositories.Store
	Orders       *orders.Manager
	Chat         *chat.Service
	Earnings     *earnings.Ledger
	Presence     *presence.Service
	Availability *availability.Evaluator
	Tokens       *auth.TokenService
	Hub          *broadcast.Hub
}

type Server struct {
	store        repositories.Store
	orders       *orders.Manager
	chat         *chat.Service
	ledger       *earnings.Ledger
	presence     *presence.Service
	availability *availability.Evaluator
	tokens       *auth.TokenService
	hub          *broadcast.Hub
	now          func() time.Time
	heartbeat    time.Duration
}

func NewServer(deps Dependencies) *Server {
	return &Server{
		store:        deps.Store,
		orders:       deps.Orders,
		chat:         deps.Chat,
		ledger:       deps.Earnings,
		presence:     deps.Presence,
		availability: deps.Availability,
		tokens:       deps.Tokens,
		hub:          deps.Hub,
		now:          time.Now,
		heartbeat:    25 * time.Second,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/restaurants/{id}/availability", s.getAvailability)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Route("/orders", func(r chi.Router) {
				r.With(requireRole(models.RoleClient)).Post("/", s.createOrder)
				r.Get("/", s.listOrders)
				r.Get("/{id}", s.getOrder)
				r.Put("/{id}/status", s.updateOrderStatus)
				r.With(requireRole(models.RoleCourier)).Post("/{id}/earnings", s.registerEarning)
			})

			r.Route("/chat", func(r chi.Router) {
				r.Get("/quick-messages", s.listQuickMessages)
				r.With(requireRole(models.RoleAdmin)).Post("/quick-messages", s.createQuickMessage)
				r.Get("/channels/{orderId}", s.listChannels)
				r.Get("/{orderId}/{channelType}", s.getMessages)
				r.Post("/{orderId}/{channelType}", s.sendMessage)
				r.Post("/{orderId}/{channelType}/read", s.markRead)
			})

			r.Route("/courier", func(r chi.Router) {
				r.Get("/status", s.getCourierStatus)
				r.With(requireRole(models.RoleCourier)).Post("/status", s.setCourierStatus)
				r.With(requireRole(models.RoleCourier)).Post("/location", s.updateLocation)
				r.Get("/earnings/{courierId}", s.getEarnings)
				r.Get("/earnings/{courierId}/history", s.getEarningsHistory)
			})

			r.Get("/realtime", s.realtime)
		})
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getAvailability(w http.ResponseWriter, r *http.Request) {
	status := s.availability.Evaluate(r.Context(), chi.URLParam(r, "id"), s.now())
	writeJSON(w, http.StatusOK, status)
}

package api

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/AlefLorenzo/DeliveryFoods/internal/apperrors"
	"github.com/AlefLorenzo/DeliveryFoods/internal/broadcast"
)

// realtime streams the envelopes published on one topic as server-sent events.
func (s *Server) realtime(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "real-time delivery is disabled", nil)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeAppError(w, apperrors.Internal(fmt.Errorf("response writer does not support flushing")))
		return
	}

	ctx := r.Context()
	topic := r.URL.Query().Get("topic")
	if topic == "" {
		writeAppError(w, apperrors.Validation("topic is required"))
		return
	}
	if err := s.authorizeTopic(ctx, actorFrom(ctx), topic); err != nil {
		writeAppError(w, err)
		return
	}

	messages, unsubscribe := s.hub.Subscribe(topic)
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, ": subscribed to %s\n\n", topic)
	flusher.Flush()

	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case msg, ok := <-messages:
			if !ok {
				return
			}
			event, err := broadcast.EventName(msg)
			if err != nil {
				log.Printf("[api] dropping malformed envelope on %s: %v", topic, err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, msg); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

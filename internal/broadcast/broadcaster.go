package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// Envelope is the wire form of every real-time event.
type Envelope struct {
	ID        string          `json:"id"`
	Topic     string          `json:"topic"`
	Event     string          `json:"event"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// Destination receives encoded envelopes.
type Destination interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

type Publisher interface {
	Publish(ctx context.Context, topic, event string, payload any) error
}

type Broadcaster struct {
	destinations []Destination
	now          func() time.Time
}

func NewBroadcaster(destinations ...Destination) *Broadcaster {
	return &Broadcaster{destinations: destinations, now: time.Now}
}

// Publish writes the event to every destination. One failing destination does
// not stop the others; their errors are joined.
func (b *Broadcaster) Publish(ctx context.Context, topic, event string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event, err)
	}
	msg, err := json.Marshal(Envelope{
		ID:        uuid.NewString(),
		Topic:     topic,
		Event:     event,
		Payload:   body,
		Timestamp: b.now().UTC(),
	})
	if err != nil {
		return err
	}

	var errs []error
	for _, destination := range b.destinations {
		if err := destination.WriteMessage(topic, msg); err != nil {
			errs = append(errs, fmt.Errorf("%T: %w", destination, err))
		}
	}
	return errors.Join(errs...)
}

func (b *Broadcaster) Close() error {
	var errs []error
	for _, destination := range b.destinations {
		if err := destination.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Notify publishes and only logs a failure. Callers never depend on delivery.
func Notify(ctx context.Context, publisher Publisher, topic, event string, payload any) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, topic, event, payload); err != nil {
		log.Printf("[broadcast] failed to publish %s to %s: %v", event, topic, err)
	}
}

// EventName reads the event field of an encoded envelope.
func EventName(msg []byte) (string, error) {
	var envelope struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal(msg, &envelope); err != nil {
		return "", err
	}
	if envelope.Event == "" {
		return "", errors.New("envelope has no event")
	}
	return envelope.Event, nil
}

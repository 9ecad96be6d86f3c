package broadcast

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
)

// amqpChannel is the part of *amqp.Channel the output uses.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQOutput publishes to a topic exchange with routing keys like
// "order.<id>" or "courier-feed", so consumers can bind "order.*".
type RabbitMQOutput struct {
	conn     *amqp.Connection
	ch       amqpChannel
	exchange string
	timeout  time.Duration
}

func NewRabbitMQOutput(cfg models.RabbitMQConfig) (*RabbitMQOutput, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}

	log.Printf("[broadcast] publishing to rabbitmq exchange %s", cfg.Exchange)
	output := NewRabbitMQOutputWithChannel(ch, cfg.Exchange)
	output.conn = conn
	return output, nil
}

func NewRabbitMQOutputWithChannel(ch amqpChannel, exchange string) *RabbitMQOutput {
	return &RabbitMQOutput{ch: ch, exchange: exchange, timeout: 5 * time.Second}
}

func RoutingKey(topic string) string {
	namespace, id, ok := SplitTopic(topic)
	if !ok {
		return "other." + strings.ReplaceAll(topic, ".", "_")
	}
	if id == "" {
		return namespace
	}
	return namespace + "." + strings.ReplaceAll(id, ".", "_")
}

func (r *RabbitMQOutput) WriteMessage(topic string, msg []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	return r.ch.PublishWithContext(ctx, r.exchange, RoutingKey(topic), false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		ContentType:  "application/json",
		Body:         msg,
	})
}

func (r *RabbitMQOutput) Close() error {
	var err error
	if r.ch != nil {
		err = r.ch.Close()
	}
	if r.conn != nil {
		if cerr := r.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

package broadcast

import (
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"

	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
)

// KafkaOutput sends each namespace to its own Kafka topic, keyed by the full
// real-time topic so one entity's events stay ordered within a partition.
type KafkaOutput struct {
	producer    sarama.SyncProducer
	topicPrefix string
}

func NewSaramaConfig() *sarama.Config {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Producer.Return.Successes = true // required by SyncProducer
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner
	saramaConfig.Net.DialTimeout = 30 * time.Second
	saramaConfig.Net.ReadTimeout = 30 * time.Second
	saramaConfig.Net.WriteTimeout = 30 * time.Second
	return saramaConfig
}

func NewKafkaOutput(cfg models.KafkaConfig) (*KafkaOutput, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka output needs at least one broker")
	}
	producer, err := sarama.NewSyncProducer(cfg.Brokers, NewSaramaConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create Sarama producer: %w", err)
	}

	log.Printf("[broadcast] Sarama producer created with brokers %v", cfg.Brokers)
	return NewKafkaOutputWithProducer(producer, cfg.TopicPrefix), nil
}

func NewKafkaOutputWithProducer(producer sarama.SyncProducer, topicPrefix string) *KafkaOutput {
	return &KafkaOutput{producer: producer, topicPrefix: topicPrefix}
}

func (k *KafkaOutput) kafkaTopic(topic string) string {
	namespace, _, ok := SplitTopic(topic)
	if !ok {
		namespace = "other"
	}
	if k.topicPrefix == "" {
		return namespace
	}
	return k.topicPrefix + "." + namespace
}

func (k *KafkaOutput) WriteMessage(topic string, msg []byte) error {
	if k.producer == nil {
		return fmt.Errorf("kafka producer is closed")
	}

	_, _, err := k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.kafkaTopic(topic),
		Key:   sarama.StringEncoder(topic),
		Value: sarama.ByteEncoder(msg),
	})
	if err != nil {
		return fmt.Errorf("send to kafka topic %s: %w", k.kafkaTopic(topic), err)
	}
	return nil
}

func (k *KafkaOutput) Close() error {
	if k.producer == nil {
		return nil
	}
	err := k.producer.Close()
	k.producer = nil
	return err
}

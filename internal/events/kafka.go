package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"
)

// KafkaHook publishes every event it receives as JSON, keyed by object id so
// one order's events stay on one partition.
type KafkaHook struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaHook(producer sarama.SyncProducer, topic string) *KafkaHook {
	return &KafkaHook{producer: producer, topic: topic}
}

// DialKafka connects a sync producer, retrying while the brokers come up.
func DialKafka(brokers []string, attempts int, wait time.Duration) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll

	var producer sarama.SyncProducer
	var err error

	for i := 1; i <= attempts; i++ {
		producer, err = sarama.NewSyncProducer(brokers, config)
		if err == nil {
			log.Println("Kafka producer initialized")
			return producer, nil
		}

		log.Printf("Waiting for Kafka... (%d/%d) Error: %v", i, attempts, err)
		time.Sleep(wait)
	}
	return nil, fmt.Errorf("kafka producer: %w", err)
}

func (k *KafkaHook) Notify(_ context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Name, err)
	}

	msg := &sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(event.ObjectType + ":" + event.ObjectID),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event"), Value: []byte(event.Name)},
		},
	}

	if _, _, err := k.producer.SendMessage(msg); err != nil {
		log.Printf("Failed to send %s Kafka message: %v", event.Name, err)
		return err
	}
	return nil
}

func (k *KafkaHook) Close() error {
	return k.producer.Close()
}

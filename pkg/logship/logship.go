// Package logship moves access log entries from the API to Elasticsearch
// through a Kafka topic.
package logship

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type LogEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	IP         string    `json:"ip"`
	StatusCode int       `json:"status_code"`
	RequestID  string    `json:"request_id"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Bytes      int       `json:"bytes"`
	Duration   float64   `json:"duration_sec"`
	Service    string    `json:"service"`
}

// DocumentID identifies the entry in the index, so a redelivered message
// overwrites its earlier copy.
func (e LogEntry) DocumentID() string {
	return e.Service + e.RequestID
}

// Writer is the part of kafka.Writer used to publish entries.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

func Publish(ctx context.Context, w Writer, entry LogEntry) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry for request %s: %w", entry.RequestID, err)
	}

	return w.WriteMessages(ctx, kafka.Message{Key: []byte(entry.RequestID), Value: b})
}

// CreateTopic creates a single partition topic on the broker.
func CreateTopic(ctx context.Context, broker, topic string) error {
	conn, err := kafka.DialContext(ctx, "tcp", broker)
	if err != nil {
		return err
	}
	defer conn.Close()

	return conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
}

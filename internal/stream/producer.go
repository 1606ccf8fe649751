// Package stream publishes pipeline events to Redis Streams for downstream
// consumers (notification fan-out, analytics ingestion). Producers only;
// consumers run in separate processes.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// AnalysisStream carries analysis.completed events.
	AnalysisStream = "triage:analysis"

	// EventAnalysisCompleted is emitted after every successful analysis.
	EventAnalysisCompleted = "analysis.completed"
)

// Message is the envelope published to a stream.
type Message struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Payload   any       `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// AnalysisCompleted is the payload of an analysis.completed event.
type AnalysisCompleted struct {
	IssueID    uuid.UUID `json:"issue_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Severity   string    `json:"severity"`
	Flags      []string  `json:"critical_flags"`
}

// Producer publishes messages to Redis Streams.
type Producer struct {
	client *redis.Client
}

func NewProducer(client *redis.Client) *Producer {
	return &Producer{client: client}
}

// PublishAnalysisCompleted hands a finished analysis off to downstream
// consumers. The caller decides whether a publish failure matters; the
// triage pipeline treats it as best-effort.
func (p *Producer) PublishAnalysisCompleted(ctx context.Context, payload AnalysisCompleted) error {
	return p.publish(ctx, AnalysisStream, Message{
		ID:        uuid.NewString(),
		Type:      EventAnalysisCompleted,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	})
}

func (p *Producer) publish(ctx context.Context, stream string, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		ID:     "*",
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", stream, err)
	}
	return nil
}

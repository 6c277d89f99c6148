// Package events publishes index state-transition notifications to
// Kafka, grounded on the teacher's internal/workspaces
// KafkaCommitPublisher: same nil-safe writer, same Addr/Topic/Balancer
// wiring, repurposed from project-commit events to spec.md section
// 4.10's pipeline state machine, whose states are published under the
// names index.State.String returns ("empty -> passages_embedded ->
// ner_done -> graph_built -> hypergraph_built -> hyperedges_embedded ->
// ready").
package events

import (
	"context"
	"encoding/json"
	"time"

	kafka "github.com/segmentio/kafka-go"

	"linearrag/internal/config"
)

// Transition is emitted whenever index.Pipeline.Run advances the
// manifest to a new State.
type Transition struct {
	Namespace string    `json:"namespace"`
	FromState string    `json:"from_state"`
	ToState   string    `json:"to_state"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher writes Transition events to a Kafka topic.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher builds a Publisher when cfg.Enabled; otherwise returns
// a nil *Publisher so callers can publish unconditionally.
func NewPublisher(cfg config.EventsConfig) *Publisher {
	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		return nil
	}
	return &Publisher{writer: &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}}
}

// Publish writes ev to Kafka. A nil Publisher is a no-op.
func (p *Publisher) Publish(ctx context.Context, ev Transition) error {
	if p == nil || p.writer == nil {
		return nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{Value: payload, Time: time.Now()})
}

// Close shuts down the underlying writer. A nil Publisher is a no-op.
func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/dipeshss4/tripgo-auth/internal/core/domain"
)

// Topic suffixes for security event streams.
const (
	TopicLoginSucceeded = "security.login-succeeded"
	TopicLoginFailed    = "security.login-failed"
	TopicAccountLocked  = "security.account-locked"
	TopicSessionRevoked = "security.session-revoked"
	TopicSessionsSwept  = "security.sessions-swept"
)

// eventEnvelope is the common wire format for all security events.
type eventEnvelope struct {
	EventID   string            `json:"event_id"`
	EventType string            `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Payload   json.RawMessage   `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// EventPublisher publishes security events to Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
}

// NewEventPublisher creates a Kafka-backed security event publisher.
func NewEventPublisher(producer *Producer, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{
		producer: producer,
		logger:   logger,
	}
}

// PublishLoginSucceeded emits an event after a successful authentication.
func (p *EventPublisher) PublishLoginSucceeded(ctx context.Context, event domain.LoginSucceededEvent) error {
	return p.publish(ctx, TopicLoginSucceeded, event.UserID, event)
}

// PublishLoginFailed emits an event after a failed authentication attempt.
func (p *EventPublisher) PublishLoginFailed(ctx context.Context, event domain.LoginFailedEvent) error {
	return p.publish(ctx, TopicLoginFailed, "", event)
}

// PublishAccountLocked emits an event when repeated failures lock an account.
func (p *EventPublisher) PublishAccountLocked(ctx context.Context, event domain.AccountLockedEvent) error {
	return p.publish(ctx, TopicAccountLocked, "", event)
}

// PublishSessionRevoked emits an event when a session is terminated.
func (p *EventPublisher) PublishSessionRevoked(ctx context.Context, event domain.SessionRevokedEvent) error {
	return p.publish(ctx, TopicSessionRevoked, event.UserID, event)
}

// PublishSessionsSwept emits an event after a background sweep removes
// idle-expired sessions.
func (p *EventPublisher) PublishSessionsSwept(ctx context.Context, event domain.SessionsSweptEvent) error {
	return p.publish(ctx, TopicSessionsSwept, "", event)
}

func (p *EventPublisher) publish(ctx context.Context, eventType, userID string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	envelope := eventEnvelope{
		EventID:   uuid.NewString(),
		EventType: eventType,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Version:   "1.0",
		Payload:   raw,
	}

	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		envelope.Metadata = map[string]string{
			"trace_id": span.SpanContext().TraceID().String(),
		}
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     p.producer.TopicName(eventType),
		Value:     sarama.ByteEncoder(data),
		Timestamp: envelope.Timestamp,
	}
	if userID != "" {
		msg.Key = sarama.StringEncoder(userID)
	}

	select {
	case p.producer.Producer().Input() <- msg:
		p.logger.Debug("security event queued",
			zap.String("event_type", eventType),
			zap.String("event_id", envelope.EventID),
		)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap/zaptest"

	"github.com/dipeshss4/tripgo-auth/internal/core/domain"
	"github.com/dipeshss4/tripgo-auth/internal/infra/config"
)

type fakeAsyncProducer struct {
	input  chan *sarama.ProducerMessage
	errors chan *sarama.ProducerError
}

func newFakeAsyncProducer() *fakeAsyncProducer {
	return &fakeAsyncProducer{
		input:  make(chan *sarama.ProducerMessage, 1),
		errors: make(chan *sarama.ProducerError, 1),
	}
}

func (f *fakeAsyncProducer) AsyncClose() {}

func (f *fakeAsyncProducer) Close() error { return nil }

func (f *fakeAsyncProducer) Input() chan<- *sarama.ProducerMessage { return f.input }

func (f *fakeAsyncProducer) Successes() <-chan *sarama.ProducerMessage { return nil }

func (f *fakeAsyncProducer) Errors() <-chan *sarama.ProducerError { return f.errors }

func (f *fakeAsyncProducer) IsTransactional() bool { return false }

func (f *fakeAsyncProducer) BeginTxn() error { return nil }

func (f *fakeAsyncProducer) CommitTxn() error { return nil }

func (f *fakeAsyncProducer) AbortTxn() error { return nil }

func (f *fakeAsyncProducer) AddOffsetsToTxn(offsets map[string][]*sarama.PartitionOffsetMetadata, groupID string) error {
	return nil
}

func (f *fakeAsyncProducer) AddMessageToTxn(msg *sarama.ConsumerMessage, groupID string, metadata *string) error {
	return nil
}

func (f *fakeAsyncProducer) TxnStatus() sarama.ProducerTxnStatusFlag {
	return sarama.ProducerTxnStatusFlag(0)
}

func newTestPublisher(t *testing.T) (*EventPublisher, *fakeAsyncProducer) {
	t.Helper()

	asyncProducer := newFakeAsyncProducer()
	producer := &Producer{
		producer: asyncProducer,
		logger:   zaptest.NewLogger(t),
		cfg:      config.KafkaSettings{TopicPrefix: "tripgo.auth"},
		errChan:  make(chan error, 1),
		done:     make(chan struct{}),
	}

	return NewEventPublisher(producer, zaptest.NewLogger(t)), asyncProducer
}

func TestPublishLoginSucceeded(t *testing.T) {
	publisher, asyncProducer := newTestPublisher(t)

	occurredAt := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	event := domain.LoginSucceededEvent{
		TenantID:   "t-main",
		UserID:     "user-1",
		SessionID:  "session-1",
		TrustScore: 85,
		RiskTier:   domain.RiskLow,
		IP:         "203.0.113.7",
		OccurredAt: occurredAt,
	}

	if err := publisher.PublishLoginSucceeded(context.Background(), event); err != nil {
		t.Fatalf("PublishLoginSucceeded returned error: %v", err)
	}

	var msg *sarama.ProducerMessage
	select {
	case msg = <-asyncProducer.input:
	case <-time.After(time.Second):
		t.Fatal("no message reached the producer")
	}

	if msg.Topic != "tripgo.auth.security.login-succeeded" {
		t.Fatalf("topic = %s", msg.Topic)
	}

	key, err := msg.Key.Encode()
	if err != nil {
		t.Fatalf("encode key: %v", err)
	}
	if string(key) != "user-1" {
		t.Fatalf("key = %s, want user-1", key)
	}

	raw, err := msg.Value.Encode()
	if err != nil {
		t.Fatalf("encode value: %v", err)
	}

	var envelope eventEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.EventType != TopicLoginSucceeded {
		t.Fatalf("event type = %s", envelope.EventType)
	}
	if envelope.EventID == "" || envelope.Version != "1.0" {
		t.Fatalf("unexpected envelope: %+v", envelope)
	}

	var payload domain.LoginSucceededEvent
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.SessionID != "session-1" || payload.TrustScore != 85 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestPublishLoginFailedOmitsKey(t *testing.T) {
	publisher, asyncProducer := newTestPublisher(t)

	event := domain.LoginFailedEvent{
		TenantID:   "t-main",
		Email:      "a***@example.com",
		Reason:     "invalid_credentials",
		IP:         "203.0.113.7",
		Failures:   2,
		OccurredAt: time.Now().UTC(),
	}

	if err := publisher.PublishLoginFailed(context.Background(), event); err != nil {
		t.Fatalf("PublishLoginFailed returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Key != nil {
			t.Fatalf("failed logins have no user id, key should be nil, got %v", msg.Key)
		}
		if msg.Topic != "tripgo.auth.security.login-failed" {
			t.Fatalf("topic = %s", msg.Topic)
		}
	case <-time.After(time.Second):
		t.Fatal("no message reached the producer")
	}
}

func TestPublishRespectsContextCancellation(t *testing.T) {
	publisher, asyncProducer := newTestPublisher(t)

	// Fill the buffered input channel so the next publish must block.
	asyncProducer.input <- &sarama.ProducerMessage{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := publisher.PublishSessionsSwept(ctx, domain.SessionsSweptEvent{Removed: 3, OccurredAt: time.Now().UTC()})
	if err == nil {
		t.Fatal("expected context error when the producer is saturated")
	}
}

package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/campushub/lms-service/internal/models"
	"github.com/campushub/lms-service/internal/repositories"
)

// AuditTopic carries audit events from services to the log writer.
const AuditTopic = "lms.audit"

// AuditEvent is the wire form of one audit record.
type AuditEvent struct {
	UserID    string                 `json:"user_id"`
	Action    string                 `json:"action"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// AuditBus decouples audit recording from request handling: services publish
// and return immediately, a subscriber persists Log rows in the background.
// Both sides are best-effort; an audit failure never fails the operation
// that triggered it.
type AuditBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	repo       repositories.Repository
	logger     *slog.Logger
}

// NewAuditBus builds the bus. With no brokers it runs on an in-process
// channel; with brokers the audit stream goes through Kafka so other
// services can consume it too.
func NewAuditBus(brokers []string, repo repositories.Repository, logger *slog.Logger) (*AuditBus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	var publisher message.Publisher
	var subscriber message.Subscriber

	if len(brokers) > 0 {
		pub, err := kafka.NewPublisher(kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		}, wmLogger)
		if err != nil {
			return nil, err
		}
		sub, err := kafka.NewSubscriber(kafka.SubscriberConfig{
			Brokers:       brokers,
			Unmarshaler:   kafka.DefaultMarshaler{},
			ConsumerGroup: "lms-audit-writer",
		}, wmLogger)
		if err != nil {
			return nil, err
		}
		publisher, subscriber = pub, sub
	} else {
		ch := gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 256,
		}, wmLogger)
		publisher, subscriber = ch, ch
	}

	return &AuditBus{
		publisher:  publisher,
		subscriber: subscriber,
		repo:       repo,
		logger:     logger,
	}, nil
}

// Record implements services.AuditRecorder.
func (b *AuditBus) Record(ctx context.Context, userID, action string, details map[string]interface{}) {
	event := AuditEvent{
		UserID:    userID,
		Action:    action,
		Details:   details,
		Timestamp: time.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal audit event", "error", err, "action", action)
		return
	}

	msg := message.NewMessage(uuid.New().String(), payload)
	if err := b.publisher.Publish(AuditTopic, msg); err != nil {
		b.logger.Error("Failed to publish audit event", "error", err, "action", action)
	}
}

// Run consumes the audit stream and writes Log rows until ctx is cancelled.
func (b *AuditBus) Run(ctx context.Context) error {
	messages, err := b.subscriber.Subscribe(ctx, AuditTopic)
	if err != nil {
		return err
	}

	for msg := range messages {
		b.handle(ctx, msg)
		msg.Ack()
	}
	return nil
}

func (b *AuditBus) handle(ctx context.Context, msg *message.Message) {
	var event AuditEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		b.logger.Error("Dropping malformed audit event", "error", err, "message_id", msg.UUID)
		return
	}

	var details datatypes.JSON
	if event.Details != nil {
		raw, err := json.Marshal(event.Details)
		if err == nil {
			details = raw
		}
	}

	log := &models.Log{
		UserID:    event.UserID,
		Action:    event.Action,
		Context:   details,
		Timestamp: event.Timestamp,
	}
	if err := b.repo.Log().Create(ctx, nil, log); err != nil {
		b.logger.Error("Failed to persist audit log",
			"error", err,
			"action", event.Action,
			"user_id", event.UserID)
	}
}

// Close shuts down the underlying pub/sub.
func (b *AuditBus) Close() error {
	if err := b.publisher.Close(); err != nil {
		return err
	}
	// gochannel shares one value for both sides; closing twice is safe.
	return b.subscriber.Close()
}

package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sri-narendra/Tasks/internal/domain"
	pkgkafka "github.com/sri-narendra/Tasks/pkg/kafka"
)

// Event type constants for auth domain events.
const (
	TypeUserRegistered       = "taskboard.user.registered"
	TypeSessionReuseDetected = "taskboard.session.reuse_detected"
)

// Source identifier for events originating from this service.
const Source = "taskboard-api"

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// SessionReuseDetectedData is the payload for a session.reuse_detected event.
// It carries enough context for downstream alerting without exposing token
// material.
type SessionReuseDetectedData struct {
	UserID        string `json:"user_id"`
	IP            string `json:"ip"`
	RevokedTokens int64  `json:"revoked_tokens"`
}

// Producer publishes auth domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}

	event := pkgkafka.NewEvent(TypeUserRegistered, Source, data)

	if err := p.kafka.Publish(ctx, user.ID, event); err != nil {
		return fmt.Errorf("publish user.registered event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.registered event",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return nil
}

// PublishSessionReuseDetected publishes a session.reuse_detected event.
func (p *Producer) PublishSessionReuseDetected(ctx context.Context, userID, ip string, revokedTokens int64) error {
	data := SessionReuseDetectedData{
		UserID:        userID,
		IP:            ip,
		RevokedTokens: revokedTokens,
	}

	event := pkgkafka.NewEvent(TypeSessionReuseDetected, Source, data)

	if err := p.kafka.Publish(ctx, userID, event); err != nil {
		return fmt.Errorf("publish session.reuse_detected event: %w", err)
	}

	p.logger.DebugContext(ctx, "published session.reuse_detected event",
		slog.String("user_id", userID),
		slog.String("ip", ip),
	)

	return nil
}

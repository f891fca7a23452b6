package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/marketplace/internal/gateway"
	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/notify"
	"github.com/Skotchmaster/marketplace/internal/repo"
	"github.com/Skotchmaster/marketplace/pkg/logging"
	"github.com/google/uuid"
)

type Catalog interface {
	ResolveProduct(ctx context.Context, id uuid.UUID) (*repo.ProductInfo, error)
	ResolveVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error)
}

type Gateway interface {
	Initialize(ctx context.Context, req gateway.InitializeRequest) (*gateway.InitializeResult, error)
	Verify(ctx context.Context, reference string) (*gateway.Verification, error)
}

type Notifier interface {
	Send(ctx context.Context, msg notify.Message) error
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context), ok bool, err error)
}

// sideEffects bundles the fire-and-forget collaborators. Failures are logged
// and never reach the caller.
type sideEffects struct {
	Notifier Notifier
	Events   EventPublisher
}

func (s sideEffects) notify(ctx context.Context, msg notify.Message) {
	if s.Notifier == nil || len(msg.Recipients) == 0 {
		return
	}
	if err := s.Notifier.Send(ctx, msg); err != nil {
		logging.FromContext(ctx).Warn("notification_failed", "subject", msg.Subject, "error", err)
	}
}

func (s sideEffects) publish(ctx context.Context, topic, key string, event any) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "topic", topic, "key", key, "error", err)
	}
}

func actorEmail(ctx context.Context, r *repo.GormRepo, a Actor) string {
	if a.Email != "" {
		return a.Email
	}
	email, err := r.UserEmail(ctx, a.UserID)
	if err != nil {
		return ""
	}
	return email
}

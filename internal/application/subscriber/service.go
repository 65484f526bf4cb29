// Package subscriber manages the push-subscriber lifecycle: subscribe,
// re-subscribe and unsubscribe. Pruning of dead endpoints happens in the
// dispatcher.
package subscriber

import (
	"context"
	"errors"
	"time"

	"github.com/facility-dashboard-api/internal/domain"
)

type Service interface {
	Subscribe(ctx context.Context, req domain.SubscribeRequest) (*domain.PushSubscriber, error)
	Unsubscribe(ctx context.Context, endpoint string) error
}

type subscriberStore interface {
	Get(ctx context.Context, endpoint string) (*domain.PushSubscriber, error)
	Put(ctx context.Context, s *domain.PushSubscriber) error
	Delete(ctx context.Context, endpoint string) error
}

type service struct {
	repo subscriberStore
}

func NewService(repo subscriberStore) Service {
	return &service{repo: repo}
}

// Subscribe registers a push endpoint. The endpoint is the natural unique
// key: subscribing again from the same endpoint refreshes the keys and owner
// email in place instead of creating a duplicate.
func (s *service) Subscribe(ctx context.Context, req domain.SubscribeRequest) (*domain.PushSubscriber, error) {
	now := time.Now().UTC()
	sub := &domain.PushSubscriber{
		Endpoint:   req.Endpoint,
		P256dh:     req.Keys.P256dh,
		Auth:       req.Keys.Auth,
		OwnerEmail: req.OwnerEmail,
		LastUsedAt: now,
		CreatedAt:  now,
	}
	if existing, err := s.repo.Get(ctx, req.Endpoint); err == nil {
		sub.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if err := s.repo.Put(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Unsubscribe removes the endpoint. Removing an unknown endpoint is a no-op.
func (s *service) Unsubscribe(ctx context.Context, endpoint string) error {
	return s.repo.Delete(ctx, endpoint)
}

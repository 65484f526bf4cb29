// Package webpush delivers browser push notifications over the Web Push
// protocol with VAPID authentication.
package webpush

import (
	"context"
	"fmt"
	"io"
	"time"

	wp "github.com/SherClockHolmes/webpush-go"
	"github.com/facility-dashboard-api/internal/config"
	"github.com/facility-dashboard-api/internal/domain"
)

// Sender sends push payloads to individual subscribers.
type Sender interface {
	Send(ctx context.Context, sub *domain.PushSubscriber, payload []byte) error
}

type sender struct {
	publicKey  string
	privateKey string
	subject    string
	ttl        int
}

// NewSender returns a Web Push sender, or an error when the VAPID key pair is
// missing so the caller can degrade gracefully.
func NewSender(cfg *config.Config) (Sender, error) {
	if cfg.VAPIDPublicKey == "" || cfg.VAPIDPrivateKey == "" {
		return nil, fmt.Errorf("VAPID keys missing: %w", domain.ErrNotConfigured)
	}
	return &sender{
		publicKey:  cfg.VAPIDPublicKey,
		privateKey: cfg.VAPIDPrivateKey,
		subject:    cfg.VAPIDSubject,
		ttl:        int((24 * time.Hour).Seconds()),
	}, nil
}

// Send pushes one payload to one subscriber. A provider status of 404 or 410
// comes back as a domain.PushError reporting the endpoint as gone; the
// dispatcher uses that to prune the subscriber.
func (s *sender) Send(ctx context.Context, sub *domain.PushSubscriber, payload []byte) error {
	resp, err := wp.SendNotificationWithContext(ctx, payload, &wp.Subscription{
		Endpoint: sub.Endpoint,
		Keys: wp.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &wp.Options{
		Subscriber:      s.subject,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             s.ttl,
	})
	if err != nil {
		return fmt.Errorf("push send: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return &domain.PushError{StatusCode: resp.StatusCode}
	}
	return nil
}

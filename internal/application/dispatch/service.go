// Package dispatch fans a batch of due-item events out to the push and email
// channels, pruning dead push endpoints along the way.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/facility-dashboard-api/internal/domain"
)

type Service interface {
	// Dispatch delivers a batch of events. Per-subscriber and per-category
	// failures are absorbed into the report; it never returns an error for
	// delivery problems.
	Dispatch(ctx context.Context, events []domain.NotificationEvent) *domain.DispatchReport
	// SendTest delivers one synthetic event: to the given email address, or to
	// every current push subscriber when email is empty.
	SendTest(ctx context.Context, email string) error
}

type subscriberStore interface {
	List(ctx context.Context) ([]domain.PushSubscriber, error)
	Delete(ctx context.Context, endpoint string) error
	Touch(ctx context.Context, endpoint string, at time.Time) error
}

type pushSender interface {
	Send(ctx context.Context, sub *domain.PushSubscriber, payload []byte) error
}

type mailer interface {
	SendEmail(to []string, subject, htmlBody string) error
}

type service struct {
	subscribers subscriberStore
	push        pushSender
	mail        mailer
	now         func() time.Time
}

type ServiceDeps struct {
	Subscribers subscriberStore
	Push        pushSender // nil when push is not configured
	Mail        mailer
}

func NewService(deps ServiceDeps) Service {
	return &service{
		subscribers: deps.Subscribers,
		push:        deps.Push,
		mail:        deps.Mail,
		now:         time.Now,
	}
}

// Subjects for the grouped category emails.
var categorySubjects = map[string]string{
	domain.CategoryVehicle:     "Vehicle expiry reminders",
	domain.CategoryRental:      "Rental contract reminders",
	domain.CategoryElectricity: "Electricity bill reminders",
}

func (s *service) Dispatch(ctx context.Context, events []domain.NotificationEvent) *domain.DispatchReport {
	report := &domain.DispatchReport{Total: len(events)}
	if len(events) == 0 {
		return report
	}

	subs, err := s.subscribers.List(ctx)
	if err != nil {
		log.Printf("dispatch: list subscribers: %v", err)
		subs = nil
	}

	subs = s.pushPhase(ctx, events, subs, report)
	s.emailPhase(events, subs, report)

	report.Sent = report.PushSent + report.EmailSent
	return report
}

// pushPhase attempts every event against every live subscriber. Endpoints the
// provider reports as gone are deleted immediately and skipped for the rest
// of the run. Returns the surviving subscribers for the email phase.
func (s *service) pushPhase(ctx context.Context, events []domain.NotificationEvent, subs []domain.PushSubscriber, report *domain.DispatchReport) []domain.PushSubscriber {
	if s.push == nil || len(subs) == 0 {
		return subs
	}

	pruned := make(map[string]bool)
	for _, ev := range events {
		payload, err := json.Marshal(map[string]string{
			"title":    ev.Title,
			"message":  ev.Message,
			"category": ev.Category,
		})
		if err != nil {
			log.Printf("dispatch: marshal push payload: %v", err)
			continue
		}

		delivered := 0
		for i := range subs {
			sub := &subs[i]
			if pruned[sub.Endpoint] {
				continue
			}
			if err := s.push.Send(ctx, sub, payload); err != nil {
				var pe *domain.PushError
				if errors.As(err, &pe) && pe.Gone() {
					pruned[sub.Endpoint] = true
					if derr := s.subscribers.Delete(ctx, sub.Endpoint); derr != nil {
						log.Printf("dispatch: prune subscriber: %v", derr)
					}
					continue
				}
				// Transient failure: keep the subscriber, move on.
				log.Printf("dispatch: push to %s: %v", sub.OwnerEmail, err)
				continue
			}
			delivered++
			if terr := s.subscribers.Touch(ctx, sub.Endpoint, s.now()); terr != nil {
				log.Printf("dispatch: touch subscriber: %v", terr)
			}
		}
		if delivered > 0 {
			report.PushSent++
		}
	}

	if len(pruned) == 0 {
		return subs
	}
	live := subs[:0]
	for _, sub := range subs {
		if !pruned[sub.Endpoint] {
			live = append(live, sub)
		}
	}
	return live
}

// emailPhase sends at most one grouped email per non-empty category to the
// distinct owner emails of the surviving subscribers.
func (s *service) emailPhase(events []domain.NotificationEvent, subs []domain.PushSubscriber, report *domain.DispatchReport) {
	if s.mail == nil {
		return
	}
	recipients := ownerEmails(subs)
	if len(recipients) == 0 {
		return
	}

	byCategory := make(map[string][]domain.NotificationEvent)
	for _, ev := range events {
		byCategory[ev.Category] = append(byCategory[ev.Category], ev)
	}

	for _, category := range domain.Categories {
		batch := byCategory[category]
		if len(batch) == 0 {
			continue
		}
		err := s.mail.SendEmail(recipients, categorySubjects[category], categoryEmailBody(category, batch))
		if errors.Is(err, domain.ErrNotConfigured) {
			// Email channel absent; not a failure.
			return
		}
		if err != nil {
			log.Printf("dispatch: email category %s: %v", category, err)
			continue
		}
		report.EmailSent++
	}
}

func (s *service) SendTest(ctx context.Context, email string) error {
	ev := domain.NotificationEvent{
		Category:    domain.CategoryVehicle,
		SubCategory: "test",
		Title:       "Test notification",
		Message:     "This is a test notification from the facility dashboard.",
	}

	if email != "" {
		if s.mail == nil {
			return domain.ErrNotConfigured
		}
		return s.mail.SendEmail([]string{email}, ev.Title, categoryEmailBody(ev.Category, []domain.NotificationEvent{ev}))
	}

	if s.push == nil {
		return domain.ErrNotConfigured
	}
	subs, err := s.subscribers.List(ctx)
	if err != nil {
		return fmt.Errorf("list subscribers: %w", err)
	}
	if len(subs) == 0 {
		return fmt.Errorf("no push subscribers: %w", domain.ErrNotFound)
	}
	payload, err := json.Marshal(map[string]string{
		"title":    ev.Title,
		"message":  ev.Message,
		"category": ev.Category,
	})
	if err != nil {
		return err
	}
	var lastErr error
	for i := range subs {
		if err := s.push.Send(ctx, &subs[i], payload); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// ownerEmails returns the distinct owner emails across subscribers, sorted so
// the recipient list is deterministic.
func ownerEmails(subs []domain.PushSubscriber) []string {
	seen := make(map[string]bool)
	var emails []string
	for _, sub := range subs {
		if sub.OwnerEmail == "" || seen[sub.OwnerEmail] {
			continue
		}
		seen[sub.OwnerEmail] = true
		emails = append(emails, sub.OwnerEmail)
	}
	sort.Strings(emails)
	return emails
}

func categoryEmailBody(category string, events []domain.NotificationEvent) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<h2>%s</h2>\n<ul>\n", categorySubjects[category]))
	for _, ev := range events {
		b.WriteString(fmt.Sprintf("<li><strong>%s</strong>: %s</li>\n", ev.Title, ev.Message))
	}
	b.WriteString("</ul>\n")
	return b.String()
}

package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/facility-dashboard-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockSubscriberStore struct{ mock.Mock }

func (m *mockSubscriberStore) List(ctx context.Context) ([]domain.PushSubscriber, error) {
	args := m.Called(ctx)
	if subs, _ := args.Get(0).([]domain.PushSubscriber); subs != nil {
		return subs, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSubscriberStore) Delete(ctx context.Context, endpoint string) error {
	return m.Called(ctx, endpoint).Error(0)
}
func (m *mockSubscriberStore) Touch(ctx context.Context, endpoint string, at time.Time) error {
	return m.Called(ctx, endpoint, at).Error(0)
}

type mockPushSender struct{ mock.Mock }

func (m *mockPushSender) Send(ctx context.Context, sub *domain.PushSubscriber, payload []byte) error {
	return m.Called(ctx, sub, payload).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to []string, subject, htmlBody string) error {
	return m.Called(to, subject, htmlBody).Error(0)
}

func subscriber(endpoint, email string) domain.PushSubscriber {
	return domain.PushSubscriber{
		Endpoint:   endpoint,
		P256dh:     "p256dh-key",
		Auth:       "auth-secret",
		OwnerEmail: email,
	}
}

func vehicleEvent(id string) domain.NotificationEvent {
	return domain.NotificationEvent{
		Category:       domain.CategoryVehicle,
		SubCategory:    "license",
		SourceRecordID: id,
		Title:          "Vehicle license expiring",
		Message:        "License expires in 5 days.",
	}
}

// --- tests ---

func TestDispatchEmptyEvents(t *testing.T) {
	store := new(mockSubscriberStore)
	push := new(mockPushSender)
	mail := new(mockMailer)
	svc := NewService(ServiceDeps{Subscribers: store, Push: push, Mail: mail})

	report := svc.Dispatch(context.Background(), nil)

	assert.Equal(t, &domain.DispatchReport{}, report)
	store.AssertNotCalled(t, "List", mock.Anything)
	push.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	mail.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatchPushAndEmail(t *testing.T) {
	store := new(mockSubscriberStore)
	push := new(mockPushSender)
	mail := new(mockMailer)
	svc := NewService(ServiceDeps{Subscribers: store, Push: push, Mail: mail})

	subs := []domain.PushSubscriber{
		subscriber("https://push.example/ep-1", "owner@example.com"),
		subscriber("https://push.example/ep-2", "owner@example.com"),
	}
	store.On("List", mock.Anything).Return(subs, nil)
	store.On("Touch", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	push.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mail.On("SendEmail", []string{"owner@example.com"}, "Vehicle expiry reminders", mock.Anything).Return(nil)

	events := []domain.NotificationEvent{vehicleEvent("v1"), vehicleEvent("v2")}
	report := svc.Dispatch(context.Background(), events)

	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 2, report.PushSent)
	assert.Equal(t, 1, report.EmailSent)
	assert.Equal(t, 3, report.Sent)
	push.AssertNumberOfCalls(t, "Send", 4) // 2 events x 2 subscribers
	mail.AssertExpectations(t)
}

func TestDispatchPrunesGoneEndpoints(t *testing.T) {
	store := new(mockSubscriberStore)
	push := new(mockPushSender)
	svc := NewService(ServiceDeps{Subscribers: store, Push: push})

	alive := subscriber("https://push.example/alive", "a@example.com")
	gone := subscriber("https://push.example/gone", "b@example.com")
	store.On("List", mock.Anything).Return([]domain.PushSubscriber{alive, gone}, nil)
	store.On("Touch", mock.Anything, alive.Endpoint, mock.Anything).Return(nil)
	store.On("Delete", mock.Anything, gone.Endpoint).Return(nil)

	push.On("Send", mock.Anything, mock.MatchedBy(func(s *domain.PushSubscriber) bool {
		return s.Endpoint == alive.Endpoint
	}), mock.Anything).Return(nil)
	push.On("Send", mock.Anything, mock.MatchedBy(func(s *domain.PushSubscriber) bool {
		return s.Endpoint == gone.Endpoint
	}), mock.Anything).Return(&domain.PushError{StatusCode: 410})

	events := []domain.NotificationEvent{vehicleEvent("v1"), vehicleEvent("v2")}
	report := svc.Dispatch(context.Background(), events)

	// The gone endpoint is deleted once and skipped for the second event.
	store.AssertNumberOfCalls(t, "Delete", 1)
	push.AssertNumberOfCalls(t, "Send", 3)
	assert.Equal(t, 2, report.PushSent)
}

func TestDispatchTransientPushFailureKeepsSubscriber(t *testing.T) {
	store := new(mockSubscriberStore)
	push := new(mockPushSender)
	svc := NewService(ServiceDeps{Subscribers: store, Push: push})

	sub := subscriber("https://push.example/flaky", "a@example.com")
	store.On("List", mock.Anything).Return([]domain.PushSubscriber{sub}, nil)
	push.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(&domain.PushError{StatusCode: 500})

	report := svc.Dispatch(context.Background(), []domain.NotificationEvent{vehicleEvent("v1")})

	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	assert.Equal(t, 0, report.PushSent)
	assert.Equal(t, 0, report.Sent)
}

func TestDispatchGroupsEmailsByCategory(t *testing.T) {
	store := new(mockSubscriberStore)
	mail := new(mockMailer)
	svc := NewService(ServiceDeps{Subscribers: store, Mail: mail})

	subs := []domain.PushSubscriber{
		subscriber("https://push.example/ep-1", "b@example.com"),
		subscriber("https://push.example/ep-2", "a@example.com"),
		subscriber("https://push.example/ep-3", "a@example.com"),
	}
	store.On("List", mock.Anything).Return(subs, nil)

	recipients := []string{"a@example.com", "b@example.com"} // distinct, sorted
	mail.On("SendEmail", recipients, "Vehicle expiry reminders", mock.Anything).Return(nil)
	mail.On("SendEmail", recipients, "Electricity bill reminders", mock.Anything).Return(nil)

	events := []domain.NotificationEvent{
		vehicleEvent("v1"),
		vehicleEvent("v2"),
		{Category: domain.CategoryElectricity, SubCategory: "due-date", SourceRecordID: "b1", Title: "Electricity bill due", Message: "Bill due tomorrow."},
	}
	report := svc.Dispatch(context.Background(), events)

	mail.AssertNumberOfCalls(t, "SendEmail", 2)
	assert.Equal(t, 2, report.EmailSent)
}

func TestDispatchEmailFailureIsolatedPerCategory(t *testing.T) {
	store := new(mockSubscriberStore)
	mail := new(mockMailer)
	svc := NewService(ServiceDeps{Subscribers: store, Mail: mail})

	store.On("List", mock.Anything).Return([]domain.PushSubscriber{subscriber("https://push.example/ep", "a@example.com")}, nil)
	mail.On("SendEmail", mock.Anything, "Vehicle expiry reminders", mock.Anything).Return(errors.New("smtp timeout"))
	mail.On("SendEmail", mock.Anything, "Rental contract reminders", mock.Anything).Return(nil)

	events := []domain.NotificationEvent{
		vehicleEvent("v1"),
		{Category: domain.CategoryRental, SubCategory: "contract", SourceRecordID: "r1", Title: "Rental contract ending", Message: "Contract ends in 3 days."},
	}
	report := svc.Dispatch(context.Background(), events)

	assert.Equal(t, 1, report.EmailSent)
}

func TestDispatchSkipsEmailWhenNotConfigured(t *testing.T) {
	store := new(mockSubscriberStore)
	mail := new(mockMailer)
	svc := NewService(ServiceDeps{Subscribers: store, Mail: mail})

	store.On("List", mock.Anything).Return([]domain.PushSubscriber{subscriber("https://push.example/ep", "a@example.com")}, nil)
	mail.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(domain.ErrNotConfigured)

	report := svc.Dispatch(context.Background(), []domain.NotificationEvent{vehicleEvent("v1")})

	mail.AssertNumberOfCalls(t, "SendEmail", 1)
	assert.Equal(t, 0, report.EmailSent)
	assert.Equal(t, 0, report.Sent)
}

func TestSendTestEmail(t *testing.T) {
	mail := new(mockMailer)
	svc := NewService(ServiceDeps{Mail: mail})

	mail.On("SendEmail", []string{"me@example.com"}, "Test notification", mock.Anything).Return(nil)

	err := svc.SendTest(context.Background(), "me@example.com")
	require.NoError(t, err)
	mail.AssertExpectations(t)
}

func TestSendTestPushNoSubscribers(t *testing.T) {
	store := new(mockSubscriberStore)
	push := new(mockPushSender)
	svc := NewService(ServiceDeps{Subscribers: store, Push: push})

	store.On("List", mock.Anything).Return([]domain.PushSubscriber{}, nil)

	err := svc.SendTest(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSendTestPushToAllSubscribers(t *testing.T) {
	store := new(mockSubscriberStore)
	push := new(mockPushSender)
	svc := NewService(ServiceDeps{Subscribers: store, Push: push})

	subs := []domain.PushSubscriber{
		subscriber("https://push.example/ep-1", "a@example.com"),
		subscriber("https://push.example/ep-2", "b@example.com"),
	}
	store.On("List", mock.Anything).Return(subs, nil)
	push.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	err := svc.SendTest(context.Background(), "")
	require.NoError(t, err)
	push.AssertNumberOfCalls(t, "Send", 2)
}

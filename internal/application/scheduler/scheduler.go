// Package scheduler runs the daily expiry check: load records, collect due
// items, dispatch notifications. The same pipeline backs the cron schedule
// and the manual trigger.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/facility-dashboard-api/internal/application/expiry"
	"github.com/facility-dashboard-api/internal/domain"
	"github.com/robfig/cron/v3"
)

// ErrRunInProgress is returned when a trigger arrives while a previous
// pipeline run has not finished. Overlapping runs would double-send.
var ErrRunInProgress = errors.New("expiry check already running")

type vehicleStore interface {
	Scan(ctx context.Context) ([]domain.Vehicle, error)
}

type rentalStore interface {
	Scan(ctx context.Context) ([]domain.RentalContract, error)
}

type billStore interface {
	Scan(ctx context.Context) ([]domain.ElectricityBill, error)
}

type dispatcher interface {
	Dispatch(ctx context.Context, events []domain.NotificationEvent) *domain.DispatchReport
}

// Scheduler owns the daily timer. Start arms a single cron entry; the process
// entry point is responsible for calling Start exactly once.
type Scheduler struct {
	cron          *cron.Cron
	hour          int
	thresholdDays int
	vehicles      vehicleStore
	rentals       rentalStore
	bills         billStore
	dispatch      dispatcher
	now           func() time.Time
	running       atomic.Bool
}

type Deps struct {
	Hour          int // local hour of the daily run
	ThresholdDays int
	Vehicles      vehicleStore
	Rentals       rentalStore
	Bills         billStore
	Dispatcher    dispatcher
}

func New(deps Deps) *Scheduler {
	hour := deps.Hour
	if hour < 0 || hour > 23 {
		hour = 9
	}
	threshold := deps.ThresholdDays
	if threshold <= 0 {
		threshold = expiry.DefaultThresholdDays
	}
	return &Scheduler{
		cron:          cron.New(),
		hour:          hour,
		thresholdDays: threshold,
		vehicles:      deps.Vehicles,
		rentals:       deps.Rentals,
		bills:         deps.Bills,
		dispatch:      deps.Dispatcher,
		now:           time.Now,
	}
}

// Start arms the daily fire time and returns immediately.
func (s *Scheduler) Start() error {
	spec := fmt.Sprintf("0 %d * * *", s.hour)
	if _, err := s.cron.AddFunc(spec, s.fire); err != nil {
		return fmt.Errorf("schedule daily check: %w", err)
	}
	s.cron.Start()
	log.Printf("scheduler: daily expiry check armed for %02d:00", s.hour)
	return nil
}

// Stop halts the timer. A fire already in flight finishes on its own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) fire() {
	report, err := s.TriggerNow(context.Background())
	if err != nil {
		log.Printf("scheduler: daily expiry check: %v", err)
		return
	}
	log.Printf("scheduler: daily expiry check done: total=%d push=%d email=%d",
		report.Total, report.PushSent, report.EmailSent)
}

// TriggerNow runs the evaluate+dispatch pipeline outside the schedule. Only
// one run may be in flight at a time; a concurrent trigger gets
// ErrRunInProgress instead of a duplicate send.
func (s *Scheduler) TriggerNow(ctx context.Context) (*domain.DispatchReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)

	vehicles, err := s.vehicles.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	rentals, err := s.rentals.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rental contracts: %w", err)
	}
	bills, err := s.bills.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list electricity bills: %w", err)
	}

	events := expiry.CollectDueItems(s.now(), s.thresholdDays, vehicles, rentals, bills)
	return s.dispatch.Dispatch(ctx, events), nil
}

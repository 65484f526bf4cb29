// Package sync orchestrates the per-vehicle insurance synchronization run
// against the external API.
package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/facility-dashboard-api/internal/domain"
	"golang.org/x/time/rate"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldInsuranceCompany      = "insurance_company"
	fieldInsurancePolicyNumber = "insurance_policy_number"
	fieldInsuranceExpiryDate   = "insurance_expiry_date"
	fieldInsuranceStatus       = "insurance_status"
	fieldLastSyncDate          = "last_sync_date"
	fieldDataSource            = "data_source"
)

type Service interface {
	// SyncAll refreshes insurance data for every eligible vehicle. Per-vehicle
	// failures are captured in the result; the returned error is non-nil only
	// when the vehicle list itself cannot be read.
	SyncAll(ctx context.Context) (*domain.SyncResult, error)
	// SyncOne refreshes a single vehicle by id.
	SyncOne(ctx context.Context, vehicleID string) (*domain.InsuranceInfo, error)
}

type vehicleStore interface {
	Scan(ctx context.Context) ([]domain.Vehicle, error)
	Get(ctx context.Context, vehicleID string) (*domain.Vehicle, error)
	Update(ctx context.Context, vehicleID string, updates map[string]interface{}) error
}

type insuranceFetcher interface {
	FetchInsurance(ctx context.Context, plateNumber, sequenceNumber string) (*domain.InsuranceInfo, error)
}

type service struct {
	vehicles  vehicleStore
	insurance insuranceFetcher
	limiter   *rate.Limiter
}

type ServiceDeps struct {
	Vehicles  vehicleStore
	Insurance insuranceFetcher
	// Delay is the minimum spacing between external calls inside one run,
	// honoring the external API's rate limits.
	Delay time.Duration
}

func NewService(deps ServiceDeps) Service {
	delay := deps.Delay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	return &service{
		vehicles:  deps.Vehicles,
		insurance: deps.Insurance,
		limiter:   rate.NewLimiter(rate.Every(delay), 1),
	}
}

func (s *service) SyncAll(ctx context.Context) (*domain.SyncResult, error) {
	vehicles, err := s.vehicles.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}

	// Only vehicles carrying both identifiers take part in the run; the rest
	// are silently excluded rather than reported as failures.
	eligible := vehicles[:0]
	for _, v := range vehicles {
		if v.PlateNumber != "" && v.SequenceNumber != "" {
			eligible = append(eligible, v)
		}
	}

	result := &domain.SyncResult{Total: len(eligible)}
	for i := range eligible {
		v := &eligible[i]
		// Strictly sequential, throttled between vehicles.
		if err := s.limiter.Wait(ctx); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, domain.SyncError{Identifier: v.PlateNumber, Message: err.Error()})
			continue
		}
		info, err := s.insurance.FetchInsurance(ctx, v.PlateNumber, v.SequenceNumber)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, domain.SyncError{Identifier: v.PlateNumber, Message: err.Error()})
			continue
		}
		if err := s.vehicles.Update(ctx, v.VehicleID, insuranceUpdates(info)); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, domain.SyncError{Identifier: v.PlateNumber, Message: err.Error()})
			continue
		}
		result.Successful++
		result.Updated = append(result.Updated, v.PlateNumber)
	}
	return result, nil
}

func (s *service) SyncOne(ctx context.Context, vehicleID string) (*domain.InsuranceInfo, error) {
	v, err := s.vehicles.Get(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if v.PlateNumber == "" && v.SequenceNumber == "" {
		return nil, fmt.Errorf("vehicle %s has neither plate nor sequence number: %w", vehicleID, domain.ErrValidation)
	}
	info, err := s.insurance.FetchInsurance(ctx, v.PlateNumber, v.SequenceNumber)
	if err != nil {
		return nil, err
	}
	if err := s.vehicles.Update(ctx, v.VehicleID, insuranceUpdates(info)); err != nil {
		return nil, err
	}
	return info, nil
}

// insuranceUpdates merges the normalized lookup result into a vehicle update
// map. Nil fields are written as nil so a vanished policy clears the stale
// data instead of keeping it.
func insuranceUpdates(info *domain.InsuranceInfo) map[string]interface{} {
	return map[string]interface{}{
		fieldInsuranceCompany:      info.Company,
		fieldInsurancePolicyNumber: info.PolicyNumber,
		fieldInsuranceExpiryDate:   info.ExpiryDate,
		fieldInsuranceStatus:       info.Status,
		fieldLastSyncDate:          info.LastSyncDate.Format(time.RFC3339),
		fieldDataSource:            info.DataSource,
	}
}

package expiry

import (
	"testing"
	"time"

	"github.com/facility-dashboard-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func datePtr(t time.Time) *time.Time { return &t }

func TestDaysUntil(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		target time.Time
		want   int
	}{
		{"same day", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), 0},
		{"same day late evening", time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC), 0},
		{"tomorrow early morning", time.Date(2026, 3, 11, 1, 0, 0, 0, time.UTC), 1},
		{"ten days out", time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC), 10},
		{"yesterday", time.Date(2026, 3, 9, 23, 0, 0, 0, time.UTC), -1},
		{"next month", time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC), 31},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DaysUntil(now, tc.target))
		})
	}
}

func TestDaysUntilIgnoresTimeOfDay(t *testing.T) {
	target := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
	morning := time.Date(2026, 3, 10, 0, 1, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 10, 23, 58, 0, 0, time.UTC)

	assert.Equal(t, DaysUntil(morning, target), DaysUntil(evening, target))
}

func TestShouldNotify(t *testing.T) {
	tests := []struct {
		name      string
		daysUntil int
		threshold int
		want      bool
	}{
		{"due today", 0, 10, true},
		{"at threshold", 10, 10, true},
		{"inside window", 5, 10, true},
		{"past threshold", 11, 10, false},
		{"already expired", -1, 10, false},
		{"narrow window boundary", 3, 3, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ShouldNotify(tc.daysUntil, tc.threshold))
		})
	}
}

func TestCollectDueItems(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	vehicles := []domain.Vehicle{
		{
			VehicleID:            "veh-1",
			Name:                 "Hilux",
			PlateNumber:          "ABC 1234",
			LicenseExpiryDate:    datePtr(now), // due today
			InspectionExpiryDate: datePtr(now.AddDate(0, 0, 40)),
		},
	}
	rentals := []domain.RentalContract{
		{
			RentID:             "rent-1",
			TenantName:         "Ahmed",
			Property:           "Villa 12",
			ContractEndingDate: datePtr(now.AddDate(0, 0, 40)),
			SecondPaymentDate:  datePtr(now.AddDate(0, 0, 3)),
		},
	}
	bills := []domain.ElectricityBill{
		{
			BillID:        "bill-paid",
			AccountNumber: "100200",
			PaymentStatus: domain.PaymentStatusPaid,
			DueDate:       datePtr(now.AddDate(0, 0, 2)),
		},
		{
			BillID:        "bill-unpaid",
			AccountNumber: "100201",
			Location:      "Warehouse",
			PaymentStatus: domain.PaymentStatusUnpaid,
			DueDate:       datePtr(now.AddDate(0, 0, 5)),
		},
	}

	events := CollectDueItems(now, 10, vehicles, rentals, bills)
	require.Len(t, events, 3)

	assert.Equal(t, domain.CategoryVehicle, events[0].Category)
	assert.Equal(t, "license", events[0].SubCategory)
	assert.Equal(t, "veh-1", events[0].SourceRecordID)
	assert.Equal(t, 0, events[0].DaysUntil)
	assert.Contains(t, events[0].Message, "today")
	assert.Contains(t, events[0].Message, "Hilux (ABC 1234)")

	assert.Equal(t, domain.CategoryRental, events[1].Category)
	assert.Equal(t, "payment-2", events[1].SubCategory)
	assert.Equal(t, 3, events[1].DaysUntil)

	assert.Equal(t, domain.CategoryElectricity, events[2].Category)
	assert.Equal(t, "bill-unpaid", events[2].SourceRecordID)
	assert.Equal(t, 5, events[2].DaysUntil)
	assert.Contains(t, events[2].Message, "in 5 days")
}

func TestCollectDueItemsSkipsPaidBills(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	bills := []domain.ElectricityBill{
		{BillID: "b1", PaymentStatus: domain.PaymentStatusPaid, DueDate: datePtr(now)},
	}

	events := CollectDueItems(now, 10, nil, nil, bills)
	assert.Empty(t, events)
}

func TestCollectDueItemsNilDates(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	vehicles := []domain.Vehicle{{VehicleID: "v1", Name: "Truck"}}
	rentals := []domain.RentalContract{{RentID: "r1", TenantName: "Sara", Property: "Flat 3"}}
	bills := []domain.ElectricityBill{{BillID: "b1", PaymentStatus: domain.PaymentStatusUnpaid}}

	events := CollectDueItems(now, 10, vehicles, rentals, bills)
	assert.Empty(t, events)
}

func TestCollectDueItemsDefaultsThreshold(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	vehicles := []domain.Vehicle{
		{VehicleID: "v1", Name: "Truck", LicenseExpiryDate: datePtr(now.AddDate(0, 0, DefaultThresholdDays))},
	}

	events := CollectDueItems(now, 0, vehicles, nil, nil)
	require.Len(t, events, 1)
	assert.Equal(t, DefaultThresholdDays, events[0].DaysUntil)
}

func TestCollectDueItemsIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	vehicles := []domain.Vehicle{
		{VehicleID: "v1", Name: "Truck", PlateNumber: "XYZ 5555", LicenseExpiryDate: datePtr(now.AddDate(0, 0, 4))},
	}

	first := CollectDueItems(now, 10, vehicles, nil, nil)
	second := CollectDueItems(now, 10, vehicles, nil, nil)
	assert.Equal(t, first, second)
}

// Package expiry computes days-until-expiry for every dated field across the
// tracked record types and collects the items due for notification.
package expiry

import (
	"fmt"
	"math"
	"time"

	"github.com/facility-dashboard-api/internal/domain"
)

// DefaultThresholdDays is the lookback window used when none is configured.
const DefaultThresholdDays = 10

// Payment slot names for rental contracts, in order.
var paymentSlots = [4]string{"payment-1", "payment-2", "payment-3", "payment-4"}

// DaysUntil returns the number of calendar days from now to target. Both
// sides are normalized to local midnight, so the time-of-day component of
// either value never changes the result.
func DaysUntil(now, target time.Time) int {
	today := midnight(now)
	day := midnight(target)
	return int(math.Ceil(day.Sub(today).Hours() / 24))
}

// ShouldNotify reports whether an item daysUntil days out falls inside the
// notification window. Items due today (0) still notify; items overdue by
// even one day do not.
func ShouldNotify(daysUntil, thresholdDays int) bool {
	return daysUntil >= 0 && daysUntil <= thresholdDays
}

// CollectDueItems evaluates every dated field of every record and returns one
// event per (record, field) pair inside the window. The result is
// deterministic for a fixed now and input order: vehicles first (license then
// inspection), rentals next (contract end then payments), bills last.
func CollectDueItems(now time.Time, thresholdDays int, vehicles []domain.Vehicle, rentals []domain.RentalContract, bills []domain.ElectricityBill) []domain.NotificationEvent {
	if thresholdDays <= 0 {
		thresholdDays = DefaultThresholdDays
	}
	var events []domain.NotificationEvent

	for i := range vehicles {
		v := &vehicles[i]
		label := v.Name
		if v.PlateNumber != "" {
			label = fmt.Sprintf("%s (%s)", v.Name, v.PlateNumber)
		}
		if d, ok := dueIn(now, thresholdDays, v.LicenseExpiryDate); ok {
			events = append(events, domain.NotificationEvent{
				Category:       domain.CategoryVehicle,
				SubCategory:    "license",
				SourceRecordID: v.VehicleID,
				DaysUntil:      d,
				Title:          "Vehicle license expiring",
				Message:        fmt.Sprintf("License for %s expires %s.", label, dueText(d)),
			})
		}
		if d, ok := dueIn(now, thresholdDays, v.InspectionExpiryDate); ok {
			events = append(events, domain.NotificationEvent{
				Category:       domain.CategoryVehicle,
				SubCategory:    "inspection",
				SourceRecordID: v.VehicleID,
				DaysUntil:      d,
				Title:          "Vehicle inspection expiring",
				Message:        fmt.Sprintf("Inspection for %s expires %s.", label, dueText(d)),
			})
		}
	}

	for i := range rentals {
		r := &rentals[i]
		if d, ok := dueIn(now, thresholdDays, r.ContractEndingDate); ok {
			events = append(events, domain.NotificationEvent{
				Category:       domain.CategoryRental,
				SubCategory:    "contract",
				SourceRecordID: r.RentID,
				DaysUntil:      d,
				Title:          "Rental contract ending",
				Message:        fmt.Sprintf("Contract for %s (%s) ends %s.", r.Property, r.TenantName, dueText(d)),
			})
		}
		for slot, date := range r.PaymentDates() {
			if d, ok := dueIn(now, thresholdDays, date); ok {
				events = append(events, domain.NotificationEvent{
					Category:       domain.CategoryRental,
					SubCategory:    paymentSlots[slot],
					SourceRecordID: r.RentID,
					DaysUntil:      d,
					Title:          "Rental payment due",
					Message:        fmt.Sprintf("Payment %d for %s (%s) is due %s.", slot+1, r.Property, r.TenantName, dueText(d)),
				})
			}
		}
	}

	for i := range bills {
		b := &bills[i]
		if b.PaymentStatus == domain.PaymentStatusPaid {
			continue
		}
		if d, ok := dueIn(now, thresholdDays, b.DueDate); ok {
			events = append(events, domain.NotificationEvent{
				Category:       domain.CategoryElectricity,
				SubCategory:    "due-date",
				SourceRecordID: b.BillID,
				DaysUntil:      d,
				Title:          "Electricity bill due",
				Message:        fmt.Sprintf("Bill %s (%s) is due %s.", b.AccountNumber, b.Location, dueText(d)),
			})
		}
	}

	return events
}

// dueIn evaluates one optional date. Absent dates are never eligible.
func dueIn(now time.Time, thresholdDays int, date *time.Time) (int, bool) {
	if date == nil {
		return 0, false
	}
	d := DaysUntil(now, *date)
	return d, ShouldNotify(d, thresholdDays)
}

func dueText(days int) string {
	switch days {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %d days", days)
	}
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

package domain

import "time"

type RentalContract struct {
	RentID             string     `json:"id" dynamodbav:"rent_id"`
	TenantName         string     `json:"tenant_name" dynamodbav:"tenant_name"`
	Property           string     `json:"property" dynamodbav:"property"`
	MonthlyRent        float64    `json:"monthly_rent" dynamodbav:"monthly_rent"`
	ContractEndingDate *time.Time `json:"contract_ending_date" dynamodbav:"contract_ending_date"`
	FirstPaymentDate   *time.Time `json:"first_payment_date" dynamodbav:"first_payment_date"`
	SecondPaymentDate  *time.Time `json:"second_payment_date" dynamodbav:"second_payment_date"`
	ThirdPaymentDate   *time.Time `json:"third_payment_date" dynamodbav:"third_payment_date"`
	FourthPaymentDate  *time.Time `json:"fourth_payment_date" dynamodbav:"fourth_payment_date"`
	CreatedAt          time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt          time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// PaymentDates returns the up-to-four payment dates in order. Nil entries are
// kept so callers can report which payment slot is due.
func (r *RentalContract) PaymentDates() []*time.Time {
	return []*time.Time{r.FirstPaymentDate, r.SecondPaymentDate, r.ThirdPaymentDate, r.FourthPaymentDate}
}

type CreateRentalRequest struct {
	TenantName         string  `json:"tenant_name" validate:"required"`
	Property           string  `json:"property" validate:"required"`
	MonthlyRent        float64 `json:"monthly_rent"`
	ContractEndingDate *string `json:"contract_ending_date"` // expected format: YYYY-MM-DD
	FirstPaymentDate   *string `json:"first_payment_date"`
	SecondPaymentDate  *string `json:"second_payment_date"`
	ThirdPaymentDate   *string `json:"third_payment_date"`
	FourthPaymentDate  *string `json:"fourth_payment_date"`
}

type UpdateRentalRequest struct {
	TenantName         *string  `json:"tenant_name"`
	Property           *string  `json:"property"`
	MonthlyRent        *float64 `json:"monthly_rent"`
	ContractEndingDate *string  `json:"contract_ending_date"`
	FirstPaymentDate   *string  `json:"first_payment_date"`
	SecondPaymentDate  *string  `json:"second_payment_date"`
	ThirdPaymentDate   *string  `json:"third_payment_date"`
	FourthPaymentDate  *string  `json:"fourth_payment_date"`
}

package domain

import "time"

// Payment status values for electricity bills.
const (
	PaymentStatusPaid   = "Paid"
	PaymentStatusUnpaid = "Unpaid"
)

type ElectricityBill struct {
	BillID        string     `json:"id" dynamodbav:"bill_id"`
	AccountNumber string     `json:"account_number" dynamodbav:"account_number"`
	Location      string     `json:"location" dynamodbav:"location"`
	Amount        float64    `json:"amount" dynamodbav:"amount"`
	DueDate       *time.Time `json:"due_date" dynamodbav:"due_date"`
	PaymentStatus string     `json:"payment_status" dynamodbav:"payment_status"`
	CreatedAt     time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type CreateBillRequest struct {
	AccountNumber string  `json:"account_number" validate:"required"`
	Location      string  `json:"location"`
	Amount        float64 `json:"amount"`
	DueDate       *string `json:"due_date"` // expected format: YYYY-MM-DD
	PaymentStatus string  `json:"payment_status" validate:"omitempty,oneof=Paid Unpaid"`
}

type UpdateBillRequest struct {
	AccountNumber *string  `json:"account_number"`
	Location      *string  `json:"location"`
	Amount        *float64 `json:"amount"`
	DueDate       *string  `json:"due_date"`
	PaymentStatus *string  `json:"payment_status" validate:"omitempty,oneof=Paid Unpaid"`
}

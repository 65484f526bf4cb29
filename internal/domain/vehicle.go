package domain

import "time"

type Vehicle struct {
	VehicleID            string     `json:"id" dynamodbav:"vehicle_id"`
	Name                 string     `json:"name" dynamodbav:"name"`
	Model                string     `json:"model" dynamodbav:"model"`
	Owner                string     `json:"owner" dynamodbav:"owner"`
	PlateNumber          string     `json:"plate_number" dynamodbav:"plate_number"`
	SequenceNumber       string     `json:"sequence_number" dynamodbav:"sequence_number"`
	LicenseExpiryDate    *time.Time `json:"license_expiry_date" dynamodbav:"license_expiry_date"`
	InspectionExpiryDate *time.Time `json:"inspection_expiry_date" dynamodbav:"inspection_expiry_date"`

	InsuranceCompany      *string    `json:"insurance_company" dynamodbav:"insurance_company"`
	InsurancePolicyNumber *string    `json:"insurance_policy_number" dynamodbav:"insurance_policy_number"`
	InsuranceExpiryDate   *time.Time `json:"insurance_expiry_date" dynamodbav:"insurance_expiry_date"`
	InsuranceStatus       *string    `json:"insurance_status" dynamodbav:"insurance_status"`
	LastSyncDate          *time.Time `json:"last_sync_date" dynamodbav:"last_sync_date"`
	DataSource            string     `json:"data_source,omitempty" dynamodbav:"data_source"`

	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

// InsuranceInfo is the normalized result of one external insurance lookup.
// All derived fields are nil when the external API returns no match.
type InsuranceInfo struct {
	PlateNumber  string     `json:"plate_number"`
	Company      *string    `json:"insurance_company"`
	PolicyNumber *string    `json:"insurance_policy_number"`
	ExpiryDate   *time.Time `json:"insurance_expiry_date"`
	Status       *string    `json:"insurance_status"`
	LastSyncDate time.Time  `json:"last_sync_date"`
	DataSource   string     `json:"data_source"`
}

type CreateVehicleRequest struct {
	Name                 string  `json:"name" validate:"required"`
	Model                string  `json:"model"`
	Owner                string  `json:"owner"`
	PlateNumber          string  `json:"plate_number"`
	SequenceNumber       string  `json:"sequence_number"`
	LicenseExpiryDate    *string `json:"license_expiry_date"`    // expected format: YYYY-MM-DD
	InspectionExpiryDate *string `json:"inspection_expiry_date"` // expected format: YYYY-MM-DD
}

type UpdateVehicleRequest struct {
	Name                 *string `json:"name"`
	Model                *string `json:"model"`
	Owner                *string `json:"owner"`
	PlateNumber          *string `json:"plate_number"`
	SequenceNumber       *string `json:"sequence_number"`
	LicenseExpiryDate    *string `json:"license_expiry_date"`
	InspectionExpiryDate *string `json:"inspection_expiry_date"`
}

package domain

// Notification categories. Grouped category emails are sent in this order.
const (
	CategoryVehicle     = "vehicle"
	CategoryRental      = "rental"
	CategoryElectricity = "electricity"
)

// Categories lists all notification categories in enumeration order.
var Categories = []string{CategoryVehicle, CategoryRental, CategoryElectricity}

// NotificationEvent is one due item produced by an evaluation pass. Events
// are ephemeral: they are rebuilt from storage on every run and never
// persisted, so a second run on the same day produces the same events again.
type NotificationEvent struct {
	Category       string `json:"category"`
	SubCategory    string `json:"sub_category"`
	SourceRecordID string `json:"source_record_id"`
	DaysUntil      int    `json:"days_until"`
	Title          string `json:"title"`
	Message        string `json:"message"`
}

// DispatchReport aggregates one dispatch run. PushSent counts events that
// reached at least one subscriber; EmailSent counts category emails.
type DispatchReport struct {
	Total     int `json:"total"`
	Sent      int `json:"sent"`
	PushSent  int `json:"push_sent"`
	EmailSent int `json:"email_sent"`
}

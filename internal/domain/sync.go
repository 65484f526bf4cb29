package domain

// SyncError records one failed vehicle inside a sync run.
type SyncError struct {
	Identifier string `json:"identifier"`
	Message    string `json:"message"`
}

// SyncResult aggregates one full insurance sync run. A run always produces a
// result, even when every vehicle failed (visible as Failed == Total).
type SyncResult struct {
	Total      int         `json:"total"`
	Successful int         `json:"successful"`
	Failed     int         `json:"failed"`
	Errors     []SyncError `json:"errors"`
	Updated    []string    `json:"updated"`
}

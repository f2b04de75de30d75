package models

// SendResult is the normalized outcome of one gateway dispatch. The
// dispatcher is a thin relay: gateway errors pass through as text, they
// are never reinterpreted into retries.
type SendResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Status    string `json:"status,omitempty"`
	Error     string `json:"error,omitempty"`
}

// BulkDispatchResult is one recipient's outcome in a bulk send. Success
// reports the gateway call; Saved reports the follow-up write to the
// conversation log, so "delivered but not logged" stays distinguishable
// from "never sent".
type BulkDispatchResult struct {
	Phone   string `json:"phone"`
	Success bool   `json:"success"`
	Saved   bool   `json:"saved"`
	Error   string `json:"error,omitempty"`
}

// BulkReport carries exactly one result per requested recipient.
type BulkReport struct {
	Results    []BulkDispatchResult `json:"results"`
	Total      int                  `json:"total"`
	Successful int                  `json:"successful"`
	Failed     int                  `json:"failed"`
}

// ImportReport summarizes a contact import. Skipped counts duplicates;
// rows without a usable phone are dropped silently and appear in neither
// counter.
type ImportReport struct {
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Contacts []*Contact `json:"contacts"`
}

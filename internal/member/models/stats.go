package models

// RetentionCounts is a point-in-time snapshot of the member base by
// retention state, surfaced on the compliance dashboard.
type RetentionCounts struct {
	Total       int `json:"total"`
	Active      int `json:"active"`
	SoftDeleted int `json:"softDeleted"`
	Anonymized  int `json:"anonymized"`
}

// ConsentCounts is the distribution of consent flags across live members.
type ConsentCounts struct {
	Total             int `json:"total"`
	MarketingConsent  int `json:"marketingConsent"`
	ProcessingConsent int `json:"processingConsent"`
}

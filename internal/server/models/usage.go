package models

import "time"

// UsageRecord is one successful access, appended by the serving endpoint.
type UsageRecord struct {
	ID       string
	UserID   string
	Platform string
	URL      string
	Time     time.Time
}

// UsageSummary groups a user's records by platform.
type UsageSummary struct {
	UserID      string
	Total       int64
	PerPlatform map[string]int64
}

// Stats is a global snapshot reported to the owner.
type Stats struct {
	VerifiedUsers int64
	LiveTokens    int64
	TotalRequests int64
}

package usecase

import "time"

const (
	// DefaultPageLimit bounds list endpoints.
	DefaultPageLimit = 20
	// MaxPageLimit is the hard ceiling for list endpoints.
	MaxPageLimit = 100

	// AutoPostLookback is how far back the auto-poster looks for due
	// template occurrences that have not been posted yet.
	AutoPostLookback = 31 * 24 * time.Hour

	// UpcomingWindow is the horizon of the upcoming-payments listing.
	UpcomingWindow = 7 * 24 * time.Hour

	// CategorySummaryTTL caches the per-category aggregation briefly; the
	// summary is recomputed on the next window anyway.
	CategorySummaryTTL = 5 * time.Minute
)

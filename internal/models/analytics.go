package models

// DisputeAnalytics агрегаты по спорам.
type DisputeAnalytics struct {
	Total                 int                   `json:"total"`
	ByStatus              map[DisputeStatus]int `json:"by_status"`
	ByKind                map[DisputeKind]int   `json:"by_kind"`
	AverageResolutionDays float64               `json:"average_resolution_days"`
	ResolutionRate        float64               `json:"resolution_rate"`
}

// ReviewAnalytics агрегаты по отзывам.
type ReviewAnalytics struct {
	Total              int                  `json:"total"`
	AverageRating      float64              `json:"average_rating"`
	FlaggedCount       int                  `json:"flagged_count"`
	PendingCount       int                  `json:"pending_count"`
	ApprovalRate       float64              `json:"approval_rate"`
	RatingDistribution map[int]int          `json:"rating_distribution"`
	ByStatus           map[ReviewStatus]int `json:"by_status"`
}

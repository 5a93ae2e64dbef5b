package dto

// StatisticsResponse is the monthly dashboard summary.
type StatisticsResponse struct {
	TotalComplains     int64              `json:"total_complains"`
	ActiveComplains    int64              `json:"active_complains"`
	ResolvedComplains  int64              `json:"resolved_complains"`
	AvgResolutionTime  float64            `json:"avg_resolution_time"`
	StatusDistribution StatusDistribution `json:"status_distribution"`
}

// StatusDistribution counts complaints per status.
type StatusDistribution struct {
	Open       int64 `json:"open"`
	OnProgress int64 `json:"onprogres"`
	Resolved   int64 `json:"resolved"`
	Rejected   int64 `json:"rejected"`
}

package domain

import "time"

// Statistics summarizes complaints created within a period.
type Statistics struct {
	PeriodStart        time.Time
	PeriodEnd          time.Time
	Total              int64
	Active             int64
	Resolved           int64
	AvgResolutionHours float64
	StatusDistribution map[ComplaintStatus]int64
}

package service

import (
	"context"
	"math"
	"time"

	"github.com/ticketdesk/complain-service/internal/domain"
	"github.com/ticketdesk/complain-service/internal/repository"
	apperrors "github.com/ticketdesk/complain-service/pkg/util/errorutil"
)

// StatisticsService computes dashboard figures for the current month.
type StatisticsService struct {
	complaints repository.ComplaintRepository
	location   *time.Location
	now        func() time.Time
}

// NewStatisticsService builds the service. Month boundaries follow location.
func NewStatisticsService(complaints repository.ComplaintRepository, location *time.Location) *StatisticsService {
	if location == nil {
		location = time.UTC
	}
	return &StatisticsService{complaints: complaints, location: location, now: time.Now}
}

// GetStatistics aggregates complaints created this calendar month.
func (s *StatisticsService) GetStatistics(ctx context.Context) (*domain.Statistics, error) {
	from, to := monthBounds(s.now(), s.location)

	stats, err := s.complaints.Statistics(ctx, from, to)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	stats.AvgResolutionHours = math.Round(stats.AvgResolutionHours*10) / 10
	return stats, nil
}

// monthBounds returns the first and last instant of the month containing t.
func monthBounds(t time.Time, location *time.Location) (time.Time, time.Time) {
	local := t.In(location)
	start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, location)
	end := start.AddDate(0, 1, 0).Add(-time.Microsecond)
	return start, end
}

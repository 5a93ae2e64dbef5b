package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ticketdesk/complain-service/internal/api/dto"
	"github.com/ticketdesk/complain-service/internal/domain"
)

// DashboardHandler serves aggregate figures.
type DashboardHandler struct {
	stats StatisticsService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(stats StatisticsService) *DashboardHandler {
	return &DashboardHandler{stats: stats}
}

// Statistics GET /dashboard/statistics.
func (h *DashboardHandler) Statistics(c *fiber.Ctx) error {
	stats, err := h.stats.GetStatistics(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.Envelope{Message: "Statistics retrieved", Data: dto.StatisticsResponse{
		TotalComplains:    stats.Total,
		ActiveComplains:   stats.Active,
		ResolvedComplains: stats.Resolved,
		AvgResolutionTime: stats.AvgResolutionHours,
		StatusDistribution: dto.StatusDistribution{
			Open:       stats.StatusDistribution[domain.ComplaintStatusOpen],
			OnProgress: stats.StatusDistribution[domain.ComplaintStatusOnProgress],
			Resolved:   stats.StatusDistribution[domain.ComplaintStatusResolved],
			Rejected:   stats.StatusDistribution[domain.ComplaintStatusRejected],
		},
	}})
}

package api

import (
	"context"
	"errors"

	"github.com/maintdesk/maintdesk/internal/metrics"
)

// DashboardStatistics returns the combined dashboard summary. Backends
// without the endpoint get the summary composed client-side from the
// individual resources; any other failure is returned as-is.
func (c *Client) DashboardStatistics(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	err := c.get(ctx, "/api/dashboard/stats/", &stats)
	if err == nil {
		return &stats, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	c.log.V(1).Info("dashboard statistics endpoint missing, composing from resources")
	metrics.RecordStatsFallback("dashboard")

	reqStats, err := c.RequestStatistics(ctx)
	if err != nil {
		return nil, err
	}
	equipment, err := c.ListEquipment(ctx, EquipmentFilters{})
	if err != nil {
		return nil, err
	}
	users, err := c.ListUsers(ctx, UserFilters{})
	if err != nil {
		return nil, err
	}
	technicians, err := c.ListTechnicians(ctx, TechnicianFilters{})
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		TotalRequests:      reqStats.TotalRequests,
		PendingRequests:    reqStats.PendingRequests,
		InProgressRequests: reqStats.InProgressRequests,
		CompletedRequests:  reqStats.CompletedRequests,
		TotalEquipment:     len(equipment),
		TotalUsers:         len(users),
		TotalTechnicians:   len(technicians),
	}, nil
}

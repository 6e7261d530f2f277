package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
)

func runDashboard(ctx context.Context, a *app, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("usage: maintdesk dashboard")
	}

	stats, err := a.client.DashboardStatistics(ctx)
	if err != nil {
		return err
	}
	if a.cfg.jsonOutput {
		return PrintJSON(os.Stdout, stats)
	}

	headers := []string{"METRIC", "COUNT"}
	rows := [][]string{
		{"requests_total", strconv.Itoa(stats.TotalRequests)},
		{"requests_pending", strconv.Itoa(stats.PendingRequests)},
		{"requests_in_progress", strconv.Itoa(stats.InProgressRequests)},
		{"requests_completed", strconv.Itoa(stats.CompletedRequests)},
		{"equipment", strconv.Itoa(stats.TotalEquipment)},
		{"users", strconv.Itoa(stats.TotalUsers)},
		{"technicians", strconv.Itoa(stats.TotalTechnicians)},
	}
	RenderTable(os.Stdout, headers, rows)
	return nil
}

package api

import (
	"context"
	"net/http"
	"testing"
)

func TestDashboardStatisticsFromEndpoint(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/dashboard/stats/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		respondJSON(w, http.StatusOK, `{"total_requests":10,"total_equipment":4,"total_users":6}`)
	})

	stats, err := client.DashboardStatistics(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalRequests != 10 || stats.TotalEquipment != 4 || stats.TotalUsers != 6 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestDashboardStatisticsComposedFallback(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/dashboard/stats/":
			respondJSON(w, http.StatusNotFound, `{"detail":"not found"}`)
		case "/api/maintenance-requests/statistics/":
			respondJSON(w, http.StatusOK, `{"total_requests":5,"pending_requests":2,"in_progress_requests":1,"completed_requests":2}`)
		case "/api/equipment/":
			respondJSON(w, http.StatusOK, `[{"id":1},{"id":2},{"id":3}]`)
		case "/api/users/":
			respondJSON(w, http.StatusOK, `{"count":4,"results":[{"id":1},{"id":2},{"id":3},{"id":4}]}`)
		case "/api/technicians/":
			respondJSON(w, http.StatusOK, `[{"id":1}]`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	stats, err := client.DashboardStatistics(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := DashboardStats{
		TotalRequests:      5,
		PendingRequests:    2,
		InProgressRequests: 1,
		CompletedRequests:  2,
		TotalEquipment:     3,
		TotalUsers:         4,
		TotalTechnicians:   1,
	}
	if *stats != want {
		t.Errorf("stats = %+v, want %+v", *stats, want)
	}
}

func TestDashboardStatisticsFallbackPropagatesFailures(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/dashboard/stats/":
			respondJSON(w, http.StatusNotFound, `{"detail":"not found"}`)
		default:
			respondJSON(w, http.StatusForbidden, `{"detail":"nope"}`)
		}
	})

	if _, err := client.DashboardStatistics(context.Background()); err == nil {
		t.Fatal("a failing component fetch must surface, not be masked")
	}
}

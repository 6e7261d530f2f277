package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/maintdesk/maintdesk/internal/metrics"
)

// RequestFilters narrows ListRequests. Zero values are omitted from the query
// string; MyRequests asks the backend to scope the list to the caller.
type RequestFilters struct {
	Status     RequestStatus
	Priority   Priority
	Equipment  int64
	Technician int64
	MyRequests bool
	Search     string
	DateFrom   string
	DateTo     string
}

func (f RequestFilters) query() string {
	params := map[string]string{
		"status":    string(f.Status),
		"priority":  string(f.Priority),
		"search":    f.Search,
		"date_from": f.DateFrom,
		"date_to":   f.DateTo,
	}
	if f.Equipment > 0 {
		params["equipment"] = strconv.FormatInt(f.Equipment, 10)
	}
	if f.Technician > 0 {
		params["technician"] = strconv.FormatInt(f.Technician, 10)
	}
	if f.MyRequests {
		params["my_requests"] = "true"
	}
	return encodeQuery(params)
}

// RequestPayload is the create/update form for maintenance requests.
type RequestPayload struct {
	Equipment          int64    `json:"equipment"`
	ProblemDescription string   `json:"problem_description"`
	Priority           Priority `json:"priority,omitempty"`
}

// ListRequests returns maintenance requests matching the filters.
func (c *Client) ListRequests(ctx context.Context, f RequestFilters) ([]MaintenanceRequest, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/maintenance-requests/"+f.query(), &raw); err != nil {
		return nil, err
	}
	return decodeList[MaintenanceRequest](raw)
}

// GetRequest fetches one maintenance request by id.
func (c *Client) GetRequest(ctx context.Context, id int64) (*MaintenanceRequest, error) {
	var r MaintenanceRequest
	if err := c.get(ctx, fmt.Sprintf("/api/maintenance-requests/%d/", id), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRequest files a new maintenance request.
func (c *Client) CreateRequest(ctx context.Context, payload RequestPayload) (*MaintenanceRequest, error) {
	var r MaintenanceRequest
	if err := c.post(ctx, "/api/maintenance-requests/", payload, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRequestWithImage files a new maintenance request with a photo of the
// problem attached.
func (c *Client) CreateRequestWithImage(ctx context.Context, payload RequestPayload, filename string, image io.Reader) (*MaintenanceRequest, error) {
	fields := map[string]string{
		"equipment":           strconv.FormatInt(payload.Equipment, 10),
		"problem_description": payload.ProblemDescription,
		"priority":            string(payload.Priority),
	}
	var r MaintenanceRequest
	if err := c.PostMultipart(ctx, "/api/maintenance-requests/", fields, "image", filename, image, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateRequest partially updates a maintenance request.
func (c *Client) UpdateRequest(ctx context.Context, id int64, payload RequestPayload) (*MaintenanceRequest, error) {
	var r MaintenanceRequest
	if err := c.patch(ctx, fmt.Sprintf("/api/maintenance-requests/%d/", id), payload, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// DeleteRequest removes a maintenance request.
func (c *Client) DeleteRequest(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/maintenance-requests/%d/", id))
}

// UpdateRequestStatus moves a request through its lifecycle. comment is
// optional; the backend records it alongside the transition.
func (c *Client) UpdateRequestStatus(ctx context.Context, id int64, status RequestStatus, comment string) (*MaintenanceRequest, error) {
	body := map[string]string{"status": string(status)}
	if comment != "" {
		body["comment"] = comment
	}
	var r MaintenanceRequest
	if err := c.post(ctx, fmt.Sprintf("/api/maintenance-requests/%d/update_status/", id), body, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// AssignTechnician assigns a pending request to a technician.
func (c *Client) AssignTechnician(ctx context.Context, id, technicianID int64, comment string) (*MaintenanceRequest, error) {
	body := map[string]any{"technician_id": technicianID}
	if comment != "" {
		body["comment"] = comment
	}
	var r MaintenanceRequest
	if err := c.post(ctx, fmt.Sprintf("/api/maintenance-requests/%d/assign_technician/", id), body, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// UrgentRequests lists the open high/urgent-priority requests the dashboard
// surfaces.
func (c *Client) UrgentRequests(ctx context.Context) ([]MaintenanceRequest, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/maintenance-requests/urgent/", &raw); err != nil {
		return nil, err
	}
	return decodeList[MaintenanceRequest](raw)
}

// RequestStatistics returns the maintenance-request summary. Backends without
// the statistics endpoint get a client-side recount from the full list; any
// other failure is returned as-is.
func (c *Client) RequestStatistics(ctx context.Context) (*RequestStats, error) {
	var stats RequestStats
	err := c.get(ctx, "/api/maintenance-requests/statistics/", &stats)
	if err == nil {
		return &stats, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	c.log.V(1).Info("request statistics endpoint missing, recomputing from list")
	metrics.RecordStatsFallback("maintenance-requests")

	reqs, err := c.ListRequests(ctx, RequestFilters{})
	if err != nil {
		return nil, err
	}
	return summarizeRequests(reqs), nil
}

func summarizeRequests(reqs []MaintenanceRequest) *RequestStats {
	s := &RequestStats{TotalRequests: len(reqs)}
	for _, r := range reqs {
		switch r.Status {
		case StatusPending:
			s.PendingRequests++
		case StatusAssigned:
			s.AssignedRequests++
		case StatusInProgress:
			s.InProgressRequests++
		case StatusCompleted:
			s.CompletedRequests++
		case StatusCancelled:
			s.CancelledRequests++
		}
		if r.Priority == PriorityHigh || r.Priority == PriorityUrgent {
			s.HighPriorityRequests++
		}
	}
	return s
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/maintdesk/maintdesk/internal/metrics"
)

// EquipmentFilters narrows ListEquipment. Zero values are omitted from the
// query string.
type EquipmentFilters struct {
	Status     EquipmentStatus
	Department string
	Search     string
}

func (f EquipmentFilters) query() string {
	return encodeQuery(map[string]string{
		"status":     string(f.Status),
		"department": f.Department,
		"search":     f.Search,
	})
}

// EquipmentPayload is the create/update form for equipment.
type EquipmentPayload struct {
	EquipmentCode string          `json:"equipment_code"`
	Name          string          `json:"name"`
	Department    string          `json:"department"`
	Location      string          `json:"location"`
	Status        EquipmentStatus `json:"status,omitempty"`
	PurchaseDate  string          `json:"purchase_date,omitempty"`
	Description   string          `json:"description,omitempty"`
}

// ListEquipment returns equipment matching the filters.
func (c *Client) ListEquipment(ctx context.Context, f EquipmentFilters) ([]Equipment, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/equipment/"+f.query(), &raw); err != nil {
		return nil, err
	}
	return decodeList[Equipment](raw)
}

// GetEquipment fetches one piece of equipment by id.
func (c *Client) GetEquipment(ctx context.Context, id int64) (*Equipment, error) {
	var eq Equipment
	if err := c.get(ctx, fmt.Sprintf("/api/equipment/%d/", id), &eq); err != nil {
		return nil, err
	}
	return &eq, nil
}

// CreateEquipment registers a new piece of equipment.
func (c *Client) CreateEquipment(ctx context.Context, payload EquipmentPayload) (*Equipment, error) {
	var eq Equipment
	if err := c.post(ctx, "/api/equipment/", payload, &eq); err != nil {
		return nil, err
	}
	return &eq, nil
}

// UpdateEquipment replaces an equipment record.
func (c *Client) UpdateEquipment(ctx context.Context, id int64, payload EquipmentPayload) (*Equipment, error) {
	var eq Equipment
	if err := c.put(ctx, fmt.Sprintf("/api/equipment/%d/", id), payload, &eq); err != nil {
		return nil, err
	}
	return &eq, nil
}

// DeleteEquipment removes an equipment record.
func (c *Client) DeleteEquipment(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/equipment/%d/", id))
}

// EquipmentMaintenanceHistory lists every maintenance request ever filed
// against one piece of equipment.
func (c *Client) EquipmentMaintenanceHistory(ctx context.Context, id int64) ([]MaintenanceRequest, error) {
	var raw json.RawMessage
	if err := c.get(ctx, fmt.Sprintf("/api/equipment/%d/maintenance_history/", id), &raw); err != nil {
		return nil, err
	}
	return decodeList[MaintenanceRequest](raw)
}

// EquipmentStatistics returns the equipment summary. Backends without the
// statistics endpoint get a client-side recount from the full list; any other
// failure is returned as-is.
func (c *Client) EquipmentStatistics(ctx context.Context) (*EquipmentStats, error) {
	var stats EquipmentStats
	err := c.get(ctx, "/api/equipment/statistics/", &stats)
	if err == nil {
		return &stats, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	c.log.V(1).Info("equipment statistics endpoint missing, recomputing from list")
	metrics.RecordStatsFallback("equipment")

	items, err := c.ListEquipment(ctx, EquipmentFilters{})
	if err != nil {
		return nil, err
	}
	return summarizeEquipment(items), nil
}

func summarizeEquipment(items []Equipment) *EquipmentStats {
	s := &EquipmentStats{TotalEquipment: len(items)}
	for _, eq := range items {
		switch eq.Status {
		case EquipmentActive:
			s.Active++
		case EquipmentUnderRepair:
			s.UnderRepair++
		case EquipmentOutOfService:
			s.OutOfService++
		}
	}
	return s
}

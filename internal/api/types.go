package api

import "time"

// RequestStatus is the backend's maintenance-request lifecycle enum.
// Values are wire-exact; the backend rejects anything else.
type RequestStatus string

const (
	StatusPending    RequestStatus = "PENDING"
	StatusAssigned   RequestStatus = "ASSIGNED"
	StatusInProgress RequestStatus = "IN_PROGRESS"
	StatusCompleted  RequestStatus = "COMPLETED"
	StatusCancelled  RequestStatus = "CANCELLED"
)

// RequestStatuses lists every status the backend defines, in lifecycle order.
func RequestStatuses() []RequestStatus {
	return []RequestStatus{
		StatusPending,
		StatusAssigned,
		StatusInProgress,
		StatusCompleted,
		StatusCancelled,
	}
}

// Priority is the backend's request-priority enum.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// EquipmentStatus is the backend's equipment condition enum.
type EquipmentStatus string

const (
	EquipmentActive       EquipmentStatus = "ACTIVE"
	EquipmentUnderRepair  EquipmentStatus = "UNDER_REPAIR"
	EquipmentOutOfService EquipmentStatus = "OUT_OF_SERVICE"
)

// Equipment is a piece of registered equipment.
type Equipment struct {
	ID            int64           `json:"id"`
	EquipmentCode string          `json:"equipment_code"`
	Name          string          `json:"name"`
	Department    string          `json:"department"`
	Location      string          `json:"location"`
	Status        EquipmentStatus `json:"status"`
	PurchaseDate  string          `json:"purchase_date,omitempty"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// MaintenanceRequest is a repair ticket. AssignedTechnician is zero when
// the request has not been assigned yet.
type MaintenanceRequest struct {
	ID                 int64         `json:"id"`
	RequestCode        string        `json:"request_code"`
	Requester          int64         `json:"requester"`
	RequesterName      string        `json:"requester_name,omitempty"`
	Equipment          int64         `json:"equipment"`
	EquipmentName      string        `json:"equipment_name,omitempty"`
	ProblemDescription string        `json:"problem_description"`
	Priority           Priority      `json:"priority"`
	Status             RequestStatus `json:"status"`
	AssignedTechnician int64         `json:"assigned_technician,omitempty"`
	TechnicianName     string        `json:"technician_name,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
	CompletedAt        *time.Time    `json:"completed_at,omitempty"`
}

// User is the backend's account record.
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Role        string `json:"role"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

// Technician is a user with a technician profile attached.
type Technician struct {
	ID          int64  `json:"id"`
	User        User   `json:"user"`
	EmployeeID  string `json:"employee_id"`
	Expertise   string `json:"expertise"`
	Phone       string `json:"phone"`
	IsAvailable bool   `json:"is_available"`
}

// TokenPair is the login response. User is optional — older backend builds
// only return the token pair, in which case identity is recovered from the
// access token's claims.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    *User  `json:"user,omitempty"`
}

// RequestStats is the server-computed maintenance-request summary.
// AverageCompletionTime is only available server-side; the client-side
// fallback leaves it at zero.
type RequestStats struct {
	TotalRequests         int     `json:"total_requests"`
	PendingRequests       int     `json:"pending_requests"`
	AssignedRequests      int     `json:"assigned_requests"`
	InProgressRequests    int     `json:"in_progress_requests"`
	CompletedRequests     int     `json:"completed_requests"`
	CancelledRequests     int     `json:"cancelled_requests"`
	HighPriorityRequests  int     `json:"high_priority_requests"`
	AverageCompletionTime float64 `json:"average_completion_time"`
}

// EquipmentStats is the server-computed equipment summary.
type EquipmentStats struct {
	TotalEquipment int `json:"total_equipment"`
	Active         int `json:"active"`
	UnderRepair    int `json:"under_repair"`
	OutOfService   int `json:"out_of_service"`
}

// DashboardStats is the combined summary behind the dashboard view.
type DashboardStats struct {
	TotalRequests      int `json:"total_requests"`
	PendingRequests    int `json:"pending_requests"`
	InProgressRequests int `json:"in_progress_requests"`
	CompletedRequests  int `json:"completed_requests"`
	TotalEquipment     int `json:"total_equipment"`
	TotalUsers         int `json:"total_users"`
	TotalTechnicians   int `json:"total_technicians"`
}

// page is the DRF pagination envelope. Some list views return a bare array
// instead; decodeList handles both.
type page[T any] struct {
	Count    int    `json:"count"`
	Next     string `json:"next"`
	Previous string `json:"previous"`
	Results  []T    `json:"results"`
}

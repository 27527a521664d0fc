package domain

import "time"

// MaintenancePriority ranks how urgent a maintenance request is.
type MaintenancePriority string

const (
	PriorityLow    MaintenancePriority = "low"
	PriorityMedium MaintenancePriority = "medium"
	PriorityHigh   MaintenancePriority = "high"
	PriorityUrgent MaintenancePriority = "urgent"
)

// Valid reports whether the priority is a known level.
func (p MaintenancePriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// MaintenanceStatus describes the lifecycle state of a maintenance request.
type MaintenanceStatus string

const (
	MaintenancePending    MaintenanceStatus = "pending"
	MaintenanceInProgress MaintenanceStatus = "in-progress"
	MaintenanceResolved   MaintenanceStatus = "resolved"
	MaintenanceRejected   MaintenanceStatus = "rejected"
)

// Valid reports whether the status is a known maintenance state.
func (s MaintenanceStatus) Valid() bool {
	switch s {
	case MaintenancePending, MaintenanceInProgress, MaintenanceResolved, MaintenanceRejected:
		return true
	}
	return false
}

var maintenanceTransitions = map[MaintenanceStatus][]MaintenanceStatus{
	MaintenancePending:    {MaintenanceInProgress, MaintenanceRejected},
	MaintenanceInProgress: {MaintenanceResolved},
}

// CanTransition reports whether a request may move from one status to another.
func (s MaintenanceStatus) CanTransition(to MaintenanceStatus) bool {
	if s == to {
		return true
	}
	for _, next := range maintenanceTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// MaintenanceRequest is a user-filed issue report.
type MaintenanceRequest struct {
	ID          string              `json:"id"` // UUID
	UserID      string              `json:"userId"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Location    string              `json:"location"`
	Priority    MaintenancePriority `json:"priority"`
	Status      MaintenanceStatus   `json:"status"`
	AssignedTo  string              `json:"assignedTo,omitempty"` // user ID, empty when unassigned
	Images      []string            `json:"images"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// MaintenanceRepository defines data access for maintenance requests
type MaintenanceRepository interface {
	Create(req *MaintenanceRequest) error
	GetByID(id string) (*MaintenanceRequest, error)
	Update(req *MaintenanceRequest) error
	Delete(id string) error
	ListByUser(userID string) ([]*MaintenanceRequest, error)
	List() ([]*MaintenanceRequest, error)
}

package models

import "time"

// Lifecycle actions recorded in the activity log.
const (
	ActionRequested = "requested"
	ActionApproved  = "approved"
	ActionRejected  = "rejected"
	ActionReturned  = "returned"
	ActionCancelled = "cancelled"
)

// ActivityLog is an audit row appended by every lifecycle transition, in the
// same transaction as the transition itself.
type ActivityLog struct {
	ID        string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ToolID    string    `gorm:"type:uuid;index;not null" json:"toolId"`
	RequestID *string   `gorm:"type:uuid" json:"requestId,omitempty"`
	ActorID   string    `gorm:"type:uuid;not null" json:"actorId"`
	Action    string    `gorm:"size:20;not null" json:"action"`
	CreatedAt time.Time `json:"createdAt"`
}

func (ActivityLog) TableName() string { return "tool_activity" }

package models

import "time"

// Request status values. pending → approved → returned is the happy path;
// pending → rejected is terminal; a pending request can also be cancelled,
// which removes the row entirely.
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
	RequestReturned = "returned"
)

type ToolRequest struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	ToolID      string `gorm:"type:uuid;index;not null" json:"toolId"`
	RequesterID string `gorm:"type:uuid;index;not null" json:"requesterId"`
	Status      string `gorm:"size:20;not null;default:'pending'" json:"status"`

	DueDate    *time.Time `json:"dueDate,omitempty"`
	ReturnDate *time.Time `json:"returnDate,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Requester *User `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Tool      *Tool `gorm:"foreignKey:ToolID" json:"tool,omitempty"`
}

func (ToolRequest) TableName() string { return RequestTable }

// Active reports whether the request still blocks a new one from the same
// requester (and, when approved, blocks approval of siblings).
func (tr *ToolRequest) Active() bool {
	return tr.Status == RequestPending || tr.Status == RequestApproved
}

package models

import "time"

const ToolTable = "tools"
const RequestTable = "tool_requests"

// Tool lifecycle display status. The stored column is recomputed from the
// tool's active requests inside every transition transaction, so reads can
// trust it; DeriveStatus in the lifecycle package is the single rule.
const (
	ToolAvailable  = "available"
	ToolRequested  = "requested"
	ToolCheckedOut = "checked_out"
)

// Categories match the original listing form.
var ToolCategories = []string{
	"Kids", "Music", "Electronics", "Exercise", "Emergency", "Household",
	"Gardening", "Tools", "Kitchen", "Other", "Games", "Outdoors",
}

func ValidCategory(c string) bool {
	for _, v := range ToolCategories {
		if v == c {
			return true
		}
	}
	return false
}

type Tool struct {
	ID          string  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string  `gorm:"size:200;not null" json:"name"`
	Description *string `gorm:"type:text" json:"description,omitempty"`
	ImageURL    *string `gorm:"size:500" json:"imageUrl,omitempty"`
	OwnerID     string  `gorm:"type:uuid;index;not null" json:"ownerId"`
	Status      string  `gorm:"size:20;not null;default:'available'" json:"status"`
	Brand       *string `gorm:"size:100" json:"brand,omitempty"`
	Model       *string `gorm:"size:100" json:"model,omitempty"`
	Condition   *string `gorm:"size:50" json:"condition,omitempty"`
	Category    string  `gorm:"size:50;not null;default:'Other'" json:"category"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Owner    *User         `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Requests []ToolRequest `gorm:"foreignKey:ToolID" json:"-"`
}

func (Tool) TableName() string { return ToolTable }

package db

import (
	"context"
	"strings"

	"toolshed/lifecycle"
	"toolshed/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Tools

func (r *Repo) CreateTool(ctx context.Context, t *models.Tool) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

// FindToolByID 带上主人档案，详情页直接用
func (r *Repo) FindToolByID(ctx context.Context, id string) (*models.Tool, error) {
	var t models.Tool
	err := r.DB.WithContext(ctx).
		Preload("Owner").
		First(&t, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// ToolsQuery mirrors the browse filters of the listing page.
type ToolsQuery struct {
	Q        string
	Category string
	Status   string
	OwnerID  string
}

func (r *Repo) ListTools(ctx context.Context, q ToolsQuery) ([]models.Tool, error) {
	tx := r.DB.WithContext(ctx).Model(&models.Tool{}).Preload("Owner")
	if s := strings.TrimSpace(q.Q); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.OwnerID != "" {
		tx = tx.Where("owner_id = ?", q.OwnerID)
	}

	var tools []models.Tool
	err := tx.Order("created_at DESC").Find(&tools).Error
	return tools, err
}

// ToolUpdate carries the owner-editable fields.
type ToolUpdate struct {
	Name        *string
	Description *string
	ImageURL    *string
	Brand       *string
	Model       *string
	Condition   *string
	Category    *string
}

// UpdateTool 仅限所有人；所有权在事务里按 ID 比对
func (r *Repo) UpdateTool(ctx context.Context, toolID, ownerID string, in ToolUpdate) (*models.Tool, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t models.Tool
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&t, "id = ?", toolID).Error; err != nil {
			return translate(err)
		}
		if t.OwnerID != ownerID {
			return lifecycle.ErrNotOwner
		}

		updates := map[string]interface{}{}
		if in.Name != nil {
			updates["name"] = *in.Name
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.ImageURL != nil {
			updates["image_url"] = *in.ImageURL
		}
		if in.Brand != nil {
			updates["brand"] = *in.Brand
		}
		if in.Model != nil {
			updates["model"] = *in.Model
		}
		if in.Condition != nil {
			updates["condition"] = *in.Condition
		}
		if in.Category != nil {
			updates["category"] = *in.Category
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&models.Tool{}).Where("id = ?", toolID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return r.FindToolByID(ctx, toolID)
}

// DeleteTool removes a tool plus its historical requests and activity in one
// transaction. Refused while any request is still active; an approved
// borrower must never lose the record of what they hold.
func (r *Repo) DeleteTool(ctx context.Context, toolID, ownerID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t models.Tool
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&t, "id = ?", toolID).Error; err != nil {
			return translate(err)
		}
		if t.OwnerID != ownerID {
			return lifecycle.ErrNotOwner
		}

		var requests []models.ToolRequest
		if err := tx.Where("tool_id = ?", toolID).Find(&requests).Error; err != nil {
			return err
		}
		if err := lifecycle.CheckDelete(requests); err != nil {
			return err
		}

		if err := tx.Where("tool_id = ?", toolID).Delete(&models.ToolRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tool_id = ?", toolID).Delete(&models.ActivityLog{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Tool{ID: toolID}).Error
	})
}

// ListToolActivity 仅所有人可看
func (r *Repo) ListToolActivity(ctx context.Context, toolID string) ([]models.ActivityLog, error) {
	var logs []models.ActivityLog
	err := r.DB.WithContext(ctx).
		Where("tool_id = ?", toolID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}

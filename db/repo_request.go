package db

import (
	"context"
	"time"

	"toolshed/lifecycle"
	"toolshed/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Every lifecycle transition follows the same shape: lock the tool row, load
// its request set, apply the lifecycle rules, persist, recompute the stored
// status column from what remains, and append an activity row, all in one
// transaction. The request row is always re-read after the lock is held; a
// pre-lock read can be a stale snapshot while another transition on the same
// tool commits first. The partial unique indexes back the same invariants at
// the storage level.

func (r *Repo) lockTool(tx *gorm.DB, toolID string) (*models.Tool, error) {
	var t models.Tool
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&t, "id = ?", toolID).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func loadRequests(tx *gorm.DB, toolID string) ([]models.ToolRequest, error) {
	var requests []models.ToolRequest
	err := tx.Where("tool_id = ?", toolID).Find(&requests).Error
	return requests, err
}

func syncToolStatus(tx *gorm.DB, toolID string) error {
	requests, err := loadRequests(tx, toolID)
	if err != nil {
		return err
	}
	return tx.Model(&models.Tool{}).
		Where("id = ?", toolID).
		Update("status", lifecycle.DeriveStatus(requests)).Error
}

func logActivity(tx *gorm.DB, toolID string, requestID *string, actorID, action string) error {
	return tx.Create(&models.ActivityLog{
		ToolID:    toolID,
		RequestID: requestID,
		ActorID:   actorID,
		Action:    action,
	}).Error
}

// CreateRequest 发起借用申请：锁工具 → 校验 → 建 pending 行 → 刷状态
func (r *Repo) CreateRequest(ctx context.Context, toolID, requesterID string) (*models.ToolRequest, error) {
	var created *models.ToolRequest
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := r.lockTool(tx, toolID)
		if err != nil {
			return err
		}
		requests, err := loadRequests(tx, toolID)
		if err != nil {
			return err
		}
		if err := lifecycle.CheckRequest(t, requests, requesterID); err != nil {
			return err
		}

		req := lifecycle.NewRequest(uuid.NewString(), t, requesterID)
		if err := tx.Create(req).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Tool{}).
			Where("id = ?", t.ID).
			Update("status", models.ToolRequested).Error; err != nil {
			return err
		}
		if err := logActivity(tx, t.ID, &req.ID, requesterID, models.ActionRequested); err != nil {
			return err
		}
		created = req
		return nil
	})
	return created, err
}

// FindRequestByID 无锁单查，读路径用
func (r *Repo) FindRequestByID(ctx context.Context, requestID string) (*models.ToolRequest, error) {
	return r.findRequest(r.DB.WithContext(ctx), requestID)
}

func (r *Repo) findRequest(tx *gorm.DB, requestID string) (*models.ToolRequest, error) {
	var req models.ToolRequest
	if err := tx.First(&req, "id = ?", requestID).Error; err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

// ApproveRequest sets the request approved with due date now+7d. actorID must
// own the tool; approval is refused while another approved request holds it.
func (r *Repo) ApproveRequest(ctx context.Context, requestID, actorID string) (*models.ToolRequest, error) {
	var approved *models.ToolRequest
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 拿锁前这行只用来定位工具，校验要用锁内重读的行
		ref, err := r.findRequest(tx, requestID)
		if err != nil {
			return err
		}
		t, err := r.lockTool(tx, ref.ToolID)
		if err != nil {
			return err
		}
		if t.OwnerID != actorID {
			return lifecycle.ErrNotOwner
		}
		requests, err := loadRequests(tx, t.ID)
		if err != nil {
			return err
		}
		req := lifecycle.RequestByID(requests, requestID)
		if req == nil {
			return ErrNotFound // 等锁期间被取消
		}
		if err := lifecycle.Approve(req, requests, time.Now().UTC()); err != nil {
			return err
		}
		if err := tx.Save(req).Error; err != nil {
			return err
		}
		if err := syncToolStatus(tx, t.ID); err != nil {
			return err
		}
		if err := logActivity(tx, t.ID, &req.ID, actorID, models.ActionApproved); err != nil {
			return err
		}
		approved = req
		return nil
	})
	return approved, err
}

// RejectRequest: pending → rejected，终态
func (r *Repo) RejectRequest(ctx context.Context, requestID, actorID string) (*models.ToolRequest, error) {
	var rejected *models.ToolRequest
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ref, err := r.findRequest(tx, requestID)
		if err != nil {
			return err
		}
		t, err := r.lockTool(tx, ref.ToolID)
		if err != nil {
			return err
		}
		if t.OwnerID != actorID {
			return lifecycle.ErrNotOwner
		}
		requests, err := loadRequests(tx, t.ID)
		if err != nil {
			return err
		}
		req := lifecycle.RequestByID(requests, requestID)
		if req == nil {
			return ErrNotFound
		}
		if err := lifecycle.Reject(req); err != nil {
			return err
		}
		if err := tx.Save(req).Error; err != nil {
			return err
		}
		if err := syncToolStatus(tx, t.ID); err != nil {
			return err
		}
		if err := logActivity(tx, t.ID, &req.ID, actorID, models.ActionRejected); err != nil {
			return err
		}
		rejected = req
		return nil
	})
	return rejected, err
}

// ReturnRequest: approved → returned, return_date = now.
func (r *Repo) ReturnRequest(ctx context.Context, requestID, actorID string) (*models.ToolRequest, error) {
	var returned *models.ToolRequest
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ref, err := r.findRequest(tx, requestID)
		if err != nil {
			return err
		}
		t, err := r.lockTool(tx, ref.ToolID)
		if err != nil {
			return err
		}
		if t.OwnerID != actorID {
			return lifecycle.ErrNotOwner
		}
		requests, err := loadRequests(tx, t.ID)
		if err != nil {
			return err
		}
		req := lifecycle.RequestByID(requests, requestID)
		if req == nil {
			return ErrNotFound
		}
		if err := lifecycle.Return(req, time.Now().UTC()); err != nil {
			return err
		}
		if err := tx.Save(req).Error; err != nil {
			return err
		}
		if err := syncToolStatus(tx, t.ID); err != nil {
			return err
		}
		if err := logActivity(tx, t.ID, &req.ID, actorID, models.ActionReturned); err != nil {
			return err
		}
		returned = req
		return nil
	})
	return returned, err
}

// CancelRequest deletes a still-pending request; only the requester may do
// it. The status recompute happens after the delete in the same transaction,
// so cancelling the sole pending request frees the tool and cancelling one of
// several leaves it requested.
func (r *Repo) CancelRequest(ctx context.Context, requestID, actorID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ref, err := r.findRequest(tx, requestID)
		if err != nil {
			return err
		}
		t, err := r.lockTool(tx, ref.ToolID)
		if err != nil {
			return err
		}
		requests, err := loadRequests(tx, t.ID)
		if err != nil {
			return err
		}
		req := lifecycle.RequestByID(requests, requestID)
		if req == nil {
			return ErrNotFound
		}
		if err := lifecycle.CheckCancel(req, actorID); err != nil {
			return err
		}
		if err := tx.Delete(&models.ToolRequest{ID: req.ID}).Error; err != nil {
			return err
		}
		if err := syncToolStatus(tx, t.ID); err != nil {
			return err
		}
		return logActivity(tx, t.ID, &req.ID, actorID, models.ActionCancelled)
	})
}

// Reads

// ListToolRequests 详情页申请列表（带申请人档案，新的在前）。
// 非所有人只能看到自己的申请。
func (r *Repo) ListToolRequests(ctx context.Context, toolID, viewerID string) ([]models.ToolRequest, error) {
	t, err := r.FindToolByID(ctx, toolID)
	if err != nil {
		return nil, err
	}
	tx := r.DB.WithContext(ctx).
		Preload("Requester").
		Where("tool_id = ?", toolID)
	if t.OwnerID != viewerID {
		tx = tx.Where("requester_id = ?", viewerID)
	}
	var requests []models.ToolRequest
	err = tx.Order("created_at DESC").Find(&requests).Error
	return requests, err
}

// ActiveCheckout returns the approved request holding the tool, or nil.
func (r *Repo) ActiveCheckout(ctx context.Context, toolID string) (*models.ToolRequest, error) {
	var req models.ToolRequest
	err := r.DB.WithContext(ctx).
		Preload("Requester").
		Where("tool_id = ? AND status = ?", toolID, models.RequestApproved).
		First(&req).Error
	if err != nil {
		if translate(err) == ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

// ListUserRequests 某用户发出的全部申请（带工具），个人页用
func (r *Repo) ListUserRequests(ctx context.Context, requesterID string) ([]models.ToolRequest, error) {
	var requests []models.ToolRequest
	err := r.DB.WithContext(ctx).
		Preload("Tool").
		Preload("Tool.Owner").
		Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// ListOwnerPendingRequests 该用户名下所有工具收到的 pending 申请
func (r *Repo) ListOwnerPendingRequests(ctx context.Context, ownerID string) ([]models.ToolRequest, error) {
	var requests []models.ToolRequest
	err := r.DB.WithContext(ctx).
		Preload("Tool").
		Preload("Requester").
		Joins("JOIN tools ON tools.id = tool_requests.tool_id").
		Where("tools.owner_id = ? AND tool_requests.status = ?", ownerID, models.RequestPending).
		Order("tool_requests.created_at DESC").
		Find(&requests).Error
	return requests, err
}

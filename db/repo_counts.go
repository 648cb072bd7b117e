package db

import (
	"context"

	"toolshed/models"
)

// Server-side aggregates for the public profile page, replacing the
// original's get_user_lending_count / get_user_borrowing_count stored
// functions.

// LendingCount 该用户挂出的工具数
func (r *Repo) LendingCount(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Tool{}).
		Where("owner_id = ?", userID).
		Count(&n).Error
	return n, err
}

// BorrowingCount 该用户当前借着（approved）的工具数
func (r *Repo) BorrowingCount(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.ToolRequest{}).
		Where("requester_id = ? AND status = ?", userID, models.RequestApproved).
		Count(&n).Error
	return n, err
}

package controllers

import (
	"errors"
	"net/http"

	"toolshed/db"
	"toolshed/lifecycle"
	"toolshed/metrics"
)

// HTTPError maps a lifecycle or repository error to a status code and a
// user-facing message. The messages match what the original UI showed; the
// discrimination happens on typed errors, never on backend error text.
func HTTPError(err error) (int, string) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, lifecycle.ErrOwnTool):
		return http.StatusForbidden, "You cannot request your own tools"
	case errors.Is(err, lifecycle.ErrAlreadyPending):
		return http.StatusConflict, "You already have a pending request for this tool"
	case errors.Is(err, lifecycle.ErrAlreadyBorrowed):
		return http.StatusConflict, "You currently have this tool checked out"
	case errors.Is(err, lifecycle.ErrToolCheckedOut):
		return http.StatusConflict, "Cannot approve: Tool is currently checked out"
	case errors.Is(err, lifecycle.ErrNotPending):
		return http.StatusConflict, "Request is no longer pending"
	case errors.Is(err, lifecycle.ErrNotApproved):
		return http.StatusConflict, "Request is not an active checkout"
	case errors.Is(err, lifecycle.ErrNotOwner):
		return http.StatusForbidden, "You don't have permission to manage this tool"
	case errors.Is(err, lifecycle.ErrNotRequester):
		return http.StatusForbidden, "Only the requester can cancel a request"
	case errors.Is(err, lifecycle.ErrActiveRequests):
		return http.StatusConflict, "Tool has active requests and cannot be deleted"
	default:
		return http.StatusInternalServerError, "Something went wrong. Please try again."
	}
}

// countTransition feeds the lifecycle metrics; "denied" covers rule
// violations, "error" everything else.
func countTransition(action string, err error) {
	result := "ok"
	if err != nil {
		if status, _ := HTTPError(err); status == http.StatusInternalServerError {
			result = "error"
		} else {
			result = "denied"
		}
	}
	metrics.LifecycleTransitions.WithLabelValues(action, result).Inc()
}

// Package lifecycle is the single authority for the request/checkout state
// machine: pending → approved → returned, pending → rejected, and
// cancellation of a still-pending request. The repository runs these rules
// inside database transactions; nothing else mutates request status.
package lifecycle

import (
	"errors"
	"time"

	"toolshed/models"
)

// LoanPeriod is added to the approval time to produce the due date.
const LoanPeriod = 7 * 24 * time.Hour

// Violations surfaced to callers as typed errors rather than by matching
// backend error text.
var (
	ErrOwnTool         = errors.New("cannot request own tool")
	ErrAlreadyPending  = errors.New("requester already has a pending request")
	ErrAlreadyBorrowed = errors.New("requester already has this tool checked out")
	ErrToolCheckedOut  = errors.New("tool is already checked out")
	ErrNotPending      = errors.New("request is not pending")
	ErrNotApproved     = errors.New("request is not approved")
	ErrNotOwner        = errors.New("caller does not own the tool")
	ErrNotRequester    = errors.New("caller did not create the request")
	ErrActiveRequests  = errors.New("tool has active requests")
)

// DeriveStatus computes a tool's display status from its request set: any
// pending request shows as requested, otherwise an approved request shows as
// checked_out, otherwise the tool is available.
func DeriveStatus(requests []models.ToolRequest) string {
	status := models.ToolAvailable
	for i := range requests {
		switch requests[i].Status {
		case models.RequestPending:
			return models.ToolRequested
		case models.RequestApproved:
			status = models.ToolCheckedOut
		}
	}
	return status
}

// RequestByID resolves one request from a freshly loaded set. Transitions
// must run their guards against the row read under the tool lock, never
// against a snapshot taken before the lock was acquired.
func RequestByID(requests []models.ToolRequest, id string) *models.ToolRequest {
	for i := range requests {
		if requests[i].ID == id {
			return &requests[i]
		}
	}
	return nil
}

// ActiveFor returns the requester's active (pending or approved) request, if
// any. At most one can exist.
func ActiveFor(requests []models.ToolRequest, requesterID string) *models.ToolRequest {
	for i := range requests {
		if requests[i].RequesterID == requesterID && requests[i].Active() {
			return &requests[i]
		}
	}
	return nil
}

// CheckRequest validates a new checkout request by requesterID against the
// tool and its current request set.
func CheckRequest(tool *models.Tool, requests []models.ToolRequest, requesterID string) error {
	if tool.OwnerID == requesterID {
		return ErrOwnTool
	}
	if active := ActiveFor(requests, requesterID); active != nil {
		if active.Status == models.RequestApproved {
			return ErrAlreadyBorrowed
		}
		return ErrAlreadyPending
	}
	return nil
}

// NewRequest builds the pending row for a validated request.
func NewRequest(id string, tool *models.Tool, requesterID string) *models.ToolRequest {
	return &models.ToolRequest{
		ID:          id,
		ToolID:      tool.ID,
		RequesterID: requesterID,
		Status:      models.RequestPending,
	}
}

// Approve moves a pending request to approved and stamps the due date.
// siblings is the tool's full request set; approval is refused while another
// approved request holds the tool.
func Approve(req *models.ToolRequest, siblings []models.ToolRequest, now time.Time) error {
	if req.Status != models.RequestPending {
		return ErrNotPending
	}
	for i := range siblings {
		if siblings[i].ID != req.ID && siblings[i].Status == models.RequestApproved {
			return ErrToolCheckedOut
		}
	}
	due := now.Add(LoanPeriod)
	req.Status = models.RequestApproved
	req.DueDate = &due
	return nil
}

// Reject moves a pending request to rejected. Terminal; no other fields
// change.
func Reject(req *models.ToolRequest) error {
	if req.Status != models.RequestPending {
		return ErrNotPending
	}
	req.Status = models.RequestRejected
	return nil
}

// Return closes out an approved request and stamps the return date.
func Return(req *models.ToolRequest, now time.Time) error {
	if req.Status != models.RequestApproved {
		return ErrNotApproved
	}
	req.Status = models.RequestReturned
	req.ReturnDate = &now
	return nil
}

// CheckCancel validates removal of a request by its requester. Only a
// still-pending request can be cancelled.
func CheckCancel(req *models.ToolRequest, actorID string) error {
	if req.RequesterID != actorID {
		return ErrNotRequester
	}
	if req.Status != models.RequestPending {
		return ErrNotPending
	}
	return nil
}

// CheckDelete validates deletion of a tool: refused while any request is
// still active. Historical rejected/returned rows go with the tool.
func CheckDelete(requests []models.ToolRequest) error {
	for i := range requests {
		if requests[i].Active() {
			return ErrActiveRequests
		}
	}
	return nil
}

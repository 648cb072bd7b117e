package lifecycle

import (
	"errors"
	"testing"
	"time"

	"toolshed/models"
)

const (
	ownerID    = "6a1f6f3e-0000-4000-8000-000000000001"
	borrowerID = "6a1f6f3e-0000-4000-8000-000000000002"
	otherID    = "6a1f6f3e-0000-4000-8000-000000000003"
)

func drill() *models.Tool {
	return &models.Tool{ID: "t-1", Name: "Power Drill", OwnerID: ownerID, Status: models.ToolAvailable}
}

func req(id, requester, status string) models.ToolRequest {
	return models.ToolRequest{ID: id, ToolID: "t-1", RequesterID: requester, Status: status}
}

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		name     string
		requests []models.ToolRequest
		want     string
	}{
		{"no requests", nil, models.ToolAvailable},
		{"only history", []models.ToolRequest{
			req("r1", borrowerID, models.RequestRejected),
			req("r2", otherID, models.RequestReturned),
		}, models.ToolAvailable},
		{"pending", []models.ToolRequest{req("r1", borrowerID, models.RequestPending)}, models.ToolRequested},
		{"approved", []models.ToolRequest{req("r1", borrowerID, models.RequestApproved)}, models.ToolCheckedOut},
		{"pending wins over approved", []models.ToolRequest{
			req("r1", borrowerID, models.RequestApproved),
			req("r2", otherID, models.RequestPending),
		}, models.ToolRequested},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveStatus(tc.requests); got != tc.want {
				t.Errorf("DeriveStatus = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCheckRequest(t *testing.T) {
	cases := []struct {
		name      string
		requests  []models.ToolRequest
		requester string
		wantErr   error
	}{
		{"owner cannot request own tool", nil, ownerID, ErrOwnTool},
		{"first request ok", nil, borrowerID, nil},
		{"duplicate while pending", []models.ToolRequest{req("r1", borrowerID, models.RequestPending)}, borrowerID, ErrAlreadyPending},
		{"duplicate while checked out", []models.ToolRequest{req("r1", borrowerID, models.RequestApproved)}, borrowerID, ErrAlreadyBorrowed},
		{"second requester ok", []models.ToolRequest{req("r1", borrowerID, models.RequestPending)}, otherID, nil},
		{"new request after return ok", []models.ToolRequest{req("r1", borrowerID, models.RequestReturned)}, borrowerID, nil},
		{"new request after rejection ok", []models.ToolRequest{req("r1", borrowerID, models.RequestRejected)}, borrowerID, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckRequest(drill(), tc.requests, tc.requester)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("CheckRequest err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestApprove(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	r := req("r1", borrowerID, models.RequestPending)
	if err := Approve(&r, []models.ToolRequest{r}, now); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if r.Status != models.RequestApproved {
		t.Errorf("status = %q", r.Status)
	}
	if r.DueDate == nil || !r.DueDate.Equal(now.Add(7*24*time.Hour)) {
		t.Errorf("due date = %v, want %v", r.DueDate, now.Add(7*24*time.Hour))
	}

	// Approving a second pending request while the tool is out must fail.
	second := req("r2", otherID, models.RequestPending)
	err := Approve(&second, []models.ToolRequest{r, second}, now)
	if !errors.Is(err, ErrToolCheckedOut) {
		t.Errorf("approve while checked out: err = %v, want ErrToolCheckedOut", err)
	}
	if second.Status != models.RequestPending || second.DueDate != nil {
		t.Errorf("failed approval must not mutate the request: %+v", second)
	}

	// Only pending requests can be approved.
	for _, status := range []string{models.RequestApproved, models.RequestRejected, models.RequestReturned} {
		r := req("r3", otherID, status)
		if err := Approve(&r, nil, now); !errors.Is(err, ErrNotPending) {
			t.Errorf("approve %s: err = %v, want ErrNotPending", status, err)
		}
	}
}

func TestRejectAndReturn(t *testing.T) {
	now := time.Now().UTC()

	r := req("r1", borrowerID, models.RequestPending)
	if err := Reject(&r); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if r.Status != models.RequestRejected || r.DueDate != nil || r.ReturnDate != nil {
		t.Errorf("reject changed more than status: %+v", r)
	}
	if err := Reject(&r); !errors.Is(err, ErrNotPending) {
		t.Errorf("reject is terminal, err = %v", err)
	}

	a := req("r2", borrowerID, models.RequestApproved)
	if err := Return(&a, now); err != nil {
		t.Fatalf("Return: %v", err)
	}
	if a.Status != models.RequestReturned || a.ReturnDate == nil || !a.ReturnDate.Equal(now) {
		t.Errorf("return: %+v", a)
	}
	if err := Return(&a, now); !errors.Is(err, ErrNotApproved) {
		t.Errorf("return is terminal, err = %v", err)
	}

	p := req("r3", borrowerID, models.RequestPending)
	if err := Return(&p, now); !errors.Is(err, ErrNotApproved) {
		t.Errorf("returning a pending request: err = %v", err)
	}
}

func TestRequestByID(t *testing.T) {
	set := []models.ToolRequest{
		req("r1", borrowerID, models.RequestPending),
		req("r2", otherID, models.RequestPending),
	}
	got := RequestByID(set, "r2")
	if got == nil || got.ID != "r2" {
		t.Fatalf("RequestByID = %+v", got)
	}
	// The pointer must alias the set so a transition's mutation is the one
	// that gets persisted.
	got.Status = models.RequestApproved
	if set[1].Status != models.RequestApproved {
		t.Error("returned request does not alias the loaded set")
	}
	if RequestByID(set, "r9") != nil {
		t.Error("unknown id should resolve to nil")
	}
	if RequestByID(nil, "r1") != nil {
		t.Error("empty set should resolve to nil")
	}
}

// A transition that decided on an old read must fail once the row is loaded
// again: approving a request that has meanwhile been rejected, or cancelling
// one that has meanwhile been approved.
func TestGuardsRejectSupersededRows(t *testing.T) {
	rejected := []models.ToolRequest{req("r1", borrowerID, models.RequestRejected)}
	if err := Approve(RequestByID(rejected, "r1"), rejected, time.Now().UTC()); !errors.Is(err, ErrNotPending) {
		t.Errorf("approve over rejected row: err = %v, want ErrNotPending", err)
	}
	if rejected[0].Status != models.RequestRejected {
		t.Errorf("rejected is terminal, status = %q", rejected[0].Status)
	}

	approved := []models.ToolRequest{req("r2", borrowerID, models.RequestApproved)}
	if err := CheckCancel(RequestByID(approved, "r2"), borrowerID); !errors.Is(err, ErrNotPending) {
		t.Errorf("cancel of approved row: err = %v, want ErrNotPending", err)
	}
}

func TestCheckCancel(t *testing.T) {
	pending := req("r1", borrowerID, models.RequestPending)
	if err := CheckCancel(&pending, borrowerID); err != nil {
		t.Errorf("requester cancels own pending request: %v", err)
	}
	if err := CheckCancel(&pending, otherID); !errors.Is(err, ErrNotRequester) {
		t.Errorf("stranger cancel: err = %v", err)
	}
	approved := req("r2", borrowerID, models.RequestApproved)
	if err := CheckCancel(&approved, borrowerID); !errors.Is(err, ErrNotPending) {
		t.Errorf("cancel approved: err = %v", err)
	}
}

func TestCheckDelete(t *testing.T) {
	if err := CheckDelete(nil); err != nil {
		t.Errorf("delete with no requests: %v", err)
	}
	history := []models.ToolRequest{
		req("r1", borrowerID, models.RequestRejected),
		req("r2", otherID, models.RequestReturned),
	}
	if err := CheckDelete(history); err != nil {
		t.Errorf("delete with only history: %v", err)
	}
	for _, status := range []string{models.RequestPending, models.RequestApproved} {
		withActive := append(history, req("r3", borrowerID, status))
		if err := CheckDelete(withActive); !errors.Is(err, ErrActiveRequests) {
			t.Errorf("delete with %s request: err = %v", status, err)
		}
	}
}

// Walks the whole happy path: B requests A's tool, A approves,
// A marks it returned; display status tracks each step.
func TestCheckoutRoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	tool := drill()

	if err := CheckRequest(tool, nil, borrowerID); err != nil {
		t.Fatalf("request: %v", err)
	}
	r := *NewRequest("r1", tool, borrowerID)
	set := []models.ToolRequest{r}
	if got := DeriveStatus(set); got != models.ToolRequested {
		t.Fatalf("after request, status = %q", got)
	}

	// Second attempt by the same borrower must not create another row.
	if err := CheckRequest(tool, set, borrowerID); !errors.Is(err, ErrAlreadyPending) {
		t.Fatalf("double request: err = %v", err)
	}

	if err := Approve(&set[0], set, now); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got := DeriveStatus(set); got != models.ToolCheckedOut {
		t.Fatalf("after approve, status = %q", got)
	}
	if !set[0].DueDate.Equal(now.Add(LoanPeriod)) {
		t.Fatalf("due date = %v", set[0].DueDate)
	}

	returnedAt := now.Add(48 * time.Hour)
	if err := Return(&set[0], returnedAt); err != nil {
		t.Fatalf("return: %v", err)
	}
	if got := DeriveStatus(set); got != models.ToolAvailable {
		t.Fatalf("after return, status = %q", got)
	}
	if !set[0].ReturnDate.Equal(returnedAt) {
		t.Fatalf("return date = %v", set[0].ReturnDate)
	}
}

// Cancelling one of several pending requests leaves the tool requested;
// cancelling the last one frees it.
func TestCancelStatusRecompute(t *testing.T) {
	set := []models.ToolRequest{
		req("r1", borrowerID, models.RequestPending),
		req("r2", otherID, models.RequestPending),
	}
	if err := CheckCancel(&set[0], borrowerID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	rest := set[1:]
	if got := DeriveStatus(rest); got != models.ToolRequested {
		t.Errorf("one pending sibling left, status = %q", got)
	}
	if err := CheckCancel(&rest[0], otherID); err != nil {
		t.Fatalf("cancel last: %v", err)
	}
	if got := DeriveStatus(nil); got != models.ToolAvailable {
		t.Errorf("no requests left, status = %q", got)
	}
}

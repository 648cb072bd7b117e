package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"toolshed/db"
	"toolshed/lifecycle"

	"github.com/gin-gonic/gin"
)

func TestHTTPError(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantMsg    string
	}{
		{db.ErrNotFound, http.StatusNotFound, "Not found"},
		{lifecycle.ErrOwnTool, http.StatusForbidden, "You cannot request your own tools"},
		{lifecycle.ErrAlreadyPending, http.StatusConflict, "You already have a pending request for this tool"},
		{lifecycle.ErrAlreadyBorrowed, http.StatusConflict, "You currently have this tool checked out"},
		{lifecycle.ErrToolCheckedOut, http.StatusConflict, "Cannot approve: Tool is currently checked out"},
		{lifecycle.ErrNotOwner, http.StatusForbidden, "You don't have permission to manage this tool"},
		{lifecycle.ErrActiveRequests, http.StatusConflict, "Tool has active requests and cannot be deleted"},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, "Something went wrong. Please try again."},
	}
	for _, tc := range cases {
		status, msg := HTTPError(tc.err)
		if status != tc.wantStatus || msg != tc.wantMsg {
			t.Errorf("HTTPError(%v) = (%d, %q), want (%d, %q)", tc.err, status, msg, tc.wantStatus, tc.wantMsg)
		}
	}

	// Wrapped errors must still map through errors.Is.
	wrapped := fmt.Errorf("approve request: %w", lifecycle.ErrToolCheckedOut)
	if status, _ := HTTPError(wrapped); status != http.StatusConflict {
		t.Errorf("wrapped error status = %d", status)
	}
}

// Non-uuid path params must 400 at the edge instead of reaching the uuid
// columns as a backend syntax error.
func TestPathID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, bad := range []string{"", "1", "not-a-uuid", "6a1f6f3e-0000-4000-8000"} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: bad}}
		if _, ok := pathID(c, "id"); ok {
			t.Errorf("pathID(%q) accepted", bad)
		}
		if w.Code != http.StatusBadRequest {
			t.Errorf("pathID(%q) status = %d", bad, w.Code)
		}
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "6a1f6f3e-0000-4000-8000-000000000001"}}
	id, ok := pathID(c, "id")
	if !ok || id != "6a1f6f3e-0000-4000-8000-000000000001" {
		t.Errorf("pathID valid uuid = (%q, %v)", id, ok)
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"5551234567", "+15551234567", false},
		{"(555) 123-4567", "+15551234567", false},
		{"1 555 123 4567", "+15551234567", false},
		{"+1 (555) 123-4567", "+15551234567", false},
		{"123", "", true},
		{"25551234567", "", true}, // 11 digits but not a US prefix
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := NormalizePhone(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("NormalizePhone(%q) expected error, got %q", tc.in, got)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("NormalizePhone(%q) = (%q, %v), want %q", tc.in, got, err, tc.want)
		}
	}
}

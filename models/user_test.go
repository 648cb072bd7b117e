package models

import "testing"

func strp(s string) *string { return &s }

func TestDisplayName(t *testing.T) {
	cases := []struct {
		name string
		user User
		want string
	}{
		{"username wins", User{Username: strp("drillmaster"), Email: strp("jo@example.com")}, "drillmaster"},
		{"email local part", User{Email: strp("jo@example.com")}, "jo"},
		{"empty username falls through", User{Username: strp(""), Email: strp("jo@example.com")}, "jo"},
		{"phone-only account", User{PhoneNumber: strp("+15551234567")}, "Anonymous"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.user.DisplayName(); got != tc.want {
				t.Errorf("DisplayName = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestValidCategory(t *testing.T) {
	if !ValidCategory("Gardening") {
		t.Error("Gardening should be a category")
	}
	if ValidCategory("Spaceships") {
		t.Error("Spaceships should not be a category")
	}
}

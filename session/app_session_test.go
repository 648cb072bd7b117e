package session

import "testing"

func TestSessionKeyNamespace(t *testing.T) {
	if got := sessionKey("abc"); got != "toolshed:sess:abc" {
		t.Errorf("sessionKey = %q", got)
	}
	if got := userSessionsKey("u1"); got != "toolshed:user_sess:u1" {
		t.Errorf("userSessionsKey = %q", got)
	}
}

package identity_test

import (
	"testing"

	"fintrack/core/identity"
)

func TestSession_NotifiesOnChange(t *testing.T) {
	session := identity.NewSession("")
	var seen []string
	unsubscribe := session.OnChange(func(userID string) { seen = append(seen, userID) })

	session.SignIn("u1")
	session.SignIn("u1")
	session.SignIn("u2")
	session.SignOut()

	want := []string{"u1", "u2", ""}
	if len(seen) != len(want) {
		t.Fatalf("Expected %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("Change %d: expected %q, got %q", i, want[i], seen[i])
		}
	}
	if session.Current() != "" {
		t.Errorf("Expected a guest session, got %q", session.Current())
	}

	unsubscribe()
	session.SignIn("u3")
	if len(seen) != len(want) {
		t.Errorf("Expected no notification after unsubscribe, got %v", seen)
	}
}

package models

import "testing"

func TestSessionZeroValue(t *testing.T) {
	var s Session

	if s.State != StateNotAuthenticated {
		t.Errorf("zero session state = %v, want %v", s.State, StateNotAuthenticated)
	}
	if s.Username != "" || s.SelectedFolder != "" {
		t.Errorf("zero session carries identity: %+v", s)
	}
	if s.LastMessageCount != 0 {
		t.Errorf("LastMessageCount = %d, want 0", s.LastMessageCount)
	}
}

func TestSessionStateOrdering(t *testing.T) {
	// State gating in the dispatch table relies on this ordering.
	if !(StateNotAuthenticated < StateAuthenticated && StateAuthenticated < StateSelected) {
		t.Errorf("session states are not ordered: %d, %d, %d",
			StateNotAuthenticated, StateAuthenticated, StateSelected)
	}
}

func TestSessionStateString(t *testing.T) {
	tests := []struct {
		state SessionState
		want  string
	}{
		{StateNotAuthenticated, "not authenticated"},
		{StateAuthenticated, "authenticated"},
		{StateSelected, "selected"},
		{SessionState(99), "unknown"},
	}

	for _, tc := range tests {
		if got := tc.state.String(); got != tc.want {
			t.Errorf("SessionState(%d).String() = %q, want %q", tc.state, got, tc.want)
		}
	}
}

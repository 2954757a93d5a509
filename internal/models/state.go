package models

// SessionState is the protocol state of one client connection. Transitions
// are monotonic within a connection: NotAuthenticated -> Authenticated ->
// Selected. There is no backward transition except disconnect.
type SessionState int

const (
	StateNotAuthenticated SessionState = iota
	StateAuthenticated
	StateSelected
)

func (s SessionState) String() string {
	switch s {
	case StateNotAuthenticated:
		return "not authenticated"
	case StateAuthenticated:
		return "authenticated"
	case StateSelected:
		return "selected"
	}
	return "unknown"
}

// Session tracks one client connection's protocol state. It is exclusively
// owned by the connection's handler goroutine and never shared.
type Session struct {
	State          SessionState
	Username       string
	SelectedFolder string
	// Mailbox counters recorded at SELECT time.
	LastMessageCount int
	UIDValidity      uint32
	UIDNext          uint32
}

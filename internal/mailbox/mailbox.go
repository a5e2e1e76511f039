package mailbox

import (
	"context"
	"fmt"
)

// MessageID identifies one message within a single session (IMAP UID or
// POP3 sequence number). It is stable for the lifetime of the session
// but not across reconnects.
type MessageID uint32

// Session is one authenticated connection to a mailbox store. It is
// single-use: owned by one polling cycle and never shared.
type Session interface {
	// Search selects the target mailbox and returns the identifiers of
	// candidate messages. The result may be empty, never an error for
	// "no matches".
	Search(keyword string) ([]MessageID, error)

	// Fetch retrieves the raw RFC 5322 bytes of one message without
	// marking it seen.
	Fetch(id MessageID) ([]byte, error)

	// MarkSeen flags the message as read on the server.
	MarkSeen(id MessageID) error

	// Close logs out and releases the connection. Best-effort: callers
	// log failures and move on.
	Close() error
}

// Dialer opens authenticated sessions.
type Dialer interface {
	Open(ctx context.Context) (Session, error)
}

// AuthError indicates the server rejected the account credentials.
type AuthError struct {
	Account string
	Err     error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("login failed for %s: %v", e.Account, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// SelectError indicates the target mailbox could not be selected.
type SelectError struct {
	Mailbox string
	Err     error
}

func (e *SelectError) Error() string {
	return fmt.Sprintf("select mailbox %s: %v", e.Mailbox, e.Err)
}

func (e *SelectError) Unwrap() error { return e.Err }

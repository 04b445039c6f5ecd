package client

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/sealnote/internal/common"
	"github.com/dmitrijs2005/sealnote/internal/envelope"
)

// Client is the remote store contract used by the online flow.
type Client interface {
	// Store uploads a ciphertext with its policy and returns the issued code.
	Store(ctx context.Context, req StoreRequest) (*StoreResult, error)
	// Fetch reads a stored message without changing server state.
	Fetch(ctx context.Context, code string) (*Message, error)
	// FetchFiles returns the encrypted attachments stored next to a message.
	FetchFiles(ctx context.Context, code string) ([]envelope.FileEntry, error)
	// ReportFailedAttempt decrements the server attempt counter and returns
	// what is left. Zero means the message is gone.
	ReportFailedAttempt(ctx context.Context, code string) (int, error)
	// Delete removes a message. Deleting a missing code is not an error.
	Delete(ctx context.Context, code string) error
}

type StoreRequest struct {
	Ciphertext    string
	Expire        time.Duration // zero means never
	DestroyOnRead bool
	Files         []envelope.FileEntry // already encrypted
}

type StoreResult struct {
	Code string
	// URL is the raw location returned by the store.
	URL string
	// Link is the share link built from the public origin.
	Link string
}

// Message is a fetched stored message.
type Message struct {
	Code          string
	Ciphertext    string
	Info          string
	DestroyOnRead bool
	// ExpiresAt is zero when the message never expires.
	ExpiresAt time.Time
	// AttemptsLeft is the server hint found in Info; -1 when absent.
	AttemptsLeft int
}

// HasAttemptsHint reports whether the store told how many attempts remain.
func (m *Message) HasAttemptsHint() bool {
	return m.AttemptsLeft >= 0
}

// ShareLink builds origin/message?code=<code>.
func ShareLink(origin, code string) string {
	return strings.TrimRight(origin, "/") + common.MessagePath + "?code=" + code
}

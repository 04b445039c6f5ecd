package models

import (
	"time"

	"github.com/dmitrijs2005/sealnote/internal/envelope"
)

// ShareRequest is everything needed to publish a message online.
type ShareRequest struct {
	Message       string
	Files         []envelope.RawFile
	Passphrase    string
	Expire        time.Duration
	DestroyOnRead bool
}

// OpenedMessage is a decrypted message ready for display.
type OpenedMessage struct {
	Code          string // empty for local decrypts
	Message       string
	Kind          envelope.Kind
	Files         []envelope.FileResult
	DestroyOnRead bool
	ExpiresAt     time.Time
}

// SavedFile records where a decrypted attachment was written.
type SavedFile struct {
	Name string
	Path string
	Size int64
	Err  error
}

// Package models defines the client-side data types of the sealnote CLI.
package models

import (
	"time"

	"github.com/google/uuid"
)

// LinkStatus is the derived state of a link in the local history.
type LinkStatus string

const (
	LinkActive  LinkStatus = "active"
	LinkExpired LinkStatus = "expired"
	LinkDeleted LinkStatus = "deleted"
)

// Link is a share link created by this client.
type Link struct {
	ID            string
	Code          string
	URL           string
	ExpiresAt     time.Time // zero means never
	DestroyOnRead bool
	CreatedAt     time.Time
	Deleted       bool
}

// NewLink builds a history row for a freshly stored message.
func NewLink(code, url string, expire time.Duration, destroyOnRead bool, now time.Time) *Link {
	l := &Link{
		ID:            uuid.NewString(),
		Code:          code,
		URL:           url,
		DestroyOnRead: destroyOnRead,
		CreatedAt:     now.UTC().Truncate(time.Second),
	}
	if expire > 0 {
		l.ExpiresAt = l.CreatedAt.Add(expire)
	}
	return l
}

func (l *Link) Status(now time.Time) LinkStatus {
	switch {
	case l.Deleted:
		return LinkDeleted
	case !l.ExpiresAt.IsZero() && !now.Before(l.ExpiresAt):
		return LinkExpired
	default:
		return LinkActive
	}
}

// Remaining returns the time left before expiry, or zero for links that
// never expire or already did.
func (l *Link) Remaining(now time.Time) time.Duration {
	if l.ExpiresAt.IsZero() {
		return 0
	}
	if d := l.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

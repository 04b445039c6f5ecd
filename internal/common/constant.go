// Package common contains shared constants, sentinel errors and small helpers
// used across the sealnote client packages.
package common

import "time"

// CodeLength is the length of the opaque message code issued by the store.
const CodeLength = 10

// CodeAlphabet lists the characters a message code is built from.
const CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// MessagePath is the path of the share link; the code travels in the "code"
// query parameter.
const MessagePath = "/message"

// Expiration presets offered to the user. Zero means the message never expires.
const (
	ExpireNever   time.Duration = 0
	Expire30Sec                 = 30 * time.Second
	Expire1Day                  = 24 * time.Hour
	Expire1Week                 = 7 * Expire1Day
	Expire1Month                = 30 * Expire1Day
	DefaultExpire               = Expire1Week
)

// QRMaxChars is the longest text still rendered as a QR code.
const QRMaxChars = 1800

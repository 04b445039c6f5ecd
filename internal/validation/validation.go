// Package validation holds the input rules checked before any cipher or
// network call is made.
package validation

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/sealnote/internal/common"
)

const (
	MinPassphraseLen = 8
	MaxPassphraseLen = 1000
	MaxMessageLen    = 10000
)

var (
	ErrEmptyPassphrase     = errors.New("passphrase is empty")
	ErrPassphraseTooShort  = fmt.Errorf("passphrase must be at least %d characters", MinPassphraseLen)
	ErrPassphraseTooLong   = fmt.Errorf("passphrase must be at most %d characters", MaxPassphraseLen)
	ErrMessageTooLong      = fmt.Errorf("message must be at most %d characters", MaxMessageLen)
	ErrMessageInvalidChars = errors.New("message contains control characters")
	ErrEmptyContent        = errors.New("message is empty and no files are attached")
	ErrInvalidCode         = common.ErrorInvalidCode
)

// ValidateKeyForEncrypt checks a passphrase that is about to protect new content.
// Length is counted in characters, not bytes.
func ValidateKeyForEncrypt(passphrase string) error {
	if strings.TrimSpace(passphrase) == "" {
		return ErrEmptyPassphrase
	}
	n := utf8.RuneCountInString(passphrase)
	if n < MinPassphraseLen {
		return ErrPassphraseTooShort
	}
	if n > MaxPassphraseLen {
		return ErrPassphraseTooLong
	}
	return nil
}

// ValidateKeyForDecrypt only rejects blank passphrases; old content may have
// been sealed under weaker rules.
func ValidateKeyForDecrypt(passphrase string) error {
	if strings.TrimSpace(passphrase) == "" {
		return ErrEmptyPassphrase
	}
	return nil
}

// ValidateMessage checks the message length and rejects control characters
// other than tab, newline and carriage return.
func ValidateMessage(message string) error {
	if utf8.RuneCountInString(message) > MaxMessageLen {
		return ErrMessageTooLong
	}
	for _, r := range message {
		if isForbiddenControl(r) {
			return ErrMessageInvalidChars
		}
	}
	return nil
}

func isForbiddenControl(r rune) bool {
	switch {
	case r <= 0x08, r == 0x0b, r == 0x0c:
		return true
	case r >= 0x0e && r <= 0x1f, r == 0x7f:
		return true
	}
	return false
}

// ValidateContent requires a non-blank message or at least one file, then
// applies ValidateMessage.
func ValidateContent(message string, fileCount int) error {
	if strings.TrimSpace(message) == "" && fileCount == 0 {
		return ErrEmptyContent
	}
	return ValidateMessage(message)
}

// ParseCode extracts a message code from user input. Accepted forms are a
// bare code, a share link carrying ?code=X and a store URL whose last path
// element is the code.
func ParseCode(input string) (string, error) {
	s := strings.TrimSpace(input)
	if common.IsCode(s) {
		return s, nil
	}

	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidCode, input)
	}

	if c := u.Query().Get("code"); c != "" {
		if common.IsCode(c) {
			return c, nil
		}
		return "", fmt.Errorf("%w: %q", ErrInvalidCode, input)
	}

	if last := path.Base(strings.TrimSuffix(u.Path, "/")); common.IsCode(last) {
		return last, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCode, input)
}

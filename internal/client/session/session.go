// Package session drives one message code through its online lifecycle.
//
// A Session owns the only mutable view of a code: fetch, decrypt attempts,
// deletion and the local expiration countdown all go through it, and every
// change is a checked transition between States. The store stays the
// authority; the attempts counter kept here only caches its last answer.
//
// Deleting is allowed from Loaded as well as from Decrypted: whoever holds the
// link may withdraw a message without knowing its passphrase, as the store's
// delete endpoint takes only the code.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dmitrijs2005/sealnote/internal/client/client"
	"github.com/dmitrijs2005/sealnote/internal/client/models"
	"github.com/dmitrijs2005/sealnote/internal/cryptox"
	"github.com/dmitrijs2005/sealnote/internal/envelope"
	"github.com/dmitrijs2005/sealnote/internal/logging"
)

// TickInterval is the countdown resolution.
const TickInterval = time.Second

// WrongPassphraseError is returned by Decrypt when the passphrase did not
// open the message but attempts remain.
type WrongPassphraseError struct {
	// AttemptsLeft is -1 when the store could not be asked.
	AttemptsLeft int
}

func (e *WrongPassphraseError) Error() string {
	if e.AttemptsLeft < 0 {
		return cryptox.ErrDecryptFailed.Error()
	}
	return fmt.Sprintf("%s, %d attempts left", cryptox.ErrDecryptFailed, e.AttemptsLeft)
}

func (e *WrongPassphraseError) Unwrap() error { return cryptox.ErrDecryptFailed }

type Session struct {
	mu sync.Mutex

	code   string
	client client.Client
	cipher envelope.Cipher
	clock  clock.Clock
	log    logging.Logger

	onExpire func(code string)

	state        State
	msg          *client.Message
	attemptsLeft int
	expireFired  bool

	stop chan struct{}
	gen  int
}

type Option func(*Session)

func WithClock(c clock.Clock) Option {
	return func(s *Session) { s.clock = c }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithOnExpire registers fn to run once when the local countdown ends.
// fn runs on the countdown goroutine and must not call back into the Session
// synchronously.
func WithOnExpire(fn func(code string)) Option {
	return func(s *Session) { s.onExpire = fn }
}

func New(c client.Client, cipher envelope.Cipher, code string, opts ...Option) *Session {
	s := &Session{
		code:         code,
		client:       c,
		cipher:       cipher,
		clock:        clock.New(),
		log:          logging.Nop(),
		attemptsLeft: -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("code", code)
	return s
}

func (s *Session) Code() string { return s.code }

// State returns the current state, first applying a pending local expiry.
func (s *Session) State() State {
	s.mu.Lock()
	fire := s.checkExpiryLocked()
	st := s.state
	s.mu.Unlock()

	if fire {
		s.fireExpire()
	}
	return st
}

// AttemptsLeft returns the last attempts count reported by the store.
func (s *Session) AttemptsLeft() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attemptsLeft, s.attemptsLeft >= 0
}

// Remaining returns the time left on the countdown, zero when the message
// never expires or is no longer loaded.
func (s *Session) Remaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remainingLocked()
}

func (s *Session) remainingLocked() time.Duration {
	if s.msg == nil || s.msg.ExpiresAt.IsZero() {
		return 0
	}
	if d := s.msg.ExpiresAt.Sub(s.clock.Now()); d > 0 {
		return d
	}
	return 0
}

// DestroyOnRead reports the policy of the loaded message.
func (s *Session) DestroyOnRead() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.msg != nil && s.msg.DestroyOnRead
}

// ExpiresAt is zero when the message never expires or is not loaded.
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.msg == nil {
		return time.Time{}
	}
	return s.msg.ExpiresAt
}

// Load fetches the message. Calling it again while Loaded replaces the
// previous response and restarts the countdown.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	if !canTransition(s.state, Loaded) {
		st := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: load from %s", ErrInvalidTransition, st)
	}
	s.mu.Unlock()

	msg, err := s.client.Fetch(ctx, s.code)

	s.mu.Lock()
	if !canTransition(s.state, Loaded) {
		st := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: load from %s", ErrInvalidTransition, st)
	}

	switch {
	case errors.Is(err, client.ErrNotFound):
		s.stopCountdownLocked()
		s.state = Expired
		s.mu.Unlock()
		s.log.Info(ctx, "message not found")
		return err
	case err != nil:
		s.mu.Unlock()
		return err
	}

	s.stopCountdownLocked()
	s.msg = msg
	s.expireFired = false
	if msg.HasAttemptsHint() {
		s.attemptsLeft = msg.AttemptsLeft
	}
	s.state = Loaded

	if !msg.ExpiresAt.IsZero() {
		if s.remainingLocked() == 0 {
			s.state = Expired
			s.mu.Unlock()
			return ErrExpired
		}
		s.startCountdownLocked()
	}
	s.mu.Unlock()

	s.log.Debug(ctx, "message loaded", "destroy_on_read", msg.DestroyOnRead, "expires_at", msg.ExpiresAt)
	return nil
}

// Decrypt tries passphrase on the loaded message. A wrong passphrase is
// reported to the store exactly once; when no attempts remain the session
// ends in AttemptsExhausted. On success the attachments are fetched from the
// store and replace any embedded ones.
func (s *Session) Decrypt(ctx context.Context, passphrase string) (*models.OpenedMessage, error) {
	s.mu.Lock()
	fire := s.checkExpiryLocked()
	if s.state != Loaded {
		st := s.state
		s.mu.Unlock()
		if fire {
			s.fireExpire()
		}
		if st == Expired {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("%w: decrypt from %s", ErrInvalidTransition, st)
	}
	msg := s.msg
	s.mu.Unlock()

	opened, err := envelope.Open(s.cipher, cryptox.NormalizeFromTransport(msg.Ciphertext), passphrase)
	if errors.Is(err, cryptox.ErrDecryptFailed) {
		return nil, s.failAttempt(ctx)
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.state != Loaded {
		st := s.state
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: decrypt from %s", ErrInvalidTransition, st)
	}
	s.stopCountdownLocked()
	s.state = Decrypted
	s.mu.Unlock()

	files := opened.Files
	remote, err := s.client.FetchFiles(ctx, s.code)
	switch {
	case err != nil:
		s.log.Warn(ctx, "fetching files failed, keeping embedded ones", "error", err)
	case len(remote) > 0:
		files = envelope.DecryptFiles(s.cipher, remote, passphrase)
	}

	s.log.Info(ctx, "message decrypted", "files", len(files))
	return &models.OpenedMessage{
		Code:          s.code,
		Message:       opened.Message(),
		Kind:          opened.Decoded.Kind,
		Files:         files,
		DestroyOnRead: msg.DestroyOnRead,
		ExpiresAt:     msg.ExpiresAt,
	}, nil
}

func (s *Session) failAttempt(ctx context.Context) error {
	left, err := s.client.ReportFailedAttempt(ctx, s.code)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case errors.Is(err, client.ErrTooManyAttempts) || err == nil && left == 0:
		s.attemptsLeft = 0
		s.stopCountdownLocked()
		if canTransition(s.state, AttemptsExhausted) {
			s.state = AttemptsExhausted
		}
		s.log.Warn(ctx, "attempts exhausted")
		return fmt.Errorf("%w: %w", ErrAttemptsExhausted, cryptox.ErrDecryptFailed)
	case errors.Is(err, client.ErrNotFound):
		s.stopCountdownLocked()
		if canTransition(s.state, Expired) {
			s.state = Expired
		}
		return fmt.Errorf("%w: %w", ErrExpired, cryptox.ErrDecryptFailed)
	case err != nil:
		s.log.Warn(ctx, "could not report failed attempt", "error", err)
		return &WrongPassphraseError{AttemptsLeft: -1}
	}

	s.attemptsLeft = left
	return &WrongPassphraseError{AttemptsLeft: left}
}

// Delete removes the message from the store. It is allowed after a
// successful decrypt and while still loaded.
func (s *Session) Delete(ctx context.Context) error {
	s.mu.Lock()
	if !canTransition(s.state, Deleted) {
		st := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: delete from %s", ErrInvalidTransition, st)
	}
	s.mu.Unlock()

	if err := s.client.Delete(ctx, s.code); err != nil {
		return err
	}

	s.mu.Lock()
	s.stopCountdownLocked()
	s.state = Deleted
	s.mu.Unlock()
	return nil
}

// Close stops the countdown and silences the expire callback. The session
// keeps its state and still reports expiry through State.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopCountdownLocked()
	s.expireFired = true
}

// checkExpiryLocked moves a loaded session whose deadline passed to Expired.
// It returns true when the expire callback is due.
func (s *Session) checkExpiryLocked() bool {
	if s.state != Loaded || s.msg == nil || s.msg.ExpiresAt.IsZero() {
		return false
	}
	if s.clock.Now().Before(s.msg.ExpiresAt) {
		return false
	}
	s.state = Expired
	s.stopCountdownLocked()
	if s.expireFired {
		return false
	}
	s.expireFired = true
	return true
}

func (s *Session) fireExpire() {
	s.log.Info(context.Background(), "message expired locally")
	if s.onExpire != nil {
		s.onExpire(s.code)
	}
}

func (s *Session) startCountdownLocked() {
	s.gen++
	s.stop = make(chan struct{})
	go s.countdown(s.gen, s.stop, s.clock.Ticker(TickInterval))
}

func (s *Session) stopCountdownLocked() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

func (s *Session) countdown(gen int, stop <-chan struct{}, t *clock.Ticker) {
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			s.mu.Lock()
			if gen != s.gen {
				s.mu.Unlock()
				return
			}
			fire := s.checkExpiryLocked()
			done := s.state != Loaded
			s.mu.Unlock()

			if fire {
				s.fireExpire()
			}
			if done {
				return
			}
		}
	}
}

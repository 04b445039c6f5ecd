// Package clienttest provides an in-memory remote store for tests.
//
// Store implements the same form-encoded HTTP surface as the real service
// (/post, /get, /get_files, /fail_attempt, /delete) and is meant to be wrapped
// in an httptest.Server. Time comes from a clock.Clock, so expiration can be
// driven with clock.NewMock.
package clienttest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dmitrijs2005/sealnote/internal/common"
	"github.com/dmitrijs2005/sealnote/internal/envelope"
)

const (
	DefaultMaxAttempts = 3
	NotFoundText       = "No existe el mensaje. Fue destruido o expiró."
)

type entry struct {
	ciphertext    string
	files         []envelope.FileEntry
	destroyOnRead bool
	expiresAt     time.Time
	attemptsLeft  int
}

type Store struct {
	mu          sync.Mutex
	clock       clock.Clock
	maxAttempts int
	messages    map[string]*entry
	exhausted   map[string]struct{}
	failures    map[string]int
	calls       map[string]int
	mux         *http.ServeMux
}

type Option func(*Store)

func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

func WithMaxAttempts(n int) Option {
	return func(s *Store) { s.maxAttempts = n }
}

func New(opts ...Option) *Store {
	s := &Store{
		clock:       clock.New(),
		maxAttempts: DefaultMaxAttempts,
		messages:    map[string]*entry{},
		exhausted:   map[string]struct{}{},
		failures:    map[string]int{},
		calls:       map[string]int{},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mux = http.NewServeMux()
	s.mux.HandleFunc("/post", s.handlePost)
	s.mux.HandleFunc("/get", s.handleGet)
	s.mux.HandleFunc("/get_files", s.handleGetFiles)
	s.mux.HandleFunc("/fail_attempt", s.handleFailAttempt)
	s.mux.HandleFunc("/delete", s.handleDelete)
	return s
}

// FailNext makes the next n requests to path answer 503.
func (s *Store) FailNext(path string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = n
}

// Calls returns how many requests reached path, failed ones included.
func (s *Store) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

// Has reports whether code resolves to a live message.
func (s *Store) Has(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(code) != nil
}

// AttemptsLeft returns the counter of a live message.
func (s *Store) AttemptsLeft(code string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.lookup(code)
	if e == nil {
		return 0, false
	}
	return e.attemptsLeft, true
}

func (s *Store) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.calls[r.URL.Path]++
	if n := s.failures[r.URL.Path]; n > 0 {
		s.failures[r.URL.Path] = n - 1
		s.mu.Unlock()
		http.Error(w, "temporarily unavailable", http.StatusServiceUnavailable)
		return
	}
	s.mu.Unlock()

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mux.ServeHTTP(w, r)
}

// lookup returns the live entry for code, dropping it if it has expired.
// Callers hold s.mu.
func (s *Store) lookup(code string) *entry {
	e, ok := s.messages[code]
	if !ok {
		return nil
	}
	if !e.expiresAt.IsZero() && !s.clock.Now().Before(e.expiresAt) {
		delete(s.messages, code)
		return nil
	}
	return e
}

func (s *Store) handlePost(w http.ResponseWriter, r *http.Request) {
	msg := r.PostForm.Get("msg1")
	if msg == "" {
		http.Error(w, "msg1 is required", http.StatusBadRequest)
		return
	}
	expire, err := strconv.ParseInt(r.PostForm.Get("expire"), 10, 64)
	if err != nil || expire < 0 {
		http.Error(w, "invalid expire", http.StatusBadRequest)
		return
	}

	var files []envelope.FileEntry
	if raw := r.PostForm.Get("files"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &files); err != nil {
			http.Error(w, "invalid files", http.StatusBadRequest)
			return
		}
	}

	code, err := common.RandomCode(common.CodeLength)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.mu.Lock()
	e := &entry{
		ciphertext:    msg,
		files:         files,
		destroyOnRead: r.PostForm.Has("destroy"),
		attemptsLeft:  s.maxAttempts,
	}
	if expire > 0 {
		e.expiresAt = s.clock.Now().Add(time.Duration(expire) * time.Second)
	}
	s.messages[code] = e
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintf(w, "http://%s/%s", r.Host, code)
}

func (s *Store) handleGet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(r.PostForm.Get("id"))
	if e == nil {
		writeJSON(w, http.StatusOK, map[string]any{"msg": NotFoundText, "info": ""})
		return
	}

	resp := map[string]any{
		"msg":             e.ciphertext,
		"info":            fmt.Sprintf("Intentos restantes: %d", e.attemptsLeft),
		"destroy_on_read": e.destroyOnRead,
	}
	if !e.expiresAt.IsZero() {
		resp["expiration_ts"] = e.expiresAt.Unix()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Store) handleGetFiles(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(r.PostForm.Get("id"))
	if e == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "not_found"})
		return
	}
	files := e.files
	if files == nil {
		files = []envelope.FileEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

func (s *Store) handleFailAttempt(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := r.PostForm.Get("id")
	if _, gone := s.exhausted[code]; gone {
		writeJSON(w, http.StatusTooManyRequests, map[string]any{"error": "too_many_attempts"})
		return
	}
	e := s.lookup(code)
	if e == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "not_found"})
		return
	}

	e.attemptsLeft--
	if e.attemptsLeft <= 0 {
		delete(s.messages, code)
		s.exhausted[code] = struct{}{}
		e.attemptsLeft = 0
	}
	writeJSON(w, http.StatusOK, map[string]any{"attempts_left": e.attemptsLeft})
}

func (s *Store) handleDelete(w http.ResponseWriter, r *http.Request) {
	code := r.PostForm.Get("id")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "missing id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lookup(code) == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": "not found"})
		return
	}
	delete(s.messages, code)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

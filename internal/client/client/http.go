package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"

	"github.com/dmitrijs2005/sealnote/internal/common"
	"github.com/dmitrijs2005/sealnote/internal/envelope"
	"github.com/dmitrijs2005/sealnote/internal/logging"
)

const (
	DefaultTimeout           = 10 * time.Second
	DefaultMaxRetries        = 3
	DefaultRetryBaseDelay    = time.Second
	DefaultRequestsPerSecond = 5

	maxBodySize = 64 << 20
)

// Texts the store puts into msg instead of a ciphertext when the code is unknown.
var notFoundTexts = []string{
	"message not found",
	"no existe el mensaje",
}

var attemptsHint = regexp.MustCompile(`(?i)(?:intentos restantes|attempts left):\s*(\d+)`)

// HTTPClient talks to the store over its form-encoded HTTP API.
type HTTPClient struct {
	base       *url.URL
	origin     string
	http       *http.Client
	limiter    *rate.Limiter
	maxRetries uint64
	baseDelay  time.Duration
	log        logging.Logger
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client, including its timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.http = c }
}

func WithTimeout(d time.Duration) Option {
	return func(h *HTTPClient) { h.http.Timeout = d }
}

// WithRetry sets how many times a transient failure is retried and the first
// backoff delay. Later delays double.
func WithRetry(maxRetries int, baseDelay time.Duration) Option {
	return func(h *HTTPClient) {
		if maxRetries < 0 {
			maxRetries = 0
		}
		h.maxRetries = uint64(maxRetries)
		if baseDelay > 0 {
			h.baseDelay = baseDelay
		}
	}
}

// WithRateLimit caps outgoing requests. rps <= 0 disables the limit.
func WithRateLimit(rps float64) Option {
	return func(h *HTTPClient) {
		if rps <= 0 {
			h.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		h.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithOrigin sets the origin used for share links. Defaults to the store URL.
func WithOrigin(origin string) Option {
	return func(h *HTTPClient) {
		if origin != "" {
			h.origin = origin
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(h *HTTPClient) { h.log = l }
}

func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse store url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("store url must be http(s)://host[:port], got %q", baseURL)
	}

	h := &HTTPClient{
		base:       u,
		origin:     u.String(),
		http:       &http.Client{Timeout: DefaultTimeout},
		maxRetries: DefaultMaxRetries,
		baseDelay:  DefaultRetryBaseDelay,
		log:        logging.Nop(),
	}
	WithRateLimit(DefaultRequestsPerSecond)(h)

	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Link returns the share link for code.
func (h *HTTPClient) Link(code string) string {
	return ShareLink(h.origin, code)
}

func (h *HTTPClient) Store(ctx context.Context, req StoreRequest) (*StoreResult, error) {
	form := url.Values{}
	form.Set("msg1", req.Ciphertext)
	form.Set("expire", strconv.FormatInt(int64(req.Expire/time.Second), 10))
	if req.DestroyOnRead {
		form.Set("destroy", "on")
	}
	if len(req.Files) > 0 {
		b, err := json.Marshal(req.Files)
		if err != nil {
			return nil, fmt.Errorf("marshal files: %w", err)
		}
		form.Set("files", string(b))
	}

	status, body, err := h.post(ctx, "store", "/post", "", form)
	if err != nil {
		return nil, err
	}
	if err := checkStatus("store", status, body); err != nil {
		return nil, err
	}

	raw := strings.TrimSpace(string(body))
	code, err := codeFromURL(raw)
	if err != nil {
		return nil, err
	}

	h.log.Info(ctx, "message stored", "op", "store", "code", code)
	return &StoreResult{Code: code, URL: raw, Link: h.Link(code)}, nil
}

func codeFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrBadResponse, raw)
	}
	code := path.Base(strings.TrimSuffix(u.Path, "/"))
	if !common.IsCode(code) {
		return "", fmt.Errorf("%w: no code in %q", ErrBadResponse, raw)
	}
	return code, nil
}

type fetchResponse struct {
	Msg           string    `json:"msg"`
	Info          string    `json:"info"`
	DestroyOnRead looseBool `json:"destroy_on_read"`
	ExpirationTS  int64     `json:"expiration_ts"`
}

func (h *HTTPClient) Fetch(ctx context.Context, code string) (*Message, error) {
	status, body, err := h.post(ctx, "fetch", "/get", code, idForm(code))
	if err != nil {
		return nil, err
	}
	if err := checkStatus("fetch", status, body); err != nil {
		return nil, err
	}

	var resp fetchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: fetch: %v", ErrBadResponse, err)
	}
	if isNotFoundText(resp.Msg) {
		return nil, ErrNotFound
	}

	m := &Message{
		Code:          code,
		Ciphertext:    resp.Msg,
		Info:          resp.Info,
		DestroyOnRead: bool(resp.DestroyOnRead),
		AttemptsLeft:  parseAttemptsHint(resp.Info),
	}
	if resp.ExpirationTS > 0 {
		m.ExpiresAt = time.Unix(resp.ExpirationTS, 0)
	}
	return m, nil
}

func isNotFoundText(msg string) bool {
	s := strings.ToLower(strings.TrimSpace(msg))
	if s == "" {
		return true
	}
	for _, t := range notFoundTexts {
		if strings.HasPrefix(s, t) {
			return true
		}
	}
	return false
}

func parseAttemptsHint(info string) int {
	m := attemptsHint.FindStringSubmatch(info)
	if m == nil {
		return -1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return -1
	}
	return n
}

func (h *HTTPClient) FetchFiles(ctx context.Context, code string) ([]envelope.FileEntry, error) {
	status, body, err := h.post(ctx, "fetch_files", "/get_files", code, idForm(code))
	if err != nil {
		return nil, err
	}
	if err := checkStatus("fetch_files", status, body); err != nil {
		return nil, err
	}

	var resp struct {
		Files []envelope.FileEntry `json:"files"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: fetch_files: %v", ErrBadResponse, err)
	}
	return resp.Files, nil
}

type failAttemptResponse struct {
	AttemptsLeft *int   `json:"attempts_left"`
	Error        string `json:"error"`
}

func (h *HTTPClient) ReportFailedAttempt(ctx context.Context, code string) (int, error) {
	status, body, err := h.post(ctx, "fail_attempt", "/fail_attempt", code, idForm(code))
	if err != nil {
		return 0, err
	}

	var resp failAttemptResponse
	_ = json.Unmarshal(body, &resp)
	if resp.Error == "too_many_attempts" {
		return 0, ErrTooManyAttempts
	}
	if err := checkStatus("fail_attempt", status, body); err != nil {
		return 0, err
	}
	if resp.AttemptsLeft == nil {
		return 0, fmt.Errorf("%w: fail_attempt: missing attempts_left", ErrBadResponse)
	}

	left := *resp.AttemptsLeft
	if left < 0 {
		left = 0
	}
	h.log.Info(ctx, "failed attempt reported", "op", "fail_attempt", "code", code, "attempts_left", left)
	return left, nil
}

func (h *HTTPClient) Delete(ctx context.Context, code string) error {
	status, body, err := h.post(ctx, "delete", "/delete", code, idForm(code))
	if err != nil {
		return err
	}
	err = checkStatus("delete", status, body)
	if errors.Is(err, ErrNotFound) {
		h.log.Debug(ctx, "message already gone", "op", "delete", "code", code)
		return nil
	}
	if err != nil {
		return err
	}
	h.log.Info(ctx, "message deleted", "op", "delete", "code", code)
	return nil
}

func idForm(code string) url.Values {
	return url.Values{"id": {code}}
}

// checkStatus maps a final non-2xx status to an error.
func checkStatus(op string, status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return ErrNotFound
	default:
		return &StatusError{Op: op, Status: status, Body: strings.TrimSpace(string(body))}
	}
}

// post sends a form and returns the final status and body. Transport errors,
// timeouts and 5xx replies are retried with exponential backoff; once retries
// run out they come back wrapped in ErrUnavailable.
func (h *HTTPClient) post(ctx context.Context, op, p, code string, form url.Values) (int, []byte, error) {
	var (
		status  int
		body    []byte
		attempt int
	)

	b := retry.WithMaxRetries(h.maxRetries, retry.NewExponential(h.baseDelay))

	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		if err := h.limiter.Wait(ctx); err != nil {
			return err
		}

		h.log.Debug(ctx, "request", "op", op, "code", code, "attempt", attempt)

		var err error
		status, body, err = h.roundTrip(ctx, p, form)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			h.log.Warn(ctx, "request failed", "op", op, "code", code, "attempt", attempt, "error", err)
			return retry.RetryableError(fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err))
		}
		if status >= 500 {
			h.log.Warn(ctx, "store error", "op", op, "code", code, "attempt", attempt, "status", status)
			return retry.RetryableError(fmt.Errorf("%w: %s: status %d", ErrUnavailable, op, status))
		}
		return nil
	})
	if err != nil {
		h.log.Error(ctx, "request gave up", "op", op, "code", code, "attempts", attempt, "error", err)
		return 0, nil, err
	}
	return status, body, nil
}

func (h *HTTPClient) roundTrip(ctx context.Context, p string, form url.Values) (int, []byte, error) {
	u := h.base.JoinPath(p)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := h.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

// looseBool accepts true/false, 0/1 and "on".
type looseBool bool

func (b *looseBool) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	switch strings.ToLower(s) {
	case "true", "1", "on", "yes":
		*b = true
	case "false", "0", "", "null", "off", "no":
		*b = false
	default:
		return fmt.Errorf("not a boolean: %s", data)
	}
	return nil
}

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sealnote/internal/client/client"
	"github.com/dmitrijs2005/sealnote/internal/client/services"
	"github.com/dmitrijs2005/sealnote/internal/client/session"
	"github.com/dmitrijs2005/sealnote/internal/cryptox"
	"github.com/dmitrijs2005/sealnote/internal/validation"
)

type fakeExec struct {
	calls []string
	args  map[string][]string
	errs  map[string]error
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	if f.args == nil {
		f.args = map[string][]string{}
	}
	f.args[name] = args
	return f.errs[name]
}

func (f *fakeExec) Encrypt(_ context.Context, args []string) error { return f.record("encrypt", args) }
func (f *fakeExec) Decrypt(_ context.Context, args []string) error { return f.record("decrypt", args) }
func (f *fakeExec) Share(_ context.Context, args []string) error   { return f.record("share", args) }
func (f *fakeExec) Open(_ context.Context, args []string) error    { return f.record("open", args) }
func (f *fakeExec) Delete(_ context.Context, args []string) error  { return f.record("delete", args) }
func (f *fakeExec) Links(_ context.Context, args []string) error   { return f.record("links", args) }
func (f *fakeExec) QR(_ context.Context, args []string) error      { return f.record("qr", args) }

func capturePrints(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	capturePrints(t)

	input := strings.Join([]string{
		"help",
		"encrypt",
		"dec",
		"share",
		"open ABCDEFGHIJ",
		"delete https://x.test/message?code=ABCDEFGHIJ",
		"links prune",
		"qr hello world",
		"",
		"exit",
		"encrypt",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewReader(strings.NewReader(input)))

	assert.Equal(t, []string{"encrypt", "decrypt", "share", "open", "delete", "links", "qr"}, exec.calls)
	assert.Equal(t, []string{"ABCDEFGHIJ"}, exec.args["open"])
	assert.Equal(t, []string{"prune"}, exec.args["links"])
	assert.Equal(t, []string{"hello", "world"}, exec.args["qr"])
}

func TestRunREPL_UnknownCommandAndEOF(t *testing.T) {
	lines := capturePrints(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewReader(strings.NewReader("foobar\n")))

	assert.Empty(t, exec.calls)
	assert.Contains(t, *lines, "Unknown command: foobar")
}

func TestRunREPL_LastLineWithoutNewline(t *testing.T) {
	capturePrints(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewReader(strings.NewReader("links")))

	assert.Equal(t, []string{"links"}, exec.calls)
}

func TestRunREPL_PrintsErrorsAndContinues(t *testing.T) {
	lines := capturePrints(t)

	exec := &fakeExec{errs: map[string]error{"open": client.ErrNotFound}}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewReader(strings.NewReader("open x\nlinks\nquit\n")))

	assert.Equal(t, []string{"open", "links"}, exec.calls)
	assert.Contains(t, *lines, "Error: the message does not exist: it was destroyed or has expired")
}

func TestRunREPL_StopsOnCancelledContext(t *testing.T) {
	capturePrints(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExec{}
	runREPL(ctx, exec, func() string { return "s" }, bufio.NewReader(strings.NewReader("links\n")))
	assert.Empty(t, exec.calls)
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"wrong with count", &session.WrongPassphraseError{AttemptsLeft: 2}, "wrong passphrase, 2 attempts left"},
		{"wrong without count", &session.WrongPassphraseError{AttemptsLeft: -1}, "wrong passphrase"},
		{"exhausted", fmt.Errorf("%w: %w", session.ErrAttemptsExhausted, cryptox.ErrDecryptFailed), "too many wrong attempts, the message was destroyed"},
		{"expired", session.ErrExpired, "the message does not exist: it was destroyed or has expired"},
		{"decrypt", cryptox.ErrDecryptFailed, "could not decrypt: wrong passphrase or corrupted data"},
		{"unavailable", fmt.Errorf("%w: post: boom", client.ErrUnavailable), "the service is unavailable, try again later"},
		{"status", &client.StatusError{Op: "post", Status: 400}, "the service answered 400"},
		{"bad code", validation.ErrInvalidCode, "that is not a message code or link"},
		{"history", services.ErrHistoryDisabled, "link history is not available"},
		{"other", errors.New("boom"), "boom"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, describeError(tc.err))
		})
	}
}

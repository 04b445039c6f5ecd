package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/sealnote/internal/client/client"
	"github.com/dmitrijs2005/sealnote/internal/client/services"
	"github.com/dmitrijs2005/sealnote/internal/client/session"
	"github.com/dmitrijs2005/sealnote/internal/cryptox"
	"github.com/dmitrijs2005/sealnote/internal/validation"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Encrypt(ctx context.Context, args []string) error
	Decrypt(ctx context.Context, args []string) error
	Share(ctx context.Context, args []string) error
	Open(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Links(ctx context.Context, args []string) error
	QR(ctx context.Context, args []string) error
}

const helpText = `Available commands:
  encrypt            encrypt a message (and files) locally
  decrypt            decrypt a local ciphertext
  share              store an encrypted message online and print its link
  open [code|link]   fetch and decrypt an online message
  delete <code|link> delete an online message
  links [prune]      list links created from this machine
  qr <text>          render text as a QR code
  exit | quit        leave the program`

// runREPL starts a read–eval–print loop for the sealnote CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a' with the remaining tokens as arguments.
// Unknown commands are reported back to the user. The loop exits on EOF,
// when ctx is cancelled, or when the user types "exit" or "quit".
//
// Errors returned by command handlers are printed in a user-facing form and
// the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("sn> %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		var cmdErr error
		switch cmd {
		case "help", "?":
			printlnFn(helpText)

		case "encrypt", "enc":
			cmdErr = a.Encrypt(ctx, args)

		case "decrypt", "dec":
			cmdErr = a.Decrypt(ctx, args)

		case "share":
			cmdErr = a.Share(ctx, args)

		case "open":
			cmdErr = a.Open(ctx, args)

		case "delete", "del":
			cmdErr = a.Delete(ctx, args)

		case "links", "l":
			cmdErr = a.Links(ctx, args)

		case "qr":
			cmdErr = a.QR(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", describeError(cmdErr))
		}
	}
}

// describeError maps known failures to short user-facing text.
func describeError(err error) string {
	var wrong *session.WrongPassphraseError
	var status *client.StatusError

	switch {
	case errors.As(err, &wrong):
		if wrong.AttemptsLeft >= 0 {
			return fmt.Sprintf("wrong passphrase, %d attempts left", wrong.AttemptsLeft)
		}
		return "wrong passphrase"
	case errors.Is(err, session.ErrAttemptsExhausted):
		return "too many wrong attempts, the message was destroyed"
	case errors.Is(err, session.ErrExpired), errors.Is(err, client.ErrNotFound):
		return "the message does not exist: it was destroyed or has expired"
	case errors.Is(err, cryptox.ErrDecryptFailed):
		return "could not decrypt: wrong passphrase or corrupted data"
	case errors.Is(err, client.ErrUnavailable):
		return "the service is unavailable, try again later"
	case errors.As(err, &status):
		return fmt.Sprintf("the service answered %d", status.Status)
	case errors.Is(err, client.ErrBadResponse):
		return "the service sent an unexpected response"
	case errors.Is(err, validation.ErrInvalidCode):
		return "that is not a message code or link"
	case errors.Is(err, services.ErrHistoryDisabled):
		return "link history is not available"
	}
	return err.Error()
}

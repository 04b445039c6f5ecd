package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	humanize "github.com/dustin/go-humanize"
	"github.com/katzenpost/qrterminal"

	"github.com/dmitrijs2005/sealnote/internal/client/models"
	"github.com/dmitrijs2005/sealnote/internal/client/services"
	"github.com/dmitrijs2005/sealnote/internal/client/session"
	"github.com/dmitrijs2005/sealnote/internal/common"
	"github.com/dmitrijs2005/sealnote/internal/cryptox"
	"github.com/dmitrijs2005/sealnote/internal/envelope"
)

var (
	errCancelled = errors.New("cancelled")
	errQRTooLong = fmt.Errorf("text is longer than %d characters, too long for a QR code", common.QRMaxChars)
	errBadExpire = errors.New("unknown expiration, use never, 30s, 1d, 1w or 1m")
)

func (a *App) Encrypt(ctx context.Context, _ []string) error {
	msg, err := GetMultiline(a.reader, "Message", a.out)
	if err != nil {
		return err
	}
	files, err := GetFiles(a.reader, a.out)
	if err != nil {
		return err
	}
	pass, err := a.readPassphrase("Passphrase")
	if err != nil {
		return err
	}

	blob, err := a.local.Encrypt(ctx, msg, files, pass)
	if err != nil {
		return err
	}

	a.println("Encrypted message:")
	a.println(blob)
	return nil
}

func (a *App) Decrypt(ctx context.Context, _ []string) error {
	blob, err := GetMultiline(a.reader, "Encrypted message", a.out)
	if err != nil {
		return err
	}
	pass, err := a.readPassphrase("Passphrase")
	if err != nil {
		return err
	}

	opened, err := a.local.Decrypt(ctx, blob, pass)
	if err != nil {
		return err
	}
	if scheme, ok := cryptox.DetectScheme(cryptox.NormalizeFromTransport(blob)); ok {
		a.printf("Format: %s\n", scheme)
	}
	return a.showOpened(opened)
}

func (a *App) Share(ctx context.Context, _ []string) error {
	msg, err := GetMultiline(a.reader, "Message", a.out)
	if err != nil {
		return err
	}
	files, err := GetFiles(a.reader, a.out)
	if err != nil {
		return err
	}
	answer, err := GetSimpleText(a.reader, "Expire after (never, 30s, 1d, 1w, 1m) [1w]", a.out)
	if err != nil {
		return err
	}
	expire, err := parseExpire(answer)
	if err != nil {
		return err
	}
	destroy, err := GetYesNo(a.reader, "Destroy after reading?", a.out)
	if err != nil {
		return err
	}
	pass, err := a.readPassphrase("Passphrase")
	if err != nil {
		return err
	}

	link, err := a.share.Share(ctx, models.ShareRequest{
		Message:       msg,
		Files:         files,
		Passphrase:    pass,
		Expire:        expire,
		DestroyOnRead: destroy,
	})
	if err != nil {
		return err
	}

	a.println("Share this link:")
	a.println(link.URL)
	if link.ExpiresAt.IsZero() {
		a.println("The link never expires.")
	} else {
		a.printf("The link expires %s.\n", humanize.RelTime(link.ExpiresAt, a.clock.Now(), "ago", "from now"))
	}
	if utf8.RuneCountInString(link.URL) <= common.QRMaxChars {
		a.renderQR(link.URL)
	}
	return nil
}

func (a *App) Open(ctx context.Context, args []string) error {
	input, err := a.argOrPrompt(args, "Message code or link")
	if err != nil {
		return err
	}

	sess, err := a.share.Open(ctx, input, session.WithOnExpire(func(code string) {
		a.printf("\nMessage %s has expired and can no longer be opened.\n", code)
	}))
	if sess != nil {
		defer sess.Close()
	}
	if err != nil {
		return err
	}
	return a.readSession(ctx, sess)
}

// readSession prompts for the passphrase until the message opens, the user
// cancels or the session ends. A destroy-on-read message is deleted after it
// is shown.
func (a *App) readSession(ctx context.Context, sess *session.Session) error {
	if l, err := a.share.Link(ctx, sess.Code()); err == nil {
		a.printf("You shared this message %s.\n", humanize.RelTime(l.CreatedAt, a.clock.Now(), "ago", "from now"))
	}
	if sess.ExpiresAt().IsZero() {
		a.println("This message does not expire.")
	} else {
		a.printf("This message expires in %s.\n", sess.Remaining().Round(time.Second))
	}
	if sess.DestroyOnRead() {
		a.println("This message will be destroyed after reading.")
	}
	if left, ok := sess.AttemptsLeft(); ok {
		a.printf("Attempts left: %d\n", left)
	}

	for {
		pass, err := a.readPassphrase("Passphrase (empty to cancel)")
		if err != nil {
			return err
		}
		if pass == "" {
			a.println("Cancelled.")
			return nil
		}

		opened, err := sess.Decrypt(ctx, pass)
		var wrong *session.WrongPassphraseError
		if errors.As(err, &wrong) {
			a.println(describeError(err))
			continue
		}
		if err != nil {
			return err
		}

		if err := a.showOpened(opened); err != nil {
			return err
		}
		if opened.DestroyOnRead {
			if err := a.share.Destroy(ctx, sess); err != nil {
				a.printf("Could not destroy the message: %s\n", describeError(err))
				return nil
			}
			a.println("The message has been destroyed.")
		}
		return nil
	}
}

func (a *App) Delete(ctx context.Context, args []string) error {
	input, err := a.argOrPrompt(args, "Message code or link")
	if err != nil {
		return err
	}
	if err := a.share.Delete(ctx, input); err != nil {
		return err
	}
	a.println("Deleted.")
	return nil
}

func (a *App) Links(ctx context.Context, args []string) error {
	prune := len(args) > 0 && strings.EqualFold(args[0], "prune")

	list, err := a.share.Links(ctx, prune)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.println("No links yet.")
		return nil
	}

	now := a.clock.Now()

	a.outMu.Lock()
	defer a.outMu.Unlock()
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tSTATUS\tEXPIRES\tDESTROY\tLINK")
	for _, l := range list {
		expires := "never"
		if !l.ExpiresAt.IsZero() {
			expires = humanize.RelTime(l.ExpiresAt, now, "ago", "from now")
		}
		destroy := "no"
		if l.DestroyOnRead {
			destroy = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", l.Code, l.Status(now), expires, destroy, l.URL)
	}
	return tw.Flush()
}

func (a *App) QR(_ context.Context, args []string) error {
	text := strings.Join(args, " ")
	if text == "" {
		var err error
		if text, err = GetSimpleText(a.reader, "Text to encode", a.out); err != nil {
			return err
		}
	}
	if text == "" {
		return errCancelled
	}
	if utf8.RuneCountInString(text) > common.QRMaxChars {
		return errQRTooLong
	}
	a.renderQR(text)
	return nil
}

func (a *App) renderQR(text string) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	qrterminal.GenerateWithConfig(text, qrterminal.Config{
		Level:      qrterminal.L,
		Writer:     a.out,
		HalfBlocks: true,
		QuietZone:  1,
	})
}

// showOpened prints the message and saves its attachments to the download
// directory.
func (a *App) showOpened(m *models.OpenedMessage) error {
	a.println("----- message -----")
	if m.Message == "" {
		a.println("(no text)")
	} else {
		a.println(m.Message)
	}
	a.println("-------------------")

	if len(m.Files) == 0 {
		return nil
	}
	saved, err := services.SaveAttachments(a.config.DownloadDir, m.Files)
	if err != nil {
		return err
	}
	a.printf("%d attachment(s):\n", len(saved))
	for _, f := range saved {
		if f.Err != nil {
			a.printf("  %s: %s\n", f.Name, describeError(f.Err))
			continue
		}
		a.printf("  %s (%s, %s) saved to %s\n", f.Name, kind(f), humanize.Bytes(uint64(f.Size)), f.Path)
	}
	return nil
}

// kind labels a saved attachment by its media type.
func kind(f models.SavedFile) string {
	entry := envelope.FileEntry{Name: f.Name}
	if entry.IsImage() {
		return "image " + entry.MIMEType()
	}
	return entry.MIMEType()
}

func (a *App) argOrPrompt(args []string, prompt string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	s, err := GetSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", errCancelled
	}
	return s, nil
}

// parseExpire maps the user's answer to an expiration. Empty selects the
// default.
func parseExpire(s string) (time.Duration, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return common.DefaultExpire, nil
	case "never", "0", "none":
		return common.ExpireNever, nil
	case "30s":
		return common.Expire30Sec, nil
	case "1d", "day":
		return common.Expire1Day, nil
	case "1w", "week":
		return common.Expire1Week, nil
	case "1m", "month":
		return common.Expire1Month, nil
	}
	return 0, errBadExpire
}

package services

import (
	"context"
	"database/sql"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sealnote/internal/client/client"
	"github.com/dmitrijs2005/sealnote/internal/client/client/clienttest"
	"github.com/dmitrijs2005/sealnote/internal/client/models"
	"github.com/dmitrijs2005/sealnote/internal/client/session"
	"github.com/dmitrijs2005/sealnote/internal/cryptox"
	"github.com/dmitrijs2005/sealnote/internal/envelope"
	"github.com/dmitrijs2005/sealnote/internal/logging"
	"github.com/dmitrijs2005/sealnote/internal/validation"
)

const key = "correct horse battery staple"

type env struct {
	svc   ShareService
	store *clienttest.Store
	db    *sql.DB
	clock *clock.Mock
}

func setup(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	mock := clock.NewMock()
	mock.Set(time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC))

	store := clienttest.New(clienttest.WithClock(mock))
	srv := httptest.NewServer(store)
	t.Cleanup(srv.Close)

	c, err := client.NewHTTPClient(srv.URL,
		client.WithRetry(1, time.Millisecond),
		client.WithRateLimit(0),
		client.WithOrigin("https://notes.example.com"))
	require.NoError(t, err)

	db, err := client.InitDatabase(ctx, filepath.Join(t.TempDir(), "links.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc := NewShareService(c, cryptox.New(cryptox.SchemeOpenSSL), db, WithClock(mock))
	return &env{svc: svc, store: store, db: db, clock: mock}
}

func TestLocal_RoundTripWithFile(t *testing.T) {
	ctx := context.Background()
	svc := NewLocalService(cryptox.New(cryptox.SchemeOpenSSL), logging.Nop())

	files := []envelope.RawFile{{Name: "note.txt", Data: []byte("attached")}}
	blob, err := svc.Encrypt(ctx, "  hello  ", files, key)
	require.NoError(t, err)
	for _, line := range splitLines(blob) {
		assert.LessOrEqual(t, len(line), cryptox.LineWidth)
	}

	opened, err := svc.Decrypt(ctx, blob, key)
	require.NoError(t, err)
	assert.Equal(t, "hello", opened.Message)
	assert.Equal(t, envelope.KindStructured, opened.Kind)
	require.Len(t, opened.Files, 1)
	data, err := opened.Files[0].File.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "attached", string(data))

	_, err = svc.Decrypt(ctx, blob, "wrong")
	require.ErrorIs(t, err, cryptox.ErrDecryptFailed)
}

func TestLocal_Validation(t *testing.T) {
	ctx := context.Background()
	svc := NewLocalService(cryptox.New(cryptox.SchemeOpenSSL), logging.Nop())

	_, err := svc.Encrypt(ctx, "hello", nil, "short")
	require.ErrorIs(t, err, validation.ErrPassphraseTooShort)

	_, err = svc.Encrypt(ctx, "   ", nil, key)
	require.ErrorIs(t, err, validation.ErrEmptyContent)

	_, err = svc.Decrypt(ctx, "U2FsdGVkX1", "")
	require.ErrorIs(t, err, validation.ErrEmptyPassphrase)

	_, err = svc.Decrypt(ctx, " \n ", key)
	require.ErrorIs(t, err, ErrEmptyCiphertext)
}

func TestLocal_DecryptsLegacyPlainPayload(t *testing.T) {
	c := cryptox.New(cryptox.SchemeOpenSSL)
	blob, err := c.Encrypt("just text from an old client", key)
	require.NoError(t, err)

	opened, err := NewLocalService(c, logging.Nop()).Decrypt(context.Background(), blob, key)
	require.NoError(t, err)
	assert.Equal(t, envelope.KindPlain, opened.Kind)
	assert.Equal(t, "just text from an old client", opened.Message)
	assert.Empty(t, opened.Files)
}

func TestShare_OpenWithLink(t *testing.T) {
	ctx := context.Background()
	e := setup(t)

	link, err := e.svc.Share(ctx, models.ShareRequest{
		Message:    " hello ",
		Files:      []envelope.RawFile{{Name: "a.txt", Data: []byte("A")}},
		Passphrase: key,
		Expire:     time.Hour,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://notes.example.com/message?code="+link.Code, link.URL)
	assert.True(t, e.store.Has(link.Code))

	sess, err := e.svc.Open(ctx, link.URL)
	require.NoError(t, err)
	defer sess.Close()
	assert.Equal(t, session.Loaded, sess.State())

	opened, err := sess.Decrypt(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "hello", opened.Message)
	require.Len(t, opened.Files, 1)
	data, err := opened.Files[0].File.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "A", string(data))

	history, err := e.svc.Links(ctx, false)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, link.Code, history[0].Code)
	assert.Equal(t, models.LinkActive, history[0].Status(e.clock.Now()))
}

func TestShare_FilesOnly(t *testing.T) {
	ctx := context.Background()
	e := setup(t)

	link, err := e.svc.Share(ctx, models.ShareRequest{
		Files:      []envelope.RawFile{{Name: "only.bin", Data: []byte{0, 1, 2}}},
		Passphrase: key,
	})
	require.NoError(t, err)

	sess, err := e.svc.Open(ctx, link.Code)
	require.NoError(t, err)
	defer sess.Close()

	opened, err := sess.Decrypt(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, opened.Message)
	require.Len(t, opened.Files, 1)
	assert.True(t, opened.Files[0].OK())
}

func TestShare_ValidationNeverReachesStore(t *testing.T) {
	ctx := context.Background()
	e := setup(t)

	_, err := e.svc.Share(ctx, models.ShareRequest{Message: "hi", Passphrase: "short"})
	require.ErrorIs(t, err, validation.ErrPassphraseTooShort)

	_, err = e.svc.Share(ctx, models.ShareRequest{Message: "bad\x00", Passphrase: key})
	require.ErrorIs(t, err, validation.ErrMessageInvalidChars)

	assert.Zero(t, e.store.Calls("/post"))
}

func TestShare_StoreUnavailable(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	e.store.FailNext("/post", 10)

	_, err := e.svc.Share(ctx, models.ShareRequest{Message: "hi", Passphrase: key})
	require.ErrorIs(t, err, client.ErrUnavailable)

	history, err := e.svc.Links(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestDelete_UpdatesHistory(t *testing.T) {
	ctx := context.Background()
	e := setup(t)

	link, err := e.svc.Share(ctx, models.ShareRequest{Message: "hi", Passphrase: key, DestroyOnRead: true})
	require.NoError(t, err)

	require.NoError(t, e.svc.Delete(ctx, link.URL))
	assert.False(t, e.store.Has(link.Code))
	require.NoError(t, e.svc.Delete(ctx, link.Code), "delete is idempotent")

	history, err := e.svc.Links(ctx, false)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].Deleted)

	pruned, err := e.svc.Links(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, pruned)
}

func TestDestroy_MovesSessionToDeleted(t *testing.T) {
	ctx := context.Background()
	e := setup(t)

	link, err := e.svc.Share(ctx, models.ShareRequest{Message: "read once", Passphrase: key, DestroyOnRead: true})
	require.NoError(t, err)

	own, err := e.svc.Link(ctx, link.Code)
	require.NoError(t, err)
	assert.Equal(t, link.URL, own.URL)
	assert.False(t, own.Deleted)

	sess, err := e.svc.Open(ctx, link.Code)
	require.NoError(t, err)
	t.Cleanup(sess.Close)

	opened, err := sess.Decrypt(ctx, key)
	require.NoError(t, err)
	assert.True(t, opened.DestroyOnRead)

	require.NoError(t, e.svc.Destroy(ctx, sess))
	assert.Equal(t, session.Deleted, sess.State())
	assert.False(t, e.store.Has(link.Code))

	own, err = e.svc.Link(ctx, link.Code)
	require.NoError(t, err)
	assert.True(t, own.Deleted)

	require.ErrorIs(t, e.svc.Destroy(ctx, sess), session.ErrInvalidTransition)
}

func TestOpen_Expired(t *testing.T) {
	ctx := context.Background()
	e := setup(t)

	link, err := e.svc.Share(ctx, models.ShareRequest{Message: "hi", Passphrase: key, Expire: 30 * time.Second})
	require.NoError(t, err)

	e.clock.Add(31 * time.Second)

	sess, err := e.svc.Open(ctx, link.Code)
	require.ErrorIs(t, err, client.ErrNotFound)
	require.NotNil(t, sess)
	assert.Equal(t, session.Expired, sess.State())

	history, err := e.svc.Links(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestOpen_InvalidInput(t *testing.T) {
	e := setup(t)
	_, err := e.svc.Open(context.Background(), "not a code")
	require.ErrorIs(t, err, validation.ErrInvalidCode)
	assert.Zero(t, e.store.Calls("/get"))
}

func TestLinks_WithoutHistory(t *testing.T) {
	svc := NewShareService(nil, cryptox.New(cryptox.SchemeOpenSSL), nil)
	_, err := svc.Links(context.Background(), false)
	require.ErrorIs(t, err, ErrHistoryDisabled)

	_, err = svc.Link(context.Background(), "AbCdE12345")
	require.ErrorIs(t, err, ErrHistoryDisabled)
}

func TestSaveAttachments(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "downloads")
	results := []envelope.FileResult{
		{File: envelope.FileEntry{Name: "../evil.txt", Content: "aGk=", Size: 2}},
		{File: envelope.FileEntry{Name: "bad.bin"}, Err: cryptox.ErrDecryptFailed},
		{File: envelope.FileEntry{Name: "evil.txt", Content: "eW8=", Size: 2}},
	}

	saved, err := SaveAttachments(dir, results)
	require.NoError(t, err)
	require.Len(t, saved, 3)

	require.NoError(t, saved[0].Err)
	assert.Equal(t, filepath.Join(dir, "evil.txt"), saved[0].Path)
	b, err := os.ReadFile(saved[0].Path)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(b))

	require.ErrorIs(t, saved[1].Err, cryptox.ErrDecryptFailed)
	assert.Empty(t, saved[1].Path)

	require.NoError(t, saved[2].Err)
	assert.Equal(t, filepath.Join(dir, "evil (1).txt"), saved[2].Path)

	none, err := SaveAttachments(dir, nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/benbjohnson/clock"

	"github.com/dmitrijs2005/sealnote/internal/client/client"
	"github.com/dmitrijs2005/sealnote/internal/client/models"
	"github.com/dmitrijs2005/sealnote/internal/client/repositories/links"
	"github.com/dmitrijs2005/sealnote/internal/client/session"
	"github.com/dmitrijs2005/sealnote/internal/dbx"
	"github.com/dmitrijs2005/sealnote/internal/envelope"
	"github.com/dmitrijs2005/sealnote/internal/logging"
	"github.com/dmitrijs2005/sealnote/internal/validation"
)

// ShareService publishes and opens messages through the remote store.
//
// Contract:
//   - Share validates, encrypts the message and each file, stores them and
//     records the link locally. Nothing reaches the network if validation fails.
//   - Open accepts a code or a link and returns a loaded Session. The session
//     is returned even when loading ends it (expired or not found), together
//     with the error.
//   - Delete removes the message remotely and marks it deleted locally.
//   - Destroy does the same for an open session, moving it to Deleted.
//   - Links lists the local history, optionally pruning dead rows first.
//   - Link returns the history row of a code shared from this machine.
type ShareService interface {
	Share(ctx context.Context, req models.ShareRequest) (*models.Link, error)
	Open(ctx context.Context, input string, opts ...session.Option) (*session.Session, error)
	Delete(ctx context.Context, input string) error
	Destroy(ctx context.Context, sess *session.Session) error
	Links(ctx context.Context, prune bool) ([]models.Link, error)
	Link(ctx context.Context, code string) (*models.Link, error)
}

type shareService struct {
	client client.Client
	cipher envelope.Cipher
	db     *sql.DB
	clock  clock.Clock
	log    logging.Logger
	linkFn func(code string) string
}

type ShareOption func(*shareService)

func WithClock(c clock.Clock) ShareOption {
	return func(s *shareService) { s.clock = c }
}

func WithShareLogger(l logging.Logger) ShareOption {
	return func(s *shareService) { s.log = l }
}

// NewShareService wires the service. db holds the link history and may be nil,
// in which case no history is kept.
func NewShareService(c client.Client, cipher envelope.Cipher, db *sql.DB, opts ...ShareOption) ShareService {
	s := &shareService{
		client: c,
		cipher: cipher,
		db:     db,
		clock:  clock.New(),
		log:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var ErrHistoryDisabled = errors.New("link history is not configured")

func (s *shareService) Share(ctx context.Context, req models.ShareRequest) (*models.Link, error) {
	if err := validation.ValidateKeyForEncrypt(req.Passphrase); err != nil {
		return nil, err
	}
	if err := validation.ValidateContent(req.Message, len(req.Files)); err != nil {
		return nil, err
	}

	env := envelope.Encode(strings.TrimSpace(req.Message), req.Files)

	doc, err := envelope.Serialize(envelope.Envelope{Message: env.Message})
	if err != nil {
		return nil, err
	}
	primary, err := s.cipher.Encrypt(doc, req.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("encrypt message: %w", err)
	}

	results := envelope.EncryptFiles(s.cipher, env.Files, req.Passphrase)
	if err := envelope.FirstError(results); err != nil {
		return nil, fmt.Errorf("encrypt files: %w", err)
	}

	res, err := s.client.Store(ctx, client.StoreRequest{
		Ciphertext:    primary,
		Expire:        req.Expire,
		DestroyOnRead: req.DestroyOnRead,
		Files:         envelope.Entries(results),
	})
	if err != nil {
		return nil, err
	}

	link := models.NewLink(res.Code, res.Link, req.Expire, req.DestroyOnRead, s.clock.Now())
	if s.db != nil {
		if err := links.NewSQLiteRepository(s.db).Insert(ctx, link); err != nil {
			s.log.Warn(ctx, "could not record link", "code", res.Code, "error", err)
		}
	}

	s.log.Info(ctx, "message shared", "code", res.Code, "files", len(results), "expire", req.Expire, "destroy_on_read", req.DestroyOnRead)
	return link, nil
}

func (s *shareService) Open(ctx context.Context, input string, opts ...session.Option) (*session.Session, error) {
	code, err := validation.ParseCode(input)
	if err != nil {
		return nil, err
	}

	base := []session.Option{session.WithClock(s.clock), session.WithLogger(s.log)}
	sess := session.New(s.client, s.cipher, code, append(base, opts...)...)

	if err := sess.Load(ctx); err != nil {
		if errors.Is(err, client.ErrNotFound) {
			s.markDeleted(ctx, code)
		}
		if sess.State().Terminal() {
			return sess, err
		}
		return nil, err
	}
	return sess, nil
}

func (s *shareService) Delete(ctx context.Context, input string) error {
	code, err := validation.ParseCode(input)
	if err != nil {
		return err
	}
	if err := s.client.Delete(ctx, code); err != nil {
		return err
	}
	s.markDeleted(ctx, code)
	return nil
}

func (s *shareService) Destroy(ctx context.Context, sess *session.Session) error {
	if err := sess.Delete(ctx); err != nil {
		return err
	}
	s.markDeleted(ctx, sess.Code())
	return nil
}

// markDeleted updates the local history. Failures are logged only; the
// store is the authority.
func (s *shareService) markDeleted(ctx context.Context, code string) {
	if s.db == nil {
		return
	}
	if _, err := links.NewSQLiteRepository(s.db).MarkDeleted(ctx, code); err != nil {
		s.log.Warn(ctx, "could not update link history", "code", code, "error", err)
	}
}

func (s *shareService) Links(ctx context.Context, prune bool) ([]models.Link, error) {
	if s.db == nil {
		return nil, ErrHistoryDisabled
	}

	return dbx.WithTxValue(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) ([]models.Link, error) {
		repo := links.NewSQLiteRepository(tx)
		if prune {
			n, err := repo.Prune(ctx, s.clock.Now())
			if err != nil {
				return nil, err
			}
			if n > 0 {
				s.log.Debug(ctx, "pruned link history", "rows", n)
			}
		}
		return repo.List(ctx)
	})
}

func (s *shareService) Link(ctx context.Context, code string) (*models.Link, error) {
	if s.db == nil {
		return nil, ErrHistoryDisabled
	}
	return links.NewSQLiteRepository(s.db).GetByCode(ctx, code)
}

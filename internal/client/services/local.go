package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/sealnote/internal/client/models"
	"github.com/dmitrijs2005/sealnote/internal/cryptox"
	"github.com/dmitrijs2005/sealnote/internal/envelope"
	"github.com/dmitrijs2005/sealnote/internal/logging"
	"github.com/dmitrijs2005/sealnote/internal/validation"
)

var ErrEmptyCiphertext = errors.New("nothing to decrypt")

// LocalService seals and opens messages without a server.
type LocalService interface {
	// Encrypt returns the transport-formatted blob for message and files.
	Encrypt(ctx context.Context, message string, files []envelope.RawFile, passphrase string) (string, error)
	// Decrypt opens a blob that may still carry transport line breaks.
	Decrypt(ctx context.Context, blob, passphrase string) (*models.OpenedMessage, error)
}

type localService struct {
	cipher envelope.Cipher
	log    logging.Logger
}

func NewLocalService(cipher envelope.Cipher, log logging.Logger) LocalService {
	return &localService{cipher: cipher, log: log}
}

func (s *localService) Encrypt(ctx context.Context, message string, files []envelope.RawFile, passphrase string) (string, error) {
	if err := validation.ValidateKeyForEncrypt(passphrase); err != nil {
		return "", err
	}
	if err := validation.ValidateContent(message, len(files)); err != nil {
		return "", err
	}

	env := envelope.Encode(strings.TrimSpace(message), files)
	blob, err := envelope.Seal(s.cipher, env, passphrase)
	if err != nil {
		return "", err
	}

	s.log.Debug(ctx, "message sealed", "files", len(files), "bytes", len(blob))
	return cryptox.FormatForTransport(blob), nil
}

func (s *localService) Decrypt(ctx context.Context, blob, passphrase string) (*models.OpenedMessage, error) {
	if err := validation.ValidateKeyForDecrypt(passphrase); err != nil {
		return nil, err
	}
	clean := cryptox.NormalizeFromTransport(blob)
	if clean == "" {
		return nil, ErrEmptyCiphertext
	}

	opened, err := envelope.Open(s.cipher, clean, passphrase)
	if err != nil {
		return nil, err
	}

	if err := envelope.FirstError(opened.Files); err != nil {
		s.log.Warn(ctx, "some attachments could not be decrypted", "error", err)
	}
	return &models.OpenedMessage{
		Message: opened.Message(),
		Kind:    opened.Decoded.Kind,
		Files:   opened.Files,
	}, nil
}

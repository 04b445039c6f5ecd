package envelope

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sealnote/internal/cryptox"
)

// Cipher is the passphrase cipher the codec applies per file.
type Cipher interface {
	Encrypt(plaintext, passphrase string) (string, error)
	Decrypt(blob, passphrase string) (string, error)
}

// ErrInvalidContent is reported for a file whose decrypted content is not base64.
var ErrInvalidContent = errors.New("decrypted content is not valid base64")

// FileResult is the outcome for one file of a batch. On failure File keeps
// name and size, Content is empty and Err says why.
type FileResult struct {
	File FileEntry
	Err  error
}

// OK reports whether the file was processed.
func (r FileResult) OK() bool {
	return r.Err == nil
}

// EncryptFiles encrypts the base64 content of every file independently.
func EncryptFiles(c Cipher, files []FileEntry, passphrase string) []FileResult {
	out := make([]FileResult, len(files))
	for i, f := range files {
		blob, err := c.Encrypt(f.Content, passphrase)
		if err != nil {
			out[i] = failed(f, err)
			continue
		}
		f.Content = blob
		out[i] = FileResult{File: f}
	}
	return out
}

// DecryptFiles is the inverse of EncryptFiles. A file counts as decrypted only
// when the cipher succeeds and the result is valid base64. A zero-size file
// opens to empty content.
func DecryptFiles(c Cipher, files []FileEntry, passphrase string) []FileResult {
	out := make([]FileResult, len(files))
	for i, f := range files {
		plain, err := c.Decrypt(f.Content, passphrase)
		if f.Size == 0 && errors.Is(err, cryptox.ErrEmptyPlaintext) {
			plain, err = "", nil
		}
		if err != nil {
			out[i] = failed(f, err)
			continue
		}
		if _, err := base64.StdEncoding.DecodeString(plain); err != nil {
			out[i] = failed(f, ErrInvalidContent)
			continue
		}
		f.Content = plain
		out[i] = FileResult{File: f}
	}
	return out
}

// Entries returns the files of the successful results, in order.
func Entries(results []FileResult) []FileEntry {
	files := make([]FileEntry, 0, len(results))
	for _, r := range results {
		if r.OK() {
			files = append(files, r.File)
		}
	}
	return files
}

// FirstError returns the first failure of a batch, annotated with the file name.
func FirstError(results []FileResult) error {
	for _, r := range results {
		if r.Err != nil {
			return fmt.Errorf("file %q: %w", r.File.Name, r.Err)
		}
	}
	return nil
}

func failed(f FileEntry, err error) FileResult {
	f.Content = ""
	return FileResult{File: f, Err: err}
}

package envelope

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// FileEntry is one attachment. Content is base64 or a cipher blob depending
// on the pipeline stage.
type FileEntry struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Size    int64  `json:"size"`
}

// Envelope is the unit that gets serialized and encrypted.
type Envelope struct {
	Message string      `json:"message"`
	Files   []FileEntry `json:"files"`
}

// IsEmpty reports whether there is neither text nor files. The codec does not
// reject empty envelopes; that is a caller policy.
func (e Envelope) IsEmpty() bool {
	return strings.TrimSpace(e.Message) == "" && len(e.Files) == 0
}

// RawFile is an attachment as selected by the user, before encoding.
type RawFile struct {
	Name string
	Data []byte
}

// ReadFile loads path into a RawFile named after its base name.
func ReadFile(path string) (RawFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RawFile{}, fmt.Errorf("read attachment: %w", err)
	}
	return RawFile{Name: filepath.Base(path), Data: data}, nil
}

// Encode packages message and files, base64-encoding every file. It does not encrypt.
func Encode(message string, files []RawFile) Envelope {
	entries := make([]FileEntry, 0, len(files))
	for _, f := range files {
		entries = append(entries, FileEntry{
			Name:    f.Name,
			Content: base64.StdEncoding.EncodeToString(f.Data),
			Size:    int64(len(f.Data)),
		})
	}
	return Envelope{Message: message, Files: entries}
}

// Bytes decodes the base64 content of a plaintext-stage entry.
func (f FileEntry) Bytes() ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(f.Content)
	if err != nil {
		return nil, fmt.Errorf("file %q: invalid base64 content: %w", f.Name, err)
	}
	return b, nil
}

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".bmp": {}, ".webp": {}, ".svg": {},
}

// IsImage infers from the extension whether the file can be previewed as an image.
func (f FileEntry) IsImage() bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(f.Name))]
	return ok
}

// MIMEType infers the media type from the extension.
func (f FileEntry) MIMEType() string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(f.Name))); t != "" {
		return t
	}
	return "application/octet-stream"
}

// Serialize renders the canonical JSON document. A nil file list is written as [].
func Serialize(e Envelope) (string, error) {
	if e.Files == nil {
		e.Files = []FileEntry{}
	}
	b, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("serialize envelope: %w", err)
	}
	return string(b), nil
}

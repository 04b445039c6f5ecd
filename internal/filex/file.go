package filex

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var ErrEmptyName = errors.New("empty file name")

// EnsureSubdDir creates dirName under the working directory and returns its
// absolute path.
func EnsureSubdDir(dirName string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}
	return EnsureDir(filepath.Join(cwd, dirName))
}

// EnsureDir creates dir (absolute or relative) if missing.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}
	return abs, nil
}

// SanitizeName reduces an untrusted attachment name to a single path element.
// Directory parts are dropped and separators, control characters and leading
// dots are removed, so the result can never escape the target directory.
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r < 0x20 || r == 0x7f:
		case r == '/' || r == ':' || r == '*' || r == '?' || r == '"' || r == '<' || r == '>' || r == '|':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}

	clean := strings.TrimLeft(strings.TrimSpace(b.String()), ".")
	return clean
}

// WriteUnique writes data into dir under the sanitized name. An existing file
// is never overwritten: "a.txt" becomes "a (1).txt", "a (2).txt" and so on.
// The full path of the written file is returned.
func WriteUnique(dir, name string, data []byte) (string, error) {
	clean := SanitizeName(name)
	if clean == "" {
		return "", ErrEmptyName
	}

	ext := filepath.Ext(clean)
	stem := strings.TrimSuffix(clean, ext)

	for i := 0; ; i++ {
		candidate := clean
		if i > 0 {
			candidate = stem + " (" + strconv.Itoa(i) + ")" + ext
		}
		path := filepath.Join(dir, candidate)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o660)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create %s: %w", path, err)
		}

		if _, err := f.Write(data); err != nil {
			_ = f.Close()
			return "", fmt.Errorf("write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close %s: %w", path, err)
		}
		return path, nil
	}
}

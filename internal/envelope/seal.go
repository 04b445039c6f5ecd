package envelope

import "fmt"

// Opened is a decrypted payload together with its per-file outcomes.
type Opened struct {
	Decoded Decoded
	Files   []FileResult
}

// Message returns the decoded message text.
func (o Opened) Message() string {
	return o.Decoded.Envelope.Message
}

// Seal encrypts every file, then the whole serialized envelope, and returns
// the outer blob. Unlike EncryptFiles it fails if any file cannot be encrypted,
// since a partially encrypted envelope must never be produced.
func Seal(c Cipher, env Envelope, passphrase string) (string, error) {
	results := EncryptFiles(c, env.Files, passphrase)
	if err := FirstError(results); err != nil {
		return "", fmt.Errorf("seal: %w", err)
	}

	sealed := Envelope{Message: env.Message, Files: Entries(results)}
	doc, err := Serialize(sealed)
	if err != nil {
		return "", err
	}
	return c.Encrypt(doc, passphrase)
}

// Open decrypts blob, interprets the payload and decrypts the embedded files.
// Only a failure of the outer blob is returned as an error; file failures are
// reported per file.
func Open(c Cipher, blob, passphrase string) (Opened, error) {
	doc, err := c.Decrypt(blob, passphrase)
	if err != nil {
		return Opened{}, err
	}
	decoded := Deserialize(doc)
	return Opened{
		Decoded: decoded,
		Files:   DecryptFiles(c, decoded.Envelope.Files, passphrase),
	}, nil
}

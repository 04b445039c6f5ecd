package envelope

import (
	"encoding/json"
)

// Kind tells how a decrypted payload was interpreted.
type Kind int

const (
	// KindPlain is legacy or free text: the whole payload is the message.
	KindPlain Kind = iota
	// KindStructured is a JSON envelope with message and files.
	KindStructured
)

func (k Kind) String() string {
	if k == KindStructured {
		return "structured"
	}
	return "plain"
}

// Decoded is the result of Deserialize. Envelope is always populated; for
// KindPlain it holds the input as Message and no files.
type Decoded struct {
	Kind     Kind
	Envelope Envelope
}

// Deserialize interprets text as a JSON envelope when it is an object that
// has a "message" (string or null) and a non-null "files" array. Anything
// else, including invalid JSON, becomes a plain message.
func Deserialize(text string) Decoded {
	plain := Decoded{Kind: KindPlain, Envelope: Envelope{Message: text, Files: []FileEntry{}}}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return plain
	}

	rawMsg, ok := fields["message"]
	if !ok {
		return plain
	}
	rawFiles, ok := fields["files"]
	if !ok || isNull(rawFiles) {
		return plain
	}

	var msg *string
	if err := json.Unmarshal(rawMsg, &msg); err != nil {
		return plain
	}
	var files []FileEntry
	if err := json.Unmarshal(rawFiles, &files); err != nil {
		return plain
	}

	env := Envelope{Files: files}
	if msg != nil {
		env.Message = *msg
	}
	if env.Files == nil {
		env.Files = []FileEntry{}
	}
	return Decoded{Kind: KindStructured, Envelope: env}
}

func isNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}

// Package envelope turns a message and its attachments into the JSON document
// that gets encrypted, and back.
//
// The wire shape is
//
//	{"message": "...", "files": [{"name": "...", "content": "...", "size": 123}]}
//
// where content is base64 of the raw file before encryption and a cipher blob
// after EncryptFiles. Payloads written before attachments existed are plain
// text; Deserialize reports those as KindPlain instead of failing.
//
// Files are encrypted one by one so that a single damaged attachment never
// hides the message or its siblings: EncryptFiles and DecryptFiles return one
// FileResult per input, in order.
package envelope

// Package services contains the application services behind the sealnote CLI.
//
// LocalService implements traditional mode: validate, encode, encrypt and
// format for transport, and the reverse, without any network access.
// ShareService implements online mode on top of a client.Client: it publishes
// messages, opens codes as session.Sessions, deletes messages and keeps the
// local link history. SaveAttachments writes decrypted files to disk.
package services

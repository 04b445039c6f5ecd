// Package cli provides the interactive sealnote command-line client.
//
// It wires configuration, the link history database, the store client and
// the services, then runs a REPL. Traditional mode (encrypt, decrypt) works
// offline on pasted text; online mode (share, open, delete, links) goes
// through the store.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See runREPL for the command list.
package cli

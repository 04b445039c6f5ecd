// Package client contains the client side of the online message exchange.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) for the remote
//     store: Store, Fetch, FetchFiles, ReportFailedAttempt and Delete.
//  2. An HTTP implementation (see HTTPClient) speaking the store's form-encoded
//     API. Every round trip goes through a rate limiter and a bounded
//     exponential retry, and each attempt is bounded by a request timeout.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) for the link
//     history kept by the CLI, using SQLite and embedded goose migrations.
//
// # Error Handling
//
// Conditions are exposed as sentinel errors matched with errors.Is:
// ErrUnavailable (transport failure, timeout or 5xx after all retries),
// ErrNotFound (the code resolves to nothing), ErrTooManyAttempts and
// ErrBadResponse. Other 4xx replies are returned as *StatusError.
//
// Not found and unavailable never overlap: the first is a final
// answer about the code, the second says nothing about it.
//
// # Concurrency
//
// HTTPClient is safe for concurrent use. All operations honor ctx.
package client

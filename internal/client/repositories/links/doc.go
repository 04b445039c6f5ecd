// Package links persists the history of share links created by this client.
//
// Rows are written once per successful store and later soft-deleted when the
// user deletes the message. Expired and deleted rows can be pruned. Times are
// kept as Unix seconds; a NULL expires_at means the link never expires.
//
// SQLiteRepository works on a dbx.DBTX, so it can run on a *sql.DB or inside
// a transaction opened with dbx.WithTx.
package links

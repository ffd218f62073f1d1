// Package catalog persists the list of buried entries.
//
// The catalog is a single JSON document (index.json) holding every entry that
// currently lives in the graveyard. It is only ever rewritten whole, through a
// temp file that is fsynced and renamed over the canonical path while an
// advisory lock on .index.lock is held, so a reader sees either the catalog
// before a transaction or the catalog after it.
//
// Key concepts:
//   - Entry: one buried filesystem entry (original path, trashed path, kind)
//   - Catalog: the ordered list of entries, in burial order
//   - Store: lock + load + atomic rewrite around a Catalog
//   - Tx: an open exclusive transaction with Commit and Abort
package catalog

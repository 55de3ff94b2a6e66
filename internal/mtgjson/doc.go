// Package mtgjson fetches and reads the MTGJSON AllPrintings database: it
// checks the remote metadata for freshness, streams the database to disk
// with progress reporting and loads the set index from the local file.
package mtgjson

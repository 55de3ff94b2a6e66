package mtgjson

import (
	"path/filepath"
	"time"
)

// MTGJSON v5 endpoints
const (
	DefaultDatabaseURL = "https://mtgjson.com/api/v5/AllPrintings.json"
	DefaultMetaURL     = "https://mtgjson.com/api/v5/Meta.json"
)

// Network tuning
const (
	RequestTimeout    = 25 * time.Second
	downloadChunkSize = 512 * 1024
)

// File names inside the base directory
const (
	DatabaseFileName = "AllPrintings.json"
	MetaFileName     = "AllPrintings.meta.json"
)

// Paths locates the local database file and its metadata sidecar.
type Paths struct {
	DatabaseFile string
	MetaFile     string
}

// DefaultPaths places the database files inside baseDir.
func DefaultPaths(baseDir string) Paths {
	return Paths{
		DatabaseFile: filepath.Join(baseDir, DatabaseFileName),
		MetaFile:     filepath.Join(baseDir, MetaFileName),
	}
}

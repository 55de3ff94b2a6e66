package model

import (
	"sort"
	"strings"
)

// SetMetadata is the lightweight, immutable view of a set used for listing
// and searching. A new slice is derived on every database load; entries are
// never mutated in place.
type SetMetadata struct {
	Code    string
	Name    string
	Release string
	Search  string // lower-cased "code name", used for substring filtering
}

// NewSetMetadata derives the metadata entry for one set record.
func NewSetMetadata(code string, set Set) SetMetadata {
	name := set.Name(code)
	return SetMetadata{
		Code:    code,
		Name:    name,
		Release: set.ReleaseDate(),
		Search:  strings.ToLower(code + " " + name),
	}
}

// SortSetMetadata orders entries by release date descending. Missing release
// dates compare as the empty string and therefore sort last.
func SortSetMetadata(entries []SetMetadata) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Release > entries[j].Release
	})
}

package mtgjson

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"github.com/mtgget/mtg-downloader/internal/platform"
)

// ContentHash carries the published database checksum.
type ContentHash struct {
	SHA512 string `json:"sha512,omitempty"`
}

// MetaEntry describes one published MTGJSON file. The local sidecar stores
// the entry that matched the database at download time.
type MetaEntry struct {
	Name        string       `json:"name,omitempty"`
	FileName    string       `json:"fileName,omitempty"`
	ContentHash *ContentHash `json:"contentHash,omitempty"`
	UpdatedAt   string       `json:"updatedAt,omitempty"`
	LastUpdated string       `json:"lastUpdated,omitempty"`
}

func (m *MetaEntry) hash() string {
	if m == nil || m.ContentHash == nil {
		return ""
	}
	return m.ContentHash.SHA512
}

func (m *MetaEntry) updated() string {
	if m == nil {
		return ""
	}
	if m.UpdatedAt != "" {
		return m.UpdatedAt
	}
	return m.LastUpdated
}

// matches reports whether the entry describes the AllPrintings database.
func (m *MetaEntry) matches() bool {
	name := m.Name
	if name == "" {
		name = m.FileName
	}
	fileName := m.FileName
	if fileName == "" {
		fileName = m.Name
	}
	return name == "AllPrintings" || fileName == DatabaseFileName
}

// metaPayload accepts the remote catalog with data as either an object or
// an array of entries.
type metaPayload struct {
	Data json.RawMessage `json:"data"`
}

func (p *metaPayload) entries() []MetaEntry {
	if len(p.Data) == 0 {
		return nil
	}
	var byName map[string]MetaEntry
	if err := json.Unmarshal(p.Data, &byName); err == nil {
		out := make([]MetaEntry, 0, len(byName))
		for _, entry := range byName {
			out = append(out, entry)
		}
		return out
	}
	var list []MetaEntry
	if err := json.Unmarshal(p.Data, &list); err == nil {
		return list
	}
	return nil
}

// FetchRemoteMeta downloads the remote catalog and returns the AllPrintings
// entry. Any failure, network or parse, yields nil so callers fall back to
// the local cache.
func (c *Client) FetchRemoteMeta(ctx context.Context) *MetaEntry {
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.metaURL, nil)
	if err != nil {
		return nil
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var payload metaPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil
	}
	for _, entry := range payload.entries() {
		if entry.matches() {
			found := entry
			return &found
		}
	}
	return nil
}

// LoadLocalMeta reads the metadata sidecar, returning nil when it is
// missing or unreadable.
func (c *Client) LoadLocalMeta() *MetaEntry {
	data, err := os.ReadFile(c.paths.MetaFile)
	if err != nil {
		return nil
	}
	var entry MetaEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil
	}
	return &entry
}

// SaveLocalMeta persists the metadata sidecar. Failures are ignored, the
// next freshness check will simply see no local metadata.
func (c *Client) SaveLocalMeta(entry *MetaEntry) {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(c.paths.MetaFile, data, 0o644)
}

// NeedsUpdate decides whether the local database should be refreshed:
// always when the database file is missing, never when the remote catalog
// was unreachable and a local file exists. With both metadata entries in
// hand the content hashes decide, then the update timestamps.
func (c *Client) NeedsUpdate(remote *MetaEntry) bool {
	if !platform.FileExists(c.paths.DatabaseFile) {
		return true
	}
	if remote == nil {
		return false
	}

	local := c.LoadLocalMeta()
	if local == nil {
		return true
	}

	if remote.hash() != "" && local.hash() != "" {
		return remote.hash() != local.hash()
	}
	if remote.updated() != "" && local.updated() != "" {
		return remote.updated() != local.updated()
	}
	return false
}

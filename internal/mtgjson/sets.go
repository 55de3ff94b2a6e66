package mtgjson

import (
	"encoding/json"
	"os"

	"github.com/mtgget/mtg-downloader/internal/model"
	"github.com/mtgget/mtg-downloader/internal/platform"
)

// LoadSets parses the local database and returns the set index together
// with display metadata sorted by release date, newest first.
func (c *Client) LoadSets() (model.SetIndex, []model.SetMetadata, error) {
	file, err := os.Open(c.paths.DatabaseFile)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	var payload struct {
		Data model.SetIndex `json:"data"`
	}
	if err := json.NewDecoder(file).Decode(&payload); err != nil {
		return nil, nil, err
	}

	metadata := make([]model.SetMetadata, 0, len(payload.Data))
	for code, set := range payload.Data {
		metadata = append(metadata, model.NewSetMetadata(code, set))
	}
	model.SortSetMetadata(metadata)

	return payload.Data, metadata, nil
}

// ResetLocalDatabase removes the database and its metadata sidecar, used
// when the local file turns out to be corrupt.
func (c *Client) ResetLocalDatabase() {
	_ = platform.RemoveIfExists(c.paths.DatabaseFile)
	_ = platform.RemoveIfExists(c.paths.MetaFile)
}

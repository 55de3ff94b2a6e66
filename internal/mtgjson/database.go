package mtgjson

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/mtgget/mtg-downloader/internal/platform"
)

// Client talks to MTGJSON and manages the local database files.
type Client struct {
	httpClient  *http.Client
	databaseURL string
	metaURL     string
	paths       Paths
}

// NewClient creates a client storing files at the given paths.
func NewClient(paths Paths) *Client {
	return NewClientWithURLs(DefaultDatabaseURL, DefaultMetaURL, paths)
}

// NewClientWithURLs creates a client against different endpoints.
func NewClientWithURLs(databaseURL, metaURL string, paths Paths) *Client {
	// No client-wide timeout: it would cover the body read and cut off the
	// large database stream. The metadata request gets a per-call deadline.
	return &Client{
		httpClient:  &http.Client{},
		databaseURL: databaseURL,
		metaURL:     metaURL,
		paths:       paths,
	}
}

// Paths returns the configured file locations.
func (c *Client) Paths() Paths {
	return c.paths
}

// DownloadProgress reports streaming progress while the database downloads.
type DownloadProgress func(percent float64, speedMBps float64)

// DownloadDatabase streams AllPrintings.json to disk. Progress is reported
// only when the server sends a content length. On success the remote
// metadata entry is persisted next to the database; on failure any stale
// sidecar is removed and a partial file may remain for the next attempt to
// overwrite.
func (c *Client) DownloadDatabase(ctx context.Context, remote *MetaEntry, progress DownloadProgress) error {
	if err := platform.CreateDirectoryIfNotExists(filepath.Dir(c.paths.DatabaseFile)); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.databaseURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, c.databaseURL)
	}

	file, err := os.Create(c.paths.DatabaseFile)
	if err != nil {
		return err
	}

	total := resp.ContentLength
	var downloaded int64
	start := time.Now()
	buf := make([]byte, downloadChunkSize)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := file.Write(buf[:n]); writeErr != nil {
				file.Close()
				return writeErr
			}
			downloaded += int64(n)
			if progress != nil && total > 0 {
				percent := float64(downloaded) / float64(total) * 100
				elapsed := time.Since(start).Seconds()
				if elapsed <= 0 {
					elapsed = 1e-6
				}
				speed := float64(downloaded) / elapsed / (1024 * 1024)
				progress(percent, speed)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			file.Close()
			return readErr
		}
	}
	if err := file.Close(); err != nil {
		return err
	}

	if remote != nil {
		c.SaveLocalMeta(remote)
	} else {
		_ = platform.RemoveIfExists(c.paths.MetaFile)
	}
	return nil
}

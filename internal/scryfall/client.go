package scryfall

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/mtgget/mtg-downloader/internal/model"
)

// DefaultBaseURL is the Scryfall API root.
const DefaultBaseURL = "https://api.scryfall.com"

// imageParams selects the PNG scan rendition.
const imageParams = "format=image&version=png"

// RequestTimeout bounds one image request.
const RequestTimeout = 25 * time.Second

// RequestHeaders are sent with every request, as asked by the Scryfall API
// guidelines.
var RequestHeaders = map[string]string{
	"User-Agent": "mtg-downloader/1.0",
	"Accept":     "*/*",
}

// Candidate is one image URL to try for a card. Fallback candidates save
// with the English suffix; Primary candidates are requests for the chosen
// non-English language and feed the per-set availability counter.
type Candidate struct {
	URL      string
	Fallback bool
	Primary  bool
}

// Client downloads card images from Scryfall.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a client against the public API.
func NewClient() *Client {
	return NewClientWithBaseURL(DefaultBaseURL)
}

// NewClientWithBaseURL creates a client against a different API root.
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: RequestTimeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// Candidates returns the image URLs to try for a card, most specific
// first: the chosen language print, the English print, then the lookup by
// card identifier. Duplicates collapse and candidates that need a missing
// set code or collector number are skipped.
func (c *Client) Candidates(card model.Card, setCode, language string) []Candidate {
	cleanedSet := strings.ToLower(strings.TrimSpace(setCode))
	number := card.Number()
	encodedNumber := ""
	if number != "" {
		encodedNumber = url.PathEscape(number)
	}
	lang := strings.ToLower(strings.TrimSpace(language))
	if lang == "" {
		lang = "en"
	}

	var urls []string
	add := func(u string) {
		for _, existing := range urls {
			if existing == u {
				return
			}
		}
		urls = append(urls, u)
	}

	if lang != "en" && cleanedSet != "" && encodedNumber != "" {
		add(fmt.Sprintf("%s/cards/%s/%s/%s?%s", c.baseURL, cleanedSet, encodedNumber, lang, imageParams))
	}
	if cleanedSet != "" && encodedNumber != "" {
		add(fmt.Sprintf("%s/cards/%s/%s/en?%s", c.baseURL, cleanedSet, encodedNumber, imageParams))
	}
	if id := card.ScryfallID(); id != "" {
		add(fmt.Sprintf("%s/cards/%s?%s", c.baseURL, id, imageParams))
	}

	candidates := make([]Candidate, len(urls))
	for i, u := range urls {
		fallback := i > 0 && lang != "en"
		candidates[i] = Candidate{
			URL:      u,
			Fallback: fallback,
			Primary:  lang != "en" && !fallback,
		}
	}
	return candidates
}

// DownloadImage fetches url and writes the body to destPath. Non-200
// responses become a StatusError and leave no file behind.
func (c *Client) DownloadImage(ctx context.Context, imageURL, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", imageURL, err)
	}
	for key, value := range RequestHeaders {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{StatusCode: resp.StatusCode, URL: imageURL}
	}

	out, err := os.Create(destPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(destPath)
		return err
	}
	return out.Close()
}

// StatusError reports an unexpected HTTP status for an image request.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d fetching %s", e.StatusCode, e.URL)
}

// IsNotFound reports whether err is a 404 response. A missing image is a
// definitive answer from the API, not a transient failure.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

package scryfall

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/mtgget/mtg-downloader/internal/model"
)

func testCard(number, id string) model.Card {
	c := model.Card{"name": "Opt"}
	if number != "" {
		c["number"] = number
	}
	if id != "" {
		c["identifiers"] = map[string]any{"scryfallId": id}
	}
	return c
}

func TestCandidatesNonEnglish(t *testing.T) {
	c := NewClient()
	candidates := c.Candidates(testCard("60", "abc-123"), "DOM", "pt")

	if len(candidates) != 3 {
		t.Fatalf("Expected 3 candidates, got %d", len(candidates))
	}
	if candidates[0].URL != DefaultBaseURL+"/cards/dom/60/pt?format=image&version=png" {
		t.Errorf("Unexpected first candidate: %s", candidates[0].URL)
	}
	if !candidates[0].Primary || candidates[0].Fallback {
		t.Error("Expected first candidate to be primary")
	}
	if candidates[1].URL != DefaultBaseURL+"/cards/dom/60/en?format=image&version=png" {
		t.Errorf("Unexpected second candidate: %s", candidates[1].URL)
	}
	if !candidates[1].Fallback || candidates[1].Primary {
		t.Error("Expected second candidate to be a fallback")
	}
	if candidates[2].URL != DefaultBaseURL+"/cards/abc-123?format=image&version=png" {
		t.Errorf("Unexpected third candidate: %s", candidates[2].URL)
	}
	if !candidates[2].Fallback {
		t.Error("Expected identifier candidate to be a fallback")
	}
}

func TestCandidatesEnglish(t *testing.T) {
	c := NewClient()
	candidates := c.Candidates(testCard("60", "abc-123"), "DOM", "en")

	if len(candidates) != 2 {
		t.Fatalf("Expected 2 candidates, got %d", len(candidates))
	}
	for _, candidate := range candidates {
		if candidate.Fallback || candidate.Primary {
			t.Errorf("Expected plain candidates for English, got %+v", candidate)
		}
	}
}

func TestCandidatesWithoutNumber(t *testing.T) {
	c := NewClient()
	candidates := c.Candidates(testCard("", "abc-123"), "DOM", "pt")

	if len(candidates) != 1 {
		t.Fatalf("Expected only the identifier candidate, got %d", len(candidates))
	}
	if candidates[0].URL != DefaultBaseURL+"/cards/abc-123?format=image&version=png" {
		t.Errorf("Unexpected candidate: %s", candidates[0].URL)
	}
}

func TestCandidatesEncodesNumber(t *testing.T) {
	c := NewClient()
	candidates := c.Candidates(testCard("12★", ""), "DOM", "en")

	if len(candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].URL != DefaultBaseURL+"/cards/dom/12%E2%98%85/en?format=image&version=png" {
		t.Errorf("Expected encoded collector number, got %s", candidates[0].URL)
	}
}

func TestCandidatesEmpty(t *testing.T) {
	c := NewClient()
	if candidates := c.Candidates(testCard("", ""), "", "pt"); len(candidates) != 0 {
		t.Errorf("Expected no candidates, got %d", len(candidates))
	}
}

func TestDownloadImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("Expected a User-Agent header")
		}
		w.Write([]byte("png-bytes"))
	}))
	defer server.Close()

	c := NewClient()
	dest := filepath.Join(t.TempDir(), "card.png")
	if err := c.DownloadImage(context.Background(), server.URL, dest); err != nil {
		t.Fatalf("Expected download to succeed: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("Expected image file: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("Unexpected file content: %s", string(data))
	}
}

func TestDownloadImageNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient()
	dest := filepath.Join(t.TempDir(), "card.png")
	err := c.DownloadImage(context.Background(), server.URL, dest)
	if err == nil {
		t.Fatal("Expected an error")
	}
	if !IsNotFound(err) {
		t.Errorf("Expected a not-found error, got %v", err)
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected StatusError with 404, got %v", err)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("Expected no file for failed download")
	}
}

func TestIsNotFoundOtherErrors(t *testing.T) {
	if IsNotFound(errors.New("boom")) {
		t.Error("Expected plain errors not to match")
	}
	if IsNotFound(&StatusError{StatusCode: http.StatusInternalServerError}) {
		t.Error("Expected 500 not to match")
	}
}

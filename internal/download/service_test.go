package download

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mtgget/mtg-downloader/internal/i18n"
	"github.com/mtgget/mtg-downloader/internal/model"
	"github.com/mtgget/mtg-downloader/internal/mtgjson"
	"github.com/mtgget/mtg-downloader/internal/scryfall"
)

// imageServer serves fake card scans and records every request path.
type imageServer struct {
	mu       sync.Mutex
	requests []string
	handler  func(path string, w http.ResponseWriter)
	server   *httptest.Server
}

func newImageServer(handler func(path string, w http.ResponseWriter)) *imageServer {
	s := &imageServer{handler: handler}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.URL.Path)
		s.mu.Unlock()
		s.handler(r.URL.Path, w)
	}))
	return s
}

func (s *imageServer) countRequests(substr string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, path := range s.requests {
		if strings.Contains(path, substr) {
			count++
		}
	}
	return count
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.RetryDelay = 0
	opts.RequestDelay = 0
	opts.EventBuffer = 1024
	return opts
}

func newTestService(t *testing.T, imageBaseURL string, opts Options) *Service {
	t.Helper()
	db := mtgjson.NewClient(mtgjson.DefaultPaths(t.TempDir()))
	images := scryfall.NewClientWithBaseURL(imageBaseURL)
	return NewService(db, images, i18n.NewLocalization(), opts)
}

func testCardRecord(name, number, rarity string, types []any) map[string]any {
	return map[string]any{
		"name":        name,
		"number":      number,
		"rarity":      rarity,
		"types":       types,
		"colors":      []any{"U"},
		"identifiers": map[string]any{"scryfallId": "id-" + number},
	}
}

func testSetIndex(cardsPerSet map[string][]any) model.SetIndex {
	index := model.SetIndex{}
	for code, cards := range cardsPerSet {
		index[code] = model.Set{
			"name":  "Set " + code,
			"cards": cards,
		}
	}
	return index
}

// collectUntilComplete drains events until the completion event arrives.
func collectUntilComplete(t *testing.T, s *Service) []model.Event {
	t.Helper()
	var events []model.Event
	timeout := time.After(10 * time.Second)
	for {
		select {
		case ev := <-s.Events():
			if ev.Kind == model.EventConfirm {
				t.Fatal("Unexpected confirmation request")
			}
			events = append(events, ev)
			if ev.Kind == model.EventDownloadComplete {
				return events
			}
		case <-timeout:
			t.Fatal("Timed out waiting for completion event")
		}
	}
}

func logsContaining(events []model.Event, substr string) int {
	count := 0
	for _, ev := range events {
		if ev.Kind == model.EventLog && strings.Contains(ev.Text, substr) {
			count++
		}
	}
	return count
}

func completion(t *testing.T, events []model.Event) *model.DownloadComplete {
	t.Helper()
	last := events[len(events)-1]
	if last.Kind != model.EventDownloadComplete || last.Complete == nil {
		t.Fatalf("Expected a completion event, got %+v", last)
	}
	return last.Complete
}

func TestDownloadCardsEndToEnd(t *testing.T) {
	server := newImageServer(func(path string, w http.ResponseWriter) {
		w.Write([]byte("png"))
	})
	defer server.server.Close()

	s := newTestService(t, server.server.URL, testOptions())
	s.setIndex(testSetIndex(map[string][]any{
		"AAA": {
			testCardRecord("Bolt", "1", "common", []any{"Instant"}),
			testCardRecord("Bear", "2", "common", []any{"Creature"}),
		},
		"BBB": {
			testCardRecord("Island", "3", "common", []any{"Land"}),
		},
	}))

	dest := t.TempDir()
	runID := s.DownloadCards(Request{
		SetCodes:     []string{"AAA", "BBB"},
		TypeKey:      "all",
		RarityKey:    "all",
		LanguageCode: "en",
		Destination:  dest,
		AppLocale:    "en",
	})

	events := collectUntilComplete(t, s)
	complete := completion(t, events)
	if complete.Canceled {
		t.Error("Expected a clean completion")
	}
	if complete.RunID != runID {
		t.Errorf("Expected completion for run %s, got %s", runID, complete.RunID)
	}
	if got := logsContaining(events, "Downloaded [EN]"); got != 3 {
		t.Errorf("Expected 3 success logs, got %d", got)
	}
	if got := logsContaining(events, "Download finished."); got != 1 {
		t.Errorf("Expected 1 finish log, got %d", got)
	}

	boltPath := filepath.Join(dest,
		"AAA_Set AAA", "01-English", "2-Blue", "3-Instant", "1-Common", "1_Bolt.png")
	if _, err := os.Stat(boltPath); err != nil {
		t.Errorf("Expected image at %s: %v", boltPath, err)
	}
	islandPath := filepath.Join(dest,
		"BBB_Set BBB", "01-English", "2-Blue", "0-Land", "1-Common", "3_Island.png")
	if _, err := os.Stat(islandPath); err != nil {
		t.Errorf("Expected image at %s: %v", islandPath, err)
	}

	var lastProgress *model.Progress
	progressCount := 0
	for _, ev := range events {
		if ev.Kind == model.EventProgress && ev.Progress.Label != "" {
			progressCount++
			lastProgress = ev.Progress
		}
	}
	if progressCount != 3 {
		t.Errorf("Expected 3 card progress events, got %d", progressCount)
	}
	if lastProgress == nil || lastProgress.Percent != 100 {
		t.Errorf("Expected final progress 100, got %+v", lastProgress)
	}
}

func TestDownloadCardsLanguageFallbackAndAdaptiveSkip(t *testing.T) {
	server := newImageServer(func(path string, w http.ResponseWriter) {
		if strings.HasSuffix(path, "/pt") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("png"))
	})
	defer server.server.Close()

	opts := testOptions()
	s := newTestService(t, server.server.URL, opts)
	s.setIndex(testSetIndex(map[string][]any{
		"AAA": {
			testCardRecord("One", "1", "common", []any{"Instant"}),
			testCardRecord("Two", "2", "common", []any{"Instant"}),
			testCardRecord("Three", "3", "common", []any{"Instant"}),
			testCardRecord("Four", "4", "common", []any{"Instant"}),
		},
		"BBB": {
			testCardRecord("Five", "9", "common", []any{"Instant"}),
		},
	}))

	dest := t.TempDir()
	s.DownloadCards(Request{
		SetCodes:     []string{"AAA", "BBB"},
		TypeKey:      "all",
		RarityKey:    "all",
		LanguageCode: "pt",
		Destination:  dest,
		AppLocale:    "en",
	})

	events := collectUntilComplete(t, s)
	if completion(t, events).Canceled {
		t.Error("Expected a clean completion")
	}

	// Three missing translations trip the per-set skip; the fourth card
	// never asks for the Portuguese print.
	if got := server.countRequests("/aaa/"); got != 7 {
		t.Errorf("Expected 3 Portuguese and 4 English requests for the first set, got %d", got)
	}
	// The tally is per set, so the next set starts with the chosen language.
	if got := server.countRequests("/bbb/9/pt"); got != 1 {
		t.Errorf("Expected the second set to retry Portuguese, got %d requests", got)
	}
	if got := server.countRequests("/pt"); got != 4 {
		t.Errorf("Expected 4 Portuguese requests, got %d", got)
	}
	if got := logsContaining(events, "No PT translations"); got != 1 {
		t.Errorf("Expected exactly 1 language-unavailable log, got %d", got)
	}
	if got := logsContaining(events, "fallback EN"); got != 5 {
		t.Errorf("Expected 5 fallback logs, got %d", got)
	}
	// 404s on the chosen language never log retry lines.
	if got := logsContaining(events, "Attempt"); got != 0 {
		t.Errorf("Expected no retry logs, got %d", got)
	}

	for _, name := range []string{"1_One_EN.png", "2_Two_EN.png", "3_Three_EN.png", "4_Four_EN.png"} {
		path := filepath.Join(dest,
			"AAA_Set AAA", "06-Portuguese", "2-Blue", "3-Instant", "1-Common", name)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Expected fallback image at %s: %v", path, err)
		}
	}
	bbbPath := filepath.Join(dest,
		"BBB_Set BBB", "06-Portuguese", "2-Blue", "3-Instant", "1-Common", "9_Five_EN.png")
	if _, err := os.Stat(bbbPath); err != nil {
		t.Errorf("Expected fallback image at %s: %v", bbbPath, err)
	}
}

func TestDownloadCardsRetriesTransientErrors(t *testing.T) {
	var mu sync.Mutex
	failures := 2
	server := newImageServer(func(path string, w http.ResponseWriter) {
		mu.Lock()
		defer mu.Unlock()
		if failures > 0 {
			failures--
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("png"))
	})
	defer server.server.Close()

	s := newTestService(t, server.server.URL, testOptions())
	s.setIndex(testSetIndex(map[string][]any{
		"AAA": {testCardRecord("Bolt", "1", "common", []any{"Instant"})},
	}))

	s.DownloadCards(Request{
		SetCodes:     []string{"AAA"},
		TypeKey:      "all",
		RarityKey:    "all",
		LanguageCode: "en",
		Destination:  t.TempDir(),
		AppLocale:    "en",
	})

	events := collectUntilComplete(t, s)
	if got := logsContaining(events, "Attempt 1/3 failed"); got != 1 {
		t.Errorf("Expected 1 first-attempt retry log, got %d", got)
	}
	if got := logsContaining(events, "Attempt 2/3 failed"); got != 1 {
		t.Errorf("Expected 1 second-attempt retry log, got %d", got)
	}
	if got := logsContaining(events, "Downloaded [EN]"); got != 1 {
		t.Errorf("Expected success after retries, got %d", got)
	}
}

func TestDownloadCardsNotFoundEverywhereFails(t *testing.T) {
	server := newImageServer(func(path string, w http.ResponseWriter) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer server.server.Close()

	s := newTestService(t, server.server.URL, testOptions())
	s.setIndex(testSetIndex(map[string][]any{
		"AAA": {testCardRecord("Bolt", "1", "common", []any{"Instant"})},
	}))

	s.DownloadCards(Request{
		SetCodes:     []string{"AAA"},
		TypeKey:      "all",
		RarityKey:    "all",
		LanguageCode: "en",
		Destination:  t.TempDir(),
		AppLocale:    "en",
	})

	events := collectUntilComplete(t, s)
	if completion(t, events).Canceled {
		t.Error("Expected the run to complete despite failures")
	}
	if got := logsContaining(events, "Failed [EN] after 2 attempts"); got != 1 {
		t.Errorf("Expected failure log after one attempt per candidate, got %d", got)
	}
	// 404 is definitive, each candidate is tried once.
	if got := server.countRequests("/cards/"); got != 2 {
		t.Errorf("Expected 2 requests, got %d", got)
	}
}

func TestDownloadCardsSkipsExistingFiles(t *testing.T) {
	server := newImageServer(func(path string, w http.ResponseWriter) {
		w.Write([]byte("png"))
	})
	defer server.server.Close()

	s := newTestService(t, server.server.URL, testOptions())
	s.setIndex(testSetIndex(map[string][]any{
		"AAA": {testCardRecord("Bolt", "1", "common", []any{"Instant"})},
	}))

	dest := t.TempDir()
	existing := filepath.Join(dest,
		"AAA_Set AAA", "01-English", "2-Blue", "3-Instant", "1-Common")
	if err := os.MkdirAll(existing, 0o755); err != nil {
		t.Fatalf("Failed to prepare folders: %v", err)
	}
	if err := os.WriteFile(filepath.Join(existing, "1_Bolt.png"), []byte("old"), 0o644); err != nil {
		t.Fatalf("Failed to write existing image: %v", err)
	}

	s.DownloadCards(Request{
		SetCodes:     []string{"AAA"},
		TypeKey:      "all",
		RarityKey:    "all",
		LanguageCode: "en",
		Destination:  dest,
		AppLocale:    "en",
	})

	events := collectUntilComplete(t, s)
	if completion(t, events).Canceled {
		t.Error("Expected a clean completion")
	}
	if got := server.countRequests("/cards/"); got != 0 {
		t.Errorf("Expected no requests for an existing file, got %d", got)
	}
	if got := logsContaining(events, "Downloaded"); got != 0 {
		t.Errorf("Expected no download log for a skipped card, got %d", got)
	}

	progressCount := 0
	for _, ev := range events {
		if ev.Kind == model.EventProgress && ev.Progress.Label != "" {
			progressCount++
		}
	}
	if progressCount != 1 {
		t.Errorf("Expected the skipped card to advance progress, got %d events", progressCount)
	}
}

func TestDownloadCardsNoMatches(t *testing.T) {
	s := newTestService(t, "http://127.0.0.1:0", testOptions())
	s.setIndex(testSetIndex(map[string][]any{
		"AAA": {testCardRecord("Bolt", "1", "common", []any{"Instant"})},
	}))

	s.DownloadCards(Request{
		SetCodes:     []string{"AAA"},
		TypeKey:      "creature",
		RarityKey:    "all",
		LanguageCode: "en",
		Destination:  t.TempDir(),
		AppLocale:    "en",
	})

	events := collectUntilComplete(t, s)
	if !completion(t, events).Canceled {
		t.Error("Expected a canceled completion for zero matches")
	}
	errorCount := 0
	for _, ev := range events {
		if ev.Kind == model.EventError {
			errorCount++
		}
	}
	if errorCount != 1 {
		t.Errorf("Expected 1 error event, got %d", errorCount)
	}
}

func TestDownloadCardsConfirmation(t *testing.T) {
	server := newImageServer(func(path string, w http.ResponseWriter) {
		w.Write([]byte("png"))
	})
	defer server.server.Close()

	opts := testOptions()
	opts.WarnThreshold = 2
	s := newTestService(t, server.server.URL, opts)
	s.setIndex(testSetIndex(map[string][]any{
		"AAA": {
			testCardRecord("One", "1", "common", []any{"Instant"}),
			testCardRecord("Two", "2", "common", []any{"Instant"}),
		},
	}))

	request := Request{
		SetCodes:     []string{"AAA"},
		TypeKey:      "all",
		RarityKey:    "all",
		LanguageCode: "en",
		Destination:  t.TempDir(),
		AppLocale:    "en",
	}

	// Declined: the run never starts.
	s.DownloadCards(request)
	var events []model.Event
	timeout := time.After(10 * time.Second)
	for {
		var done bool
		select {
		case ev := <-s.Events():
			if ev.Kind == model.EventConfirm {
				if ev.Confirm.Count != 2 {
					t.Errorf("Expected confirmation for 2 cards, got %d", ev.Confirm.Count)
				}
				ev.Confirm.Reply <- false
				continue
			}
			events = append(events, ev)
			done = ev.Kind == model.EventDownloadComplete
		case <-timeout:
			t.Fatal("Timed out waiting for completion event")
		}
		if done {
			break
		}
	}
	if !completion(t, events).Canceled {
		t.Error("Expected a canceled completion after declining")
	}
	if got := server.countRequests("/cards/"); got != 0 {
		t.Errorf("Expected no requests after declining, got %d", got)
	}

	// Accepted: the run downloads everything.
	s.DownloadCards(request)
	events = nil
	timeout = time.After(10 * time.Second)
	for {
		var done bool
		select {
		case ev := <-s.Events():
			if ev.Kind == model.EventConfirm {
				ev.Confirm.Reply <- true
				continue
			}
			events = append(events, ev)
			done = ev.Kind == model.EventDownloadComplete
		case <-timeout:
			t.Fatal("Timed out waiting for completion event")
		}
		if done {
			break
		}
	}
	if completion(t, events).Canceled {
		t.Error("Expected a clean completion after accepting")
	}
	if got := logsContaining(events, "Downloaded [EN]"); got != 2 {
		t.Errorf("Expected 2 downloads after accepting, got %d", got)
	}
}

func TestDownloadCardsFolderCreateFailureAborts(t *testing.T) {
	server := newImageServer(func(path string, w http.ResponseWriter) {
		w.Write([]byte("png"))
	})
	defer server.server.Close()

	s := newTestService(t, server.server.URL, testOptions())
	s.setIndex(testSetIndex(map[string][]any{
		"AAA": {testCardRecord("Bolt", "1", "common", []any{"Instant"})},
	}))

	dest := t.TempDir()
	// A file occupying the set folder path makes the mkdir fail.
	if err := os.WriteFile(filepath.Join(dest, "AAA_Set AAA"), []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to plant the blocking file: %v", err)
	}

	s.DownloadCards(Request{
		SetCodes:     []string{"AAA"},
		TypeKey:      "all",
		RarityKey:    "all",
		LanguageCode: "en",
		Destination:  dest,
		AppLocale:    "en",
	})

	events := collectUntilComplete(t, s)
	if !completion(t, events).Canceled {
		t.Error("Expected the completion to be flagged as not clean")
	}
	if got := logsContaining(events, "stopped by the user"); got != 0 {
		t.Errorf("Expected no user-stop log for a filesystem failure, got %d", got)
	}
	if got := logsContaining(events, "Download finished."); got != 0 {
		t.Errorf("Expected no finish log for a filesystem failure, got %d", got)
	}
	errorCount := 0
	for _, ev := range events {
		if ev.Kind == model.EventError {
			errorCount++
		}
	}
	if errorCount != 1 {
		t.Errorf("Expected 1 error event, got %d", errorCount)
	}
}

func TestDownloadCardsLanguageSwitchMidRun(t *testing.T) {
	server := newImageServer(func(path string, w http.ResponseWriter) {
		w.Write([]byte("png"))
	})
	defer server.server.Close()

	loc := i18n.NewLocalization()
	db := mtgjson.NewClient(mtgjson.DefaultPaths(t.TempDir()))
	s := NewService(db, scryfall.NewClientWithBaseURL(server.server.URL), loc, testOptions())

	cards := make([]any, 20)
	for i := range cards {
		cards[i] = testCardRecord("Card", string(rune('a'+i)), "common", []any{"Instant"})
	}
	s.setIndex(testSetIndex(map[string][]any{"AAA": cards}))

	// Flip the app language while the run localizes its log lines.
	done := make(chan struct{})
	var flips sync.WaitGroup
	flips.Add(1)
	go func() {
		defer flips.Done()
		for {
			select {
			case <-done:
				return
			default:
				loc.SetLanguage("pt")
				loc.SetLanguage("en")
			}
		}
	}()

	s.DownloadCards(Request{
		SetCodes:     []string{"AAA"},
		TypeKey:      "all",
		RarityKey:    "all",
		LanguageCode: "en",
		Destination:  t.TempDir(),
		AppLocale:    "en",
	})

	events := collectUntilComplete(t, s)
	close(done)
	flips.Wait()

	if completion(t, events).Canceled {
		t.Error("Expected a clean completion")
	}
	progressCount := 0
	for _, ev := range events {
		if ev.Kind == model.EventProgress && ev.Progress.Label != "" {
			progressCount++
		}
	}
	if progressCount != 20 {
		t.Errorf("Expected 20 card progress events, got %d", progressCount)
	}
}

func TestDownloadCardsCancelMidRun(t *testing.T) {
	// The token flips while the third request is in flight, so that card
	// still lands and the run stops before the fourth.
	token := NewCancelToken()
	var mu sync.Mutex
	served := 0
	server := newImageServer(func(path string, w http.ResponseWriter) {
		mu.Lock()
		served++
		if served == 3 {
			token.Cancel()
		}
		mu.Unlock()
		w.Write([]byte("png"))
	})
	defer server.server.Close()

	s := newTestService(t, server.server.URL, testOptions())
	cards := make([]any, 10)
	for i := range cards {
		cards[i] = testCardRecord("Card", string(rune('a'+i)), "common", []any{"Instant"})
	}
	s.setIndex(testSetIndex(map[string][]any{"AAA": cards}))

	s.DownloadCards(Request{
		SetCodes:     []string{"AAA"},
		TypeKey:      "all",
		RarityKey:    "all",
		LanguageCode: "en",
		Destination:  t.TempDir(),
		AppLocale:    "en",
		Token:        token,
	})

	events := collectUntilComplete(t, s)
	if !completion(t, events).Canceled {
		t.Error("Expected a canceled completion")
	}
	if got := logsContaining(events, "stopped by the user"); got != 1 {
		t.Errorf("Expected 1 stopped log, got %d", got)
	}
	if got := logsContaining(events, "Downloaded [EN]"); got != 3 {
		t.Errorf("Expected exactly 3 downloads before the stop, got %d", got)
	}
}

func TestDownloadCardsRejectsConcurrentRun(t *testing.T) {
	s := newTestService(t, "http://127.0.0.1:0", testOptions())
	s.setIndex(testSetIndex(map[string][]any{
		"AAA": {testCardRecord("Bolt", "1", "common", []any{"Instant"})},
	}))

	s.runMu.Lock()
	runID := s.DownloadCards(Request{
		SetCodes:     []string{"AAA"},
		TypeKey:      "all",
		RarityKey:    "all",
		LanguageCode: "en",
		Destination:  t.TempDir(),
		AppLocale:    "en",
	})

	select {
	case ev := <-s.Events():
		if ev.Kind != model.EventLog || !strings.Contains(ev.Text, "already running") {
			t.Errorf("Expected an already-running log, got %+v", ev)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for rejection log")
	}

	// The rejected call still ends with its own completion event.
	select {
	case ev := <-s.Events():
		if ev.Kind != model.EventDownloadComplete || ev.Complete == nil {
			t.Fatalf("Expected a completion event for the rejected run, got %+v", ev)
		}
		if ev.Complete.RunID != runID || !ev.Complete.Canceled {
			t.Errorf("Expected canceled completion for run %s, got %+v", runID, ev.Complete)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for rejection completion")
	}
	s.runMu.Unlock()
}

func TestBootstrapLoadsFreshDatabase(t *testing.T) {
	databaseBody := `{"data":{"AAA":{"name":"Alpha","releaseDate":"1993-08-05","cards":[]}}}`
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/Meta.json":
			w.Write([]byte(`{"data":{"allPrintings":{"name":"AllPrintings","contentHash":{"sha512":"h1"}}}}`))
		case "/AllPrintings.json":
			w.Write([]byte(databaseBody))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer backend.Close()

	db := mtgjson.NewClientWithURLs(
		backend.URL+"/AllPrintings.json",
		backend.URL+"/Meta.json",
		mtgjson.DefaultPaths(t.TempDir()),
	)
	s := NewService(db, scryfall.NewClient(), i18n.NewLocalization(), testOptions())

	s.Bootstrap()

	timeout := time.After(10 * time.Second)
	var setsEvent *model.SetsLoaded
	for setsEvent == nil {
		select {
		case ev := <-s.Events():
			if ev.Kind == model.EventSetsLoaded {
				setsEvent = ev.Sets
			}
			if ev.Kind == model.EventError {
				t.Fatalf("Unexpected error event: %s", ev.Text)
			}
		case <-timeout:
			t.Fatal("Timed out waiting for sets")
		}
	}

	if len(setsEvent.Metadata) != 1 || setsEvent.Metadata[0].Code != "AAA" {
		t.Errorf("Expected set AAA, got %+v", setsEvent.Metadata)
	}
	if !s.DatabaseReady() {
		t.Error("Expected the database file on disk")
	}
	if !s.HasSets() {
		t.Error("Expected the service to hold the set index")
	}
}

func TestLoadSetsCorruptDatabaseTriggersRedownload(t *testing.T) {
	databaseBody := `{"data":{"AAA":{"name":"Alpha","releaseDate":"1993-08-05","cards":[]}}}`
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/Meta.json":
			w.Write([]byte(`{"data":{"allPrintings":{"name":"AllPrintings","contentHash":{"sha512":"h1"}}}}`))
		case "/AllPrintings.json":
			w.Write([]byte(databaseBody))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer backend.Close()

	paths := mtgjson.DefaultPaths(t.TempDir())
	if err := os.WriteFile(paths.DatabaseFile, []byte(`{"data": broken`), 0o644); err != nil {
		t.Fatalf("Failed to write corrupt database: %v", err)
	}

	db := mtgjson.NewClientWithURLs(
		backend.URL+"/AllPrintings.json",
		backend.URL+"/Meta.json",
		paths,
	)
	s := NewService(db, scryfall.NewClient(), i18n.NewLocalization(), testOptions())

	s.LoadSets()

	timeout := time.After(10 * time.Second)
	sawError := false
	sawCorruptLog := false
	var setsEvent *model.SetsLoaded
	for setsEvent == nil {
		select {
		case ev := <-s.Events():
			switch ev.Kind {
			case model.EventError:
				sawError = true
			case model.EventLog:
				if strings.Contains(ev.Text, "corrupted") {
					sawCorruptLog = true
				}
			case model.EventSetsLoaded:
				setsEvent = ev.Sets
			}
		case <-timeout:
			t.Fatal("Timed out waiting for recovery")
		}
	}

	if !sawError {
		t.Error("Expected an error event for the corrupt database")
	}
	if !sawCorruptLog {
		t.Error("Expected the corrupt-database log line")
	}
	if len(setsEvent.Metadata) != 1 {
		t.Errorf("Expected the redownloaded database to load, got %+v", setsEvent.Metadata)
	}
}

func TestCancelToken(t *testing.T) {
	token := NewCancelToken()
	if token.Canceled() {
		t.Error("Expected a fresh token to be unset")
	}
	token.Cancel()
	if !token.Canceled() {
		t.Error("Expected the token to report cancellation")
	}
}

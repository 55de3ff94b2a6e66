package download

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/mtgget/mtg-downloader/internal/i18n"
	"github.com/mtgget/mtg-downloader/internal/model"
	"github.com/mtgget/mtg-downloader/internal/mtgjson"
	"github.com/mtgget/mtg-downloader/internal/platform"
	"github.com/mtgget/mtg-downloader/internal/scryfall"
)

// Service owns the background tasks of the application. Database refresh,
// set loading and image runs each hold their own lock, so at most one of
// each runs at a time while different task kinds may overlap.
type Service struct {
	database *mtgjson.Client
	images   *scryfall.Client
	loc      *i18n.Localization
	opts     Options
	events   chan model.Event

	dbMu   sync.Mutex
	setsMu sync.Mutex
	runMu  sync.Mutex

	mu    sync.Mutex
	index model.SetIndex
}

// NewService wires the pipeline together.
func NewService(database *mtgjson.Client, images *scryfall.Client, loc *i18n.Localization, opts Options) *Service {
	return &Service{
		database: database,
		images:   images,
		loc:      loc,
		opts:     opts,
		events:   make(chan model.Event, opts.EventBuffer),
	}
}

// Events returns the channel the pipeline reports on. The UI drains it on
// a timer; block-free consumption is the caller's job.
func (s *Service) Events() <-chan model.Event {
	return s.events
}

// DatabaseReady reports whether the local database file exists.
func (s *Service) DatabaseReady() bool {
	return platform.FileExists(s.database.Paths().DatabaseFile)
}

// HasSets reports whether a set index has been loaded.
func (s *Service) HasSets() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.index) > 0
}

func (s *Service) setIndex(index model.SetIndex) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = index
}

func (s *Service) currentIndex() model.SetIndex {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

func (s *Service) emit(event model.Event) {
	s.events <- event
}

func (s *Service) log(key string, args ...any) {
	s.emit(model.Event{Kind: model.EventLog, Text: s.loc.Textf(key, args...)})
}

func (s *Service) status(key string, args ...any) {
	s.emit(model.Event{Kind: model.EventStatus, Text: s.loc.Textf(key, args...)})
}

func (s *Service) errorEvent(text string) {
	s.emit(model.Event{Kind: model.EventError, Text: text})
}

func (s *Service) progress(percent float64, label string) {
	s.emit(model.Event{Kind: model.EventProgress, Progress: &model.Progress{Percent: percent, Label: label}})
}

func (s *Service) resetProgress() {
	s.progress(0, "")
}

// Bootstrap checks the remote catalog on startup, refreshes the database
// when it is stale and loads the sets from whatever file is present.
func (s *Service) Bootstrap() {
	go func() {
		remote := s.database.FetchRemoteMeta(context.Background())
		if remote == nil {
			s.log(i18n.KeyMetaFail)
		}
		if s.database.NeedsUpdate(remote) {
			s.downloadDatabaseTask(remote, false)
		}
		if s.DatabaseReady() {
			s.loadSetsTask()
		}
	}()
}

// DownloadDatabase refreshes the database in the background.
func (s *Service) DownloadDatabase() {
	go s.downloadDatabaseTask(nil, false)
}

// LoadSets loads the set index from the local database in the background.
func (s *Service) LoadSets() {
	go s.loadSetsTask()
}

// downloadDatabaseTask streams the database to disk. It reports success so
// the corrupt-database recovery can chain a reload.
func (s *Service) downloadDatabaseTask(remote *mtgjson.MetaEntry, autoLoadAfter bool) {
	if !s.dbMu.TryLock() {
		s.log(i18n.KeyDownloadInProgress)
		return
	}

	success := false
	func() {
		defer func() {
			s.status(i18n.KeyStatusReady)
			s.resetProgress()
			s.dbMu.Unlock()
		}()

		if remote == nil {
			remote = s.database.FetchRemoteMeta(context.Background())
		}

		s.status(i18n.KeyStatusDownloadingDB)
		s.log(i18n.KeyLogDBStart)

		err := s.database.DownloadDatabase(context.Background(), remote, func(percent, speed float64) {
			s.progress(percent, fmt.Sprintf("%5.1f%% (%.2f MB/s)", percent, speed))
		})
		if err != nil {
			s.errorEvent(s.loc.Textf(i18n.KeyErrorDBDownload, err.Error()))
			return
		}
		success = true
		s.log(i18n.KeyLogDBDoneHint)
	}()

	if autoLoadAfter && success {
		s.loadSetsTask()
	}
}

// loadSetsTask parses the local database. A parse failure is treated as a
// corrupt download: the local files are dropped and a fresh download with
// an automatic reload is chained.
func (s *Service) loadSetsTask() {
	if !s.setsMu.TryLock() {
		s.log(i18n.KeyLogSetsInProgress)
		return
	}

	corrupt := false
	func() {
		defer func() {
			s.status(i18n.KeyStatusReady)
			s.resetProgress()
			s.setsMu.Unlock()
		}()

		s.status(i18n.KeySetsLoading)

		index, metadata, err := s.database.LoadSets()
		if err != nil {
			s.errorEvent(s.loc.Textf(i18n.KeyErrorLoadSets, err.Error()))
			corrupt = true
			return
		}
		s.setIndex(index)
		s.emit(model.Event{Kind: model.EventSetsLoaded, Sets: &model.SetsLoaded{Index: index, Metadata: metadata}})
		s.log(i18n.KeySetsLoaded, len(metadata))
	}()

	if corrupt {
		s.database.ResetLocalDatabase()
		s.log(i18n.KeyLogDBCorrupted)
		go s.downloadDatabaseTask(nil, true)
	}
}

// Request describes one image acquisition run.
type Request struct {
	SetCodes     []string
	TypeKey      string
	RarityKey    string
	NameContains string
	LanguageCode string
	Destination  string
	AppLocale    string
	Token        *CancelToken
}

// DownloadCards starts an acquisition run in the background and returns
// its run id. The run reports through the event channel and always ends
// with a completion event carrying that id, including when it is rejected
// because another run holds the lock.
func (s *Service) DownloadCards(req Request) string {
	if req.Token == nil {
		req.Token = NewCancelToken()
	}
	id := uuid.NewString()
	go func() {
		if !s.runMu.TryLock() {
			s.log(i18n.KeyDownloadInProgress)
			s.emit(model.Event{Kind: model.EventDownloadComplete, Complete: &model.DownloadComplete{
				RunID:    id,
				Canceled: true,
			}})
			return
		}
		defer s.runMu.Unlock()
		newRun(s, req, id).execute()
	}()
	return id
}

func (s *Service) confirm(count int, estimatedGB float64) bool {
	reply := make(chan bool, 1)
	s.emit(model.Event{Kind: model.EventConfirm, Confirm: &model.ConfirmRequest{
		Count:       count,
		EstimatedGB: estimatedGB,
		Reply:       reply,
	}})
	return <-reply
}

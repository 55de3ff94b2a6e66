package download

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mtgget/mtg-downloader/internal/filter"
	"github.com/mtgget/mtg-downloader/internal/i18n"
	"github.com/mtgget/mtg-downloader/internal/model"
	"github.com/mtgget/mtg-downloader/internal/naming"
	"github.com/mtgget/mtg-downloader/internal/platform"
	"github.com/mtgget/mtg-downloader/internal/scryfall"
)

// run holds the state of one acquisition: counters, the per-set missing
// translation tally and the request pacing. A fresh run is created per
// DownloadCards call so no state leaks between runs.
type run struct {
	svc *Service
	req Request
	id  string

	limiter    *rate.Limiter
	primary404 map[string]int
	downloaded int
	total      int
	canceled   bool
	failed     bool
}

func newRun(s *Service, req Request, id string) *run {
	return &run{
		svc:        s,
		req:        req,
		id:         id,
		limiter:    rate.NewLimiter(rate.Every(s.opts.RequestDelay), 1),
		primary404: make(map[string]int),
	}
}

func (r *run) finish() {
	switch {
	case r.canceled:
		r.svc.log(i18n.KeyLogDownloadStopped)
	case r.failed:
		// The folder creation error was already reported as an event.
	default:
		r.svc.log(i18n.KeyLogDownloadDone)
	}
	r.svc.status(i18n.KeyStatusReady)
	r.svc.resetProgress()
	r.complete(r.canceled || r.failed)
}

func (r *run) complete(canceled bool) {
	r.svc.emit(model.Event{Kind: model.EventDownloadComplete, Complete: &model.DownloadComplete{
		RunID:    r.id,
		Canceled: canceled,
	}})
}

func (r *run) abort(logKey string) {
	if logKey != "" {
		r.svc.log(logKey)
	}
	r.svc.status(i18n.KeyStatusReady)
	r.svc.resetProgress()
	r.complete(true)
}

func (r *run) execute() {
	s := r.svc
	s.status(i18n.KeyStatusFiltering)

	if err := platform.CreateDirectoryIfNotExists(r.req.Destination); err != nil {
		s.errorEvent(err.Error())
		r.abort("")
		return
	}

	selected, total := filter.Apply(s.currentIndex(), filter.Criteria{
		SetCodes:     r.req.SetCodes,
		TypeKey:      r.req.TypeKey,
		RarityKey:    r.req.RarityKey,
		NameContains: r.req.NameContains,
	})
	r.total = total

	if total == 0 {
		s.errorEvent(s.loc.GetText(i18n.KeyErrorNoCards))
		r.abort("")
		return
	}

	if total >= s.opts.WarnThreshold {
		estimatedGB := float64(total) * s.opts.AvgMBPerImage / 1024
		if !s.confirm(total, estimatedGB) {
			r.abort(i18n.KeyLogDownloadCancelled)
			return
		}
	}

	s.status(i18n.KeyStatusDownloadingCards, total)
	s.log(i18n.KeyLogDownloadStart, total)

	index := s.currentIndex()
	for _, code := range r.req.SetCodes {
		cards, ok := selected[code]
		if !ok {
			continue
		}
		if r.req.Token.Canceled() {
			r.canceled = true
			break
		}
		if !r.downloadSet(code, index[code], cards) {
			break
		}
	}

	r.finish()
}

// downloadSet processes one set's cards. It returns false when the run
// should stop.
func (r *run) downloadSet(code string, set model.Set, cards []model.Card) bool {
	s := r.svc
	setName := set.Name(code)
	language := strings.ToLower(strings.TrimSpace(r.req.LanguageCode))
	if language == "" {
		language = "en"
	}

	languageDir := filepath.Join(
		r.req.Destination,
		naming.SetFolder(code, set),
		naming.LanguageFolder(language),
	)
	if err := platform.CreateDirectoryIfNotExists(languageDir); err != nil {
		s.errorEvent(err.Error())
		r.failed = true
		return false
	}

	for _, card := range cards {
		if r.req.Token.Canceled() {
			r.canceled = true
			return false
		}
		r.downloadCard(code, setName, languageDir, language, card)
	}
	return true
}

// downloadCard fetches one card image, walking the URL candidates with
// retries. Already present files only advance the progress counter.
func (r *run) downloadCard(code, setName, languageDir, language string, card model.Card) {
	s := r.svc

	cardDir := filepath.Join(
		languageDir,
		naming.ColorFolder(card, r.req.AppLocale),
		naming.TypeFolder(card, r.req.AppLocale),
		naming.RarityFolder(card.Rarity(), r.req.AppLocale),
	)
	cardName := card.Name()
	if cardName == "" {
		cardName = s.loc.GetText(i18n.KeyCardFallbackName)
	}
	primaryPath := filepath.Join(cardDir, naming.CardFileName(card.Number(), cardName, ""))
	fallbackPath := filepath.Join(cardDir, naming.CardFileName(card.Number(), cardName, "_EN"))

	if platform.FileExists(primaryPath) || platform.FileExists(fallbackPath) {
		r.advance()
		return
	}

	if err := platform.CreateDirectoryIfNotExists(cardDir); err != nil {
		s.log(i18n.KeyLogDownloadFailure, strings.ToUpper(language), 1, setName, cardName, err.Error())
		r.advance()
		return
	}

	langLabel := strings.ToUpper(language)
	skipPrimary := language != "en" && r.primary404[code] >= s.opts.FallbackThreshold

	success := false
	fallbackUsed := false
	attemptsMade := 0
	lastLangLabel := langLabel
	var lastErr error

	for _, candidate := range s.images.Candidates(card, code, language) {
		if candidate.Primary && skipPrimary {
			continue
		}

		attemptLabel := langLabel
		targetPath := primaryPath
		if candidate.Fallback {
			attemptLabel = "EN"
			targetPath = fallbackPath
		}

		for attempt := 1; attempt <= s.opts.Retries; attempt++ {
			attemptsMade++
			err := s.images.DownloadImage(context.Background(), candidate.URL, targetPath)
			if err == nil {
				success = true
				fallbackUsed = candidate.Fallback
				lastErr = nil
				break
			}

			lastErr = err
			lastLangLabel = attemptLabel
			notFound := scryfall.IsNotFound(err)

			logRetry := true
			if notFound && candidate.Primary {
				r.primary404[code]++
				if r.primary404[code] == s.opts.FallbackThreshold {
					s.log(i18n.KeyLogLanguageUnavailable, langLabel, setName)
				}
				logRetry = false
			}
			if logRetry {
				s.log(i18n.KeyLogDownloadRetry, attempt, s.opts.Retries, attemptLabel, setName, cardName, err.Error())
			}

			if notFound || attempt == s.opts.Retries {
				break
			}
			time.Sleep(s.opts.RetryDelay)
		}

		if success {
			break
		}
	}

	if success {
		if fallbackUsed {
			s.log(i18n.KeyLogDownloadFallback, setName, cardName)
		} else {
			s.log(i18n.KeyLogDownloadSuccess, langLabel, setName, cardName)
		}
	} else {
		reason := s.loc.GetText(i18n.KeyErrorUnknown)
		if lastErr != nil {
			reason = lastErr.Error()
		}
		attempts := attemptsMade
		if attempts < 1 {
			attempts = 1
		}
		s.log(i18n.KeyLogDownloadFailure, lastLangLabel, attempts, setName, cardName, reason)
	}

	r.advance()
	_ = r.limiter.Wait(context.Background())
}

// advance moves the progress bar after one card, downloaded or skipped.
func (r *run) advance() {
	r.downloaded++
	percent := float64(r.downloaded) / float64(r.total) * 100
	label := r.svc.loc.Textf(i18n.KeyProgressCardsLabel,
		fmt.Sprintf("%5.1f", percent), r.downloaded, r.total)
	r.svc.progress(percent, label)
}

package config

import (
	"encoding/json"
	"os"
	"sync"
)

// Settings keys inside config.json
const (
	KeyAppLanguage   = "app_language"
	KeyImageLanguage = "image_language"
	KeyDestination   = "destination_folder"
)

// Default values
const (
	DefaultAppLanguage   = "en"
	DefaultImageLanguage = "en"
)

// Settings manages application configuration persisted as a config.json
// file next to the database files. Reads come from the in-memory copy,
// writes go straight to disk.
type Settings struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// NewSettings loads the configuration from path. A missing or corrupt file
// yields empty settings and is rewritten on the first change.
func NewSettings(path string) *Settings {
	s := &Settings{path: path, values: make(map[string]string)}
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var stored map[string]string
	if err := json.Unmarshal(data, &stored); err != nil {
		return s
	}
	s.values = stored
	return s
}

func (s *Settings) get(key, fallback string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value, ok := s.values[key]; ok && value != "" {
		return value
	}
	return fallback
}

func (s *Settings) set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return
	}
	// Config persistence is best effort, the app keeps working in memory.
	_ = os.WriteFile(s.path, data, 0o644)
}

// GetAppLanguage returns the configured application language
func (s *Settings) GetAppLanguage() string {
	return s.get(KeyAppLanguage, DefaultAppLanguage)
}

// SetAppLanguage sets the application language
func (s *Settings) SetAppLanguage(lang string) {
	s.set(KeyAppLanguage, lang)
}

// GetImageLanguage returns the preferred card image language
func (s *Settings) GetImageLanguage() string {
	return s.get(KeyImageLanguage, DefaultImageLanguage)
}

// SetImageLanguage sets the preferred card image language
func (s *Settings) SetImageLanguage(lang string) {
	s.set(KeyImageLanguage, lang)
}

// GetDestination returns the image destination folder, falling back to the
// given default when none was chosen yet.
func (s *Settings) GetDestination(fallback string) string {
	return s.get(KeyDestination, fallback)
}

// SetDestination sets the image destination folder
func (s *Settings) SetDestination(dir string) {
	s.set(KeyDestination, dir)
}

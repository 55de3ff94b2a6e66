package ui

import "time"

// Event handling
const (
	// EventPollInterval is how often the UI drains the service channel.
	EventPollInterval = 150 * time.Millisecond
)

// Layout sizing
const (
	SetListHeight  float32 = 260
	LogPanelHeight float32 = 160
)

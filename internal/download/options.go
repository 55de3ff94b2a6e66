package download

import "time"

// Default pipeline tuning
const (
	DefaultWarnThreshold     = 40000
	DefaultAvgMBPerImage     = 0.24
	DefaultRetries           = 3
	DefaultRetryDelay        = time.Second
	DefaultFallbackThreshold = 3
	DefaultRequestDelay      = 50 * time.Millisecond
	DefaultEventBuffer       = 64
)

// Options tunes the acquisition pipeline.
type Options struct {
	// WarnThreshold is the card count at which a run asks for confirmation
	// before starting.
	WarnThreshold int

	// AvgMBPerImage sizes the disk estimate shown with the confirmation.
	AvgMBPerImage float64

	// Retries is the number of attempts per image URL.
	Retries int

	// RetryDelay is the pause between attempts on the same URL.
	RetryDelay time.Duration

	// FallbackThreshold is the number of missing translations in one set
	// after which the chosen language is skipped for the rest of that set.
	FallbackThreshold int

	// RequestDelay paces image requests.
	RequestDelay time.Duration

	// EventBuffer sizes the event channel.
	EventBuffer int
}

// DefaultOptions returns the production tuning.
func DefaultOptions() Options {
	return Options{
		WarnThreshold:     DefaultWarnThreshold,
		AvgMBPerImage:     DefaultAvgMBPerImage,
		Retries:           DefaultRetries,
		RetryDelay:        DefaultRetryDelay,
		FallbackThreshold: DefaultFallbackThreshold,
		RequestDelay:      DefaultRequestDelay,
		EventBuffer:       DefaultEventBuffer,
	}
}

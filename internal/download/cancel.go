package download

import "sync/atomic"

// CancelToken is a cooperative stop flag for one acquisition run. The
// pipeline polls it between sets and between cards, so a running card
// download always finishes before the run stops.
type CancelToken struct {
	flag atomic.Bool
}

// NewCancelToken creates an unset token.
func NewCancelToken() *CancelToken {
	return &CancelToken{}
}

// Cancel requests the run to stop.
func (t *CancelToken) Cancel() {
	t.flag.Store(true)
}

// Canceled reports whether a stop was requested.
func (t *CancelToken) Canceled() bool {
	return t.flag.Load()
}

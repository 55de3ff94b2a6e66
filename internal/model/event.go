package model

// EventKind identifies one variant of the pipeline event union.
type EventKind string

const (
	// EventLog carries one log line for the UI log panel.
	EventLog EventKind = "log"

	// EventStatus carries the current status-bar text.
	EventStatus EventKind = "status"

	// EventProgress carries a progress bar update.
	EventProgress EventKind = "progress"

	// EventSetsLoaded announces a freshly loaded set index.
	EventSetsLoaded EventKind = "sets_loaded"

	// EventError carries a user-visible error message.
	EventError EventKind = "error"

	// EventConfirm asks the caller to approve a large download. The sender
	// blocks on Confirm.Reply until the caller answers.
	EventConfirm EventKind = "confirm"

	// EventDownloadComplete marks the end of an acquisition run.
	EventDownloadComplete EventKind = "download_complete"
)

// Progress is the payload of EventProgress. Percent is 0-100; Label is the
// preformatted text shown next to the bar.
type Progress struct {
	Percent float64
	Label   string
}

// SetsLoaded is the payload of EventSetsLoaded.
type SetsLoaded struct {
	Index    SetIndex
	Metadata []SetMetadata
}

// ConfirmRequest is the payload of EventConfirm. The receiver must send
// exactly one answer on Reply.
type ConfirmRequest struct {
	Count       int
	EstimatedGB float64
	Reply       chan bool
}

// DownloadComplete is the payload of EventDownloadComplete.
type DownloadComplete struct {
	RunID    string
	Canceled bool
}

// Event is the single message type drained from the pipeline's channel.
// Kind selects which payload field is set.
type Event struct {
	Kind     EventKind
	Text     string
	Progress *Progress
	Sets     *SetsLoaded
	Confirm  *ConfirmRequest
	Complete *DownloadComplete
}

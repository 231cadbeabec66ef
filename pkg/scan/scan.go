// Package scan walks a directory tree and produces a size-annotated
// [fstree.Node] tree while streaming progress to the caller.
//
// # Overview
//
// A scan runs in two phases on one dedicated goroutine. The Counting phase
// walks the tree without reading metadata to estimate the total entry count;
// the Scanning phase walks again, builds the tree, and reports percent
// complete against that estimate. Both phases respect the same depth and
// file-count bounds, so the estimate tracks the real workload.
//
// # Delivery contract
//
// [Start] returns a receive-only channel carrying zero or more progress
// snapshots followed by exactly one terminal message (result or error), after
// which the channel is closed. Per-entry problems (permissions, unreadable
// metadata) are warnings, not errors; the walk continues past them. The only
// fatal conditions are a root path that does not exist or is not a
// directory. Hitting the file-count limit truncates the walk early and is
// reported as a flag on a valid partial result, never as an error.
//
// A consumer that abandons a scan should hand the channel to [Drain] so the
// worker can run to completion; the worker has no cancellation signal.
//
// [fstree.Node]: github.com/dumap/dumap/pkg/fstree
package scan

import (
	"time"

	"github.com/dumap/dumap/pkg/errors"
	"github.com/dumap/dumap/pkg/fstree"
)

// Default configuration values.
const (
	DefaultMaxDepth         = 64
	DefaultMaxFiles         = 250000
	DefaultProgressInterval = 400
)

// messageBuffer sizes the progress channel. Sends block only when a live
// consumer falls this far behind; abandoned channels are drained instead.
const messageBuffer = 64

// Phase identifies which of the two scan passes is running.
type Phase int

const (
	// PhaseCounting is the estimation pass: entries are counted, nothing is
	// read and no tree is built.
	PhaseCounting Phase = iota
	// PhaseScanning is the build pass: metadata is read and the tree grows.
	PhaseScanning
)

// String returns the phase name for logs.
func (p Phase) String() string {
	switch p {
	case PhaseCounting:
		return "counting"
	case PhaseScanning:
		return "scanning"
	default:
		return "unknown"
	}
}

// Config bounds a single scan. The zero value is not useful; start from
// DefaultConfig. MaxDepth and ProgressInterval are clamped to at least 1,
// MaxFiles of 0 means unlimited.
type Config struct {
	MaxDepth         int
	MaxFiles         int
	ProgressInterval int
}

// DefaultConfig returns the standard scan bounds.
func DefaultConfig() Config {
	return Config{
		MaxDepth:         DefaultMaxDepth,
		MaxFiles:         DefaultMaxFiles,
		ProgressInterval: DefaultProgressInterval,
	}
}

// Progress is a point-in-time snapshot of a running scan.
//
// EstimatedTotalEntries is 0 until the Counting phase finishes. Percent is
// -1 while unknown (the whole Counting phase), then grows monotonically in
// [0, 99.9] and reaches exactly 100 only on the final snapshot. ETA is 0
// when unknown. RemainingEntries is meaningful only during Scanning.
type Progress struct {
	Phase                 Phase
	EntriesScanned        int64
	FilesScanned          int64
	DirsScanned           int64
	Warnings              int64
	Truncated             bool
	CurrentPath           string
	EstimatedTotalEntries int64
	RemainingEntries      int64
	Percent               float64
	ETA                   time.Duration
}

// Stats are the final counters of a finished scan. Elapsed spans both
// phases. The counters describe the Scanning phase, which is the one that
// produced the tree.
type Stats struct {
	EntriesScanned        int64
	FilesScanned          int64
	DirsScanned           int64
	Warnings              int64
	Truncated             bool
	EstimatedTotalEntries int64
	Elapsed               time.Duration
}

// Result is the successful outcome of a scan: the finalized tree, the final
// counters, and the warning messages in encounter order. The tree is
// immutable from here on and safe for concurrent reads.
type Result struct {
	Root     *fstree.Node
	Stats    Stats
	Warnings []string
}

// Message is one item on the scan channel: either a progress snapshot or
// the terminal outcome (exactly one of Result and Err set).
type Message struct {
	Progress *Progress
	Result   *Result
	Err      error
}

// Terminal reports whether this is the final message of the scan.
func (m Message) Terminal() bool {
	return m.Progress == nil
}

// Start launches the scan worker and returns its message channel. The
// worker owns the channel and closes it after the terminal message; it runs
// to completion or truncation regardless of whether anyone is listening, so
// abandoned channels must be handed to Drain.
func Start(root string, cfg Config) <-chan Message {
	out := make(chan Message, messageBuffer)

	go func() {
		defer close(out)

		started := time.Now()
		result, err := runPipeline(root, cfg, out)
		if err != nil {
			out <- Message{Err: err}
			return
		}
		result.Stats.Elapsed = time.Since(started)
		out <- Message{Result: result}
	}()

	return out
}

// Drain discards all remaining messages in the background so an abandoned
// worker can finish and release its channel.
func Drain(ch <-chan Message) {
	go func() {
		for range ch {
		}
	}()
}

// DisconnectedError is the synthetic fatal error a consumer reports when
// the channel closes without a terminal message. The worker always sends
// one, so observing this means the worker died.
func DisconnectedError() error {
	return errors.New(errors.ErrCodeInternal, "Scan worker disconnected unexpectedly")
}

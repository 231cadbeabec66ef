package scan

import (
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dumap/dumap/pkg/errors"
	"github.com/dumap/dumap/pkg/fstree"
)

// runPipeline validates the root, runs both walk phases, and assembles the
// final result. Fatal errors can only occur before the first phase starts.
func runPipeline(root string, cfg Config, out chan<- Message) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.New(errors.ErrCodeNotFound, "Directory does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "Path is not a directory: %s", root)
	}

	estimated := countEntries(root, cfg, out)
	return buildTree(root, cfg, out, estimated)
}

// countEntries is the Counting phase: a metadata-free walk that counts how
// many entries the Scanning phase will visit. Warnings are counted but not
// collected; they are reported again, with messages, by the second pass.
// Returns the entry count clamped to at least 1 so it can serve as a
// division-safe total.
func countEntries(root string, cfg Config, out chan<- Message) int64 {
	progress := Progress{Phase: PhaseCounting, Percent: -1}
	interval := int64(max(cfg.ProgressInterval, 1))
	maxDepth := max(cfg.MaxDepth, 1)

	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			progress.Warnings++
			if progress.EntriesScanned%interval == 0 {
				emitProgress(out, progress)
			}
			return nil
		}

		progress.EntriesScanned++
		progress.CurrentPath = path

		depth := relativeDepth(root, path)
		if depth == 0 {
			return nil
		}

		if d.IsDir() {
			progress.DirsScanned++
		} else if cfg.MaxFiles > 0 && progress.FilesScanned >= int64(cfg.MaxFiles) {
			progress.Truncated = true
			return fs.SkipAll
		} else {
			progress.FilesScanned++
		}

		if progress.EntriesScanned%interval == 0 {
			emitProgress(out, progress)
		}
		if d.IsDir() && depth >= maxDepth {
			return fs.SkipDir
		}
		return nil
	})

	estimated := max(progress.EntriesScanned, int64(1))
	progress.EstimatedTotalEntries = estimated
	emitProgress(out, progress)
	return estimated
}

// buildTree is the Scanning phase: it repeats the walk, reads metadata, and
// inserts every visited entry into the tree. Counters restart from zero so
// percent complete tracks this phase against the Counting estimate.
func buildTree(root string, cfg Config, out chan<- Message, estimated int64) (*Result, error) {
	rootNode := fstree.New(filepath.Base(root), root, 0)
	var warnings []string

	progress := Progress{
		Phase:                 PhaseScanning,
		EstimatedTotalEntries: max(estimated, int64(1)),
		Percent:               0,
	}
	phaseStarted := time.Now()
	interval := int64(max(cfg.ProgressInterval, 1))
	maxDepth := max(cfg.MaxDepth, 1)

	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			progress.Warnings++
			warnings = append(warnings, fmt.Sprintf("Could not access %s: %v", path, err))
			if progress.EntriesScanned%interval == 0 {
				updateMetrics(&progress, phaseStarted, false)
				emitProgress(out, progress)
			}
			return nil
		}

		progress.EntriesScanned++
		progress.CurrentPath = path

		depth := relativeDepth(root, path)
		if depth == 0 {
			return nil
		}

		var size int64
		if d.IsDir() {
			progress.DirsScanned++
		} else if cfg.MaxFiles > 0 && progress.FilesScanned >= int64(cfg.MaxFiles) {
			// The limit-tripping file is counted as an entry but never
			// inserted, matching the Counting phase's cutoff.
			progress.Truncated = true
			return fs.SkipAll
		} else {
			progress.FilesScanned++
			fileInfo, infoErr := d.Info()
			if infoErr != nil {
				progress.Warnings++
				warnings = append(warnings, fmt.Sprintf("Could not read metadata for %s: %v", path, infoErr))
			} else {
				size = fileInfo.Size()
			}
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "" || rel == "." {
			return nil
		}
		rootNode.Insert(rel, size)

		if progress.EntriesScanned%interval == 0 {
			updateMetrics(&progress, phaseStarted, false)
			emitProgress(out, progress)
		}
		if d.IsDir() && depth >= maxDepth {
			return fs.SkipDir
		}
		return nil
	})

	rootNode.FinalizeSizes()
	rootNode.SortBySizeDesc()

	updateMetrics(&progress, phaseStarted, true)
	emitProgress(out, progress)

	return &Result{
		Root: rootNode,
		Stats: Stats{
			EntriesScanned:        progress.EntriesScanned,
			FilesScanned:          progress.FilesScanned,
			DirsScanned:           progress.DirsScanned,
			Warnings:              progress.Warnings,
			Truncated:             progress.Truncated,
			EstimatedTotalEntries: progress.EstimatedTotalEntries,
		},
		Warnings: warnings,
	}, nil
}

// updateMetrics recomputes percent, remaining, and ETA from the raw
// counters. It runs only when a snapshot is about to be emitted. Percent is
// clamped to 99.9 and never decreases until the finished snapshot pins it
// to exactly 100.
func updateMetrics(p *Progress, phaseStarted time.Time, finished bool) {
	total := max(p.EstimatedTotalEntries, int64(1))

	if finished {
		p.Percent = 100
		p.RemainingEntries = 0
		p.ETA = 0
		return
	}

	percent := float64(p.EntriesScanned) / float64(total) * 100
	percent = math.Min(math.Max(percent, 0), 99.9)
	p.Percent = math.Max(percent, p.Percent)

	p.RemainingEntries = max(total-p.EntriesScanned, int64(0))

	p.ETA = 0
	if p.EntriesScanned == 0 {
		return
	}
	elapsed := time.Since(phaseStarted).Seconds()
	if elapsed <= 0 {
		return
	}
	rate := float64(p.EntriesScanned) / elapsed
	if rate <= 0 {
		return
	}
	etaSeconds := float64(p.RemainingEntries) / rate
	p.ETA = time.Duration(math.Max(etaSeconds, 0) * float64(time.Second))
}

// emitProgress sends a copy of the current snapshot. The channel is
// buffered; a live consumer keeps up, an abandoned one is drained.
func emitProgress(out chan<- Message, p Progress) {
	snapshot := p
	out <- Message{Progress: &snapshot}
}

// relativeDepth returns how many levels below root the path sits; the root
// itself is depth 0.
func relativeDepth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

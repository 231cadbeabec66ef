package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dumap/dumap/pkg/errors"
	"github.com/dumap/dumap/pkg/fstree"
)

// writeFile creates path with a payload of the given size, making parent
// directories as needed.
func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll(%q) failed: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(strings.Repeat("x", size)), 0o644); err != nil {
		t.Fatalf("WriteFile(%q) failed: %v", path, err)
	}
}

// collect consumes the scan channel as a live consumer would, returning all
// progress snapshots and the terminal message. It fails the test if the
// channel misbehaves (no terminal message, or traffic after it).
func collect(t *testing.T, ch <-chan Message) ([]Progress, Message) {
	t.Helper()
	var snapshots []Progress
	for msg := range ch {
		if msg.Terminal() {
			if _, ok := <-ch; ok {
				t.Fatal("expected channel to close after terminal message")
			}
			return snapshots, msg
		}
		snapshots = append(snapshots, *msg.Progress)
	}
	t.Fatal("channel closed without a terminal message")
	return nil, Message{}
}

func findChild(t *testing.T, n *fstree.Node, name string) *fstree.Node {
	t.Helper()
	for _, child := range n.Children {
		if child.Name == name {
			return child
		}
	}
	t.Fatalf("expected child %q under %q", name, n.Path)
	return nil
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MaxDepth != 64 {
		t.Errorf("expected MaxDepth 64, got %d", cfg.MaxDepth)
	}
	if cfg.MaxFiles != 250000 {
		t.Errorf("expected MaxFiles 250000, got %d", cfg.MaxFiles)
	}
	if cfg.ProgressInterval != 400 {
		t.Errorf("expected ProgressInterval 400, got %d", cfg.ProgressInterval)
	}
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase    Phase
		expected string
	}{
		{PhaseCounting, "counting"},
		{PhaseScanning, "scanning"},
		{Phase(42), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.phase.String(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestStartMissingRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	snapshots, final := collect(t, Start(missing, DefaultConfig()))

	if len(snapshots) != 0 {
		t.Errorf("expected no progress before a fatal error, got %d snapshots", len(snapshots))
	}
	if final.Result != nil {
		t.Error("expected no result on fatal error")
	}
	if final.Err == nil {
		t.Fatal("expected an error for a missing root")
	}
	if !errors.Is(final.Err, errors.ErrCodeNotFound) {
		t.Errorf("expected code %s, got %s", errors.ErrCodeNotFound, errors.GetCode(final.Err))
	}
	expected := fmt.Sprintf("Directory does not exist: %s", missing)
	if got := errors.UserMessage(final.Err); got != expected {
		t.Errorf("expected message %q, got %q", expected, got)
	}
}

func TestStartRootNotDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain.txt")
	writeFile(t, file, 8)

	snapshots, final := collect(t, Start(file, DefaultConfig()))

	if len(snapshots) != 0 {
		t.Errorf("expected no progress before a fatal error, got %d snapshots", len(snapshots))
	}
	if final.Err == nil {
		t.Fatal("expected an error for a non-directory root")
	}
	if !errors.Is(final.Err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected code %s, got %s", errors.ErrCodeInvalidInput, errors.GetCode(final.Err))
	}
	expected := fmt.Sprintf("Path is not a directory: %s", file)
	if got := errors.UserMessage(final.Err); got != expected {
		t.Errorf("expected message %q, got %q", expected, got)
	}
}

func TestStartBuildsTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "big.bin"), 4096)
	writeFile(t, filepath.Join(root, "docs", "a.txt"), 1024)
	writeFile(t, filepath.Join(root, "docs", "b.txt"), 512)
	writeFile(t, filepath.Join(root, "media", "video", "clip.mkv"), 2048)
	if err := os.Mkdir(filepath.Join(root, "empty"), 0o755); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}

	_, final := collect(t, Start(root, DefaultConfig()))

	if final.Err != nil {
		t.Fatalf("expected success, got error: %v", final.Err)
	}
	result := final.Result
	if result == nil {
		t.Fatal("expected a result")
	}

	stats := result.Stats
	if stats.FilesScanned != 4 {
		t.Errorf("expected 4 files, got %d", stats.FilesScanned)
	}
	if stats.DirsScanned != 4 {
		t.Errorf("expected 4 dirs, got %d", stats.DirsScanned)
	}
	// The root itself counts as an entry but as neither file nor dir.
	if stats.EntriesScanned != stats.FilesScanned+stats.DirsScanned+1 {
		t.Errorf("expected entries = files + dirs + 1, got %d", stats.EntriesScanned)
	}
	if stats.EstimatedTotalEntries != stats.EntriesScanned {
		t.Errorf("expected estimate %d to match entries %d", stats.EstimatedTotalEntries, stats.EntriesScanned)
	}
	if stats.Truncated {
		t.Error("expected no truncation")
	}
	if stats.Warnings != 0 {
		t.Errorf("expected no warnings, got %d", stats.Warnings)
	}
	if stats.Elapsed <= 0 {
		t.Errorf("expected positive elapsed time, got %v", stats.Elapsed)
	}

	tree := result.Root
	if tree.Name != filepath.Base(root) {
		t.Errorf("expected root name %q, got %q", filepath.Base(root), tree.Name)
	}
	if tree.Path != root {
		t.Errorf("expected root path %q, got %q", root, tree.Path)
	}
	if tree.Size != 7680 {
		t.Errorf("expected aggregated size 7680, got %d", tree.Size)
	}

	var names []string
	for _, child := range tree.Children {
		names = append(names, child.Name)
	}
	expectedOrder := []string{"big.bin", "media", "docs", "empty"}
	if len(names) != len(expectedOrder) {
		t.Fatalf("expected %d children, got %v", len(expectedOrder), names)
	}
	for i, name := range expectedOrder {
		if names[i] != name {
			t.Errorf("expected child %d to be %q, got %q", i, name, names[i])
		}
	}

	docs := findChild(t, tree, "docs")
	if docs.Size != 1536 {
		t.Errorf("expected docs size 1536, got %d", docs.Size)
	}
	if a := findChild(t, docs, "a.txt"); a.Size != 1024 {
		t.Errorf("expected a.txt size 1024, got %d", a.Size)
	}

	empty := findChild(t, tree, "empty")
	if empty.Size != 0 {
		t.Errorf("expected empty dir size 0, got %d", empty.Size)
	}
	if empty.IsDir() {
		t.Error("expected childless directory to report as leaf")
	}
}

func TestStartProgressMonotonicAndCompletes(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 12; i++ {
		writeFile(t, filepath.Join(root, fmt.Sprintf("dir%d", i%3), fmt.Sprintf("file%02d.dat", i)), 64+i)
	}

	cfg := DefaultConfig()
	cfg.ProgressInterval = 1
	snapshots, final := collect(t, Start(root, cfg))

	if final.Err != nil {
		t.Fatalf("expected success, got error: %v", final.Err)
	}

	var counting, scanning []Progress
	for _, p := range snapshots {
		switch p.Phase {
		case PhaseCounting:
			counting = append(counting, p)
		case PhaseScanning:
			scanning = append(scanning, p)
		}
	}
	if len(counting) == 0 {
		t.Fatal("expected counting-phase snapshots")
	}
	if len(scanning) == 0 {
		t.Fatal("expected scanning-phase snapshots")
	}

	for i, p := range counting {
		if p.Percent != -1 {
			t.Errorf("counting snapshot %d: expected unknown percent, got %v", i, p.Percent)
		}
	}
	var withEstimate int
	for _, p := range counting {
		if p.EstimatedTotalEntries > 0 {
			withEstimate++
		}
	}
	if withEstimate != 1 {
		t.Errorf("expected exactly one counting snapshot with an estimate, got %d", withEstimate)
	}
	if last := counting[len(counting)-1]; last.EstimatedTotalEntries <= 0 {
		t.Errorf("expected final counting snapshot to carry the estimate, got %d", last.EstimatedTotalEntries)
	}

	previous := -1.0
	for i, p := range scanning {
		if p.Percent < previous {
			t.Errorf("scanning snapshot %d: percent decreased from %v to %v", i, previous, p.Percent)
		}
		previous = p.Percent
		if i < len(scanning)-1 && p.Percent > 99.9 {
			t.Errorf("scanning snapshot %d: expected percent <= 99.9 before completion, got %v", i, p.Percent)
		}
	}

	terminal := scanning[len(scanning)-1]
	if terminal.Percent != 100 {
		t.Errorf("expected final percent exactly 100, got %v", terminal.Percent)
	}
	if terminal.RemainingEntries != 0 {
		t.Errorf("expected no remaining entries at completion, got %d", terminal.RemainingEntries)
	}
	if terminal.ETA != 0 {
		t.Errorf("expected zero ETA at completion, got %v", terminal.ETA)
	}
}

func TestStartTruncatesAtMaxFiles(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 10; i++ {
		writeFile(t, filepath.Join(root, fmt.Sprintf("f%d.dat", i)), 10*(i+1))
	}

	cfg := DefaultConfig()
	cfg.MaxFiles = 3
	cfg.ProgressInterval = 1
	snapshots, final := collect(t, Start(root, cfg))

	if final.Err != nil {
		t.Fatalf("expected a truncated result, got error: %v", final.Err)
	}
	result := final.Result

	if !result.Stats.Truncated {
		t.Error("expected truncation flag")
	}
	if result.Stats.FilesScanned != 3 {
		t.Errorf("expected exactly 3 files scanned, got %d", result.Stats.FilesScanned)
	}
	// Root, three inserted files, and the limit-tripping fourth entry.
	if result.Stats.EntriesScanned != 5 {
		t.Errorf("expected 5 entries scanned, got %d", result.Stats.EntriesScanned)
	}
	if result.Stats.EstimatedTotalEntries != 5 {
		t.Errorf("expected estimate 5, got %d", result.Stats.EstimatedTotalEntries)
	}

	if len(result.Root.Children) != 3 {
		t.Fatalf("expected 3 children in truncated tree, got %d", len(result.Root.Children))
	}
	if result.Root.Size != 10+20+30 {
		t.Errorf("expected truncated total 60, got %d", result.Root.Size)
	}

	var sawTruncatedCounting bool
	for _, p := range snapshots {
		if p.Phase == PhaseCounting && p.Truncated {
			sawTruncatedCounting = true
		}
	}
	if !sawTruncatedCounting {
		t.Error("expected the counting phase to report truncation too")
	}
}

func TestStartMaxDepthBoundsTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "top.txt"), 100)
	writeFile(t, filepath.Join(root, "d1", "mid.txt"), 200)
	writeFile(t, filepath.Join(root, "d1", "d2", "deep.txt"), 400)

	tests := []struct {
		name      string
		maxDepth  int
		wantSize  int64
		wantFiles int64
		wantDirs  int64
	}{
		{"depth 1 keeps only top level", 1, 100, 1, 1},
		{"depth 2 adds one level", 2, 300, 2, 2},
		{"depth 3 reaches everything", 3, 700, 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.MaxDepth = tt.maxDepth
			_, final := collect(t, Start(root, cfg))

			if final.Err != nil {
				t.Fatalf("expected success, got error: %v", final.Err)
			}
			result := final.Result
			if result.Root.Size != tt.wantSize {
				t.Errorf("expected total size %d, got %d", tt.wantSize, result.Root.Size)
			}
			if result.Stats.FilesScanned != tt.wantFiles {
				t.Errorf("expected %d files, got %d", tt.wantFiles, result.Stats.FilesScanned)
			}
			if result.Stats.DirsScanned != tt.wantDirs {
				t.Errorf("expected %d dirs, got %d", tt.wantDirs, result.Stats.DirsScanned)
			}
		})
	}
}

func TestStartEmptyRoot(t *testing.T) {
	root := t.TempDir()

	_, final := collect(t, Start(root, DefaultConfig()))

	if final.Err != nil {
		t.Fatalf("expected success, got error: %v", final.Err)
	}
	result := final.Result
	if result.Root.Size != 0 {
		t.Errorf("expected size 0, got %d", result.Root.Size)
	}
	if len(result.Root.Children) != 0 {
		t.Errorf("expected no children, got %d", len(result.Root.Children))
	}
	if result.Stats.EntriesScanned != 1 {
		t.Errorf("expected the root to be the only entry, got %d", result.Stats.EntriesScanned)
	}
	if result.Stats.EstimatedTotalEntries != 1 {
		t.Errorf("expected estimate 1, got %d", result.Stats.EstimatedTotalEntries)
	}
}

func TestStartUnreadableSubdir(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are ignored when running as root")
	}

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ok.txt"), 32)
	locked := filepath.Join(root, "locked")
	writeFile(t, filepath.Join(locked, "hidden.txt"), 64)
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chmod(locked, 0o755)
	})

	_, final := collect(t, Start(root, DefaultConfig()))

	if final.Err != nil {
		t.Fatalf("expected warnings instead of an error, got: %v", final.Err)
	}
	result := final.Result

	if result.Stats.Warnings != 1 {
		t.Errorf("expected 1 warning, got %d", result.Stats.Warnings)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning message, got %v", result.Warnings)
	}
	if !strings.Contains(result.Warnings[0], "Could not access") {
		t.Errorf("expected an access warning, got %q", result.Warnings[0])
	}
	if !strings.Contains(result.Warnings[0], locked) {
		t.Errorf("expected warning to name %q, got %q", locked, result.Warnings[0])
	}

	// The unreadable directory is still part of the tree, just empty.
	lockedNode := findChild(t, result.Root, "locked")
	if lockedNode.Size != 0 {
		t.Errorf("expected unreadable dir size 0, got %d", lockedNode.Size)
	}
	if result.Root.Size != 32 {
		t.Errorf("expected total 32, got %d", result.Root.Size)
	}
}

func TestRelativeDepth(t *testing.T) {
	root := filepath.Join("tmp", "scan-root")

	tests := []struct {
		name     string
		path     string
		expected int
	}{
		{"root itself", root, 0},
		{"direct child", filepath.Join(root, "a"), 1},
		{"grandchild", filepath.Join(root, "a", "b"), 2},
		{"deep path", filepath.Join(root, "a", "b", "c", "d"), 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := relativeDepth(root, tt.path); got != tt.expected {
				t.Errorf("expected depth %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestUpdateMetrics(t *testing.T) {
	t.Run("finished pins terminal values", func(t *testing.T) {
		p := Progress{EntriesScanned: 50, EstimatedTotalEntries: 100, Percent: 42}
		updateMetrics(&p, time.Now(), true)
		if p.Percent != 100 {
			t.Errorf("expected percent 100, got %v", p.Percent)
		}
		if p.RemainingEntries != 0 {
			t.Errorf("expected remaining 0, got %d", p.RemainingEntries)
		}
		if p.ETA != 0 {
			t.Errorf("expected ETA 0, got %v", p.ETA)
		}
	})

	t.Run("caps in-flight percent at 99.9", func(t *testing.T) {
		p := Progress{EntriesScanned: 100, EstimatedTotalEntries: 100}
		updateMetrics(&p, time.Now().Add(-time.Second), false)
		if p.Percent != 99.9 {
			t.Errorf("expected percent 99.9, got %v", p.Percent)
		}
	})

	t.Run("never decreases", func(t *testing.T) {
		p := Progress{EntriesScanned: 10, EstimatedTotalEntries: 100, Percent: 50}
		updateMetrics(&p, time.Now().Add(-time.Second), false)
		if p.Percent != 50 {
			t.Errorf("expected percent to hold at 50, got %v", p.Percent)
		}
	})

	t.Run("no rate means no eta", func(t *testing.T) {
		p := Progress{EntriesScanned: 0, EstimatedTotalEntries: 100}
		updateMetrics(&p, time.Now().Add(-time.Second), false)
		if p.ETA != 0 {
			t.Errorf("expected unknown ETA, got %v", p.ETA)
		}
		if p.RemainingEntries != 100 {
			t.Errorf("expected remaining 100, got %d", p.RemainingEntries)
		}
	})

	t.Run("steady rate yields an eta", func(t *testing.T) {
		p := Progress{EntriesScanned: 50, EstimatedTotalEntries: 100}
		updateMetrics(&p, time.Now().Add(-time.Second), false)
		if p.ETA <= 0 {
			t.Errorf("expected positive ETA, got %v", p.ETA)
		}
		if p.RemainingEntries != 50 {
			t.Errorf("expected remaining 50, got %d", p.RemainingEntries)
		}
	})
}

func TestDrain(t *testing.T) {
	ch := make(chan Message)
	Drain(ch)
	for i := 0; i < 100; i++ {
		ch <- Message{Progress: &Progress{EntriesScanned: int64(i)}}
	}
	close(ch)
}

func TestDisconnectedError(t *testing.T) {
	err := DisconnectedError()
	if !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("expected code %s, got %s", errors.ErrCodeInternal, errors.GetCode(err))
	}
	if got := errors.UserMessage(err); got != "Scan worker disconnected unexpectedly" {
		t.Errorf("unexpected message %q", got)
	}
}

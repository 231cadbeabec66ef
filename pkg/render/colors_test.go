package render

import (
	"regexp"
	"testing"

	"github.com/dumap/dumap/pkg/fstree"
)

func TestKeyFillDeterministic(t *testing.T) {
	if KeyFill("txt") != KeyFill("txt") {
		t.Error("KeyFill() should be deterministic")
	}

	hexColorRegex := regexp.MustCompile(`^#[0-9a-f]{6}$`)
	for _, key := range []string{"txt", "mkv", "go", "rs", "tar"} {
		if hex := KeyFill(key); !hexColorRegex.MatchString(hex) {
			t.Errorf("KeyFill(%q) should produce a valid hex color, got %q", key, hex)
		}
	}
}

func TestKeyFillUsesPalette(t *testing.T) {
	inPalette := func(c rgb) bool {
		for _, p := range palette {
			if p == c {
				return true
			}
		}
		return false
	}

	for _, key := range []string{"txt", "mkv", "go", "iso", "log"} {
		if c := colorForKey(key); !inPalette(c) {
			t.Errorf("colorForKey(%q) = %v is not a palette color", key, c)
		}
	}
}

func TestKeyFillNoExtension(t *testing.T) {
	if got := KeyFill(fstree.NoExtensionKey); got != "#7a8088" {
		t.Errorf("expected fixed no-extension color #7a8088, got %q", got)
	}
}

func TestCanvasFill(t *testing.T) {
	if got := CanvasFill(); got != "#1a1e22" {
		t.Errorf("expected canvas color #1a1e22, got %q", got)
	}
}

func TestHashKey(t *testing.T) {
	if hashKey("txt") != hashKey("txt") {
		t.Error("hashKey() should be deterministic")
	}
	if hashKey("txt") == hashKey("mkv") {
		t.Error("hashKey() should produce different hashes for different keys")
	}
}

func TestShade(t *testing.T) {
	tests := []struct {
		name     string
		base     rgb
		depth    int
		expected rgb
	}{
		{"depth 0 is unchanged", rgb{72, 78, 86}, 0, rgb{72, 78, 86}},
		{"depth 1 darkens slightly", rgb{72, 78, 86}, 1, rgb{70, 76, 83}},
		{"deep cells bottom out", rgb{72, 78, 86}, 100, rgb{42, 45, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shade(tt.base, tt.depth); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}

	// The floor is reached at depth 14 and holds from there on.
	if shade(folderColor, 14) != shade(folderColor, 1000) {
		t.Error("expected shade factor to stop decreasing at the floor")
	}
}

func TestCellFill(t *testing.T) {
	dir := fstree.New("videos", "/data/videos", 0)
	dir.Children = append(dir.Children, fstree.New("clip.mkv", "/data/videos/clip.mkv", 10))
	if got := CellFill(dir, 2); got != shade(folderColor, 2).hex() {
		t.Errorf("expected directory to use the folder color, got %v", got)
	}

	file := fstree.New("notes.txt", "/data/notes.txt", 10)
	if got := CellFill(file, 3); got != shade(colorForKey("txt"), 3).hex() {
		t.Errorf("expected file color to come from its extension key, got %v", got)
	}
}

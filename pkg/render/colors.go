package render

import (
	"fmt"
	"hash/fnv"

	"github.com/dumap/dumap/pkg/fstree"
)

const (
	shadePerDepth = 0.03
	shadeFloor    = 0.58
)

type rgb struct {
	r, g, b uint8
}

func (c rgb) hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.r, c.g, c.b)
}

var (
	canvasColor = rgb{26, 30, 34}
	folderColor = rgb{72, 78, 86}
	noExtColor  = rgb{122, 128, 136}
)

// palette holds the hue wheel files are mapped onto by extension hash. The
// entries are mid-saturation so white labels stay legible on any of them.
var palette = [24]rgb{
	{210, 96, 96},
	{214, 127, 78},
	{196, 151, 72},
	{153, 171, 72},
	{106, 175, 87},
	{79, 177, 120},
	{74, 173, 153},
	{73, 166, 179},
	{76, 152, 194},
	{88, 137, 204},
	{109, 124, 209},
	{128, 112, 207},
	{149, 104, 197},
	{173, 98, 185},
	{191, 95, 166},
	{201, 96, 143},
	{210, 106, 124},
	{171, 126, 98},
	{144, 140, 101},
	{111, 146, 114},
	{95, 147, 133},
	{101, 142, 152},
	{112, 132, 165},
	{130, 121, 167},
}

// CellFill returns the hex fill for one treemap cell. Directories share a
// slate tone, files hash their extension key into the palette, and both
// darken with nesting depth. The interactive grid and the SVG sink draw
// from the same mapping so exports look like the live view.
func CellFill(n *fstree.Node, depth int) string {
	return colorForNode(n, depth).hex()
}

// KeyFill returns the unshaded hex color for an extension key. Legend
// swatches use this directly so they show the brightest variant of each
// hue.
func KeyFill(key string) string {
	return colorForKey(key).hex()
}

// CanvasFill returns the hex background color behind the cells.
func CanvasFill() string {
	return canvasColor.hex()
}

func colorForNode(n *fstree.Node, depth int) rgb {
	if n.IsDir() {
		return shade(folderColor, depth)
	}
	return shade(colorForKey(fstree.ExtensionKey(n.Path)), depth)
}

func colorForKey(key string) rgb {
	if key == fstree.NoExtensionKey {
		return noExtColor
	}
	return palette[hashKey(key)%uint64(len(palette))]
}

// shade darkens a color by nesting depth, bottoming out at shadeFloor so
// deep cells never go fully black.
func shade(c rgb, depth int) rgb {
	factor := 1.0 - float64(depth)*shadePerDepth
	if factor < shadeFloor {
		factor = shadeFloor
	}
	if factor > 1.0 {
		factor = 1.0
	}
	return rgb{
		r: scaleChannel(c.r, factor),
		g: scaleChannel(c.g, factor),
		b: scaleChannel(c.b, factor),
	}
}

func scaleChannel(v uint8, factor float64) uint8 {
	scaled := float64(v)*factor + 0.5
	if scaled < 0 {
		return 0
	}
	if scaled > 255 {
		return 255
	}
	return uint8(scaled)
}

func hashKey(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

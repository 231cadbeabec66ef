package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dumap/dumap/pkg/render"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - accents, selection
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values, cell labels
	colorDim    = lipgloss.Color("240") // Dim gray - muted text

	// colorCanvas matches the SVG export background so both frontends frame
	// the same picture.
	colorCanvas = lipgloss.Color(render.CanvasFill())
)

// =============================================================================
// Styles
// =============================================================================

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleError   = lipgloss.NewStyle().Foreground(colorRed)
	styleSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCanvas   = lipgloss.NewStyle().Background(colorCanvas)
	styleSelected = lipgloss.NewStyle().Background(colorCyan).Foreground(colorWhite).Bold(true)
)

package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/dumap/dumap/pkg/errors"
	"github.com/dumap/dumap/pkg/format"
	"github.com/dumap/dumap/pkg/render"
	"github.com/dumap/dumap/pkg/scan"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Starting scan..."
	}

	switch m.mode {
	case modeError:
		return m.errorView()
	case modeReady:
		return m.readyView()
	default:
		return m.scanningView()
	}
}

func (m Model) headerView() string {
	crumb := m.opts.Root
	if len(m.trail) > 1 {
		crumb = m.viewRoot().Path
	}
	return " " + styleTitle.Render("dumap") + styleDim.Render(" · ") +
		styleValue.Render(truncatePath(crumb, m.width-10))
}

func (m Model) scanningView() string {
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n\n")

	p := m.progress
	if p.Phase == scan.PhaseCounting {
		b.WriteString(fmt.Sprintf("  %s Counting entries\n\n", m.spin.View()))
		b.WriteString(fmt.Sprintf("  %s entries found\n", styleValue.Render(humanize.Comma(p.EntriesScanned))))
	} else {
		percent := math.Max(p.Percent, 0)
		b.WriteString(fmt.Sprintf("  %s Scanning\n\n", m.spin.View()))
		b.WriteString(fmt.Sprintf("  %s %s\n\n", m.bar.ViewAs(percent/100), styleValue.Render(fmt.Sprintf("%5.1f%%", percent))))
		b.WriteString(fmt.Sprintf("  %s of ~%s entries · %s files · %s folders\n",
			humanize.Comma(p.EntriesScanned), humanize.Comma(p.EstimatedTotalEntries),
			humanize.Comma(p.FilesScanned), humanize.Comma(p.DirsScanned)))
		if p.ETA > 0 {
			b.WriteString(styleDim.Render(fmt.Sprintf("  about %s left", format.DurationCompact(p.ETA))))
			b.WriteString("\n")
		}
	}

	if p.CurrentPath != "" {
		b.WriteString("\n")
		b.WriteString(styleDim.Render("  " + truncatePath(p.CurrentPath, m.width-4)))
		b.WriteString("\n")
	}
	if p.Truncated {
		b.WriteString("\n")
		b.WriteString(styleWarning.Render(fmt.Sprintf("  ! file limit reached, keeping the first %s files",
			humanize.Comma(int64(m.opts.Scan.MaxFiles)))))
		b.WriteString("\n")
	}
	if p.Warnings > 0 {
		b.WriteString(styleDim.Render(fmt.Sprintf("  %d entries skipped", p.Warnings)))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) readyView() string {
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")

	w, h := m.gridSize()
	if m.showWarnings {
		b.WriteString(m.warningsView(w, h))
	} else {
		b.WriteString(renderGrid(m.visibleCells(), w, h, m.selected, !m.opts.HideLabels))
	}
	b.WriteString("\n")

	if legend := m.legendView(); legend != "" {
		b.WriteString(legend)
		b.WriteString("\n")
	}
	b.WriteString(m.summaryView())
	b.WriteString("\n")
	b.WriteString(m.statusView())

	return b.String()
}

func (m Model) errorView() string {
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n\n")
	b.WriteString("  " + styleError.Render("✗ "+errors.UserMessage(m.err)))
	b.WriteString("\n\n")
	b.WriteString("  " + shortHelp(m.keys.Rescan, m.keys.Quit))
	b.WriteString("\n")
	return b.String()
}

// warningsView fills the grid area with the warning list, padded to the
// grid's size so the footer stays put.
func (m Model) warningsView(w, h int) string {
	warnings := m.result.Warnings

	var b strings.Builder
	b.WriteString(styleWarning.Render(fmt.Sprintf(" Warnings (%d)", len(warnings))))
	b.WriteString("\n\n")

	shown := warnings
	if len(shown) > maxWarningLines {
		shown = shown[:maxWarningLines]
	}
	for _, warning := range shown {
		b.WriteString("  " + format.TruncateLabel(warning, w-4))
		b.WriteString("\n")
	}
	if rest := len(warnings) - len(shown); rest > 0 {
		b.WriteString(styleDim.Render(fmt.Sprintf("  ... and %d more", rest)))
		b.WriteString("\n")
	}
	if len(warnings) == 0 {
		b.WriteString(styleDim.Render("  none"))
		b.WriteString("\n")
	}

	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, b.String())
}

// legendView packs as many legend entries as fit on one line, largest
// extensions first.
func (m Model) legendView() string {
	if len(m.legend) == 0 {
		return ""
	}

	var parts []string
	used := 1
	for _, row := range m.legend {
		percent := 0.0
		if m.legendBytes > 0 {
			percent = float64(row.Bytes) / float64(m.legendBytes) * 100
		}

		text := fmt.Sprintf("%s %.0f%% %s (%d)", render.LegendLabel(row.Key), percent, format.Size(row.Bytes), row.Files)
		width := 2 + lipgloss.Width(text)
		if used+width+2 > m.width && len(parts) > 0 {
			break
		}

		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(render.KeyFill(row.Key))).Render("■")
		parts = append(parts, swatch+" "+styleDim.Render(text))
		used += width + 2
	}

	return " " + strings.Join(parts, "  ")
}

func (m Model) summaryView() string {
	stats := m.result.Stats
	sep := styleDim.Render(" · ")

	parts := []string{
		styleDim.Render(fmt.Sprintf("%s files", humanize.Comma(stats.FilesScanned))),
		styleDim.Render(fmt.Sprintf("%s folders", humanize.Comma(stats.DirsScanned))),
		styleValue.Render(format.Size(m.viewRoot().Size)),
		styleDim.Render(fmt.Sprintf("scanned in %s", format.DurationCompact(stats.Elapsed))),
	}
	if stats.Warnings > 0 {
		parts = append(parts, styleWarning.Render(fmt.Sprintf("%d warnings", stats.Warnings)))
	}
	if stats.Truncated {
		parts = append(parts, styleWarning.Render("truncated"))
	}

	return " " + strings.Join(parts, sep)
}

// statusView shows the selection on the left and key hints on the right.
func (m Model) statusView() string {
	help := shortHelp(m.keys.Open, m.keys.Back, m.keys.Warnings, m.keys.Rescan, m.keys.Quit)

	var sel string
	if m.selected != nil {
		size := format.Size(m.selected.Size)
		budget := m.width - lipgloss.Width(help) - len(size) - 8
		sel = styleValue.Render("▸ "+truncatePath(m.selected.Path, budget)) + styleDim.Render(" "+size)
	}

	left := " " + sel
	pad := m.width - lipgloss.Width(left) - lipgloss.Width(help) - 1
	if pad < 1 {
		pad = 1
	}
	return left + strings.Repeat(" ", pad) + help
}

// truncatePath shortens a path to maxChars runes, keeping the tail since
// that is the part that distinguishes deep paths.
func truncatePath(path string, maxChars int) string {
	runes := []rune(path)
	if len(runes) <= maxChars {
		return path
	}
	if maxChars <= 3 {
		return "..."
	}
	return "..." + string(runes[len(runes)-(maxChars-3):])
}

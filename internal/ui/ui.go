// Package ui implements the interactive terminal browser: a live two-phase
// scan view followed by a navigable treemap with legend, summary, and
// warnings.
//
// The scanner worker and the browser communicate only through the scan
// message channel. The model polls it on a fixed tick, draining whatever is
// buffered without blocking, so the interface stays responsive however fast
// messages arrive. Starting a new scan abandons the old channel to a
// background drainer and bumps the model's generation; anything tagged with
// an older generation is ignored when it lands.
package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dumap/dumap/pkg/fstree"
	"github.com/dumap/dumap/pkg/render"
	"github.com/dumap/dumap/pkg/scan"
)

// pollInterval is the scan message poll cadence while a scan is running.
const pollInterval = 80 * time.Millisecond

// gridTop is the terminal row the treemap grid starts on (below the header).
const gridTop = 1

// maxWarningLines bounds the warnings panel; the rest is summarized.
const maxWarningLines = 20

// Options configures the browser.
type Options struct {
	Root string      // directory to scan
	Scan scan.Config // scanner tuning

	Depth       int     // treemap descent below the view root
	MaxNodes    int     // cell budget per layout
	MinCellSide float64 // smallest drawable cell, in terminal cells
	LegendTopN  int     // legend entries; 0 means the default
	HideLegend  bool
	HideLabels  bool
}

func (o Options) withDefaults() Options {
	if o.Scan.MaxDepth <= 0 {
		o.Scan.MaxDepth = scan.DefaultMaxDepth
	}
	if o.Scan.ProgressInterval <= 0 {
		o.Scan.ProgressInterval = scan.DefaultProgressInterval
	}
	if o.Depth <= 0 {
		o.Depth = render.DefaultDepth
	}
	if o.MaxNodes <= 0 {
		o.MaxNodes = render.DefaultMaxNodes
	}
	if o.MinCellSide <= 0 {
		o.MinCellSide = render.DefaultMinCellSide
	}
	if o.LegendTopN <= 0 {
		o.LegendTopN = render.DefaultLegendTopN
	}
	if o.HideLegend {
		o.LegendTopN = 0
	}
	return o
}

type mode int

const (
	modeScanning mode = iota
	modeReady
	modeError
)

// startScanMsg kicks off the first scan after the initial frame renders.
type startScanMsg struct{}

// tickMsg drives one poll of the scan channel. The generation lets ticks
// scheduled for an abandoned scan fall through harmlessly.
type tickMsg struct {
	generation int
}

// Model is the bubbletea model for the browser.
type Model struct {
	opts Options
	keys keyMap

	spin spinner.Model
	bar  progress.Model

	// Scan lifecycle. generation increments whenever the displayed content
	// changes wholesale: a new scan or a re-root.
	ch         <-chan scan.Message
	generation int
	progress   scan.Progress
	result     *scan.Result
	err        error

	// Navigation state, valid in ready mode. trail is the re-root stack;
	// its last entry is the displayed root.
	trail       []*fstree.Node
	selected    *fstree.Node
	legend      []fstree.ExtensionTotal
	legendBytes int64

	cache *layoutCache

	mode         mode
	showWarnings bool
	width        int
	height       int
}

// New creates a browser model for the given options.
func New(opts Options) Model {
	return Model{
		opts:  opts.withDefaults(),
		keys:  defaultKeyMap(),
		spin:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styleSpinner)),
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(40)),
		cache: &layoutCache{},
		mode:  modeScanning,
	}
}

// Run starts the interactive browser and blocks until the user quits.
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init implements tea.Model. The scan itself starts one message later so
// the first frame can show the scanning view immediately.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return startScanMsg{} }
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = barWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case startScanMsg:
		return m.startScan()

	case tickMsg:
		if msg.generation != m.generation || m.mode != modeScanning {
			return m, nil
		}
		return m.pump()

	case spinner.TickMsg:
		if m.mode != modeScanning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

// startScan abandons any running scan and launches a fresh one.
func (m Model) startScan() (tea.Model, tea.Cmd) {
	if m.ch != nil {
		scan.Drain(m.ch)
	}

	m.generation++
	m.ch = scan.Start(m.opts.Root, m.opts.Scan)
	m.mode = modeScanning
	m.progress = scan.Progress{Phase: scan.PhaseCounting, Percent: -1}
	m.result = nil
	m.err = nil
	m.trail = nil
	m.selected = nil
	m.legend = nil
	m.legendBytes = 0
	m.showWarnings = false

	return m, tea.Batch(m.spin.Tick, m.tick())
}

func (m Model) tick() tea.Cmd {
	gen := m.generation
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		return tickMsg{generation: gen}
	})
}

// pump drains every buffered scan message without blocking, then schedules
// the next poll. A terminal message settles the model and ends the tick
// chain.
func (m Model) pump() (tea.Model, tea.Cmd) {
	for {
		select {
		case msg, ok := <-m.ch:
			if !ok {
				m.mode = modeError
				m.err = scan.DisconnectedError()
				return m, nil
			}
			switch {
			case msg.Err != nil:
				m.mode = modeError
				m.err = msg.Err
				return m, nil
			case msg.Result != nil:
				return m.finishScan(msg.Result)
			default:
				m.progress = *msg.Progress
			}
		default:
			return m, m.tick()
		}
	}
}

func (m Model) finishScan(result *scan.Result) (tea.Model, tea.Cmd) {
	m.mode = modeReady
	m.result = result
	m.trail = []*fstree.Node{result.Root}
	m.selected = nil
	m.legend, m.legendBytes = legendFor(result.Root, m.opts.LegendTopN)
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Rescan):
		if m.mode == modeScanning {
			return m, nil
		}
		return m.startScan()
	}

	if m.showWarnings {
		if key.Matches(msg, m.keys.Warnings) || key.Matches(msg, m.keys.Back) {
			m.showWarnings = false
		}
		return m, nil
	}

	if m.mode != modeReady {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Warnings):
		m.showWarnings = true
		return m, nil
	case key.Matches(msg, m.keys.Up):
		return m.moveSelection(0, -1), nil
	case key.Matches(msg, m.keys.Down):
		return m.moveSelection(0, 1), nil
	case key.Matches(msg, m.keys.Left):
		return m.moveSelection(-1, 0), nil
	case key.Matches(msg, m.keys.Right):
		return m.moveSelection(1, 0), nil
	case key.Matches(msg, m.keys.Open):
		return m.reRoot(), nil
	case key.Matches(msg, m.keys.Back):
		return m.popRoot(), nil
	}

	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeReady || m.showWarnings {
		return m, nil
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	items := m.visibleCells()
	if i := cellAt(items, msg.X, msg.Y-gridTop); i >= 0 {
		m.selected = items[i].node
	}
	return m, nil
}

// moveSelection shifts the selection to the nearest cell in the given
// direction, or to the first cell when nothing is selected yet.
func (m Model) moveSelection(dx, dy int) Model {
	items := m.visibleCells()
	if len(items) == 0 {
		return m
	}

	cur := findCell(items, m.selected)
	if cur < 0 {
		m.selected = items[0].node
		return m
	}
	if next := neighborIndex(items, cur, dx, dy); next >= 0 {
		m.selected = items[next].node
	}
	return m
}

// reRoot descends into the selected directory, making it the displayed
// root.
func (m Model) reRoot() Model {
	sel := m.selected
	if sel == nil || !sel.IsDir() {
		return m
	}

	m.trail = append(m.trail, sel)
	m.generation++
	m.selected = nil
	m.legend, m.legendBytes = legendFor(sel, m.opts.LegendTopN)
	return m
}

// popRoot steps back out to the parent view, keeping the directory just
// left as the selection.
func (m Model) popRoot() Model {
	if len(m.trail) <= 1 {
		return m
	}

	leaving := m.trail[len(m.trail)-1]
	m.trail = m.trail[:len(m.trail)-1]
	m.generation++
	m.selected = leaving
	m.legend, m.legendBytes = legendFor(m.viewRoot(), m.opts.LegendTopN)
	return m
}

// viewRoot returns the currently displayed root, or nil before the first
// scan completes.
func (m Model) viewRoot() *fstree.Node {
	if len(m.trail) == 0 {
		return nil
	}
	return m.trail[len(m.trail)-1]
}

// visibleCells returns the drawable cells for the current view, via the
// single-entry layout cache.
func (m Model) visibleCells() []gridCell {
	root := m.viewRoot()
	if root == nil {
		return nil
	}
	w, h := m.gridSize()
	if w == 0 || h == 0 {
		return nil
	}

	return m.cache.cellsFor(root, cacheKey{
		generation: m.generation,
		width:      w,
		height:     h,
		depth:      m.opts.Depth,
		maxNodes:   m.opts.MaxNodes,
		minCell:    m.opts.MinCellSide,
	})
}

// gridSize returns the treemap canvas dimensions in terminal cells: the
// window minus the header and footer chrome.
func (m Model) gridSize() (int, int) {
	w := m.width
	h := m.height - m.chromeRows()
	if w < 2 || h < 2 {
		return 0, 0
	}
	return w, h
}

func (m Model) chromeRows() int {
	rows := 3 // header, summary, status
	if len(m.legend) > 0 {
		rows++
	}
	return rows
}

func legendFor(root *fstree.Node, topN int) ([]fstree.ExtensionTotal, int64) {
	if topN <= 0 || root == nil {
		return nil, 0
	}
	totals, total := fstree.ExtensionTotals(root)
	if len(totals) > topN {
		totals = totals[:topN]
	}
	return totals, total
}

func barWidth(termWidth int) int {
	w := termWidth - 24
	if w > 60 {
		w = 60
	}
	if w < 10 {
		w = 10
	}
	return w
}

package ui

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mietkow/duwalk/internal/ops"
	"github.com/mietkow/duwalk/internal/tree"
	"github.com/mietkow/duwalk/internal/ui/components"
	"github.com/mietkow/duwalk/internal/ui/style"
	"github.com/mietkow/duwalk/internal/util"
	"github.com/mietkow/duwalk/internal/walk"
)

// ViewMode represents the current view.
type ViewMode int

const (
	ViewTree ViewMode = iota
	ViewTreemap
	ViewFileType
)

// AppState represents the application state.
type AppState int

const (
	StateScanning AppState = iota
	StateBrowsing
	StateHelp
	StateExporting
)

// ScanDoneMsg is sent when a scan or an import completes. A nil Trav with
// a nil Err means the scan was cancelled.
type ScanDoneMsg struct {
	Trav *tree.Traversal
	Err  error
}

// ExportDoneMsg is sent when export completes.
type ExportDoneMsg struct {
	Path string
	Err  error
}

type tickMsg time.Time

// App is the root Bubble Tea model. It drives one walker (local or
// remote) over the configured roots and browses the resulting tree.
type App struct {
	Walker      walk.Walker
	WalkOptions walk.Options
	Roots       []string
	ImportPath  string
	ExportPath  string
	Version     string

	state    AppState
	viewMode ViewMode
	width    int
	height   int

	trav        *tree.Traversal
	currentDir  tree.TreeIndex
	navStack    []tree.TreeIndex
	sortConfig  tree.SortConfig
	sortedItems []tree.TreeIndex

	cursor int
	offset int

	format     util.ByteFormat
	showHidden bool
	imported   bool

	scanProgress   components.ScanProgress
	progressMu     sync.Mutex
	latestProgress components.ScanProgress
	cancelScan     atomic.Bool

	theme  style.Theme
	keys   KeyMap
	layout style.Layout

	statusMsg string
	fatalErr  error
}

// NewApp creates an App that scans roots with the given walker.
func NewApp(walker walk.Walker, opts walk.Options, roots []string) *App {
	return &App{
		Walker:      walker,
		WalkOptions: opts,
		Roots:       roots,
		state:       StateScanning,
		viewMode:    ViewTree,
		sortConfig:  tree.DefaultSort(),
		format:      opts.Format,
		showHidden:  true,
		theme:       style.DefaultTheme(),
		keys:        DefaultKeyMap(),
	}
}

// NewAppFromImport creates an App that loads a previously exported scan.
func NewAppFromImport(importPath string, format util.ByteFormat) *App {
	return &App{
		ImportPath: importPath,
		state:      StateScanning,
		viewMode:   ViewTree,
		sortConfig: tree.DefaultSort(),
		format:     format,
		showHidden: true,
		imported:   true,
		theme:      style.DefaultTheme(),
		keys:       DefaultKeyMap(),
	}
}

func (a *App) Init() tea.Cmd {
	if a.ImportPath != "" {
		return a.importCmd()
	}
	// Start both the scan AND the progress ticker simultaneously
	return tea.Batch(a.scanCmd(), a.tickCmd())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout = style.NewLayout(msg.Width, msg.Height, a.format.Width())
		return a, nil

	case ScanDoneMsg:
		if msg.Err != nil {
			a.fatalErr = msg.Err
			return a, tea.Quit
		}
		if msg.Trav == nil {
			// Cancelled; the partial tree is gone.
			return a, tea.Quit
		}
		a.fatalErr = nil
		a.trav = msg.Trav
		a.currentDir = browseRoot(msg.Trav)
		a.navStack = nil
		a.cursor = 0
		a.offset = 0
		a.state = StateBrowsing
		a.refreshSorted()
		return a, tea.ClearScreen

	case tickMsg:
		if a.state == StateScanning {
			// Read latest progress snapshot
			a.progressMu.Lock()
			a.scanProgress = a.latestProgress
			a.progressMu.Unlock()
			// Keep ticking while scanning
			return a, a.tickCmd()
		}
		return a, nil

	case ExportDoneMsg:
		a.state = StateBrowsing
		if msg.Err != nil {
			a.statusMsg = fmt.Sprintf("Export failed: %v", msg.Err)
		} else {
			a.statusMsg = fmt.Sprintf("Exported to %s", msg.Path)
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.ForceQuit) {
		a.cancelScan.Store(true)
		return a, tea.Quit
	}

	switch a.state {
	case StateScanning:
		if key.Matches(msg, a.keys.Quit) {
			a.cancelScan.Store(true)
			return a, tea.Quit
		}
		return a, nil

	case StateHelp:
		if key.Matches(msg, a.keys.Help) || msg.String() == "esc" {
			a.state = StateBrowsing
			return a, tea.ClearScreen
		}
		return a, nil

	case StateBrowsing:
		return a.handleBrowsingKey(msg)
	}

	return a, nil
}

func (a *App) handleBrowsingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.statusMsg = ""
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.state = StateHelp
		return a, tea.ClearScreen

	case key.Matches(msg, a.keys.Up):
		a.moveCursor(-1)
	case key.Matches(msg, a.keys.Down):
		a.moveCursor(1)
	case key.Matches(msg, a.keys.Enter), key.Matches(msg, a.keys.Right):
		a.enterDir()
	case key.Matches(msg, a.keys.Left), key.Matches(msg, a.keys.Back):
		a.goBack()

	case key.Matches(msg, a.keys.ViewTree):
		a.viewMode = ViewTree
		return a, tea.ClearScreen
	case key.Matches(msg, a.keys.ViewTreemap):
		a.viewMode = ViewTreemap
		return a, tea.ClearScreen
	case key.Matches(msg, a.keys.ViewFileType):
		a.viewMode = ViewFileType
		return a, tea.ClearScreen

	case key.Matches(msg, a.keys.SortSize):
		a.toggleSort(tree.SortBySize)
	case key.Matches(msg, a.keys.SortName):
		a.toggleSort(tree.SortByName)
	case key.Matches(msg, a.keys.SortMtime):
		a.toggleSort(tree.SortByMtime)

	case key.Matches(msg, a.keys.ToggleFormat):
		a.format = nextFormat(a.format)
		a.layout = style.NewLayout(a.width, a.height, a.format.Width())
	case key.Matches(msg, a.keys.ToggleHidden):
		a.showHidden = !a.showHidden
		a.refreshSorted()
		a.moveCursor(0)

	case key.Matches(msg, a.keys.Export):
		return a, a.exportCmd()

	case key.Matches(msg, a.keys.Rescan):
		if a.imported {
			a.statusMsg = "Rescan is disabled in import mode"
			return a, nil
		}
		a.navStack = nil
		a.cursor = 0
		a.offset = 0
		a.progressMu.Lock()
		a.latestProgress = components.ScanProgress{}
		a.progressMu.Unlock()
		a.scanProgress = components.ScanProgress{}
		a.state = StateScanning
		return a, tea.Batch(tea.ClearScreen, a.scanCmd(), a.tickCmd())
	}

	return a, nil
}

func (a *App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	switch a.state {
	case StateScanning:
		return components.RenderScanProgress(a.theme, a.scanProgress, a.width, a.height)

	case StateHelp:
		return components.RenderHelp(a.theme, a.width, a.height)

	case StateBrowsing, StateExporting:
		return a.renderBrowsing()
	}

	return ""
}

func (a *App) renderBrowsing() string {
	t := a.trav.Tree
	header := components.RenderHeader(a.theme, a.headerPath(), a.trav.EntriesTraversed, a.trav.TotalBytes, a.format, a.width)
	breadcrumb := components.RenderBreadcrumb(a.theme, t, a.currentDir, a.width)
	tabBar := components.RenderTabBar(a.theme, int(a.viewMode), a.sortConfig.Field, a.width)

	var content string
	switch a.viewMode {
	case ViewTree:
		tv := &components.TreeView{
			Theme:      a.theme,
			Layout:     a.layout,
			Tree:       t,
			Items:      a.sortedItems,
			Cursor:     a.cursor,
			Offset:     a.offset,
			ParentSize: t.Data(a.currentDir).Size,
			Format:     a.format,
		}
		tv.EnsureVisible()
		a.offset = tv.Offset
		content = tv.Render()

	case ViewTreemap:
		content = components.RenderTreemap(a.theme, t, a.currentDir, a.showHidden, a.format, a.layout.ContentWidth(), a.layout.ContentHeight())

	case ViewFileType:
		content = components.RenderFileTypes(a.theme, t, a.currentDir, a.showHidden, a.format, a.layout.ContentWidth(), a.layout.ContentHeight())
	}

	statusInfo := components.StatusInfo{
		ItemCount: len(a.sortedItems),
		DirSize:   t.Data(a.currentDir).Size,
		Errors:    a.trav.IOErrors,
		Apparent:  a.WalkOptions.ApparentSize,
		Format:    a.format,
		ErrorMsg:  a.statusMsg,
	}
	statusBar := components.RenderStatusBar(a.theme, statusInfo, a.width)

	return header + "\n" + breadcrumb + "\n" + tabBar + "\n" + content + "\n" + statusBar
}

// headerPath names what was scanned: the import file or the roots.
func (a *App) headerPath() string {
	if a.imported {
		return a.ImportPath
	}
	return strings.Join(a.Roots, ", ")
}

// browseRoot picks the directory browsing starts in. A single scanned
// directory is entered directly; multiple roots (or a lone file) start
// at the shared root so every argument is visible.
func browseRoot(tr *tree.Traversal) tree.TreeIndex {
	roots := tr.Tree.Children(tr.Root)
	if len(roots) == 1 && len(tr.Tree.Children(roots[0])) > 0 {
		return roots[0]
	}
	return tr.Root
}

func (a *App) moveCursor(delta int) {
	a.cursor += delta
	if a.cursor >= len(a.sortedItems) {
		a.cursor = len(a.sortedItems) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

func (a *App) enterDir() {
	if a.cursor >= len(a.sortedItems) {
		return
	}
	item := a.sortedItems[a.cursor]
	if len(a.trav.Tree.Children(item)) == 0 {
		return
	}
	a.navStack = append(a.navStack, a.currentDir)
	a.currentDir = item
	a.cursor = 0
	a.offset = 0
	a.refreshSorted()
}

func (a *App) goBack() {
	if len(a.navStack) == 0 {
		return
	}
	prev := a.navStack[len(a.navStack)-1]
	a.navStack = a.navStack[:len(a.navStack)-1]

	leaving := a.currentDir
	a.currentDir = prev
	a.refreshSorted()

	for i, item := range a.sortedItems {
		if item == leaving {
			a.cursor = i
			break
		}
	}
	a.offset = 0
}

func (a *App) toggleSort(field tree.SortField) {
	if a.sortConfig.Field == field {
		if a.sortConfig.Order == tree.SortDesc {
			a.sortConfig.Order = tree.SortAsc
		} else {
			a.sortConfig.Order = tree.SortDesc
		}
	} else {
		a.sortConfig.Field = field
		a.sortConfig.Order = tree.SortDesc
	}
	a.refreshSorted()
}

func (a *App) refreshSorted() {
	if a.trav == nil {
		a.sortedItems = nil
		return
	}
	items := tree.SortedChildren(a.trav.Tree, a.currentDir, a.sortConfig)

	if !a.showHidden {
		var filtered []tree.TreeIndex
		for _, c := range items {
			name := a.trav.Tree.Data(c).Name
			if len(name) > 0 && name[0] != '.' {
				filtered = append(filtered, c)
			}
		}
		items = filtered
	}

	a.sortedItems = items
}

// scanCmd runs the tree build in a background goroutine. Progress lands
// in a.latestProgress (mutex-protected), read by the tick handler; the
// build callback's return value is how a pending quit stops the walk.
func (a *App) scanCmd() tea.Cmd {
	a.cancelScan.Store(false)
	return func() tea.Msg {
		trav := tree.BuildTree(a.Walker, a.WalkOptions, a.Roots, func(t *tree.Traversal) bool {
			a.progressMu.Lock()
			a.latestProgress = components.ScanProgress{
				Entries: t.EntriesTraversed,
				Errors:  t.IOErrors,
				Elapsed: t.Elapsed,
			}
			a.progressMu.Unlock()
			return a.cancelScan.Load()
		})
		return ScanDoneMsg{Trav: trav}
	}
}

func (a *App) importCmd() tea.Cmd {
	return func() tea.Msg {
		trav, err := ops.ImportJSON(a.ImportPath)
		return ScanDoneMsg{Trav: trav, Err: err}
	}
}

func (a *App) tickCmd() tea.Cmd {
	return tea.Tick(60*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a *App) exportCmd() tea.Cmd {
	if a.trav == nil {
		return nil
	}

	exportPath := a.ExportPath
	if exportPath == "" {
		exportPath = "duwalk-export.json"
	}

	a.state = StateExporting
	trav := a.trav

	version := a.Version
	return func() tea.Msg {
		err := ops.ExportJSON(trav, exportPath, version)
		return ExportDoneMsg{Path: exportPath, Err: err}
	}
}

// FatalError returns a fatal scan/import error, if any.
func (a *App) FatalError() error { return a.fatalErr }

// nextFormat cycles through the three scaled formats; a fixed unit set
// on the command line falls back into the cycle at metric.
func nextFormat(f util.ByteFormat) util.ByteFormat {
	switch f {
	case util.FormatMetric:
		return util.FormatBinary
	case util.FormatBinary:
		return util.FormatBytes
	default:
		return util.FormatMetric
	}
}

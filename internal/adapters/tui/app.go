package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"colljump/internal/adapters/tui/styles"
	"colljump/internal/adapters/tui/views"
	"colljump/internal/application/commands"
	"colljump/internal/domain"
	"colljump/internal/logging"
	"colljump/internal/ports"
	"colljump/internal/session"
)

// ViewState represents the current view
type ViewState int

const (
	ViewBrowser ViewState = iota
	ViewHelp
)

// panelKind names the jump panel currently open
type panelKind int

const (
	panelNone panelKind = iota
	panelFlat
	panelTree
)

// AppKeyMap defines the window-level key bindings
type AppKeyMap struct {
	FlatPanel key.Binding
	TreePanel key.Binding
	Help      key.Binding
	Quit      key.Binding
}

var AppKeys = AppKeyMap{
	FlatPanel: key.NewBinding(
		key.WithKeys("g", "ctrl+k"),
		key.WithHelp("g", "jump"),
	),
	TreePanel: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "browse"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// Options configures an App
type Options struct {
	Catalog ports.Catalog
	Prefs   ports.PreferenceStore
	Session *session.Session
	Logger  *log.Logger

	// Launcher, when set, is tried for zotero:// links the window cannot
	// route itself
	Launcher ports.URLLauncher

	// DisableURIRouter leaves the window without deep-link routing so jumps
	// go straight to the pane and tree view strategies
	DisableURIRouter bool

	SettleDelay time.Duration
}

type sidebarLoadedMsg struct{ err error }

type sidebarReloadedMsg struct{ err error }

type jumpDoneMsg struct {
	result *commands.JumpResult
	err    error
}

// App is the host window: a collection sidebar, a detail pane that follows
// the selection, and the jump panels
type App struct {
	catalog ports.Catalog
	prefs   ports.PreferenceStore
	session *session.Session
	logger  *log.Logger
	driver  *commands.SelectionDriver

	state   ViewState
	sidebar *views.Sidebar
	detail  *views.DetailModel
	flat    *views.FlatPanelModel
	tree    *views.TreePanelModel
	help    *views.HelpModel

	panel    panelKind
	treePane bool
	status   views.StatusMsg

	width  int
	height int
}

// NewApp creates the window. Call Attach with the program's Send before
// running it so programmatic selections reach the detail pane.
func NewApp(opts Options) *App {
	logger := logging.OrDiscard(opts.Logger)
	sidebar := views.NewSidebar(opts.Catalog, logger)

	host := ports.Host{
		URISelector: sidebar,
		URLLauncher: opts.Launcher,
		Pane:        sidebar,
		View:        sidebar,
	}
	if opts.DisableURIRouter {
		host.URISelector = nil
	}
	var driverOpts []commands.DriverOption
	if opts.SettleDelay > 0 {
		driverOpts = append(driverOpts, commands.WithSettleDelay(opts.SettleDelay))
	}

	a := &App{
		catalog: opts.Catalog,
		prefs:   opts.Prefs,
		session: opts.Session,
		logger:  logger,
		driver:  commands.NewSelectionDriver(host, logger, driverOpts...),
		state:   ViewBrowser,
		sidebar: sidebar,
		detail:  views.NewDetailModel(),
		flat:    views.NewFlatPanelModel(opts.Catalog, sidebar, logger),
		tree:    views.NewTreePanelModel(opts.Catalog, sidebar, logger),
		help:    views.NewHelpModel(),
	}

	prefs := domain.DefaultPreferences()
	if opts.Prefs != nil {
		prefs = opts.Prefs.Load()
	}
	a.applyPrefs(prefs)

	if a.session != nil {
		a.session.Attach("sidebar", sidebar)
		a.session.Attach("flat-panel", a.flat)
		a.session.Attach("tree-panel", a.tree)
		a.session.OnClose(func() {
			a.flat.Close()
			a.tree.Close()
		})
	}
	return a
}

// Attach wires the window's select events to send, normally
// tea.Program.Send
func (a *App) Attach(send func(tea.Msg)) {
	a.sidebar.SetEventSink(send)
}

// Sidebar returns the host tree view
func (a *App) Sidebar() *views.Sidebar {
	return a.sidebar
}

// Detail returns the dependent pane
func (a *App) Detail() *views.DetailModel {
	return a.detail
}

// FlatPanel returns the flat jump panel
func (a *App) FlatPanel() *views.FlatPanelModel {
	return a.flat
}

// TreePanel returns the tree jump panel
func (a *App) TreePanel() *views.TreePanelModel {
	return a.tree
}

// Status returns the status line
func (a *App) Status() views.StatusMsg {
	return a.status
}

// Init loads the sidebar
func (a *App) Init() tea.Cmd {
	sidebar := a.sidebar
	return func() tea.Msg {
		return sidebarLoadedMsg{err: sidebar.Init(context.Background())}
	}
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout()
		return a, nil

	case sidebarLoadedMsg:
		if msg.err != nil {
			a.logger.Error("sidebar load failed", "err", msg.err)
			a.status = views.StatusMsg{Text: "Could not load catalog: " + msg.err.Error(), Err: true}
		}
		return a, nil

	case sidebarReloadedMsg:
		if msg.err != nil {
			a.logger.Warn("sidebar reload failed", "err", msg.err)
		}
		return a, nil

	case views.CollectionSelectedMsg:
		return a, a.detail.Update(msg)

	case views.CatalogChangedMsg:
		sidebar := a.sidebar
		reload := func() tea.Msg {
			return sidebarReloadedMsg{err: sidebar.Reload(context.Background())}
		}
		return a, tea.Batch(reload, a.tree.Update(msg))

	case views.PrefsChangedMsg:
		a.logger.Debug("preference changed", "name", msg.Name)
		a.applyPrefs(msg.Prefs)
		return a, nil

	case views.JumpRequestMsg:
		return a, a.jump(msg.Raw)

	case jumpDoneMsg:
		return a, a.jumpDone(msg)

	case views.ClosePanelMsg:
		a.closePanel()
		return a, nil

	case views.StatusMsg:
		a.status = msg
		return a, nil

	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	case views.SwitchToBrowserMsg:
		a.state = ViewBrowser
		return a, nil

	case tea.MouseMsg:
		return a, a.handleMouse(msg)

	case tea.KeyMsg:
		return a, a.handleKey(msg)
	}

	// Index results and cursor blinks belong to the panels, which drop
	// anything from an older generation
	return a, tea.Batch(a.flat.Update(msg), a.tree.Update(msg))
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if a.state == ViewHelp {
		return a.help.Update(msg)
	}
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}

	switch a.panel {
	case panelFlat:
		return a.flat.Update(msg)
	case panelTree:
		return a.tree.Update(msg)
	}

	switch {
	case key.Matches(msg, AppKeys.Quit):
		return tea.Quit
	case key.Matches(msg, AppKeys.Help):
		return func() tea.Msg { return views.SwitchToHelpMsg{} }
	case key.Matches(msg, AppKeys.FlatPanel):
		return a.OpenFlatPanel()
	case key.Matches(msg, AppKeys.TreePanel):
		return a.OpenTreePanel()
	}
	return a.sidebar.Update(msg)
}

func (a *App) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}
	// The panel is drawn inside the window's top padding
	line := msg.Y - 1
	now := time.Now()
	switch a.panel {
	case panelFlat:
		return a.flat.Click(line, now)
	case panelTree:
		return a.tree.Click(line, now)
	}
	return nil
}

// OpenFlatPanel opens the flat jump panel
func (a *App) OpenFlatPanel() tea.Cmd {
	a.closePanel()
	a.panel = panelFlat
	return a.flat.Open()
}

// OpenTreePanel opens the tree jump panel when the preference allows it
func (a *App) OpenTreePanel() tea.Cmd {
	if !a.treePane {
		return nil
	}
	a.closePanel()
	a.panel = panelTree
	return a.tree.Open()
}

func (a *App) closePanel() {
	switch a.panel {
	case panelFlat:
		a.flat.Close()
	case panelTree:
		a.tree.Close()
	}
	a.panel = panelNone
}

func (a *App) jump(raw any) tea.Cmd {
	cmd := commands.NewJumpCommand(a.catalog, a.driver, raw, a.logger)
	return func() tea.Msg {
		res, err := cmd.Execute(context.Background())
		return jumpDoneMsg{result: res, err: err}
	}
}

// jumpDone closes the panel after a successful jump. A failed jump leaves
// the panel open so the user can pick again.
func (a *App) jumpDone(msg jumpDoneMsg) tea.Cmd {
	if msg.err != nil {
		a.status = views.StatusMsg{Text: "Jump failed: " + msg.err.Error(), Err: true}
		return nil
	}
	a.status = views.StatusMsg{Text: msg.result.Message}
	a.closePanel()
	return nil
}

func (a *App) applyPrefs(p domain.Preferences) {
	a.treePane = p.EnableTreePane
	a.help.SetSections(a.helpSections()...)
	a.flat.SetPanelHeight(p.PanelHeight)
	a.tree.SetPanelHeight(p.PanelHeight)
	if !a.treePane && a.panel == panelTree {
		a.closePanel()
	}
}

func (a *App) helpSections() []views.HelpSection {
	jump := []key.Binding{AppKeys.FlatPanel}
	if a.treePane {
		jump = append(jump, AppKeys.TreePanel)
	}
	jump = append(jump, views.PanelKeys.Select, views.PanelKeys.CopyLink, views.PanelKeys.Cancel)

	sections := []views.HelpSection{
		{Title: "Sidebar", Bindings: []key.Binding{
			views.SidebarKeys.Up, views.SidebarKeys.Down, views.SidebarKeys.Left, views.SidebarKeys.Right,
			views.SidebarKeys.Toggle, views.SidebarKeys.PrevLibrary, views.SidebarKeys.NextLibrary,
		}},
		{Title: "Jump", Bindings: jump},
	}
	if a.treePane {
		sections = append(sections, views.HelpSection{Title: "Tree panel", Bindings: []key.Binding{
			views.TreeKeys.Expand, views.TreeKeys.Collapse, views.TreeKeys.Toggle,
		}})
	}
	return append(sections, views.HelpSection{Title: "General", Bindings: []key.Binding{AppKeys.Help, AppKeys.Quit}})
}

func (a *App) layout() {
	// App padding, library header and status bar
	bodyHeight := max(a.height-6, 3)
	sidebarWidth := max(a.width/3, 20)

	a.sidebar.SetHeight(bodyHeight)
	a.detail.SetSize(a.width-sidebarWidth-8, bodyHeight)
	a.flat.SetSize(a.width, a.height)
	a.tree.SetSize(a.width, a.height)
	a.help.SetSize(a.width, a.height)
}

// View renders the current view
func (a *App) View() string {
	if a.state == ViewHelp {
		return a.help.View()
	}

	var body string
	switch a.panel {
	case panelFlat:
		body = a.flat.View()
	case panelTree:
		body = a.tree.View()
	default:
		sidebarWidth := max(a.width/3, 20)
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			styles.Sidebar.Width(sidebarWidth).Render(a.sidebar.View()),
			styles.Detail.Render(a.detail.View()),
		)
	}

	return styles.App.Render(body + "\n\n" + a.statusLine())
}

func (a *App) statusLine() string {
	if a.status.Text != "" {
		return views.RenderMessage(a.status.Text, a.status.Err)
	}

	bindings := []key.Binding{AppKeys.FlatPanel}
	if a.treePane {
		bindings = append(bindings, AppKeys.TreePanel)
	}
	bindings = append(bindings, views.SidebarKeys.NextLibrary, AppKeys.Help, AppKeys.Quit)
	return views.RenderHelpLine(bindings...)
}

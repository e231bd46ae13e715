package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/banktags/pkg/app"
	"github.com/matzehuels/banktags/pkg/catalog"
	"github.com/matzehuels/banktags/pkg/editor"
	"github.com/matzehuels/banktags/pkg/errors"
	"github.com/matzehuels/banktags/pkg/grid"
	"github.com/matzehuels/banktags/pkg/store"
)

// paletteRows is the number of palette entries shown at once.
const paletteRows = 16

// Palette styles
var (
	paletteSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	paletteNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	paletteArmedStyle    = lipgloss.NewStyle().Foreground(colorYellow)
	panelStyle           = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
	panelFocusStyle      = panelStyle.BorderForeground(colorCyan)
	statusErrStyle       = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Key bindings
// =============================================================================

type editorKeys struct {
	up, down, left, right key.Binding
	click                 key.Binding
	swap                  key.Binding
	drop                  key.Binding
	remove                key.Binding
	fill                  key.Binding
	cancel                key.Binding
	focus                 key.Binding
	search                key.Binding
	insertRow             key.Binding
	deleteRow             key.Binding
	importTag             key.Binding
	copyTag               key.Binding
	prevLayout            key.Binding
	nextLayout            key.Binding
	newLayout             key.Binding
	rename                key.Binding
	toggleHelp            key.Binding
	quit                  key.Binding
}

func newEditorKeys() editorKeys {
	return editorKeys{
		up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		click:      key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("⏎", "select / place")),
		swap:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "swap selected here")),
		drop:       key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "drop palette item here")),
		remove:     key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove item")),
		fill:       key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "add to first free cell")),
		cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		focus:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "grid / palette")),
		search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search items")),
		insertRow:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "insert row below")),
		deleteRow:  key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete row")),
		importTag:  key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "import banktags")),
		copyTag:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy banktags")),
		prevLayout: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev layout")),
		nextLayout: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next layout")),
		newLayout:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new layout")),
		rename:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename layout")),
		toggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k editorKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.click, k.focus, k.search, k.remove, k.importTag, k.copyTag, k.toggleHelp, k.quit}
}

func (k editorKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.left, k.right, k.focus},
		{k.click, k.swap, k.drop, k.fill, k.remove, k.cancel},
		{k.insertRow, k.deleteRow, k.search},
		{k.importTag, k.copyTag},
		{k.prevLayout, k.nextLayout, k.newLayout, k.rename},
		{k.toggleHelp, k.quit},
	}
}

// =============================================================================
// Model
// =============================================================================

type focusArea int

const (
	focusGrid focusArea = iota
	focusPalette
)

// inputMode says what the text input is collecting, if anything.
type inputMode int

const (
	inputNone inputMode = iota
	inputSearch
	inputImport
	inputRename
)

// catalogLoadedMsg reports that the catalog gate opened.
type catalogLoadedMsg struct{ err error }

// editorModel is the bubbletea model of the grid editor. Keyboard gestures
// drive the app's editor; the grid itself is never copied.
type editorModel struct {
	ctx  context.Context
	app  *app.App
	keys editorKeys
	help help.Model

	focus   focusArea
	cursor  grid.Pos
	mode    inputMode
	input   textinput.Model
	query   string
	palette []catalog.ItemDefinition
	pick    int

	catalogReady bool
	catalogErr   error

	status    string
	statusErr bool
	width     int
	quitting  bool
}

func newEditorModel(ctx context.Context, a *app.App) editorModel {
	in := textinput.New()
	in.Prompt = "> "
	in.CharLimit = 4096

	m := editorModel{
		ctx:   ctx,
		app:   a,
		keys:  newEditorKeys(),
		help:  help.New(),
		input: in,
	}
	m.catalogReady = a.Catalog.Ready()
	m.refreshPalette()
	return m
}

// Init waits for the catalog in the background so the grid is usable
// immediately.
func (m editorModel) Init() tea.Cmd {
	if m.catalogReady {
		return nil
	}
	loader, ctx := m.app.Catalog, m.ctx
	return func() tea.Msg {
		if err := loader.Wait(ctx); err != nil {
			return catalogLoadedMsg{err: err}
		}
		return catalogLoadedMsg{err: loader.Err()}
	}
}

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case catalogLoadedMsg:
		m.catalogReady = m.app.Catalog.Ready()
		m.catalogErr = msg.err
		m.refreshPalette()
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.setStatus("Catalog loaded: %d items", m.app.Catalog.Catalog().Len())
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if m.mode != inputNone {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m editorModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		if m.mode == inputSearch {
			m.query = ""
			m.refreshPalette()
		}
		m.closeInput()
		return m, nil
	case tea.KeyEnter:
		value := m.input.Value()
		mode := m.mode
		m.closeInput()
		switch mode {
		case inputSearch:
			m.focus = focusPalette
		case inputImport:
			m.importText(value)
		case inputRename:
			m.renameCurrent(value)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.mode == inputSearch {
		m.query = m.input.Value()
		m.refreshPalette()
	}
	return m, cmd
}

func (m editorModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status, m.statusErr = "", false
	ctx := m.ctx
	ed := m.app.Editor

	switch {
	case key.Matches(msg, m.keys.quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.focus):
		m.focus = 1 - m.focus
	case key.Matches(msg, m.keys.up):
		m.moveCursor(0, -1)
	case key.Matches(msg, m.keys.down):
		m.moveCursor(0, 1)
	case key.Matches(msg, m.keys.left):
		m.moveCursor(-1, 0)
	case key.Matches(msg, m.keys.right):
		m.moveCursor(1, 0)

	case key.Matches(msg, m.keys.click):
		if m.focus == focusPalette {
			def, ok := m.picked()
			if !ok {
				return m, nil
			}
			if err := ed.SelectPalette(def.InternalID); err != nil {
				m.setError(err)
				return m, nil
			}
			m.focus = focusGrid
			m.setStatus("Placing %s: pick a cell", def.Name)
			return m, nil
		}
		m.report(ed.ClickCell(ctx, m.cursor))
	case key.Matches(msg, m.keys.swap):
		sel := ed.Selection()
		if sel.Kind != editor.PlacedSelected {
			m.setStatus("Select a placed item first")
			return m, nil
		}
		m.report(ed.DragPlaced(ctx, sel.Pos, m.cursor))
	case key.Matches(msg, m.keys.drop):
		def, ok := m.picked()
		if !ok {
			return m, nil
		}
		m.report(ed.DragPalette(ctx, def.InternalID, m.cursor))
	case key.Matches(msg, m.keys.fill):
		def, ok := m.picked()
		if !ok {
			return m, nil
		}
		res, err := ed.DoubleClickPalette(ctx, def.InternalID)
		if err == nil && !res.Changed {
			m.setStatus("Layout is full")
			return m, nil
		}
		m.report(res, err)
	case key.Matches(msg, m.keys.remove):
		m.report(ed.DoubleClickCell(ctx, m.cursor))
	case key.Matches(msg, m.keys.cancel):
		ed.Cancel()

	case key.Matches(msg, m.keys.insertRow):
		m.report(m.app.Dispatch(ctx, editor.InsertRow{Row: m.cursor.Y}))
	case key.Matches(msg, m.keys.deleteRow):
		m.report(m.app.Dispatch(ctx, editor.DeleteRow{Row: m.cursor.Y}))
		m.clampCursor()

	case key.Matches(msg, m.keys.search):
		m.openInput(inputSearch, "search: ", m.query)
		return m, textinput.Blink
	case key.Matches(msg, m.keys.importTag):
		m.openInput(inputImport, "banktags: ", "")
		return m, textinput.Blink
	case key.Matches(msg, m.keys.rename):
		m.openInput(inputRename, "title: ", m.app.Current().Title)
		return m, textinput.Blink
	case key.Matches(msg, m.keys.copyTag):
		m.copyExport()

	case key.Matches(msg, m.keys.prevLayout):
		m.stepLayout(-1)
	case key.Matches(msg, m.keys.nextLayout):
		m.stepLayout(1)
	case key.Matches(msg, m.keys.newLayout):
		l, err := m.app.CreateLayout(ctx, store.DefaultTitle)
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.cursor = grid.Pos{}
		m.setStatus("Created layout %d", l.ID)
	}
	return m, nil
}

// =============================================================================
// Actions
// =============================================================================

func (m *editorModel) moveCursor(dx, dy int) {
	if m.focus == focusPalette {
		if n := len(m.palette); n > 0 {
			m.pick = min(max(m.pick+dy+dx*paletteRows, 0), n-1)
		}
		return
	}
	m.cursor.X += dx
	m.cursor.Y += dy
	m.clampCursor()
}

func (m *editorModel) clampCursor() {
	h := grid.MinHeight
	if cur := m.app.Current(); cur != nil {
		h = cur.Height
	}
	m.cursor.X = min(max(m.cursor.X, 0), grid.Columns-1)
	m.cursor.Y = min(max(m.cursor.Y, 0), h-1)
}

func (m *editorModel) picked() (catalog.ItemDefinition, bool) {
	if m.pick < 0 || m.pick >= len(m.palette) {
		m.setStatus("No palette item selected")
		return catalog.ItemDefinition{}, false
	}
	return m.palette[m.pick], true
}

func (m *editorModel) refreshPalette() {
	m.palette = m.app.Catalog.Catalog().Search(m.query, 0)
	m.pick = min(m.pick, max(len(m.palette)-1, 0))
}

func (m *editorModel) openInput(mode inputMode, prompt, value string) {
	m.mode = mode
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *editorModel) closeInput() {
	m.mode = inputNone
	m.input.Blur()
	m.input.Reset()
}

func (m *editorModel) importText(text string) {
	res, err := m.app.Dispatch(m.ctx, editor.Import{Text: text})
	if err != nil {
		m.setError(err)
		return
	}
	msg := fmt.Sprintf("Imported %d items", res.Added)
	if n := len(res.Warnings); n > 0 {
		msg += fmt.Sprintf(" (%d unknown ids)", n)
	}
	m.setStatus("%s", msg)
}

func (m *editorModel) renameCurrent(title string) {
	cur := m.app.Current()
	if err := m.app.RenameLayout(m.ctx, cur.ID, title); err != nil {
		m.setError(err)
		return
	}
	m.setStatus("Renamed to %s", strings.TrimSpace(title))
}

func (m *editorModel) copyExport() {
	res, err := m.app.Dispatch(m.ctx, editor.Export{})
	if err != nil {
		m.setError(err)
		return
	}
	if err := clipboardWrite(res.Text); err != nil {
		m.setError(errors.Wrap(errors.ErrCodeUnsupported, err, "clipboard unavailable"))
		return
	}
	m.setStatus("Banktags copied to clipboard")
}

func (m *editorModel) stepLayout(delta int) {
	layouts := m.app.Layouts.List()
	i := slices.IndexFunc(layouts, func(l *grid.Layout) bool { return l.ID == m.app.Layouts.CurrentID() })
	next := layouts[(i+delta+len(layouts))%len(layouts)]
	if _, err := m.app.SelectLayout(m.ctx, next.ID); err != nil {
		m.setError(err)
		return
	}
	m.clampCursor()
}

func (m *editorModel) report(res editor.Result, err error) {
	if err != nil {
		m.setError(err)
		return
	}
	if res.Text != "" {
		m.setStatus("%s", res.Text)
	}
}

func (m *editorModel) setStatus(format string, args ...any) {
	m.status, m.statusErr = fmt.Sprintf(format, args...), false
}

func (m *editorModel) setError(err error) {
	m.status, m.statusErr = errors.UserMessage(err), true
}

// =============================================================================
// View
// =============================================================================

func (m editorModel) View() string {
	if m.quitting {
		return ""
	}
	cur := m.app.Current()
	if cur == nil {
		return "no layout\n"
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render(cur.Title))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  #%d · %d/%d layouts · %s", cur.ID, m.layoutIndex()+1, m.app.Layouts.Len(), m.catalogStatus())))
	b.WriteString("\n")

	view := gridView{Label: m.app.Catalog.Catalog().Name}
	if m.focus == focusGrid {
		c := m.cursor
		view.Cursor = &c
	}
	sel := m.app.Editor.Selection()
	if sel.Kind == editor.PlacedSelected {
		p := sel.Pos
		view.Selected = &p
	}

	gridPanel, palettePanel := panelStyle, panelStyle
	if m.focus == focusGrid {
		gridPanel = panelFocusStyle
	} else {
		palettePanel = panelFocusStyle
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		gridPanel.Render(renderGrid(cur, view)),
		palettePanel.Render(m.paletteView()),
	))
	b.WriteString("\n")

	b.WriteString(StyleDim.Render("selection: " + m.selectionLabel(sel)))
	b.WriteString("\n")
	switch {
	case m.mode != inputNone:
		b.WriteString(m.input.View())
	case m.statusErr:
		b.WriteString(statusErrStyle.Render(iconError + " " + m.status))
	case m.status != "":
		b.WriteString(StyleSuccess.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m editorModel) paletteView() string {
	var b strings.Builder
	title := "Items"
	if m.query != "" {
		title = fmt.Sprintf("Items matching %q", m.query)
	}
	b.WriteString(StyleHighlight.Render(title))
	b.WriteString("\n")

	if len(m.palette) == 0 {
		if !m.catalogReady {
			b.WriteString(StyleDim.Render("loading..."))
		} else {
			b.WriteString(StyleDim.Render("no items"))
		}
		return b.String()
	}

	armed := -1
	if sel := m.app.Editor.Selection(); sel.Kind == editor.PaletteSelected {
		armed = sel.ItemID
	}
	start := max(0, min(m.pick-paletteRows/2, len(m.palette)-paletteRows))
	end := min(start+paletteRows, len(m.palette))
	for i := start; i < end; i++ {
		def := m.palette[i]
		line := truncate(def.Name, 28)
		switch {
		case i == m.pick && m.focus == focusPalette:
			b.WriteString(paletteSelectedStyle.Render("▸ " + line))
		case def.InternalID == armed:
			b.WriteString(paletteArmedStyle.Render("• " + line))
		default:
			b.WriteString(paletteNormalStyle.Render("  " + line))
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	if len(m.palette) > paletteRows {
		b.WriteString("\n" + StyleDim.Render(fmt.Sprintf("%d/%d", m.pick+1, len(m.palette))))
	}
	return b.String()
}

func (m editorModel) selectionLabel(sel editor.Selection) string {
	switch sel.Kind {
	case editor.PaletteSelected, editor.PlacedSelected:
		name := m.app.Catalog.Catalog().Name(sel.ItemID)
		if sel.Kind == editor.PlacedSelected {
			return fmt.Sprintf("%s at %s", name, sel.Pos)
		}
		return name + " from palette"
	default:
		return "none"
	}
}

func (m editorModel) catalogStatus() string {
	switch {
	case !m.catalogReady:
		return "catalog loading"
	case m.catalogErr != nil:
		return "catalog unavailable"
	default:
		return fmt.Sprintf("%d items", m.app.Catalog.Catalog().Len())
	}
}

func (m editorModel) layoutIndex() int {
	id := m.app.Layouts.CurrentID()
	return slices.IndexFunc(m.app.Layouts.List(), func(l *grid.Layout) bool { return l.ID == id })
}

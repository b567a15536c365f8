package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/yiblet/clipvault/internal/action"
	"github.com/yiblet/clipvault/internal/history"
	"github.com/yiblet/clipvault/internal/launch"
	"github.com/yiblet/clipvault/internal/store"
)

// PaneType represents which pane is focused
type PaneType int

const (
	LeftPane PaneType = iota
	RightPane
)

// UIMode represents the current modal state of the application
type UIMode int

const (
	NormalMode UIMode = iota
	QueryMode
	FindMode
	HelpMode
	NumberInputMode
	DeleteMode
	ClearMode
	ActionMode
	ErrorMode
)

var flashDuration = 2 * time.Second

// stateMsg carries a history snapshot into the update loop.
type stateMsg struct {
	State history.State
}

// opDoneMsg reports a finished history operation.
type opDoneMsg struct {
	State history.State
	Flash string
	Err   error
	load  bool
}

// actionDoneMsg reports a finished catalog action.
type actionDoneMsg struct {
	State  history.State
	Label  string
	Result action.Result
	Quit   bool
}

type flashExpiredMsg struct {
	seq int
}

// AppModel orchestrates all sub-models. Every history mutation runs inside a
// tea.Cmd and reports back with a fresh snapshot, so Update never blocks on
// the store.
type AppModel struct {
	Width       int
	Height      int
	LeftWidth   int
	RightWidth  int
	ActivePane  PaneType
	CurrentMode UIMode

	LeftPane   LeftPaneModel
	RightPane  RightPaneModel
	Find       FindModel
	Query      QueryModel
	Modal      ModalModel
	ActionMenu ActionMenuModel

	State    history.State
	Preview  *Preview
	Groups   action.Groups
	Semantic bool

	// Number input mode for multi-digit commands like "10j"
	NumberBuffer string
	BufferPane   PaneType

	FlashMessage string
	FlashError   bool
	flashSeq     int

	ctx          context.Context
	hist         *history.Store
	registry     *action.Registry
	initialQuery string
	loadPending  bool
}

// NewAppModel creates the browser over hist. Actions resolve and run through
// registry. A non-empty query starts the session in search mode.
func NewAppModel(ctx context.Context, hist *history.Store, registry *action.Registry, query string) *AppModel {
	defaultWidth := 120
	defaultHeight := 20
	defaultLeftWidth := 36
	defaultRightWidth := defaultWidth - defaultLeftWidth - 2

	return &AppModel{
		Width:        defaultWidth,
		Height:       defaultHeight,
		LeftWidth:    defaultLeftWidth,
		RightWidth:   defaultRightWidth,
		ActivePane:   LeftPane,
		CurrentMode:  NormalMode,
		LeftPane:     NewLeftPaneModel(defaultLeftWidth, defaultHeight),
		RightPane:    NewRightPaneModel(defaultRightWidth, defaultHeight),
		Find:         NewFindModel(),
		Modal:        NewModalModel(),
		State:        hist.Snapshot(),
		ctx:          ctx,
		hist:         hist,
		registry:     registry,
		initialQuery: strings.TrimSpace(query),
	}
}

// Init loads the first page, or the first page of results when the session
// was started with a query.
func (a *AppModel) Init() tea.Cmd {
	if a.initialQuery != "" {
		q := a.initialQuery
		return a.historyCmd("", func(ctx context.Context) error { return a.hist.EnterSearch(ctx, q) })
	}
	return a.historyCmd("", a.hist.Refresh)
}

func (a *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		return a.handleWindowResize(m)
	case tea.KeyMsg:
		return a.handleKeyPress(m)
	case stateMsg:
		return a, a.applyState(m.State)
	case opDoneMsg:
		if m.load {
			a.loadPending = false
		}
		cmd := a.applyState(m.State)
		switch {
		case m.Err != nil && !errors.Is(m.Err, context.Canceled):
			return a, tea.Batch(cmd, a.setFlashError(m.Err.Error()))
		case m.Flash != "":
			return a, tea.Batch(cmd, a.setFlashMessage(m.Flash))
		}
		return a, cmd
	case actionDoneMsg:
		return a.handleActionDone(m)
	case queryTickMsg:
		if !a.Query.Current(m) {
			return a, nil
		}
		return a, a.searchCmd(m.query)
	case flashExpiredMsg:
		if m.seq == a.flashSeq {
			a.FlashMessage = ""
			a.FlashError = false
		}
		return a, nil
	}
	return a, nil
}

func (a *AppModel) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	a.Width = max(msg.Width, 30)
	a.Height = msg.Height

	minLeftWidth := 15
	minRightWidth := 20
	borderSpacing := 2

	if a.Width < minLeftWidth+minRightWidth+borderSpacing {
		a.LeftWidth = minLeftWidth
		a.RightWidth = max(a.Width-a.LeftWidth-borderSpacing, minRightWidth)
	} else {
		a.LeftWidth = max(min(40, a.Width/3), minLeftWidth)
		a.RightWidth = a.Width - a.LeftWidth - borderSpacing
		if a.RightWidth < minRightWidth {
			a.RightWidth = minRightWidth
			a.LeftWidth = a.Width - a.RightWidth - borderSpacing
		}
	}

	a.LeftPane.Update(ResizeLeftPaneMsg{Width: a.LeftWidth, Height: a.Height})
	a.RightPane.Update(ResizeRightPaneMsg{Width: a.RightWidth, Height: a.Height})
	a.RightPane.Update(ResetScrollMsg{})
	a.refreshMatches()
	return a, a.maybeLoadMore()
}

// applyState installs a snapshot, keeps the cursor in range, and follows the
// selected clip with the preview.
func (a *AppModel) applyState(st history.State) tea.Cmd {
	a.State = st
	a.LeftPane.Update(ClampMsg{MaxIndex: len(st.Clips) - 1})
	a.syncPreview()
	return a.maybeLoadMore()
}

// SelectedClip returns the clip under the cursor, or nil.
func (a *AppModel) SelectedClip() *store.Clip {
	if a.LeftPane.Cursor < 0 || a.LeftPane.Cursor >= len(a.State.Clips) {
		return nil
	}
	return a.State.Clips[a.LeftPane.Cursor]
}

func (a *AppModel) syncPreview() {
	clip := a.SelectedClip()
	if !a.Preview.Stale(clip) {
		return
	}
	if clip == nil {
		a.Preview = nil
		a.Groups = action.Groups{}
		a.Find.Update(ClearFindMsg{})
		return
	}
	sameClip := a.Preview != nil && a.Preview.clipID == clip.ID
	a.Preview = NewPreview(clip)
	a.Groups = a.registry.Grouped(a.Preview.Content)
	if !sameClip {
		a.RightPane.Update(ResetScrollMsg{})
		a.Find.Update(ClearFindMsg{})
		return
	}
	a.refreshMatches()
}

// refreshMatches reruns the find pattern after the preview was rewrapped.
func (a *AppModel) refreshMatches() {
	if a.Preview == nil || a.Find.GetPattern() == "" {
		return
	}
	a.Preview.UpdateWrappedLines(a.RightPane.textWidth())
	a.Find.SetMatches(a.Preview.Matches(a.Find.GetPattern()))
}

// maybeLoadMore requests the next page once the cursor nears the end of the
// cache.
func (a *AppModel) maybeLoadMore() tea.Cmd {
	if a.loadPending || !a.State.HasMore || a.State.Loading || len(a.State.Clips) == 0 {
		return nil
	}
	if !a.LeftPane.NearEnd(len(a.State.Clips)) {
		return nil
	}
	a.loadPending = true
	ctx, hist := a.ctx, a.hist
	return func() tea.Msg {
		_, err := hist.LoadMore(ctx, 0)
		return opDoneMsg{State: hist.Snapshot(), Err: err, load: true}
	}
}

// historyCmd runs op against the store off the update loop.
func (a *AppModel) historyCmd(flash string, op func(context.Context) error) tea.Cmd {
	ctx, hist := a.ctx, a.hist
	return func() tea.Msg {
		err := op(ctx)
		return opDoneMsg{State: hist.Snapshot(), Flash: flash, Err: err}
	}
}

// searchCmd enters search mode for query, or leaves it when query is blank.
func (a *AppModel) searchCmd(query string) tea.Cmd {
	a.LeftPane.Update(GoToTopMsg{})
	if strings.TrimSpace(query) == "" {
		if a.State.Mode != history.Search {
			return nil
		}
		return a.historyCmd("", a.hist.ExitSearch)
	}
	return a.historyCmd("", func(ctx context.Context) error { return a.hist.EnterSearch(ctx, query) })
}

// runAction executes a catalog action on the selected clip. quit ends the
// session once the action succeeds.
func (a *AppModel) runAction(id string, quit bool) tea.Cmd {
	if a.Preview == nil {
		return a.setFlashMessage("No clip selected")
	}
	act, ok := a.registry.Lookup(id)
	if !ok {
		return a.setFlashError(fmt.Sprintf("unknown action %q", id))
	}
	return a.runSmartAction(act, quit)
}

func (a *AppModel) runSmartAction(act action.SmartAction, quit bool) tea.Cmd {
	ctx, hist, registry := a.ctx, a.hist, a.registry
	c := a.Preview.Content
	return func() tea.Msg {
		res := registry.Execute(ctx, act.ID, c)
		return actionDoneMsg{State: hist.Snapshot(), Label: act.Label, Result: res, Quit: quit}
	}
}

func (a *AppModel) handleActionDone(m actionDoneMsg) (tea.Model, tea.Cmd) {
	cmd := a.applyState(m.State)
	err := m.Result.Err
	switch {
	case err == nil && m.Quit:
		return a, tea.Quit
	case m.Result.Panicked:
		a.Modal.Update(ShowError(m.Label+" crashed", err))
		a.CurrentMode = ErrorMode
		return a, cmd
	case errors.Is(err, launch.ErrNoPasteCommand):
		return a, tea.Batch(cmd, a.setFlashMessage("Copied; set paste_command to paste automatically"))
	case err != nil:
		return a, tea.Batch(cmd, a.setFlashError(fmt.Sprintf("%s failed: %v", m.Label, err)))
	}
	return a, tea.Batch(cmd, a.setFlashMessage(m.Label+" ✓"))
}

// handleKeyPress dispatches on the current mode before looking at the key.
func (a *AppModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.CurrentMode {
	case QueryMode:
		return a.handleQueryModeKeys(msg)
	case FindMode:
		return a.handleFindModeKeys(msg)
	case HelpMode:
		return a.handleHelpModeKeys(key)
	case NumberInputMode:
		return a.handleNumberInputModeKeys(key)
	case DeleteMode, ClearMode:
		return a.handleConfirmModeKeys(key)
	case ActionMode:
		return a.handleActionModeKeys(key)
	case ErrorMode:
		a.Modal.Update(HideModalMsg{})
		a.CurrentMode = NormalMode
		return a, nil
	default:
		return a.handleNormalModeKeys(key)
	}
}

// typed returns the text a key press inserts, if any.
func typed(msg tea.KeyMsg) (string, bool) {
	switch msg.Type {
	case tea.KeyRunes:
		if msg.Alt {
			return "", false
		}
		return string(msg.Runes), true
	case tea.KeySpace:
		return " ", true
	}
	return "", false
}

func trimLast(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}

func (a *AppModel) handleQueryModeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.Query.Close()
		a.CurrentMode = NormalMode
		return a, nil
	case "enter":
		query := a.Query.Input
		a.Query.Close()
		a.CurrentMode = NormalMode
		return a, a.searchCmd(query)
	case "backspace", "ctrl+h":
		return a, a.Query.Set(trimLast(a.Query.Input))
	case "ctrl+u":
		return a, a.Query.Set("")
	}
	if text, ok := typed(msg); ok {
		return a, a.Query.Set(a.Query.Input + text)
	}
	return a, nil
}

func (a *AppModel) handleFindModeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.Find.Update(CancelFindMsg{})
		a.CurrentMode = NormalMode
		return a, nil
	case "enter":
		a.Find.Update(ExecuteFindMsg{})
		if a.Find.GetError() != "" {
			return a, nil
		}
		a.CurrentMode = NormalMode
		a.refreshMatches()
		if line := a.Find.GetCurrentMatchLine(); line >= 0 {
			a.RightPane.ViewPos = scrollToMatch(a.RightPane, a.Preview, line)
		} else if a.Find.GetPattern() != "" {
			return a, a.setFlashMessage("Pattern not found: " + a.Find.GetPattern())
		}
		return a, nil
	case "backspace", "ctrl+h":
		a.Find.Update(UpdateFindInputMsg{Input: trimLast(a.Find.GetInput())})
		return a, nil
	}
	if text, ok := typed(msg); ok {
		a.Find.Update(UpdateFindInputMsg{Input: a.Find.GetInput() + text})
	}
	return a, nil
}

func (a *AppModel) handleHelpModeKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "z", "?", "esc", "q":
		a.CurrentMode = NormalMode
	}
	return a, nil
}

func (a *AppModel) handleNumberInputModeKeys(key string) (tea.Model, tea.Cmd) {
	switch {
	case key == "esc":
		a.NumberBuffer = ""
		a.CurrentMode = NormalMode
		return a, nil
	case key == "backspace":
		a.NumberBuffer = trimLast(a.NumberBuffer)
		if a.NumberBuffer == "" {
			a.CurrentMode = NormalMode
		}
		return a, nil
	case key >= "0" && key <= "9":
		a.NumberBuffer += key
		return a, nil
	case isMovementCommand(key):
		multiplier := 1
		if n, err := strconv.Atoi(a.NumberBuffer); err == nil {
			multiplier = n
		}
		a.NumberBuffer = ""
		a.CurrentMode = NormalMode
		return a.executeCommand(multiplier, key, a.BufferPane)
	default:
		a.NumberBuffer = ""
		a.CurrentMode = NormalMode
		return a, nil
	}
}

func (a *AppModel) handleConfirmModeKeys(key string) (tea.Model, tea.Cmd) {
	mode := a.CurrentMode
	switch key {
	case "y", "Y":
		a.Modal.Update(HideModalMsg{})
		a.CurrentMode = NormalMode
		if mode == ClearMode {
			a.LeftPane.Update(GoToTopMsg{})
			return a, a.historyCmd("History cleared", a.hist.ClearAll)
		}
		return a, a.runAction("delete", false)
	case "n", "N", "esc", "q":
		a.Modal.Update(HideModalMsg{})
		a.CurrentMode = NormalMode
	}
	return a, nil
}

func (a *AppModel) handleActionModeKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc", "q", "a":
		a.ActionMenu.Close()
		a.CurrentMode = NormalMode
	case "j", "down", "tab":
		a.ActionMenu.Move(1)
	case "k", "up", "shift+tab":
		a.ActionMenu.Move(-1)
	case "enter":
		act, ok := a.ActionMenu.Selected()
		return a.startMenuAction(act, ok)
	default:
		if n, err := strconv.Atoi(key); err == nil {
			act, ok := a.ActionMenu.At(n)
			return a.startMenuAction(act, ok)
		}
	}
	return a, nil
}

func (a *AppModel) startMenuAction(act action.SmartAction, ok bool) (tea.Model, tea.Cmd) {
	if !ok {
		return a, nil
	}
	a.ActionMenu.Close()
	a.CurrentMode = NormalMode
	if act.ID == "delete" {
		return a.confirmDelete()
	}
	return a, a.runSmartAction(act, false)
}

func (a *AppModel) confirmDelete() (tea.Model, tea.Cmd) {
	clip := a.SelectedClip()
	if clip == nil {
		return a, nil
	}
	a.Modal.Update(ShowDeleteConfirmation(clip))
	a.CurrentMode = DeleteMode
	return a, nil
}

func (a *AppModel) handleNormalModeKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return a, tea.Quit
	case "esc":
		switch {
		case a.Find.GetPattern() != "":
			a.Find.Update(ClearFindMsg{})
			return a, nil
		case a.State.Mode == history.Search:
			return a, a.searchCmd("")
		}
		return a, tea.Quit
	case "z", "?":
		a.CurrentMode = HelpMode
		return a, nil
	case "tab":
		if a.ActivePane == LeftPane {
			a.ActivePane = RightPane
		} else {
			a.ActivePane = LeftPane
		}
		return a, nil
	case "h", "left":
		a.ActivePane = LeftPane
		return a, nil
	case "l", "right":
		a.ActivePane = RightPane
		return a, nil
	case "s":
		a.Query.Start(a.State.Query)
		a.CurrentMode = QueryMode
		return a, nil
	case "enter":
		return a, a.runAction("copy", true)
	case "c", "y":
		return a, a.runAction("copy", false)
	case "p":
		return a, a.runAction("paste", false)
	case "e":
		return a, a.runAction("open-in-editor", false)
	case "f":
		return a, a.runAction("favorite", false)
	case "P":
		return a, a.runAction("pin", false)
	case "d":
		return a.confirmDelete()
	case "D":
		if len(a.State.Clips) == 0 {
			return a, a.setFlashMessage("History is already empty")
		}
		a.Modal.Update(ShowClearConfirmation(len(a.State.Clips), a.State.HasMore))
		a.CurrentMode = ClearMode
		return a, nil
	case "a":
		if a.Preview == nil {
			return a, a.setFlashMessage("No clip selected")
		}
		a.ActionMenu.Open(a.Groups, a.Preview.Content)
		if a.ActionMenu.Active {
			a.CurrentMode = ActionMode
		}
		return a, nil
	case "r":
		return a, a.historyCmd("", a.hist.Refresh)
	}

	if key >= "1" && key <= "9" || (key == "0" && a.NumberBuffer != "") {
		a.NumberBuffer += key
		a.BufferPane = a.ActivePane
		a.CurrentMode = NumberInputMode
		return a, nil
	}

	if isMovementCommand(key) {
		return a.executeCommand(1, key, a.ActivePane)
	}

	switch a.ActivePane {
	case LeftPane:
		return a.handleLeftPaneKeys(key)
	default:
		return a.handleRightPaneKeys(key)
	}
}

func (a *AppModel) handleLeftPaneKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "/":
		a.Query.Start(a.State.Query)
		a.CurrentMode = QueryMode
	}
	return a, nil
}

func (a *AppModel) handleRightPaneKeys(key string) (tea.Model, tea.Cmd) {
	maxScroll := getMaxScroll(a.RightPane, a.Preview)

	switch key {
	case "/":
		if a.Preview != nil {
			a.Find.Update(StartFindMsg{})
			a.CurrentMode = FindMode
		}
	case "n", "N":
		if !a.Find.HasMatches() {
			return a, nil
		}
		if key == "n" {
			a.Find.Update(NextMatchMsg{})
		} else {
			a.Find.Update(PrevMatchMsg{})
		}
		if line := a.Find.GetCurrentMatchLine(); line >= 0 {
			a.RightPane.ViewPos = scrollToMatch(a.RightPane, a.Preview, line)
		}
	case "ctrl+u":
		a.RightPane.Update(PageUpMsg{})
	case "ctrl+d":
		a.RightPane.Update(PageDownMsg{MaxScroll: maxScroll})
	case "ctrl+b":
		a.RightPane.Update(JumpMsg{Direction: "k", Lines: a.RightPane.bodyHeight(), MaxScroll: maxScroll})
	case "ctrl+f":
		a.RightPane.Update(JumpMsg{Direction: "j", Lines: a.RightPane.bodyHeight(), MaxScroll: maxScroll})
	}
	return a, nil
}

// isMovementCommand checks if a key is a movement command that can use multipliers
func isMovementCommand(key string) bool {
	switch key {
	case "up", "k", "down", "j", "g", "G":
		return true
	}
	return false
}

// executeCommand applies a movement with a count to pane.
func (a *AppModel) executeCommand(multiplier int, key string, pane PaneType) (tea.Model, tea.Cmd) {
	if pane == RightPane {
		maxScroll := getMaxScroll(a.RightPane, a.Preview)
		switch key {
		case "up", "k":
			a.RightPane.Update(JumpMsg{Direction: "k", Lines: multiplier, MaxScroll: maxScroll})
		case "down", "j":
			a.RightPane.Update(JumpMsg{Direction: "j", Lines: multiplier, MaxScroll: maxScroll})
		case "g":
			if multiplier > 1 {
				a.RightPane.ViewPos = min(multiplier-1, maxScroll)
			} else {
				a.RightPane.Update(ScrollToTopMsg{})
			}
		case "G":
			a.RightPane.Update(ScrollToBottomMsg{MaxScroll: maxScroll})
		}
		return a, nil
	}

	maxIndex := len(a.State.Clips) - 1
	switch key {
	case "up", "k":
		a.LeftPane.Update(JumpToIndexMsg{Index: max(a.LeftPane.Cursor-multiplier, 0), MaxIndex: maxIndex})
	case "down", "j":
		a.LeftPane.Update(JumpToIndexMsg{Index: min(a.LeftPane.Cursor+multiplier, maxIndex), MaxIndex: maxIndex})
	case "g":
		if multiplier > 1 {
			a.LeftPane.Update(JumpToIndexMsg{Index: min(multiplier-1, maxIndex), MaxIndex: maxIndex})
		} else {
			a.LeftPane.Update(GoToTopMsg{})
		}
	case "G":
		a.LeftPane.Update(GoToBottomMsg{MaxIndex: maxIndex})
	}
	a.syncPreview()
	return a, a.maybeLoadMore()
}

func (a *AppModel) setFlashMessage(message string) tea.Cmd {
	a.FlashMessage = message
	a.FlashError = false
	a.flashSeq++
	seq := a.flashSeq
	return tea.Tick(flashDuration, func(time.Time) tea.Msg { return flashExpiredMsg{seq: seq} })
}

func (a *AppModel) setFlashError(message string) tea.Cmd {
	cmd := a.setFlashMessage(message)
	a.FlashError = true
	return cmd
}

func (a *AppModel) View() string {
	return AppView(*a)
}

// AppView renders the whole screen.
func AppView(model AppModel) string {
	if model.Width == 0 {
		return "Initializing..."
	}
	if model.CurrentMode == HelpMode {
		return renderHelpView(model) + "\n\n" + renderStatusLine(model)
	}

	view := renderNormalView(model)
	switch {
	case model.ActionMenu.Active:
		return ModalView(model.ActionMenu.Modal(), view, model.Width, model.Height)
	case model.Modal.Active:
		return ModalView(model.Modal, view, model.Width, model.Height)
	}
	return view
}

func renderNormalView(model AppModel) string {
	left := LeftPaneView(model.LeftPane, model.State, model.ActivePane == LeftPane)
	right := RightPaneView(model.RightPane, model.Preview, model.Groups, model.Find, model.ActivePane == RightPane)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right) + "\n\n" + renderStatusLine(model)
}

// renderStatusLine renders the bottom line: a flash message if one is live,
// otherwise whatever input or state is most relevant.
func renderStatusLine(model AppModel) string {
	style := lipgloss.NewStyle().Width(model.Width)

	if model.FlashMessage != "" {
		color := "10"
		if model.FlashError {
			color = "9"
		}
		return style.Foreground(lipgloss.Color(color)).Render(model.FlashMessage)
	}

	var line string
	switch {
	case model.CurrentMode == QueryMode:
		line = "search: " + model.Query.Input + "▏"
		if model.Semantic {
			line += "  (semantic)"
		}
	case model.NumberBuffer != "":
		line = model.NumberBuffer
	case model.Find.IsActive():
		line = "/" + model.Find.GetInput()
		if model.Find.GetError() != "" {
			line += " (Error: " + model.Find.GetError() + ")"
		} else {
			line += " (Enter to find, Esc to cancel)"
		}
	case model.Find.HasMatches():
		current, total := model.Find.GetCurrentMatch()
		line = fmt.Sprintf("Pattern: %s - Match %d of %d", model.Find.GetPattern(), current+1, total)
	case model.State.Err != "":
		return style.Foreground(lipgloss.Color("9")).Render(model.State.Err)
	case model.CurrentMode == HelpMode:
		line = "Help - press z to return, q to quit"
	case model.State.Mode == history.Search:
		line = fmt.Sprintf("%d results for %q · s edit search · esc back to history", len(model.State.Clips), model.State.Query)
	default:
		line = "enter copy & quit · s search · a actions · f fav · P pin · d delete · z help · q quit"
	}
	return style.Render(truncate(line, model.Width))
}

func renderHelpView(model AppModel) string {
	helpContent := `clipvault - clipboard history

NAVIGATION:
  j, ↓        Next clip (right pane: scroll down)
  k, ↑        Previous clip (right pane: scroll up)
  g, G        First / last loaded clip (with a count: go to N)
  #j, #k      Move N rows or lines, e.g. 10j
  Tab, h, l   Switch panes

SEARCH:
  s, /        Search the history (left pane); results update as you type
  Esc         Leave search and return to recent clips
  /pattern    Find in the preview (right pane)
  n, N        Next / previous match

CLIPS:
  Enter       Copy and quit
  c, y        Copy
  p           Copy and paste
  e           Edit in $EDITOR
  f           Toggle favorite
  P           Toggle pin
  a           All actions for the clip
  d           Delete clip
  D           Clear the whole history
  r           Reload

GLOBAL:
  z, ?        Toggle this help
  q, Ctrl+c   Quit

More clips load automatically as you scroll.`

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(1).
		Width(model.Width - 4).
		Height(model.Height - 4).
		Render(helpContent)
}

package tui

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/yiblet/clipvault/internal/action"
	"github.com/yiblet/clipvault/internal/blobfs"
	"github.com/yiblet/clipvault/internal/clipboard/mockboard"
	"github.com/yiblet/clipvault/internal/content"
	"github.com/yiblet/clipvault/internal/history"
	"github.com/yiblet/clipvault/internal/service"
	"github.com/yiblet/clipvault/internal/store"
	"github.com/yiblet/clipvault/internal/store/memstore"
)

func TestMain(m *testing.M) {
	flashDuration = time.Millisecond
	queryDebounce = time.Millisecond
	os.Exit(m.Run())
}

type testApp struct {
	*AppModel
	svc   *service.Service
	board *mockboard.MockClipboard
	sess  *Session
}

// newTestApp captures texts oldest first and loads the first page.
func newTestApp(t *testing.T, pageSize int, texts ...string) *testApp {
	t.Helper()
	st, err := memstore.NewMemoryStore()
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	board := mockboard.New()
	svc := service.New(st, service.WithClipboard(board), service.WithBlobs(blobfs.NewWithRoot(t.TempDir())))
	t.Cleanup(func() { svc.Close() })

	for _, text := range texts {
		if _, err := svc.Capture(context.Background(), &store.CaptureInput{ContentType: store.ContentText, ContentText: text}); err != nil {
			t.Fatalf("failed to capture %q: %v", text, err)
		}
	}

	sess := NewSession(svc, Options{PageSize: pageSize}, nil)
	app := &testApp{
		AppModel: NewAppModel(context.Background(), sess.History, sess.Registry, ""),
		svc:      svc,
		board:    board,
		sess:     sess,
	}
	app.drain(t, app.Init())
	return app
}

// drain runs cmd and feeds what it produces back into the model until
// nothing is left. Expired flashes are dropped so tests can inspect them.
// It reports whether the program asked to quit.
func (a *testApp) drain(t *testing.T, cmd tea.Cmd) bool {
	t.Helper()
	if cmd == nil {
		return false
	}
	switch msg := cmd().(type) {
	case nil, flashExpiredMsg:
		return false
	case tea.QuitMsg:
		return true
	case tea.BatchMsg:
		quit := false
		for _, c := range msg {
			quit = a.drain(t, c) || quit
		}
		return quit
	default:
		_, next := a.Update(msg)
		return a.drain(t, next)
	}
}

func (a *testApp) press(t *testing.T, keys ...string) bool {
	t.Helper()
	quit := false
	for _, k := range keys {
		_, cmd := a.Update(keyMsg(k))
		quit = a.drain(t, cmd) || quit
	}
	return quit
}

func (a *testApp) typeText(t *testing.T, text string) {
	t.Helper()
	for _, r := range text {
		_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		a.drain(t, cmd)
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func (a *testApp) texts() []string {
	out := make([]string, len(a.State.Clips))
	for i, c := range a.State.Clips {
		out[i] = c.ContentText
	}
	return out
}

func TestNewAppModel(t *testing.T) {
	app := newTestApp(t, 10)

	if app.Width != 120 || app.Height != 20 {
		t.Errorf("Expected 120x20, got %dx%d", app.Width, app.Height)
	}
	if app.ActivePane != LeftPane {
		t.Errorf("Expected active pane to be LeftPane, got %v", app.ActivePane)
	}
	if app.CurrentMode != NormalMode {
		t.Errorf("Expected NormalMode, got %v", app.CurrentMode)
	}
	if app.Preview != nil {
		t.Errorf("Expected no preview for an empty history")
	}
}

func TestAppModel_InitLoadsNewestFirst(t *testing.T) {
	app := newTestApp(t, 10, "first", "second", "third")

	got := app.texts()
	want := []string{"third", "second", "first"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	if app.Preview == nil || app.Preview.Content.Text != "third" {
		t.Errorf("Expected preview of newest clip, got %+v", app.Preview)
	}
	if app.State.HasMore {
		t.Errorf("Expected HasMore false after a short page")
	}
}

func TestAppModel_WindowResize(t *testing.T) {
	app := newTestApp(t, 10, "hello")

	app.Update(tea.WindowSizeMsg{Width: 150, Height: 30})

	if app.Width != 150 || app.Height != 30 {
		t.Errorf("Expected 150x30, got %dx%d", app.Width, app.Height)
	}
	if app.LeftWidth != 40 {
		t.Errorf("Expected left width 40, got %d", app.LeftWidth)
	}
	if app.RightWidth != 150-40-2 {
		t.Errorf("Expected right width %d, got %d", 150-40-2, app.RightWidth)
	}
	if app.LeftPane.Height != 30 || app.RightPane.Width != app.RightWidth {
		t.Errorf("Sub-models not resized: left=%+v right=%+v", app.LeftPane, app.RightPane)
	}
}

func TestAppModel_TabSwitching(t *testing.T) {
	app := newTestApp(t, 10, "hello")

	app.press(t, "tab")
	if app.ActivePane != RightPane {
		t.Errorf("Expected RightPane after tab, got %v", app.ActivePane)
	}
	app.press(t, "tab")
	if app.ActivePane != LeftPane {
		t.Errorf("Expected LeftPane after second tab, got %v", app.ActivePane)
	}
	app.press(t, "l")
	if app.ActivePane != RightPane {
		t.Errorf("Expected RightPane after l, got %v", app.ActivePane)
	}
	app.press(t, "h")
	if app.ActivePane != LeftPane {
		t.Errorf("Expected LeftPane after h, got %v", app.ActivePane)
	}
}

func TestAppModel_QuitKeys(t *testing.T) {
	for _, k := range []string{"q", "ctrl+c", "esc"} {
		t.Run(k, func(t *testing.T) {
			app := newTestApp(t, 10, "hello")
			if !app.press(t, k) {
				t.Errorf("Expected %s to quit", k)
			}
		})
	}
}

func TestAppModel_Navigation(t *testing.T) {
	app := newTestApp(t, 10, "a", "b", "c", "d", "e")

	app.press(t, "j")
	if app.LeftPane.Cursor != 1 || app.Preview.Content.Text != "d" {
		t.Errorf("Expected cursor 1 on d, got %d on %q", app.LeftPane.Cursor, app.Preview.Content.Text)
	}
	app.press(t, "G")
	if app.LeftPane.Cursor != 4 {
		t.Errorf("Expected cursor at bottom, got %d", app.LeftPane.Cursor)
	}
	app.press(t, "j")
	if app.LeftPane.Cursor != 4 {
		t.Errorf("Expected cursor to stay at bottom, got %d", app.LeftPane.Cursor)
	}
	app.press(t, "g")
	if app.LeftPane.Cursor != 0 {
		t.Errorf("Expected cursor at top, got %d", app.LeftPane.Cursor)
	}
	app.press(t, "k")
	if app.LeftPane.Cursor != 0 {
		t.Errorf("Expected cursor to stay at top, got %d", app.LeftPane.Cursor)
	}
}

func TestAppModel_NumberPrefix(t *testing.T) {
	app := newTestApp(t, 10, "a", "b", "c", "d", "e")

	app.press(t, "3")
	if app.CurrentMode != NumberInputMode || app.NumberBuffer != "3" {
		t.Fatalf("Expected number input with buffer 3, got mode %v buffer %q", app.CurrentMode, app.NumberBuffer)
	}
	app.press(t, "j")
	if app.LeftPane.Cursor != 3 {
		t.Errorf("Expected 3j to move to 3, got %d", app.LeftPane.Cursor)
	}
	if app.CurrentMode != NormalMode || app.NumberBuffer != "" {
		t.Errorf("Expected number buffer cleared, got mode %v buffer %q", app.CurrentMode, app.NumberBuffer)
	}

	app.press(t, "2", "g")
	if app.LeftPane.Cursor != 1 {
		t.Errorf("Expected 2g to jump to index 1, got %d", app.LeftPane.Cursor)
	}

	app.press(t, "5", "x")
	if app.CurrentMode != NormalMode || app.NumberBuffer != "" {
		t.Errorf("Expected invalid key to cancel number input")
	}
}

func TestAppModel_IncrementalLoading(t *testing.T) {
	var texts []string
	for i := 0; i < 25; i++ {
		texts = append(texts, fmt.Sprintf("clip %02d", i))
	}
	app := newTestApp(t, 10, texts...)

	if len(app.State.Clips) != 10 || !app.State.HasMore {
		t.Fatalf("Expected first page of 10 with more, got %d (more=%v)", len(app.State.Clips), app.State.HasMore)
	}

	app.press(t, "G")
	if len(app.State.Clips) != 20 {
		t.Fatalf("Expected second page loaded near the end, got %d", len(app.State.Clips))
	}

	app.press(t, "G")
	if len(app.State.Clips) != 25 {
		t.Fatalf("Expected all 25 clips, got %d", len(app.State.Clips))
	}
	if app.State.HasMore {
		t.Errorf("Expected HasMore false after the last page")
	}
	if app.State.Clips[24].ContentText != "clip 00" {
		t.Errorf("Expected oldest clip last, got %q", app.State.Clips[24].ContentText)
	}
}

func TestAppModel_SearchAsYouType(t *testing.T) {
	app := newTestApp(t, 10, "hello world", "goodbye moon", "world peace")

	app.press(t, "s")
	if app.CurrentMode != QueryMode {
		t.Fatalf("Expected QueryMode, got %v", app.CurrentMode)
	}
	app.typeText(t, "moon")

	if app.State.Mode != history.Search || app.State.Query != "moon" {
		t.Fatalf("Expected search for moon, got mode %v query %q", app.State.Mode, app.State.Query)
	}
	if got := app.texts(); len(got) != 1 || got[0] != "goodbye moon" {
		t.Errorf("Expected only goodbye moon, got %v", got)
	}

	app.press(t, "enter")
	if app.CurrentMode != NormalMode {
		t.Errorf("Expected NormalMode after enter, got %v", app.CurrentMode)
	}

	app.press(t, "esc")
	if app.State.Mode != history.Browse || len(app.State.Clips) != 3 {
		t.Errorf("Expected browse with 3 clips after esc, got mode %v with %d", app.State.Mode, len(app.State.Clips))
	}
}

func TestAppModel_SearchBlankQueryExits(t *testing.T) {
	app := newTestApp(t, 10, "alpha", "beta")

	app.press(t, "/")
	app.typeText(t, "alpha")
	if app.State.Mode != history.Search {
		t.Fatalf("Expected search mode")
	}

	app.press(t, "backspace", "backspace", "backspace", "backspace", "backspace")
	if app.State.Mode != history.Browse || len(app.State.Clips) != 2 {
		t.Errorf("Expected blank query to return to browse, got mode %v with %d", app.State.Mode, len(app.State.Clips))
	}
}

func TestAppModel_StaleQueryTickIgnored(t *testing.T) {
	app := newTestApp(t, 10, "alpha", "beta")

	app.press(t, "s")
	stale := app.Query.Set("alpha")
	app.Query.Set("beta")

	_, cmd := app.Update(stale())
	if cmd != nil {
		t.Errorf("Expected no search for a superseded query")
	}
}

func TestAppModel_InitialQuery(t *testing.T) {
	st, err := memstore.NewMemoryStore()
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	svc := service.New(st, service.WithClipboard(mockboard.New()))
	t.Cleanup(func() { svc.Close() })
	for _, text := range []string{"red apple", "green pear"} {
		if _, err := svc.Capture(context.Background(), &store.CaptureInput{ContentType: store.ContentText, ContentText: text}); err != nil {
			t.Fatal(err)
		}
	}

	sess := NewSession(svc, Options{PageSize: 10}, nil)
	app := &testApp{AppModel: NewAppModel(context.Background(), sess.History, sess.Registry, "apple"), svc: svc}
	app.drain(t, app.Init())

	if app.State.Mode != history.Search || len(app.State.Clips) != 1 || app.State.Clips[0].ContentText != "red apple" {
		t.Errorf("Expected session to open on results for apple, got %v", app.texts())
	}
}

func TestAppModel_EnterCopiesAndQuits(t *testing.T) {
	app := newTestApp(t, 10, "old", "new")

	app.press(t, "j")
	if !app.press(t, "enter") {
		t.Fatalf("Expected enter to quit after copying")
	}
	writes := app.board.Writes()
	if len(writes) == 0 || writes[len(writes)-1] != "old" {
		t.Errorf("Expected old on the clipboard, got %v", writes)
	}
}

func TestAppModel_CopyKeepsBrowsing(t *testing.T) {
	app := newTestApp(t, 10, "hello")

	if app.press(t, "c") {
		t.Fatalf("Expected c not to quit")
	}
	if app.FlashMessage != "Copy ✓" || app.FlashError {
		t.Errorf("Expected copy flash, got %q (error=%v)", app.FlashMessage, app.FlashError)
	}
	if got := app.board.Writes(); len(got) != 1 || got[0] != "hello" {
		t.Errorf("Expected hello copied, got %v", got)
	}
	clip, err := app.svc.GetClip(context.Background(), app.State.Clips[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if clip.AccessCount != 1 {
		t.Errorf("Expected access count bumped, got %d", clip.AccessCount)
	}
}

func TestAppModel_PasteWithoutCommand(t *testing.T) {
	app := newTestApp(t, 10, "hello")

	app.press(t, "p")
	if !strings.Contains(app.FlashMessage, "paste_command") || app.FlashError {
		t.Errorf("Expected paste_command hint, got %q", app.FlashMessage)
	}
	if got := app.board.Writes(); len(got) != 1 {
		t.Errorf("Expected text still copied, got %v", got)
	}
}

func TestAppModel_ToggleFavoriteAndPin(t *testing.T) {
	app := newTestApp(t, 10, "hello")

	app.press(t, "f")
	if !app.State.Clips[0].IsFavorite {
		t.Errorf("Expected clip favorited")
	}
	app.press(t, "P")
	if !app.State.Clips[0].IsPinned {
		t.Errorf("Expected clip pinned")
	}
	if !strings.Contains(LeftPaneView(app.LeftPane, app.State, true), "^*") {
		t.Errorf("Expected pin and favorite markers in the list")
	}

	app.press(t, "f")
	if app.State.Clips[0].IsFavorite {
		t.Errorf("Expected favorite toggled off")
	}

	clip, err := app.svc.GetClip(context.Background(), app.State.Clips[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if clip.IsFavorite || !clip.IsPinned {
		t.Errorf("Expected store to match: favorite=%v pinned=%v", clip.IsFavorite, clip.IsPinned)
	}
}

func TestAppModel_DeleteConfirmation(t *testing.T) {
	app := newTestApp(t, 10, "keep", "remove")

	app.press(t, "d")
	if app.CurrentMode != DeleteMode || !app.Modal.Active {
		t.Fatalf("Expected delete confirmation, got mode %v", app.CurrentMode)
	}
	if !strings.Contains(app.View(), "Delete clip?") {
		t.Errorf("Expected modal in view")
	}

	app.press(t, "n")
	if app.CurrentMode != NormalMode || app.Modal.Active || len(app.State.Clips) != 2 {
		t.Fatalf("Expected cancel to keep both clips")
	}

	app.press(t, "d", "y")
	if got := app.texts(); len(got) != 1 || got[0] != "keep" {
		t.Errorf("Expected only keep left, got %v", got)
	}
	if app.Preview == nil || app.Preview.Content.Text != "keep" {
		t.Errorf("Expected preview to move to the remaining clip")
	}
	recent, err := app.svc.RecentClips(context.Background(), 10, 0)
	if err != nil || len(recent) != 1 {
		t.Errorf("Expected one clip in the store, got %d (%v)", len(recent), err)
	}
}

func TestAppModel_ClearAll(t *testing.T) {
	app := newTestApp(t, 10, "a", "b", "c")

	app.press(t, "D")
	if app.CurrentMode != ClearMode {
		t.Fatalf("Expected ClearMode, got %v", app.CurrentMode)
	}
	app.press(t, "y")

	if len(app.State.Clips) != 0 {
		t.Errorf("Expected empty history, got %v", app.texts())
	}
	if app.FlashMessage != "History cleared" {
		t.Errorf("Expected clear flash, got %q", app.FlashMessage)
	}

	app.press(t, "D")
	if app.CurrentMode != NormalMode {
		t.Errorf("Expected no confirmation for an empty history")
	}
}

func TestAppModel_ActionMenu(t *testing.T) {
	app := newTestApp(t, 10, "https://example.com/docs")

	app.press(t, "a")
	if app.CurrentMode != ActionMode || !app.ActionMenu.Active {
		t.Fatalf("Expected action menu, got mode %v", app.CurrentMode)
	}
	if first, _ := app.ActionMenu.At(1); first.Category != action.CategorySmart {
		t.Errorf("Expected smart actions first, got %+v", first)
	}

	n := -1
	for i, a := range app.ActionMenu.Items {
		if a.ID == "copy-domain" {
			n = i + 1
		}
	}
	if n < 1 || n > 9 {
		t.Fatalf("Expected copy-domain among the first nine actions, got %d", n)
	}
	if !strings.Contains(app.View(), "Actions") {
		t.Errorf("Expected menu in view")
	}

	app.press(t, strconv.Itoa(n))
	if app.ActionMenu.Active || app.CurrentMode != NormalMode {
		t.Errorf("Expected menu closed after running an action")
	}
	if got := app.board.Writes(); len(got) != 1 || got[0] != "example.com" {
		t.Errorf("Expected example.com copied, got %v", got)
	}
}

func TestAppModel_ActionMenuNavigation(t *testing.T) {
	app := newTestApp(t, 10, "plain words")

	app.press(t, "a")
	count := len(app.ActionMenu.Items)
	app.press(t, "k")
	if app.ActionMenu.Cursor != count-1 {
		t.Errorf("Expected cursor to wrap to %d, got %d", count-1, app.ActionMenu.Cursor)
	}
	app.press(t, "j")
	if app.ActionMenu.Cursor != 0 {
		t.Errorf("Expected cursor to wrap to 0, got %d", app.ActionMenu.Cursor)
	}
	app.press(t, "esc")
	if app.ActionMenu.Active || app.CurrentMode != NormalMode {
		t.Errorf("Expected esc to close the menu")
	}
}

func TestAppModel_ActionMenuDeleteAsksFirst(t *testing.T) {
	app := newTestApp(t, 10, "hello")

	app.press(t, "a")
	for i, a := range app.ActionMenu.Items {
		if a.ID == "delete" {
			app.ActionMenu.Cursor = i
		}
	}
	app.press(t, "enter")
	if app.CurrentMode != DeleteMode {
		t.Fatalf("Expected delete from the menu to ask first, got %v", app.CurrentMode)
	}
	app.press(t, "y")
	if len(app.State.Clips) != 0 {
		t.Errorf("Expected clip deleted")
	}
}

func TestAppModel_PanickingActionShowsError(t *testing.T) {
	app := newTestApp(t, 10, "hello")
	app.registry = action.NewRegistry(app.sess.env, action.WithCatalog([]action.SmartAction{{
		ID:       "boom",
		Label:    "Boom",
		Category: action.CategorySmart,
		Check:    func(content.Content) bool { return true },
		Execute:  func(context.Context, action.Env, content.Content) error { panic("kaboom") },
	}}))
	app.Preview = nil
	app.syncPreview()

	app.press(t, "a", "enter")
	if app.CurrentMode != ErrorMode || !strings.Contains(app.Modal.Content, "kaboom") {
		t.Fatalf("Expected error modal, got mode %v content %q", app.CurrentMode, app.Modal.Content)
	}
	app.press(t, "x")
	if app.CurrentMode != NormalMode || app.Modal.Active {
		t.Errorf("Expected any key to dismiss the error")
	}
}

func TestAppModel_LiveCapture(t *testing.T) {
	st, err := memstore.NewMemoryStore()
	if err != nil {
		t.Fatal(err)
	}
	svc := service.New(st, service.WithClipboard(mockboard.New()))
	t.Cleanup(func() { svc.Close() })

	msgs := make(chan tea.Msg, 16)
	sess := NewSession(svc, Options{PageSize: 10}, func(m tea.Msg) { msgs <- m })
	app := &testApp{AppModel: NewAppModel(context.Background(), sess.History, sess.Registry, ""), svc: svc}
	app.drain(t, app.Init())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, unsubscribe := svc.Bus().Subscribe(8)
	defer unsubscribe()
	go sess.History.Consume(ctx, ch)

	if _, err := svc.Capture(ctx, &store.CaptureInput{ContentType: store.ContentText, ContentText: "fresh"}); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	for len(app.State.Clips) == 0 {
		select {
		case m := <-msgs:
			app.Update(m)
		case <-deadline:
			t.Fatalf("Expected the captured clip to reach the browser")
		}
	}
	if app.State.Clips[0].ContentText != "fresh" || app.Preview == nil {
		t.Errorf("Expected fresh at the top with a preview, got %v", app.texts())
	}
}

func TestAppModel_FindInPreview(t *testing.T) {
	body := strings.Repeat("filler line\n", 40) + "the needle is here\n" + strings.Repeat("more filler\n", 40)
	app := newTestApp(t, 10, body)

	app.press(t, "tab", "/")
	if app.CurrentMode != FindMode || !app.Find.IsActive() {
		t.Fatalf("Expected FindMode, got %v", app.CurrentMode)
	}
	app.typeText(t, "needle")
	app.press(t, "enter")

	if !app.Find.HasMatches() {
		t.Fatalf("Expected a match for needle")
	}
	line := app.Find.GetCurrentMatchLine()
	if app.RightPane.ViewPos == 0 || app.RightPane.ViewPos > line {
		t.Errorf("Expected preview scrolled toward line %d, at %d", line, app.RightPane.ViewPos)
	}
	if !strings.Contains(renderStatusLine(*app.AppModel), "Match 1 of 1") {
		t.Errorf("Expected match count in status line, got %q", renderStatusLine(*app.AppModel))
	}

	app.press(t, "esc")
	if app.Find.GetPattern() != "" {
		t.Errorf("Expected esc to clear the find")
	}
}

func TestAppModel_FindInvalidPattern(t *testing.T) {
	app := newTestApp(t, 10, "text")

	app.press(t, "tab", "/")
	app.typeText(t, "[")
	app.press(t, "enter")
	if app.CurrentMode != FindMode || app.Find.GetError() == "" {
		t.Errorf("Expected to stay in FindMode with an error")
	}
}

func TestAppModel_HelpMode(t *testing.T) {
	app := newTestApp(t, 10, "hello")

	app.press(t, "z")
	if app.CurrentMode != HelpMode {
		t.Fatalf("Expected HelpMode, got %v", app.CurrentMode)
	}
	if !strings.Contains(app.View(), "clipvault - clipboard history") {
		t.Errorf("Expected help text in view")
	}
	if app.press(t, "q") {
		t.Errorf("Expected q to leave help, not quit")
	}
	if app.CurrentMode != NormalMode {
		t.Errorf("Expected NormalMode after leaving help")
	}
}

func TestAppView_RendersListAndPreview(t *testing.T) {
	app := newTestApp(t, 10, "first clip", "https://example.com")
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 30})

	view := app.View()
	for _, want := range []string{"History", "first clip", "example.com", "Preview", "Domain: example.com", "Open in browser"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected %q in view", want)
		}
	}
}

func TestAppModel_FlashExpires(t *testing.T) {
	app := newTestApp(t, 10, "hello")

	cmd := app.setFlashMessage("first")
	app.setFlashMessage("second")
	app.Update(cmd())
	if app.FlashMessage != "second" {
		t.Errorf("Expected an older tick to leave the newer flash, got %q", app.FlashMessage)
	}
}

// Package tui is the interactive history browser. It is a thin view over a
// history.Store: the store owns the cached clips and the TUI renders its
// snapshots, forwarding every mutation back to it.
package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/yiblet/clipvault/internal/action"
	"github.com/yiblet/clipvault/internal/content"
	"github.com/yiblet/clipvault/internal/history"
	"github.com/yiblet/clipvault/internal/service"
)

// Options configures a browsing session.
type Options struct {
	PageSize        int
	RecapturePolicy history.RecapturePolicy
	Query           string
	Semantic        bool
	// Watch captures clipboard changes while the browser is open.
	Watch  bool
	Logger zerolog.Logger
}

// Session bundles the history store and action registry behind one browser.
type Session struct {
	History  *history.Store
	Registry *action.Registry
	env      *sessionEnv
}

// NewSession wires a history store and an action registry over svc. send
// receives every store change; it may be nil.
func NewSession(svc *service.Service, opts Options, send func(tea.Msg)) *Session {
	env := &sessionEnv{svc: svc}
	hist := history.New(svc,
		history.WithPageSize(opts.PageSize),
		history.WithRecapturePolicy(opts.RecapturePolicy),
		history.WithSearchOptions(history.SearchOptions{Semantic: opts.Semantic}),
		history.WithLogger(opts.Logger),
		history.WithListener(func(st history.State) {
			if send != nil {
				send(stateMsg{State: st})
			}
		}),
	)
	env.hist = hist
	return &Session{
		History:  hist,
		Registry: action.NewRegistry(env, action.WithLogger(opts.Logger)),
		env:      env,
	}
}

// Run opens the browser and blocks until the user quits or ctx is done.
func Run(ctx context.Context, svc *service.Service, opts Options) error {
	if opts.RecapturePolicy == "" {
		opts.RecapturePolicy = history.MoveToFront
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var prog *tea.Program
	sess := NewSession(svc, opts, func(msg tea.Msg) { prog.Send(msg) })

	app := NewAppModel(ctx, sess.History, sess.Registry, opts.Query)
	app.Semantic = opts.Semantic
	prog = tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	sess.env.prog = prog

	events, unsubscribe := svc.Bus().Subscribe(64)
	defer unsubscribe()
	go sess.History.Consume(ctx, events)

	if opts.Watch {
		go func() {
			if err := svc.Watch(ctx); err != nil {
				opts.Logger.Warn().Err(err).Msg("clipboard watch stopped")
			}
		}()
	}

	opts.Logger.Debug().Int("page_size", opts.PageSize).Str("query", opts.Query).Msg("starting browser")
	if _, err := prog.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to run browser: %w", err)
	}
	return nil
}

// sessionEnv routes action side effects. Clip mutations go through the
// history store so the list updates optimistically; the rest go to the
// service.
type sessionEnv struct {
	svc  *service.Service
	hist *history.Store
	prog *tea.Program
}

var _ action.Env = (*sessionEnv)(nil)

func (e *sessionEnv) Copy(ctx context.Context, text string, clipID int64) error {
	return e.svc.Copy(ctx, text, clipID)
}

func (e *sessionEnv) Paste(ctx context.Context, text string, clipID int64) error {
	return e.svc.Paste(ctx, text, clipID)
}

func (e *sessionEnv) Open(ctx context.Context, target string) error {
	return e.svc.Open(ctx, target)
}

// Edit hands the terminal to the editor for the duration of the edit.
func (e *sessionEnv) Edit(ctx context.Context, c content.Content) error {
	if e.prog != nil {
		if err := e.prog.ReleaseTerminal(); err != nil {
			return fmt.Errorf("failed to release terminal: %w", err)
		}
		defer e.prog.RestoreTerminal()
	}
	return e.svc.Edit(ctx, c)
}

func (e *sessionEnv) ToggleFavorite(ctx context.Context, id int64) (bool, error) {
	return e.hist.ToggleFavorite(ctx, id)
}

func (e *sessionEnv) TogglePin(ctx context.Context, id int64) (bool, error) {
	return e.hist.TogglePin(ctx, id)
}

func (e *sessionEnv) Delete(ctx context.Context, id int64) error {
	return e.hist.Delete(ctx, id)
}

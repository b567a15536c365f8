// Package action holds the catalog of operations offered for a clip and
// resolves which of them apply to a given Content.
package action

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yiblet/clipvault/internal/content"
)

// Category groups actions for layout. Catalog order already places smart
// actions first, then standard, then meta.
type Category string

const (
	CategorySmart    Category = "smart"
	CategoryStandard Category = "standard"
	CategoryMeta     Category = "meta"
)

// ErrNotApplicable is returned when an action is executed against content
// its Check rejects.
var ErrNotApplicable = errors.New("action not applicable")

// Env is everything an action may touch outside the process.
type Env interface {
	Copy(ctx context.Context, text string, clipID int64) error
	Paste(ctx context.Context, text string, clipID int64) error
	Open(ctx context.Context, target string) error
	Edit(ctx context.Context, c content.Content) error
	ToggleFavorite(ctx context.Context, id int64) (bool, error)
	TogglePin(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

// SmartAction is one catalog entry. Check decides whether the action is
// offered; IsActive only changes how it is drawn.
type SmartAction struct {
	ID       string
	Label    string
	Category Category

	Check    func(c content.Content) bool
	Execute  func(ctx context.Context, env Env, c content.Content) error
	IsActive func(c content.Content) bool
}

// Active reports the cosmetic toggle state of the action for c.
func (a SmartAction) Active(c content.Content) bool {
	return a.IsActive != nil && a.IsActive(c)
}

// Result is the outcome of running an action. Failures stay here and are
// never returned as errors from the registry.
type Result struct {
	ActionID string
	Err      error
	Panicked bool
}

// OK reports whether the action completed.
func (r Result) OK() bool { return r.Err == nil }

// Groups is Resolve's output partitioned by category.
type Groups struct {
	Smart    []SmartAction
	Standard []SmartAction
	Meta     []SmartAction
}

// Registry is the per-session action catalog.
type Registry struct {
	catalog []SmartAction
	byID    map[string]int
	env     Env
	log     zerolog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used to report action failures.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// WithCatalog replaces the built-in catalog.
func WithCatalog(actions []SmartAction) Option {
	return func(r *Registry) { r.catalog = actions }
}

// NewRegistry builds the catalog once. env receives every side effect.
func NewRegistry(env Env, opts ...Option) *Registry {
	r := &Registry{catalog: Catalog(), env: env, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	r.byID = make(map[string]int, len(r.catalog))
	for i, a := range r.catalog {
		if a.Check == nil {
			panic(fmt.Sprintf("action %q has no Check", a.ID))
		}
		r.byID[a.ID] = i
	}
	return r
}

// Actions returns the full catalog in priority order.
func (r *Registry) Actions() []SmartAction {
	return append([]SmartAction(nil), r.catalog...)
}

// Lookup finds an action by id.
func (r *Registry) Lookup(id string) (SmartAction, bool) {
	i, ok := r.byID[id]
	if !ok {
		return SmartAction{}, false
	}
	return r.catalog[i], true
}

// Resolve returns the actions whose Check accepts c, in catalog order.
func (r *Registry) Resolve(c content.Content) []SmartAction {
	out := make([]SmartAction, 0, len(r.catalog))
	for _, a := range r.catalog {
		if r.check(a, c) {
			out = append(out, a)
		}
	}
	return out
}

// Grouped partitions Resolve(c) by category, keeping its order.
func (r *Registry) Grouped(c content.Content) Groups {
	var g Groups
	for _, a := range r.Resolve(c) {
		switch a.Category {
		case CategorySmart:
			g.Smart = append(g.Smart, a)
		case CategoryStandard:
			g.Standard = append(g.Standard, a)
		case CategoryMeta:
			g.Meta = append(g.Meta, a)
		}
	}
	return g
}

// check runs a.Check; a panicking check counts as not applicable.
func (r *Registry) check(a SmartAction, c content.Content) (ok bool) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Warn().Str("action", a.ID).Interface("panic", p).Msg("action check panicked")
			ok = false
		}
	}()
	return a.Check(c)
}

// Execute runs the action with the given id against c. Errors and panics
// from the action end up in the Result.
func (r *Registry) Execute(ctx context.Context, id string, c content.Content) (res Result) {
	res.ActionID = id
	a, ok := r.Lookup(id)
	if !ok {
		res.Err = fmt.Errorf("unknown action %q", id)
		r.log.Warn().Str("action", id).Msg("unknown action")
		return res
	}
	if !r.check(a, c) {
		res.Err = fmt.Errorf("%s: %w", id, ErrNotApplicable)
		return res
	}

	defer func() {
		if p := recover(); p != nil {
			res.Err = fmt.Errorf("action %s panicked: %v", id, p)
			res.Panicked = true
		}
		if res.Err != nil {
			r.log.Error().Err(res.Err).Str("action", id).Msg("action failed")
		}
	}()
	res.Err = a.Execute(ctx, r.env, c)
	return res
}

// Go runs Execute on its own goroutine and delivers the result on the
// returned channel.
func (r *Registry) Go(ctx context.Context, id string, c content.Content) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		ch <- r.Execute(ctx, id, c)
	}()
	return ch
}

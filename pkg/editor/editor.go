package editor

import (
	"context"
	"time"

	"github.com/matzehuels/banktags/pkg/banktags"
	"github.com/matzehuels/banktags/pkg/errors"
	"github.com/matzehuels/banktags/pkg/grid"
	"github.com/matzehuels/banktags/pkg/observability"
)

// Gate reports whether the item catalog has finished loading.
type Gate interface {
	Ready() bool
}

// Codec translates ids for import and export.
type Codec interface {
	banktags.Resolver
	banktags.ForwardMapper
}

// Saver persists the layout after a change.
type Saver interface {
	Save(ctx context.Context) error
}

// Options configures an [Editor]. Nil fields are allowed: a nil Gate is
// always open, a nil Codec uses raw ids and a nil Saver skips persistence.
type Options struct {
	Gate  Gate
	Codec Codec
	Saver Saver
}

// Result describes what a command or gesture did.
type Result struct {
	Changed  bool                           `json:"changed"`
	Text     string                         `json:"text,omitempty"`
	Added    int                            `json:"added,omitempty"`
	Skipped  int                            `json:"skipped,omitempty"`
	Warnings []banktags.UnresolvedIDWarning `json:"warnings,omitempty"`
}

// Editor applies commands and gestures to the current layout. It holds the
// layout by reference: changes are visible to whoever owns it.
//
// An Editor is not safe for concurrent use.
type Editor struct {
	layout    *grid.Layout
	selection Selection
	gate      Gate
	codec     Codec
	saver     Saver
}

// New returns an editor with no layout.
func New(opts Options) *Editor {
	return &Editor{gate: opts.Gate, codec: opts.Codec, saver: opts.Saver}
}

// Layout returns the current layout.
func (e *Editor) Layout() *grid.Layout { return e.layout }

// SetLayout switches to l and clears the selection.
func (e *Editor) SetLayout(l *grid.Layout) {
	e.layout = l
	e.selection = None()
}

// Rebuild clears the selection after the layout was replaced or redrawn
// from outside.
func (e *Editor) Rebuild() { e.selection = None() }

// Selection returns the pending selection.
func (e *Editor) Selection() Selection { return e.selection }

// Restore replaces the selection. The HTTP server keeps one selection per
// session and restores it before applying a gesture.
func (e *Editor) Restore(s Selection) { e.selection = s }

// Ready reports whether the catalog gate is open.
func (e *Editor) Ready() bool { return e.gate == nil || e.gate.Ready() }

// Dispatch runs cmd against the current layout and saves on change. A
// rejected command leaves the layout and selection as they were; so does a
// change whose save fails, which is rolled back before the error returns.
func (e *Editor) Dispatch(ctx context.Context, cmd Command) (res Result, err error) {
	start := time.Now()
	defer func() {
		observability.Editor().OnCommand(ctx, cmd.Name(), time.Since(start), err)
	}()

	if e.layout == nil {
		return Result{}, errors.New(errors.ErrCodeLayoutNotFound, "no layout selected")
	}
	if cmd.needsCatalog() && !e.Ready() {
		return Result{}, errors.New(errors.ErrCodeCatalogPending, "item catalog is still loading; %s rejected", cmd.Name())
	}

	var before *grid.Layout
	if e.saver != nil {
		before = e.layout.Clone()
	}
	res, err = cmd.apply(e)
	if err != nil {
		return Result{}, err
	}
	if !res.Changed {
		return res, nil
	}
	if e.saver != nil {
		if err := e.saver.Save(ctx); err != nil {
			*e.layout = *before
			return Result{}, errors.Wrap(errors.ErrCodeStorage, err, "save after %s", cmd.Name())
		}
	}
	e.selection = None()
	return res, nil
}

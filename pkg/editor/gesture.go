package editor

import (
	"context"

	"github.com/matzehuels/banktags/pkg/errors"
	"github.com/matzehuels/banktags/pkg/grid"
)

func (e *Editor) pending() error {
	if !e.Ready() {
		return errors.New(errors.ErrCodeCatalogPending, "item catalog is still loading")
	}
	return nil
}

// SelectPalette arms a palette item for placement.
func (e *Editor) SelectPalette(itemID int) error {
	if err := e.pending(); err != nil {
		return err
	}
	e.selection = Palette(itemID)
	return nil
}

// Cancel drops the selection.
func (e *Editor) Cancel() { e.selection = None() }

// ClickCell advances the selection state machine for a click on pos.
func (e *Editor) ClickCell(ctx context.Context, pos grid.Pos) (Result, error) {
	if e.layout == nil {
		return Result{}, errors.New(errors.ErrCodeLayoutNotFound, "no layout selected")
	}
	occupant, occupied := e.layout.At(pos)

	switch sel := e.selection; sel.Kind {
	case PaletteSelected:
		res, err := e.Dispatch(ctx, Place{Pos: pos, ItemID: sel.ItemID, Quantity: 1})
		if err != nil {
			return res, err
		}
		e.selection = None()
		return res, nil

	case PlacedSelected:
		if occupied {
			e.selection = Placed(pos, occupant.ItemID)
			return Result{}, nil
		}
		res, err := e.Dispatch(ctx, Move{From: sel.Pos, To: pos})
		if err != nil {
			return res, err
		}
		e.selection = None()
		return res, nil

	default:
		if occupied {
			e.selection = Placed(pos, occupant.ItemID)
		}
		return Result{}, nil
	}
}

// DoubleClickCell removes the item at pos.
func (e *Editor) DoubleClickCell(ctx context.Context, pos grid.Pos) (Result, error) {
	if e.layout == nil {
		return Result{}, errors.New(errors.ErrCodeLayoutNotFound, "no layout selected")
	}
	if !e.layout.Occupied(pos) {
		return Result{}, nil
	}
	res, err := e.Dispatch(ctx, Remove{Pos: pos})
	if err == nil {
		e.selection = None()
	}
	return res, err
}

// DoubleClickPalette places itemID on the first empty cell in row-major
// order. A full layout is left alone.
func (e *Editor) DoubleClickPalette(ctx context.Context, itemID int) (Result, error) {
	if e.layout == nil {
		return Result{}, errors.New(errors.ErrCodeLayoutNotFound, "no layout selected")
	}
	if err := e.pending(); err != nil {
		return Result{}, err
	}
	pos, ok := e.layout.FirstEmpty()
	if !ok {
		return Result{}, nil
	}
	res, err := e.Dispatch(ctx, Place{Pos: pos, ItemID: itemID, Quantity: 1})
	if err == nil {
		e.selection = None()
	}
	return res, err
}

// DragPlaced moves the item at from onto to, swapping with any occupant.
// It does not need a prior selection and clears any that exists.
func (e *Editor) DragPlaced(ctx context.Context, from, to grid.Pos) (Result, error) {
	res, err := e.Dispatch(ctx, Move{From: from, To: to})
	if err == nil {
		e.selection = None()
	}
	return res, err
}

// DragPalette places itemID on to, replacing any occupant.
func (e *Editor) DragPalette(ctx context.Context, itemID int, to grid.Pos) (Result, error) {
	res, err := e.Dispatch(ctx, Place{Pos: to, ItemID: itemID, Quantity: 1})
	if err == nil {
		e.selection = None()
	}
	return res, err
}

// Gesture kinds accepted by [Editor.Apply].
const (
	GestureSelectPalette      = "select-palette"
	GestureClick              = "click"
	GestureDoubleClick        = "double-click"
	GestureDoubleClickPalette = "double-click-palette"
	GestureDragPlaced         = "drag-placed"
	GestureDragPalette        = "drag-palette"
	GestureCancel             = "cancel"
)

// Gesture is a serialisable user gesture. Pos is the target cell; From is
// only used by drag-placed and ItemID by palette gestures.
type Gesture struct {
	Type   string   `json:"type"`
	ItemID int      `json:"itemId,omitempty"`
	Pos    grid.Pos `json:"pos"`
	From   grid.Pos `json:"from"`
}

// Apply runs g through the matching gesture method.
func (e *Editor) Apply(ctx context.Context, g Gesture) (Result, error) {
	switch g.Type {
	case GestureSelectPalette:
		return Result{}, e.SelectPalette(g.ItemID)
	case GestureClick:
		return e.ClickCell(ctx, g.Pos)
	case GestureDoubleClick:
		return e.DoubleClickCell(ctx, g.Pos)
	case GestureDoubleClickPalette:
		return e.DoubleClickPalette(ctx, g.ItemID)
	case GestureDragPlaced:
		return e.DragPlaced(ctx, g.From, g.Pos)
	case GestureDragPalette:
		return e.DragPalette(ctx, g.ItemID, g.Pos)
	case GestureCancel:
		e.Cancel()
		return Result{}, nil
	default:
		return Result{}, errors.New(errors.ErrCodeInvalidInput, "unknown gesture %q", g.Type)
	}
}

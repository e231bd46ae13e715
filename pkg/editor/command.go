package editor

import (
	"fmt"

	"github.com/matzehuels/banktags/pkg/banktags"
	"github.com/matzehuels/banktags/pkg/errors"
	"github.com/matzehuels/banktags/pkg/grid"
)

// Command is one of the editor commands. The set is closed.
type Command interface {
	// Name is the command's lower-case name, used for logging and the
	// HTTP API.
	Name() string

	needsCatalog() bool
	apply(e *Editor) (Result, error)
}

// Place puts an item from the palette on a cell, replacing any occupant.
// Out-of-bounds cells are ignored.
type Place struct {
	Pos      grid.Pos
	ItemID   int
	Quantity int
}

// Move relocates or swaps the item at From.
type Move struct{ From, To grid.Pos }

// Remove deletes the item at Pos.
type Remove struct{ Pos grid.Pos }

// InsertRow adds an empty row below Row.
type InsertRow struct{ Row int }

// DeleteRow deletes Row and its items.
type DeleteRow struct{ Row int }

// Clear empties the layout.
type Clear struct{}

// Import merges the items of a Banktags string into the layout.
type Import struct{ Text string }

// Export renders the layout as a Banktags string.
type Export struct{}

func (Place) Name() string     { return "place" }
func (Move) Name() string      { return "move" }
func (Remove) Name() string    { return "remove" }
func (InsertRow) Name() string { return "insert-row" }
func (DeleteRow) Name() string { return "delete-row" }
func (Clear) Name() string     { return "clear" }
func (Import) Name() string    { return "import" }
func (Export) Name() string    { return "export" }

func (Place) needsCatalog() bool     { return true }
func (Move) needsCatalog() bool      { return false }
func (Remove) needsCatalog() bool    { return false }
func (InsertRow) needsCatalog() bool { return false }
func (DeleteRow) needsCatalog() bool { return false }
func (Clear) needsCatalog() bool     { return false }
func (Import) needsCatalog() bool    { return true }
func (Export) needsCatalog() bool    { return false }

func (c Place) apply(e *Editor) (Result, error) {
	return Result{Changed: e.layout.Place(c.Pos.X, c.Pos.Y, c.ItemID, max(c.Quantity, 1))}, nil
}

func (c Move) apply(e *Editor) (Result, error) {
	return Result{Changed: e.layout.Move(c.From, c.To)}, nil
}

func (c Remove) apply(e *Editor) (Result, error) {
	return Result{Changed: e.layout.Remove(c.Pos)}, nil
}

func (c InsertRow) apply(e *Editor) (Result, error) {
	if err := e.checkRow(c.Row); err != nil {
		return Result{}, err
	}
	e.layout.InsertRowBelow(c.Row)
	return Result{Changed: true}, nil
}

func (c DeleteRow) apply(e *Editor) (Result, error) {
	if err := e.checkRow(c.Row); err != nil {
		return Result{}, err
	}
	e.layout.DeleteRow(c.Row)
	return Result{Changed: true}, nil
}

func (Clear) apply(e *Editor) (Result, error) {
	e.layout.Clear()
	return Result{Changed: true}, nil
}

func (c Import) apply(e *Editor) (Result, error) {
	tag, err := banktags.Decode(c.Text, e.codec)
	if err != nil {
		return Result{}, err
	}
	items, skipped := tag.ToPlaced()
	added := e.layout.Merge(items)
	return Result{
		Changed:  added > 0,
		Added:    added,
		Skipped:  skipped,
		Warnings: tag.Warnings,
		Text:     fmt.Sprintf("imported %d items from %q", added, tag.Name),
	}, nil
}

func (Export) apply(e *Editor) (Result, error) {
	return Result{Text: banktags.Encode(e.layout, e.codec)}, nil
}

func (e *Editor) checkRow(row int) error {
	if row < 0 || row >= e.layout.Height {
		return errors.New(errors.ErrCodeInvalidInput, "row %d outside 0..%d", row, e.layout.Height-1)
	}
	return nil
}

// Request is the wire form of a command, as sent to the HTTP API.
type Request struct {
	Command  string   `json:"command"`
	Pos      grid.Pos `json:"pos"`
	From     grid.Pos `json:"from"`
	ItemID   int      `json:"itemId,omitempty"`
	Quantity int      `json:"quantity,omitempty"`
	Row      int      `json:"row,omitempty"`
	Text     string   `json:"text,omitempty"`
}

// Build converts the request to a [Command]. Move reads From and Pos.
func (r Request) Build() (Command, error) {
	switch r.Command {
	case Place{}.Name():
		return Place{Pos: r.Pos, ItemID: r.ItemID, Quantity: r.Quantity}, nil
	case Move{}.Name():
		return Move{From: r.From, To: r.Pos}, nil
	case Remove{}.Name():
		return Remove{Pos: r.Pos}, nil
	case InsertRow{}.Name():
		return InsertRow{Row: r.Row}, nil
	case DeleteRow{}.Name():
		return DeleteRow{Row: r.Row}, nil
	case Clear{}.Name():
		return Clear{}, nil
	case Import{}.Name():
		return Import{Text: r.Text}, nil
	case Export{}.Name():
		return Export{}, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown command %q", r.Command)
	}
}

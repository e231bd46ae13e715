package editor

import (
	"fmt"

	"github.com/matzehuels/banktags/pkg/grid"
)

// SelectionKind tags a [Selection].
type SelectionKind int

const (
	// Idle means nothing is selected.
	Idle SelectionKind = iota
	// PaletteSelected means a palette item waits for a target cell.
	PaletteSelected
	// PlacedSelected means a placed item waits for a move target.
	PlacedSelected
)

func (k SelectionKind) String() string {
	switch k {
	case PaletteSelected:
		return "palette"
	case PlacedSelected:
		return "placed"
	default:
		return "none"
	}
}

// Selection is the editor's pending action. Pos is only meaningful for
// PlacedSelected.
type Selection struct {
	Kind   SelectionKind `json:"kind"`
	ItemID int           `json:"itemId"`
	Pos    grid.Pos      `json:"pos"`
}

// None is the empty selection.
func None() Selection { return Selection{} }

// Palette selects a palette item.
func Palette(itemID int) Selection {
	return Selection{Kind: PaletteSelected, ItemID: itemID}
}

// Placed selects the item at pos.
func Placed(pos grid.Pos, itemID int) Selection {
	return Selection{Kind: PlacedSelected, ItemID: itemID, Pos: pos}
}

// IsNone reports whether nothing is selected.
func (s Selection) IsNone() bool { return s.Kind == Idle }

func (s Selection) String() string {
	switch s.Kind {
	case PaletteSelected:
		return fmt.Sprintf("palette item %d", s.ItemID)
	case PlacedSelected:
		return fmt.Sprintf("item %d at %s", s.ItemID, s.Pos)
	default:
		return "none"
	}
}

// MarshalText renders the kind for JSON.
func (k SelectionKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText parses a kind written by MarshalText.
func (k *SelectionKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "none", "":
		*k = Idle
	case "palette":
		*k = PaletteSelected
	case "placed":
		*k = PlacedSelected
	default:
		return fmt.Errorf("unknown selection kind %q", b)
	}
	return nil
}

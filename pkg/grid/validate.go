package grid

import (
	"fmt"
	"slices"

	"github.com/matzehuels/banktags/pkg/errors"
)

// Validate performs basic shape checks on a layout that came from outside
// the editor (persisted blob, collection import, HTTP body).
func (l *Layout) Validate() error {
	if l.Width != Columns {
		return errors.New(errors.ErrCodeInvalidInput, "layout %d: width %d, want %d", l.ID, l.Width, Columns)
	}
	if l.Height < MinHeight {
		return errors.New(errors.ErrCodeInvalidInput, "layout %d: height %d below minimum %d", l.ID, l.Height, MinHeight)
	}
	if l.Height > MaxHeight {
		return errors.New(errors.ErrCodeInvalidInput, "layout %d: height %d above maximum %d", l.ID, l.Height, MaxHeight)
	}
	seen := make(map[Pos]int, len(l.Items))
	for i, it := range l.Items {
		p := it.Pos()
		if !l.InBounds(p) {
			return errors.New(errors.ErrCodeInvalidInput, "layout %d: item %d at %s out of bounds", l.ID, i, p)
		}
		if it.Quantity < 1 {
			return errors.New(errors.ErrCodeInvalidInput, "layout %d: item %d has quantity %d", l.ID, i, it.Quantity)
		}
		if j, dup := seen[p]; dup {
			return errors.New(errors.ErrCodeInvalidInput, "layout %d: items %d and %d share cell %s", l.ID, j, i, p)
		}
		seen[p] = i
	}
	return nil
}

// Normalize repairs the fields older persisted layouts leave unset: width,
// minimum height, zero quantities and a missing thumbnail image. Items that
// can never be on the grid are dropped and the height is capped at MaxHeight.
func (l *Layout) Normalize() {
	if l.Items == nil {
		l.Items = []PlacedItem{}
	}
	l.Items = slices.DeleteFunc(l.Items, func(it PlacedItem) bool {
		return it.X < 0 || it.X >= Columns || it.Y < 0 || it.Y >= MaxHeight
	})
	l.Height = min(l.Height, MaxHeight)
	for i := range l.Items {
		l.Items[i].Quantity = max(l.Items[i].Quantity, 1)
	}
	if l.ThumbnailImage == "" {
		l.ThumbnailImage = DefaultThumbnailImage
	}
	l.Fit()
}

func (p Pos) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

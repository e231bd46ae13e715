// Package grid models bank layouts: a fixed-width grid of cells, each holding
// at most one placed item.
//
// # Coordinates
//
// A layout is [Columns] cells wide and between [MinHeight] and [MaxHeight]
// rows tall. Cells
// are addressed by [Pos] (x is the column, y the row) or by a row-major cell
// index y*Columns+x, which is what the Banktags text format uses.
//
// # Invariant
//
// No two items in a layout share a cell. Every mutator in this package
// ([Layout.Place], [Layout.Move], [Layout.Remove], [Layout.InsertRowBelow],
// [Layout.DeleteRow], [Layout.Clear], [Layout.Merge]) preserves it, and
// [Layout.Validate] checks it for layouts loaded from elsewhere.
//
// # Projection
//
// The item list is the single source of truth for positions. Renderers call
// [Layout.Cells] to get a row-major matrix view and never write back into it.
package grid

import (
	"cmp"
	"slices"
)

const (
	// Columns is the fixed grid width.
	Columns = 8

	// MinHeight is the smallest number of rows a layout may have.
	MinHeight = 8

	// MaxHeight is the largest number of rows a layout may have. It leaves
	// room for a full bank with plenty of gaps.
	MaxHeight = 256

	// MaxCells is the number of cells in a layout of MaxHeight rows.
	MaxCells = Columns * MaxHeight

	// DefaultThumbnailImage is the thumbnail shown for layouts without one.
	DefaultThumbnailImage = "Bank_filler.png"
)

// Pos is a grid coordinate.
type Pos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// CellIndex returns the row-major index of p.
func (p Pos) CellIndex() int { return CellIndex(p.X, p.Y) }

// CellIndex returns the row-major index of (x, y).
func CellIndex(x, y int) int { return y*Columns + x }

// PosFromCell converts a row-major cell index back to a position.
func PosFromCell(i int) Pos { return Pos{X: i % Columns, Y: i / Columns} }

// PlacedItem is an item occupying one cell of a layout.
type PlacedItem struct {
	X        int `json:"x" yaml:"x"`
	Y        int `json:"y" yaml:"y"`
	ItemID   int `json:"id" yaml:"id"`
	Quantity int `json:"quantity" yaml:"quantity"`
}

// Pos returns the item's coordinate.
func (p PlacedItem) Pos() Pos { return Pos{X: p.X, Y: p.Y} }

// Layout is one saved grid arrangement.
type Layout struct {
	ID             int          `json:"id" yaml:"id"`
	Title          string       `json:"title" yaml:"title"`
	Author         string       `json:"author,omitempty" yaml:"author,omitempty"`
	Tags           []string     `json:"tags,omitempty" yaml:"tags,omitempty"`
	Width          int          `json:"width" yaml:"width"`
	Height         int          `json:"height" yaml:"height"`
	Items          []PlacedItem `json:"items" yaml:"items"`
	ThumbnailID    *int         `json:"thumbnailId,omitempty" yaml:"thumbnailId,omitempty"`
	ThumbnailImage string       `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
}

// New returns an empty layout with the minimum size and default thumbnail.
func New(id int, title string) *Layout {
	return &Layout{
		ID:             id,
		Title:          title,
		Width:          Columns,
		Height:         MinHeight,
		Items:          []PlacedItem{},
		ThumbnailImage: DefaultThumbnailImage,
	}
}

// InBounds reports whether p is inside the layout's current bounds.
func (l *Layout) InBounds(p Pos) bool {
	return p.X >= 0 && p.X < Columns && p.Y >= 0 && p.Y < l.Height
}

// At returns the item at p.
func (l *Layout) At(p Pos) (PlacedItem, bool) {
	if i := l.indexAt(p); i >= 0 {
		return l.Items[i], true
	}
	return PlacedItem{}, false
}

// Occupied reports whether an item sits at p.
func (l *Layout) Occupied(p Pos) bool { return l.indexAt(p) >= 0 }

func (l *Layout) indexAt(p Pos) int {
	for i, it := range l.Items {
		if it.X == p.X && it.Y == p.Y {
			return i
		}
	}
	return -1
}

// FirstEmpty returns the first unoccupied cell in row-major order.
func (l *Layout) FirstEmpty() (Pos, bool) {
	taken := make(map[Pos]bool, len(l.Items))
	for _, it := range l.Items {
		taken[it.Pos()] = true
	}
	for y := 0; y < l.Height; y++ {
		for x := 0; x < Columns; x++ {
			if p := (Pos{X: x, Y: y}); !taken[p] {
				return p, true
			}
		}
	}
	return Pos{}, false
}

// Place puts an item at (x, y), replacing any occupant. Positions outside
// the current bounds are ignored and Place returns false. Quantities below
// one are stored as one.
func (l *Layout) Place(x, y, itemID, quantity int) bool {
	p := Pos{X: x, Y: y}
	if !l.InBounds(p) {
		return false
	}
	l.Remove(p)
	l.Items = append(l.Items, PlacedItem{X: x, Y: y, ItemID: itemID, Quantity: max(quantity, 1)})
	return true
}

// Move relocates the item at from to to. When to is occupied the two items
// swap coordinates. Move is a no-op (returning false) when from is empty, to
// is out of bounds, or from equals to.
func (l *Layout) Move(from, to Pos) bool {
	src := l.indexAt(from)
	if src < 0 || !l.InBounds(to) || from == to {
		return false
	}
	if dst := l.indexAt(to); dst >= 0 {
		l.Items[dst].X, l.Items[dst].Y = from.X, from.Y
	}
	l.Items[src].X, l.Items[src].Y = to.X, to.Y
	return true
}

// Remove deletes the item at p, if any.
func (l *Layout) Remove(p Pos) bool {
	i := l.indexAt(p)
	if i < 0 {
		return false
	}
	l.Items = slices.Delete(l.Items, i, i+1)
	return true
}

// InsertRowBelow grows the layout by one row directly below row. Items on
// rows after row move down by one; items are visited from the highest
// (y, x) to the lowest so none is shifted twice. An item that would land
// outside the new height is dropped. At MaxHeight the height stays put and
// the last row falls off instead.
func (l *Layout) InsertRowBelow(row int) {
	if l.Height < MaxHeight {
		l.Height++
	}

	order := make([]int, len(l.Items))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		ia, ib := l.Items[a], l.Items[b]
		return cmp.Or(cmp.Compare(ib.Y, ia.Y), cmp.Compare(ib.X, ia.X))
	})
	for _, i := range order {
		if l.Items[i].Y >= row+1 {
			l.Items[i].Y++
		}
	}

	l.Items = slices.DeleteFunc(l.Items, func(it PlacedItem) bool {
		return it.Y >= l.Height
	})
}

// DeleteRow removes row and everything on it, pulling later rows up by one.
// The height shrinks by one but never below MinHeight; items outside the
// resulting bounds are dropped.
func (l *Layout) DeleteRow(row int) {
	kept := l.Items[:0]
	for _, it := range l.Items {
		switch {
		case it.Y == row:
			continue
		case it.Y > row:
			it.Y--
		}
		kept = append(kept, it)
	}
	l.Items = kept
	l.Height = max(l.Height-1, MinHeight)

	l.Items = slices.DeleteFunc(l.Items, func(it PlacedItem) bool {
		return it.Y < 0 || it.Y >= l.Height
	})
}

// Clear removes every item and resets height and thumbnail.
func (l *Layout) Clear() {
	l.Items = []PlacedItem{}
	l.Height = MinHeight
	l.ThumbnailID = nil
	l.ThumbnailImage = DefaultThumbnailImage
}

// SetThumbnail records the item used as the layout's icon.
func (l *Layout) SetThumbnail(itemID int, imagePath string) {
	l.ThumbnailID = &itemID
	l.ThumbnailImage = imagePath
}

// Fit grows the height so every item's row is inside the layout, up to
// MaxHeight.
func (l *Layout) Fit() {
	l.Width = Columns
	h := max(l.Height, MinHeight)
	for _, it := range l.Items {
		h = max(h, it.Y+1)
	}
	l.Height = min(h, MaxHeight)
}

// MaxRow returns the highest occupied row, or -1 for an empty layout.
func (l *Layout) MaxRow() int {
	r := -1
	for _, it := range l.Items {
		r = max(r, it.Y)
	}
	return r
}

// Merge adds items to the layout without removing existing ones. An incoming
// item whose cell is already taken goes to the next free cell in row-major
// order, growing the layout by a row when it is full. Items with negative
// coordinates, a column outside the grid or a row at or past MaxHeight are
// skipped, as are collisions once a MaxHeight layout is full. Merge returns
// the number of items added.
func (l *Layout) Merge(items []PlacedItem) int {
	added := 0
	for _, it := range items {
		if it.X < 0 || it.X >= Columns || it.Y < 0 || it.Y >= MaxHeight {
			continue
		}
		if it.Y >= l.Height {
			l.Height = it.Y + 1
		}
		p := it.Pos()
		if l.Occupied(p) {
			free, ok := l.FirstEmpty()
			if !ok {
				if l.Height >= MaxHeight {
					continue
				}
				l.Height++
				free, _ = l.FirstEmpty()
			}
			p = free
		}
		l.Items = append(l.Items, PlacedItem{X: p.X, Y: p.Y, ItemID: it.ItemID, Quantity: max(it.Quantity, 1)})
		added++
	}
	return added
}

// Cells returns a Height x Columns matrix view of the layout. Empty cells
// are nil. The matrix is a copy; writing to it does not change the layout.
func (l *Layout) Cells() [][]*PlacedItem {
	rows := make([][]*PlacedItem, l.Height)
	for y := range rows {
		rows[y] = make([]*PlacedItem, Columns)
	}
	for _, it := range l.Items {
		if it.Y >= 0 && it.Y < l.Height && it.X >= 0 && it.X < Columns {
			cp := it
			rows[it.Y][it.X] = &cp
		}
	}
	return rows
}

// Sorted returns the items ordered by cell index.
func (l *Layout) Sorted() []PlacedItem {
	out := slices.Clone(l.Items)
	slices.SortStableFunc(out, func(a, b PlacedItem) int {
		return cmp.Compare(a.Pos().CellIndex(), b.Pos().CellIndex())
	})
	return out
}

// Clone returns a deep copy of the layout.
func (l *Layout) Clone() *Layout {
	cp := *l
	cp.Items = slices.Clone(l.Items)
	cp.Tags = slices.Clone(l.Tags)
	if l.ThumbnailID != nil {
		id := *l.ThumbnailID
		cp.ThumbnailID = &id
	}
	return &cp
}

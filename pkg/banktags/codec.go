package banktags

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/banktags/pkg/catalog"
	"github.com/matzehuels/banktags/pkg/errors"
	"github.com/matzehuels/banktags/pkg/grid"
)

const (
	// Header is the first field of every Banktags string.
	Header = "banktags"

	// Version is the format version written by [Encode].
	Version = "1"

	// LayoutToken separates the header fields from the cell pairs.
	LayoutToken = "layout"

	// DefaultIconExternalID is the bank filler, used as the icon of layouts
	// without a thumbnail.
	DefaultIconExternalID = "20594"

	minFields  = 7
	nameField  = 2
	iconField  = 3
	tokenStart = 4
)

// Shape describes a well-formed Banktags string for error messages.
const Shape = "banktags,1,<name>,<iconExternalId>,layout,<cell>,<externalId>[,<cell>,<externalId>...]"

// Resolver maps an external id to an internal one.
type Resolver interface {
	Resolve(externalID string) catalog.Resolution
}

// ForwardMapper maps an internal id to its external id.
type ForwardMapper interface {
	ExternalID(internalID int) (string, bool)
}

// Item is one decoded cell.
type Item struct {
	X        int
	Y        int
	ItemID   int
	Quantity int

	// Opaque holds the raw external id when it was neither known to the
	// catalog nor numeric. ItemID is meaningless in that case.
	Opaque string
}

// Tag is a decoded Banktags string.
type Tag struct {
	Name           string
	IconExternalID string
	Items          []Item
	Warnings       []UnresolvedIDWarning
}

// UnresolvedIDWarning reports an external id the catalog did not know.
// Fallback is "numeric" or "opaque".
type UnresolvedIDWarning struct {
	Cell       int    `json:"cell"`
	ExternalID string `json:"externalId"`
	Fallback   string `json:"fallback"`
}

func (w UnresolvedIDWarning) String() string {
	return fmt.Sprintf("cell %d: unknown item id %q (kept as %s)", w.Cell, w.ExternalID, w.Fallback)
}

// Decode parses the first non-empty line of text. A nil r resolves against
// an empty catalog, so every id takes the numeric or opaque fallback. Pairs
// whose cell is not an integer in [0, grid.MaxCells) are skipped.
func Decode(text string, r Resolver) (*Tag, error) {
	line, ok := firstLine(text)
	if !ok {
		return nil, errors.New(errors.ErrCodeEmptyInput, "no banktags text supplied")
	}

	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if !strings.EqualFold(fields[0], Header) {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "input does not start with %q", Header)
	}
	if len(fields) < minFields {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "expected at least %d fields, got %d; format is %s", minFields, len(fields), Shape)
	}

	token := -1
	for i := tokenStart; i < len(fields); i++ {
		if fields[i] == LayoutToken {
			token = i
			break
		}
	}
	if token < 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "missing %q token; format is %s", LayoutToken, Shape)
	}

	if r == nil {
		r = catalog.DefaultChain(catalog.Empty())
	}
	tag := &Tag{
		Name:           fields[nameField],
		IconExternalID: fields[iconField],
		Items:          []Item{},
	}
	for i := token + 1; i+1 < len(fields); i += 2 {
		cell, err := strconv.Atoi(fields[i])
		ext := fields[i+1]
		if err != nil || cell < 0 || cell >= grid.MaxCells || ext == "" {
			continue
		}
		res := r.Resolve(ext)
		p := grid.PosFromCell(cell)
		it := Item{X: p.X, Y: p.Y, ItemID: res.ItemID, Quantity: 1}
		if !res.Resolved {
			fallback := catalog.ViaNumeric
			if res.Opaque() {
				fallback = catalog.ViaOpaque
				it.ItemID = 0
				it.Opaque = ext
			}
			tag.Warnings = append(tag.Warnings, UnresolvedIDWarning{Cell: cell, ExternalID: ext, Fallback: fallback})
		}
		tag.Items = append(tag.Items, it)
	}
	return tag, nil
}

func firstLine(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line, true
		}
	}
	return "", false
}

// ToPlaced converts the decoded items to grid items. Opaque items have no
// internal id and are left out; skipped reports how many.
func (t *Tag) ToPlaced() (items []grid.PlacedItem, skipped int) {
	items = make([]grid.PlacedItem, 0, len(t.Items))
	for _, it := range t.Items {
		if it.Opaque != "" {
			skipped++
			continue
		}
		items = append(items, grid.PlacedItem{X: it.X, Y: it.Y, ItemID: it.ItemID, Quantity: max(it.Quantity, 1)})
	}
	return items, skipped
}

var nameReplacer = strings.NewReplacer(",", " ", "\r", " ", "\n", " ")

// Encode writes l as a single Banktags line. Ids the mapper does not know
// are written as the internal id. A nil m writes internal ids throughout.
func Encode(l *grid.Layout, m ForwardMapper) string {
	ext := func(id int) string {
		if m != nil {
			if s, ok := m.ExternalID(id); ok {
				return s
			}
		}
		return strconv.Itoa(id)
	}

	icon := DefaultIconExternalID
	if l.ThumbnailID != nil {
		icon = ext(*l.ThumbnailID)
	}

	var b strings.Builder
	b.WriteString(Header + "," + Version + ",")
	b.WriteString(nameReplacer.Replace(l.Title))
	b.WriteString("," + icon + "," + LayoutToken)
	for _, it := range l.Sorted() {
		b.WriteString(",")
		b.WriteString(strconv.Itoa(it.Pos().CellIndex()))
		b.WriteString(",")
		b.WriteString(ext(it.ItemID))
	}
	return b.String()
}

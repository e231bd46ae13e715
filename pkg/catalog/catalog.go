// Package catalog loads item definitions and translates between the external
// ids used by the game and the internal ids the grid stores.
//
// # Ids
//
// An item's internal id is its index in the loaded record list. Its external
// id is the game's item id as published by the catalog source. Some items
// also have a placeholder id, a second external id that refers to the same
// item; the Banktags format may carry either.
//
// # Lookups
//
// [Catalog] builds three tables on construction: the index (internal id ->
// definition), the reverse map (external id -> internal id) and the
// placeholder map (placeholder id -> internal id). Lookups return ok=false
// for unknown ids and never panic, so callers can always fall back.
//
// # Resolution
//
// [Chain] turns an external id into a [Resolution] by trying an ordered list
// of [Step]s. [DefaultChain] is reverse map, then placeholder map, then the
// raw id parsed as a number, then the raw id kept as an opaque string.
//
// # Loading
//
// [Loader] fetches records from a [Source] once and gates callers until the
// load finishes. A failed load leaves an empty catalog in place so lookups
// degrade to the numeric and opaque fallbacks.
package catalog

import (
	"strconv"
	"strings"
)

// Record is one entry of the external item list.
type Record struct {
	ID        FlexID `json:"id"`
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	ImagePath string `json:"imagepath"`
}

// Placeholder maps a placeholder external id to the real item's external id.
type Placeholder struct {
	PlaceholderID FlexID `json:"placeholderId"`
	ID            FlexID `json:"id"`
}

// ItemDefinition is an item as seen by the editor.
type ItemDefinition struct {
	InternalID    int    `json:"internalId"`
	ExternalID    string `json:"externalId"`
	Name          string `json:"name"`
	ImagePath     string `json:"imagePath"`
	PlaceholderID string `json:"placeholderId,omitempty"`
}

// Catalog is an immutable set of item definitions with lookup tables.
// It is safe for concurrent reads.
type Catalog struct {
	items         []ItemDefinition
	byExternal    map[string]int
	byPlaceholder map[string]int
}

// New builds a catalog from records and placeholder pairs. Every record
// keeps its slot, so an item's internal id is its index in records. A record
// without an external id is a hole: it has no definition and lookups by its
// internal id miss. A duplicated external id gets its own definition, but the
// reverse map keeps pointing at the first. Placeholder pairs pointing at
// unknown items are ignored.
func New(records []Record, placeholders []Placeholder) *Catalog {
	c := &Catalog{
		items:         make([]ItemDefinition, len(records)),
		byExternal:    make(map[string]int, len(records)),
		byPlaceholder: make(map[string]int, len(placeholders)),
	}
	for id, r := range records {
		ext := r.ID.String()
		if ext == "" {
			c.items[id] = ItemDefinition{InternalID: id}
			continue
		}
		c.items[id] = ItemDefinition{
			InternalID: id,
			ExternalID: ext,
			Name:       r.Name,
			ImagePath:  r.ImagePath,
		}
		if _, dup := c.byExternal[ext]; !dup {
			c.byExternal[ext] = id
		}
	}
	for _, p := range placeholders {
		ph, target := p.PlaceholderID.String(), p.ID.String()
		id, ok := c.byExternal[target]
		if ph == "" || !ok {
			continue
		}
		c.byPlaceholder[ph] = id
		if c.items[id].PlaceholderID == "" {
			c.items[id].PlaceholderID = ph
		}
	}
	return c
}

// Empty returns a catalog with no items.
func Empty() *Catalog { return New(nil, nil) }

// Len returns the number of slots, holes included.
func (c *Catalog) Len() int { return len(c.items) }

// Items returns the definitions in internal id order, holes left out.
func (c *Catalog) Items() []ItemDefinition {
	out := make([]ItemDefinition, 0, len(c.items))
	for _, def := range c.items {
		if def.ExternalID != "" {
			out = append(out, def)
		}
	}
	return out
}

// ByInternal looks up an item by internal id. Holes miss.
func (c *Catalog) ByInternal(id int) (ItemDefinition, bool) {
	if id < 0 || id >= len(c.items) || c.items[id].ExternalID == "" {
		return ItemDefinition{}, false
	}
	return c.items[id], true
}

// ByExternal looks up an item by external id.
func (c *Catalog) ByExternal(ext string) (ItemDefinition, bool) {
	id, ok := c.byExternal[strings.TrimSpace(ext)]
	if !ok {
		return ItemDefinition{}, false
	}
	return c.items[id], true
}

// ByPlaceholder looks up an item by placeholder id.
func (c *Catalog) ByPlaceholder(ph string) (ItemDefinition, bool) {
	id, ok := c.byPlaceholder[strings.TrimSpace(ph)]
	if !ok {
		return ItemDefinition{}, false
	}
	return c.items[id], true
}

// ExternalID is the forward map: internal id to external id.
func (c *Catalog) ExternalID(internalID int) (string, bool) {
	def, ok := c.ByInternal(internalID)
	if !ok {
		return "", false
	}
	return def.ExternalID, true
}

// Name returns the item's display name, or its id when unknown.
func (c *Catalog) Name(internalID int) string {
	if def, ok := c.ByInternal(internalID); ok {
		return def.Name
	}
	return "#" + strconv.Itoa(internalID)
}

// Search returns up to limit items whose name contains query, ignoring case.
// An empty query matches everything. limit <= 0 means no limit.
func (c *Catalog) Search(query string, limit int) []ItemDefinition {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []ItemDefinition
	for _, def := range c.items {
		if def.ExternalID == "" {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(def.Name), q) {
			continue
		}
		out = append(out, def)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

package store

import (
	"context"
	"encoding/json"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/banktags/pkg/errors"
	"github.com/matzehuels/banktags/pkg/grid"
	"github.com/matzehuels/banktags/pkg/observability"
)

// Origins reported by [Collection.Origin].
const (
	OriginPersisted = "persisted"
	OriginRemote    = "remote"
	OriginDefault   = "default"
)

// DefaultTitle is the title of the synthetic layout.
const DefaultTitle = "New layout"

// Collection is the ordered set of layouts plus the current selection.
//
// A Collection is not safe for concurrent use; callers serialise access.
type Collection struct {
	backend Backend
	remote  RemoteSource
	key     string

	layouts []*grid.Layout
	current int
	origin  string
}

// NewCollection returns an empty collection over backend. remote may be nil.
func NewCollection(backend Backend, remote RemoteSource) *Collection {
	return &Collection{backend: backend, remote: remote, key: Key}
}

func (c *Collection) currentKey() string { return c.key + ":current" }

// Load fills the collection from the backend, the remote default set, or a
// single synthetic layout, in that order. A backend read error or a corrupt
// blob is returned rather than masked so a later save cannot overwrite data
// that failed to load.
func (c *Collection) Load(ctx context.Context) (err error) {
	defer func() {
		observability.Store().OnLoad(ctx, backendName(c.backend), c.origin, len(c.layouts), err)
	}()

	data, ok, err := c.backend.Load(ctx, c.key)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "load layouts")
	}
	if ok {
		layouts, err := decodePersisted(data)
		if err != nil {
			return err
		}
		if len(layouts) > 0 {
			c.set(layouts, OriginPersisted)
			c.current = c.loadCurrent(ctx)
			return nil
		}
	}

	if c.remote != nil {
		if layouts, err := c.remote.Fetch(ctx); err == nil && len(layouts) > 0 {
			c.set(layouts, OriginRemote)
			return nil
		}
	}

	c.set([]*grid.Layout{grid.New(1, DefaultTitle)}, OriginDefault)
	return nil
}

func decodePersisted(data []byte) ([]*grid.Layout, error) {
	var layouts []*grid.Layout
	if err := json.Unmarshal(data, &layouts); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode persisted layouts")
	}
	out := layouts[:0]
	seen := make(map[int]bool, len(layouts))
	for _, l := range layouts {
		if l == nil || seen[l.ID] {
			continue
		}
		seen[l.ID] = true
		l.Normalize()
		out = append(out, l)
	}
	return out, nil
}

func (c *Collection) set(layouts []*grid.Layout, origin string) {
	c.layouts = layouts
	c.origin = origin
	c.current = layouts[0].ID
}

func (c *Collection) loadCurrent(ctx context.Context) int {
	data, ok, err := c.backend.Load(ctx, c.currentKey())
	if err != nil || !ok {
		return c.layouts[0].ID
	}
	id, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || c.index(id) < 0 {
		return c.layouts[0].ID
	}
	return id
}

// Save writes the whole collection and the current layout id.
func (c *Collection) Save(ctx context.Context) (err error) {
	start := time.Now()
	var data []byte
	defer func() {
		observability.Store().OnSave(ctx, backendName(c.backend), len(data), time.Since(start), err)
	}()

	data, err = json.Marshal(c.layouts)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode layouts")
	}
	if err := c.backend.Save(ctx, c.key, data); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "save layouts")
	}
	if err := c.backend.Save(ctx, c.currentKey(), []byte(strconv.Itoa(c.current))); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "save current layout")
	}
	return nil
}

// Origin reports where the last Load found the layouts.
func (c *Collection) Origin() string { return c.origin }

// Len returns the number of layouts.
func (c *Collection) Len() int { return len(c.layouts) }

// List returns the layouts in order. The slice is a copy; the layouts are not.
func (c *Collection) List() []*grid.Layout { return slices.Clone(c.layouts) }

// CurrentID returns the id of the current layout.
func (c *Collection) CurrentID() int { return c.current }

// Current returns the current layout, or nil before Load.
func (c *Collection) Current() *grid.Layout {
	if i := c.index(c.current); i >= 0 {
		return c.layouts[i]
	}
	return nil
}

// Get returns the layout with id.
func (c *Collection) Get(id int) (*grid.Layout, error) {
	i := c.index(id)
	if i < 0 {
		return nil, errors.New(errors.ErrCodeLayoutNotFound, "layout %d not found", id)
	}
	return c.layouts[i], nil
}

func (c *Collection) index(id int) int {
	return slices.IndexFunc(c.layouts, func(l *grid.Layout) bool { return l.ID == id })
}

// Select makes id the current layout.
func (c *Collection) Select(ctx context.Context, id int) (*grid.Layout, error) {
	l, err := c.Get(id)
	if err != nil {
		return nil, err
	}
	c.current = id
	return l, c.Save(ctx)
}

// Create appends an empty layout with the next free id and selects it.
func (c *Collection) Create(ctx context.Context, title string) (*grid.Layout, error) {
	if err := errors.ValidateTitle(title); err != nil {
		return nil, err
	}
	l := grid.New(c.nextID(), strings.TrimSpace(title))
	c.layouts = append(c.layouts, l)
	c.current = l.ID
	return l, c.Save(ctx)
}

func (c *Collection) nextID() int {
	id := 0
	for _, l := range c.layouts {
		id = max(id, l.ID)
	}
	return id + 1
}

// Delete removes the layout with id. Deleting the current layout selects
// the first remaining one; deleting the last layout leaves a fresh
// synthetic layout behind.
func (c *Collection) Delete(ctx context.Context, id int) error {
	i := c.index(id)
	if i < 0 {
		return errors.New(errors.ErrCodeLayoutNotFound, "layout %d not found", id)
	}
	c.layouts = slices.Delete(c.layouts, i, i+1)
	if len(c.layouts) == 0 {
		c.layouts = []*grid.Layout{grid.New(id+1, DefaultTitle)}
	}
	if c.current == id {
		c.current = c.layouts[0].ID
	}
	return c.Save(ctx)
}

// Rename sets the title of the layout with id.
func (c *Collection) Rename(ctx context.Context, id int, title string) error {
	if err := errors.ValidateTitle(title); err != nil {
		return err
	}
	return c.Update(ctx, id, func(l *grid.Layout) error {
		l.Title = strings.TrimSpace(title)
		return nil
	})
}

// Update applies fn to the layout with id and saves. If fn fails nothing
// is saved and the error is returned.
func (c *Collection) Update(ctx context.Context, id int, fn func(*grid.Layout) error) error {
	l, err := c.Get(id)
	if err != nil {
		return err
	}
	if err := fn(l); err != nil {
		return err
	}
	return c.Save(ctx)
}

// Search returns layouts whose title, author or tags contain query,
// ignoring case. An empty query returns every layout.
func (c *Collection) Search(query string) []*grid.Layout {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.List()
	}
	var out []*grid.Layout
	for _, l := range c.layouts {
		if matches(l, q) {
			out = append(out, l)
		}
	}
	return out
}

func matches(l *grid.Layout, q string) bool {
	if strings.Contains(strings.ToLower(l.Title), q) || strings.Contains(strings.ToLower(l.Author), q) {
		return true
	}
	return slices.ContainsFunc(l.Tags, func(tag string) bool {
		return strings.Contains(strings.ToLower(tag), q)
	})
}

// Replace swaps in a new set of layouts (collection import) and selects
// the first. An empty set leaves one synthetic layout.
func (c *Collection) Replace(ctx context.Context, layouts []*grid.Layout) error {
	seen := make(map[int]bool, len(layouts))
	for _, l := range layouts {
		if seen[l.ID] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate layout id %d", l.ID)
		}
		seen[l.ID] = true
	}
	if len(layouts) == 0 {
		layouts = []*grid.Layout{grid.New(1, DefaultTitle)}
	}
	c.layouts = slices.Clone(layouts)
	c.current = c.layouts[0].ID
	return c.Save(ctx)
}

func backendName(b Backend) string {
	switch b.(type) {
	case *MemoryBackend:
		return BackendMemory
	case *FileBackend:
		return BackendFile
	case *SQLiteBackend:
		return BackendSQLite
	case *RedisBackend:
		return BackendRedis
	case *MongoBackend:
		return BackendMongo
	default:
		return "custom"
	}
}

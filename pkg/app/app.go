// Package app wires the catalog, the layout collection and the editor into
// one state container shared by the CLI, the TUI and the HTTP server.
//
// An [App] is not safe for concurrent use. The server guards it with a
// mutex; the CLI and TUI use it from a single goroutine.
package app

import (
	"context"
	"path/filepath"

	"github.com/matzehuels/banktags/pkg/catalog"
	"github.com/matzehuels/banktags/pkg/config"
	"github.com/matzehuels/banktags/pkg/editor"
	"github.com/matzehuels/banktags/pkg/errors"
	"github.com/matzehuels/banktags/pkg/grid"
	"github.com/matzehuels/banktags/pkg/httputil"
	"github.com/matzehuels/banktags/pkg/integrations"
	"github.com/matzehuels/banktags/pkg/store"
)

// ItemsFile is the catalog file name inside the data directory.
const ItemsFile = "items.json"

// Options are the collaborators of an [App].
type Options struct {
	Backend store.Backend
	Remote  store.RemoteSource // optional
	Source  catalog.Source
}

// App is the application state: the catalog loader, the layout collection
// and an editor pointed at the current layout.
type App struct {
	Catalog *catalog.Loader
	Layouts *store.Collection
	Editor  *editor.Editor

	backend store.Backend
}

// Open starts the catalog load in the background, loads the collection and
// points the editor at the current layout. The editor stays gated until
// the catalog load finishes.
func Open(ctx context.Context, opts Options) (*App, error) {
	if opts.Backend == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no storage backend")
	}
	if opts.Source == nil {
		opts.Source = catalog.StaticSource{}
	}

	loader := catalog.NewLoader(opts.Source)
	loader.Start(ctx)

	layouts := store.NewCollection(opts.Backend, opts.Remote)
	if err := layouts.Load(ctx); err != nil {
		_ = opts.Backend.Close()
		return nil, err
	}

	ed := editor.New(editor.Options{Gate: loader, Codec: loader, Saver: layouts})
	ed.SetLayout(layouts.Current())

	return &App{Catalog: loader, Layouts: layouts, Editor: ed, backend: opts.Backend}, nil
}

// Current returns the layout the editor is working on.
func (a *App) Current() *grid.Layout { return a.Editor.Layout() }

// SelectLayout makes id current and re-points the editor.
func (a *App) SelectLayout(ctx context.Context, id int) (*grid.Layout, error) {
	l, err := a.Layouts.Select(ctx, id)
	if l != nil {
		a.Editor.SetLayout(l)
	}
	return l, err
}

// CreateLayout adds an empty layout and makes it current.
func (a *App) CreateLayout(ctx context.Context, title string) (*grid.Layout, error) {
	l, err := a.Layouts.Create(ctx, title)
	if l != nil {
		a.Editor.SetLayout(l)
	}
	return l, err
}

// DeleteLayout removes id. When it was current the editor moves to the new
// current layout.
func (a *App) DeleteLayout(ctx context.Context, id int) error {
	err := a.Layouts.Delete(ctx, id)
	a.sync()
	return err
}

// RenameLayout retitles id.
func (a *App) RenameLayout(ctx context.Context, id int, title string) error {
	return a.Layouts.Rename(ctx, id, title)
}

// ReplaceLayouts swaps in an imported collection.
func (a *App) ReplaceLayouts(ctx context.Context, layouts []*grid.Layout) error {
	err := a.Layouts.Replace(ctx, layouts)
	a.sync()
	return err
}

// Dispatch runs cmd through the editor.
func (a *App) Dispatch(ctx context.Context, cmd editor.Command) (editor.Result, error) {
	return a.Editor.Dispatch(ctx, cmd)
}

func (a *App) sync() {
	if cur := a.Layouts.Current(); cur != a.Editor.Layout() {
		a.Editor.SetLayout(cur)
	}
}

// Close releases the storage backend.
func (a *App) Close() error { return a.backend.Close() }

// FromConfig builds [Options] from the settings file: the storage backend,
// the catalog source and the optional remote layout set.
func FromConfig(ctx context.Context, cfg config.Config, refresh bool) (Options, error) {
	backend, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return Options{}, err
	}

	var client *integrations.Client
	if cfg.RemoteItems() || cfg.Remote.LayoutsURL != "" {
		var cache *httputil.Cache
		if c, err := integrations.NewCache(cfg.Catalog.CacheTTL.Duration); err == nil {
			cache = c
		}
		client = integrations.NewClient(cache, nil)
	}

	opts := Options{Backend: backend}
	if cfg.Remote.LayoutsURL != "" {
		opts.Remote = store.HTTPRemote{Client: client, URL: cfg.Remote.LayoutsURL}
	}

	if cfg.RemoteItems() {
		opts.Source = catalog.HTTPSource{
			Client:          client,
			ItemsURL:        cfg.Catalog.ItemsURL,
			PlaceholdersURL: cfg.Catalog.PlaceholdersURL,
			Refresh:         refresh,
		}
		return opts, nil
	}

	items, placeholders := cfg.Catalog.ItemsURL, cfg.Catalog.PlaceholdersURL
	if items == "" {
		items, err = DefaultItemsPath()
		if err != nil {
			return opts, nil
		}
	}
	opts.Source = catalog.FileSource{ItemsPath: items, PlaceholdersPath: placeholders}
	return opts, nil
}

// DefaultItemsPath is where the catalog builder writes and [FromConfig]
// reads the item list when no items_url is configured.
func DefaultItemsPath() (string, error) {
	dir, err := store.DefaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ItemsFile), nil
}

package catalog

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/banktags/pkg/errors"
	"github.com/matzehuels/banktags/pkg/observability"
)

// Loader owns the live catalog. It starts out empty and closed; the first
// finished load, successful or not, opens the gate.
//
// All methods are safe for concurrent use.
type Loader struct {
	src   Source
	group singleflight.Group

	mu  sync.RWMutex
	cat *Catalog
	err error

	ready     chan struct{}
	readyOnce sync.Once
}

// NewLoader returns a closed loader over src.
func NewLoader(src Source) *Loader {
	return &Loader{
		src:   src,
		cat:   Empty(),
		ready: make(chan struct{}),
	}
}

// Load fetches the catalog from the source. Concurrent calls share one
// fetch. On failure the previous catalog stays in place (an empty one if
// none loaded yet) and a CATALOG_UNAVAILABLE error is returned; the gate
// opens either way.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	v, err, _ := l.group.Do("load", func() (any, error) {
		return l.load(ctx)
	})
	return v.(*Catalog), err
}

func (l *Loader) load(ctx context.Context) (*Catalog, error) {
	start := time.Now()
	records, placeholders, err := l.src.Load(ctx)

	l.mu.Lock()
	if err != nil {
		l.err = errors.Wrap(errors.ErrCodeCatalogUnavailable, err, "load item catalog")
	} else {
		l.cat, l.err = New(records, placeholders), nil
	}
	cat, lerr := l.cat, l.err
	l.mu.Unlock()

	l.readyOnce.Do(func() { close(l.ready) })
	observability.Editor().OnCatalogLoaded(ctx, cat.Len(), time.Since(start), lerr)
	return cat, lerr
}

// Start runs [Loader.Load] in the background.
func (l *Loader) Start(ctx context.Context) {
	go func() { _, _ = l.Load(ctx) }()
}

// Ready reports whether a load has finished.
func (l *Loader) Ready() bool {
	select {
	case <-l.ready:
		return true
	default:
		return false
	}
}

// Done returns a channel closed when the first load finishes.
func (l *Loader) Done() <-chan struct{} { return l.ready }

// Wait blocks until the gate opens or ctx ends.
func (l *Loader) Wait(ctx context.Context) error {
	select {
	case <-l.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Catalog returns the current catalog. It is empty before the first
// successful load.
func (l *Loader) Catalog() *Catalog {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cat
}

// Err returns the error of the most recent load, if it failed.
func (l *Loader) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

// Resolve runs [DefaultChain] against the current catalog.
func (l *Loader) Resolve(ext string) Resolution {
	return DefaultChain(l.Catalog()).Resolve(ext)
}

// ExternalID is the forward map of the current catalog.
func (l *Loader) ExternalID(internalID int) (string, bool) {
	return l.Catalog().ExternalID(internalID)
}

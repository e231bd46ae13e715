package store

import (
	"context"

	"github.com/matzehuels/banktags/pkg/grid"
	"github.com/matzehuels/banktags/pkg/httputil"
	"github.com/matzehuels/banktags/pkg/integrations"
	bankio "github.com/matzehuels/banktags/pkg/io"
)

// RemoteSource supplies the default layout set used when nothing is
// persisted yet.
type RemoteSource interface {
	Fetch(ctx context.Context) ([]*grid.Layout, error)
}

// HTTPRemote fetches a JSON layout set that is either an array or a
// {"layouts": [...]} object.
type HTTPRemote struct {
	Client *integrations.Client
	URL    string
}

// Fetch implements [RemoteSource].
func (h HTTPRemote) Fetch(ctx context.Context) ([]*grid.Layout, error) {
	var data []byte
	err := httputil.RetryWithBackoff(ctx, func() error {
		var err error
		data, err = h.Client.GetBytes(ctx, h.URL)
		return err
	})
	if err != nil {
		return nil, err
	}
	return bankio.DecodeJSON(data)
}

// StaticRemote serves a fixed layout set.
type StaticRemote []*grid.Layout

// Fetch implements [RemoteSource] with deep copies of the layouts.
func (s StaticRemote) Fetch(context.Context) ([]*grid.Layout, error) {
	out := make([]*grid.Layout, len(s))
	for i, l := range s {
		out[i] = l.Clone()
	}
	return out, nil
}

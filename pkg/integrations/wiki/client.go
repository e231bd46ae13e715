package wiki

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/matzehuels/banktags/pkg/httputil"
	"github.com/matzehuels/banktags/pkg/integrations"
)

// DefaultBaseURL is the wiki the catalog is built from.
const DefaultBaseURL = "https://oldschool.runescape.wiki"

// PageSize is the number of rows requested per bucket query. The API does
// not report whether more rows exist, so a short page ends the scan.
const PageSize = 500

var fields = []string{"page_name", "page_name_sub", "item_name", "image", "item_id"}

// Row is one infobox_item row as returned by the bucket API.
type Row struct {
	PageName    string   `json:"page_name"`
	PageNameSub string   `json:"page_name_sub"`
	ItemName    string   `json:"item_name"`
	Image       []string `json:"image"`
	ItemID      []string `json:"item_id"`
}

type bucketResponse struct {
	Bucket []Row  `json:"bucket"`
	Error  string `json:"error,omitempty"`
}

// Client talks to the wiki's api.php.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a wiki client. Bucket pages are cached for cacheTTL
// in the "wiki:" namespace of cache; a nil cache disables caching.
func NewClient(cache *httputil.Cache, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if cache != nil {
		cache = cache.Namespace("wiki:")
	}
	return &Client{
		Client:  integrations.NewClient(cache, nil),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL returns the wiki root.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchItems returns every infobox_item row, paging until a short page.
// progress, when non-nil, is called with the offset of each page requested.
func (c *Client) FetchItems(ctx context.Context, refresh bool, progress func(offset int)) ([]Row, error) {
	var rows []Row
	for offset := 0; ; offset += PageSize {
		if progress != nil {
			progress(offset)
		}
		page, err := c.fetchPage(ctx, offset, refresh)
		if err != nil {
			return rows, fmt.Errorf("bucket offset %d: %w", offset, err)
		}
		rows = append(rows, page...)
		if len(page) < PageSize {
			return rows, nil
		}
	}
}

func (c *Client) fetchPage(ctx context.Context, offset int, refresh bool) ([]Row, error) {
	q := url.Values{}
	q.Set("action", "bucket")
	q.Set("format", "json")
	q.Set("query", BucketQuery(offset))
	u := c.baseURL + "/api.php?" + q.Encode()

	var resp bucketResponse
	err := c.Cached(ctx, fmt.Sprintf("items:%d", offset), refresh, &resp, func() error {
		return c.Get(ctx, u, &resp)
	})
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: bucket: %s", integrations.ErrNetwork, resp.Error)
	}
	return resp.Bucket, nil
}

// BucketQuery returns the Lua-style bucket query for one page.
func BucketQuery(offset int) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = "'" + f + "'"
	}
	return "bucket('infobox_item')" +
		".select(" + strings.Join(quoted, ",") + ")" +
		fmt.Sprintf(".limit(%d).offset(%d)", PageSize, offset) +
		".where('item_id', '!=', bucket.Null())" +
		".where('Category:Items')" +
		".where(bucket.Not('Category:Interface items'))" +
		".where(bucket.Not('Category:Discontinued content'))" +
		".where(bucket.Not('Category:Beta items'))" +
		".orderBy('item_name', 'asc').run()"
}

// ImageURL returns the download URL for an image file name.
func (c *Client) ImageURL(image string) string {
	return c.baseURL + "/w/Special:Filepath/" + url.PathEscape(image)
}

package wiki

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// requestTimeout bounds a single image download.
const requestTimeout = 30 * time.Second

// DownloadResult counts the outcome of [Client.DownloadImages].
type DownloadResult struct {
	Saved   int
	Skipped int
	Failed  int
	Errors  []error
}

// DownloadImages saves each image into dir under its sanitized name.
// Files that already exist are skipped. Individual failures are counted
// and collected; only a context cancellation or an unusable dir aborts.
func (c *Client) DownloadImages(ctx context.Context, dir string, images []string, workers int) (DownloadResult, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return DownloadResult{}, err
	}

	var saved, skipped, failed atomic.Int64
	errs := make([]error, len(images))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, img := range images {
		dest := filepath.Join(dir, SanitizeImage(img))
		if _, err := os.Stat(dest); err == nil {
			skipped.Add(1)
			continue
		}
		g.Go(func() error {
			if err := c.downloadOne(ctx, img, dest); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				failed.Add(1)
				errs[i] = err
				return nil
			}
			saved.Add(1)
			return nil
		})
	}
	err := g.Wait()

	res := DownloadResult{
		Saved:   int(saved.Load()),
		Skipped: int(skipped.Load()),
		Failed:  int(failed.Load()),
	}
	for _, e := range errs {
		if e != nil {
			res.Errors = append(res.Errors, e)
		}
	}
	return res, err
}

func (c *Client) downloadOne(ctx context.Context, image, dest string) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	data, err := c.GetBytes(ctx, c.ImageURL(image))
	if err != nil {
		return fmt.Errorf("%s: %w", image, err)
	}
	tmp := dest + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, dest)
}

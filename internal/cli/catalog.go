package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/banktags/pkg/app"
	"github.com/matzehuels/banktags/pkg/catalog"
	"github.com/matzehuels/banktags/pkg/errors"
	"github.com/matzehuels/banktags/pkg/integrations"
	"github.com/matzehuels/banktags/pkg/integrations/wiki"
)

const defaultImageWorkers = 8

// catalogCommand creates the item catalog command.
func (c *CLI) catalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Build, search and inspect the item catalog",
	}

	cmd.AddCommand(c.catalogBuildCommand())
	cmd.AddCommand(c.catalogSearchCommand())
	cmd.AddCommand(c.catalogLookupCommand())

	return cmd
}

func (c *CLI) catalogBuildCommand() *cobra.Command {
	var (
		out     string
		images  string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Fetch every item from the wiki and write the catalog file",
		Long: `Fetch every infobox item from the wiki's bucket API and write the
catalog records JSON that banktags reads when no remote items_url is set.

Wiki pages are cached; pass --refresh to refetch them. With --images the
item icons are downloaded too.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if out == "" {
				if out, err = catalogPath(cfg.Catalog.ItemsURL, cfg.RemoteItems()); err != nil {
					return err
				}
			}
			cache, err := integrations.NewCache(cfg.Catalog.CacheTTL.Duration)
			if err != nil {
				logger.Warn("HTTP cache disabled", "err", err)
			}
			wc := wiki.NewClient(cache, cfg.Catalog.WikiURL)

			prog := newProgress(logger)
			spin := newSpinnerWithContext(ctx, "Fetching wiki items...")
			spin.Start()
			records, imgs, stats, err := buildCatalog(ctx, wc, out, c.refresh, func(offset int) {
				spin.SetMessage("Fetching wiki items %d-%d...", offset, offset+wiki.PageSize)
			})
			if err != nil {
				spin.StopWithError("Catalog build failed")
				return err
			}
			spin.Stop()
			prog.done(fmt.Sprintf("Fetched %d wiki rows", stats.Rows))

			printSuccess("Wrote %d items", len(records))
			printFile(out)
			printDetail("%d duplicates · %d invalid ids · %d skipped", stats.Duplicates, stats.InvalidIDs, stats.Skipped)

			if images == "" {
				return nil
			}
			spin = newSpinnerWithContext(ctx, fmt.Sprintf("Downloading %d images...", len(imgs)))
			spin.Start()
			res, err := wc.DownloadImages(ctx, images, imgs, workers)
			spin.Stop()
			if err != nil {
				return err
			}
			printSuccess("Saved %d images (%d already present)", res.Saved, res.Skipped)
			if res.Failed > 0 {
				printWarning("%d images failed", res.Failed)
				for _, e := range res.Errors {
					if e != nil {
						logger.Debug("image download", "err", e)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: the configured items file)")
	cmd.Flags().StringVar(&images, "images", "", "download item images into this directory")
	cmd.Flags().IntVar(&workers, "workers", defaultImageWorkers, "concurrent image downloads")
	return cmd
}

// catalogPath is where `catalog build` writes: the configured items file,
// or the default one when the catalog is remote or unset.
func catalogPath(itemsURL string, remote bool) (string, error) {
	if itemsURL != "" && !remote {
		return itemsURL, nil
	}
	return app.DefaultItemsPath()
}

// buildCatalog fetches all rows, converts them to records and writes them
// to out as JSON.
func buildCatalog(ctx context.Context, wc *wiki.Client, out string, refresh bool, progress func(int)) ([]catalog.Record, []string, wiki.Stats, error) {
	rows, err := wc.FetchItems(ctx, refresh, progress)
	if err != nil {
		return nil, nil, wiki.Stats{}, errors.Wrap(errors.ErrCodeCatalogUnavailable, err, "fetch wiki items")
	}
	records, images, stats := wiki.Build(rows)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, nil, stats, err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return nil, nil, stats, errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", filepath.Dir(out))
	}
	if err := os.WriteFile(out, append(data, '\n'), 0o644); err != nil {
		return nil, nil, stats, errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", out)
	}
	return records, images, stats, nil
}

func (c *CLI) catalogSearchCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search items by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := waitCatalog(ctx, a); err != nil {
					return err
				}
				items := a.Catalog.Catalog().Search(args[0], limit)
				if len(items) == 0 {
					printInfo("No items match %q", args[0])
					return nil
				}
				for _, def := range items {
					printKeyValue(def.ExternalID, def.Name)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum results (0 for all)")
	return cmd
}

func (c *CLI) catalogLookupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <external-id>...",
		Short: "Show how external ids resolve",
		Long: `Show how external ids resolve: directly, through the placeholder map,
as a raw number, or not at all.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := waitCatalog(ctx, a); err != nil {
					return err
				}
				cat := a.Catalog.Catalog()
				for _, ext := range args {
					res := a.Catalog.Resolve(ext)
					if res.Opaque() {
						printWarning("%s: unresolved", ext)
						continue
					}
					detail := StyleDim.Render("via " + res.Via)
					printKeyValue(ext, cat.Name(res.ItemID)+" "+StyleNumber.Render(strconv.Itoa(res.ItemID))+" "+detail)
				}
				return nil
			})
		},
	}
}

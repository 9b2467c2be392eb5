// Package main provides the lazyicons command line tool: it checks the
// configuration, prints the feed and prefetches icons headlessly.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/ytget/lazyicons/internal/config"
	"github.com/ytget/lazyicons/internal/download"
	"github.com/ytget/lazyicons/internal/feed"
	"github.com/ytget/lazyicons/internal/lazyload"
	"github.com/ytget/lazyicons/internal/model"
)

var version = "dev"

const defaultTimeout = 30 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveVersion prefers the ldflags version and falls back to the module
// version recorded by go install.
func resolveVersion(ldflagsVersion string, info *debug.BuildInfo) string {
	if ldflagsVersion != "dev" {
		return ldflagsVersion
	}
	if info == nil || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return "dev"
	}
	return info.Main.Version
}

func buildVersion() string {
	info, _ := debug.ReadBuildInfo()
	return resolveVersion(version, info)
}

// newRootCmd creates the root command. The effective configuration is
// loaded and validated before any subcommand runs.
func newRootCmd() *cobra.Command {
	var envFile string
	cfg := config.Default()

	rootCmd := &cobra.Command{
		Use:          "lazyicons",
		Short:        "Top paid apps feed with lazily fetched icons",
		Long:         "Lazyicons loads the top paid apps feed and fetches row icons on demand, the same way the desktop app does.",
		Version:      buildVersion(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var files []string
			if envFile != "" {
				files = append(files, envFile)
			}
			loaded, err := config.FromEnv(files...)
			if err != nil {
				return err
			}
			if err := loaded.Validate(); err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}

	rootCmd.SetVersionTemplate("lazyicons version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load LAZYICONS_* variables from this file")

	rootCmd.AddCommand(newCheckCmd(&cfg))
	rootCmd.AddCommand(newFeedCmd(&cfg))
	rootCmd.AddCommand(newPrefetchCmd(&cfg))
	rootCmd.AddCommand(newConfigCmd(&cfg))

	return rootCmd
}

// newCheckCmd creates the check subcommand. Validation itself runs in the
// root pre-run hook, so reaching RunE means the configuration is usable.
func newCheckCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and transport policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "OK: feed %s\n", cfg.FeedURL)
			return nil
		},
	}
}

// newFeedCmd creates the feed subcommand.
func newFeedCmd(cfg *config.Config) *cobra.Command {
	var limit int
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Print the top paid apps feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				limit = cfg.FeedLimit
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			records, err := newFeedClient(*cfg).Fetch(ctx, cfg.FeedURL, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range records {
				fmt.Fprintf(out, "%3d. %s (%s)\n", r.Position, r.GetDisplayName(), r.GetDisplayArtist())
			}
			if len(records) == 0 {
				fmt.Fprintln(out, "No apps")
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of apps (default from configuration)")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultTimeout, "feed request timeout")
	return cmd
}

// newPrefetchCmd creates the prefetch subcommand. It drives a Coordinator
// from a Loop as if the first rows of the list were on screen.
func newPrefetchCmd(cfg *config.Config) *cobra.Command {
	var visible int
	var scroll bool
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "prefetch",
		Short: "Fetch icons for the first visible rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			if visible <= 0 {
				return fmt.Errorf("invalid --visible %d: must be positive", visible)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			records, err := newFeedClient(*cfg).Fetch(ctx, cfg.FeedURL, cfg.FeedLimit)
			if err != nil {
				return err
			}
			res, err := prefetch(ctx, *cfg, records, visible, scroll, log.New(cmd.ErrOrStderr(), "", log.LstdFlags))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range res.rows {
				switch {
				case r.HasIcon():
					b := r.Icon.Bounds()
					fmt.Fprintf(out, "%3d. %s: icon %dx%d\n", r.Position, r.GetDisplayName(), b.Dx(), b.Dy())
				default:
					fmt.Fprintf(out, "%3d. %s: placeholder\n", r.Position, r.GetDisplayName())
				}
			}
			s := res.stats
			fmt.Fprintf(out, "started=%d completed=%d failed=%d cancelled=%d discarded=%d refreshed=%d\n",
				s.Started, s.Completed, s.Failed, s.Cancelled, s.Discarded, res.refreshed)
			return nil
		},
	}

	cmd.Flags().IntVar(&visible, "visible", 10, "number of rows treated as visible")
	cmd.Flags().BoolVar(&scroll, "scroll", false, "report the range during a scroll and start fetches on settle")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultTimeout, "overall timeout")
	return cmd
}

// newConfigCmd creates the config subcommand.
func newConfigCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "feed_url: %s\n", cfg.FeedURL)
			fmt.Fprintf(out, "feed_limit: %d\n", cfg.FeedLimit)
			fmt.Fprintf(out, "icon_size: %d\n", cfg.IconSize)
			fmt.Fprintf(out, "cancel_offscreen: %v\n", cfg.CancelOffscreen)
			fmt.Fprintf(out, "insecure_hosts: %s\n", strings.Join(cfg.InsecureHosts, ","))
			fmt.Fprintf(out, "language: %s\n", cfg.Language)
			return nil
		},
	}
}

func newFeedClient(cfg config.Config) *feed.Client {
	return feed.NewClient(
		feed.WithPolicy(cfg.Policy()),
		feed.WithIconSize(cfg.IconSize),
		feed.WithUserAgent(download.DefaultUserAgent),
	)
}

type prefetchResult struct {
	rows      []*model.FeedRecord
	stats     lazyload.Stats
	refreshed int
}

// activityCounter tracks outstanding network operations
type activityCounter struct {
	n atomic.Int64
}

func (a *activityCounter) Begin() { a.n.Add(1) }
func (a *activityCounter) End()   { a.n.Add(-1) }

// prefetch loads icons for the first visible rows and waits until every
// started task finished or ctx is done.
func prefetch(ctx context.Context, cfg config.Config, records []*model.FeedRecord, visible int, scroll bool, logger *log.Logger) (prefetchResult, error) {
	loop := lazyload.NewLoop()
	loopCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	defer stop()
	go func() { _ = loop.Run(loopCtx) }()

	var refreshed atomic.Int64
	activity := &activityCounter{}
	store := model.NewStore()
	fetcher := download.NewHTTPFetcher(
		download.WithPolicy(cfg.Policy()),
		download.WithIconSize(cfg.IconSize),
	)
	coordinator := lazyload.NewCoordinator(store, fetcher,
		lazyload.WithDispatcher(loop.Do),
		lazyload.WithRefresh(func(model.RowKey) { refreshed.Add(1) }),
		lazyload.WithActivity(activity),
		lazyload.WithCancelOffscreen(cfg.CancelOffscreen),
		lazyload.WithLogger(logger),
	)

	ok := loop.Call(func() {
		coordinator.ReplaceRecords(records)
		keys := store.KeysInRange(0, visible-1)
		if scroll {
			coordinator.OnScrollStarted()
			coordinator.OnVisibleRangeChanged(keys)
			coordinator.OnScrollSettled()
			return
		}
		coordinator.OnVisibleRangeChanged(keys)
	})
	if !ok {
		return prefetchResult{}, ctx.Err()
	}

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		var inFlight int
		if !loop.Call(func() { inFlight = len(coordinator.InFlight()) }) {
			break
		}
		if inFlight == 0 && activity.n.Load() == 0 {
			break
		}
		select {
		case <-ctx.Done():
			loop.Call(coordinator.Shutdown)
			return prefetchResult{}, fmt.Errorf("prefetch: %w", ctx.Err())
		case <-ticker.C:
		}
	}

	res := prefetchResult{refreshed: int(refreshed.Load())}
	loop.Call(func() {
		res.stats = coordinator.Stats()
		for i := 0; i < store.Len(); i++ {
			if r, ok := store.At(i); ok {
				res.rows = append(res.rows, r)
			}
		}
	})
	if len(res.rows) > visible {
		res.rows = res.rows[:visible]
	}
	return res, nil
}

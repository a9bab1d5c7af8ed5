package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/cache"
)

// ---------------------------------------------------------------------------
// cache (export / import the shared translation cache)
// ---------------------------------------------------------------------------

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Export or import the Redis translation cache",
	}
	cmd.AddCommand(newCacheExportCmd(), newCacheImportCmd())
	return cmd
}

func newCacheExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Export cached translations to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			redisCache, err := openRedisCache()
			if err != nil {
				return err
			}
			defer redisCache.Close()
			entries, err := redisCache.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			if err := cache.Export(args[0], entries); err != nil {
				return err
			}
			logSuccess("exported %d cached translations to %s", len(entries), args[0])
			return nil
		},
	}
}

func newCacheImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import cached translations from a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			redisCache, err := openRedisCache()
			if err != nil {
				return err
			}
			defer redisCache.Close()
			n, err := cache.Import(args[0], redisCache)
			if err != nil {
				return err
			}
			logSuccess("imported %d cached translations", n)
			return nil
		},
	}
}

func openRedisCache() (*cache.RedisCache, error) {
	app, err := loadApp()
	if err != nil {
		return nil, err
	}
	if app.cfg.RedisURL == "" {
		return nil, fmt.Errorf("redis_url is not configured; cache export/import needs Redis")
	}
	var opts []cache.RedisOption
	if app.cfg.CacheTTLSeconds > 0 {
		opts = append(opts, cache.WithTTL(time.Duration(app.cfg.CacheTTLSeconds)*time.Second))
	}
	return cache.NewRedisCache(app.cfg.RedisURL, opts...)
}

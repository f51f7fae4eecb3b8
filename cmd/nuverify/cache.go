package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"nuverify/internal/cache"
	"nuverify/internal/config"
)

var cacheDetailed bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the instruction cache",
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show cache location, size, and cached versions",
	RunE:  runCacheInfo,
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove all cached instructions",
	RunE:  runCacheClean,
}

var cacheAddCmd = &cobra.Command{
	Use:   "add <version>...",
	Short: "Pre-synthesize instructions for specific releases",
	Long: `Derives and caches compatibility instructions for the given release
versions without analyzing any scripts. Useful for warming the cache before a
large run.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCacheAdd,
}

func init() {
	cacheInfoCmd.Flags().BoolVar(&cacheDetailed, "detailed", false, "list every cache entry")
	cacheCmd.AddCommand(cacheInfoCmd, cacheCleanCmd, cacheAddCmd)
}

func runCacheInfo(cmd *cobra.Command, args []string) error {
	store := cache.New(config.CacheDir(), logger)
	stats := store.Stat()

	fmt.Printf("Cache directory: %s\n", stats.Directory)
	if !stats.Exists {
		fmt.Println("Cache is empty (directory does not exist yet).")
		return nil
	}
	fmt.Printf("Entries: %d\n", stats.EntryCount)
	fmt.Printf("Total size: %.1f KB\n", float64(stats.TotalSize)/1024)
	if len(stats.Versions) > 0 {
		fmt.Printf("Cached versions: %v\n", stats.Versions)
	}

	if cacheDetailed {
		fmt.Println()
		for _, e := range store.Entries() {
			fmt.Printf("  %s  model=%s  created=%s  %d bytes\n",
				e.Version, e.LLMModel, e.CreatedAt, e.Size)
		}
	}
	return nil
}

func runCacheClean(cmd *cobra.Command, args []string) error {
	store := cache.New(config.CacheDir(), logger)
	removed := store.Clear()
	fmt.Printf("Removed %d cache entries.\n", removed)
	return nil
}

func runCacheAdd(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if !cfg.CacheEnabled || noCache {
		return fmt.Errorf("cannot add entries while the cache is disabled")
	}

	orch, err := buildPipeline(ctx, cfg, os.Stdout)
	if err != nil {
		return err
	}

	added, err := orch.PrimeCache(ctx, args)
	if err != nil {
		return err
	}
	fmt.Printf("Cached instructions for %d of %d requested versions.\n", added, len(args))
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"nuverify/internal/analyzer"
	"nuverify/internal/cache"
	"nuverify/internal/config"
	"nuverify/internal/llm"
	"nuverify/internal/progress"
	"nuverify/internal/release"
	"nuverify/internal/report"
	"nuverify/internal/scanner"
)

var (
	// Global flags
	targetVersion string
	directories   []string
	configPath    string
	verbose       bool
	noCache       bool
	noProgress    bool
	dryRun        bool

	// Logger
	logger *zap.Logger
)

// rootCmd verifies every discovered script against the target version.
var rootCmd = &cobra.Command{
	Use:   "nuverify",
	Short: "Verify Nushell scripts against a target Nushell version",
	Long: `nuverify scans configured directories for Nushell scripts, determines each
script's last known compatible version, and uses an LLM to check the script
against the breaking changes announced in every release between that version
and the target.

Scripts found compatible are stamped with a "# nushell-compatible-with:"
comment so later runs can skip them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		cfg.OutputPaths = []string{"stderr"}
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runVerify,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default: XDG config dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "V", false, "enable verbose output and debug logging")

	rootCmd.Flags().StringVarP(&targetVersion, "target", "t", "", "target Nushell version (default: latest release)")
	rootCmd.Flags().StringArrayVarP(&directories, "directory", "d", nil, "directory to scan (repeatable, overrides config)")
	rootCmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the instruction cache")
	rootCmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable per-script progress display")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "do not write compatibility comments back to scripts")

	rootCmd.AddCommand(cacheCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if len(directories) > 0 {
		cfg.ScanDirectories = directories
	}

	orch, err := buildPipeline(ctx, cfg, os.Stdout)
	if err != nil {
		return err
	}

	analyses, summary, err := orch.Run(ctx)
	if err != nil {
		return err
	}

	report.New(os.Stdout, verbose).Print(analyses, summary)
	return nil
}

// buildPipeline wires the full verification pipeline from config.
func buildPipeline(ctx context.Context, cfg *config.Config, out *os.File) (*analyzer.Orchestrator, error) {
	token := cfg.GitHubToken
	switch {
	case token != "":
		logger.Debug("using GitHub token from config")
	default:
		if token = release.GhCLIToken(); token != "" {
			logger.Debug("using GitHub token from gh CLI")
		}
	}
	relClient := release.New(token, logger)
	if !relClient.HasToken() {
		logger.Warn("no GitHub token found, unauthenticated requests are rate-limited")
	}

	table := llm.NewCapabilityTable()
	client, modelID, err := llm.NewClientFromConfig(ctx, cfg, table, logger)
	if err != nil {
		return nil, err
	}
	oracle := llm.NewOracle(client, modelID, logger)

	var store *cache.Cache
	if cfg.CacheEnabled && !noCache {
		store = cache.New(config.CacheDir(), logger)
	}

	sc := scanner.New(cfg.ScanDirectories, logger)
	synth := analyzer.NewSynthesizer(relClient, oracle, store, logger)
	prog := progress.NewManager(out, progress.Config{Enabled: !noProgress})

	return analyzer.New(sc, relClient, oracle, synth, prog, analyzer.Config{
		TargetVersion: targetVersion,
		DryRun:        dryRun,
	}, logger), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"

	"github.com/bastiangx/emojiserve/internal/logger"
	"github.com/bastiangx/emojiserve/internal/utils"
	"github.com/bastiangx/emojiserve/pkg/catalog"
	"github.com/bastiangx/emojiserve/pkg/config"
	"github.com/bastiangx/emojiserve/pkg/paging"
	"github.com/bastiangx/emojiserve/pkg/picker"
	"github.com/bastiangx/emojiserve/pkg/storage"
	"github.com/bastiangx/emojiserve/pkg/tenor"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	configFlag    string
	dataFlag      string
	debugFlag     bool
	incognitoFlag bool
)

var rootCmd = &cobra.Command{
	Use:   AppName,
	Short: "Emoji, symbol and GIF search for pickers",
	Long: `emojiserve searches emoji catalogs by prefix, remembers recently used
items and preferred variants, and pages GIFs from a remote backend.

Without a subcommand it serves the IPC protocol on stdin/stdout.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Setup(debugFlag)
	},
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to the config file (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&dataFlag, "data", "data/", "Directory containing the catalog files")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "Toggle debug mode")
	rootCmd.PersistentFlags().BoolVar(&incognitoFlag, "incognito", false, "Neither read nor write history")
}

// app is everything a command needs, built from flags and config.
type app struct {
	cfg        *config.Config
	configPath string
	dataDir    string
	blobs      storage.Blobs
	engine     *picker.Engine
}

func newApp() (*app, error) {
	cfg, configPath, err := config.LoadConfigWithPriority(configFlag)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log.Debugf("Using config file: (%s)", configPath)
	if incognitoFlag {
		cfg.Recent.Incognito = true
	}

	var blobs storage.Blobs = storage.NewMemory()
	if !cfg.Recent.Incognito {
		blobs, err = storage.Open(cfg.Recent.Backend, cfg.Recent.StoragePath(configPath))
		if err != nil {
			return nil, fmt.Errorf("failed to open history store: %w", err)
		}
	}

	engine := picker.New(blobs, engineOptions(cfg))
	dataDir := resolveDataDir(dataFlag)
	log.Debugf("Using data dir at: %s", dataDir)
	if err := engine.LoadCatalogs(dataDir); err != nil {
		blobs.Close()
		return nil, fmt.Errorf("failed to load catalogs: %w", err)
	}
	for c, stats := range engine.Stats() {
		if c != catalog.CategoryGIF && stats["items"] == 0 {
			log.Warnf("No %s catalog in %s", c, dataDir)
		}
	}

	return &app{
		cfg:        cfg,
		configPath: configPath,
		dataDir:    dataDir,
		blobs:      blobs,
		engine:     engine,
	}, nil
}

func (a *app) Close() {
	if err := a.blobs.Close(); err != nil {
		log.Errorf("Closing history store: %v", err)
	}
}

// engineOptions maps config onto picker options. The GIF backend is only
// wired when enabled.
func engineOptions(cfg *config.Config) picker.Options {
	opts := picker.Options{
		CacheSize:  cfg.Search.CacheSize,
		MaxRecents: cfg.Recent.MaxRecents,
		Incognito:  cfg.Recent.Incognito,
	}
	if !cfg.GIF.Enabled {
		return opts
	}

	client := tenor.NewClient(tenor.Config{
		BaseURL:   cfg.GIF.APIBase,
		APIKey:    cfg.GIF.APIKey,
		ClientKey: cfg.GIF.ClientKey,
		Limit:     cfg.GIF.PageSize,
		Timeout:   cfg.GIF.FetchTimeout(),
	})
	opts.Fetcher = client
	opts.Lookup = client
	opts.Monitor = client
	opts.Paging = paging.Options{
		Threshold:      float64(cfg.GIF.PrefetchThreshold),
		Timeout:        cfg.GIF.FetchTimeout(),
		ScrollInterval: cfg.GIF.ScrollInterval(),
	}
	opts.ValidationInterval = cfg.GIF.ValidationInterval()
	return opts
}

// resolveDataDir finds the catalog directory relative to the binary, falling
// back to the flag value as given.
func resolveDataDir(dir string) string {
	pr, err := utils.NewPathResolver(AppName)
	if err != nil {
		log.Warnf("Failed to initialize path resolver: %v", err)
		return dir
	}
	return pr.GetDataDir(dir, catalog.IsCatalogFile)
}

// withApp builds the app, runs fn and releases the app on return or signal.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	sigHandler(a.Close)
	defer a.Close()
	return fn(cmd.Context(), a)
}

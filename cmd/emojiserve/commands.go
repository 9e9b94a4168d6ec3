package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bastiangx/emojiserve/internal/cli"
	"github.com/bastiangx/emojiserve/internal/logger"
	"github.com/bastiangx/emojiserve/pkg/catalog"
	"github.com/bastiangx/emojiserve/pkg/config"
	"github.com/bastiangx/emojiserve/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the IPC protocol on stdin/stdout",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run one search and print the hits as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive prompt for testing and debugging",
	Args:  cobra.NoArgs,
	RunE:  runREPL,
}

var recentsCmd = &cobra.Command{
	Use:   "recents",
	Short: "Print or clear the history of a category",
	Args:  cobra.NoArgs,
	RunE:  runRecents,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the active config, or rebuild it with defaults",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show current version",
	Args:  cobra.NoArgs,
	Run:   runVersion,
}

func init() {
	searchCmd.Flags().String("category", string(catalog.CategoryEmoji), "Category to search (emoji, symbol, emoticon)")
	searchCmd.Flags().Int("limit", 0, "Number of hits to return (default from config)")

	replCmd.Flags().Int("limit", 0, "Number of hits to show (default from config)")

	recentsCmd.Flags().String("category", string(catalog.CategoryEmoji), "Category of the history")
	recentsCmd.Flags().Bool("clear", false, "Clear the history instead of printing it")

	configCmd.Flags().Bool("rebuild", false, "Overwrite the default config file with defaults")

	rootCmd.AddCommand(serveCmd, searchCmd, replCmd, recentsCmd, configCmd, versionCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		log.Debug("spawning IPC")
		srv, err := server.NewServer(a.engine, a.cfg, a.configPath)
		if err != nil {
			return err
		}
		showStartupInfo(a)
		return srv.Start(ctx)
	})
}

func runSearch(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("category")
	limit, _ := cmd.Flags().GetInt("limit")

	category, err := catalog.ParseCategory(name)
	if err != nil {
		return err
	}
	return withApp(cmd, func(_ context.Context, a *app) error {
		if limit < 1 {
			limit = a.cfg.Search.DefaultLimit
		}
		hits, err := a.engine.Search(category, strings.Join(args, " "), limit)
		if err != nil {
			return err
		}
		return printJSON(hits)
	})
}

func runREPL(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	return withApp(cmd, func(_ context.Context, a *app) error {
		if limit < 1 {
			limit = a.cfg.Search.DefaultLimit
		}
		log.SetReportTimestamp(false)
		log.Debug("Input info:", "limit", limit, "dataDir", a.dataDir)
		return cli.NewInputHandler(a.engine, limit).Start()
	})
}

func runRecents(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("category")
	clearHistory, _ := cmd.Flags().GetBool("clear")

	category, err := catalog.ParseCategory(name)
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if clearHistory {
			return a.engine.ClearRecents(category)
		}
		if category == catalog.CategoryGIF {
			a.engine.ValidateGIFHistory(ctx)
		}
		items, err := a.engine.Recents(category)
		if err != nil {
			return err
		}
		return printJSON(items)
	})
}

func runConfig(cmd *cobra.Command, args []string) error {
	rebuild, _ := cmd.Flags().GetBool("rebuild")
	if rebuild {
		if err := config.RebuildConfigFile(); err != nil {
			return fmt.Errorf("failed to rebuild config: %w", err)
		}
		configFlag = ""
	}

	cfg, path, err := config.LoadConfigWithPriority(configFlag)
	if err != nil {
		return err
	}
	fmt.Printf("# %s\n", config.GetActiveConfigPath(path))
	return toml.NewEncoder(os.Stdout).Encode(cfg)
}

func printJSON(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(output))
	return nil
}

func runVersion(cmd *cobra.Command, args []string) {
	banner := logger.NewWithConfig("", log.InfoLevel, false, false, log.TextFormatter)

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	banner.SetStyles(styles)

	banner.Print("")
	banner.Print("[ EmojiServe ] Emoji search and recall for pickers")
	banner.Print("", "version", Version)
	banner.Print("")
	banner.Print("use -h or --help to see available options")
	banner.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process on stderr.
func showStartupInfo(a *app) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)
	defer log.SetLevel(currentLevel)

	fmt.Fprintln(os.Stderr, "============")
	fmt.Fprintln(os.Stderr, " EmojiServe ")
	fmt.Fprintln(os.Stderr, "============")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("data dir: ( %s )", a.dataDir)
	log.Infof("codec: %s, history: %s, gifs: %v", a.cfg.Server.Codec, historyMode(a), a.cfg.GIF.Enabled)
	log.Info("status: ready")
	fmt.Fprintln(os.Stderr, "============")
}

func historyMode(a *app) string {
	if a.cfg.Recent.Incognito {
		return "incognito"
	}
	return a.cfg.Recent.Backend
}

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/notebox"
	"github.com/aretw0/notebox/internal/config"
	"github.com/aretw0/notebox/internal/platform"
)

var (
	verbose    bool
	vaultPath  string
	configPath string
	adapter    string

	cfg config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "notebox",
	Short: "Per-user notes with live sync over a local or shared vault",
	Long: `notebox keeps short notes per user in a document store.
Notes are Markdown files with YAML frontmatter; every change is pushed
to live views such as "notebox watch" and the HTTP API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}

		level := cfg.Level()
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
		return nil
	},
}

// loadConfig resolves the vault and reads notebox.yaml. Flags win over
// the file.
func loadConfig(cmd *cobra.Command) error {
	vault := vaultPath
	if vault == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		if root, err := platform.FindRoot(wd, config.Default().SystemDir); err == nil {
			vault = root
		} else {
			vault = wd
		}
	}

	path := configPath
	if path == "" {
		path = filepath.Join(vault, config.FileName)
	}

	var err error
	cfg, err = config.Load(path)
	if err != nil {
		return err
	}
	if cfg.Vault == "" || cfg.Vault == "." || vaultPath != "" {
		cfg.Vault = vault
	} else if !filepath.IsAbs(cfg.Vault) {
		cfg.Vault = filepath.Join(filepath.Dir(path), cfg.Vault)
	}
	if cmd.Flags().Changed("adapter") {
		cfg.Adapter = adapter
	}
	return cfg.Validate()
}

// openApp builds the app from the loaded config and restores the session.
func openApp(cmd *cobra.Command) (*notebox.App, error) {
	ttl, err := cfg.SessionTTL()
	if err != nil {
		return nil, err
	}

	opts := []notebox.Option{
		notebox.WithLogger(slog.Default()),
		notebox.WithAdapter(cfg.Adapter),
		notebox.WithSystemDir(cfg.SystemDir),
		notebox.WithEventBuffer(cfg.EventBuffer),
		notebox.WithSessionTTL(ttl),
		notebox.WithPlatform(cfg.Platform),
		notebox.WithWatcherErrorHandler(func(err error) {
			slog.Warn("vault watcher", "error", err)
		}),
	}
	if cfg.Session.Secret != "" {
		opts = append(opts, notebox.WithSessionKey([]byte(cfg.Session.Secret)))
	}

	app, err := notebox.New(cfg.Vault, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open vault: %w", err)
	}
	app.Start(cmd.Context())
	return app, nil
}

// requireScope returns the logged-in user's scope.
func requireScope(app *notebox.App) (notebox.Scope, error) {
	scope, err := app.Scope()
	if err != nil {
		return "", fmt.Errorf("%w: run \"notebox login\" first", err)
	}
	return scope, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&vaultPath, "vault", "", "Vault directory (default: nearest vault root or working directory)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: <vault>/notebox.yaml)")
	rootCmd.PersistentFlags().StringVar(&adapter, "adapter", "fs", "Storage adapter: fs or memory")
}

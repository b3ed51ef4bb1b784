package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/yads-project/yads/components/assets"
	"github.com/yads-project/yads/internal/config"
	"github.com/yads-project/yads/internal/logger"
)

var (
	envFile    string
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "yads",
	Short: "yads web project",
	Long: `yads serves the web project and bundles its maintenance commands:
creating users, inspecting the vite manifest and generating a starter
template from this repository.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "optional JSON settings file")

	rootCmd.AddCommand(serveCmd, assetsCmd, createUserCmd, templateCmd)
}

// loadSettings reads configuration and builds the process logger from it.
func loadSettings() (*config.Config, *slog.Logger, error) {
	bootstrap := logger.New("info", "text")
	cfg, err := config.Load(config.LoadOptions{
		EnvFile:    envFile,
		ConfigFile: configFile,
		Logger:     bootstrap,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("load settings: %w", err)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)
	return cfg, log, nil
}

func newResolver(cfg *config.Config, log *slog.Logger) *assets.Resolver {
	return assets.NewResolver(os.DirFS(cfg.StaticRoot), assets.Config{
		Debug:           cfg.Debug,
		UseDevServer:    cfg.UseVite,
		DevServerURL:    cfg.ViteURL,
		StaticURL:       cfg.StaticURL,
		RetryFailedLoad: cfg.ManifestRetry,
	}, log)
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"chroma/internal/app"
	"chroma/internal/config"
	"chroma/internal/logger"
)

type flags struct {
	configPath string
	logLevel   string
	bridgeAddr string
	noBridge   bool
}

var opts flags

var rootCmd = &cobra.Command{
	Use:           "chroma",
	Short:         "Chroma: palette workbench",
	Long:          `Chroma is a desktop palette workbench. This binary hosts the window, the native menu and the front-end bridge.`,
	Version:       app.AppVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := resolveConfig(opts)
		if err != nil {
			return err
		}

		log, err := logger.New(cfg.LogLevel, cfg.JSONLogs)
		if err != nil {
			return err
		}

		application, err := app.New(cmd.Context(), cfg, log)
		if err != nil {
			return fmt.Errorf("startup failed: %w", err)
		}
		return application.Run()
	},
}

func init() {
	rootCmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to a TOML config file")
	rootCmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&opts.bridgeAddr, "bridge-addr", "", "Listen address for the front-end bridge")
	rootCmd.Flags().BoolVar(&opts.noBridge, "no-bridge", false, "Do not start the front-end bridge")
}

// resolveConfig loads the config file and environment, then applies flags.
func resolveConfig(f flags) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, err
	}

	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if f.bridgeAddr != "" {
		cfg.Bridge.Addr = f.bridgeAddr
	}
	if f.noBridge {
		cfg.Bridge.Enabled = false
	}

	return cfg, cfg.Validate()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "chroma: %v\n", err)
		os.Exit(1)
	}
}

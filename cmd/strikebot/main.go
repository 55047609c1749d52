package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"strikebot/internal/app"
	"strikebot/internal/config"
	"strikebot/internal/logger"
)

const envConfigPath = "STRIKEBOT_CONFIG"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "strikebot",
	Short: "Hourly strike-market trading engine",
	Long: `strikebot picks the nearest-settling strike market of a crypto series once
per hour, fuses price distance with technical signals into a side and a
confidence, runs the risk gate and, when execution is enabled, places a
signed order.`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the hourly scheduler and the status server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, closeLog, err := loadConfig(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer closeLog()

		a, err := app.NewApp(cfg, app.WithConfigPath(configPath))
		if err != nil {
			return fmt.Errorf("init app: %w", err)
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return a.Run(ctx)
	},
}

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single cycle now and print its report",
	Long: `Run one full cycle immediately, ignoring the trigger minute. The report is
printed as JSON on stdout; logs go to stderr and the log file. A cycle that
ends without an order still exits 0.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, closeLog, err := loadConfig(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer closeLog()

		a, err := app.NewApp(cfg)
		if err != nil {
			return fmt.Errorf("init app: %w", err)
		}
		defer a.Close()
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rep := a.RunOnce(ctx)
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration with secrets redacted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return cfg.Redacted().Dump(cmd.OutOrStdout())
	},
}

func init() {
	def := os.Getenv(envConfigPath)
	if def == "" {
		def = "configs/config.yaml"
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", def, "Path to the config file (env "+envConfigPath+")")
	rootCmd.AddCommand(runCmd, onceCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the config and points logging at console plus the
// configured log file.
func loadConfig(console io.Writer) (*config.Config, func(), error) {
	log.SetOutput(console)
	logger.SetOutput(console)
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logFile, err := setupLogOutput(cfg.App.LogPath, console)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger.Infof("config loaded: env=%s path=%s", cfg.App.Env, configPath)
	return cfg, func() {
		if logFile != nil {
			_ = logFile.Close()
		}
	}, nil
}

func setupLogOutput(path string, console io.Writer) (*os.File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, nil
	}
	dir := filepath.Dir(trimmed)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	mw := io.MultiWriter(console, file)
	log.SetOutput(mw)
	logger.SetOutput(mw)
	return file, nil
}

package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alecf/manimator/internal/cache"
	"github.com/alecf/manimator/internal/config"
	"github.com/alecf/manimator/internal/render"
	"github.com/alecf/manimator/internal/server"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the animation HTTP service",
		Long: `Run the HTTP service.

Endpoints:
  GET  /health               liveness probe
  POST /generate-animation   {"stepText": "...", "stepNumber": 1, "topic": "general"}
  GET  /video/{filename}     cached MP4
  GET  /metrics              Prometheus metrics

POST /generate-animation answers 400 when stepText is missing or empty and
also when the body is not valid JSON; other failures answer 500.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			logger := newLogger(cfg.LogLevel, cfg.LogFormat)
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, err := newPipeline(ctx, cfg, logger, nil)
			if err != nil {
				return err
			}
			if _, err := p.invoker.LookPath(); err != nil {
				logger.Warn("renderer not found on PATH, renders will fail",
					zap.String("command", cfg.Renderer.Command), zap.Error(err))
			}

			opts := server.DefaultOptions()
			opts.Addr = fmt.Sprintf(":%d", cfg.Port)
			opts.CORSOrigins = cfg.CORSOrigins

			logger.Info("manimator starting",
				zap.String("addr", opts.Addr),
				zap.String("provider", p.provider),
				zap.String("model", p.model),
				zap.String("video_dir", p.cache.Dir()),
			)
			return server.New(p.service, p.cache, p.metrics, opts, logger).Run(ctx)
		},
	}
}

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Long: `Write the default configuration, adjusted by any flags given, to the
config file. Edit it afterwards to change the renderer or model settings:
  ~/.config/manimator/config.toml (Linux/others)
  ~/Library/Application Support/manimator/config.toml (macOS)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			path := cfgFile
			if path == "" {
				path = config.GetConfigPath()
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
			}

			cfg := config.Default()
			cfg.ApplyFlags()
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			if err := config.Save(cfg, path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Configuration saved to %s\n", path)
			fmt.Fprintf(out, "  Provider: %s\n", cfg.Model.Provider)
			fmt.Fprintf(out, "  Model:    %s\n", cfg.Model.Model)
			if env := config.APIKeyEnv(cfg.Model.Provider); env != "" {
				fmt.Fprintf(out, "\nSet your API key with: export %s=...\n", env)
			}
			return nil
		},
	}
	cmd.Flags().Bool("force", false, "overwrite an existing config file")
	return cmd
}

func testConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test-config",
		Short: "Check credentials, renderer and video directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			hasErrors := false

			fmt.Fprintf(out, "Provider %s (%s)... ", cfg.Model.Provider, cfg.Model.Model)
			if env := config.APIKeyEnv(cfg.Model.Provider); env != "" && cfg.GetAPIKey() == "" {
				fmt.Fprintf(out, "❌ Missing %s\n", env)
				hasErrors = true
			} else {
				fmt.Fprintln(out, "✓")
			}

			invoker := render.NewInvoker(render.Options{Command: cfg.Renderer.Command}, nil)
			fmt.Fprintf(out, "Renderer %s... ", cfg.Renderer.Command)
			if path, err := invoker.LookPath(); err != nil {
				fmt.Fprintln(out, "❌ Not found on PATH")
				hasErrors = true
			} else {
				fmt.Fprintf(out, "✓ %s\n", path)
			}

			videoDir := cfg.GetVideoDir()
			fmt.Fprintf(out, "Video directory %s... ", videoDir)
			if err := checkWritable(videoDir); err != nil {
				fmt.Fprintf(out, "❌ %v\n", err)
				hasErrors = true
			} else {
				fmt.Fprintln(out, "✓")
			}

			if hasErrors {
				return errors.New("configuration has issues")
			}

			fmt.Fprintln(out, "\n✓ Configuration looks good")
			return nil
		},
	}
}

func cacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cache-stats",
		Short: "Show cache statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			c := cache.New(cfg.GetVideoDir())
			stats, err := c.GetStats()
			if err != nil {
				return fmt.Errorf("failed to get cache stats: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cache Statistics:\n")
			fmt.Fprintf(out, "  Total videos:     %d\n", stats.TotalEntries)
			fmt.Fprintf(out, "  Total size:       %.2f MB\n", float64(stats.TotalSizeBytes)/(1024.0*1024.0))

			if stats.OldestEntry != nil {
				fmt.Fprintf(out, "  Oldest video:     %s\n", stats.OldestEntry.Format("2006-01-02 15:04:05"))
			}
			if stats.NewestEntry != nil {
				fmt.Fprintf(out, "  Newest video:     %s\n", stats.NewestEntry.Format("2006-01-02 15:04:05"))
			}

			fmt.Fprintf(out, "  Video directory:  %s\n", c.Dir())
			return nil
		},
	}
}

func clearCacheCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-cache",
		Short: "Delete all cached videos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			removed, err := cache.New(cfg.GetVideoDir()).Clear()
			if err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached videos\n", removed)
			return nil
		},
	}
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/alecf/manimator/internal/config"
)

var (
	cfgFile string
	verbose bool
	debug   bool
	quiet   bool
)

func Execute(version, commit, date string) error {
	return newRootCmd(version, commit, date).Execute()
}

func newRootCmd(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "manimator <command>",
		Short: "LLM-generated Manim animations for lesson steps",
		Long: `manimator turns a short lesson step into a rendered Manim video.
A language model writes the scene, the manim CLI renders it, and the
result is cached by content hash and served over HTTP.

Example:
  manimator serve --port 5000
  manimator render --topic physics "a ball rolls down an inclined plane"`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/manimator/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show operation details")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress messages")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "debug logging and full prompts")
	rootCmd.PersistentFlags().Int("port", 0, "HTTP port (default 5000)")
	rootCmd.PersistentFlags().String("video-dir", "", "directory for cached videos")
	rootCmd.PersistentFlags().String("provider", "", "LLM provider: gemini, openai, anthropic, ollama")
	rootCmd.PersistentFlags().String("model", "", "model name (default depends on provider)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(renderCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(testConfigCmd())
	rootCmd.AddCommand(cacheStatsCmd())
	rootCmd.AddCommand(clearCacheCmd())

	// Bind flags to viper; environment variables are read by config.Load
	for _, name := range []string{"port", "video-dir", "provider", "model", "log-level"} {
		viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	return rootCmd
}

// loadConfig resolves file, environment and flags into one validated Config
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ApplyFlags()
	if debug {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/msgtext/entdecode/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	homeDir string
	verbose bool
	cfg     *config.Config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "entdecode",
	Short: "Decode HTML character references in mail and feed text",
	Long: `entdecode decodes HTML character references such as &amp;, &eacute;,
&#233; and &#xE9; in text taken from e-mail headers, message bodies and
RSS/Atom feeds.

It can be used as a filter, to inspect .eml files, or as an HTTP or MCP
service.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}))

		// --home is passed through so it influences where config.toml is
		// loaded from, like ENTDECODE_HOME.
		var err error
		cfg, err = config.Load(cfgFile, homeDir)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger.Debug("config loaded", "path", cfg.ConfigFilePath())
		return nil
	},
}

// Execute runs the root command with a background context.
// Prefer ExecuteContext for signal-aware execution.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with the given context,
// enabling graceful shutdown when the context is cancelled.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.entdecode/config.toml)")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "home directory (overrides ENTDECODE_HOME)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

package cmd

import (
	"fmt"
	"time"

	"github.com/canvas-downloader/canvas-downloader/internal/pkg/config"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/log"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/reactor"
	"github.com/spf13/cobra"
)

var cfg *config.Config

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "canvas-downloader",
		Short: "Download the content of your Canvas LMS courses",
		Long: `canvas-downloader mirrors the files, pages, modules, assignments, discussions
and announcements of the Canvas courses you are enrolled in to a local folder.
Files already present locally are kept, newer remote versions can be fetched
with --download-newer.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Initialize config here, after cobra has parsed command line flags
			config.BindFlags(cmd.Flags())
			if err := config.InitConfig(); err != nil {
				return fmt.Errorf("error initializing config: %w", err)
			}

			cfg = config.Get()

			return startLogging(cfg)
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().String("config", "", "Credentials file (default is ./canvas-downloader.toml, then $XDG_CONFIG_HOME/canvas-downloader/config.toml).")
	rootCmd.PersistentFlags().String("canvas-url", "", "Base URL of the Canvas instance, e.g. https://canvas.example.edu.")
	rootCmd.PersistentFlags().String("canvas-token", "", "Canvas API access token.")

	// Logging flags
	rootCmd.PersistentFlags().String("log-level", "info", "stdout log level (debug, info, warn, error).")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging. (implies --log-level=debug)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON.")
	rootCmd.PersistentFlags().Bool("no-stdout-log", false, "Disable stdout logging.")
	rootCmd.PersistentFlags().String("log-file-output-dir", "", "Directory to write rotated log files to.")
	rootCmd.PersistentFlags().String("log-file-prefix", "canvas-downloader", "Prefix of the log file names.")
	rootCmd.PersistentFlags().Duration("log-file-rotation", 6*time.Hour, "Log file rotation period.")

	// Network flags
	rootCmd.PersistentFlags().Int("max-concurrent-requests", reactor.DefaultGateCapacity, "Maximum number of concurrent API requests and downloads.")
	rootCmd.PersistentFlags().Int("max-retry", 3, "Maximum number of attempts of a request.")
	rootCmd.PersistentFlags().Duration("retry-base-delay", 500*time.Millisecond, "Base delay of the exponential retry backoff.")
	rootCmd.PersistentFlags().Duration("retry-max-delay", 30*time.Second, "Maximum delay between two attempts of a request.")
	rootCmd.PersistentFlags().Duration("http-timeout", 10*time.Second, "Timeout of a single API request, and of a stalled download.")
	rootCmd.PersistentFlags().Int("per-page", 100, "Page size requested from list endpoints.")

	rootCmd.AddCommand(getCMD())
	rootCmd.AddCommand(listCMD())
	rootCmd.AddCommand(versionCMD())

	return rootCmd
}

// Run the root command
func Run() error {
	defer log.Stop()

	return newRootCmd().Execute()
}

package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/nchapman/onboard/internal/config"
	"github.com/nchapman/onboard/internal/logs"
	"github.com/nchapman/onboard/internal/ui"
	"github.com/spf13/cobra"
)

var (
	verbose  bool
	hostFlag string

	// logFile is the application log, open for the life of a command.
	logFile *logs.RotatingWriter
)

var rootCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Get up and running with local models",
	Long: `Onboard sets up Ollama on this machine: it installs the command line,
then lets you download models with live progress.

Run it without arguments to start the guided setup.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := config.EnsureDirectories(); err != nil {
			ui.Fatal("Failed to create directories: %v", err)
		}
		initLogging()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			logFile.Close()
		}
	},
	Run: runOnboard,
}

// initLogging sends logs to the application log file, and to stderr as well
// when --verbose is set.
func initLogging() {
	var w io.Writer = io.Discard
	f, err := logs.OpenRotatingWriter(logs.AppLogPath())
	if err == nil {
		logFile = f
		w = f
	}
	if verbose {
		if logFile != nil {
			w = io.MultiWriter(logFile, os.Stderr)
		} else {
			w = os.Stderr
		}
	}
	logs.InitLogger(w, verbose)
	if err != nil {
		logs.Warn("Application log unavailable", "err", err)
	}
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "setup", Title: "Setup Commands:"},
		&cobra.Group{ID: "model", Title: "Model Commands:"},
		&cobra.Group{ID: "config", Title: "Configuration Commands:"},
	)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&hostFlag, "host", "", "Ollama address (overrides OLLAMA_HOST and config)")
}

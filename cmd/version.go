package cmd

import (
	"fmt"
	"runtime"

	"github.com/nchapman/onboard/internal/config"
	"github.com/nchapman/onboard/internal/logs"
	"github.com/nchapman/onboard/internal/onboard"
	"github.com/nchapman/onboard/internal/ui"
	"github.com/nchapman/onboard/internal/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Show version information",
	GroupID: "config",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(ui.Bold(fmt.Sprintf("Onboard %s (%s/%s)", version.Version, runtime.GOOS, runtime.GOARCH)))

		cfg := loadConfig()
		fmt.Printf("Ollama host: %s\n", newClient(cfg).BaseURL())

		if st, err := onboard.LoadState(cmd.Context()); err == nil && st.FirstRunCompleted {
			fmt.Printf("Setup completed %s\n", formatTime(st.CompletedAt))
		} else {
			fmt.Println(ui.Muted("Setup not completed. Run 'onboard' to start."))
		}

		fmt.Println()
		fmt.Println(ui.Bold("Paths:"))
		fmt.Printf("  Config: %s\n", ui.Muted(config.ConfigPath()))
		fmt.Printf("  State:  %s\n", ui.Muted(onboard.DefaultStore().Path()))
		fmt.Printf("  Logs:   %s\n", ui.Muted(logs.AppLogPath()))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

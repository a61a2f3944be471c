package cmd

import (
	"fmt"
	"os"

	"github.com/nchapman/onboard/internal/onboard"
	"github.com/nchapman/onboard/internal/ui"
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:     "install",
	Short:   "Install the ollama command line",
	GroupID: "setup",
	Long: `Link the ollama command into install.target_dir and mark setup as done.

Running it again repairs a stale link.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		installer, err := onboard.NewLinkInstaller(loadConfig())
		if err != nil {
			ui.Fatal("%v", err)
		}

		already, _ := installer.Installed()

		err = ui.WithSpinner("Installing "+installer.Name, func() error {
			return onboard.CompleteInstall(ctx, onboard.DefaultStore(), installer)
		})
		if err != nil {
			explainInstallError(err, installer)
			os.Exit(1)
		}
		if already {
			fmt.Printf("Already installed at %s\n", ui.Bold(installer.Target()))
			return
		}
		fmt.Printf("%s %s\n", ui.Muted("Linked"), installer.Target())
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}

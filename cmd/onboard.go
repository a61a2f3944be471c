package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/nchapman/onboard/internal/config"
	"github.com/nchapman/onboard/internal/ollama"
	"github.com/nchapman/onboard/internal/onboard"
	"github.com/nchapman/onboard/internal/pull"
	"github.com/nchapman/onboard/internal/ui"
	"github.com/spf13/cobra"
)

const welcomeText = `# Welcome to Ollama

Run large language models on your own machine. Nothing you type
leaves this computer.

Setup takes two steps:

1. Install the **ollama** command line
2. Download your first model`

const installText = `# Install the command line

The ` + "`ollama`" + ` command lets you run and manage models from any terminal.
It will be linked into:

    %s

Make sure that directory is on your ` + "`PATH`" + `.`

const downloadText = `# Download a model

Pick a model to get started. A few good choices:

- **llama3.2** (2 GB) for everyday chat on most laptops
- **llama3:8b** (4.7 GB) when you have 16 GB of memory
- **qwen2.5-coder** (4.7 GB) for code

Browse more at https://ollama.com/library`

var startReset bool

var startCmd = &cobra.Command{
	Use:     "start",
	Short:   "Run the guided setup",
	GroupID: "setup",
	Long: `Run the guided setup. It is also what 'onboard' does without arguments.

Once the command line is installed, setup goes straight to model downloads.
Use --reset to start again from the welcome screen.`,
	Args: cobra.NoArgs,
	Run:  runOnboard,
}

func runOnboard(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	cfg := loadConfig()

	if startReset {
		if err := onboard.SaveState(ctx, onboard.State{}); err != nil {
			ui.Fatal("Failed to reset setup: %v", err)
		}
	}

	installer, err := onboard.NewLinkInstaller(cfg)
	if err != nil {
		ui.Fatal("%v", err)
	}
	flow, err := onboard.NewFlow(ctx, onboard.DefaultStore(), installer)
	if err != nil {
		ui.Fatal("Failed to read onboarding state: %v", err)
	}

	for {
		switch flow.Step() {
		case onboard.StepWelcome:
			fmt.Print(ui.RenderMarkdown(welcomeText))
			if !confirmStep("Get started?", "") {
				return
			}
			flow.Next()

		case onboard.StepCLI:
			fmt.Print(ui.RenderMarkdown(fmt.Sprintf(installText, installer.Target())))
			if !confirmStep("Install the command line?", "") {
				fmt.Println(ui.Muted("You can install it later with 'onboard install'."))
				return
			}
			err := ui.WithSpinner("Installing "+installer.Name, func() error {
				return flow.Install(ctx)
			})
			if err != nil {
				explainInstallError(err, installer)
				os.Exit(1)
			}
			fmt.Println()

		case onboard.StepDownloadModels:
			downloadModels(ctx, cfg)
			return
		}
	}
}

// confirmStep asks to continue. A dismissed prompt means no.
func confirmStep(title, description string) bool {
	ok, err := ui.Confirm(title, description, true)
	if err != nil && !errors.Is(err, ui.ErrAborted) {
		ui.PrintError("%v", err)
	}
	return err == nil && ok
}

// downloadModels shows the local models and pulls models until the user is
// done.
func downloadModels(ctx context.Context, cfg *config.Config) {
	client := newClient(cfg)

	fmt.Print(ui.RenderMarkdown(downloadText))

	models, err := listModels(ctx, client)
	if err != nil {
		printClientError(client, err)
		os.Exit(1)
	}
	if len(models) > 0 {
		printModels(models)
		fmt.Println()
	}

	plain := !isatty.IsTerminal(os.Stdout.Fd())
	for {
		name, err := ui.PromptModelName("Model to download")
		if err != nil {
			if !errors.Is(err, ui.ErrAborted) {
				ui.PrintError("%v", err)
			}
			return
		}

		if ollama.ContainsModel(models, name) {
			fmt.Printf("%s is already downloaded.\n", ui.Bold(name))
		} else {
			res := runPull(ctx, client, name, pullOptions{
				idleTimeout: cfg.IdleTimeout(),
				plain:       plain,
			})
			if res.State == pull.StateCompleted {
				models = res.Models
			}
		}

		fmt.Println()
		if !confirmStep("Download another model?", "") {
			fmt.Println(ui.Success(ui.IconCheck) + " You're all set. Try 'ollama run " + lastModelHint(models) + "'.")
			return
		}
	}
}

func lastModelHint(models []ollama.Model) string {
	if len(models) == 0 {
		return "llama3.2"
	}
	return models[0].Name
}

func explainInstallError(err error, installer *onboard.LinkInstaller) {
	switch {
	case errors.Is(err, onboard.ErrTargetExists):
		ui.PrintError("%s already exists and is not a link", installer.Target())
		fmt.Println("\nMove it aside or change install.target_dir in your config.")
	case errors.Is(err, onboard.ErrSourceMissing):
		ui.PrintError("%v", err)
		fmt.Println("\nSet install.source in your config to the ollama binary.")
	default:
		ui.PrintError("%v", err)
	}
}

func init() {
	startCmd.Flags().BoolVar(&startReset, "reset", false, "Forget completed setup and start from the beginning")
	rootCmd.AddCommand(startCmd)
}

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/nchapman/onboard/internal/ollama"
	"github.com/nchapman/onboard/internal/ui"
	"github.com/spf13/cobra"
)

var rmForce bool

var rmCmd = &cobra.Command{
	Use:     "rm <model>[:tag]",
	Aliases: []string{"delete", "remove"},
	Short:   "Remove a downloaded model",
	GroupID: "model",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]
		ctx := cmd.Context()
		client := newClient(loadConfig())

		models, err := listModels(ctx, client)
		if err != nil {
			printClientError(client, err)
			os.Exit(1)
		}

		var target *ollama.Model
		for i := range models {
			if ollama.SameName(models[i].Name, name) {
				target = &models[i]
				break
			}
		}
		if target == nil {
			ui.PrintError("Model not found: %s", name)
			fmt.Println("\nUse 'onboard list' to see downloaded models.")
			os.Exit(1)
		}

		if !rmForce {
			ok, err := ui.Confirm(
				fmt.Sprintf("Remove %s (%s)?", target.Name, ui.FormatBytes(target.Size)),
				"The model will need to be downloaded again to use it.",
				false,
			)
			if errors.Is(err, ui.ErrAborted) || (err == nil && !ok) {
				fmt.Println(ui.Muted("Cancelled"))
				return
			}
			if err != nil {
				ui.Fatal("%v", err)
			}
		}

		err = ui.WithSpinner("Removing "+target.Name, func() error {
			return client.DeleteModel(ctx, target.Name)
		})
		if err != nil {
			printClientError(client, err)
			os.Exit(1)
		}

		models, err = client.ListModels(ctx)
		if err != nil {
			ui.PrintError("Failed to refresh models: %v", err)
			os.Exit(1)
		}
		fmt.Println()
		printModels(models)
	},
}

func init() {
	rmCmd.Flags().BoolVarP(&rmForce, "force", "f", false, "Skip confirmation")
	rootCmd.AddCommand(rmCmd)
}

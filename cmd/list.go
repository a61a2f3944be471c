package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List downloaded models",
	GroupID: "model",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient(loadConfig())

		models, err := listModels(cmd.Context(), client)
		if err != nil {
			printClientError(client, err)
			os.Exit(1)
		}
		printModels(models)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/nchapman/onboard/internal/config"
	"github.com/nchapman/onboard/internal/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	showPath    bool
	showConfig  bool
	resetConfig bool
)

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Open or display configuration",
	GroupID: "config",
	Long: `Open the configuration file in your default editor, or display config information.

Examples:
  onboard config           # Open config in $EDITOR
  onboard config --path    # Print config file path
  onboard config --show    # Print current configuration
  onboard config --reset   # Reset config to defaults`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		configPath := config.ConfigPath()

		switch {
		case showPath:
			fmt.Println(configPath)
		case showConfig:
			printConfig()
		case resetConfig:
			resetToDefaults(configPath)
		default:
			openInEditor(configPath)
		}
	},
}

func resetToDefaults(path string) {
	if err := config.Save(config.DefaultConfig()); err != nil {
		ui.Fatal("Failed to reset config: %v", err)
	}
	fmt.Printf("%s Config reset to defaults at %s\n", ui.Success(ui.IconCheck), ui.Muted(path))
}

// printConfig prints the effective configuration, with the resolved daemon
// address when OLLAMA_HOST or --host overrides the file.
func printConfig() {
	cfg := loadConfig()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		ui.Fatal("Failed to format config: %v", err)
	}
	fmt.Print(string(data))

	if host := newClient(cfg).BaseURL(); host != config.NormalizeHost(cfg.Ollama.Host) {
		fmt.Printf("\n%s %s\n", ui.Muted("# effective host:"), host)
	}
}

func openInEditor(path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := config.Save(config.DefaultConfig()); err != nil {
			ui.Fatal("Failed to create config file: %v", err)
		}
		fmt.Printf("Created default config at %s\n\n", ui.Muted(path))
	}

	editor := getEditor()
	if editor == "" {
		ui.PrintError("No editor found. Set $EDITOR or $VISUAL environment variable.")
		fmt.Printf("\nConfig file location: %s\n", ui.Muted(path))
		os.Exit(1)
	}

	cmd := exec.Command(editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		ui.Fatal("Failed to open editor: %v", err)
	}
}

func getEditor() string {
	// VISUAL first, for full-screen editors
	if editor := os.Getenv("VISUAL"); editor != "" {
		return editor
	}
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}

	for _, editor := range []string{"nano", "vim", "vi"} {
		if path, err := exec.LookPath(editor); err == nil {
			return path
		}
	}
	return ""
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().BoolVar(&showPath, "path", false, "Print config file path")
	configCmd.Flags().BoolVar(&showConfig, "show", false, "Print current configuration")
	configCmd.Flags().BoolVar(&resetConfig, "reset", false, "Reset config to defaults")
	configCmd.MarkFlagsMutuallyExclusive("path", "show", "reset")
}

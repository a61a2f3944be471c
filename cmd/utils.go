package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nchapman/onboard/internal/config"
	"github.com/nchapman/onboard/internal/ollama"
	"github.com/nchapman/onboard/internal/pull"
	"github.com/nchapman/onboard/internal/ui"
)

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		ui.Fatal("Failed to load config: %v", err)
	}
	return cfg
}

// newClient builds a daemon client. --host wins over OLLAMA_HOST, which
// wins over the config file.
func newClient(cfg *config.Config) *ollama.Client {
	if hostFlag != "" {
		return ollama.New(config.NormalizeHost(hostFlag), cfg.RequestTimeout())
	}
	return ollama.NewClient(cfg)
}

// listModels fetches local models behind a spinner.
func listModels(ctx context.Context, client *ollama.Client) ([]ollama.Model, error) {
	return ui.Spin("Loading models", func() ([]ollama.Model, error) {
		return client.ListModels(ctx)
	})
}

// printClientError prints err with a hint for the common causes.
func printClientError(client *ollama.Client, err error) {
	msg, hint := explainClientError(client.BaseURL(), err)
	ui.PrintError("%s", msg)
	if hint != "" {
		fmt.Println("\n" + hint)
	}
}

// explainClientError returns the message to show for err and an optional
// hint on how to fix it. host is the daemon address in use.
func explainClientError(host string, err error) (msg, hint string) {
	var remote *pull.RemoteError
	switch {
	case errors.Is(err, context.Canceled):
		return "Cancelled", ""
	case errors.Is(err, pull.ErrIdleTimeout):
		return err.Error(), "The download stalled. Check your network and try again."
	case errors.As(err, &remote):
		return remote.Message, ""
	case errors.Is(err, pull.ErrIncompleteStream):
		return "The download ended unexpectedly.", "Run the same command to resume."
	case errors.Is(err, ollama.ErrNotFound):
		return err.Error(), "Check the model name, e.g. 'llama3' or 'llama3:8b'."
	case errors.Is(err, ollama.ErrUnsupportedTransport):
		return err.Error(), "The connection to Ollama cannot stream progress. Check for a proxy in between."
	case errors.Is(err, ollama.ErrTransport):
		return err.Error(), fmt.Sprintf("Is Ollama running at %s? Start it with 'ollama serve'.", host)
	case errors.Is(err, ollama.ErrProtocol):
		return err.Error(), "Ollama sent an unexpected response. Make sure it is up to date."
	default:
		return err.Error(), ""
	}
}

// printModels renders the local model table.
func printModels(models []ollama.Model) {
	if len(models) == 0 {
		fmt.Println(ui.Muted("No models downloaded yet"))
		fmt.Println()
		fmt.Println("Use 'onboard pull <model>' to download one, e.g. 'onboard pull llama3'")
		return
	}

	tbl := ui.NewModelTable()
	for _, m := range models {
		tbl.Add(ui.ModelRow{
			Repo:     m.Repo(),
			Tag:      m.Tag(),
			Size:     m.Size,
			Modified: formatTime(m.ModifiedAt),
		})
	}

	fmt.Print(tbl.Render())
	fmt.Println()
	fmt.Printf("%s %d models, %s\n", ui.Bold("Total:"), tbl.Len(), ui.FormatBytes(tbl.TotalSize()))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	diff := time.Since(t)

	switch {
	case diff < time.Hour:
		return "Just now"
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2006")
	}
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return "under a second"
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	default:
		return d.Round(time.Second).String()
	}
}

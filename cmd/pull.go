package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/nchapman/onboard/internal/config"
	"github.com/nchapman/onboard/internal/logs"
	"github.com/nchapman/onboard/internal/ollama"
	"github.com/nchapman/onboard/internal/progress"
	"github.com/nchapman/onboard/internal/pull"
	"github.com/nchapman/onboard/internal/ui"
	"github.com/spf13/cobra"
)

var (
	pullLog         bool
	pullIdleTimeout time.Duration
	pullPlain       bool
	pullForce       bool
)

var pullCmd = &cobra.Command{
	Use:     "pull <model>[:tag]",
	Short:   "Download a model",
	GroupID: "model",
	Long: `Download a model through the local Ollama daemon.

Progress is shown per layer. Press Ctrl+C to cancel; running the same
command again resumes the download.

Examples:
  onboard pull llama3            # Download the latest tag
  onboard pull llama3:8b         # Download a specific tag
  onboard pull llama3 --plain    # Line-based progress for logs and pipes`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]
		if err := ui.ValidateModelName(name); err != nil {
			ui.Fatal("%v", err)
		}

		cfg := loadConfig()
		client := newClient(cfg)
		ctx := cmd.Context()

		if !pullForce {
			models, err := client.ListModels(ctx)
			if err != nil {
				printClientError(client, err)
				os.Exit(1)
			}
			if ollama.ContainsModel(models, name) {
				fmt.Printf("%s is already downloaded. Use --force to pull it again.\n", ui.Bold(name))
				return
			}
		}

		idle := cfg.IdleTimeout()
		if cmd.Flags().Changed("idle-timeout") {
			idle = pullIdleTimeout
		}

		res := runPull(ctx, client, name, pullOptions{
			idleTimeout: idle,
			plain:       pullPlain || !isatty.IsTerminal(os.Stdout.Fd()),
			writeLog:    pullLog,
		})
		if res.State != pull.StateCompleted {
			os.Exit(1)
		}
	},
}

type pullOptions struct {
	idleTimeout time.Duration
	plain       bool
	writeLog    bool
}

// runPull downloads name and reports the outcome. On success it prints the
// refreshed model list.
func runPull(ctx context.Context, client *ollama.Client, name string, opts pullOptions) pull.Result {
	logger := logs.Logger()
	if opts.writeLog {
		w, err := logs.NewRotatingWriter(logs.PullLogPath(name))
		if err != nil {
			logs.Warn("Pull log unavailable", "model", name, "err", err)
		} else {
			defer w.Close()
			logger = log.NewWithOptions(w, log.Options{
				Level:           log.DebugLevel,
				ReportTimestamp: true,
			})
			fmt.Println(ui.Muted("Logging to " + w.Path()))
		}
	}

	var res pull.Result
	if opts.plain {
		res = pullPlainMode(ctx, client, name, opts.idleTimeout, logger)
	} else {
		res = pullInteractive(ctx, client, name, opts.idleTimeout, logger)
	}
	reportPull(client, res)
	return res
}

func pullInteractive(ctx context.Context, client *ollama.Client, name string, idle time.Duration, logger *log.Logger) pull.Result {
	relayCtx, stopRelay := context.WithCancel(ctx)
	defer stopRelay()
	relay := ui.NewSnapshotRelay(100 * time.Millisecond)

	var p *tea.Program
	session := pull.NewSession(client, client, pull.Options{
		IdleTimeout: idle,
		Logger:      logger,
		OnProgress:  relay.Publish,
		OnStatus: func(status string) {
			p.Send(ui.PullStatusMsg{Status: status})
		},
		OnDone: func(r pull.Result) {
			stopRelay()
			p.Send(ui.PullDoneMsg{Result: r})
		},
	})

	p = tea.NewProgram(ui.NewPullModel(name, session.Cancel), tea.WithContext(ctx))
	go relay.Run(relayCtx, func(s progress.Snapshot) {
		p.Send(ui.PullProgressMsg{Snapshot: s})
	})

	if err := session.Start(ctx, name); err != nil {
		ui.Fatal("%v", err)
	}
	if _, err := p.Run(); err != nil {
		logs.Debug("Pull view exited", "err", err)
		session.Cancel()
	}
	return session.Wait()
}

func pullPlainMode(ctx context.Context, client *ollama.Client, name string, idle time.Duration, logger *log.Logger) pull.Result {
	fmt.Printf("Pulling %s\n", name)

	printer := newPlainPrinter()
	session := pull.NewSession(client, client, pull.Options{
		IdleTimeout: idle,
		Logger:      logger,
		OnProgress:  printer.progress,
		OnStatus: func(status string) {
			fmt.Println(status)
		},
	})

	res, _ := session.Pull(ctx, name)
	return res
}

// plainPrinter prints a line each time an artifact crosses a tenth of its
// size, so logs stay readable for large downloads.
type plainPrinter struct {
	last map[string]int
}

func newPlainPrinter() *plainPrinter {
	return &plainPrinter{last: make(map[string]int)}
}

func (p *plainPrinter) progress(s progress.Snapshot) {
	for digest, e := range s.All {
		pct, ok := e.Percent()
		if !ok {
			continue
		}
		step := int(min(pct, 100) / 10)
		if prev, seen := p.last[digest]; seen && prev >= step {
			continue
		}
		p.last[digest] = step
		fmt.Println(ui.PlainProgressLine(digest, e))
	}
}

func reportPull(client *ollama.Client, res pull.Result) {
	fmt.Println()
	switch res.State {
	case pull.StateCompleted:
		sum := res.Snapshot.Summary()
		fmt.Printf("%s Pulled %s (%s in %s)\n", ui.Success(ui.IconCheck), ui.Bold(res.Model),
			ui.FormatBytes(sum.Total), formatDuration(res.Duration()))
		if res.ListErr != nil {
			ui.PrintError("Failed to refresh models: %v", res.ListErr)
			return
		}
		fmt.Println()
		printModels(res.Models)
	default:
		fmt.Printf("%s %s after %s\n", ui.StateBadge(res.State), ui.Bold(res.Model), formatDuration(res.Duration()))
		printClientError(client, res.Err)
	}
}

func init() {
	pullCmd.Flags().BoolVar(&pullLog, "log", false, "Write a per-model pull log")
	pullCmd.Flags().DurationVar(&pullIdleTimeout, "idle-timeout", config.DefaultIdleTimeout, "Abort when no data arrives for this long (0 disables)")
	pullCmd.Flags().BoolVar(&pullPlain, "plain", false, "Print line-based progress instead of the live view")
	pullCmd.Flags().BoolVarP(&pullForce, "force", "f", false, "Pull even if the model is already downloaded")
	rootCmd.AddCommand(pullCmd)
}

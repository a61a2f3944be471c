package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	progressbar "github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nchapman/onboard/internal/progress"
	"github.com/nchapman/onboard/internal/pull"
)

// DigestLabelWidth is how many characters of a digest are shown.
const DigestLabelWidth = 24

const barWidth = 40

func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

// TruncateDigest shortens a digest for display, marking the cut with "...".
func TruncateDigest(digest string) string {
	if len(digest) <= DigestLabelWidth {
		return digest
	}
	return digest[:DigestLabelWidth] + "..."
}

// FormatEntry renders the numeric part of one artifact's progress.
func FormatEntry(e progress.Entry) string {
	pct, ok := e.Percent()
	if !ok {
		return FormatBytes(e.Completed)
	}
	return fmt.Sprintf("%3.0f%%  %s / %s", min(pct, 100), FormatBytes(e.Completed), FormatBytes(e.Total))
}

// PlainProgressLine renders one artifact without terminal control codes.
func PlainProgressLine(digest string, e progress.Entry) string {
	return fmt.Sprintf("%-*s  %s", DigestLabelWidth+3, TruncateDigest(digest), FormatEntry(e))
}

// PullKeyMap holds the key bindings of the pull view.
type PullKeyMap struct {
	Cancel key.Binding
}

func DefaultPullKeyMap() PullKeyMap {
	return PullKeyMap{
		Cancel: key.NewBinding(
			key.WithKeys("ctrl+c", "esc", "q"),
			key.WithHelp("ctrl+c", "cancel"),
		),
	}
}

// Messages the pull view understands.
type (
	PullProgressMsg struct{ Snapshot progress.Snapshot }
	PullStatusMsg   struct{ Status string }
	PullDoneMsg     struct{ Result pull.Result }
)

// PullModel is the live view of a pull: one bar per artifact, keyed by
// truncated digest, plus the latest status line.
type PullModel struct {
	model     string
	keys      PullKeyMap
	bar       progressbar.Model
	snap      progress.Snapshot
	status    string
	cancel    func()
	cancelled bool
	done      bool
	result    pull.Result
}

// NewPullModel creates the view. cancel is invoked off the event loop when
// the cancel key is pressed.
func NewPullModel(model string, cancel func()) PullModel {
	return PullModel{
		model: model,
		keys:  DefaultPullKeyMap(),
		bar: progressbar.New(
			progressbar.WithDefaultGradient(),
			progressbar.WithWidth(barWidth),
			progressbar.WithoutPercentage(),
		),
		status: "starting",
		cancel: cancel,
	}
}

func (m PullModel) Init() tea.Cmd {
	return nil
}

func (m PullModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Cancel) && !m.cancelled && !m.done {
			m.cancelled = true
			m.status = "cancelling"
			cancel := m.cancel
			return m, func() tea.Msg {
				if cancel != nil {
					cancel()
				}
				return nil
			}
		}
	case tea.WindowSizeMsg:
		m.bar.Width = min(barWidth, max(msg.Width-DigestLabelWidth-30, 10))
	case PullProgressMsg:
		m.snap = msg.Snapshot
	case PullStatusMsg:
		if !m.cancelled {
			m.status = msg.Status
		}
	case PullDoneMsg:
		m.done = true
		m.result = msg.Result
		m.snap = msg.Result.Snapshot
		return m, tea.Quit
	}
	return m, nil
}

func (m PullModel) View() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Pulling %s\n", Keyword(m.model))
	if !m.done {
		fmt.Fprintf(&b, "%s\n", Muted(m.status))
	}

	for digest, e := range m.snap.All {
		pct, ok := e.Percent()
		if !ok {
			pct = 0
		}
		label := fmt.Sprintf("%-*s", DigestLabelWidth+3, TruncateDigest(digest))
		fmt.Fprintf(&b, "  %s %s  %s\n", label, m.bar.ViewAs(min(pct, 100)/100), FormatEntry(e))
	}

	if sum := m.snap.Summary(); sum.Artifacts > 1 {
		fmt.Fprintf(&b, "  %s\n", Muted(fmt.Sprintf("%d/%d layers, %s / %s",
			sum.Finished, sum.Artifacts, FormatBytes(sum.Completed), FormatBytes(sum.Total))))
	}

	if !m.done && !m.cancelled {
		fmt.Fprintf(&b, "\n%s\n", Muted(m.keys.Cancel.Help().Key+" to "+m.keys.Cancel.Help().Desc))
	}
	return b.String()
}

// Result returns the outcome delivered by PullDoneMsg.
func (m PullModel) Result() (pull.Result, bool) {
	return m.result, m.done
}

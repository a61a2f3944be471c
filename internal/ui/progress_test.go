package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nchapman/onboard/internal/progress"
	"github.com/nchapman/onboard/internal/pull"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input int64
		want  string
	}{
		{0, "0 B"},
		{500, "500 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1.0 MB"},
		{1024 * 1024 * 1.5, "1.5 MB"},
		{1024 * 1024 * 1024, "1.0 GB"},
		{4661224676, "4.3 GB"},
		{1024 * 1024 * 1024 * 1024, "1.0 TB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := FormatBytes(tt.input)
			if got != tt.want {
				t.Errorf("FormatBytes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTruncateDigest(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"sha256:aa", "sha256:aa"},
		{"sha256:0123456789abcdef01", "sha256:0123456789abcdef0..."},
		{"sha256:6a0746a1ec1aef3e7ec53868f220ff6e389f6f8ef87a01d77c96807de94ca2aa", "sha256:6a0746a1ec1aef3e7..."},
		{strings.Repeat("x", 24), strings.Repeat("x", 24)},
	}

	for _, tt := range tests {
		if got := TruncateDigest(tt.input); got != tt.want {
			t.Errorf("TruncateDigest(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatEntry(t *testing.T) {
	if got := FormatEntry(progress.Entry{Total: 2048, Completed: 1024}); got != " 50%  1.0 KB / 2.0 KB" {
		t.Errorf("FormatEntry() = %q", got)
	}
	if got := FormatEntry(progress.Entry{Completed: 10}); got != "10 B" {
		t.Errorf("FormatEntry(no total) = %q", got)
	}
	if got := FormatEntry(progress.Entry{Total: 10, Completed: 20}); !strings.HasPrefix(got, "100%") {
		t.Errorf("FormatEntry(overshoot) = %q, want clamped percent", got)
	}
}

func TestPlainProgressLine(t *testing.T) {
	line := PlainProgressLine("sha256:6a0746a1ec1aef3e7ec53868f220ff6e", progress.Entry{Total: 100, Completed: 25})
	if !strings.HasPrefix(line, "sha256:6a0746a1ec1aef3e7...") {
		t.Errorf("line = %q", line)
	}
	if !strings.Contains(line, "25%") {
		t.Errorf("line = %q, want percent", line)
	}
	if strings.Contains(line, "\x1b[") {
		t.Error("plain line should not contain escape codes")
	}
}

func snapshotOf(entries ...[3]any) progress.Snapshot {
	a := progress.NewAggregator()
	for _, e := range entries {
		a.Apply(e[0].(string), e[1].(int64), e[2].(int64))
	}
	return a.Snapshot()
}

func TestPullModelView(t *testing.T) {
	m := NewPullModel("llama3:8b", nil)

	view := m.View()
	if !strings.Contains(view, "llama3:8b") || !strings.Contains(view, "starting") {
		t.Errorf("initial view = %q", view)
	}

	snap := snapshotOf(
		[3]any{"sha256:aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", int64(1000), int64(500)},
		[3]any{"sha256:bb", int64(100), int64(100)},
	)
	next, _ := m.Update(PullProgressMsg{Snapshot: snap})
	next, _ = next.Update(PullStatusMsg{Status: "pulling manifest"})
	view = next.View()

	if !strings.Contains(view, "sha256:aaaaaaaaaaaaaaaaa...") {
		t.Errorf("view missing truncated digest: %q", view)
	}
	if !strings.Contains(view, "sha256:bb") || !strings.Contains(view, "pulling manifest") {
		t.Errorf("view = %q", view)
	}
	if !strings.Contains(view, "1/2 layers") {
		t.Errorf("view missing summary: %q", view)
	}
	if strings.Index(view, "sha256:aaa") > strings.Index(view, "sha256:bb") {
		t.Error("digests should render in first-seen order")
	}
}

func TestPullModelCancelKey(t *testing.T) {
	called := make(chan struct{}, 1)
	m := NewPullModel("llama3", func() { called <- struct{}{} })

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("cancel key should return a command")
	}
	if msg := cmd(); msg != nil {
		t.Errorf("cancel command returned %v", msg)
	}
	select {
	case <-called:
	default:
		t.Error("cancel func not invoked")
	}

	pm := next.(PullModel)
	if !pm.cancelled || !strings.Contains(pm.View(), "cancelling") {
		t.Errorf("view after cancel = %q", pm.View())
	}

	// A second press does nothing.
	if _, cmd := pm.Update(tea.KeyMsg{Type: tea.KeyCtrlC}); cmd != nil {
		t.Error("second cancel should be ignored")
	}
}

func TestPullModelDone(t *testing.T) {
	m := NewPullModel("llama3", nil)
	res := pull.Result{
		State:    pull.StateCompleted,
		Snapshot: snapshotOf([3]any{"sha256:aa", int64(10), int64(10)}),
	}

	next, cmd := m.Update(PullDoneMsg{Result: res})
	if cmd == nil {
		t.Fatal("done should quit the program")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}

	pm := next.(PullModel)
	got, done := pm.Result()
	if !done || got.State != pull.StateCompleted {
		t.Errorf("Result() = %v, %v", got.State, done)
	}
	if strings.Contains(pm.View(), "to cancel") {
		t.Error("finished view should not show the cancel hint")
	}
}

func TestPullModelWindowSize(t *testing.T) {
	m := NewPullModel("llama3", nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 50, Height: 20})
	if w := next.(PullModel).bar.Width; w != 10 {
		t.Errorf("bar width = %d, want 10 on a narrow terminal", w)
	}
	next, _ = m.Update(tea.WindowSizeMsg{Width: 200, Height: 20})
	if w := next.(PullModel).bar.Width; w != barWidth {
		t.Errorf("bar width = %d, want %d", w, barWidth)
	}
}

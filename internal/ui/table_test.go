package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestFitCell(t *testing.T) {
	tests := []struct {
		name  string
		value string
		width int
		want  string
	}{
		{"fits", "llama3", 10, "llama3"},
		{"exact width", "latest", 6, "latest"},
		{"truncates with ellipsis", "hf.co/bartowski/Llama-3.2-1B-Instruct-GGUF", 16, "hf.co/bartows..."},
		{"tiny width drops ellipsis", "qwen2.5", 3, "qwe"},
		{"empty", "", 4, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fitCell(tt.value, tt.width); got != tt.want {
				t.Errorf("fitCell(%q, %d) = %q, want %q", tt.value, tt.width, got, tt.want)
			}
		})
	}
}

func renderedLines(tbl *ModelTable) []string {
	return strings.Split(strings.TrimSuffix(ansi.Strip(tbl.Render()), "\n"), "\n")
}

func TestModelTableRender(t *testing.T) {
	tbl := NewModelTable().Indent(0).
		Add(ModelRow{Repo: "llama3", Tag: "8b", Size: 4_661_224_676, Modified: "2d ago"}).
		Add(ModelRow{Repo: "hf.co/bartowski/Llama-3.2-1B-Instruct-GGUF-with-a-very-long-name", Tag: "Q4_K_M", Size: 807_694_464, Modified: "Jan 2026"})

	lines := renderedLines(tbl)
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header and 2 rows:\n%s", len(lines), tbl.Render())
	}

	if got := strings.Join(strings.Fields(lines[0]), " "); got != "NAME TAG SIZE MODIFIED" {
		t.Errorf("header = %q", lines[0])
	}
	if got := strings.Join(strings.Fields(lines[1]), " "); got != "llama3 8b 4.3 GB 2d ago" {
		t.Errorf("row = %q", lines[1])
	}

	name := strings.Fields(lines[2])[0]
	if !strings.HasSuffix(name, "...") || ansi.StringWidth(name) > 32 {
		t.Errorf("long name not truncated to its column: %q", name)
	}

	// Fixed-width columns keep every line aligned.
	for _, line := range lines[1:] {
		if ansi.StringWidth(line) != ansi.StringWidth(lines[0]) {
			t.Errorf("line %q is %d cells wide, header is %d", line, ansi.StringWidth(line), ansi.StringWidth(lines[0]))
		}
	}

	// Sizes are right-aligned, so they end in the same cell.
	end := func(line, value string) int { return strings.Index(line, value) + len(value) }
	if end(lines[1], "4.3 GB") != end(lines[2], "770.3 MB") {
		t.Errorf("sizes not right-aligned:\n%s\n%s", lines[1], lines[2])
	}
}

func TestModelTableTotals(t *testing.T) {
	tbl := NewModelTable().
		Add(ModelRow{Repo: "llama3", Size: 100}).
		Add(ModelRow{Repo: "mistral", Size: 250})

	if tbl.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tbl.Len())
	}
	if tbl.TotalSize() != 350 {
		t.Errorf("TotalSize() = %d, want 350", tbl.TotalSize())
	}
}

func TestModelTableIndent(t *testing.T) {
	out := NewModelTable().Add(ModelRow{Repo: "x"}).String()
	for line := range strings.SplitSeq(strings.TrimSuffix(ansi.Strip(out), "\n"), "\n") {
		if !strings.HasPrefix(line, "  ") {
			t.Errorf("line %q missing default indent", line)
		}
	}

	if NewModelTable().Render() != "" {
		t.Error("table without rows should render nothing")
	}
}

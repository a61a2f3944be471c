package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

type spinModel struct {
	spinner  spinner.Model
	message  string
	quitting bool
}

type spinFinishMsg struct {
	success bool
	message string
}

func initialSpinModel(message string) spinModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	return spinModel{
		spinner: s,
		message: message,
	}
}

func (m spinModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			m.message = ""
			return m, tea.Quit
		}
	case spinFinishMsg:
		m.quitting = true
		switch {
		case msg.message == "":
			m.message = ""
		case msg.success:
			m.message = Success(IconCheck) + " " + msg.message
		default:
			m.message = ErrorMsg(IconCross) + " " + msg.message
		}
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinModel) View() string {
	if m.quitting {
		if m.message == "" {
			// Clear the line and stay on it (no newline)
			return "\r\033[K"
		}
		return m.message + "\n"
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.message)
}

// Spinner shows an animated status line on stderr while work runs. It is a
// no-op when stderr is not a terminal.
type Spinner struct {
	prog *tea.Program
	done chan struct{}
}

func NewSpinner() *Spinner {
	return &Spinner{}
}

func (s *Spinner) Start(message string) {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return
	}
	s.prog = tea.NewProgram(initialSpinModel(message), tea.WithOutput(os.Stderr), tea.WithInput(nil))
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		s.prog.Run()
	}()
}

// Stop ends the spinner, leaving message on the line. An empty message
// clears it.
func (s *Spinner) Stop(success bool, message string) {
	if s.prog == nil {
		return
	}
	s.prog.Send(spinFinishMsg{success: success, message: message})
	<-s.done
	s.prog = nil
}

// Spin runs fn behind a spinner and clears the line when it returns.
func Spin[T any](message string, fn func() (T, error)) (T, error) {
	s := NewSpinner()
	s.Start(message)
	v, err := fn()
	s.Stop(err == nil, "")
	return v, err
}

// WithSpinner runs fn behind a spinner and leaves a success or failure line.
func WithSpinner(message string, fn func() error) error {
	s := NewSpinner()
	s.Start(message)
	err := fn()
	if err != nil {
		s.Stop(false, err.Error())
		return err
	}
	s.Stop(true, message)
	return nil
}

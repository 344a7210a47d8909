package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	dashboardadapter "github.com/Subha2009/kamun-software/internal/adapters/render/dashboard"
	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const liveTimerBuffer = 16

type timerStateMsg struct {
	label string
	state domain.TimerState
}

type liveTimerDoneMsg struct{}

type liveTimerModel struct {
	spinner  spinner.Model
	progress progress.Model
	label    string
	state    domain.TimerState
	done     bool
}

func newLiveTimerModel(label string, state domain.TimerState) liveTimerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return liveTimerModel{
		spinner:  s,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(30), progress.WithoutPercentage()),
		label:    label,
		state:    state,
	}
}

func (m liveTimerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m liveTimerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case timerStateMsg:
		if msg.label != "" {
			m.label = msg.label
		}
		m.state = msg.state
		return m, nil
	case liveTimerDoneMsg:
		m.done = true
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m liveTimerModel) View() string {
	if m.done {
		return ""
	}

	return fmt.Sprintf("%s %s %s", m.spinner.View(), m.progress.ViewAs(elapsedFraction(m.state)), dashboardadapter.RenderTimer(m.label, m.state))
}

func elapsedFraction(state domain.TimerState) float64 {
	if state.Total <= 0 {
		return 0
	}
	return float64(state.Total-state.Remaining) / float64(state.Total)
}

// runLiveTimer shows timer updates on output until done is closed or ctx ends.
func runLiveTimer(ctx context.Context, output io.Writer, label string, initial domain.TimerState, updates <-chan timerStateMsg, done <-chan struct{}) error {
	p := tea.NewProgram(
		newLiveTimerModel(label, initial),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	go func() {
		for {
			select {
			case update := <-updates:
				p.Send(update)
			case <-done:
				p.Send(liveTimerDoneMsg{})
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// forward pushes an update without blocking the ticker goroutine. A full
// buffer drops the update; the next tick repaints anyway.
func forward(updates chan<- timerStateMsg, update timerStateMsg) {
	select {
	case updates <- update:
	default:
	}
}

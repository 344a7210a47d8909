package dashboard

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Subha2009/kamun-software/internal/application"
	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/Subha2009/kamun-software/internal/ports"
	"github.com/charmbracelet/lipgloss"
)

const (
	barWidth       = 24
	defaultLogSize = 5
)

type RenderOptions struct {
	// ShowRoster lists every delegation instead of the attendance summary only.
	ShowRoster bool
	LogSize    int
	Location   *time.Location
}

func renderView(view application.Dashboard, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render(sessionTitle(view.Session)),
		s.header.Render(fmt.Sprintf("stage: %s | storage: %s", view.Stage, modeLabel(view.Mode))),
	}

	if view.Session == nil {
		lines = append(lines, s.empty.Render("No active session. Create one with `kamun session new <name>`."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	agenda := view.Agenda
	if agenda == "" {
		agenda = s.empty.Render("not set")
	}
	lines = append(lines, s.detail.Render("Agenda:")+" "+agenda)

	lines = append(lines,
		s.section.Render(renderAttendance(view, opts, s)),
		s.section.Render(renderTimers(view, s)),
		s.section.Render(renderSpeakers(view.Speaker, s)),
		s.section.Render(renderResolutions(view, s)),
	)
	if log := renderLog(view, opts, s); log != "" {
		lines = append(lines, s.section.Render(log))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func sessionTitle(session *domain.Session) string {
	if session == nil {
		return "kamun"
	}
	return fmt.Sprintf("kamun: %s", session.Name)
}

func modeLabel(mode ports.BackendMode) string {
	switch mode {
	case ports.ModeRemote:
		return "remote"
	case ports.ModeCacheOnly:
		return "local cache only"
	default:
		return "unknown"
	}
}

func renderAttendance(view application.Dashboard, opts RenderOptions, s styles) string {
	stats := view.Stats
	parts := []string{
		s.heading.Render("Roll call"),
		s.detail.Render(fmt.Sprintf(
			"present %d | present and voting %d | absent %d | spoken %d/%d",
			stats.Present, stats.PresentAndVoting, stats.Absent, stats.Spoken, stats.Total,
		)),
		s.detail.Render(fmt.Sprintf(
			"simple majority %d | two-thirds majority %d",
			stats.SimpleMajority(), stats.TwoThirdsMajority(),
		)),
	}

	if opts.ShowRoster {
		for _, entry := range view.Roster {
			parts = append(parts, rosterLine(entry, s))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func rosterLine(entry domain.RosterEntry, s styles) string {
	status := statusLabel(entry.Status, s)
	line := fmt.Sprintf("  %-16s %s", entry.Country, status)
	if name := strings.TrimSpace(entry.DelegateName); name != "" {
		line += " " + s.detail.Render(name)
	}
	if entry.HasSpoken {
		line += " " + s.spoken.Render("(spoken)")
	}
	return line
}

func statusLabel(status domain.AttendanceStatus, s styles) string {
	switch status {
	case domain.StatusPresent:
		return s.present.Render("P ")
	case domain.StatusPresentAndVoting:
		return s.voting.Render("PV")
	default:
		return s.absent.Render("A ")
	}
}

func renderTimers(view application.Dashboard, s styles) string {
	parts := []string{s.heading.Render("Timers")}

	topic := view.Caucus.Topic
	if topic == "" {
		topic = "no topic"
	}
	moderated := view.Caucus.Timers[domain.TimerModerated]
	parts = append(parts, timerLine("Moderated ("+topic+")", moderated, s))
	if moderated.SpeakerTotal > 0 {
		parts = append(parts, timerLine("  per speaker", domain.TimerState{
			Kind:      domain.TimerModerated,
			Phase:     moderated.Phase,
			Total:     moderated.SpeakerTotal,
			Remaining: moderated.SpeakerRemaining,
		}, s))
	}
	parts = append(parts, timerLine(domain.UnmoderatedCaucusTopic, view.Caucus.Timers[domain.TimerUnmoderated], s))

	reply := "Right of reply"
	if view.Caucus.ReplyTarget != "" {
		reply += " (" + view.Caucus.ReplyTarget + ")"
	}
	parts = append(parts, timerLine(reply, view.Caucus.Timers[domain.TimerReply], s))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func timerLine(label string, state domain.TimerState, s styles) string {
	used := 0.0
	if state.Total > 0 {
		used = 100 * float64(state.Total-state.Remaining) / float64(state.Total)
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.detail.Render(fmt.Sprintf("%-28s", label)),
		" ",
		renderProgressBar(used, barWidth, s),
		" ",
		lipgloss.NewStyle().Foreground(remainingColor(state)).Render(FormatClock(state.Remaining)),
		" ",
		phaseLabel(state.Phase, s),
	)
}

func phaseLabel(phase domain.TimerPhase, s styles) string {
	switch phase {
	case domain.PhaseRunning:
		return s.running.Render("running")
	case domain.PhaseExpired:
		return s.expired.Render("time!")
	case domain.PhasePaused:
		return s.detail.Render("paused")
	default:
		return s.empty.Render("idle")
	}
}

func renderSpeakers(speaker application.SpeakerSnapshot, s styles) string {
	parts := []string{s.heading.Render("Speakers list")}

	if speaker.Current == "" {
		parts = append(parts, s.empty.Render("nobody has the floor"))
	} else {
		parts = append(parts, timerLine(speaker.Current, speaker.Timer, s))
	}

	if len(speaker.Queue) == 0 {
		parts = append(parts, s.empty.Render("queue empty"))
	} else {
		parts = append(parts, s.detail.Render("next: "+strings.Join(speaker.Queue, ", ")))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderResolutions(view application.Dashboard, s styles) string {
	parts := []string{s.heading.Render("Resolutions")}

	if len(view.Resolutions) == 0 {
		parts = append(parts, s.empty.Render("none filed"))
	}
	for _, r := range view.Resolutions {
		line := fmt.Sprintf("  %-8s %-14s %s", r.Code, resolutionLabel(r.Status), r.Title)
		if len(r.Sponsors) > 0 {
			line += s.empty.Render(" sponsors: " + strings.Join(r.Sponsors, ", "))
		}
		parts = append(parts, line)
	}

	if view.Vote != nil {
		tally := view.Vote.Tally
		parts = append(parts, s.warning.Render(fmt.Sprintf(
			"Voting on %s: yes %d | no %d | abstain %d | %d of %d cast | %d needed",
			view.Vote.Resolution.Code, tally.Yes, tally.No, tally.Abstain, tally.Cast(), tally.Eligible, tally.Required(),
		)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func resolutionLabel(status domain.ResolutionStatus) string {
	switch status {
	case domain.ResolutionWorkingPaper:
		return "working paper"
	case domain.ResolutionDraft:
		return "draft"
	case domain.ResolutionPassed:
		return "passed"
	case domain.ResolutionFailed:
		return "failed"
	default:
		return string(status)
	}
}

func renderLog(view application.Dashboard, opts RenderOptions, s styles) string {
	size := opts.LogSize
	if size <= 0 {
		size = defaultLogSize
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	entries := append(append([]domain.CaucusLogEntry(nil), view.Caucuses...), view.Replies...)
	if len(entries) == 0 {
		return ""
	}
	sortLog(entries)
	if len(entries) > size {
		entries = entries[len(entries)-size:]
	}

	parts := []string{s.heading.Render("Session log")}
	for _, entry := range entries {
		stamp := entry.Timestamp.In(loc).Format("15:04")
		switch entry.Kind {
		case domain.LogKindReply:
			parts = append(parts, fmt.Sprintf("  %s right of reply: %s", stamp, entry.Country))
		default:
			parts = append(parts, fmt.Sprintf("  %s %s caucus: %s (%s)", stamp, entry.CaucusType, entry.Topic, FormatClock(entry.Duration)))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func sortLog(entries []domain.CaucusLogEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
}

// FormatClock renders seconds as m:ss.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func renderProgressBar(usedPercent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	used := clampPercent(usedPercent)
	leftFraction := (100.0 - used) / 100.0
	filled := int(math.Round(float64(width) * leftFraction))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// remainingColor fades from grey to white as a running timer nears zero.
func remainingColor(state domain.TimerState) lipgloss.Color {
	if state.Phase == domain.PhaseExpired {
		return lipgloss.Color("203")
	}
	if state.Total <= 0 {
		return lipgloss.Color("255")
	}
	return interpolateColor(float64(state.Total-state.Remaining), 0, float64(state.Total))
}

func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	// ANSI 256 greyscale ramp from 240 to 255.
	interpolated := 240.0 + 15.0*normalized
	return lipgloss.Color(fmt.Sprintf("%d", int(interpolated)))
}

package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/ropelab/internal/lab"
	"github.com/san-kum/ropelab/internal/sequencer"
)

const (
	frameRate  = time.Second / 60
	seekStep   = 64
	dialRadius = 6
	sliderW    = 30
)

var spinner = []rune("◐◓◑◒")

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model renders a Lab. The widgets advance on their own scheduler; the model
// only polls them each frame and forwards keys.
type Model struct {
	lab      *lab.Lab
	theme    Theme
	st       styles
	showHelp bool
	lastErr  error
	frame    int
}

func NewModel(l *lab.Lab, theme string) Model {
	t := GetTheme(theme)
	return Model{lab: l, theme: t, st: newStyles(t)}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())
	case TickMsg:
		m.frame++
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	scrub := m.lab.Scrubber()
	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		scrub.TogglePlay()
	case "a":
		m.lab.StartAll()
	case "r":
		m.lab.ResetAll()
		m.lastErr = nil
	case "+", "=":
		m.lastErr = m.lab.Nudge(1)
	case "-", "_":
		m.lastErr = m.lab.Nudge(-1)
	case "[":
		scrub.Seek(scrub.Position() - seekStep)
	case "]":
		scrub.Seek(scrub.Position() + seekStep)
	case "0":
		scrub.Seek(0)
	case "t":
		m.theme = NextTheme(m.theme.Name)
		m.st = newStyles(m.theme)
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(m.viewHeader())
	s.WriteString("\n\n")

	cols := make([]string, 0, len(m.lab.Sequencers()))
	for _, seq := range m.lab.Sequencers() {
		cols = append(cols, m.st.panel.Render(m.viewToken(seq)))
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	s.WriteString("\n")

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		m.st.panel.Render(m.viewScrubber()),
		m.st.panel.Render(m.viewFrequencies()),
	))
	s.WriteString("\n")
	s.WriteString(m.st.panel.Render(m.viewOutcome()))
	s.WriteString("\n")

	if m.showHelp {
		s.WriteString(m.viewHelp())
	} else {
		s.WriteString(m.st.muted.Render("SP:Play  A:Apply  R:Reset  +/-:Base  [ ]:Seek  0:Start  T:Theme  ?:Help  Q:Quit"))
	}
	return s.String()
}

func (m Model) viewHeader() string {
	b := m.lab.Bus()
	st, rng := b.State(), b.Range()
	frac := (st.Base - rng.Min) / (rng.Max - rng.Min)

	line := m.st.title.Render("ROPELAB") + "  " +
		m.st.label.Render("base") +
		m.st.value.Render(fmt.Sprintf("%-8g", st.Base)) + " " +
		ProgressBar(frac, sliderW) +
		m.st.muted.Render(fmt.Sprintf("  v%d  %s", st.Version, m.theme.Name))
	if m.lastErr != nil {
		line += "\n" + m.st.active.Render(m.lastErr.Error())
	}
	return line
}

func (m Model) viewToken(seq *sequencer.Sequencer) string {
	tok := seq.Token()
	state := seq.State()
	q, k := seq.Current()

	var s strings.Builder
	s.WriteString(m.st.title.Render(fmt.Sprintf("%s  (pos %d)", tok.Label, tok.Position)))
	s.WriteString("\n")

	status := seq.Status()
	if state.Phase == sequencer.Animating {
		status = m.st.active.Render(status)
	} else {
		status = m.st.muted.Render(status)
	}
	s.WriteString(status + "\n\n")

	active, hasActive := state.Active()
	for i := 0; i < q.Pairs(); i++ {
		qx, qy := q.Pair(i)
		kx, ky := k.Pair(i)
		row := fmt.Sprintf("%d  %s  %s  x%d", i,
			m.st.query.Render(fmt.Sprintf("q(%+.2f,%+.2f)", qx, qy)),
			m.st.key.Render(fmt.Sprintf("k(%+.2f,%+.2f)", kx, ky)),
			state.Multipliers[i])
		if hasActive && i == active {
			row = m.st.active.Render("▶ ") + row
		} else {
			row = "  " + row
		}
		s.WriteString(row + "\n")
	}
	s.WriteString("\n")
	s.WriteString(RenderDials(seq.Angles(), dialRadius))
	return s.String()
}

func (m Model) viewScrubber() string {
	sc := m.lab.Scrubber()
	pos := sc.Position()

	var s strings.Builder
	state := "paused"
	if sc.Playing() {
		state = "playing " + string(spinner[(m.frame/6)%len(spinner)])
	}
	s.WriteString(m.st.title.Render("Frequency dials") + "  " + m.st.muted.Render(state) + "\n")
	s.WriteString(m.st.label.Render("position") +
		m.st.value.Render(fmt.Sprintf("%4d / %d", pos, sc.Max())) + "\n")
	s.WriteString(ProgressBar(float64(pos)/float64(sc.Max()), sliderW) + "\n\n")
	s.WriteString(RenderDials(sc.DisplayAngles(), dialRadius))

	revs := sc.Revolutions()
	parts := make([]string, len(revs))
	for i, r := range revs {
		parts[i] = fmt.Sprintf("%.2f", r)
	}
	s.WriteString(m.st.label.Render("turns") + m.st.value.Render(strings.Join(parts, "  ")))
	return s.String()
}

func (m Model) viewFrequencies() string {
	thetas := m.lab.Thetas()
	var s strings.Builder
	s.WriteString(m.st.title.Render("Frequencies") + "\n")
	s.WriteString(m.st.value.Render(RenderThetaTable(m.lab.Bus().Base(), thetas)))
	s.WriteString(m.st.muted.Render(Sparkline(thetas.Degrees())))
	return s.String()
}

func (m Model) viewOutcome() string {
	v := m.lab.Outcome().View()
	var s strings.Builder
	s.WriteString(m.st.title.Render(fmt.Sprintf("Outcome: %s at two positions", v.Label)) +
		m.st.muted.Render(fmt.Sprintf("  base %g", v.Base)) + "\n")
	for j, p := range v.Positions {
		s.WriteString(m.st.label.Render(fmt.Sprintf("Q pos %d", p)) + m.st.query.Render(FormatVector(v.Query[j])) + "\n")
		s.WriteString(m.st.label.Render(fmt.Sprintf("K pos %d", p)) + m.st.key.Render(FormatVector(v.Key[j])) + "\n")
	}
	s.WriteString(m.st.label.Render("q·k same") + m.st.value.Render(fmt.Sprintf("%+.4f  %+.4f", v.Score[0], v.Score[1])))
	s.WriteString("  " + m.st.label.Render("q·k cross") + m.st.value.Render(fmt.Sprintf("%+.4f", v.Cross)))
	return s.String()
}

func (m Model) viewHelp() string {
	return m.st.muted.Render(`
Space  play/pause the frequency dials
A      apply rotation to every token
R      reset every demo
+ / -  change the base by one step
[ / ]  seek the dials by 64 positions
0      seek the dials to 0
T      cycle themes
?      toggle this help
Q      quit`)
}

// Run starts the live view in the alternate screen.
func Run(l *lab.Lab, theme string) error {
	p := tea.NewProgram(NewModel(l, theme), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

package overlay

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type (
	showMsg       struct{}
	hideMsg       struct{}
	fadeMsg       struct{}
	stateMsg      string
	levelsMsg     []float32
	transcriptMsg string
	errorMsg      string
)

// Terminal draws the pill in the terminal with bubbletea. Run must be
// called to start it; every other method is safe from any goroutine.
type Terminal struct {
	p *tea.Program
}

// NewTerminal creates the program. hint is the help line shown while
// idle; onQuit runs when the user presses ctrl+c or q.
func NewTerminal(hint string, onQuit func()) *Terminal {
	m := termModel{hint: hint, onQuit: onQuit}
	return &Terminal{p: tea.NewProgram(m, tea.WithAltScreen())}
}

// Run blocks until Quit or the user exits.
func (t *Terminal) Run() error {
	_, err := t.p.Run()
	return err
}

func (t *Terminal) Quit() { t.p.Quit() }

func (t *Terminal) SetPosition(x, y float64)   {}
func (t *Terminal) Show()                      { t.p.Send(showMsg{}) }
func (t *Terminal) SetState(state string)      { t.p.Send(stateMsg(state)) }
func (t *Terminal) FadeOut()                   { t.p.Send(fadeMsg{}) }
func (t *Terminal) Hide()                      { t.p.Send(hideMsg{}) }
func (t *Terminal) SetLevels(levels []float32) { t.p.Send(levelsMsg(levels)) }

// Transcript shows the last delivered text under the pill.
func (t *Terminal) Transcript(text string) { t.p.Send(transcriptMsg(text)) }

// Error shows a failure until the next session starts.
func (t *Terminal) Error(msg string) { t.p.Send(errorMsg(msg)) }

type termModel struct {
	hint    string
	onQuit  func()
	visible bool
	fading  bool
	state   string
	levels  []float32
	last    string
	err     string
	width   int
}

func (m termModel) Init() tea.Cmd { return nil }

func (m termModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.onQuit != nil {
				go m.onQuit()
			}
			return m, tea.Quit
		}
	case showMsg:
		m.visible, m.fading, m.err = true, false, ""
	case stateMsg:
		m.state = string(msg)
		if m.state != "recording" {
			m.levels = nil
		}
	case fadeMsg:
		m.fading = true
	case hideMsg:
		m.visible, m.fading, m.state, m.levels = false, false, "", nil
	case levelsMsg:
		m.levels = msg
	case transcriptMsg:
		m.last = string(msg)
	case errorMsg:
		m.err = string(msg)
	}
	return m, nil
}

var (
	pillStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(22)
	recStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	busyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	fadeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	idleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	textStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	levelRunes = []rune("▁▂▃▄▅▆▇█")
)

func (m termModel) View() string {
	var b strings.Builder
	if m.visible {
		b.WriteString(pillStyle.Render(m.pill()))
	} else {
		b.WriteString(idleStyle.Render("○ idle"))
	}
	b.WriteString("\n\n")
	if m.err != "" {
		b.WriteString(errStyle.Render("! "+m.err) + "\n")
	}
	if m.last != "" {
		width := m.width - 2
		if width < 20 {
			width = 20
		}
		b.WriteString(textStyle.Width(width).Render(m.last) + "\n")
	}
	if m.hint != "" {
		b.WriteString("\n" + hintStyle.Render(m.hint))
	}
	return b.String()
}

func (m termModel) pill() string {
	if m.fading {
		return fadeStyle.Render(m.state)
	}
	switch m.state {
	case "recording":
		return recStyle.Render("● ") + bars(m.levels)
	case "":
		return ""
	default:
		return busyStyle.Render("◌ " + m.state + "…")
	}
}

// bars renders one block character per level.
func bars(levels []float32) string {
	var b strings.Builder
	for _, l := range levels {
		i := int(l * float32(len(levelRunes)-1))
		i = max(0, min(i, len(levelRunes)-1))
		b.WriteRune(levelRunes[i])
	}
	return recStyle.Render(b.String())
}

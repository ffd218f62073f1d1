package picker

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/danieljhkim/rip/internal/catalog"
)

var (
	primary = lipgloss.Color("#7C3AED")
	muted   = lipgloss.Color("#6B7280")
	white   = lipgloss.Color("#FFFFFF")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primary).
			MarginBottom(1)

	cursorStyle = lipgloss.NewStyle().
			Background(primary).
			Foreground(white).
			Bold(true)

	checkedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))

	helpStyle = lipgloss.NewStyle().
			Foreground(muted)
)

// keyMap defines key bindings for the picker.
type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	All    key.Binding
	Accept key.Binding
	Cancel key.Binding
}

var defaultKeys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" ", "tab"),
		key.WithHelp("space", "toggle"),
	),
	All: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "toggle all"),
	),
	Accept: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "accept"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc", "q", "ctrl+c"),
		key.WithHelp("esc/q", "cancel"),
	),
}

// TUI is the built-in terminal picker.
type TUI struct {
	In  io.Reader
	Out io.Writer
}

// NewTUI creates a TUI picker on the process terminal. It draws on stderr so
// stdout stays clean.
func NewTUI() *TUI {
	return &TUI{In: os.Stdin, Out: os.Stderr}
}

// Pick runs the picker until the user accepts or cancels.
func (p *TUI) Pick(ctx context.Context, entries []catalog.Entry) ([]int, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	prog := tea.NewProgram(newModel(entries),
		tea.WithContext(ctx),
		tea.WithInput(p.In),
		tea.WithOutput(p.Out),
	)
	final, err := prog.Run()
	if err != nil {
		return nil, fmt.Errorf("picker failed: %w", err)
	}
	return final.(model).result(), nil
}

// Lines of the view outside the entry list: title, its margin, the position
// line, the blank line and the help line.
const (
	chromeLines = 5
	defaultRows = 10
)

type model struct {
	entries  []catalog.Entry
	cursor   int
	offset   int
	height   int
	checked  map[int]bool
	accepted bool
	keys     keyMap
}

func newModel(entries []catalog.Entry) model {
	return model{
		entries: entries,
		checked: make(map[int]bool),
		keys:    defaultKeys,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.height = size.Height
		m.scroll()
		return m, nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Cancel):
		m.accepted = false
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Accept):
		m.accepted = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Toggle):
		m.checked[m.cursor] = !m.checked[m.cursor]
	case key.Matches(keyMsg, m.keys.All):
		all := len(m.selected()) == len(m.entries)
		for i := range m.entries {
			m.checked[i] = !all
		}
	}
	m.scroll()
	return m, nil
}

// rows is the number of entries that fit on screen.
func (m model) rows() int {
	if m.height <= 0 {
		return defaultRows
	}
	return max(m.height-chromeLines, 1)
}

// scroll moves the window so the cursor stays visible.
func (m *model) scroll() {
	rows := m.rows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	m.offset = max(min(m.offset, len(m.entries)-rows), 0)
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Select graveyard entries"))
	b.WriteString("\n")

	end := min(m.offset+m.rows(), len(m.entries))
	for i := m.offset; i < end; i++ {
		e := m.entries[i]
		mark := "[ ]"
		if m.checked[i] {
			mark = checkedStyle.Render("[x]")
		}
		line := fmt.Sprintf("%-7s  %s  (%s)  %s", e.ShortID(), e.Kind.Letter(), formatWhen(e.DeletedAt), e.OriginalPath)
		if i == m.cursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString(mark + " " + line + "\n")
	}
	if len(m.entries) > m.rows() {
		b.WriteString(helpStyle.Render(fmt.Sprintf("%d-%d of %d", m.offset+1, end, len(m.entries))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(helpLine(m.keys)))
	b.WriteString("\n")
	return b.String()
}

func helpLine(k keyMap) string {
	bindings := []key.Binding{k.Up, k.Down, k.Toggle, k.All, k.Accept, k.Cancel}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}

func (m model) selected() []int {
	var out []int
	for i, on := range m.checked {
		if on {
			out = append(out, i)
		}
	}
	return normalize(out, len(m.entries))
}

// result is the selection on accept: the checked entries, or the entry under
// the cursor when nothing was checked. Cancel yields nothing.
func (m model) result() []int {
	if !m.accepted {
		return nil
	}
	if sel := m.selected(); len(sel) > 0 {
		return sel
	}
	return []int{m.cursor}
}

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gompdf/manuscript"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	pageStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("7")).Padding(0, 1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// settledMsg carries counts from a settle callback into the update loop
type settledMsg manuscript.Counts

type model struct {
	session *manuscript.Session
	updates chan manuscript.Counts
	counts  manuscript.Counts
	width   int
	height  int
	status  string
	err     error
}

func initialModel(session *manuscript.Session) model {
	updates := make(chan manuscript.Counts, 16)
	session.OnContentSettled(func(c manuscript.Counts) {
		select {
		case updates <- c:
		default:
			// the view reads fresh counts on the next message anyway
		}
	})
	return model{
		session: session,
		updates: updates,
		counts:  session.GetCounts(),
	}
}

func waitForSettle(updates chan manuscript.Counts) tea.Cmd {
	return func() tea.Msg {
		return settledMsg(<-updates)
	}
}

func (m model) Init() tea.Cmd {
	return waitForSettle(m.updates)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case settledMsg:
		m.counts = manuscript.Counts(msg)
		if err := m.session.LastSaveError(); err != nil {
			m.err = err
		}
		return m, waitForSettle(m.updates)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.session.Flush()
		return m, tea.Quit
	case tea.KeyRunes:
		m.err = m.session.Type(string(msg.Runes))
	case tea.KeySpace:
		m.err = m.session.Type(" ")
	case tea.KeyEnter:
		m.err = m.session.Type("\n")
	case tea.KeyBackspace:
		m.err = m.session.Backspace()
	case tea.KeyCtrlV:
		text, err := clipboard.ReadAll()
		if err != nil {
			m.err = fmt.Errorf("clipboard: %w", err)
			break
		}
		m.err = m.session.Paste(text)
	case tea.KeyCtrlN:
		m.newChapter()
	case tea.KeyTab:
		m.nextChapter()
	case tea.KeyPgUp:
		m.err = m.session.SetFocus(m.session.Focus() - 1)
	case tea.KeyPgDown:
		m.err = m.session.SetFocus(m.session.Focus() + 1)
	case tea.KeyCtrlS:
		m.exportPDF()
	}
	if errors.Is(m.err, manuscript.ErrPageOutOfRange) {
		m.err = nil
	}
	m.counts = m.session.GetCounts()
	return m, nil
}

func (m *model) newChapter() {
	n := len(m.session.Chapters()) + 1
	id := fmt.Sprintf("chapter-%d", n)
	for m.session.CreateChapter(id) != nil {
		n++
		id = fmt.Sprintf("chapter-%d", n)
	}
	if err := m.session.SwitchChapter(id); err != nil {
		m.err = err
		return
	}
	m.status = "created " + id
}

func (m *model) nextChapter() {
	chapters := m.session.Chapters()
	active := m.session.Active().ID
	for i, ch := range chapters {
		if ch.ID == active {
			next := chapters[(i+1)%len(chapters)].ID
			if err := m.session.SwitchChapter(next); err != nil {
				m.err = err
				return
			}
			m.status = next
			return
		}
	}
}

func exportName(project, chapter string) string {
	name := strings.ToLower(strings.Join(strings.Fields(project), "-"))
	if name == "" {
		name = "manuscript"
	}
	return name + "-" + chapter + ".pdf"
}

func (m *model) exportPDF() {
	path := exportName(m.session.Settings().ProjectName, m.session.Active().ID)
	if err := m.session.ExportPDFFile(path); err != nil {
		m.err = err
		return
	}
	m.status = "wrote " + path
}

func (m model) View() string {
	var b strings.Builder

	settings := m.session.Settings()
	focus := m.session.Focus()
	text := m.session.PlainText()
	fmt.Fprintf(&b, "%s  %s\n",
		titleStyle.Render(settings.ProjectName),
		fmt.Sprintf("%s · page %d of %d", m.session.Active().ID, focus+1, len(text)))

	page := ""
	if focus < len(text) {
		page = text[focus]
	}
	style := pageStyle
	if m.width > 4 {
		style = style.Width(m.width - 4)
	}
	if m.height > 6 {
		style = style.Height(m.height - 6)
	}
	b.WriteString(style.Render(page + "▏"))
	b.WriteString("\n")

	status := fmt.Sprintf("%d words · %d pages · %s", m.counts.WordCount, m.counts.PageCount, settings.BookSize)
	if m.status != "" {
		status += " · " + m.status
	}
	b.WriteString(statusStyle.Render(status))
	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(m.err.Error()))
	}
	b.WriteString("\n^V paste  ^N new chapter  tab next chapter  pgup/pgdn page  ^S export  esc quit")
	return b.String()
}

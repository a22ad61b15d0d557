// Package tui provides a Bubble Tea viewer for reviewing an edit before it
// is accepted.
package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ── Styles ────────────

var (
	// Title bar at the very top
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	// Active tab: bright, underlined
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	// Inactive tab: muted
	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)

	// Separator between tabs
	tabSepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")).
			Background(lipgloss.Color("235"))

	// Section heading inside a tab
	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	lineNumStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	// Diff rendering
	diffAddStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	diffDelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	diffMetaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	problemStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// ── Tab definitions ─────────────────

type tabID int

const (
	tabDiff tabID = iota
	tabOriginal
	tabUpdated
	tabProblems
	tabCount
)

var tabNames = [tabCount]string{
	"Diff", "Original", "Updated", "Problems",
}

// ── Model ────────────────────

// Review carries everything the viewer shows for one edit.
type Review struct {
	Path     string // path being edited, for the title bar
	Original string // content before the edit
	Updated  string // content after the edit
	Diff     string // unified diff between the two
	Problems string // formatted diagnostics, empty when clean
}

// Model is the root Bubble Tea model for the review viewer.
type Model struct {
	review    *Review
	filename  string
	activeTab tabID
	viewports [tabCount]viewport.Model
	width     int
	height    int
	ready     bool
	accepted  bool
}

// New creates a viewer model for the given review.
func New(r *Review) Model {
	return Model{
		review:   r,
		filename: filepath.Base(r.Path),
	}
}

// Accepted reports whether the user pressed accept before quitting.
func (m Model) Accepted() bool { return m.accepted }

// ── Bubble Tea interface ───────────────

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "a", "enter":
			m.accepted = true
			return m, tea.Quit
		case "tab", "l", "right":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab", "h", "left":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
		case "1", "2", "3", "4":
			m.activeTab = tabID(msg.String()[0] - '1')
		}
		var cmd tea.Cmd
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.initViewports()
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}

	title := titleStyle.Width(m.width).Render("  cline  " + m.filename)

	var tabParts []string
	for i := tabID(0); i < tabCount; i++ {
		label := fmt.Sprintf(" %d %s ", i+1, tabNames[i])
		if i == m.activeTab {
			tabParts = append(tabParts, activeTabStyle.Render(label))
		} else {
			tabParts = append(tabParts, inactiveTabStyle.Render(label))
		}
		if i < tabCount-1 {
			tabParts = append(tabParts, tabSepStyle.Render("│"))
		}
	}
	tabRow := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Width(m.width).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, tabParts...))

	content := m.viewports[m.activeTab].View()

	hint := "  ←/→ tab  ↑/↓ scroll  1-4 jump  a accept  q discard"
	pct := fmt.Sprintf("%3.0f%%", m.viewports[m.activeTab].ScrollPercent()*100)
	pad := m.width - lipgloss.Width(hint) - len(pct) - 2
	if pad < 1 {
		pad = 1
	}
	statusBar := statusBarStyle.Width(m.width).Render(
		hint + strings.Repeat(" ", pad) + pct,
	)

	return lipgloss.JoinVertical(lipgloss.Left, title, tabRow, content, statusBar)
}

// ── Viewport management ───────────────────────────────────────────────────────

func (m *Model) initViewports() {
	// title(1) + tabRow(1) + statusBar(1) = 3 fixed rows
	vpHeight := m.height - 3
	if vpHeight < 1 {
		vpHeight = 1
	}
	for i := tabID(0); i < tabCount; i++ {
		vp := viewport.New(m.width, vpHeight)
		vp.SetContent(m.renderTab(i))
		m.viewports[i] = vp
	}
	// Start the diff tab at the first change.
	if line := firstChangeLine(m.review.Diff); line > 0 {
		m.viewports[tabDiff].SetYOffset(line)
	}
}

// firstChangeLine returns the index of the first +/- line in a unified diff,
// or -1 when the diff has no changes.
func firstChangeLine(diff string) int {
	for i, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "---") {
			continue
		}
		if strings.HasPrefix(line, "+") || strings.HasPrefix(line, "-") {
			return i
		}
	}
	return -1
}

// ── Tab renderers ─────────────────────────────────────────────────────────────

func (m *Model) renderTab(t tabID) string {
	switch t {
	case tabDiff:
		return m.renderDiffTab()
	case tabOriginal:
		return renderContent("Original", m.review.Original)
	case tabUpdated:
		return renderContent("Updated", m.review.Updated)
	case tabProblems:
		return m.renderProblems()
	}
	return ""
}

func heading(s string) string {
	return "\n" + sectionHeader.Render("  "+s) + "\n\n"
}

func (m *Model) renderDiffTab() string {
	var sb strings.Builder
	sb.WriteString(heading("Changes"))
	if m.review.Diff == "" {
		sb.WriteString(dimStyle.Render("  (no changes)") + "\n")
		return sb.String()
	}
	sb.WriteString(renderDiff(m.review.Diff))
	return sb.String()
}

// renderDiff colorises a unified diff string.
func renderDiff(diff string) string {
	var sb strings.Builder
	for _, line := range strings.Split(diff, "\n") {
		var rendered string
		switch {
		case strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "---"):
			rendered = diffMetaStyle.Render("  " + line)
		case strings.HasPrefix(line, "+"):
			rendered = diffAddStyle.Render("  " + line)
		case strings.HasPrefix(line, "-"):
			rendered = diffDelStyle.Render("  " + line)
		case strings.HasPrefix(line, "@@"):
			rendered = diffMetaStyle.Render("  " + line)
		default:
			rendered = dimStyle.Render("  " + line)
		}
		sb.WriteString(rendered + "\n")
	}
	return sb.String()
}

// renderContent shows a document with line numbers.
func renderContent(title, content string) string {
	var sb strings.Builder
	sb.WriteString(heading(title))
	if content == "" {
		sb.WriteString(dimStyle.Render("  (empty)") + "\n")
		return sb.String()
	}
	lines := strings.Split(content, "\n")
	// A trailing terminator produces a final empty element; don't number it.
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		num := lineNumStyle.Render(fmt.Sprintf("  %4d ", i+1))
		sb.WriteString(num + line + "\n")
	}
	return sb.String()
}

func (m *Model) renderProblems() string {
	var sb strings.Builder
	sb.WriteString(heading("New Problems"))
	if m.review.Problems == "" {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}
	for _, line := range strings.Split(m.review.Problems, "\n") {
		if strings.HasPrefix(line, "- ") {
			sb.WriteString(problemStyle.Render("  "+line) + "\n")
		} else {
			sb.WriteString("  " + line + "\n")
		}
	}
	return sb.String()
}

// Run starts the viewer and reports whether the user accepted the edit.
func Run(r *Review) (bool, error) {
	p := tea.NewProgram(New(r), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(Model)
	if !ok {
		return false, nil
	}
	return m.Accepted(), nil
}

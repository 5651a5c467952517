package player

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	playbackdto "courseplay/internal/modules/playback/dto"
	"courseplay/internal/ui/theme"
)

// ─── model ───────────────────────────────────────────────────────────────────

// Model renders the active video: its playback bar and the description
// accordion. Loading, error and empty states take over the whole pane.
type Model struct {
	viewport viewport.Model
	spinner  spinner.Model
	bar      progress.Model
	renderer *glamour.TermRenderer
	view     playbackdto.SessionView
	loading  bool
	err      error
	width    int
	height   int
}

func New() Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	bar := progress.New(progress.WithSolidFill(string(theme.Sapphire)), progress.WithoutPercentage())

	r, _ := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(0),
	)

	return Model{
		viewport: viewport.New(0, 0),
		spinner:  sp,
		bar:      bar,
		renderer: r,
		loading:  true,
	}
}

func (m Model) Init() tea.Cmd { return m.spinner.Tick }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.viewport.SetContent(m.renderDescription())

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	var vCmd tea.Cmd
	m.viewport, vCmd = m.viewport.Update(msg)
	cmds = append(cmds, vCmd)

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	switch {
	case m.loading:
		return m.place(m.spinner.View() + " Loading course…")
	case m.err != nil:
		return m.place(theme.Alert.Render("Could not load the course") + "\n\n" + theme.Muted.Render(m.err.Error()))
	case m.view.State == playbackdto.StateEmpty:
		return m.place(theme.Title.Render("This course has no videos yet") + "\n\n" + theme.Muted.Render("esc: back"))
	case m.view.Active == nil:
		return m.place(m.spinner.View() + " Resolving…")
	}

	header := m.renderHeader()
	body := m.viewportAt(m.height - lipgloss.Height(header))
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

// SetLoading switches the pane to its spinner.
func (m *Model) SetLoading() tea.Cmd {
	m.loading = true
	m.err = nil
	return m.spinner.Tick
}

// SetError replaces the pane with a load failure.
func (m *Model) SetError(err error) {
	m.loading = false
	m.err = err
}

// SetView renders a new session snapshot. The description scroll position is
// kept unless the active video changed.
func (m *Model) SetView(view playbackdto.SessionView) {
	changed := activeID(m.view) != activeID(view) || m.view.DescriptionExpanded != view.DescriptionExpanded
	m.loading = false
	m.err = nil
	m.view = view
	m.viewport.SetContent(m.renderDescription())
	if changed {
		m.viewport.GotoTop()
	}
}

// ─── private ─────────────────────────────────────────────────────────────────

func activeID(view playbackdto.SessionView) string {
	if view.Active == nil {
		return ""
	}
	return view.Active.ID
}

func (m *Model) resize() {
	m.viewport.Width = m.width
	m.viewport.Height = m.height - 6
	if m.viewport.Height < 1 {
		m.viewport.Height = 1
	}
	m.bar.Width = m.width - 16
	if m.bar.Width < 10 {
		m.bar.Width = 10
	}
	if r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(m.width),
	); err == nil {
		m.renderer = r
	}
}

func (m Model) viewportAt(h int) string {
	if h < 1 {
		h = 1
	}
	vp := m.viewport
	vp.Height = h
	return vp.View()
}

func (m Model) place(content string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderHeader() string {
	v := m.view
	active := v.Active
	title := active.Title
	if title == "" {
		title = active.ID
	}

	state := theme.Muted.Render("paused")
	if v.Playing {
		state = theme.Done.Render("playing")
	}
	if active.Completed {
		state += " " + theme.Done.Render("✓ completed")
	}

	lines := []string{
		theme.Title.Render(title) + "  " + theme.Muted.Render(fmt.Sprintf("video %d of %d", v.ActiveIndex+1, v.Total)),
		m.bar.ViewAs(v.Percent/100) + "  " + theme.Muted.Render(fmt.Sprintf("%s / %s", clock(v.Position), clock(active.Duration))),
		state,
	}
	if v.ResumePosition > 0 && !v.Playing {
		lines = append(lines, theme.Muted.Render("resumes at "+clock(v.ResumePosition)))
	}
	next := "last video"
	if v.HasNext {
		next = "n: next video"
	}
	lines = append(lines, theme.Muted.Render(next+"  e: finish  d: description"), "")
	return strings.Join(lines, "\n")
}

func (m Model) renderDescription() string {
	if m.view.Active == nil {
		return ""
	}
	desc := strings.TrimSpace(m.view.Active.Description)
	if desc == "" {
		return theme.Muted.Render("(no description)")
	}
	if !m.view.DescriptionExpanded {
		first, _, more := strings.Cut(desc, "\n")
		if more {
			first += " …"
		}
		return theme.Muted.Render("▸ ") + first
	}
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(desc); err == nil {
			return theme.Muted.Render("▾ description") + "\n" + rendered
		}
	}
	return theme.Muted.Render("▾ description") + "\n" + desc
}

func clock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	if total >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", total/3600, total%3600/60, total%60)
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

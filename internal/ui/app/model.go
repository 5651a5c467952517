package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	playbackdto "courseplay/internal/modules/playback/dto"
	apperrors "courseplay/internal/platform/errors"
	"courseplay/internal/ui/components"
	"courseplay/internal/ui/theme"
	courseview "courseplay/internal/ui/views/course"
	playerview "courseplay/internal/ui/views/player"
)

// ─── ports ───────────────────────────────────────────────────────────────────

// PlaybackPort is the slice of the playback use-case the course page drives.
type PlaybackPort interface {
	Open(ctx context.Context, target string, autoplay bool) (playbackdto.SessionView, error)
	Resume(ctx context.Context, autoplay bool) (playbackdto.SessionView, error)
	SelectVideo(ctx context.Context, videoID string) (playbackdto.SessionView, error)
	ReportEnded(ctx context.Context) (playbackdto.SessionView, error)
	ToggleSection(ctx context.Context, sectionID string) (playbackdto.SessionView, error)
	ToggleDescription(ctx context.Context) (playbackdto.SessionView, error)
	View(ctx context.Context) (playbackdto.SessionView, error)
	Back(ctx context.Context) (playbackdto.LocationOutput, error)
}

// ─── async messages ───────────────────────────────────────────────────────────

// openedMsg carries the result of opening a course location.
type openedMsg struct {
	view playbackdto.SessionView
	err  error
}

// viewMsg carries a snapshot produced by a user action or a refresh tick.
type viewMsg struct {
	view    playbackdto.SessionView
	err     error
	refresh bool
}

type backMsg struct {
	loc playbackdto.LocationOutput
	err error
}

type noticeMsg struct{ notice playbackdto.NoticeOutput }

type tickMsg time.Time

// toastExpiredMsg clears the toast it was scheduled for.
type toastExpiredMsg struct{ seq int }

const (
	refreshEvery = 500 * time.Millisecond
	toastFor     = 5 * time.Second
)

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Select  key.Binding
	Toggle  key.Binding
	Desc    key.Binding
	Next    key.Binding
	Finish  key.Binding
	Focus   key.Binding
	Back    key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Select:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play video / toggle section")),
		Toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle section")),
		Desc:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "description")),
		Next:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next video")),
		Finish:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "finish video")),
		Focus:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Next, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Select, k.Toggle, k.Desc},
		{k.Next, k.Finish, k.Focus},
		{k.Back, k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

type pane int

const (
	paneOutline pane = iota
	panePlayer
)

// Model is the course page shell: the outline on the left, the player on the
// right. Every state change goes through PlaybackPort; the views only render
// the snapshots it returns.
type Model struct {
	playback PlaybackPort
	notices  <-chan playbackdto.NoticeOutput
	target   string
	autoplay bool

	outline courseview.Model
	player  playerview.Model

	view     playbackdto.SessionView
	opened   bool
	focus    pane
	keys     keyMap
	help     help.Model
	showHelp bool
	palette  components.Palette
	status   string
	toast    string
	toastSeq int
	width    int
	height   int
}

// ─── constructor ─────────────────────────────────────────────────────────────

// NewModel builds the shell. An empty target resumes the last saved location.
// notices may be nil.
func NewModel(playback PlaybackPort, notices <-chan playbackdto.NoticeOutput, target string, autoplay bool) Model {
	return Model{
		playback: playback,
		notices:  notices,
		target:   target,
		autoplay: autoplay,
		outline:  courseview.New(),
		player:   playerview.New(),
		focus:    paneOutline,
		keys:     defaultKeys(),
		help:     help.New(),
		palette:  components.NewPalette(),
		status:   "loading",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.player.Init(),
		m.openCmd(m.target),
		m.waitNoticeCmd(),
		tick(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open; ticks still reach the panes.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		if _, isKey := msg.(tea.KeyMsg); isKey {
			return m, cmd
		}
		cmds = append(cmds, cmd)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case openedMsg:
		switch {
		case errors.Is(msg.err, apperrors.ErrCourseEmpty):
			cmds = append(cmds, m.apply(msg.view))
			m.status = "course is empty"
		case msg.err != nil:
			m.player.SetError(msg.err)
			m.status = "open failed: " + msg.err.Error()
		default:
			cmds = append(cmds, m.apply(msg.view))
			m.status = "ready"
		}
		m.opened = true
		return m, tea.Batch(cmds...)

	case viewMsg:
		if msg.err != nil {
			if !msg.refresh {
				m.status = msg.err.Error()
			}
			return m, nil
		}
		return m, m.apply(msg.view)

	case backMsg:
		if msg.err != nil {
			return m, tea.Quit
		}
		m.status = "back to " + msg.loc.Location
		return m, tea.Batch(m.player.SetLoading(), m.openCmd(msg.loc.Location))

	case noticeMsg:
		m.toast = noticeText(msg.notice, m.view)
		m.toastSeq++
		seq := m.toastSeq
		expire := tea.Tick(toastFor, func(time.Time) tea.Msg { return toastExpiredMsg{seq: seq} })
		return m, tea.Batch(m.waitNoticeCmd(), expire)

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case tickMsg:
		if m.opened {
			cmds = append(cmds, m.viewCmd(true))
		}
		cmds = append(cmds, tick())
		return m, tea.Batch(cmds...)

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to the outline while its filter input is open.
		if m.outline.Filtering() {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
			return m, nil
		case key.Matches(msg, m.keys.Palette):
			return m, m.palette.Open()
		case key.Matches(msg, m.keys.Back):
			return m, m.backCmd()
		case key.Matches(msg, m.keys.Focus):
			if m.focus == paneOutline {
				m.focus = panePlayer
			} else {
				m.focus = paneOutline
			}
			return m, nil
		case key.Matches(msg, m.keys.Desc):
			return m, m.actionCmd(func(ctx context.Context) (playbackdto.SessionView, error) {
				return m.playback.ToggleDescription(ctx)
			})
		case key.Matches(msg, m.keys.Next):
			if next, ok := nextVideoID(m.view); ok {
				return m, m.selectCmd(next)
			}
			m.status = "no next video"
			return m, nil
		case key.Matches(msg, m.keys.Finish):
			return m, m.actionCmd(m.playback.ReportEnded)
		}

		if m.focus == paneOutline {
			row, ok := m.outline.Selected()
			switch {
			case key.Matches(msg, m.keys.Select) && ok:
				if row.IsSection() {
					return m, m.toggleCmd(row.SectionID)
				}
				return m, m.selectCmd(row.VideoID)
			case key.Matches(msg, m.keys.Toggle) && ok:
				return m, m.toggleCmd(row.SectionID)
			}
		}
	}

	// Keys reach only the focused pane; everything else reaches both.
	var cmd tea.Cmd
	if _, isKey := msg.(tea.KeyMsg); isKey {
		if m.focus == paneOutline {
			m.outline, cmd = m.outline.Update(msg)
		} else {
			m.player, cmd = m.player.Update(msg)
		}
		return m, cmd
	}
	m.outline, cmd = m.outline.Update(msg)
	cmds = append(cmds, cmd)
	m.player, cmd = m.player.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	header := m.renderHeader()
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.renderPanes(contentH)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

func (m Model) renderPanes(h int) string {
	outlineW, playerW := m.paneWidths()
	outlineStyle, playerStyle := theme.Pane, theme.Pane
	if m.focus == paneOutline {
		outlineStyle = theme.PaneActive
	} else {
		playerStyle = theme.PaneActive
	}
	// Pane borders and padding take two cells on every side.
	left := outlineStyle.Width(outlineW - 2).Height(h - 2).Render(m.outline.View())
	right := playerStyle.Width(playerW - 2).Height(h - 2).Render(m.player.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m Model) renderHeader() string {
	title := m.view.CourseTitle
	if title == "" {
		title = m.target
	}
	bar := "courseplay  " + theme.Hot.Render(title)
	if m.view.Location != "" {
		bar += theme.Muted.Render("  " + m.view.Location)
	}
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.toast != "" {
		left = theme.Hot.Render("● "+m.toast) + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:pane  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)

	switch parts[0] {
	case "video:select":
		if len(parts) < 2 {
			m.status = "usage: video:select <id>"
			return m, nil
		}
		return m, m.selectCmd(parts[1])

	case "video:next":
		next, ok := nextVideoID(m.view)
		if !ok {
			m.status = "no next video"
			return m, nil
		}
		return m, m.selectCmd(next)

	case "video:finish":
		return m, m.actionCmd(m.playback.ReportEnded)

	case "section:toggle":
		if len(parts) < 2 {
			m.status = "usage: section:toggle <id>"
			return m, nil
		}
		return m, m.toggleCmd(parts[1])

	case "desc:toggle":
		return m, m.actionCmd(m.playback.ToggleDescription)

	case "course:open":
		if len(parts) < 2 {
			m.status = "usage: course:open <id|location>"
			return m, nil
		}
		m.status = "opening " + parts[1]
		return m, tea.Batch(m.player.SetLoading(), m.openCmd(parts[1]))

	case "course:reload":
		if m.view.Location == "" {
			m.status = "nothing to reload"
			return m, nil
		}
		return m, tea.Batch(m.player.SetLoading(), m.openCmd(m.view.Location))

	case "back":
		return m, m.backCmd()
	}

	m.status = "unknown command: " + parts[0]
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m *Model) apply(view playbackdto.SessionView) tea.Cmd {
	m.view = view
	m.player.SetView(view)
	m.palette.SetSuggestions(suggestions(view))
	return m.outline.SetView(view)
}

// suggestions turns the open course into ready-made palette commands.
func suggestions(view playbackdto.SessionView) []string {
	var out []string
	for _, section := range view.Sections {
		out = append(out, "section:toggle "+section.ID+"  "+section.Title)
		for _, video := range section.Videos {
			out = append(out, "video:select "+video.ID+"  "+video.Title)
		}
	}
	return out
}

func (m Model) paneWidths() (int, int) {
	outlineW := m.width / 3
	if outlineW < 24 {
		outlineW = min(24, m.width)
	}
	return outlineW, m.width - outlineW
}

func (m *Model) propagateSize() {
	outlineW, playerW := m.paneWidths()
	// header and status bar take four lines, pane chrome another four
	h := m.height - 8
	m.outline, _ = m.outline.Update(tea.WindowSizeMsg{Width: outlineW - 4, Height: h})
	m.player, _ = m.player.Update(tea.WindowSizeMsg{Width: playerW - 4, Height: h})
}

// nextVideoID returns the video after the active one in outline order.
func nextVideoID(view playbackdto.SessionView) (string, bool) {
	if view.Active == nil {
		return "", false
	}
	seen := false
	for _, section := range view.Sections {
		for _, video := range section.Videos {
			if seen {
				return video.ID, true
			}
			seen = video.ID == view.Active.ID
		}
	}
	return "", false
}

func noticeText(n playbackdto.NoticeOutput, view playbackdto.SessionView) string {
	switch n.Kind {
	case playbackdto.NoticeCourseFinished:
		return "Course finished"
	case playbackdto.NoticeLessonFinished:
		if title := videoTitle(view, n.NextVideoID); title != "" {
			return "Lesson finished. Up next: " + title
		}
		return "Lesson finished"
	}
	return fmt.Sprintf("%s: %s", n.Kind, n.VideoID)
}

func videoTitle(view playbackdto.SessionView, id string) string {
	for _, section := range view.Sections {
		for _, video := range section.Videos {
			if video.ID == id {
				return video.Title
			}
		}
	}
	return ""
}

func tick() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) openCmd(target string) tea.Cmd {
	return func() tea.Msg {
		var (
			view playbackdto.SessionView
			err  error
		)
		if target == "" {
			view, err = m.playback.Resume(context.Background(), m.autoplay)
		} else {
			view, err = m.playback.Open(context.Background(), target, m.autoplay)
		}
		return openedMsg{view: view, err: err}
	}
}

func (m Model) actionCmd(action func(ctx context.Context) (playbackdto.SessionView, error)) tea.Cmd {
	return func() tea.Msg {
		view, err := action(context.Background())
		return viewMsg{view: view, err: err}
	}
}

func (m Model) selectCmd(videoID string) tea.Cmd {
	return m.actionCmd(func(ctx context.Context) (playbackdto.SessionView, error) {
		return m.playback.SelectVideo(ctx, videoID)
	})
}

func (m Model) toggleCmd(sectionID string) tea.Cmd {
	return m.actionCmd(func(ctx context.Context) (playbackdto.SessionView, error) {
		return m.playback.ToggleSection(ctx, sectionID)
	})
}

func (m Model) viewCmd(refresh bool) tea.Cmd {
	return func() tea.Msg {
		view, err := m.playback.View(context.Background())
		return viewMsg{view: view, err: err, refresh: refresh}
	}
}

func (m Model) backCmd() tea.Cmd {
	return func() tea.Msg {
		loc, err := m.playback.Back(context.Background())
		return backMsg{loc: loc, err: err}
	}
}

func (m Model) waitNoticeCmd() tea.Cmd {
	if m.notices == nil {
		return nil
	}
	ch := m.notices
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return noticeMsg{notice: n}
	}
}

package course

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	playbackdto "courseplay/internal/modules/playback/dto"
	"courseplay/internal/ui/theme"
)

// ─── rows ────────────────────────────────────────────────────────────────────

// Row is one line of the outline: a section header or a video.
type Row struct {
	SectionID string
	VideoID   string
}

func (r Row) IsSection() bool { return r.VideoID == "" }

type sectionItem struct {
	section playbackdto.SectionView
}

func (i sectionItem) Title() string {
	marker := "▸"
	if i.section.Expanded {
		marker = "▾"
	}
	title := fmt.Sprintf("%s %s %s", marker, i.section.Title,
		theme.Muted.Render(fmt.Sprintf("%d/%d", i.section.Done, len(i.section.Videos))))
	if i.section.IsNew {
		title += " " + theme.Badge.Render("new")
	}
	return title
}
func (i sectionItem) Description() string { return "" }
func (i sectionItem) FilterValue() string { return i.section.Title }

type videoItem struct {
	video playbackdto.VideoView
}

func (i videoItem) Title() string {
	mark := theme.Muted.Render("·")
	switch {
	case i.video.Active:
		mark = theme.Hot.Render("▶")
	case i.video.Completed:
		mark = theme.Done.Render("✓")
	}
	title := i.video.Title
	if title == "" {
		title = i.video.ID
	}
	if !i.video.Completed && i.video.Percentage > 0 {
		title += theme.Muted.Render(fmt.Sprintf("  %.0f%%", i.video.Percentage))
	}
	return "  " + mark + " " + title
}
func (i videoItem) Description() string { return "" }
func (i videoItem) FilterValue() string { return i.video.Title }

func rowOf(item list.Item) (Row, bool) {
	switch it := item.(type) {
	case sectionItem:
		return Row{SectionID: it.section.ID}, true
	case videoItem:
		return Row{SectionID: it.video.SectionID, VideoID: it.video.ID}, true
	}
	return Row{}, false
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model renders the course outline. It holds no session state of its own:
// every SetView rebuilds the rows from the latest snapshot.
type Model struct {
	list   list.Model
	active string
	width  int
	height int
}

func New() Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Course"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	return Model{list: l}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(m.width, m.height)
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.list.View()
}

// SetView rebuilds the outline. The cursor stays on the same row when it still
// exists and jumps to the active video whenever that changes.
func (m *Model) SetView(view playbackdto.SessionView) tea.Cmd {
	target, _ := m.Selected()
	if view.CourseTitle != "" {
		m.list.Title = view.CourseTitle
	}

	var items []list.Item
	for _, section := range view.Sections {
		items = append(items, sectionItem{section: section})
		if !section.Expanded {
			continue
		}
		for _, video := range section.Videos {
			items = append(items, videoItem{video: video})
		}
	}
	cmd := m.list.SetItems(items)

	if view.Active != nil && view.Active.ID != m.active {
		m.active = view.Active.ID
		target = Row{SectionID: view.Active.SectionID, VideoID: view.Active.ID}
	}
	for idx, item := range items {
		if row, ok := rowOf(item); ok && row == target {
			m.list.Select(idx)
			break
		}
	}
	return cmd
}

// Selected returns the row under the cursor.
func (m Model) Selected() (Row, bool) {
	item := m.list.SelectedItem()
	if item == nil {
		return Row{}, false
	}
	return rowOf(item)
}

// Filtering reports whether the filter input owns the keyboard.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

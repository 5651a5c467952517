package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"courseplay/internal/ui/theme"
)

// PaletteSubmitMsg is emitted when the user confirms a command.
type PaletteSubmitMsg struct{ Input string }

// PaletteCancelMsg is emitted when the user presses esc.
type PaletteCancelMsg struct{}

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	hintStyle     = lipgloss.NewStyle().Foreground(theme.Subtext0)
	hintTopStyle  = lipgloss.NewStyle().Foreground(theme.Lavender)
	maxSuggestion = 6
)

// commandHints must stay in sync with the switch in app/model.go executePalette.
var commandHints = []string{
	"video:select <id>",
	"video:next",
	"video:finish",
	"section:toggle <id>",
	"desc:toggle",
	"course:open <id|location>",
	"course:reload",
	"back",
}

// Palette is a command-palette overlay backed by bubbles/textinput. Besides
// the fixed commands it suggests concrete commands for the open course, and
// tab completes the top suggestion.
type Palette struct {
	input       textinput.Model
	suggestions []string
	visible     bool
	width       int
}

func NewPalette() Palette {
	ti := textinput.New()
	ti.Placeholder = "type a command…"
	ti.CharLimit = 256
	return Palette{input: ti}
}

func (p Palette) Visible() bool { return p.visible }

// Open shows the palette, clears the input, and returns the focus command.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.input.SetValue("")
	return p.input.Focus()
}

func (p *Palette) SetWidth(w int) { p.width = w }

// SetSuggestions replaces the course-specific commands, for example
// "video:select v3  Closures".
func (p *Palette) SetSuggestions(s []string) { p.suggestions = s }

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			p.visible = false
			p.input.Blur()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "enter":
			val := strings.TrimSpace(p.input.Value())
			p.visible = false
			p.input.Blur()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: val} }
		case "tab":
			if matches := p.matching(); len(matches) > 0 {
				p.input.SetValue(completion(matches[0]))
				p.input.CursorEnd()
			}
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Command Palette") + "\n")
	sb.WriteString(": " + p.input.View() + "\n")
	if matches := p.matching(); len(matches) > 0 {
		sb.WriteString("\n")
		for i, h := range matches {
			style := hintStyle
			if i == 0 {
				style = hintTopStyle
			}
			sb.WriteString(style.Render("  "+h) + "\n")
		}
	}

	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}

// matching lists the generic commands before the course suggestions. A hint
// matches when it starts with the input, or contains it once two characters
// have been typed.
func (p Palette) matching() []string {
	query := strings.ToLower(strings.TrimSpace(p.input.Value()))
	var out []string
	for _, h := range append(append([]string{}, commandHints...), p.suggestions...) {
		lower := strings.ToLower(h)
		if query == "" || strings.HasPrefix(lower, query) || (len(query) > 1 && strings.Contains(lower, query)) {
			out = append(out, h)
			if len(out) == maxSuggestion {
				break
			}
		}
	}
	return out
}

// completion strips placeholders and trailing titles from a hint.
func completion(hint string) string {
	fields := strings.Fields(hint)
	var parts []string
	for _, f := range fields {
		if strings.HasPrefix(f, "<") || strings.HasPrefix(f, "[") {
			break
		}
		parts = append(parts, f)
		if len(parts) == 2 {
			break
		}
	}
	out := strings.Join(parts, " ")
	if len(parts) < 2 && strings.Contains(hint, "<") {
		out += " "
	}
	return out
}

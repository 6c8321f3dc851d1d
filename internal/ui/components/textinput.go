package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/feelio/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with a label and Feelio styling.
type TextInput struct {
	Model    textinput.Model
	Label    string
	MaxWidth int
}

// NewTextInput creates a new styled, focused text input.
func NewTextInput(label, placeholder string, maxWidth int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()

	if maxWidth > 0 {
		ti.CharLimit = maxWidth
	}

	return TextInput{
		Model:    ti,
		Label:    label,
		MaxWidth: maxWidth,
	}
}

// NewPasswordInput creates a text input whose value is masked.
func NewPasswordInput(label string) TextInput {
	t := NewTextInput(label, "", 128)
	t.Model.EchoMode = textinput.EchoPassword
	t.Model.EchoCharacter = '•'
	return t
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// Focus gives the input the cursor.
func (t *TextInput) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur removes the cursor.
func (t *TextInput) Blur() {
	t.Model.Blur()
}

// Focused reports whether the input has the cursor.
func (t TextInput) Focused() bool {
	return t.Model.Focused()
}

// View renders the label and the input.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.Label == "" {
		return view
	}
	style := lipgloss.NewStyle().Foreground(theme.TextDim)
	if t.Focused() {
		style = style.Foreground(theme.Primary).Bold(true)
	}
	return style.Render(t.Label) + "\n" + view
}

// Value returns the current input value, trimmed.
func (t TextInput) Value() string {
	return strings.TrimSpace(t.Model.Value())
}

// Reset clears the input.
func (t *TextInput) Reset() {
	t.Model.SetValue("")
}

// SetValue replaces the input text and moves the cursor to the end.
func (t *TextInput) SetValue(v string) {
	t.Model.SetValue(v)
	t.Model.CursorEnd()
}

// Form is an ordered set of inputs where tab and shift+tab move focus.
type Form struct {
	Inputs []TextInput
	Focus  int
}

// NewForm focuses the first input.
func NewForm(inputs ...TextInput) Form {
	f := Form{Inputs: inputs}
	f.focus(0)
	return f
}

func (f *Form) focus(i int) tea.Cmd {
	if len(f.Inputs) == 0 {
		return nil
	}
	f.Focus = (i + len(f.Inputs)) % len(f.Inputs)
	for j := range f.Inputs {
		if j != f.Focus {
			f.Inputs[j].Blur()
		}
	}
	return f.Inputs[f.Focus].Focus()
}

// Update moves focus on tab, shift+tab, up and down and forwards everything
// else to the focused input.
func (f Form) Update(msg tea.Msg) (Form, tea.Cmd) {
	if len(f.Inputs) == 0 {
		return f, nil
	}
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch kmsg.String() {
		case "tab", "down":
			cmd := f.focus(f.Focus + 1)
			return f, cmd
		case "shift+tab", "up":
			cmd := f.focus(f.Focus - 1)
			return f, cmd
		}
	}
	var cmd tea.Cmd
	f.Inputs[f.Focus], cmd = f.Inputs[f.Focus].Update(msg)
	return f, cmd
}

// Value returns input i's trimmed value.
func (f Form) Value(i int) string {
	return f.Inputs[i].Value()
}

// Raw returns input i's value untrimmed; passwords keep their spaces.
func (f Form) Raw(i int) string {
	return f.Inputs[i].Model.Value()
}

// Last reports whether the focused input is the final one.
func (f Form) Last() bool {
	return f.Focus == len(f.Inputs)-1
}

// View stacks the inputs.
func (f Form) View() string {
	parts := make([]string, 0, len(f.Inputs))
	for _, in := range f.Inputs {
		parts = append(parts, in.View())
	}
	return strings.Join(parts, "\n\n")
}

package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"colljump/internal/adapters/tui/styles"
	"colljump/internal/domain"
)

// RenderKeyHelp formats a key binding as help text (key + description)
func RenderKeyHelp(b key.Binding) string {
	help := b.Help()
	return fmt.Sprintf("%s %s",
		styles.HelpKey.Render(help.Key),
		styles.HelpDesc.Render(help.Desc),
	)
}

// RenderHelpLine renders multiple key bindings as a help line separated by bullets
func RenderHelpLine(bindings ...key.Binding) string {
	var parts []string
	for _, b := range bindings {
		parts = append(parts, RenderKeyHelp(b))
	}
	return strings.Join(parts, styles.HelpSeparator.String())
}

// RenderMessage renders a message with appropriate styling based on isError
func RenderMessage(message string, isError bool) string {
	if message == "" {
		return ""
	}
	if isError {
		return styles.ErrorMsg.Render(message)
	}
	return styles.Success.Render(message)
}

// RenderPath dims the ancestor segments of a composed path so the leaf name
// stands out
func RenderPath(path string) string {
	i := strings.LastIndex(path, domain.PathSeparator)
	if i < 0 {
		return styles.PathLeaf.Render(path)
	}
	cut := i + len(domain.PathSeparator)
	return styles.PathParent.Render(path[:cut]) + styles.PathLeaf.Render(path[cut:])
}

// RenderLibrary renders a library name in its type's accent color
func RenderLibrary(lib domain.Library) string {
	name := lib.Name
	if name == "" {
		name = fmt.Sprintf("Library %d", lib.ID)
	}
	return styles.InputLabel.Foreground(styles.LibraryColor(!lib.IsUser())).Render(name)
}

// RenderLabelValue renders a label: value pair
func RenderLabelValue(label, value string) string {
	return fmt.Sprintf("%s %s",
		styles.InputLabel.Render(label+":"),
		value,
	)
}

// ViewBuilder helps construct view output with consistent formatting
type ViewBuilder struct {
	b strings.Builder
}

// NewViewBuilder creates a new view builder
func NewViewBuilder() *ViewBuilder {
	return &ViewBuilder{}
}

// Title adds a title section
func (v *ViewBuilder) Title(title string) *ViewBuilder {
	v.b.WriteString(styles.Title.Render(title))
	v.b.WriteString("\n\n")
	return v
}

// Line adds a line of text
func (v *ViewBuilder) Line(text string) *ViewBuilder {
	v.b.WriteString(text)
	v.b.WriteString("\n")
	return v
}

// BlankLine adds a blank line
func (v *ViewBuilder) BlankLine() *ViewBuilder {
	v.b.WriteString("\n")
	return v
}

// Help adds a help line with key bindings
func (v *ViewBuilder) Help(bindings ...key.Binding) *ViewBuilder {
	v.b.WriteString(RenderHelpLine(bindings...))
	return v
}

// String returns the built view string
func (v *ViewBuilder) String() string {
	return v.b.String()
}

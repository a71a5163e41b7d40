package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleError = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	styleTitle = lipgloss.NewStyle().Foreground(lipgloss.Color("7")).Bold(true)
	styleHint  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	styleMuted = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleArrow = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// colorEnabled controls whether styles are applied.
var colorEnabled = true

// DisableColors disables colored output.
func DisableColors() {
	colorEnabled = false
}

// EnableColors enables colored output.
func EnableColors() {
	colorEnabled = true
}

// ColorsEnabled reports whether colored output is on.
func ColorsEnabled() bool {
	return colorEnabled
}

func paint(style lipgloss.Style, text string) string {
	if !colorEnabled {
		return text
	}
	return style.Render(text)
}

// Format returns the error rendered as a multi-line block for terminals.
func (e *ZooError) Format() string {
	var b strings.Builder

	b.WriteString("\n")
	if e.Code != "" {
		b.WriteString(paint(styleError, "ERROR "))
		b.WriteString(paint(styleTitle, e.Code+": "+e.Message))
	} else {
		b.WriteString(paint(styleError, "ERROR: "))
		b.WriteString(paint(styleTitle, e.Message))
	}
	b.WriteString("\n\n")

	if e.Location != nil {
		b.WriteString("  ")
		b.WriteString(paint(styleHint, e.Location.String()))
		b.WriteString("\n\n")

		if len(e.Context) > 0 {
			startLine := e.Location.Line - len(e.Context)/2
			if startLine < 1 {
				startLine = 1
			}
			for i, line := range e.Context {
				lineNum := startLine + i
				if lineNum == e.Location.Line {
					b.WriteString("  ")
					b.WriteString(paint(styleArrow, "→ "))
				} else {
					b.WriteString("    ")
				}
				b.WriteString(fmt.Sprintf("%4d", lineNum))
				b.WriteString(paint(styleMuted, " │ "))
				b.WriteString(line)
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
	}

	if e.Detail != "" {
		for _, line := range wrapText(e.Detail, 70) {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if e.Hint != "" {
		b.WriteString("  ")
		b.WriteString(paint(styleHint, "Hint: "))
		b.WriteString(e.Hint)
		b.WriteString("\n")
	}

	return b.String()
}

// FormatCompact returns a compact single-line error format.
func (e *ZooError) FormatCompact() string {
	var b strings.Builder

	if e.Location != nil {
		b.WriteString(e.Location.String())
		b.WriteString(": ")
	}
	if e.Code != "" {
		b.WriteString(e.Code)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	return b.String()
}

// FormatJSON returns the error as a JSON object.
func (e *ZooError) FormatJSON() string {
	out := struct {
		Code     string    `json:"code,omitempty"`
		Category Category  `json:"category"`
		Message  string    `json:"message"`
		Detail   string    `json:"detail,omitempty"`
		Location *Location `json:"location,omitempty"`
		Hint     string    `json:"hint,omitempty"`
	}{e.Code, e.Category, e.Message, e.Detail, e.Location, e.Hint}

	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Sprintf(`{"message":%q}`, e.Message)
	}
	return string(data)
}

// wrapText wraps text to the specified width.
func wrapText(text string, width int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= width {
		return []string{text}
	}

	var lines []string
	var current strings.Builder

	for _, word := range strings.Fields(text) {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}

	return lines
}

// PrintError prints a formatted error to stderr.
func PrintError(err error) {
	FprintError(os.Stderr, err)
}

// FprintError prints a formatted error to w.
func FprintError(w io.Writer, err error) {
	if ze := FromError(err, ""); ze != nil && ze.Code != "" {
		fmt.Fprint(w, ze.Format())
		return
	}
	fmt.Fprintf(w, "\n%s %s\n\n", paint(styleError, "ERROR:"), err.Error())
}

// Package diag renders violations for people: a rust-style header, the
// location, the offending source line and a caret underline.
//
//	error[DisallowedCallee]: call to "eval" is not allowed
//	  --> script.js:1:1
//	   |
//	 1 | eval(input)
//	   | ^^^^^^^^^^^
package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/risor-io/sanitizer/policy"
	"github.com/risor-io/sanitizer/syntax"
	"github.com/risor-io/sanitizer/token"
)

// Formatter formats violations with optional colors.
type Formatter struct {
	// UseColor enables ANSI color codes in output.
	UseColor bool

	// Policy, when set, is consulted for "did you mean" hints on names
	// rejected by an allow list.
	Policy *policy.Policy
}

// NewFormatter creates a new violation formatter.
func NewFormatter(useColor bool) *Formatter {
	return &Formatter{UseColor: useColor}
}

// Colors used for violation formatting
var (
	colorError     = enabled(color.FgRed)
	colorErrorBold = enabled(color.FgHiRed, color.Bold)
	colorCode      = enabled(color.FgHiBlack)
	colorLocation  = enabled(color.FgCyan)
	colorGutter    = enabled(color.FgHiBlack)
	colorCaret     = enabled(color.FgHiRed)
	colorHint      = enabled(color.FgHiYellow)
)

// enabled returns a color that ignores color.NoColor. Formatter.UseColor is
// the only switch.
func enabled(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	c.EnableColor()
	return c
}

func (f *Formatter) paint(c *color.Color, s string) string {
	if !f.UseColor || s == "" {
		return s
	}
	return c.Sprint(s)
}

// Format renders one violation against the source it was found in.
func (f *Formatter) Format(v syntax.Violation, source string) string {
	return f.format(v, source, token.NewFile(v.Span.Start.File, source), "")
}

// FormatAll renders every violation, numbering them when there is more than
// one, followed by a summary line.
func (f *Formatter) FormatAll(violations []syntax.Violation, source string) string {
	switch len(violations) {
	case 0:
		return ""
	case 1:
		return f.Format(violations[0], source)
	}
	file := token.NewFile(violations[0].Span.Start.File, source)
	var b strings.Builder
	for i, v := range violations {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(f.format(v, source, file, fmt.Sprintf("%d/%d", i+1, len(violations))))
	}
	b.WriteString("\n")
	b.WriteString(f.paint(colorErrorBold, fmt.Sprintf("found %d violations", len(violations))))
	b.WriteString("\n")
	return b.String()
}

func (f *Formatter) format(v syntax.Violation, source string, file *token.File, prefix string) string {
	var b strings.Builder
	pos := v.Span.Start
	line := pos.LineNumber()

	width := len(fmt.Sprint(line))
	if width < 2 {
		width = 2
	}
	pad := strings.Repeat(" ", width)

	// Header: "error[Code]: message", with "[2/5]" ahead of the code when
	// several violations are listed.
	b.WriteString(f.paint(colorErrorBold, v.Severity.String()))
	label := string(v.Code)
	if prefix != "" {
		label = prefix + " " + label
	}
	b.WriteString(f.paint(colorCode, "["+label+"]"))
	b.WriteString(f.paint(colorError, ": "))
	b.WriteString(v.Message)
	b.WriteString("\n")

	// Location: "  --> file:line:col"
	b.WriteString(pad)
	b.WriteString(f.paint(colorLocation, "-->"))
	b.WriteString(" ")
	b.WriteString(f.paint(colorLocation, pos.String()))
	b.WriteString("\n")

	text := file.Line(source, line)
	if text != "" || source != "" {
		b.WriteString(pad)
		b.WriteString(f.paint(colorGutter, " |"))
		b.WriteString("\n")

		b.WriteString(f.paint(colorGutter, fmt.Sprintf("%*d | ", width, line)))
		b.WriteString(text)
		b.WriteString("\n")

		b.WriteString(pad)
		b.WriteString(f.paint(colorGutter, " | "))
		b.WriteString(caretIndent(text, pos.Column))
		b.WriteString(f.paint(colorCaret, strings.Repeat("^", caretLength(text, pos.Column, v.Span.Length()))))
		b.WriteString("\n")
	}

	if hint := f.hint(v); hint != "" {
		b.WriteString(pad)
		b.WriteString(f.paint(colorGutter, " = "))
		b.WriteString(f.paint(colorHint, "hint: "))
		b.WriteString(hint)
		b.WriteString("\n")
	}
	return b.String()
}

// caretIndent blanks out the text before the column, keeping tabs so the
// caret lines up with the source.
func caretIndent(text string, column int) string {
	if column > len(text) {
		column = len(text)
	}
	indent := []byte(text[:column])
	for i, ch := range indent {
		if ch != '\t' {
			indent[i] = ' '
		}
	}
	return string(indent)
}

// caretLength limits the underline to the rest of the line and makes it at
// least one character long.
func caretLength(text string, column, length int) int {
	if rest := len(text) - column; length > rest {
		length = rest
	}
	if length < 1 {
		length = 1
	}
	return length
}

package diag

import (
	"strings"
	"testing"

	"github.com/risor-io/sanitizer/policy"
	"github.com/risor-io/sanitizer/syntax"
	"github.com/risor-io/sanitizer/token"
	"github.com/stretchr/testify/assert"
)

func violation(file *token.File, code syntax.Code, start, end int, message string) syntax.Violation {
	return syntax.Violation{Code: code, Message: message, Span: file.Span(start, end)}
}

func TestFormatPlain(t *testing.T) {
	source := "let x = eval(y);"
	file := token.NewFile("script.js", source)
	v := violation(file, syntax.DisallowedCallee, 8, 15, `call to "eval" is not allowed`)

	got := NewFormatter(false).Format(v, source)
	want := strings.Join([]string{
		`error[DisallowedCallee]: call to "eval" is not allowed`,
		"  --> script.js:1:9",
		"   |",
		" 1 | let x = eval(y);",
		"   |         ^^^^^^^",
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestFormatLaterLine(t *testing.T) {
	source := "let a = 1;\n\twith (a) {}\n"
	file := token.NewFile("", source)
	v := violation(file, syntax.DisallowedKeyword, 12, 16, `keyword "with" is not allowed`)

	got := NewFormatter(false).Format(v, source)
	assert.Contains(t, got, "  --> 2:2\n")
	assert.Contains(t, got, " 2 | \twith (a) {}\n")
	// Tabs are kept so the caret lines up under the keyword.
	assert.Contains(t, got, "   | \t^^^^\n")
}

func TestFormatClipsCaret(t *testing.T) {
	source := "foo(\n  bar)"
	file := token.NewFile("", source)
	v := violation(file, syntax.DisallowedCallee, 0, len(source), `call to "foo" is not allowed`)

	got := NewFormatter(false).Format(v, source)
	assert.Contains(t, got, "   | ^^^^\n")
	assert.NotContains(t, got, "bar")
}

func TestFormatWithoutSource(t *testing.T) {
	file := token.NewFile("", "")
	v := violation(file, syntax.EmptySource, 0, 0, "source contains no code")

	got := NewFormatter(false).Format(v, "")
	assert.Equal(t, "error[EmptySource]: source contains no code\n  --> 1:1\n", got)
}

func TestFormatAll(t *testing.T) {
	source := "a;\nb;"
	file := token.NewFile("", source)
	vs := []syntax.Violation{
		violation(file, syntax.DisallowedIdentifier, 0, 1, `identifier "a" is not allowed`),
		violation(file, syntax.DisallowedIdentifier, 3, 4, `identifier "b" is not allowed`),
	}

	f := NewFormatter(false)
	assert.Empty(t, f.FormatAll(nil, source))
	assert.Equal(t, f.Format(vs[0], source), f.FormatAll(vs[:1], source))

	got := f.FormatAll(vs, source)
	assert.Contains(t, got, `error[1/2 DisallowedIdentifier]: identifier "a" is not allowed`)
	assert.Contains(t, got, `error[2/2 DisallowedIdentifier]: identifier "b" is not allowed`)
	assert.True(t, strings.HasSuffix(got, "found 2 violations\n"))
}

func TestFormatColor(t *testing.T) {
	source := "eval(x)"
	file := token.NewFile("", source)
	v := violation(file, syntax.DisallowedCallee, 0, 7, `call to "eval" is not allowed`)

	assert.NotContains(t, NewFormatter(false).Format(v, source), "\x1b[")
	colored := NewFormatter(true).Format(v, source)
	assert.Contains(t, colored, "\x1b[")
	assert.Contains(t, colored, "eval(x)")
}

func TestFormatHint(t *testing.T) {
	source := "cont + 1"
	file := token.NewFile("", source)
	v := violation(file, syntax.DisallowedIdentifier, 0, 4, `identifier "cont" is not allowed`)
	v.Name = "cont"

	allow := policy.NewBuilder("allow").
		IdentifierMode(policy.AllowList).Identifiers("count", "total").
		MustBuild()
	f := &Formatter{Policy: allow}
	assert.Contains(t, f.Format(v, source), "   = hint: did you mean 'count'?\n")

	// Deny lists give no hint: the nearby names are the forbidden ones.
	deny := policy.NewBuilder("deny").Identifiers("count").MustBuild()
	f = &Formatter{Policy: deny}
	assert.NotContains(t, f.Format(v, source), "hint")

	// Only identifier and keyword violations are considered.
	callee := violation(file, syntax.DisallowedCallee, 0, 4, `call to "cont" is not allowed`)
	callee.Name = "cont"
	f = &Formatter{Policy: allow}
	assert.NotContains(t, f.Format(callee, source), "hint")

	// The hint follows the recorded name, not the message text.
	reworded := violation(file, syntax.DisallowedIdentifier, 0, 4, `"x" is quoted here but cont is rejected`)
	reworded.Name = "cont"
	assert.Contains(t, f.Format(reworded, source), "did you mean 'count'?")
	unnamed := violation(file, syntax.DisallowedIdentifier, 0, 4, `identifier "cont" is not allowed`)
	assert.NotContains(t, f.Format(unnamed, source), "hint")
}

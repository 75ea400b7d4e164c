package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPositionNumbers(t *testing.T) {
	pos := Position{Char: 12, LineStart: 10, Line: 1, Column: 2}
	require.Equal(t, 2, pos.LineNumber())
	require.Equal(t, 3, pos.ColumnNumber())
	require.True(t, pos.IsValid())
	require.False(t, NoPos.IsValid())
}

func TestPositionString(t *testing.T) {
	pos := Position{Line: 4, Column: 0}
	require.Equal(t, "5:1", pos.String())
	pos.File = "script.js"
	require.Equal(t, "script.js:5:1", pos.String())
}

func TestFilePosition(t *testing.T) {
	src := "let a = 1;\nlet b = 2;\n\nc()"
	f := NewFile("x.js", src)
	require.Equal(t, 4, f.LineCount())
	require.Equal(t, len(src), f.Size())
	require.Equal(t, "x.js", f.Name())

	tests := []struct {
		offset int
		line   int
		column int
	}{
		{0, 1, 1},
		{4, 1, 5},
		{10, 1, 11},
		{11, 2, 1},
		{15, 2, 5},
		{22, 3, 1},
		{23, 4, 1},
		{25, 4, 3},
	}
	for _, tt := range tests {
		pos := f.Position(tt.offset)
		require.Equal(t, tt.line, pos.LineNumber(), "offset %d", tt.offset)
		require.Equal(t, tt.column, pos.ColumnNumber(), "offset %d", tt.offset)
		require.Equal(t, tt.offset, pos.Char)
		require.Equal(t, "x.js", pos.File)
	}
}

func TestFilePositionClamps(t *testing.T) {
	f := NewFile("", "ab\ncd")
	require.Equal(t, 0, f.Position(-5).Char)
	end := f.Position(100)
	require.Equal(t, 5, end.Char)
	require.Equal(t, 2, end.LineNumber())
	require.Equal(t, 3, end.ColumnNumber())
}

func TestFileOffset(t *testing.T) {
	f := NewFile("", "ab\ncd\nef")
	require.Equal(t, 0, f.Offset(1, 1))
	require.Equal(t, 4, f.Offset(2, 2))
	require.Equal(t, 6, f.Offset(3, 1))
	require.Equal(t, 0, f.Offset(0, 5))
	require.Equal(t, 8, f.Offset(9, 1))
	require.Equal(t, 3, f.Offset(2, 0))
	require.Equal(t, 8, f.Offset(3, 50))
}

func TestFileSpan(t *testing.T) {
	f := NewFile("", "foo(bar)")
	s := f.Span(4, 7)
	require.Equal(t, 4, s.Offset())
	require.Equal(t, 3, s.Length())
	require.True(t, f.Span(0, 8).Contains(s))
	require.False(t, s.Contains(f.Span(0, 8)))

	inverted := f.Span(6, 2)
	require.Equal(t, 0, inverted.Length())
	require.Equal(t, 6, inverted.Offset())
}

func TestFileLine(t *testing.T) {
	src := "first\r\nsecond\nthird"
	f := NewFile("", src)
	require.Equal(t, "first", f.Line(src, 1))
	require.Equal(t, "second", f.Line(src, 2))
	require.Equal(t, "third", f.Line(src, 3))
	require.Equal(t, "", f.Line(src, 4))
	require.Equal(t, "", f.Line(src, 0))
	require.Equal(t, "", f.Line("other source", 1))
}

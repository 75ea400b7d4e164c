package token

import "sort"

// File maps byte offsets of a single source text to line and column positions.
// A File is immutable once created and safe for concurrent use.
type File struct {
	name  string
	size  int
	lines []int // byte offset of the first byte of each line
}

// NewFile indexes the line starts of src.
func NewFile(name, src string) *File {
	lines := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			lines = append(lines, i+1)
		}
	}
	return &File{name: name, size: len(src), lines: lines}
}

// Name returns the file name given at construction.
func (f *File) Name() string {
	return f.name
}

// Size returns the length of the source in bytes.
func (f *File) Size() int {
	return f.size
}

// LineCount returns the number of lines in the source.
func (f *File) LineCount() int {
	return len(f.lines)
}

// Position converts a byte offset into a Position. Offsets outside the source
// are clamped to its bounds.
func (f *File) Position(offset int) Position {
	offset = f.clamp(offset)
	line := sort.Search(len(f.lines), func(i int) bool { return f.lines[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	start := f.lines[line]
	return Position{
		Char:      offset,
		LineStart: start,
		Line:      line,
		Column:    offset - start,
		File:      f.name,
	}
}

// Offset converts a 1-indexed line and column into a byte offset.
func (f *File) Offset(line, column int) int {
	if line < 1 {
		return 0
	}
	if line > len(f.lines) {
		return f.size
	}
	if column < 1 {
		column = 1
	}
	return f.clamp(f.lines[line-1] + column - 1)
}

// Span returns the span covering the byte range [start, end).
func (f *File) Span(start, end int) Span {
	start = f.clamp(start)
	end = f.clamp(end)
	if end < start {
		end = start
	}
	return Span{Start: f.Position(start), End: f.Position(end)}
}

// Line returns the text of the 1-indexed line without its trailing newline.
func (f *File) Line(src string, line int) string {
	if line < 1 || line > len(f.lines) || len(src) != f.size {
		return ""
	}
	start := f.lines[line-1]
	end := f.size
	if line < len(f.lines) {
		end = f.lines[line] - 1
	}
	if end > start && src[end-1] == '\r' {
		end--
	}
	return src[start:end]
}

func (f *File) clamp(offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > f.size {
		return f.size
	}
	return offset
}

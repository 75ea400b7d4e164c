package main

import (
	"path/filepath"

	"github.com/jdbaldry/go-language-server-protocol/lsp/protocol"
	"github.com/risor-io/sanitizer/checker"
	"github.com/risor-io/sanitizer/token"
)

// documentURI returns the URI editors use for the checked file. Sources
// read from --code or --stdin have no file and get an untitled URI.
func documentURI(filename string) protocol.DocumentURI {
	if filename == "" {
		return protocol.DocumentURI("untitled:stdin")
	}
	if abs, err := filepath.Abs(filename); err == nil {
		filename = abs
	}
	return protocol.DocumentURI("file://" + filepath.ToSlash(filename))
}

// publishDiagnostics converts a result into the parameters of an LSP
// textDocument/publishDiagnostics notification. An accepted result clears
// the diagnostics of the document.
func publishDiagnostics(uri protocol.DocumentURI, source string, result *checker.Result) protocol.PublishDiagnosticsParams {
	file := token.NewFile("", source)
	diagnostics := make([]protocol.Diagnostic, 0)
	for _, v := range result.Violations() {
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: lspPosition(file, source, v.Span.Start),
				End:   lspPosition(file, source, v.Span.End),
			},
			Severity: protocol.SeverityError,
			Code:     string(v.Code),
			Source:   "sanitize",
			Message:  v.Message,
		})
	}
	return protocol.PublishDiagnosticsParams{URI: uri, Diagnostics: diagnostics}
}

// lspPosition converts a byte position into an LSP position, whose
// character offset counts UTF-16 code units.
func lspPosition(file *token.File, source string, pos token.Position) protocol.Position {
	line := file.Line(source, pos.LineNumber())
	column := pos.Column
	if column > len(line) {
		column = len(line)
	}
	var units uint32
	for _, r := range line[:column] {
		if r >= 0x10000 {
			units += 2
		} else {
			units++
		}
	}
	return protocol.Position{Line: uint32(pos.Line), Character: units}
}

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/risor-io/sanitizer/checker"
	"github.com/risor-io/sanitizer/policy"
	"github.com/risor-io/sanitizer/token"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with the given stdin and arguments.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCheckAccepted(t *testing.T) {
	out, _, err := execute(t, "", "check", "--code", "let a = 1;")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "accepted: Program ("), out)
	require.True(t, strings.HasSuffix(out, " nodes)\n"), out)
}

func TestCheckRejected(t *testing.T) {
	out, _, err := execute(t, "", "check", "-c", "eval(x)")
	require.ErrorIs(t, err, errRejected)
	require.Contains(t, out, "DisallowedCallee]: call to \"eval\" is not allowed")
	require.Contains(t, out, "DisallowedIdentifier]: identifier \"eval\" is not allowed")
	require.Contains(t, out, " 1 | eval(x)")
	require.Contains(t, out, "found 2 violations")
	require.NotContains(t, out, "\x1b[")
}

func TestCheckStdinWithShape(t *testing.T) {
	out, _, err := execute(t, "function main(a) { return a; }", "check", "--stdin", "--shape", "function", "--name", "main", "--arity", "1")
	require.NoError(t, err)
	require.Contains(t, out, "accepted: FunctionDeclaration")

	out, _, err = execute(t, "function main(a, b) { return a; }", "check", "--stdin", "--shape", "function", "--arity", "1")
	require.ErrorIs(t, err, errRejected)
	require.Contains(t, out, "function declares 2 parameters, 1 required")

	out, _, err = execute(t, "", "check", "--shape", "expression", "--code", "price * qty")
	require.NoError(t, err)
	require.Contains(t, out, "accepted: Binary")

	out, _, err = execute(t, "", "check", "--shape", "class", "--code", "class A {}")
	require.NoError(t, err)
	require.Contains(t, out, "accepted: ClassDeclaration")
}

func TestCheckFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.js")
	require.NoError(t, os.WriteFile(path, []byte("let a = 1;\nwith (a) {}\n"), 0o600))

	out, _, err := execute(t, "", "check", path)
	require.ErrorIs(t, err, errRejected)
	require.Contains(t, out, "script.js:2:1")
	require.Contains(t, out, " 2 | with (a) {}")

	_, _, err = execute(t, "", "check", filepath.Join(t.TempDir(), "missing.js"))
	require.Error(t, err)
	require.NotErrorIs(t, err, errRejected)
}

func TestCheckJSON(t *testing.T) {
	out, _, err := execute(t, "", "check", "-o", "json", "--code", "x.__proto__;")
	require.ErrorIs(t, err, errRejected)

	var report checker.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.False(t, report.Accepted)
	require.Len(t, report.Violations, 1)
	v := report.Violations[0]
	require.EqualValues(t, "DisallowedProperty", v.Code)
	require.Equal(t, 1, v.Line)
	require.Equal(t, 1, v.Column)
	require.Equal(t, 11, v.Length)

	out, _, err = execute(t, "", "check", "-o", "json", "--code", "a + b;")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.True(t, report.Accepted)
	require.Equal(t, "Program", report.Shape)
}

func TestCheckLSP(t *testing.T) {
	out, _, err := execute(t, "", "check", "-o", "lsp", "--code", "let s = '😀';\ndebugger;")
	require.ErrorIs(t, err, errRejected)

	var params struct {
		URI         string `json:"uri"`
		Diagnostics []struct {
			Range struct {
				Start struct{ Line, Character int }
				End   struct{ Line, Character int }
			} `json:"range"`
			Severity int    `json:"severity"`
			Code     string `json:"code"`
			Source   string `json:"source"`
			Message  string `json:"message"`
		} `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &params))
	require.Equal(t, "untitled:stdin", params.URI)
	require.Len(t, params.Diagnostics, 1)
	d := params.Diagnostics[0]
	require.Equal(t, "DisallowedKeyword", d.Code)
	require.Equal(t, "sanitize", d.Source)
	require.Equal(t, 1, d.Severity)
	require.Equal(t, 1, d.Range.Start.Line)
	require.Equal(t, 0, d.Range.Start.Character)
	require.Equal(t, 8, d.Range.End.Character)

	// An accepted source clears the diagnostics.
	out, _, err = execute(t, "", "check", "-o", "lsp", "--code", "a;")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &params))
	require.NotNil(t, params.Diagnostics)
	require.Empty(t, params.Diagnostics)
}

func TestLSPPositionCountsUTF16(t *testing.T) {
	source := "'😀' + eval"
	file := token.NewFile("", source)
	pos := file.Position(strings.Index(source, "eval"))
	got := lspPosition(file, source, pos)
	require.EqualValues(t, 0, got.Line)
	require.EqualValues(t, 7, got.Character)
}

func TestDocumentURI(t *testing.T) {
	require.EqualValues(t, "untitled:stdin", documentURI(""))
	uri := string(documentURI("script.js"))
	require.True(t, strings.HasPrefix(uri, "file:///"), uri)
	require.True(t, strings.HasSuffix(uri, "/script.js"), uri)
}

func TestCheckInputErrors(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		error string
	}{
		{"no input", []string{"check"}, "no input"},
		{"two inputs", []string{"check", "--code", "a", "--stdin"}, "multiple input sources specified"},
		{"unknown shape", []string{"check", "--shape", "module", "--code", "a"}, "unknown shape: module"},
		{"unknown output", []string{"check", "-o", "xml", "--code", "a"}, "unknown output format: xml"},
		{"missing policy", []string{"check", "--policy", "/nonexistent/policy.yaml", "--code", "a"}, "/nonexistent/policy.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, "", tt.args...)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.error)
		})
	}
}

func TestCheckPolicyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	doc := "name: tight\nidentifiers:\n  mode: allow\n  names: [count, total]\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	_, _, err := execute(t, "", "check", "--policy", path, "--code", "total = count + 1;")
	require.NoError(t, err)

	out, _, err := execute(t, "", "check", "--policy", path, "--code", "total = cont + 1;")
	require.ErrorIs(t, err, errRejected)
	require.Contains(t, out, `identifier "cont" is not allowed`)
	require.Contains(t, out, "hint: did you mean 'count'?")
}

func TestPolicyFileFormats(t *testing.T) {
	dir := t.TempDir()
	write := func(name, doc string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
		return path
	}

	jsonPath := write("policy.json", `{"name": "host", "extends": "default", "reserved_identifiers": ["$host"], "max_source_size": 64}`)
	out, _, err := execute(t, "", "check", "--policy", jsonPath, "--code", "let $host = 1;")
	require.ErrorIs(t, err, errRejected)
	require.Contains(t, out, `ReservedIdentifier]: declaration of reserved identifier "$host" is not allowed`)
	out, _, err = execute(t, "", "check", "--policy", jsonPath, "--code", strings.Repeat("a;", 40))
	require.ErrorIs(t, err, errRejected)
	require.Contains(t, out, "source size of 80 bytes exceeds the limit of 64")

	tomlPath := write("policy.toml", "name = \"tight\"\n\n[identifiers]\nmode = \"allow\"\nnames = [\"count\", \"total\"]\n")
	_, _, err = execute(t, "", "check", "--policy", tomlPath, "--code", "total = count + 1;")
	require.NoError(t, err)
	_, _, err = execute(t, "", "check", "--policy", tomlPath, "--code", "total = other;")
	require.ErrorIs(t, err, errRejected)

	plain := write("policy", "name: plain\nextends: permissive\n")
	_, _, err = execute(t, "", "check", "--policy", plain, "--code", "with (a) {}")
	require.NoError(t, err)

	misspelled := write("typo.yaml", "name: typo\ndisallowed_calees: [fetch]\n")
	_, _, err = execute(t, "", "check", "--policy", misspelled, "--code", "a;")
	require.Error(t, err)
	require.NotErrorIs(t, err, errRejected)
	require.Contains(t, err.Error(), "disallowed_calees")

	empty := write("empty.yaml", "")
	_, _, err = execute(t, "", "check", "--policy", empty, "--code", "a;")
	require.Error(t, err)
	require.Contains(t, err.Error(), "document is empty")
}

func TestPolicyFromEnvironment(t *testing.T) {
	_, _, err := execute(t, "", "check", "--code", "eval;")
	require.ErrorIs(t, err, errRejected)

	t.Setenv("SANITIZE_POLICY", "permissive")
	_, _, err = execute(t, "", "check", "--code", "eval;")
	require.NoError(t, err)

	// A flag overrides the environment.
	_, _, err = execute(t, "", "check", "--policy", "default", "--code", "eval;")
	require.ErrorIs(t, err, errRejected)
}

func TestLogLevel(t *testing.T) {
	_, stderr, err := execute(t, "", "--log-level", "info", "check", "--code", "a;")
	require.NoError(t, err)
	require.Contains(t, stderr, "check complete")
	require.Contains(t, stderr, "run=")

	_, stderr, err = execute(t, "", "check", "--code", "a;")
	require.NoError(t, err)
	require.Empty(t, stderr)
}

func TestPolicyCommand(t *testing.T) {
	out, _, err := execute(t, "", "policy")
	require.NoError(t, err)
	require.Contains(t, out, "name: default")
	require.Contains(t, out, "disallowed_callees:")

	// The printed policy loads back to the same policy.
	loaded, err := policy.Load(strings.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, policy.Default().Config(), loaded.Config())

	out, _, err = execute(t, "", "policy", "--policy", "permissive", "-o", "json")
	require.NoError(t, err)
	var cfg policy.Config
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	require.Equal(t, "permissive", cfg.Name)
	require.Contains(t, cfg.DisallowedCallees, "eval")

	_, _, err = execute(t, "", "policy", "-o", "toml")
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	require.Equal(t, "sanitize dev (commit unknown, built unknown)\n", out)

	out, _, err = execute(t, "", "version", "-o", "json")
	require.NoError(t, err)
	var info versionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	require.Equal(t, versionInfo{Version: "dev", Commit: "unknown", Date: "unknown"}, info)

	out, _, err = execute(t, "", "--version")
	require.NoError(t, err)
	require.Equal(t, "sanitize dev (commit unknown, built unknown)\n", out)
}

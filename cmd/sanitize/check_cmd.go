package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/risor-io/sanitizer/checker"
	"github.com/risor-io/sanitizer/diag"
	"github.com/risor-io/sanitizer/policy"
	"github.com/spf13/cobra"
)

var outputFormatsCompletion = []string{"text", "json", "lsp"}

func (a *app) newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Check source against the policy",
		Long: `Check parses the source and walks it under the selected policy.

The command exits with status 1 when the source is rejected and prints every
violation found.`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.runCheck,
	}
	flags := cmd.Flags()
	flags.StringP("code", "c", "", "Source to check")
	flags.Bool("stdin", false, "Read source from stdin")
	flags.String("shape", "statements", "Expected shape: statements, function, class or expression")
	flags.String("name", "", "Required function or class name")
	flags.Int("arity", checker.AnyArity, "Required number of function parameters (-1 for any)")
	flags.StringP("output", "o", "text", "Output format: text, json or lsp")
	_ = cmd.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return outputFormatsCompletion, cobra.ShellCompDirectiveNoFileComp
	})
	a.bind(cmd, "shape", "name", "arity", "output")
	return cmd
}

func (a *app) runCheck(cmd *cobra.Command, args []string) error {
	source, filename, err := getSource(cmd, args)
	if err != nil {
		return err
	}
	p, err := a.loadPolicy()
	if err != nil {
		return err
	}
	logger := a.logger(cmd.ErrOrStderr())
	c, err := a.newChecker(p, filename, logger)
	if err != nil {
		return err
	}

	result := c.Validate(source)
	logger.Info().
		Str("file", filename).
		Str("policy", p.Name()).
		Bool("accepted", result.Accepted()).
		Msg("check complete")

	out := cmd.OutOrStdout()
	if err := a.printResult(out, result, p, source, filename); err != nil {
		return err
	}
	if !result.Accepted() {
		return errRejected
	}
	return nil
}

func (a *app) printResult(out io.Writer, result *checker.Result, p *policy.Policy, source, filename string) error {
	switch format := strings.ToLower(a.v.GetString("output")); format {
	case "", "text":
		if result.Accepted() {
			msg := fmt.Sprintf("accepted: %s (%d nodes)", result.Shape(), result.NodeCount())
			if a.useColor(out) {
				msg = green(msg)
			}
			_, err := fmt.Fprintln(out, msg)
			return err
		}
		f := diag.NewFormatter(a.useColor(out))
		f.Policy = p
		_, err := io.WriteString(out, f.FormatAll(result.Violations(), source))
		return err
	case "json":
		data, err := a.marshalJSON(out, result.Report())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case "lsp":
		data, err := a.marshalJSON(out, publishDiagnostics(documentURI(filename), source, result))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/risor-io/sanitizer/checker"
	"github.com/risor-io/sanitizer/policy"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// getSource determines the source to check. There are three possibilities:
// 1. --code <code>
// 2. --stdin (read source from stdin)
// 3. path as args[0]
// The second result is the file name, empty unless a path was given.
func getSource(cmd *cobra.Command, args []string) (string, string, error) {
	var codeFlagSet bool
	if f := cmd.Flags().Lookup("code"); f != nil && f.Changed {
		codeFlagSet = true
	}
	var stdinFlagSet bool
	if f := cmd.Flags().Lookup("stdin"); f != nil && f.Changed {
		stdinFlagSet = true
	}
	pathSupplied := len(args) > 0

	count := 0
	for _, set := range []bool{codeFlagSet, stdinFlagSet, pathSupplied} {
		if set {
			count++
		}
	}
	switch {
	case count > 1:
		return "", "", errors.New("multiple input sources specified")
	case count == 0:
		return "", "", errors.New("no input: pass a file, --code or --stdin")
	}

	if stdinFlagSet {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", err
		}
		return string(data), "", nil
	}
	if pathSupplied {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", err
		}
		return string(data), args[0], nil
	}
	code, _ := cmd.Flags().GetString("code")
	return code, "", nil
}

// loadPolicy resolves the --policy setting to a preset or a policy file.
func (a *app) loadPolicy() (*policy.Policy, error) {
	name := strings.TrimSpace(a.v.GetString("policy"))
	switch strings.ToLower(name) {
	case "", "default":
		return policy.Default(), nil
	case "permissive":
		return policy.Permissive(), nil
	}
	path, err := homedir.Expand(name)
	if err != nil {
		return nil, err
	}
	return loadPolicyFile(path)
}

// loadPolicyFile reads a policy document in any format viper understands,
// chosen by the file extension. Files without one are read as YAML. Unknown
// keys are rejected so that a misspelled layer cannot silently disable it.
func loadPolicyFile(path string) (*policy.Policy, error) {
	pv := viper.New()
	pv.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		pv.SetConfigType("yaml")
	}
	if err := pv.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading policy %s: %w", path, err)
	}
	if len(pv.AllKeys()) == 0 {
		return nil, fmt.Errorf("policy %s: document is empty", path)
	}
	var cfg policy.Config
	if err := pv.UnmarshalExact(&cfg); err != nil {
		return nil, fmt.Errorf("decoding policy %s: %w", path, err)
	}
	p, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// newChecker builds the checker selected by the --shape flag.
func (a *app) newChecker(p *policy.Policy, filename string, logger zerolog.Logger) (checker.Checker, error) {
	opts := []checker.Option{checker.WithLogger(logger)}
	if filename != "" {
		opts = append(opts, checker.WithFilename(filename))
	}
	switch shape := strings.ToLower(a.v.GetString("shape")); shape {
	case "", "statements", "script":
		return checker.NewStatementList(p, opts...), nil
	case "function":
		return checker.NewFunction(p, checker.FunctionShape{
			Name:  a.v.GetString("name"),
			Arity: a.v.GetInt("arity"),
		}, opts...), nil
	case "class":
		return checker.NewClass(p, checker.ClassShape{Name: a.v.GetString("name")}, opts...), nil
	case "expression":
		return checker.NewExpression(p, opts...), nil
	default:
		return nil, fmt.Errorf("unknown shape: %s (expected statements, function, class or expression)", shape)
	}
}

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// errRejected is returned by the check command when the source fails the
// policy. The violations have already been printed.
var errRejected = errors.New("source rejected")

// app carries the configuration shared by all commands of one invocation.
type app struct {
	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	a.v.SetEnvPrefix("SANITIZE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "sanitize",
		Short:         "Check JavaScript source against a security policy before it runs",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.processGlobalFlags()
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("sanitize %s (commit %s, built %s)\n", version, commit, date))

	flags := root.PersistentFlags()
	flags.StringP("policy", "p", "default", "Policy file, or one of the presets default and permissive")
	flags.Bool("no-color", false, "Disable colored output")
	flags.String("log-level", "warn", "Log level (debug, info, warn, error, disabled)")
	a.bind(root, "policy", "no-color", "log-level")
	// NO_COLOR is honored as well as SANITIZE_NO_COLOR.
	_ = a.v.BindEnv("no-color", "SANITIZE_NO_COLOR", "NO_COLOR")

	root.AddCommand(a.newCheckCmd(), a.newPolicyCmd(), a.newVersionCmd())
	return root
}

// bind binds the named flags of cmd to viper keys of the same name.
func (a *app) bind(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			flag = cmd.PersistentFlags().Lookup(name)
		}
		if flag == nil {
			panic("unknown flag " + name)
		}
		if err := a.v.BindPFlag(name, flag); err != nil {
			panic(err)
		}
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errRejected) {
			fmt.Fprintf(os.Stderr, "%s\n", red(err.Error()))
		}
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hwlang/idl/internal/sema"
)

var evalFlags struct {
	unit string
}

var evalCmd = &cobra.Command{
	Use:   "eval <expression>",
	Short: "Evaluate an IDL expression under the configuration",
	Long: `Evaluate an expression against the global scope, reporting its type
and its compile-time value. An expression the configuration cannot
decide reports why, and the finite candidate set when one is known.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEval,
}

func init() {
	evalCmd.Flags().StringVarP(&evalFlags.unit, "unit", "u", "", "check this unit first and evaluate in its scope")
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	a, err := loadArch()
	if err != nil {
		return err
	}
	t := sema.NewGlobal(a)
	if evalFlags.unit != "" {
		rep, err := sema.CheckFile(evalFlags.unit, a)
		if err != nil {
			return err
		}
		t = rep.Table
	}
	res, err := sema.Eval(strings.Join(args, " "), t)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "type: ", res.Type)
	switch {
	case res.Value != nil:
		fmt.Fprintln(cmd.OutOrStdout(), "value:", res.Value)
	case len(res.Possible) > 0:
		parts := make([]string, len(res.Possible))
		for i, v := range res.Possible {
			parts[i] = v.String()
		}
		fmt.Fprintf(cmd.OutOrStdout(), "value: unknown, one of {%s}\n", strings.Join(parts, ", "))
	default:
		fmt.Fprintln(cmd.OutOrStdout(), "value: unknown:", res.Unknown)
	}
	return nil
}

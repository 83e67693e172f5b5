package main

import (
	"fmt"

	"github.com/spf13/cobra"

	idl "github.com/hwlang/idl"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the idl version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), idl.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

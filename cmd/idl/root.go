package main

import (
	"github.com/spf13/cobra"

	"github.com/hwlang/idl/internal/arch"
)

var rootFlags struct {
	archPath string
	base     int
}

var rootCmd = &cobra.Command{
	Use:           "idl",
	Short:         "Checker and evaluator for the instruction description language",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootFlags.archPath, "arch", "a", "", "architecture metadata file (YAML)")
	rootCmd.PersistentFlags().IntVar(&rootFlags.base, "base", 0, "base width (32 or 64); 0 leaves it open")
}

// loadArch builds the configuration the commands check against: the
// YAML file named by --arch, or an empty one. --base overrides the
// file's base width.
func loadArch() (arch.Arch, error) {
	if rootFlags.archPath == "" {
		return arch.Empty(rootFlags.base), nil
	}
	f, err := arch.Load(rootFlags.archPath)
	if err != nil {
		return nil, err
	}
	if rootFlags.base != 0 {
		f.BaseWidth = rootFlags.base
	}
	return f, nil
}

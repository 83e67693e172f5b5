package main

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/hwlang/idl/internal/sema"
)

var checkFlags struct {
	print bool
	watch bool
}

var checkCmd = &cobra.Command{
	Use:   "check <unit.idl>...",
	Short: "Type-check IDL units against the configuration",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkFlags.print, "print", false, "re-render each checked unit")
	checkCmd.Flags().BoolVarP(&checkFlags.watch, "watch", "w", false, "re-check units when they change")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	if err := checkAll(cmd, args); err != nil && !checkFlags.watch {
		return err
	}
	if !checkFlags.watch {
		return nil
	}
	return watch(cmd, args)
}

func checkAll(cmd *cobra.Command, paths []string) error {
	a, err := loadArch()
	if err != nil {
		return err
	}
	var failed bool
	for _, path := range paths {
		rep, err := sema.CheckFile(path, a)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
			failed = true
			continue
		}
		for _, w := range rep.Warnings {
			fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
		}
		if checkFlags.print {
			fmt.Fprint(cmd.OutOrStdout(), rep.Program.TextForm())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d warnings)\n", path, len(rep.Warnings))
	}
	if failed {
		return fmt.Errorf("check failed")
	}
	return nil
}

// watch re-runs the check whenever a watched unit is written. Editors
// often replace files instead of writing in place, so renames and
// creates count as changes too.
func watch(cmd *cobra.Command, paths []string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	for _, p := range paths {
		if err := w.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "watching for changes...")
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := checkAll(cmd, paths); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
			}
			// A rename drops the original watch; re-add quietly.
			_ = w.Add(ev.Name)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "watch:", err)
		}
	}
}

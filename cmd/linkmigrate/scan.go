package main

import (
	"fmt"

	"github.com/fwojciec/linkmigrator"
	"github.com/fwojciec/linkmigrator/fs"
)

// Run executes the scan command.
func (c *ScanCmd) Run(deps *Dependencies) error {
	if len(c.Files) == 0 {
		fmt.Fprintln(deps.Stderr, "error: at least one file is required")
		return linkmigrator.Errorf(linkmigrator.EINVALID, "at least one file is required")
	}

	run := &linkmigrator.Run{}
	for _, path := range c.Files {
		f, err := fs.ReadFragment(path, c.Type, "", c.Field)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", linkmigrator.ErrorMessage(err))
			return err
		}
		run.Fragments = append(run.Fragments, f)
	}

	conv, err := deps.NewConverter(ConverterConfig{ResourceMap: c.ResourceMap, Unwrap: c.Unwrap})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", linkmigrator.ErrorMessage(err))
		return err
	}

	if err := conv.Scan(run); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", linkmigrator.ErrorMessage(err))
		return err
	}

	if err := deps.Runs.CreateRun(deps.Ctx, run); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", linkmigrator.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Created run %s (%d fragments, %d deferred links)\n", run.ID, len(run.Fragments), run.Links.Len())
	return nil
}

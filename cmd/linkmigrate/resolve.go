package main

import (
	"fmt"
	"path/filepath"

	"github.com/fwojciec/linkmigrator"
	"github.com/fwojciec/linkmigrator/fs"
)

// Run executes the resolve command.
func (c *ResolveCmd) Run(deps *Dependencies) error {
	run, err := deps.Runs.FindRunByID(deps.Ctx, c.ID)
	if err != nil {
		if linkmigrator.ErrorCode(err) == linkmigrator.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: run %q not found. Use 'linkmigrate runs' to see available runs.\n", c.ID)
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", linkmigrator.ErrorMessage(err))
		}
		return err
	}

	conv, err := deps.NewConverter(ConverterConfig{ResourceMap: c.ResourceMap, Concurrency: c.Concurrency})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", linkmigrator.ErrorMessage(err))
		return err
	}

	if err := conv.Resolve(deps.Ctx, run); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", linkmigrator.ErrorMessage(err))
		return err
	}

	if err := deps.Runs.UpdateRun(deps.Ctx, run); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", linkmigrator.ErrorMessage(err))
		return err
	}

	if c.Out != "" {
		if err := writeFragments(deps, run, c.Out); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", linkmigrator.ErrorMessage(err))
			return err
		}
	}

	missing := 0
	for _, m := range run.Links.MissingLinks() {
		missing += len(m.Links)
	}
	fmt.Fprintf(deps.Stdout, "Resolved run %s: %d links, %d unresolved\n", run.ID, run.Links.Len(), missing)
	return nil
}

// writeFragments replaces the directory out with the fragments of run.
func writeFragments(deps *Dependencies, run *linkmigrator.Run, out string) error {
	store := fs.NewFragmentStore(filepath.Dir(out), filepath.Base(out))
	for _, f := range run.Fragments {
		if err := store.WriteFragment(deps.Ctx, f); err != nil {
			_ = store.Abort()
			return err
		}
	}
	return store.Commit()
}

package main

import (
	"fmt"

	"github.com/fwojciec/linkmigrator"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return linkmigrator.Errorf(linkmigrator.EINVALID, "use --force to confirm deletion")
	}

	if err := deps.Runs.DeleteRun(deps.Ctx, c.ID); err != nil {
		if linkmigrator.ErrorCode(err) == linkmigrator.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: run %q not found. Use 'linkmigrate runs' to see available runs.\n", c.ID)
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", linkmigrator.ErrorMessage(err))
		}
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted run %s\n", c.ID)
	return nil
}

package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/linkmigrator"
)

// Run executes the runs command.
func (c *RunsCmd) Run(deps *Dependencies) error {
	runs, err := deps.Runs.FindRuns(deps.Ctx, linkmigrator.RunFilter{Limit: c.Limit})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", linkmigrator.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs found. Use 'linkmigrate scan' to create one.")
		return nil
	}

	for _, r := range runs {
		status := "scanned"
		if r.Resolved() {
			status = "resolved " + r.ResolvedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  %s\n", r.ID, r.CreatedAt.Format(time.RFC3339), status)
	}

	return nil
}

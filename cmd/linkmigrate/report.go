package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/linkmigrator"
)

// Run executes the report command.
func (c *ReportCmd) Run(deps *Dependencies) error {
	run, err := deps.Runs.FindRunByID(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", linkmigrator.ErrorMessage(err))
		return err
	}

	if !run.Resolved() {
		fmt.Fprintf(deps.Stderr, "error: run %q has not been resolved. Use 'linkmigrate resolve' first.\n", c.ID)
		return linkmigrator.Errorf(linkmigrator.EINVALID, "run %q has not been resolved", c.ID)
	}

	missing := run.Links.MissingLinks()

	if c.JSON {
		if missing == nil {
			missing = []linkmigrator.MissingLinks{}
		}
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(missing)
	}

	if len(missing) == 0 {
		fmt.Fprintln(deps.Stdout, "All links resolved.")
		return nil
	}

	for _, m := range missing {
		fmt.Fprintf(deps.Stdout, "%s %s %s\n", m.Key.Type, m.Key.MigrationID, m.Field)
		for _, ref := range m.Links {
			fmt.Fprintf(deps.Stdout, "  %s: %s\n", ref.Kind, describe(ref))
		}
	}
	return nil
}

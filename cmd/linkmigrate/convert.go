package main

import (
	"fmt"
	"os"

	"github.com/fwojciec/linkmigrator"
)

// Run executes the convert command.
func (c *ConvertCmd) Run(deps *Dependencies) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}

	conv, err := deps.NewConverter(ConverterConfig{ResourceMap: c.ResourceMap, Unwrap: c.Unwrap})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", linkmigrator.ErrorMessage(err))
		return err
	}

	html, bad, err := conv.ConvertExportedHTML(deps.Ctx, string(data))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", linkmigrator.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, html)
	for _, ref := range bad {
		fmt.Fprintf(deps.Stderr, "unresolved %s link: %s\n", ref.Kind, describe(ref))
	}
	return nil
}

// describe formats the original value of ref and where it points now.
func describe(ref *linkmigrator.Reference) string {
	if ref.MissingURL == "" {
		return ref.OldValue
	}
	return ref.OldValue + " -> " + ref.MissingURL
}

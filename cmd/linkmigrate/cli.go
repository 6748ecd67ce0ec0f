package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/linkmigrator"
	"github.com/fwojciec/linkmigrator/migrate"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	Runs   linkmigrator.RunService

	// NewConverter builds a converter for the given settings.
	NewConverter func(cc ConverterConfig) (*migrate.Converter, error)
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `short:"c" type:"path" help:"YAML file overriding resource map behaviour"`
	Verbose bool   `short:"v" help:"Log debug output"`

	Convert ConvertCmd `cmd:"" help:"Scan and resolve a single HTML file"`
	Scan    ScanCmd    `cmd:"" help:"Scan HTML files into a new run"`
	Resolve ResolveCmd `cmd:"" help:"Resolve the links of a scanned run"`
	Report  ReportCmd  `cmd:"" help:"Show the unresolved links of a run"`
	Runs    RunsCmd    `cmd:"" help:"List all runs"`
	Delete  DeleteCmd  `cmd:"" help:"Delete a run"`
}

// ConvertCmd is the "convert" subcommand.
type ConvertCmd struct {
	File        string `arg:"" type:"existingfile" help:"HTML file to convert"`
	ResourceMap string `short:"m" required:"" type:"existingfile" help:"Resource map JSON file"`
	Unwrap      bool   `help:"Collapse attribute-less div and p wrappers around the content"`
}

// ScanCmd is the "scan" subcommand.
type ScanCmd struct {
	Files       []string `arg:"" type:"existingfile" help:"HTML files to scan; the file name is the migration ID"`
	ResourceMap string   `short:"m" required:"" type:"existingfile" help:"Resource map JSON file"`
	Type        string   `short:"t" default:"wiki_page" help:"Item type of the scanned content"`
	Field       string   `short:"f" default:"body" help:"Field of the scanned content"`
	Unwrap      bool     `help:"Collapse attribute-less div and p wrappers around the content"`
}

// ResolveCmd is the "resolve" subcommand.
type ResolveCmd struct {
	ID          string `arg:"" help:"Run ID"`
	ResourceMap string `short:"m" required:"" type:"existingfile" help:"Resource map JSON file"`
	Out         string `short:"o" type:"path" help:"Directory to write resolved fragments to"`
	Concurrency int    `default:"4" help:"Concurrent resolution limit"`
}

// ReportCmd is the "report" subcommand.
type ReportCmd struct {
	ID   string `arg:"" help:"Run ID"`
	JSON bool   `help:"Print the report as JSON"`
}

// RunsCmd is the "runs" subcommand.
type RunsCmd struct {
	Limit int `short:"n" default:"20" help:"Maximum number of runs"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	ID    string `arg:"" help:"Run ID"`
	Force bool   `help:"Confirm deletion"`
}

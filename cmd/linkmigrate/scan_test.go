package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fwojciec/linkmigrator"
	main "github.com/fwojciec/linkmigrator/cmd/linkmigrate"
	"github.com/fwojciec/linkmigrator/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("creates a run from the files", func(t *testing.T) {
		t.Parallel()

		var created *linkmigrator.Run
		stdout := &bytes.Buffer{}
		deps := newDeps(stdout, &bytes.Buffer{})
		deps.Runs = &mock.RunService{
			CreateRunFn: func(_ context.Context, run *linkmigrator.Run) error {
				run.ID = "run-1"
				created = run
				return nil
			},
		}

		cmd := &main.ScanCmd{
			Files: []string{
				writeFile(t, "Q1.html", `<a href="$WIKI_REFERENCE$/pages/A">x</a>`),
				writeFile(t, "Q2.html", `<p>no links</p>`),
			},
			ResourceMap: resourceMapPath,
			Type:        "quiz",
			Field:       "description",
		}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Created run run-1 (2 fragments, 1 deferred links)")

		require.NotNil(t, created)
		require.Len(t, created.Fragments, 2)
		assert.Equal(t, "Q1", created.Fragments[0].MigrationID)
		assert.Equal(t, "quiz", created.Fragments[0].ItemType)
		assert.Equal(t, "description", created.Fragments[0].Field)
		assert.Equal(t, `<a href="`+linkmigrator.Placeholder("$WIKI_REFERENCE$/pages/A")+`">x</a>`, created.Fragments[0].HTML)
		assert.Equal(t, `<p>no links</p>`, created.Fragments[1].HTML)

		refs := created.Links.Lookup(linkmigrator.LinkKey{Type: "quiz", MigrationID: "Q1"}, "description")
		require.Len(t, refs, 1)
		assert.Equal(t, linkmigrator.KindObject, refs[0].Kind)
	})

	t.Run("returns error when no files are given", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := newDeps(&bytes.Buffer{}, stderr)

		err := (&main.ScanCmd{ResourceMap: resourceMapPath, Type: "quiz", Field: "body"}).Run(deps)

		assert.Equal(t, linkmigrator.EINVALID, linkmigrator.ErrorCode(err))
		assert.Contains(t, stderr.String(), "error:")
	})

	t.Run("returns error when create fails", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := newDeps(stdout, stderr)
		deps.Runs = &mock.RunService{
			CreateRunFn: func(context.Context, *linkmigrator.Run) error {
				return linkmigrator.Errorf(linkmigrator.EINTERNAL, "disk full")
			},
		}

		cmd := &main.ScanCmd{
			Files:       []string{writeFile(t, "A.html", `<p>x</p>`)},
			ResourceMap: resourceMapPath,
			Type:        "wiki_page",
			Field:       "body",
		}
		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "error: disk full")
		assert.Empty(t, stdout.String())
	})
}

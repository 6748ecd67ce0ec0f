package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/fwojciec/linkmigrator"
	"github.com/fwojciec/linkmigrator/sqlite"
	"github.com/stretchr/testify/require"
)

// BenchmarkCreateRun stores a course-sized scan: many fragments, each with
// a handful of deferred links.
func BenchmarkCreateRun(b *testing.B) {
	const fragmentsPerRun = 100

	db := sqlite.NewDB(filepath.Join(b.TempDir(), "bench.db"))
	require.NoError(b, db.Open())
	defer db.Close()

	svc := sqlite.NewRunService(db)
	ctx := context.Background()

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		b.StopTimer()
		run := benchmarkRun(fragmentsPerRun)
		b.StartTimer()

		if err := svc.CreateRun(ctx, run); err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkRun(n int) *linkmigrator.Run {
	run := &linkmigrator.Run{Links: linkmigrator.NewLinkMap()}
	for i := 0; i < n; i++ {
		f := &linkmigrator.Fragment{
			ItemType:    "wiki_page",
			MigrationID: fmt.Sprintf("page%d", i),
			Field:       "body",
		}
		for j := 0; j < 5; j++ {
			old := fmt.Sprintf("$IMS-CC-FILEBASE$/page%d/file%d.png", i, j)
			ref := &linkmigrator.Reference{
				Kind:        linkmigrator.KindFile,
				RelPath:     fmt.Sprintf("page%d/file%d.png", i, j),
				OldValue:    old,
				Placeholder: linkmigrator.Placeholder(old),
			}
			run.Links.Add(f.Key(), f.Field, ref)
			f.HTML += fmt.Sprintf(`<p><img src="%s"></p>`, ref.Placeholder)
		}
		run.Fragments = append(run.Fragments, f)
	}
	return run
}

package mock_test

import (
	"context"
	"testing"

	"github.com/fwojciec/linkmigrator"
	"github.com/fwojciec/linkmigrator/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFragmentWriter_ImplementsInterface(t *testing.T) {
	t.Parallel()

	// Verify mock can be used where FragmentWriter is expected
	var _ linkmigrator.FragmentWriter = &mock.FragmentWriter{}
}

func TestFragmentWriter_WriteFragment(t *testing.T) {
	t.Parallel()

	t.Run("delegates to WriteFragmentFn", func(t *testing.T) {
		t.Parallel()

		var calledWith *linkmigrator.Fragment
		w := &mock.FragmentWriter{
			WriteFragmentFn: func(_ context.Context, f *linkmigrator.Fragment) error {
				calledWith = f
				return nil
			},
		}

		f := &linkmigrator.Fragment{
			ItemType:    "wiki_page",
			MigrationID: "A",
			Field:       "body",
			HTML:        "<p>hi</p>",
		}

		err := w.WriteFragment(context.Background(), f)

		require.NoError(t, err)
		assert.Equal(t, f, calledWith)
	})
}

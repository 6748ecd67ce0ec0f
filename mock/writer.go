package mock

import (
	"context"

	"github.com/fwojciec/linkmigrator"
)

var _ linkmigrator.FragmentWriter = (*FragmentWriter)(nil)

// FragmentWriter is a mock implementation of linkmigrator.FragmentWriter.
type FragmentWriter struct {
	WriteFragmentFn func(ctx context.Context, f *linkmigrator.Fragment) error
}

func (w *FragmentWriter) WriteFragment(ctx context.Context, f *linkmigrator.Fragment) error {
	return w.WriteFragmentFn(ctx, f)
}

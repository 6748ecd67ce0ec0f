package linkmigrator_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/linkmigrator"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := linkmigrator.Errorf(linkmigrator.ENOTFOUND, "run %q not found", "test")

	assert.Equal(t, linkmigrator.ENOTFOUND, linkmigrator.ErrorCode(err))
	assert.Equal(t, "run \"test\" not found", linkmigrator.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, linkmigrator.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, linkmigrator.ErrorMessage(nil))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("resolve: %w", linkmigrator.Errorf(linkmigrator.EINVALID, "bad"))

	assert.Equal(t, linkmigrator.EINVALID, linkmigrator.ErrorCode(err))
	assert.Equal(t, "bad", linkmigrator.ErrorMessage(err))
}

func TestErrorCode_OtherError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	assert.Equal(t, linkmigrator.EINTERNAL, linkmigrator.ErrorCode(err))
	assert.Equal(t, "Internal error", linkmigrator.ErrorMessage(err))
}

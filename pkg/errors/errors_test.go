// Package errors_test provides unit tests for the AppError type, factory
// functions, and error-chain helpers defined in pkg/errors/errors.go.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.ErrCodeInternal, "unexpected failure"},
		{"data format", errors.ErrCodeDataFormat, "case base is not a JSON array"},
		{"case not found", errors.ErrCodeCaseNotFound, "case 123_PID_2021 not found"},
		{"embedding down", errors.ErrCodeEmbeddingUnavailable, "embed endpoint unreachable"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail, "Detail should be empty for bare New()")
			assert.Nil(t, ae.Cause, "Cause should be nil for bare New()")
		})
	}
}

func TestNew_StackIsPopulated(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.ErrCodeInternal, "test")
	require.NotNil(t, ae)
	assert.Contains(t, ae.Stack, "errors_test")
}

func TestError_Format(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.ErrCodeDataFormat, "bad artifact")
	assert.Equal(t, "[PIPE_001] bad artifact", ae.Error())

	withDetail := ae.WithDetail("path=cases.json")
	assert.Equal(t, "[PIPE_001] bad artifact: path=cases.json", withDetail.Error())
	// WithDetail must not mutate the receiver.
	assert.Empty(t, ae.Detail)
}

func TestWrap_NilErrReturnsNil(t *testing.T) {
	t.Parallel()

	result := errors.Wrap(nil, errors.ErrCodeInternal, "should not matter")
	assert.Nil(t, result)
}

func TestWrap_CauseChainIsPreserved(t *testing.T) {
	t.Parallel()

	root := stderrors.New("disk full")
	mid := errors.Wrap(root, errors.ErrCodeStorageError, "write failed")
	top := errors.Wrap(mid, errors.ErrCodeStageFailed, "ingest aborted")

	assert.True(t, stderrors.Is(top, root))

	var ae *errors.AppError
	require.True(t, stderrors.As(top, &ae))
	assert.Equal(t, errors.ErrCodeStageFailed, ae.Code)
}

func TestWrap_UnknownCodeAdoptsInnerCode(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeDataFormat, "not a list")
	wrapped := errors.Wrap(inner, errors.CodeUnknown, "loading case base")

	assert.Equal(t, errors.ErrCodeDataFormat, wrapped.Code)
}

func TestWrapf_FormatsMessage(t *testing.T) {
	t.Parallel()

	wrapped := errors.Wrapf(fmt.Errorf("boom"), errors.ErrCodeItemProcessing, "document %q failed", "putusan_001.txt")
	require.NotNil(t, wrapped)
	assert.Equal(t, `document "putusan_001.txt" failed`, wrapped.Message)
	assert.Nil(t, errors.Wrapf(nil, errors.ErrCodeItemProcessing, "x"))
}

func TestIsCode_TraversesChain(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeEmbeddingUnavailable, "connection refused")
	outer := fmt.Errorf("retrieval: %w", inner)

	assert.True(t, errors.IsCode(outer, errors.ErrCodeEmbeddingUnavailable))
	assert.False(t, errors.IsCode(outer, errors.ErrCodeDataFormat))
	assert.False(t, errors.IsCode(nil, errors.ErrCodeDataFormat))
}

func TestFamilyHelpers(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.IsNotFound(errors.NotFound("gone")))
	assert.True(t, errors.IsNotFound(errors.New(errors.ErrCodeCaseNotFound, "gone")))
	assert.True(t, errors.IsValidation(errors.Validation("bad")))
	assert.True(t, errors.IsValidation(errors.InvalidParam("bad")))
	assert.True(t, errors.IsDataFormat(errors.DataFormat("not a list")))
	assert.True(t, errors.IsServiceUnavailable(errors.New(errors.ErrCodeEmbeddingUnavailable, "down")))
	assert.False(t, errors.IsNotFound(errors.Internal("boom")))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrCodeConflict, errors.GetCode(errors.Conflict("dup")))

	wrapped := fmt.Errorf("outer: %w", errors.ItemProcessing("doc failed"))
	assert.Equal(t, errors.ErrCodeItemProcessing, errors.GetCode(wrapped))
}

func TestWithCause_AttachesWithoutMutation(t *testing.T) {
	t.Parallel()

	base := errors.ServiceUnavailable("embedder down")
	cause := stderrors.New("dial tcp: refused")
	withCause := base.WithCause(cause)

	assert.Nil(t, base.Cause)
	assert.True(t, stderrors.Is(withCause, cause))

	var nilErr *errors.AppError
	assert.Nil(t, nilErr.WithCause(cause))
	assert.Nil(t, nilErr.WithDetail("x"))
}

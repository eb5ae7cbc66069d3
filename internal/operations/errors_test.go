package operations

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "xlmerge/internal/errors"
)

func TestOperationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *OperationError
		want string
	}{
		{
			name: "execution with cause",
			err:  NewExecutionError(StepWrite, errors.New("disk full")),
			want: "[execution] write: step execution failed: disk full",
		},
		{
			name: "extraction",
			err:  NewExtractionError("a.xlsm", errors.New("bad zip")),
			want: "[extraction] extract: failed to read a.xlsm: bad zip",
		},
		{
			name: "no step",
			err:  &OperationError{Type: ErrorTypeExecution, Message: "boom"},
			want: "[execution] boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}

	var nilErr *OperationError
	assert.Equal(t, "unknown operation error", nilErr.Error())
	assert.Nil(t, nilErr.Unwrap())
}

func TestOperationError_UnwrapReachesAppError(t *testing.T) {
	cause := apperrors.NewSchemaError("columns not found in b.xlsm: \"C\"")
	err := NewExecutionError(StepConsolidate, cause)

	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Same(t, cause, appErr)
}

func TestNewExtractionError_Context(t *testing.T) {
	err := NewExtractionError("dir/a.xlsm", errors.New("x"))
	assert.Equal(t, StepExtract, err.Step)
	assert.Equal(t, "dir/a.xlsm", err.Context["file"])
}

func TestGetErrorType(t *testing.T) {
	assert.Equal(t, ErrorType(""), GetErrorType(nil))
	assert.Equal(t, ErrorTypeCancellation, GetErrorType(NewCancellationError(StepExtract, nil)))
	assert.Equal(t, ErrorTypeExecution, GetErrorType(errors.New("plain")))
}

func TestErrorList(t *testing.T) {
	list := &ErrorList{}
	assert.False(t, list.HasErrors())
	assert.Equal(t, "no errors", list.Error())

	list.Add(nil)
	list.Add(NewExtractionError("a.xlsm", errors.New("bad")))
	list.Add(NewExecutionError(StepWrite, errors.New("full")))

	assert.True(t, list.HasErrors())
	assert.Len(t, list.Errors, 2)
	assert.Len(t, list.GetByStep(StepExtract), 1)
	assert.Len(t, list.GetByStep(StepDiscover), 0)
	assert.Contains(t, list.Error(), "2 errors")
	assert.Contains(t, list.Error(), "a.xlsm")
}

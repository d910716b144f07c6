package procerror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPeriodConflict(t *testing.T) {
	conflict := &PeriodConflictError{Period: "2026-01"}
	assert.True(t, IsPeriodConflict(conflict))
	assert.True(t, IsPeriodConflict(fmt.Errorf("saving: %w", conflict)))
	assert.False(t, IsPeriodConflict(errors.New("something else")))
	assert.False(t, IsPeriodConflict(nil))
}

func TestPeriodConflictError(t *testing.T) {
	conflict := &PeriodConflictError{Period: "2026-01"}
	assert.Equal(t, CodePeriodExists, conflict.Code())
	assert.True(t, conflict.OverwriteAvailable())
	assert.Contains(t, conflict.Error(), "2026-01")
	assert.Contains(t, conflict.Error(), "overwrite")
}

func TestRowErrorUnwrap(t *testing.T) {
	cause := errors.New("bad amount")
	rowErr := &RowError{RowIndex: 3, Field: "amount", Value: "abc", Err: cause}
	assert.ErrorIs(t, rowErr, cause)
	assert.Contains(t, rowErr.Error(), "row 3")
	assert.Contains(t, rowErr.Error(), `"abc"`)
}

func TestStoreErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	storeErr := &StoreError{Op: "insert", Err: cause}
	assert.ErrorIs(t, storeErr, cause)
	assert.Contains(t, storeErr.Error(), "insert")
}

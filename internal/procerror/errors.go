// Package procerror defines the typed errors surfaced by the CSV processing
// pipeline. External-dependency failures (rate source, AI oracle) are
// recovered internally and never appear here; these types cover input errors,
// persistence errors and the duplicate-period conflict.
package procerror

import (
	"errors"
	"fmt"
)

// Machine-checkable reason codes carried by pipeline errors.
const (
	CodeEmptyInput   = "empty_input"
	CodeNoValidRows  = "no_valid_rows"
	CodeNoCurrencies = "no_currencies"
	CodePeriodExists = "period_exists"
	CodeStoreFailed  = "store_failed"
)

// InputError reports invalid caller input (empty CSV, missing period, no
// valid rows). Batch processing aborts before any persistence.
type InputError struct {
	Code   string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input (%s): %s", e.Code, e.Reason)
}

// RowError reports a single CSV row that could not be turned into a
// transaction. Rows failing this way are dropped, never aborting the batch.
type RowError struct {
	RowIndex int
	Field    string
	Value    string
	Err      error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: failed to parse %s=%q: %v", e.RowIndex, e.Field, e.Value, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// PeriodConflictError reports a save attempt into a period that already has
// data. The caller may retry with the overwrite flag set.
type PeriodConflictError struct {
	Period string
}

func (e *PeriodConflictError) Error() string {
	return fmt.Sprintf("operations already exist for %s: delete existing data or retry with overwrite", e.Period)
}

// Code returns the machine-checkable reason code for this conflict.
func (e *PeriodConflictError) Code() string {
	return CodePeriodExists
}

// OverwriteAvailable reports that the conflict can be resolved by retrying
// with the overwrite flag.
func (e *PeriodConflictError) OverwriteAvailable() bool {
	return true
}

// StoreError wraps a persistence failure during the final save step. It is
// reported to the caller distinctly from processing errors.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsPeriodConflict reports whether err is a duplicate-period conflict.
func IsPeriodConflict(err error) bool {
	var conflict *PeriodConflictError
	return errors.As(err, &conflict)
}

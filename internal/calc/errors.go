package calc

import (
	"errors"
	"fmt"
)

// 错误分类
var (
	ErrInputRange       = errors.New("input out of range")
	ErrMalformedNumeric = errors.New("malformed numeric value")
	ErrStateConflict    = errors.New("state conflict")
)

// 状态冲突错误
var (
	ErrNotFinalized       = fmt.Errorf("%w: takeover is not finalized", ErrStateConflict)
	ErrAlreadyFinalized   = fmt.Errorf("%w: takeover is already finalized", ErrStateConflict)
	ErrAlreadyClaimed     = fmt.Errorf("%w: contribution already claimed", ErrStateConflict)
	ErrTakeoverClosed     = fmt.Errorf("%w: takeover is not accepting contributions", ErrStateConflict)
	ErrTakeoverNotStarted = fmt.Errorf("%w: takeover has not started", ErrStateConflict)
	ErrCannotFinalize     = fmt.Errorf("%w: goal not met and end time not reached", ErrStateConflict)
	ErrExceedsSafeCeiling = fmt.Errorf("%w: contribution exceeds the maximum safe total contribution", ErrStateConflict)
)

// FieldError 字段校验错误，Message 为对外展示的文案
type FieldError struct {
	Field   string
	Message string
	Kind    error
}

func (e *FieldError) Error() string {
	return e.Message
}

func (e *FieldError) Unwrap() error {
	return e.Kind
}

func rangeError(field, message string) error {
	return &FieldError{Field: field, Message: message, Kind: ErrInputRange}
}

func malformedError(field, message string) error {
	return &FieldError{Field: field, Message: message, Kind: ErrMalformedNumeric}
}

// NewRangeError 供上层构造同类的字段范围错误
func NewRangeError(field, message string) error {
	return rangeError(field, message)
}

package core

// errors.go defines the error values returned by ingestion, selection and
// method registry operations.
//
// Every caller-facing failure is an *Error carrying a Kind (how the transport
// should classify it) and a Code (which rule fired). Storage failures keep the
// low-level error reachable through Unwrap so it can be logged and reported
// as diagnostic detail.

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the transport layer.
type Kind int

const (
	// KindInputFormat is a malformed payload shape.
	KindInputFormat Kind = iota + 1
	// KindValidation is a caller-correctable business rule violation.
	KindValidation
	// KindConflict is a uniqueness violation in the method registry.
	KindConflict
	// KindStorage is a transaction or IO failure in the persistence layer.
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindInputFormat:
		return "input_format"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Code identifies the rule that produced an error.
type Code string

const (
	CodeInvalidPayload      Code = "InvalidPayload"
	CodeEmptyInput          Code = "EmptyInput"
	CodeDuplicateColumns    Code = "DuplicateColumns"
	CodeMissingColumns      Code = "MissingColumns"
	CodeColumnCountMismatch Code = "ColumnCountMismatch"
	CodeNoValidRows         Code = "NoValidRows"
	CodeInvalidDate         Code = "InvalidDate"
	CodeMissingMatchDate    Code = "MissingMatchDate"
	CodeRecordNotFound      Code = "RecordNotFound"
	CodeMissingMethod       Code = "MissingMethod"
	CodeUnknownMethod       Code = "UnknownMethod"
	CodeInvalidGoalsValue   Code = "InvalidGoalsValue"
	CodeInvalidLink         Code = "InvalidLink"
	CodeInvalidMethodName   Code = "InvalidMethodName"
	CodeInvalidColor        Code = "InvalidColor"
	CodeDuplicateName       Code = "DuplicateName"
	CodeStorage             Code = "Storage"
)

// ErrDuplicateName is returned by repositories when a method name is taken.
var ErrDuplicateName = errors.New("duplicate method name")

// Error is the error type returned by core operations.
type Error struct {
	Kind    Kind
	Code    Code
	Message string // caller-facing reason
	Line    int    // 1-based physical CSV line, 0 if not applicable
	Index   int    // 0-based position in an update batch, -1 if not applicable
	Err     error  // underlying cause, if any
}

func (e *Error) Error() string {
	switch {
	case e.Index >= 0:
		return fmt.Sprintf("update %d: %s", e.Index, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Detail returns the low-level cause for diagnostics, or "".
func (e *Error) Detail() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func validationError(code Code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message, Index: -1}
}

func inputError(code Code, message string) *Error {
	return &Error{Kind: KindInputFormat, Code: code, Message: message, Index: -1}
}

func storageError(message string, err error) *Error {
	return &Error{Kind: KindStorage, Code: CodeStorage, Message: message, Index: -1, Err: err}
}

// AsError returns err as an *Error. Errors of any other type are wrapped as
// storage errors with the given message.
func AsError(err error, message string) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return storageError(message, err)
}

// HasCode reports whether err is an *Error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// atIndex tags an error with the batch position that produced it.
func atIndex(err error, index int) *Error {
	e := AsError(err, "Erro ao atualizar os jogos.")
	tagged := *e
	tagged.Index = index
	return &tagged
}

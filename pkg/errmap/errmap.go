package errmap

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// Code classifies failures surfaced to the user.
type Code string

const (
	CodeInvalidLocation      Code = "invalid_location"
	CodeDuplicateAisleName   Code = "duplicate_aisle_name"
	CodeDuplicateProductName Code = "duplicate_product_name"
	CodeDeleteDefaultAisle   Code = "delete_default_aisle"
	CodeValidation           Code = "validation_error"
	CodeCanceled             Code = "canceled"
	CodeTimeout              Code = "timeout"
	CodeGeneric              Code = "generic_exception"
)

// Sentinels returned by persistence. Wrap them with %w to add context.
var (
	ErrInvalidLocation      = errors.New("location does not exist")
	ErrDuplicateAisleName   = errors.New("aisle name already exists in location")
	ErrDuplicateProductName = errors.New("product name already exists")
	ErrDeleteDefaultAisle   = errors.New("default aisle cannot be deleted")
	ErrValidation           = errors.New("validation failed")
)

var sentinelCodes = []struct {
	err  error
	code Code
}{
	{ErrInvalidLocation, CodeInvalidLocation},
	{ErrDuplicateAisleName, CodeDuplicateAisleName},
	{ErrDuplicateProductName, CodeDuplicateProductName},
	{ErrDeleteDefaultAisle, CodeDeleteDefaultAisle},
	{ErrValidation, CodeValidation},
	{context.Canceled, CodeCanceled},
	{context.DeadlineExceeded, CodeTimeout},
}

// Error carries a code and an optional message while preserving the cause
// via Unwrap.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message != "" {
		return e.Message
	}
	if e.cause != nil {
		return e.cause.Error()
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error { return e.cause }

// New constructs an Error with the supplied code, message, and cause.
func New(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// Map converts err into an *Error. Already mapped errors pass through;
// anything unrecognised becomes CodeGeneric.
func Map(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	for _, sc := range sentinelCodes {
		if errors.Is(err, sc.err) {
			return &Error{Code: sc.code, cause: err}
		}
	}
	return &Error{Code: CodeGeneric, cause: err}
}

// CodeOf returns the code Map would assign to err.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(Map(err), &e) {
		return e.Code
	}
	return CodeGeneric
}

// Friendly returns a message suitable for showing to the user.
func Friendly(err error) string {
	if err == nil {
		return ""
	}
	var me *Error
	if !errors.As(Map(err), &me) {
		return err.Error()
	}
	if me.Message != "" {
		return me.Message
	}

	switch me.Code {
	case CodeInvalidLocation:
		return "This location no longer exists."
	case CodeDuplicateAisleName:
		return "An aisle with that name already exists here."
	case CodeDuplicateProductName:
		return "A product with that name already exists."
	case CodeDeleteDefaultAisle:
		return "The default aisle can't be deleted."
	case CodeValidation:
		if me.cause != nil {
			return fmt.Sprintf("Invalid input: %s.", me.cause.Error())
		}
		return "Invalid input."
	case CodeCanceled:
		return "The operation was canceled."
	case CodeTimeout:
		return "The operation timed out."
	default:
		if me.cause != nil {
			return me.cause.Error()
		}
		return "Something went wrong."
	}
}

// ToJSON marshals err into {"code":"...","message":"..."}.
func ToJSON(err error) string {
	payload := struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	}{}
	if err != nil {
		payload.Code = CodeOf(err)
		payload.Message = Friendly(err)
	}
	b, mErr := json.Marshal(payload)
	if mErr != nil {
		return fmt.Sprintf(`{"code":%q,"message":""}`, payload.Code)
	}
	return string(b)
}

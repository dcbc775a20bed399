package vidgen

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

type ConversionError interface {
	error
	WithMessage(message string) ConversionError
	Wrap(err error) ConversionError
}

type baseConversionError string

const rootError = baseConversionError("")

// ErrUnrepresentableLayout is returned when a frame can't fit in any page. It's
// always fatal.
var ErrUnrepresentableLayout = rootError.WithMessage("Frame does not fit in a page")

// ErrBudgetUnreachable is a warning: the cycle reducer ran out of instructions
// it could shrink before getting under the budget.
var ErrBudgetUnreachable = rootError.WithMessage("Cycle budget unreachable")

var ErrMalformedInput = rootError.WithMessage("Malformed input")
var ErrInvalidArgument = rootError.WithMessage("Invalid argument")
var ErrIOFailed = rootError.WithMessage("Input/output error")
var ErrCancelled = rootError.WithMessage("Operation cancelled")

func (e baseConversionError) Error() string {
	return string(e)
}

func (e baseConversionError) RootCause() ConversionError {
	return e
}

func (e baseConversionError) WithMessage(message string) ConversionError {
	return customConversionError{
		message:       message,
		originalError: e,
	}
}

func (e baseConversionError) Wrap(err error) ConversionError {
	return customConversionError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: multierror.Append(e, err),
	}
}

// -----------------------------------------------------------------------------

type customConversionError struct {
	message       string
	originalError error
}

// Error implements the `error` object interface. When called, it returns a string
// describing the error.
func (e customConversionError) Error() string {
	return e.message
}

func (e customConversionError) WithMessage(message string) ConversionError {
	return customConversionError{
		message:       fmt.Sprintf("%s: %s", e.message, message),
		originalError: e,
	}
}

func (e customConversionError) Wrap(err error) ConversionError {
	return customConversionError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: multierror.Append(e, err),
	}
}

func (e customConversionError) Unwrap() error {
	return e.originalError
}

// Warnings collects errors so they can be reported together, such as the
// budget misses of a conversion or the problems found in a config.
type Warnings struct {
	errs *multierror.Error
}

func (w *Warnings) Add(err error) {
	if err == nil {
		return
	}
	w.errs = multierror.Append(w.errs, err)
}

func (w *Warnings) Len() int {
	if w.errs == nil {
		return 0
	}
	return len(w.errs.Errors)
}

// ErrorOrNil returns nil if no warnings were recorded.
func (w *Warnings) ErrorOrNil() error {
	return w.errs.ErrorOrNil()
}

package cli

import (
	"errors"
	"fmt"
)

// formatErrors joins the failures of a batch into one error, or nil
func formatErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}

	msg := fmt.Sprintf("%d errors occurred:\n", len(errs))
	for _, err := range errs {
		msg += fmt.Sprintf("  * %v\n", err)
	}
	return &batchError{msg: msg, errs: errs}
}

type batchError struct {
	msg  string
	errs []error
}

func (e *batchError) Error() string   { return e.msg }
func (e *batchError) Unwrap() []error { return e.errs }

var errTooFewArguments = errors.New("too few arguments")

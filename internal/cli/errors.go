package cli

import (
	"errors"
	"fmt"

	"github.com/ericfisherdev/simplekeystore/internal/domain/model"
)

const (
	ExitCodeSuccess     = 0
	ExitCodeGeneric     = 1
	ExitCodeUsage       = 2
	ExitCodeNotFound    = 3
	ExitCodeAmbiguous   = 4
	ExitCodeConfig      = 5
	ExitCodeCrypto      = 6
	exitCodeUnspecified = -1
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ExitCode returns the code main should exit with.
func (e *ExitError) ExitCode() int {
	if e == nil {
		return ExitCodeGeneric
	}
	return e.Code
}

// ExitCodeOf returns the exit code for err: 0 for nil, the carried code for an
// ExitError, otherwise the code its sentinel maps to.
func ExitCodeOf(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}
	var withExit interface{ ExitCode() int }
	if errors.As(err, &withExit) {
		return withExit.ExitCode()
	}
	if code := sentinelExitCode(err); code != exitCodeUnspecified {
		return code
	}
	return ExitCodeGeneric
}

// mapCommandError attaches an exit code to err based on the sentinel it wraps.
func mapCommandError(err error) error {
	if err == nil {
		return nil
	}
	var withExit interface{ ExitCode() int }
	if errors.As(err, &withExit) {
		return err
	}
	code := sentinelExitCode(err)
	if code == exitCodeUnspecified {
		code = ExitCodeGeneric
	}
	return &ExitError{Code: code, Err: err}
}

func sentinelExitCode(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation):
		return ExitCodeUsage
	case errors.Is(err, model.ErrNotFound):
		return ExitCodeNotFound
	case errors.Is(err, model.ErrAmbiguous), errors.Is(err, model.ErrUniqueness):
		return ExitCodeAmbiguous
	case errors.Is(err, model.ErrConfiguration):
		return ExitCodeConfig
	case errors.Is(err, model.ErrEncryption), errors.Is(err, model.ErrDecryption):
		return ExitCodeCrypto
	default:
		return exitCodeUnspecified
	}
}

func usageErrorf(format string, args ...any) error {
	return &ExitError{
		Code: ExitCodeUsage,
		Err:  fmt.Errorf(format, args...),
	}
}

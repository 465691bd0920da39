package firmware

import (
	"errors"
	"fmt"
)

var (
	// ErrToolFailed means the boot manager utility could not be run or
	// exited non-zero.
	ErrToolFailed = errors.New("boot manager utility failed")
	// ErrEncoding means the utility's output was not valid UTF-8 text.
	ErrEncoding = errors.New("boot manager output is not valid text")
	// ErrPermissionDenied means a firmware change was requested without
	// administrative privileges. No process is started in that case.
	ErrPermissionDenied = errors.New("changing the boot configuration requires root privileges")
	// ErrMalformed wraps a parse failure of the utility's report.
	ErrMalformed = errors.New("malformed boot configuration report")
)

// AccessError describes a failed firmware access. Kind is one of the
// sentinel errors above; Stderr carries the utility's own diagnostic.
type AccessError struct {
	Op     string
	Kind   error
	Stderr string
	Err    error
}

func (e *AccessError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Kind)
	if e.Stderr != "" {
		return msg + ": " + e.Stderr
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *AccessError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

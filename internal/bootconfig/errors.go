package bootconfig

import (
	"errors"
	"fmt"
)

// ErrMalformedField is matched by every MalformedFieldError.
var ErrMalformedField = errors.New("malformed field")

// MalformedFieldError reports a recognized key whose value does not follow
// the key's grammar. No partial configuration accompanies it.
type MalformedFieldError struct {
	Key   string
	Value string
	Err   error
}

func (e *MalformedFieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %q: %v", ErrMalformedField, e.Key, e.Value, e.Err)
	}
	return fmt.Sprintf("%v: %s: %q", ErrMalformedField, e.Key, e.Value)
}

// Is reports whether target is ErrMalformedField.
func (e *MalformedFieldError) Is(target error) bool {
	return target == ErrMalformedField
}

func (e *MalformedFieldError) Unwrap() error {
	return e.Err
}

func malformed(key, value string, err error) error {
	return &MalformedFieldError{Key: key, Value: value, Err: err}
}

package theme

import (
	"errors"
	"fmt"
)

// Error kinds returned by Registry operations. Match them with errors.Is.
var (
	ErrEmptyRegistry  = errors.New("at least one theme must be declared")
	ErrInvalidName    = errors.New(`theme names must end with "theme", for example "x-theme" or "xTheme"`)
	ErrDuplicateTheme = errors.New("theme already exists")
	ErrNotFound       = errors.New("theme does not exist")
	ErrNoDefault      = errors.New("default theme could not be resolved")
	ErrInvalidScope   = errors.New("a theme may declare selectors or a media query, not both")
)

// Error records the registry operation and theme that failed.
type Error struct {
	Op   string
	Name string
	Err  error
}

func (e *Error) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Name, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func opError(op Op, name string, err error) error {
	return &Error{Op: string(op), Name: name, Err: err}
}

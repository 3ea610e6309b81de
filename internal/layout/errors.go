package layout

import (
	"errors"
	"fmt"
)

// ErrDuplicatePage indicates two source files normalize to the same page name
var ErrDuplicatePage = errors.New("duplicate page name")

// DuplicatePageError names both files that produced the same page name.
type DuplicatePageError struct {
	Kind   string
	Name   string
	First  string
	Second string
}

func (e *DuplicatePageError) Error() string {
	return fmt.Sprintf("%s: %s %q is produced by both %s and %s",
		ErrDuplicatePage, e.Kind, e.Name, e.First, e.Second)
}

func (e *DuplicatePageError) Unwrap() error {
	return ErrDuplicatePage
}

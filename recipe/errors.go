package recipe

import (
	"errors"
	"fmt"

	"github.com/goplus/recipe/pkgs/mod/module"
)

var (
	ErrMissingField        = errors.New("missing required field")
	ErrDuplicateDependency = errors.New("duplicate dependency")
	ErrUnknownGenerator    = errors.New("unknown generator")
	ErrDuplicateGenerator  = errors.New("duplicate generator")
	ErrUnknownSetting      = errors.New("unknown setting")
	ErrInvalidOption       = errors.New("invalid option")
	ErrInvalidBuildSystem  = errors.New("invalid build system")
	ErrInvalidPattern      = errors.New("invalid source pattern")

	ErrMalformedVersion   = module.ErrMalformedVersion
	ErrMalformedReference = module.ErrMalformedReference
)

// DeclarationError reports a malformed recipe declaration. It is returned
// by Declare before any build step can run.
type DeclarationError struct {
	Field string // Declaration field at fault, e.g. "requires"
	Value string // Offending value, if any
	Err   error
}

func (e *DeclarationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("recipe: %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("recipe: %s: %v", e.Field, e.Err)
}

func (e *DeclarationError) Unwrap() error {
	return e.Err
}

func declErr(field, value string, err error) error {
	return &DeclarationError{Field: field, Value: value, Err: err}
}

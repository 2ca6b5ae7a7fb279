package build

import (
	"errors"
	"fmt"

	"github.com/goplus/recipe/pkgs/buildsys"
	"github.com/goplus/recipe/pkgs/mod/module"
)

// Step names one of the three build steps.
type Step int

const (
	StepConfigure Step = iota + 1
	StepCompile
	StepInstall
)

func (s Step) String() string {
	switch s {
	case StepConfigure:
		return "configure"
	case StepCompile:
		return "compile"
	case StepInstall:
		return "install"
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

// Sentinels matched by errors.Is against an *Error of the same step.
var (
	ErrConfigure = errors.New("configure failed")
	ErrCompile   = errors.New("compile failed")
	ErrInstall   = errors.New("install failed")
)

// ErrUnknownCompiler is returned when a compiler setting has no known
// drivers and the profile does not name any.
var ErrUnknownCompiler = errors.New("no known C/C++ drivers; set CC and CXX in the profile")

// Error reports a failed build step. Output is the tool's combined
// stdout and stderr, unmodified.
type Error struct {
	Step   Step
	Ref    module.Reference
	Output []byte
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Step, e.Ref, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	switch target {
	case ErrConfigure:
		return e.Step == StepConfigure
	case ErrCompile:
		return e.Step == StepCompile
	case ErrInstall:
		return e.Step == StepInstall
	}
	return false
}

func stepError(step Step, ref module.Reference, err error) error {
	e := &Error{Step: step, Ref: ref, Err: err}
	var te *buildsys.ToolError
	if errors.As(err, &te) {
		e.Output = te.Output
	}
	return e
}

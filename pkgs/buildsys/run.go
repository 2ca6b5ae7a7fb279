package buildsys

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Command is one invocation of a build tool.
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  []string // complete environment
}

func (c *Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Runner executes build tool commands, writing their combined stdout and
// stderr to out.
type Runner interface {
	Run(cmd *Command, out io.Writer) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(cmd *Command, out io.Writer) error

func (f RunnerFunc) Run(cmd *Command, out io.Writer) error { return f(cmd, out) }

// ExecRunner runs commands as child processes.
var ExecRunner Runner = RunnerFunc(func(c *Command, out io.Writer) error {
	cmd := exec.Command(c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env
	cmd.Stdout = out
	cmd.Stderr = out
	return cmd.Run()
})

// ToolError reports a failed build tool invocation together with
// everything the tool printed.
type ToolError struct {
	Cmd    string
	Output []byte
	Err    error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s: %v", e.Cmd, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }

// Exec runs cmd through r, mirroring the output to stream (if any) and
// capturing it for a *ToolError on failure.
func Exec(r Runner, cmd *Command, stream io.Writer) error {
	if r == nil {
		r = ExecRunner
	}
	if cmd.Env == nil {
		cmd.Env = os.Environ()
	}
	var buf bytes.Buffer
	var out io.Writer = &buf
	if stream != nil {
		out = io.MultiWriter(&buf, stream)
	}
	if err := r.Run(cmd, out); err != nil {
		return &ToolError{Cmd: cmd.String(), Output: buf.Bytes(), Err: err}
	}
	return nil
}

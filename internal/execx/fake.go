package execx

import (
	"context"
	"fmt"
)

var _ Runner = &FakeRunner{}

// FakeResult is the canned outcome of one command line.
type FakeResult struct {
	Result
	Err error
}

// Call records one invocation seen by a FakeRunner.
type Call struct {
	Name string
	Args []string
}

// FakeRunner answers commands from a table keyed by CommandLine and records
// every call. Commands missing from the table fail.
type FakeRunner struct {
	Results  map[string]FakeResult
	ProbeErr error
	Calls    []Call
	Probes   []string
}

func (f *FakeRunner) Run(_ context.Context, name string, args ...string) (Result, error) {
	f.Calls = append(f.Calls, Call{Name: name, Args: append([]string(nil), args...)})
	line := CommandLine(name, args...)
	res, ok := f.Results[line]
	if !ok {
		return Result{ExitCode: -1}, fmt.Errorf("unexpected command %q", line)
	}
	return res.Result, res.Err
}

func (f *FakeRunner) Probe(_ context.Context, name string) error {
	f.Probes = append(f.Probes, name)
	return f.ProbeErr
}

// Package execx runs external commands for probes and diagnostics.
//
// Unlike os/exec, a non-zero exit status is returned as data in the
// [Result], not as an error; probes care about what a command printed, not
// whether it succeeded. The batched [Which] query checks several command
// names for PATH presence in one concurrent wave, so checking N commands
// costs one round of wall-clock latency instead of N.
package execx

import (
	"bytes"
	"context"
	"os/exec"
	"sync"

	"github.com/cockroachdb/errors"
)

// Result holds the outcome of one command invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes external commands. The zero value is not usable; use
// [NewRunner]. Tests substitute the lookPath/command hooks.
type Runner struct {
	lookPath func(string) (string, error)
	command  func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewRunner returns a runner backed by os/exec.
func NewRunner() *Runner {
	return &Runner{
		lookPath: exec.LookPath,
		command:  exec.CommandContext,
	}
}

// NewRunnerWithLookPath returns a runner with a custom PATH probe,
// for tests.
func NewRunnerWithLookPath(lookPath func(string) (string, error)) *Runner {
	r := NewRunner()
	r.lookPath = lookPath
	return r
}

// Run executes name with args and returns its output. A non-zero exit
// status is not an error; the returned error is non-nil only when the
// command could not be started at all.
func (r *Runner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := r.command(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, errors.Wrapf(err, "running %s", name)
	}
	return res, nil
}

// LookPath reports the resolved path of an executable, or an error when it
// is not on PATH.
func (r *Runner) LookPath(name string) (string, error) {
	return r.lookPath(name)
}

// Which reports, for each of the given command names, whether it exists on
// PATH. All probes run concurrently; the result map has one entry per
// input name.
func (r *Runner) Which(ctx context.Context, names []string) map[string]bool {
	found := make(map[string]bool, len(names))
	if len(names) == 0 {
		return found
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.lookPath(name)
			mu.Lock()
			found[name] = err == nil
			mu.Unlock()
		}()
	}
	wg.Wait()

	return found
}

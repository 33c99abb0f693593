// Package preflight runs named environment checks before a command does real work.
package preflight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

// CheckTimeout bounds every check that does not already carry a shorter deadline.
const CheckTimeout = 5 * time.Second

// CheckFunc is a function that performs a check.
// It returns nil if the check passes, or an error if it fails.
type CheckFunc func(ctx context.Context) error

// Check is a single preflight check.
type Check struct {
	Name     string
	Run      CheckFunc
	Critical bool // a failure aborts the command
}

// Result holds the outcome of a single check.
type Result struct {
	Check    Check
	Error    error
	Duration time.Duration
}

// Run executes checks in order and returns their results.
func Run(ctx context.Context, checks []Check) []Result {
	results := make([]Result, len(checks))

	for i, c := range checks {
		start := time.Now()

		checkCtx, cancel := context.WithTimeout(ctx, CheckTimeout)
		err := c.Run(checkCtx)
		cancel()

		results[i] = Result{
			Check:    c,
			Error:    err,
			Duration: time.Since(start),
		}
	}

	return results
}

// AnalyzeResults logs every result and joins the errors of failed critical checks.
func AnalyzeResults(results []Result) error {
	var criticalErrors []error

	for _, r := range results {
		status := "PASS"
		if r.Error != nil {
			status = "FAIL"
		}

		msg := fmt.Sprintf("[%s] %-20s (%v)", status, r.Check.Name, r.Duration.Round(time.Millisecond))

		if r.Error != nil {
			slog.Error(msg, "error", r.Error)
			if r.Check.Critical {
				criticalErrors = append(criticalErrors, fmt.Errorf("%s: %w", r.Check.Name, r.Error))
			}
		} else {
			slog.Info(msg)
		}
	}

	if len(criticalErrors) > 0 {
		return errors.Join(criticalErrors...)
	}

	return nil
}

// Verify is Run followed by AnalyzeResults.
func Verify(ctx context.Context, checks ...Check) error {
	return AnalyzeResults(Run(ctx, checks))
}

// OnPath fails when bin cannot be resolved on PATH.
func OnPath(bin string) CheckFunc {
	return func(ctx context.Context) error {
		_, err := exec.LookPath(bin)
		return err
	}
}

// EnvSet fails when the environment variable name is empty or unset.
func EnvSet(name string) CheckFunc {
	return func(ctx context.Context) error {
		if os.Getenv(name) == "" {
			return fmt.Errorf("missing %s", name)
		}
		return nil
	}
}

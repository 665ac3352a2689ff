package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vvka-141/sparkify-etl/pkg/sparkify"
)

// ForcedApprover approves after a countdown, for --force.
// Cancelling the context during the countdown denies.
type ForcedApprover struct {
	verbose   bool
	output    io.Writer
	countdown time.Duration
	sleepFn   func(time.Duration)
}

// NewForcedApprover creates a ForcedApprover writing to stderr.
func NewForcedApprover(verbose bool) sparkify.Approver {
	return &ForcedApprover{
		verbose:   verbose,
		output:    os.Stderr,
		countdown: sparkify.DefaultForceApprovalCountdown,
		sleepFn:   time.Sleep,
	}
}

// RequestApproval shows the warning, counts down and approves.
func (a *ForcedApprover) RequestApproval(ctx context.Context, dbName string) (bool, error) {
	writeDanger(a.output, dbName)

	countdown := a.countdown
	if countdown <= 0 {
		countdown = sparkify.DefaultForceApprovalCountdown
	}
	for i := int(countdown.Seconds()); i > 0; i-- {
		if err := ctx.Err(); err != nil {
			fmt.Fprintln(a.output)
			return false, err
		}
		fmt.Fprintf(a.output, "\rResetting in: %d seconds... (Press Ctrl+C to cancel)", i)
		a.sleepFn(time.Second)
	}
	if err := ctx.Err(); err != nil {
		fmt.Fprintln(a.output)
		return false, err
	}

	fmt.Fprintf(a.output, "\r✓ Proceeding with schema reset...                              \n")
	return true, nil
}

var _ sparkify.Approver = (*ForcedApprover)(nil)

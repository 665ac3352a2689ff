package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vvka-141/sparkify-etl/pkg/sparkify"
	"golang.org/x/term"
)

// InteractiveApprover asks the operator to type the database name.
type InteractiveApprover struct {
	verbose bool
	input   io.Reader
	output  io.Writer
}

// NewInteractiveApprover creates an approver reading stdin and writing stderr.
func NewInteractiveApprover(verbose bool) sparkify.Approver {
	return &InteractiveApprover{verbose: verbose, input: os.Stdin, output: os.Stderr}
}

// StdinIsTerminal reports whether an operator can answer the prompt.
func StdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// RequestApproval approves only when the typed line equals dbName.
func (a *InteractiveApprover) RequestApproval(ctx context.Context, dbName string) (bool, error) {
	fmt.Fprintf(a.output, "\n⚠️  WARNING: You are about to reset the star schema in database '%s'\n", dbName)
	fmt.Fprintln(a.output, "This will permanently delete all loaded rows!")
	fmt.Fprintf(a.output, "\nTo confirm, type the database name '%s' and press Enter: ", dbName)

	type answer struct {
		line string
		err  error
	}
	answers := make(chan answer, 1)
	go func() {
		line, err := bufio.NewReader(a.input).ReadString('\n')
		answers <- answer{strings.TrimSpace(line), err}
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case ans := <-answers:
		if ans.err != nil && ans.line == "" {
			return false, fmt.Errorf("failed to read input: %w", ans.err)
		}
		if ans.line == dbName {
			fmt.Fprintln(a.output, "✓ Confirmed. Proceeding with schema reset...")
			return true, nil
		}
		fmt.Fprintf(a.output, "✗ Input '%s' does not match database name '%s'. Operation cancelled.\n", ans.line, dbName)
		return false, nil
	}
}

var _ sparkify.Approver = (*InteractiveApprover)(nil)

package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/vvka-141/sparkify-etl/pkg/sparkify"
	"golang.org/x/term"
)

// ConsoleLogger writes one line per message.
// Safe for concurrent use by multiple goroutines.
type ConsoleLogger struct {
	out     io.Writer
	verbose bool

	verbosePrefix string
	errorPrefix   string

	mu sync.Mutex
}

var _ sparkify.Logger = (*ConsoleLogger)(nil)

// NewConsoleLogger creates a logger on stderr. Prefixes are coloured when
// stderr is a terminal and NO_COLOR is unset.
func NewConsoleLogger(verbose bool) *ConsoleLogger {
	color := term.IsTerminal(int(os.Stderr.Fd())) && os.Getenv("NO_COLOR") == ""
	return NewConsoleLoggerTo(os.Stderr, verbose, color)
}

// NewConsoleLoggerTo creates a logger on an arbitrary writer.
func NewConsoleLoggerTo(out io.Writer, verbose, color bool) *ConsoleLogger {
	l := &ConsoleLogger{
		out:           out,
		verbose:       verbose,
		verbosePrefix: "[VERBOSE]",
		errorPrefix:   "[ERROR]",
	}
	if color {
		r := lipgloss.NewRenderer(out)
		l.verbosePrefix = r.NewStyle().Foreground(lipgloss.Color("245")).Render(l.verbosePrefix)
		l.errorPrefix = r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")).Render(l.errorPrefix)
	}
	return l
}

// Verbose logs diagnostic detail; a no-op unless verbose mode is on.
func (l *ConsoleLogger) Verbose(format string, args ...interface{}) {
	if l.verbose {
		l.write(l.verbosePrefix+" ", format, args)
	}
}

// Info logs progress of normal operations, such as "3/10 files processed.".
func (l *ConsoleLogger) Info(format string, args ...interface{}) {
	l.write("", format, args)
}

// Error logs error messages.
func (l *ConsoleLogger) Error(format string, args ...interface{}) {
	l.write(l.errorPrefix+" ", format, args)
}

func (l *ConsoleLogger) write(prefix, format string, args []interface{}) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.out, prefix+msg+"\n")
}

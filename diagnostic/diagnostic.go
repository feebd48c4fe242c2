// Package diagnostic defines the structured error type shared by the
// tokenizer, parser and engine.
package diagnostic

import (
	"fmt"
	"strings"

	"github.com/gitql-go/gitql/token"
)

// Level classifies a diagnostic.
type Level int

const (
	LevelError Level = iota
	LevelWarn
)

func (l Level) String() string {
	if l == LevelWarn {
		return "warn"
	}
	return "error"
}

// Diagnostic is a structured error with an optional source span and help
// messages. It satisfies the error interface so it can cross ordinary Go
// error boundaries.
type Diagnostic struct {
	level   Level
	message string
	helps   []string
	loc     token.Location
	hasLoc  bool
}

// Error creates an error-level diagnostic.
func Error(message string) *Diagnostic {
	return &Diagnostic{level: LevelError, message: message}
}

// Errorf creates an error-level diagnostic with a formatted message.
func Errorf(format string, args ...any) *Diagnostic {
	return Error(fmt.Sprintf(format, args...))
}

// Warn creates a warning-level diagnostic.
func Warn(message string) *Diagnostic {
	return &Diagnostic{level: LevelWarn, message: message}
}

// WithLocation attaches a source span.
func (d *Diagnostic) WithLocation(loc token.Location) *Diagnostic {
	d.loc = loc
	d.hasLoc = true
	return d
}

// WithLocationSpan attaches a source span from start/end byte offsets.
func (d *Diagnostic) WithLocationSpan(start, end int) *Diagnostic {
	return d.WithLocation(token.Location{Start: start, End: end})
}

// AddHelp appends a help message.
func (d *Diagnostic) AddHelp(help string) *Diagnostic {
	d.helps = append(d.helps, help)
	return d
}

// Level returns the diagnostic level.
func (d *Diagnostic) Level() Level { return d.level }

// Message returns the primary message.
func (d *Diagnostic) Message() string { return d.message }

// Helps returns the help messages in the order they were added.
func (d *Diagnostic) Helps() []string { return d.helps }

// Location returns the source span and whether one was attached.
func (d *Diagnostic) Location() (token.Location, bool) { return d.loc, d.hasLoc }

func (d *Diagnostic) Error() string {
	var b strings.Builder
	b.WriteString(d.level.String())
	b.WriteString(": ")
	b.WriteString(d.message)
	if d.hasLoc {
		fmt.Fprintf(&b, " (at %d..%d)", d.loc.Start, d.loc.End)
	}
	for _, help := range d.helps {
		b.WriteString("\n  help: ")
		b.WriteString(help)
	}
	return b.String()
}

// Package ui provides colored console output with a nautical theme.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	// Colors
	Red    = color.New(color.FgRed)
	Green  = color.New(color.FgGreen)
	Yellow = color.New(color.FgYellow)
	Blue   = color.New(color.FgBlue)
	Cyan   = color.New(color.FgCyan)
	Bold   = color.New(color.Bold)
	Faint  = color.New(color.Faint)
)

// out receives every message. Commands point it at their own writer.
var out io.Writer = color.Output

// SetOutput redirects messages to w and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	prev := out
	out = w
	return prev
}

// Output returns the current message writer.
func Output() io.Writer {
	return out
}

// Success prints a green success message with checkmark.
func Success(format string, args ...any) {
	Green.Fprintf(out, "✓ "+format+"\n", args...)
}

// Error prints a red error message with X.
func Error(format string, args ...any) {
	Red.Fprintf(out, "✗ "+format+"\n", args...)
}

// Warning prints a yellow warning message.
func Warning(format string, args ...any) {
	Yellow.Fprintf(out, "⚠ "+format+"\n", args...)
}

// Info prints a blue info message.
func Info(format string, args ...any) {
	Blue.Fprintf(out, format+"\n", args...)
}

// Muted prints a faint secondary message.
func Muted(format string, args ...any) {
	Faint.Fprintf(out, format+"\n", args...)
}

// Step prints a numbered step in cyan.
func Step(n int, format string, args ...any) {
	Cyan.Fprintf(out, "[%d] ", n)
	fmt.Fprintf(out, format+"\n", args...)
}

// Header prints a bold header.
func Header(format string, args ...any) {
	Bold.Fprintf(out, format+"\n", args...)
}

// Moor reports units written for a project.
func Moor(format string, args ...any) {
	Green.Fprintf(out, "⚓ "+format+"\n", args...)
}

// Unit reports a single unit file.
func Unit(format string, args ...any) {
	Cyan.Fprintf(out, "  ⚙ "+format+"\n", args...)
}

// Snapshot reports snapshot activity.
func Snapshot(format string, args ...any) {
	Blue.Fprintf(out, "📸 "+format+"\n", args...)
}

// Diff prints a unified diff with added lines in green, removed lines in red
// and hunk headers in cyan.
func Diff(text string) {
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			Bold.Fprint(out, line)
		case strings.HasPrefix(line, "@@"):
			Cyan.Fprint(out, line)
		case strings.HasPrefix(line, "+"):
			Green.Fprint(out, line)
		case strings.HasPrefix(line, "-"):
			Red.Fprint(out, line)
		default:
			fmt.Fprint(out, line)
		}
	}
}

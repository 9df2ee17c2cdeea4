package output

import (
	"fmt"
	"io"
	"strings"
)

// Format represents the output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", s)
	}
}

// Formatter formats data for output.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// NewFormatter creates a formatter for the given format.
func NewFormatter(format Format, wide bool) Formatter {
	switch format {
	case FormatJSON:
		return JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TableFormatter{Wide: wide}
	}
}

// Printer writes command results to Out and notices to Err.
type Printer struct {
	Out    io.Writer
	Err    io.Writer
	Format Format
	Wide   bool
}

// Print renders data with the configured formatter.
func (p *Printer) Print(data any) error {
	return NewFormatter(p.Format, p.Wide).Format(p.Out, data)
}

// Message prints a confirmation line. Structured formats receive it as a
// {"message": ...} document so scripts can parse it.
func (p *Printer) Message(msg string) error {
	if p.Format == FormatTable || p.Format == "" {
		_, err := fmt.Fprintln(p.Out, msg)
		return err
	}
	return p.Print(map[string]string{"message": msg})
}

// Notice prints a human-oriented line on the error stream.
func (p *Printer) Notice(format string, args ...any) {
	fmt.Fprintf(p.Err, format+"\n", args...)
}

// Interactive reports whether human decorations (spinners, progress)
// belong on the error stream.
func (p *Printer) Interactive() bool {
	return p.Format == FormatTable || p.Format == ""
}

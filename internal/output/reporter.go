package output

import (
	"fmt"
	"io"
	"strings"
)

// Reporter writes the harness's human-readable progress stream. Every stage
// outcome goes through it; nothing else writes to the stream.
type Reporter struct {
	w io.Writer
}

// NewReporter creates a reporter writing to w
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Pass reports a successful check
func (r *Reporter) Pass(format string, args ...any) {
	fmt.Fprintf(r.w, "✓ "+format+"\n", args...)
}

// Fail reports a failed check
func (r *Reporter) Fail(format string, args ...any) {
	fmt.Fprintf(r.w, "✗ "+format+"\n", args...)
}

// Info reports supporting detail, indented under the preceding check line
func (r *Reporter) Info(format string, args ...any) {
	fmt.Fprintf(r.w, "  "+format+"\n", args...)
}

// Plain writes an unadorned line
func (r *Reporter) Plain(format string, args ...any) {
	fmt.Fprintf(r.w, format+"\n", args...)
}

// Blank writes an empty line between stages
func (r *Reporter) Blank() {
	fmt.Fprintln(r.w)
}

// Section writes a stage header with a dashed rule underneath
func (r *Reporter) Section(title string) {
	fmt.Fprintln(r.w, title)
	fmt.Fprintln(r.w, strings.Repeat("-", 60))
}

// Rule writes the heavy separator used around the run banner and summary
func (r *Reporter) Rule() {
	fmt.Fprintln(r.w, strings.Repeat("=", 60))
}

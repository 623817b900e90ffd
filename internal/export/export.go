package export

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dt-pm-tools/ground-control/internal/ticket"
)

// Result summarizes an export run.
type Result struct {
	Written  int
	ByPrefix map[string]int // counts keyed by type prefix (INI, EPIC, ...)
	Failures []WriteError
}

// Run resolves the scope and writes every resolved ticket in order.
// Resolution errors and an unwritable output root abort the run; a
// per-ticket write failure is reported on progress, recorded in the
// Result, and the run continues with the remaining tickets.
func Run(ctx context.Context, src Source, w *Writer, scope ticket.Scope, progress io.Writer) (Result, error) {
	tickets, err := Resolve(ctx, src, scope)
	if err != nil {
		return Result{}, err
	}
	if err := w.Init(); err != nil {
		return Result{}, err
	}

	res := Result{ByPrefix: make(map[string]int)}
	for _, t := range tickets {
		if err := w.Write(t); err != nil {
			var we WriteError
			if errors.As(err, &we) {
				fmt.Fprintf(progress, "error writing %v\n", we)
				res.Failures = append(res.Failures, we)
				continue
			}
			return res, err
		}
		res.Written++
		res.ByPrefix[ticket.TypePrefix(t.Type)]++
	}
	return res, nil
}

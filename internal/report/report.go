// Package report renders load timings for people.
package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/sumup/specload/internal/loadtime"
)

// ErrFieldNotFound is returned when the requested field is absent.
var ErrFieldNotFound = errors.New("field not found")

// Write prints the elapsed time and one field of the document, one per
// line. An empty field selects the declared openapi or swagger version.
// Nothing is written when the field is missing.
func Write(w io.Writer, res loadtime.Result, field string) error {
	if res.Document == nil {
		return errors.New("report: no document")
	}
	value := res.Document.Version
	if field != "" {
		var ok bool
		value, ok = res.Document.Field(field)
		if !ok {
			return fmt.Errorf("report: %w: %s", ErrFieldNotFound, field)
		}
	}
	if _, err := fmt.Fprintf(w, "Time taken: %dms\n%s\n", res.Elapsed.Milliseconds(), value); err != nil {
		return fmt.Errorf("report: write: %w", err)
	}
	return nil
}

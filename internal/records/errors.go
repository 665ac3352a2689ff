package records

import (
	"fmt"

	"github.com/vvka-141/sparkify-etl/pkg/sparkify"
)

// ErrorKind names the way a document failed to parse.
type ErrorKind string

const (
	KindMalformedJSON ErrorKind = "malformed_json"
	KindSchema        ErrorKind = "schema"
	KindRecordCount   ErrorKind = "record_count"
)

// ParseError describes why a document was rejected.
// It matches sparkify.ErrParse with errors.Is.
type ParseError struct {
	Path   string
	Record int // 1-based position of the offending record; 0 when the document as a whole is at fault
	Kind   ErrorKind
	Field  string
	Err    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Path, e.Kind)
	if e.Record > 0 {
		msg += fmt.Sprintf(" at record %d", e.Record)
	}
	if e.Field != "" {
		msg += fmt.Sprintf(" (field %s)", e.Field)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == sparkify.ErrParse }

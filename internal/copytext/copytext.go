package copytext

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/vvka-141/sparkify-etl/pkg/sparkify"
)

var escaper = strings.NewReplacer(
	`\`, `\\`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// Normalize converts a single field value into its escaped text COPY representation.
func Normalize(v any) string {
	if v == nil {
		return sparkify.NullMarker
	}

	switch x := v.(type) {
	case string:
		return escaper.Replace(x)
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "t"
		}
		return "f"
	case time.Time:
		return x.Format(sparkify.TimestampLayout)
	case []byte:
		if x == nil {
			return sparkify.NullMarker
		}
		return escaper.Replace(string(x))
	}

	// Pointers are dereferenced before the Stringer check so *time.Time keeps the COPY layout.
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return sparkify.NullMarker
		}
		return Normalize(rv.Elem().Interface())
	}

	if s, ok := v.(fmt.Stringer); ok {
		return escaper.Replace(s.String())
	}
	return escaper.Replace(fmt.Sprint(v))
}

// Line renders one COPY row: normalized values joined by tabs, terminated by a newline.
func Line(values ...any) string {
	var b strings.Builder
	writeLine(&b, values)
	return b.String()
}

func writeLine(w io.StringWriter, values []any) {
	for i, v := range values {
		if i > 0 {
			_, _ = w.WriteString("\t")
		}
		_, _ = w.WriteString(Normalize(v))
	}
	_, _ = w.WriteString("\n")
}

// Encoder accumulates COPY rows in memory for a single CopyFrom call.
// The zero value is ready to use.
type Encoder struct {
	buf  bytes.Buffer
	rows int
}

// WriteRow appends one row.
func (e *Encoder) WriteRow(values ...any) {
	writeLine(&e.buf, values)
	e.rows++
}

// Rows returns the number of rows written.
func (e *Encoder) Rows() int {
	return e.rows
}

// Reader returns a reader over the encoded rows. It does not consume the buffer.
func (e *Encoder) Reader() io.Reader {
	return bytes.NewReader(e.buf.Bytes())
}

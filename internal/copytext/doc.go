// Package copytext renders values in PostgreSQL's text COPY format.
//
// Every field written through a COPY ... FROM STDIN path goes through Normalize:
//
//   - nil, including typed nil pointers, becomes the null marker \N
//   - strings are written as-is, numbers in base 10, floats in their shortest
//     round-trip form, time.Time as "2006-01-02 15:04:05.000", booleans as t/f
//   - backslash, newline, carriage return and tab are escaped as two-character
//     sequences so a rendered field never breaks the line-oriented framing
//
// Parameterized single-row statements do not need this package.
//
// # Example Usage
//
//	var enc copytext.Encoder
//	enc.WriteRow(play.Values()...)
//	_, err := conn.PgConn().CopyFrom(ctx, enc.Reader(), "COPY songplays (...) FROM STDIN")
//
// # Thread Safety
//
// Normalize and Line are safe for concurrent use. Encoder is not.
package copytext

package copytext

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type level string

func (l level) String() string { return "level:" + string(l) }

func TestNormalize(t *testing.T) {
	var nilString *string
	var nilFloat *float64
	var nilStringer *level
	name := "Sparkify"
	lat := 35.14968
	year := 0

	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{"nil", nil, `\N`},
		{"typed nil string pointer", nilString, `\N`},
		{"typed nil float pointer", nilFloat, `\N`},
		{"typed nil stringer", nilStringer, `\N`},
		{"plain string", "Los Angeles, CA", "Los Angeles, CA"},
		{"empty string is not null", "", ""},
		{"newline escaped", "line1\nline2", `line1\nline2`},
		{"carriage return escaped", "a\rb", `a\rb`},
		{"tab escaped", "a\tb", `a\tb`},
		{"backslash escaped", `C:\music`, `C:\\music`},
		{"literal backslash-n is not a newline", `a\nb`, `a\\nb`},
		{"int", 42, "42"},
		{"int64", int64(1541903636796), "1541903636796"},
		{"zero int kept", 0, "0"},
		{"float shortest form", 218.93179, "218.93179"},
		{"float whole number", 200.0, "200"},
		{"bool true", true, "t"},
		{"bool false", false, "f"},
		{"time", time.Date(2018, 11, 11, 2, 33, 56, 796_000_000, time.UTC), "2018-11-11 02:33:56.796"},
		{"string pointer", &name, "Sparkify"},
		{"float pointer", &lat, "35.14968"},
		{"int pointer zero", &year, "0"},
		{"stringer", level("paid"), "level:paid"},
		{"bytes", []byte("x\ty"), `x\ty`},
		{"nil bytes", []byte(nil), `\N`},
		{"empty bytes are not null", []byte{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.value))
		})
	}
}

func TestNormalize_NeverEmitsFramingCharacters(t *testing.T) {
	inputs := []any{
		"Mozilla/5.0 (Macintosh)\n\t\r",
		"\n\n\n",
		"trailing\\",
		[]byte("\t"),
		level("a\nb"),
	}
	for _, in := range inputs {
		out := Normalize(in)
		assert.NotContains(t, out, "\n")
		assert.NotContains(t, out, "\t")
		assert.NotContains(t, out, "\r")
	}
}

func TestLine(t *testing.T) {
	songID := "SOZCTXZ12AB0182364"
	line := Line(time.Date(2018, 11, 1, 21, 1, 46, 796_000_000, time.UTC), "8", "free", &songID, nil, int64(139), "Phoenix\tAZ", nil)

	assert.Equal(t, "2018-11-01 21:01:46.796\t8\tfree\tSOZCTXZ12AB0182364\t\\N\t139\tPhoenix\\tAZ\t\\N\n", line)
	assert.Equal(t, 1, strings.Count(line, "\n"))
	assert.Len(t, strings.Split(strings.TrimSuffix(line, "\n"), "\t"), 8)
}

func TestLine_Empty(t *testing.T) {
	assert.Equal(t, "\n", Line())
}

func TestEncoder(t *testing.T) {
	var enc Encoder
	assert.Equal(t, 0, enc.Rows())

	enc.WriteRow("a", 1)
	enc.WriteRow(nil, "b\nc")

	assert.Equal(t, 2, enc.Rows())

	data, err := io.ReadAll(enc.Reader())
	require.NoError(t, err)
	assert.Equal(t, "a\t1\n\\N\tb\\nc\n", string(data))

	// Reader does not consume the buffer.
	again, err := io.ReadAll(enc.Reader())
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestNormalize_TimePointerUsesCopyLayout(t *testing.T) {
	ts := time.Date(2018, 11, 30, 0, 22, 7, 796_000_000, time.UTC)
	assert.Equal(t, "2018-11-30 00:22:07.796", Normalize(&ts))
}

package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgParser(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"simple", "GUA PTY 2025-12-01", []string{"GUA", "PTY", "2025-12-01"}},
		{"extra spaces", "  GUA \t PTY  ", []string{"GUA", "PTY"}},
		{"single quotes", "notas.txt 'vuelo a Panamá'", []string{"notas.txt", "vuelo a Panamá"}},
		{"double quotes", `"mi archivo" texto`, []string{"mi archivo", "texto"}},
		{"escaped space", `hola\ mundo`, []string{"hola mundo"}},
		{"escaped quote in double quotes", `"dijo \"hola\""`, []string{`dijo "hola"`}},
		{"other escapes kept in double quotes", `"a\nb"`, []string{`a\nb`}},
		{"single quotes are literal", `'a\"b'`, []string{`a\"b`}},
		{"empty quotes make an empty arg", `'' x`, []string{"", "x"}},
		{"adjacent quoted parts join", `ab"c d"'e'`, []string{"abc de"}},
		{"fen", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
			[]string{"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR", "w", "KQkq", "-", "0", "1"}},
		{"empty", "", []string{}},
		{"whitespace only", "   \t ", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ArgParser{}.Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestArgParserErrors(t *testing.T) {
	_, err := ArgParser{}.Parse(`"abierto`)
	assert.ErrorIs(t, err, ErrUnclosedQuote)

	_, err = ArgParser{}.Parse(`it's`)
	assert.ErrorIs(t, err, ErrUnclosedQuote)

	_, err = ArgParser{}.Parse(`fin\`)
	assert.ErrorIs(t, err, ErrDanglingEscape)
}

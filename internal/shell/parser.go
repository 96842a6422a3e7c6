package shell

import (
	"errors"
	"strings"
	"unicode"
)

type Parser interface {
	Parse(line string) ([]string, error)
}

var (
	ErrUnclosedQuote  = errors.New("unclosed quote")
	ErrDanglingEscape = errors.New("trailing backslash")
)

type parseState int

const (
	stateOutside parseState = iota
	stateSingleQuote
	stateDoubleQuote
)

// ArgParser splits command arguments the way a POSIX shell would: single
// quotes are literal, double quotes honour \" and \\, and a backslash outside
// quotes escapes the next rune.
type ArgParser struct{}

func (ArgParser) Parse(line string) ([]string, error) {
	args := []string{}
	var token strings.Builder
	inToken := false
	escaping := false
	state := stateOutside

	flush := func() {
		if inToken {
			args = append(args, token.String())
			token.Reset()
			inToken = false
		}
	}

	for _, ch := range line {
		switch state {
		case stateOutside:
			switch {
			case escaping:
				token.WriteRune(ch)
				escaping = false
			case unicode.IsSpace(ch):
				flush()
			case ch == '\'':
				state = stateSingleQuote
				inToken = true
			case ch == '"':
				state = stateDoubleQuote
				inToken = true
			case ch == '\\':
				escaping = true
				inToken = true
			default:
				token.WriteRune(ch)
				inToken = true
			}

		case stateSingleQuote:
			if ch == '\'' {
				state = stateOutside
			} else {
				token.WriteRune(ch)
			}

		case stateDoubleQuote:
			switch {
			case escaping:
				if ch != '\\' && ch != '"' {
					token.WriteRune('\\')
				}
				token.WriteRune(ch)
				escaping = false
			case ch == '"':
				state = stateOutside
			case ch == '\\':
				escaping = true
			default:
				token.WriteRune(ch)
			}
		}
	}

	if state != stateOutside {
		return nil, ErrUnclosedQuote
	}
	if escaping {
		return nil, ErrDanglingEscape
	}
	flush()
	return args, nil
}

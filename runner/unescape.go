package runner

import (
	"fmt"
	"strings"
)

// MalformedEscapeError indicates an escape sequence that cannot be decoded:
// a trailing backslash with nothing after it, or a \u sequence with fewer
// than four hex digits available.
type MalformedEscapeError struct {
	Input    string
	Position int
}

func (e *MalformedEscapeError) Error() string {
	return fmt.Sprintf("malformed escape at position %d in %q", e.Position, e.Input)
}

// Unescape decodes backslash escape sequences as they appear in JSON text:
// \n \r \t \b \f, \uXXXX with exactly four hex digits, and identity escapes
// of any other character (\\ and \" included). This is deliberately more
// permissive than strict JSON string unescaping; diagnostic text is rendered
// JSON and may carry escapes of arbitrary characters.
//
// Input is processed as a sequence of Unicode scalar values so multi-byte
// characters survive intact. A \u value that is not a valid scalar (a lone
// surrogate) decodes to the replacement character.
func Unescape(s string) (string, error) {
	if !strings.ContainsRune(s, '\\') {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		if ch != '\\' {
			b.WriteRune(ch)
			continue
		}

		i++
		if i >= len(runes) {
			return "", &MalformedEscapeError{Input: s, Position: i}
		}

		switch runes[i] {
		case 'u':
			var value rune
			for j := 0; j < 4; j++ {
				i++
				if i >= len(runes) {
					return "", &MalformedEscapeError{Input: s, Position: i}
				}
				digit, ok := hexDigit(runes[i])
				if !ok {
					return "", &MalformedEscapeError{Input: s, Position: i}
				}
				value = value*16 + digit
			}
			// WriteRune substitutes U+FFFD for invalid scalars
			b.WriteRune(value)
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteRune(runes[i])
		}
	}

	return b.String(), nil
}

func hexDigit(r rune) (rune, bool) {
	switch {
	case r >= '0' && r <= '9':
		return r - '0', true
	case r >= 'a' && r <= 'f':
		return r - 'a' + 10, true
	case r >= 'A' && r <= 'F':
		return r - 'A' + 10, true
	}
	return 0, false
}

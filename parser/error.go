package parser

import (
	"fmt"
	"strings"

	"github.com/idlhub/holyc-bpf-compiler/token"
)

// ParseError is the structured parse error the grammar fails with on the
// first discrepancy between what the grammar expects and the token
// actually found. Expected lists every token type that would have been
// acceptable at this point; it is empty only when the parser has no
// narrower expectation to report than "more input".
type ParseError struct {
	Expected []token.TokenType
	Actual   token.Token
	Start    int
	End      int
}

func newUnexpectedToken(actual token.Token, expected ...token.TokenType) ParseError {
	return ParseError{Expected: expected, Actual: actual, Start: actual.Start, End: actual.End}
}

func newUnexpectedEOF(actual token.Token, expected ...token.TokenType) ParseError {
	return ParseError{Expected: expected, Actual: actual, Start: actual.Start, End: actual.End}
}

func (e ParseError) Error() string {
	var want string
	if len(e.Expected) == 0 {
		want = "more input"
	} else {
		parts := make([]string, len(e.Expected))
		for i, tt := range e.Expected {
			parts[i] = tt.String()
		}
		want = strings.Join(parts, " or ")
	}

	if e.Actual.TokenType == token.EOF {
		return fmt.Sprintf("line %d, column %d: unexpected end of input, expected %s",
			e.Actual.Line, e.Actual.Column, want)
	}
	return fmt.Sprintf("line %d, column %d: unexpected token %q, expected %s",
		e.Actual.Line, e.Actual.Column, e.Actual.Lexeme, want)
}

package lexer

import (
	"github.com/idlhub/holyc-bpf-compiler/token"
	"testing"
)

type wantToken struct {
	tokenType token.TokenType
	literal   any
}

func assertTokenTypes(t *testing.T, got []token.Token, want []wantToken) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d (%v)", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].TokenType != w.tokenType {
			t.Errorf("token[%d].TokenType = %v, want %v", i, got[i].TokenType, w.tokenType)
		}
		if w.literal != nil && got[i].Literal != w.literal {
			t.Errorf("token[%d].Literal = %v, want %v", i, got[i].Literal, w.literal)
		}
	}
}

func TestScanOperators(t *testing.T) {
	scanner := New("== / = * + > - < != <= >= ! !")
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	assertTokenTypes(t, got, []wantToken{
		{token.EQ_EQ, nil}, {token.SLASH, nil}, {token.ASSIGN, nil}, {token.STAR, nil},
		{token.PLUS, nil}, {token.GREATER, nil}, {token.MINUS, nil}, {token.LESS, nil},
		{token.NOT_EQ, nil}, {token.LESS_EQ, nil}, {token.GREATER_EQ, nil},
		{token.BANG, nil}, {token.BANG, nil}, {token.EOF, nil},
	})
}

func TestScanLongestMatch(t *testing.T) {
	scanner := New("<<= << < ++ + -> -- - &&")
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	assertTokenTypes(t, got, []wantToken{
		{token.SHL_ASSIGN, nil}, {token.SHL, nil}, {token.LESS, nil},
		{token.INCREMENT, nil}, {token.PLUS, nil},
		{token.ARROW, nil}, {token.DECREMENT, nil}, {token.MINUS, nil},
		{token.AND_AND, nil}, {token.EOF, nil},
	})
}

func TestScanDelimitersAndKeywords(t *testing.T) {
	scanner := New("U64 add(U64 a, U64 b) { return a + b; }")
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	assertTokenTypes(t, got, []wantToken{
		{token.U64, nil}, {token.IDENTIFIER, "add"}, {token.LPAREN, nil},
		{token.U64, nil}, {token.IDENTIFIER, "a"}, {token.COMMA, nil},
		{token.U64, nil}, {token.IDENTIFIER, "b"}, {token.RPAREN, nil},
		{token.LBRACE, nil}, {token.RETURN, nil}, {token.IDENTIFIER, "a"},
		{token.PLUS, nil}, {token.IDENTIFIER, "b"}, {token.SEMICOLON, nil},
		{token.RBRACE, nil}, {token.EOF, nil},
	})
}

func TestScanHexLiteral(t *testing.T) {
	scanner := New("0xdeadbeef")
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if got[0].TokenType != token.HEX_LITERAL {
		t.Fatalf("TokenType = %v, want HEX_LITERAL", got[0].TokenType)
	}
	if got[0].Literal != uint64(0xdeadbeef) {
		t.Errorf("Literal = %v, want 0xdeadbeef", got[0].Literal)
	}
}

func TestScanBinLiteral(t *testing.T) {
	scanner := New("0b1010")
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if got[0].TokenType != token.BIN_LITERAL || got[0].Literal != uint64(0b1010) {
		t.Fatalf("got %+v, want BIN_LITERAL(10)", got[0])
	}
}

func TestScanFloatLiteral(t *testing.T) {
	scanner := New("3.14")
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if got[0].TokenType != token.FLOAT_LITERAL || got[0].Literal != 3.14 {
		t.Fatalf("got %+v, want FLOAT_LITERAL(3.14)", got[0])
	}
}

func TestScanStringAndCharLiterals(t *testing.T) {
	scanner := New(`"hello\nworld" 'a' '\n'`)
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if got[0].TokenType != token.STRING_LITERAL || got[0].Literal != `hello\nworld` {
		t.Fatalf("got %+v, want raw STRING_LITERAL", got[0])
	}
	if got[1].TokenType != token.CHAR_LITERAL || got[1].Literal != byte('a') {
		t.Fatalf("got %+v, want CHAR_LITERAL('a')", got[1])
	}
	if got[2].TokenType != token.CHAR_LITERAL || got[2].Literal != byte('\\') {
		t.Fatalf("got %+v, want CHAR_LITERAL('\\\\')", got[2])
	}
}

func TestScanComments(t *testing.T) {
	source := "U64 x; // trailing comment\n/* block\n comment */ U64 y;"
	scanner := New(source)
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	assertTokenTypes(t, got, []wantToken{
		{token.U64, nil}, {token.IDENTIFIER, "x"}, {token.SEMICOLON, nil},
		{token.U64, nil}, {token.IDENTIFIER, "y"}, {token.SEMICOLON, nil},
		{token.EOF, nil},
	})
}

func TestScanPreprocessorDirectives(t *testing.T) {
	source := "#define MAX_ACCOUNTS 16\n#include \"solana.hc\"\nU64 x;"
	scanner := New(source)
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if got[0].TokenType != token.DEFINE || got[0].Literal != "#define MAX_ACCOUNTS 16" {
		t.Fatalf("got %+v, want DEFINE literal", got[0])
	}
	if got[1].TokenType != token.INCLUDE {
		t.Fatalf("got %+v, want INCLUDE", got[1])
	}
}

func TestXorObfuscationTokens(t *testing.T) {
	scanner := New("vault_deobf = vault_slot ^ 0x6e9de2b30b19f9ea;")
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	var sawCaret, sawKey bool
	for _, tok := range got {
		if tok.TokenType == token.CARET {
			sawCaret = true
		}
		if tok.TokenType == token.HEX_LITERAL && tok.Literal == uint64(0x6e9de2b30b19f9ea) {
			sawKey = true
		}
	}
	if !sawCaret || !sawKey {
		t.Fatalf("expected CARET and hex key token, got %v", got)
	}
}

func TestScanUnexpectedCharacter(t *testing.T) {
	scanner := New("U64 x = @;")
	_, err := scanner.Scan()
	if err == nil {
		t.Fatal("expected lexical error for '@'")
	}
}

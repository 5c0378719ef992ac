package symdiff

import (
	"fmt"
	"math"
	"strconv"
	"unicode"
)

// TokenKind tags a Token.
type TokenKind int

const (
	TokNumber TokenKind = iota
	TokVariable
	TokOperator
	TokFunction
	TokLParen
	TokRParen
)

func (k TokenKind) String() string {
	switch k {
	case TokNumber:
		return "number"
	case TokVariable:
		return "variable"
	case TokOperator:
		return "operator"
	case TokFunction:
		return "function"
	case TokLParen:
		return "("
	case TokRParen:
		return ")"
	}
	return "unknown"
}

// Token is one lexical element. Value is set for numbers, Text for
// variables, functions and operators (one of + - × / ^).
type Token struct {
	Kind  TokenKind
	Value float64
	Text  string
	Pos   int
}

func (t Token) String() string {
	switch t.Kind {
	case TokNumber:
		return formatNumber(t.Value)
	case TokLParen:
		return "("
	case TokRParen:
		return ")"
	}
	return t.Text
}

// Canonical operator symbols.
const (
	SymAdd = "+"
	SymSub = "-"
	SymMul = "×"
	SymDiv = "/"
	SymPow = "^"
)

var operatorRunes = map[rune]string{
	'+': SymAdd,
	'-': SymSub,
	'×': SymMul,
	'*': SymMul,
	'÷': SymDiv,
	'/': SymDiv,
	'^': SymPow,
}

// tokenizer owns the scan state of a single Tokenize call.
type tokenizer struct {
	src    []rune
	pos    int
	tokens []Token
}

// Tokenize splits text into tokens, inserting × wherever two atoms are
// juxtaposed: number-then-letter, variable-then-letter/paren, and
// closing-paren-then-letter/digit/paren.
func Tokenize(text string) ([]Token, error) {
	t := &tokenizer{src: []rune(text)}
	if err := t.run(); err != nil {
		return nil, err
	}
	return t.tokens, nil
}

func (t *tokenizer) run() error {
	for t.pos < len(t.src) {
		r := t.src[t.pos]
		switch {
		case unicode.IsSpace(r):
			t.pos++
			continue
		case isDigit(r) || r == '.':
			t.implicitMultiply(r)
			if err := t.number(); err != nil {
				return err
			}
		case r == 'π':
			t.implicitMultiply(r)
			t.emit(Token{Kind: TokNumber, Value: math.Pi, Pos: t.pos})
			t.pos++
		case isLetter(r):
			t.implicitMultiply(r)
			t.identifier()
		case r == '(':
			t.implicitMultiply(r)
			t.emit(Token{Kind: TokLParen, Pos: t.pos})
			t.pos++
		case r == ')':
			t.emit(Token{Kind: TokRParen, Pos: t.pos})
			t.pos++
		default:
			sym, ok := operatorRunes[r]
			if !ok {
				return parseErrorf(t.pos, "unexpected character %q", r)
			}
			t.emit(Token{Kind: TokOperator, Text: sym, Pos: t.pos})
			t.pos++
		}
	}
	return nil
}

func (t *tokenizer) emit(tok Token) { t.tokens = append(t.tokens, tok) }

// implicitMultiply inserts × before the atom starting with r when the
// previous token ends an atom.
func (t *tokenizer) implicitMultiply(r rune) {
	if len(t.tokens) == 0 {
		return
	}
	prev := t.tokens[len(t.tokens)-1]
	startsName := isLetter(r) || r == 'π'
	insert := false
	switch prev.Kind {
	case TokNumber, TokVariable:
		insert = startsName || r == '('
	case TokRParen:
		insert = startsName || r == '(' || isDigit(r) || r == '.'
	}
	if insert {
		t.emit(Token{Kind: TokOperator, Text: SymMul, Pos: t.pos})
	}
}

func (t *tokenizer) number() error {
	start := t.pos
	for t.pos < len(t.src) && (isDigit(t.src[t.pos]) || t.src[t.pos] == '.') {
		t.pos++
	}
	lit := string(t.src[start:t.pos])
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return parseErrorf(start, "invalid number %q", lit)
	}
	t.emit(Token{Kind: TokNumber, Value: v, Pos: start})
	return nil
}

func (t *tokenizer) identifier() {
	start := t.pos
	for t.pos < len(t.src) && isLetter(t.src[t.pos]) {
		t.pos++
	}
	name := string(t.src[start:t.pos])
	switch {
	case IsFunctionName(name):
		t.emit(Token{Kind: TokFunction, Text: name, Pos: start})
	case name == "e":
		t.emit(Token{Kind: TokNumber, Value: math.E, Pos: start})
	default:
		t.emit(Token{Kind: TokVariable, Text: name, Pos: start})
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isLetter(r rune) bool { return r != 'π' && unicode.IsLetter(r) }

// TokensString renders a token stream for debugging.
func TokensString(tokens []Token) string {
	s := ""
	for i, tok := range tokens {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprint(tok)
	}
	return s
}

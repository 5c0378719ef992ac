package symdiff

import "math"

// parser owns the cursor of a single parse.
type parser struct {
	tokens []Token
	pos    int
}

// Parse tokenizes and parses text into an expression tree.
//
//	expression := term (('+'|'-') term)*
//	term       := unary (('×'|'/') unary)*
//	unary      := ('-'|'+') unary | power
//	power      := base ('^' exponent)*
//	exponent   := ('-'|'+') exponent | base
//	base       := Number | Variable | Function '(' expression ')' | '(' expression ')'
//
// All binary operators, including '^', associate to the left.
func Parse(text string) (Expr, error) {
	tokens, err := Tokenize(text)
	if err != nil {
		return nil, err
	}
	return ParseTokens(tokens)
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level fixtures.
func MustParse(text string) Expr {
	e, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return e
}

// ParseTokens parses an already tokenized expression.
func ParseTokens(tokens []Token) (Expr, error) {
	if len(tokens) == 0 {
		return nil, parseErrorf(-1, "empty expression")
	}
	p := &parser{tokens: tokens}
	e, err := p.expression()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		return nil, parseErrorf(tok.Pos, "unexpected %s %q after expression", tok.Kind, tok.String())
	}
	return e, nil
}

func (p *parser) peek() (Token, bool) {
	if p.pos >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) peekOperator(syms ...string) (string, bool) {
	tok, ok := p.peek()
	if !ok || tok.Kind != TokOperator {
		return "", false
	}
	for _, s := range syms {
		if tok.Text == s {
			return s, true
		}
	}
	return "", false
}

func (p *parser) endPos() int {
	if len(p.tokens) == 0 {
		return -1
	}
	return p.tokens[len(p.tokens)-1].Pos + 1
}

func (p *parser) expression() (Expr, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		sym, ok := p.peekOperator(SymAdd, SymSub)
		if !ok {
			return left, nil
		}
		p.pos++
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		if sym == SymAdd {
			left = AddOf(left, right)
		} else {
			left = SubOf(left, right)
		}
	}
}

func (p *parser) term() (Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		sym, ok := p.peekOperator(SymMul, SymDiv)
		if !ok {
			return left, nil
		}
		p.pos++
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		if sym == SymMul {
			left = MulOf(left, right)
		} else {
			left = DivOf(left, right)
		}
	}
}

func (p *parser) unary() (Expr, error) {
	if sym, ok := p.peekOperator(SymAdd, SymSub); ok {
		p.pos++
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		if sym == SymAdd {
			return operand, nil
		}
		return negate(operand), nil
	}
	return p.power()
}

func (p *parser) power() (Expr, error) {
	left, err := p.base()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.peekOperator(SymPow); !ok {
			return left, nil
		}
		p.pos++
		right, err := p.exponent()
		if err != nil {
			return nil, err
		}
		left = PowOf(left, right)
	}
}

func (p *parser) exponent() (Expr, error) {
	if sym, ok := p.peekOperator(SymAdd, SymSub); ok {
		p.pos++
		operand, err := p.exponent()
		if err != nil {
			return nil, err
		}
		if sym == SymAdd {
			return operand, nil
		}
		return negate(operand), nil
	}
	return p.base()
}

func (p *parser) base() (Expr, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, parseErrorf(p.endPos(), "unexpected end of expression")
	}
	switch tok.Kind {
	case TokNumber:
		p.pos++
		return N(tok.Value), nil
	case TokVariable:
		p.pos++
		return S(tok.Text), nil
	case TokFunction:
		p.pos++
		next, ok := p.peek()
		if !ok || next.Kind != TokLParen {
			return nil, parseErrorf(tok.Pos, "function %s must be followed by '('", tok.Text)
		}
		arg, err := p.parenthesized()
		if err != nil {
			return nil, err
		}
		return FuncOf(tok.Text, arg), nil
	case TokLParen:
		return p.parenthesized()
	}
	return nil, parseErrorf(tok.Pos, "unexpected %s %q", tok.Kind, tok.String())
}

// parenthesized parses '(' expression ')' starting at the opening paren.
func (p *parser) parenthesized() (Expr, error) {
	open := p.tokens[p.pos]
	p.pos++
	inner, err := p.expression()
	if err != nil {
		return nil, err
	}
	closing, ok := p.peek()
	if !ok || closing.Kind != TokRParen {
		return nil, parseErrorf(open.Pos, "unmatched '('")
	}
	p.pos++
	return inner, nil
}

// negate applies unary minus, folding it into numeric literals.
func negate(e Expr) Expr {
	if v, ok := numValue(e); ok {
		if v == 0 {
			return N(0)
		}
		return N(-v)
	}
	return Neg(e)
}

// Pi and E are the literal constants produced for π and e.
var (
	Pi = N(math.Pi)
	E  = N(math.E)
)

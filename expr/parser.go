package expr

import "fmt"

// Parser is a recursive-descent parser over the Lexer's token stream,
// implementing the precedence table from spec.md §4.1 (lowest to
// highest): ternary, ||, &&, equality, relational, additive,
// multiplicative, unary, primary.
type Parser struct {
	lex  *Lexer
	cur  Token
	next Token
}

// Parse compiles a single expression body (the text between ${{ and }},
// or between $[ and ]) into an AST.
func Parse(src string) (Node, error) {
	p := &Parser{lex: NewLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	node, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if p.cur.Kind != TokEOF {
		return nil, &SyntaxError{Message: fmt.Sprintf("unexpected trailing token %q", p.cur.Text), Line: p.cur.Line, Col: p.cur.Col}
	}
	return node, nil
}

func (p *Parser) advance() error {
	p.cur = p.next
	t, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.next = t
	return nil
}

func (p *Parser) parseTernary() (Node, error) {
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur.Kind == TokQuestion {
		if err := p.advance(); err != nil {
			return nil, err
		}
		thenNode, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		if p.cur.Kind != TokColon {
			return nil, &SyntaxError{Message: "expected ':' in ternary expression", Line: p.cur.Line, Col: p.cur.Col}
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		elseNode, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		return &TernaryNode{Cond: cond, Then: thenNode, Else: elseNode}, nil
	}
	return cond, nil
}

func (p *Parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.Kind == TokOr {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryNode{Op: TokOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Node, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.cur.Kind == TokAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &BinaryNode{Op: TokAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseEquality() (Node, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.cur.Kind == TokEq || p.cur.Kind == TokNe {
		op := p.cur.Kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = &BinaryNode{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseRelational() (Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.cur.Kind == TokLt || p.cur.Kind == TokLe || p.cur.Kind == TokGt || p.cur.Kind == TokGe {
		op := p.cur.Kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &BinaryNode{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAdditive() (Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.cur.Kind == TokPlus || p.cur.Kind == TokMinus {
		op := p.cur.Kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryNode{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur.Kind == TokStar || p.cur.Kind == TokSlash || p.cur.Kind == TokPercent {
		op := p.cur.Kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryNode{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Node, error) {
	if p.cur.Kind == TokNot || p.cur.Kind == TokMinus {
		op := p.cur.Kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryNode{Op: op, Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Node, error) {
	tok := p.cur
	switch tok.Kind {
	case TokNull:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &LiteralNode{Value: Null}, nil
	case TokTrue:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &LiteralNode{Value: Bool(true)}, nil
	case TokFalse:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &LiteralNode{Value: Bool(false)}, nil
	case TokNumber:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &LiteralNode{Value: Number(tok.Num)}, nil
	case TokString:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &LiteralNode{Value: String(tok.Text)}, nil
	case TokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		if p.cur.Kind != TokRParen {
			return nil, &SyntaxError{Message: "expected ')'", Line: p.cur.Line, Col: p.cur.Col}
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return inner, nil
	case TokLBracket:
		return p.parseArrayLiteral()
	case TokLBrace:
		return p.parseObjectLiteral()
	case TokIdent:
		return p.parseReference()
	}
	return nil, &SyntaxError{Message: fmt.Sprintf("unexpected token %q", tok.Text), Line: tok.Line, Col: tok.Col}
}

func (p *Parser) parseArrayLiteral() (Node, error) {
	if err := p.advance(); err != nil { // consume '['
		return nil, err
	}
	var elems []Node
	for p.cur.Kind != TokRBracket {
		elem, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		if p.cur.Kind == TokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if p.cur.Kind != TokRBracket {
		return nil, &SyntaxError{Message: "expected ']'", Line: p.cur.Line, Col: p.cur.Col}
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ArrayNode{Elements: elems}, nil
}

func (p *Parser) parseObjectLiteral() (Node, error) {
	if err := p.advance(); err != nil { // consume '{'
		return nil, err
	}
	var keys []string
	var vals []Node
	for p.cur.Kind != TokRBrace {
		if p.cur.Kind != TokIdent && p.cur.Kind != TokString {
			return nil, &SyntaxError{Message: "expected object key", Line: p.cur.Line, Col: p.cur.Col}
		}
		key := p.cur.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.Kind != TokColon {
			return nil, &SyntaxError{Message: "expected ':' after object key", Line: p.cur.Line, Col: p.cur.Col}
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		val, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
		vals = append(vals, val)
		if p.cur.Kind == TokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if p.cur.Kind != TokRBrace {
		return nil, &SyntaxError{Message: "expected '}'", Line: p.cur.Line, Col: p.cur.Col}
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ObjectNode{Keys: keys, Values: vals}, nil
}

// parseReference parses a root identifier followed by `.name`, `[expr]`,
// or `(args, ...)` access parts, per spec.md §4.1 "A reference is...".
func (p *Parser) parseReference() (Node, error) {
	root := p.cur.Text
	if err := p.advance(); err != nil {
		return nil, err
	}
	ref := &ReferenceNode{Root: root}

	for {
		switch p.cur.Kind {
		case TokDot:
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.cur.Kind != TokIdent && p.cur.Kind != TokNull && p.cur.Kind != TokTrue && p.cur.Kind != TokFalse {
				return nil, &SyntaxError{Message: "expected field name after '.'", Line: p.cur.Line, Col: p.cur.Col}
			}
			field := p.cur.Text
			if err := p.advance(); err != nil {
				return nil, err
			}
			ref.Parts = append(ref.Parts, AccessPart{Kind: "field", Field: field})
		case TokLBracket:
			if err := p.advance(); err != nil {
				return nil, err
			}
			idx, err := p.parseTernary()
			if err != nil {
				return nil, err
			}
			if p.cur.Kind != TokRBracket {
				return nil, &SyntaxError{Message: "expected ']'", Line: p.cur.Line, Col: p.cur.Col}
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
			ref.Parts = append(ref.Parts, AccessPart{Kind: "index", Index: idx})
		case TokLParen:
			if err := p.advance(); err != nil {
				return nil, err
			}
			var args []Node
			for p.cur.Kind != TokRParen {
				arg, err := p.parseTernary()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.cur.Kind == TokComma {
					if err := p.advance(); err != nil {
						return nil, err
					}
					continue
				}
				break
			}
			if p.cur.Kind != TokRParen {
				return nil, &SyntaxError{Message: "expected ')'", Line: p.cur.Line, Col: p.cur.Col}
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
			ref.Parts = append(ref.Parts, AccessPart{Kind: "call", Args: args})
		default:
			return ref, nil
		}
	}
}

package docstore

import (
	"fmt"
	"strings"
)

// Kind identifies the statement verb.
type Kind int

const (
	KindSelect Kind = iota + 1
	KindInsert
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindSelect:
		return "SELECT"
	case KindInsert:
		return "INSERT"
	case KindDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// ConflictPolicy is the INSERT behaviour when the document id already exists.
type ConflictPolicy int

const (
	ConflictFail ConflictPolicy = iota
	ConflictUpdate
	ConflictIgnore
)

// Statement is a parsed statement.
type Statement struct {
	Kind       Kind
	Collection string

	WhereField string
	WhereParam string

	OrderField string
	OrderDesc  bool

	ValueParam string
	OnConflict ConflictPolicy
}

// HasWhere reports whether the statement filters on a field.
func (s *Statement) HasWhere() bool { return s.WhereField != "" }

// Param looks up a named parameter.
func (s *Statement) Param(params Params, name string) (any, error) {
	v, ok := params[name]
	if !ok {
		return nil, fmt.Errorf("%w: missing :%s", ErrInvalidParam, name)
	}
	return v, nil
}

// ParseStatement parses a statement of the docstore dialect.
func ParseStatement(text string) (*Statement, error) {
	p := &parser{text: text, tokens: tokenize(text)}
	stmt, err := p.parse()
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidStatement, text, err)
	}
	return stmt, nil
}

func tokenize(text string) []string {
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, ";")
	r := strings.NewReplacer("(", " ( ", ")", " ) ", "=", " = ", ",", " , ")
	return strings.Fields(r.Replace(text))
}

type parser struct {
	text   string
	tokens []string
	pos    int
}

func (p *parser) parse() (*Statement, error) {
	verb, err := p.next("statement verb")
	if err != nil {
		return nil, err
	}

	var stmt *Statement
	switch strings.ToUpper(verb) {
	case "SELECT":
		stmt, err = p.parseSelect()
	case "INSERT":
		stmt, err = p.parseInsert()
	case "DELETE":
		stmt, err = p.parseDelete()
	default:
		return nil, fmt.Errorf("unsupported verb %q", verb)
	}
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		return nil, fmt.Errorf("unexpected %q", p.tokens[p.pos])
	}
	return stmt, nil
}

func (p *parser) parseSelect() (*Statement, error) {
	stmt := &Statement{Kind: KindSelect}
	if err := p.expect("*"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	coll, err := p.ident("collection")
	if err != nil {
		return nil, err
	}
	stmt.Collection = coll

	if p.acceptKeyword("WHERE") {
		if stmt.WhereField, stmt.WhereParam, err = p.equality(); err != nil {
			return nil, err
		}
	}
	if p.acceptKeyword("ORDER") {
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		if stmt.OrderField, err = p.ident("order field"); err != nil {
			return nil, err
		}
		switch {
		case p.acceptKeyword("DESC"):
			stmt.OrderDesc = true
		case p.acceptKeyword("ASC"):
		}
	}
	return stmt, nil
}

func (p *parser) parseInsert() (*Statement, error) {
	stmt := &Statement{Kind: KindInsert}
	if err := p.expectKeyword("INTO"); err != nil {
		return nil, err
	}
	coll, err := p.ident("collection")
	if err != nil {
		return nil, err
	}
	stmt.Collection = coll

	if err := p.expectKeyword("VALUES"); err != nil {
		return nil, err
	}
	if err := p.expect("("); err != nil {
		return nil, err
	}
	if stmt.ValueParam, err = p.param(); err != nil {
		return nil, err
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}

	if p.acceptKeyword("ON") {
		for _, kw := range []string{"ID", "CONFLICT", "DO"} {
			if err := p.expectKeyword(kw); err != nil {
				return nil, err
			}
		}
		switch {
		case p.acceptKeyword("UPDATE"):
			stmt.OnConflict = ConflictUpdate
		case p.acceptKeyword("NOTHING"):
			stmt.OnConflict = ConflictIgnore
		default:
			return nil, fmt.Errorf("expected UPDATE or NOTHING after DO")
		}
	}
	return stmt, nil
}

func (p *parser) parseDelete() (*Statement, error) {
	stmt := &Statement{Kind: KindDelete}
	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	coll, err := p.ident("collection")
	if err != nil {
		return nil, err
	}
	stmt.Collection = coll

	if err := p.expectKeyword("WHERE"); err != nil {
		return nil, err
	}
	if stmt.WhereField, stmt.WhereParam, err = p.equality(); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *parser) equality() (field, param string, err error) {
	if field, err = p.ident("field"); err != nil {
		return "", "", err
	}
	if err = p.expect("="); err != nil {
		return "", "", err
	}
	if param, err = p.param(); err != nil {
		return "", "", err
	}
	return field, param, nil
}

func (p *parser) next(what string) (string, error) {
	if p.pos >= len(p.tokens) {
		return "", fmt.Errorf("expected %s, got end of statement", what)
	}
	tok := p.tokens[p.pos]
	p.pos++
	return tok, nil
}

func (p *parser) expect(want string) error {
	tok, err := p.next(want)
	if err != nil {
		return err
	}
	if tok != want {
		return fmt.Errorf("expected %q, got %q", want, tok)
	}
	return nil
}

func (p *parser) expectKeyword(kw string) error {
	tok, err := p.next(kw)
	if err != nil {
		return err
	}
	if !strings.EqualFold(tok, kw) {
		return fmt.Errorf("expected %s, got %q", kw, tok)
	}
	return nil
}

func (p *parser) acceptKeyword(kw string) bool {
	if p.pos < len(p.tokens) && strings.EqualFold(p.tokens[p.pos], kw) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) ident(what string) (string, error) {
	tok, err := p.next(what)
	if err != nil {
		return "", err
	}
	if !isIdent(tok) {
		return "", fmt.Errorf("invalid %s %q", what, tok)
	}
	return tok, nil
}

func (p *parser) param() (string, error) {
	tok, err := p.next("parameter")
	if err != nil {
		return "", err
	}
	if len(tok) < 2 || tok[0] != ':' || !isIdent(tok[1:]) {
		return "", fmt.Errorf("invalid parameter %q", tok)
	}
	return tok[1:], nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

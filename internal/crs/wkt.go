package crs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidWKT reports WKT text that could not be parsed.
var ErrInvalidWKT = errors.New("invalid WKT")

// node is one WKT element: KEYWORD[arg, arg, ...]. Arguments are either quoted
// strings, bare tokens (numbers, enums) or nested nodes.
type node struct {
	keyword  string
	values   []string
	children []*node
}

// name returns the first quoted argument, which WKT uses as the object name.
func (n *node) name() string {
	if len(n.values) == 0 {
		return ""
	}
	return n.values[0]
}

func (n *node) child(keywords ...string) *node {
	for _, c := range n.children {
		for _, kw := range keywords {
			if c.keyword == kw {
				return c
			}
		}
	}
	return nil
}

// number returns argument i as a float.
func (n *node) number(i int) (float64, bool) {
	if i >= len(n.values) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(n.values[i]), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// numbers returns every argument of n, failing if one is not numeric.
func (n *node) numbers() ([]float64, bool) {
	out := make([]float64, len(n.values))
	for i := range n.values {
		v, ok := n.number(i)
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func parseWKT(text string) (*node, error) {
	p := &wktParser{src: strings.TrimSpace(strings.TrimPrefix(text, "\ufeff"))}
	if p.src == "" {
		return nil, fmt.Errorf("%w: empty definition", ErrInvalidWKT)
	}
	root, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("%w: trailing data at offset %d", ErrInvalidWKT, p.pos)
	}
	return root, nil
}

type wktParser struct {
	src string
	pos int
}

func (p *wktParser) skipSpace() {
	for p.pos < len(p.src) && strings.IndexByte(" \t\r\n", p.src[p.pos]) >= 0 {
		p.pos++
	}
}

func (p *wktParser) parseNode() (*node, error) {
	p.skipSpace()
	keyword := p.token()
	if keyword == "" {
		return nil, fmt.Errorf("%w: expected keyword at offset %d", ErrInvalidWKT, p.pos)
	}
	p.skipSpace()
	if p.pos >= len(p.src) || (p.src[p.pos] != '[' && p.src[p.pos] != '(') {
		return nil, fmt.Errorf("%w: expected '[' after %s", ErrInvalidWKT, keyword)
	}
	closing := byte(']')
	if p.src[p.pos] == '(' {
		closing = ')'
	}
	p.pos++

	n := &node{keyword: strings.ToUpper(keyword)}
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, fmt.Errorf("%w: unterminated %s", ErrInvalidWKT, n.keyword)
		}
		switch c := p.src[p.pos]; {
		case c == closing:
			p.pos++
			return n, nil
		case c == ',':
			p.pos++
		case c == '"':
			s, err := p.quoted()
			if err != nil {
				return nil, err
			}
			n.values = append(n.values, s)
		default:
			start := p.pos
			tok := p.token()
			if tok == "" {
				return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrInvalidWKT, c, p.pos)
			}
			p.skipSpace()
			if p.pos < len(p.src) && (p.src[p.pos] == '[' || p.src[p.pos] == '(') {
				p.pos = start
				child, err := p.parseNode()
				if err != nil {
					return nil, err
				}
				n.children = append(n.children, child)
				continue
			}
			n.values = append(n.values, tok)
		}
	}
}

func (p *wktParser) token() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '[' || c == ']' || c == '(' || c == ')' || c == ',' || c == '"' || strings.IndexByte(" \t\r\n", c) >= 0 {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

// quoted reads a double-quoted string; a doubled quote is an escaped quote.
func (p *wktParser) quoted() (string, error) {
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		p.pos++
		if c != '"' {
			b.WriteByte(c)
			continue
		}
		if p.pos < len(p.src) && p.src[p.pos] == '"' {
			b.WriteByte('"')
			p.pos++
			continue
		}
		return b.String(), nil
	}
	return "", fmt.Errorf("%w: unterminated string", ErrInvalidWKT)
}

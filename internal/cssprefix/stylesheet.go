package icp

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// ParseError is returned for malformed stylesheets. Offset is the byte
// offset the parser had reached when it gave up.
type ParseError struct {
	Source string
	Offset int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("error parsing CSS at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("error parsing CSS in %s at offset %d: %v", e.Source, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var commaToken = css.Token{TokenType: css.CommaToken, Data: []byte(",")}

// PrefixStylesheet scopes every selector in src under the configured prefix.
// Rules inside @keyframes are left alone; rules inside @media, @supports and
// other grouping at-rules are rewritten.
func (c *Config) PrefixStylesheet(src []byte) (string, error) {
	if err := c.Init(); err != nil {
		return "", err
	}
	return c.prefixStylesheet("", src)
}

// PrefixFile is like PrefixStylesheet, but honors IncludeFiles and
// IgnoreFiles. relPath is relative to the styles directory. Files that
// should not be prefixed are returned unchanged.
func (c *Config) PrefixFile(relPath string, src []byte) (string, error) {
	if err := c.Init(); err != nil {
		return "", err
	}
	if !c.getShouldPrefixFile(relPath) {
		c.Logger.Debugf("skipping prefix for %s", relPath)
		return string(src), nil
	}
	return c.prefixStylesheet(relPath, src)
}

func (c *Config) prefixStylesheet(source string, src []byte) (string, error) {
	p := css.NewParser(parse.NewInput(bytes.NewReader(src)), false)

	var sb strings.Builder
	var blocks []bool // one entry per open at-rule block, true if @keyframes
	var pending []css.Token
	var heldComments [][]byte // comments between selectors, written inside the rule

	for {
		gt, _, data := p.Next()

		switch gt {
		case css.ErrorGrammar:
			if err := p.Err(); err != nil && !errors.Is(err, io.EOF) {
				return "", &ParseError{Source: source, Offset: p.Offset(), Err: err}
			}
			return sb.String(), nil

		case css.CommentGrammar:
			if len(pending) > 0 {
				heldComments = append(heldComments, append([]byte(nil), data...))
				continue
			}
			sb.Write(data)

		case css.TokenGrammar:
			sb.Write(data)

		case css.AtRuleGrammar:
			writeAtRulePrelude(&sb, data, p.Values())
			sb.WriteString(";\n")

		case css.BeginAtRuleGrammar:
			writeAtRulePrelude(&sb, data, p.Values())
			sb.WriteByte('{')
			blocks = append(blocks, getIsKeyframes(data))

		case css.EndAtRuleGrammar:
			if len(blocks) > 0 {
				blocks = blocks[:len(blocks)-1]
			}
			sb.WriteString("}\n")

		case css.QualifiedRuleGrammar:
			pending = append(pending, p.Values()...)
			pending = append(pending, commaToken)

		case css.BeginRulesetGrammar:
			selectors := append(pending, p.Values()...)
			pending = nil
			sb.WriteString(c.rewriteSelectorList(selectors, getIsInKeyframes(blocks)))
			sb.WriteByte('{')
			for _, comment := range heldComments {
				sb.Write(comment)
			}
			heldComments = nil

		case css.EndRulesetGrammar:
			sb.WriteString("}\n")

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			sb.Write(data)
			sb.WriteByte(':')
			sb.WriteString(tokensToString(p.Values()))
			sb.WriteByte(';')
		}
	}
}

func (c *Config) rewriteSelectorList(tokens []css.Token, skip bool) string {
	items := splitSelectorList(tokens)
	out := make([]string, 0, len(items))
	for _, item := range items {
		selector := tokensToString(item)
		if selector == "" {
			continue
		}
		if !skip {
			selector = c.TransformSelector(selector)
		}
		out = append(out, selector)
	}
	return strings.Join(out, ",")
}

// splitSelectorList splits on commas that are not nested inside parentheses
// or brackets, so ":is(a, b)" stays in one piece.
func splitSelectorList(tokens []css.Token) [][]css.Token {
	var items [][]css.Token
	var current []css.Token
	depth := 0
	for _, t := range tokens {
		switch t.TokenType {
		case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken:
			if depth > 0 {
				depth--
			}
		case css.CommaToken:
			if depth == 0 {
				items = append(items, current)
				current = nil
				continue
			}
		}
		current = append(current, t)
	}
	return append(items, current)
}

// tokensToString joins tokens, collapsing runs of whitespace to a single
// space and trimming both ends.
func tokensToString(tokens []css.Token) string {
	var sb strings.Builder
	pendingSpace := false
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken {
			pendingSpace = sb.Len() > 0
			continue
		}
		if pendingSpace {
			sb.WriteByte(' ')
			pendingSpace = false
		}
		sb.Write(t.Data)
	}
	return sb.String()
}

func writeAtRulePrelude(sb *strings.Builder, name []byte, values []css.Token) {
	sb.Write(name)
	if prelude := tokensToString(values); prelude != "" {
		sb.WriteByte(' ')
		sb.WriteString(prelude)
	}
}

func getIsKeyframes(atRuleName []byte) bool {
	return bytes.HasSuffix(bytes.ToLower(atRuleName), []byte("keyframes"))
}

func getIsInKeyframes(blocks []bool) bool {
	for _, isKeyframes := range blocks {
		if isKeyframes {
			return true
		}
	}
	return false
}

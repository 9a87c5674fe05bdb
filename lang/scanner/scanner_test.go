package scanner_test

import (
	"testing"

	"github.com/mna/corelang/internal/corpus"
	"github.com/mna/corelang/lang/scanner"
	"github.com/mna/corelang/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) ([]token.Token, []token.Value, []string) {
	t.Helper()

	var errs []string
	var s scanner.Scanner
	s.Init(token.NewFile("test"), []byte(src), func(pos token.Position, msg string) {
		errs = append(errs, msg)
	})

	var toks []token.Token
	var vals []token.Value
	for {
		var v token.Value
		tok := s.Scan(&v)
		toks = append(toks, tok)
		vals = append(vals, v)
		if tok == token.EOF {
			break
		}
	}
	return toks, vals, errs
}

func TestScanIdentsAndKeywords(t *testing.T) {
	toks, vals, errs := scanAll(t, "foo bar_1 if while local")
	require.Empty(t, errs)
	assert.Equal(t, []token.Token{token.IDENT, token.IDENT, token.IF, token.WHILE, token.LOCAL, token.EOF}, toks)
	assert.Equal(t, "foo", vals[0].Raw)
	assert.Equal(t, "bar_1", vals[1].Raw)
}

func TestScanOperators(t *testing.T) {
	toks, _, errs := scanAll(t, "+ - * / % & | ^ << >> ~ ! ++ -- == != < <= > >= && || = += -= *= /= %= &= |= ^= <<= >>=")
	require.Empty(t, errs)
	want := []token.Token{
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.AMP, token.PIPE, token.CARET, token.LTLT, token.GTGT,
		token.TILDE, token.BANG, token.INC, token.DEC,
		token.EQ, token.NEQ, token.LT, token.LE, token.GT, token.GE,
		token.AND, token.OR, token.ASSIGN,
		token.PLUSEQ, token.MINUSEQ, token.STAREQ, token.SLASHEQ, token.PERCENTEQ,
		token.AMPEQ, token.PIPEEQ, token.CARETEQ, token.LTLTEQ, token.GTGTEQ,
		token.EOF,
	}
	assert.Equal(t, want, toks)
}

func TestScanIntAndHex(t *testing.T) {
	toks, vals, errs := scanAll(t, "0 123 0x1F 0xff")
	require.Empty(t, errs)
	assert.Equal(t, []token.Token{token.INT, token.INT, token.HEX, token.HEX, token.EOF}, toks)
	assert.EqualValues(t, 0, vals[0].Int)
	assert.EqualValues(t, 123, vals[1].Int)
	assert.EqualValues(t, 0x1F, vals[2].Int)
	assert.EqualValues(t, 0xff, vals[3].Int)
}

func TestScanFloats(t *testing.T) {
	toks, vals, errs := scanAll(t, "1.5 .5 1. 1e10 1.5e-3 2f 3.0f")
	require.Empty(t, errs)
	for _, tok := range toks[:len(toks)-1] {
		assert.Equal(t, token.FLOAT, tok)
	}
	assert.InDelta(t, 1.5, vals[0].Float, 1e-9)
	assert.InDelta(t, 0.5, vals[1].Float, 1e-9)
	assert.InDelta(t, 1.0, vals[2].Float, 1e-9)
	assert.InDelta(t, 1e10, vals[3].Float, 1e-9)
	assert.InDelta(t, 1.5e-3, vals[4].Float, 1e-12)
	assert.InDelta(t, 2.0, vals[5].Float, 1e-9)
	assert.InDelta(t, 3.0, vals[6].Float, 1e-9)
}

func TestScanMalformedFloat(t *testing.T) {
	_, _, errs := scanAll(t, "1.e")
	require.NotEmpty(t, errs)
}

func TestScanString(t *testing.T) {
	toks, vals, errs := scanAll(t, `"hello\nworld" "a\tb" "\x41\x42"`)
	require.Empty(t, errs)
	require.Equal(t, []token.Token{token.STRING, token.STRING, token.STRING, token.EOF}, toks)
	assert.Equal(t, "hello\nworld", vals[0].Str)
	assert.Equal(t, "a\tb", vals[1].Str)
	assert.Equal(t, "AB", vals[2].Str)
}

func TestScanUnterminatedString(t *testing.T) {
	_, _, errs := scanAll(t, "\"abc")
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0], "not terminated")
}

func TestScanComments(t *testing.T) {
	toks, _, errs := scanAll(t, "1 // line comment\n2 /* block\ncomment */ 3")
	require.Empty(t, errs)
	assert.Equal(t, []token.Token{token.INT, token.INT, token.INT, token.EOF}, toks)
}

func TestScanUnterminatedBlockComment(t *testing.T) {
	_, _, errs := scanAll(t, "1 /* never closed")
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0], "not terminated")
}

func TestScanTabColumnWidth(t *testing.T) {
	var s scanner.Scanner
	s.Init(token.NewFile("test"), []byte("\tx"), func(token.Position, string) {})
	var v token.Value
	tok := s.Scan(&v)
	require.Equal(t, token.IDENT, tok)
	_, col := v.Pos.LineCol()
	assert.Equal(t, 9, col)
}

func TestScanIllegalCharacter(t *testing.T) {
	toks, _, errs := scanAll(t, "1 @ 2")
	require.NotEmpty(t, errs)
	assert.Equal(t, []token.Token{token.INT, token.ILLEGAL, token.INT, token.EOF}, toks)
}

func TestScanFactorialHasNoErrors(t *testing.T) {
	toks, _, errs := scanAll(t, corpus.Factorial)
	require.Empty(t, errs)
	assert.Contains(t, toks, token.FUNCTION)
	assert.Contains(t, toks, token.RETURN)
	assert.Contains(t, toks, token.IF)
}

// Package contentstream provides a minimal tokenizer for decoded PDF content
// streams. It distinguishes operands (numbers, names, strings, array/dict
// delimiters) from operators, which is enough for the overprint, transparency
// and text-size scans to walk a stream without the false positives of raw
// byte matching.
package contentstream

import "strconv"

// Kind classifies a token.
type Kind int

// Token kinds.
const (
	// KindNumber is a numeric operand.
	KindNumber Kind = iota
	// KindName is a name operand, e.g. /DeviceCMYK.
	KindName
	// KindString is a literal or hex string operand.
	KindString
	// KindArrayStart is "[".
	KindArrayStart
	// KindArrayEnd is "]".
	KindArrayEnd
	// KindDictStart is "<<".
	KindDictStart
	// KindDictEnd is ">>".
	KindDictEnd
	// KindOperator is a content-stream operator, e.g. "Tf" or "k".
	KindOperator
)

// Token is one lexical unit of a content stream. Num is only meaningful for
// KindNumber tokens. Raw holds the text without delimiters: names keep their
// leading slash stripped, strings their parentheses/brackets removed.
type Token struct {
	Kind Kind
	Raw  string
	Num  float64
}

// Tokenize splits a decoded content stream into tokens. Malformed input never
// fails; the lexer resynchronizes at the next delimiter, so a damaged stream
// yields a best-effort token sequence.
func Tokenize(content []byte) []Token {
	lexer := lexer{src: content}

	var tokens []Token

	for {
		token, ok := lexer.next()
		if !ok {
			break
		}

		tokens = append(tokens, token)
	}

	return tokens
}

type lexer struct {
	src []byte
	pos int
}

func (l *lexer) next() (Token, bool) {
	l.skipIrrelevant()

	if l.pos >= len(l.src) {
		return Token{}, false
	}

	switch c := l.src[l.pos]; {
	case c == '(':
		return l.literalString(), true
	case c == '<':
		if l.pos+1 < len(l.src) && l.src[l.pos+1] == '<' {
			l.pos += 2

			return Token{Kind: KindDictStart, Raw: "<<"}, true
		}

		return l.hexString(), true
	case c == '>':
		if l.pos+1 < len(l.src) && l.src[l.pos+1] == '>' {
			l.pos += 2

			return Token{Kind: KindDictEnd, Raw: ">>"}, true
		}
		// Stray ">" — skip it and resynchronize.
		l.pos++

		return l.next()
	case c == '[':
		l.pos++

		return Token{Kind: KindArrayStart, Raw: "["}, true
	case c == ']':
		l.pos++

		return Token{Kind: KindArrayEnd, Raw: "]"}, true
	case c == '/':
		return l.name(), true
	case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
		return l.number(), true
	default:
		return l.operator(), true
	}
}

// skipIrrelevant consumes whitespace and comments.
func (l *lexer) skipIrrelevant() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]

		if isWhitespace(c) {
			l.pos++

			continue
		}

		if c == '%' {
			for l.pos < len(l.src) && l.src[l.pos] != '\n' && l.src[l.pos] != '\r' {
				l.pos++
			}

			continue
		}

		return
	}
}

func (l *lexer) literalString() Token {
	start := l.pos + 1
	depth := 0

	for ; l.pos < len(l.src); l.pos++ {
		switch l.src[l.pos] {
		case '\\':
			l.pos++ // skip the escaped byte
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				token := Token{Kind: KindString, Raw: string(l.src[start:l.pos])}
				l.pos++

				return token
			}
		}
	}

	// Unterminated string: consume the rest.
	return Token{Kind: KindString, Raw: string(l.src[start:])}
}

func (l *lexer) hexString() Token {
	start := l.pos + 1

	for l.pos < len(l.src) && l.src[l.pos] != '>' {
		l.pos++
	}

	token := Token{Kind: KindString, Raw: string(l.src[start:min(l.pos, len(l.src))])}
	if l.pos < len(l.src) {
		l.pos++ // consume ">"
	}

	return token
}

func (l *lexer) name() Token {
	l.pos++ // consume "/"
	start := l.pos

	for l.pos < len(l.src) && isRegular(l.src[l.pos]) {
		l.pos++
	}

	return Token{Kind: KindName, Raw: string(l.src[start:l.pos])}
}

func (l *lexer) number() Token {
	start := l.pos
	l.pos++

	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if (c >= '0' && c <= '9') || c == '.' {
			l.pos++

			continue
		}

		break
	}

	raw := string(l.src[start:l.pos])

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// Not a parseable number after all; treat it as an operator so
		// the scan logic ignores it.
		return Token{Kind: KindOperator, Raw: raw}
	}

	return Token{Kind: KindNumber, Raw: raw, Num: value}
}

func (l *lexer) operator() Token {
	start := l.pos

	for l.pos < len(l.src) && isRegular(l.src[l.pos]) {
		l.pos++
	}

	if l.pos == start {
		// A delimiter we do not model; consume one byte to make progress.
		l.pos++

		return Token{Kind: KindOperator, Raw: string(l.src[start:l.pos])}
	}

	return Token{Kind: KindOperator, Raw: string(l.src[start:l.pos])}
}

func isWhitespace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	default:
		return false
	}
}

// isRegular reports whether c can appear inside a name or operator token.
func isRegular(c byte) bool {
	if isWhitespace(c) {
		return false
	}

	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return false
	default:
		return true
	}
}

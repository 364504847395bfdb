package param

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/roach88/tinkerharness/internal/token"
)

// Parse converts literal text extracted from a scenario step into a
// Parameter.
//
// Accepted forms:
//
//	null, true, false
//	"double quoted" or 'single quoted' strings
//	d[29].i d[29].l d[1.5].f d[1.5].d   typed numbers (int32, int64, float32, float64)
//	29 29l 1.5 1.5f 1.5d                bare numbers (int32 if it fits, else int64)
//	T.label Column.values.Order.desc    token chains of Family.member pairs
func Parse(text string) (Parameter, error) {
	lead := len(text) - len(strings.TrimLeftFunc(text, unicode.IsSpace))
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, &ParseError{Text: text, Offset: 0, Message: "empty literal"}
	}

	p := &literalParser{text: text, s: s, lead: lead}

	first, _ := utf8.DecodeRuneInString(s)
	switch {
	case s == "null":
		return NewScalar(nil)
	case s == "true":
		return NewScalar(true)
	case s == "false":
		return NewScalar(false)
	case first == '"':
		return p.doubleQuoted()
	case first == '\'':
		return p.singleQuoted()
	case strings.HasPrefix(s, "d["):
		return p.typedNumber()
	case first == '-' || first == '+' || first == '.' || unicode.IsDigit(first):
		return p.bareNumber()
	case unicode.IsUpper(first):
		return p.tokenChain()
	default:
		return nil, p.errorAt(0, "unrecognised literal")
	}
}

// MustParse is like Parse but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustParse(text string) Parameter {
	p, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return p
}

// ParseAll parses each literal in order, stopping at the first error.
func ParseAll(texts []string) ([]Parameter, error) {
	out := make([]Parameter, 0, len(texts))
	for _, t := range texts {
		p, err := Parse(t)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

type literalParser struct {
	text string // original input
	s    string // trimmed input
	lead int    // bytes trimmed from the front
}

func (p *literalParser) errorAt(offset int, msg string) *ParseError {
	return &ParseError{Text: p.text, Offset: p.lead + offset, Message: msg}
}

func (p *literalParser) doubleQuoted() (Parameter, error) {
	v, err := strconv.Unquote(p.s)
	if err != nil {
		return nil, p.errorAt(0, "malformed double-quoted string")
	}
	return NewScalar(v)
}

func (p *literalParser) singleQuoted() (Parameter, error) {
	s := p.s
	if len(s) < 2 || s[len(s)-1] != '\'' {
		return nil, p.errorAt(len(s)-1, "unterminated single-quoted string")
	}

	var b strings.Builder
	body := s[1 : len(s)-1]
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch c {
		case '\'':
			return nil, p.errorAt(i+1, "unescaped quote inside single-quoted string")
		case '\\':
			if i+1 >= len(body) {
				return nil, p.errorAt(i+1, "dangling escape")
			}
			i++
			switch body[i] {
			case '\'':
				b.WriteByte('\'')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				return nil, p.errorAt(i+1, "unknown escape \\"+string(body[i]))
			}
		default:
			b.WriteByte(c)
		}
	}
	return NewScalar(b.String())
}

// typedNumber parses d[<number>].<suffix>.
func (p *literalParser) typedNumber() (Parameter, error) {
	s := p.s
	end := strings.LastIndex(s, "].")
	if end < 0 {
		return nil, p.errorAt(0, "typed number must look like d[<number>].<suffix>")
	}
	num := s[2:end]
	suffix := s[end+2:]

	switch suffix {
	case "i":
		n, err := strconv.ParseInt(num, 10, 32)
		if err != nil {
			return nil, p.errorAt(2, "invalid int32: "+num)
		}
		return NewScalar(int32(n))
	case "l":
		n, err := strconv.ParseInt(num, 10, 64)
		if err != nil {
			return nil, p.errorAt(2, "invalid int64: "+num)
		}
		return NewScalar(n)
	case "f":
		f, err := strconv.ParseFloat(num, 32)
		if err != nil {
			return nil, p.errorAt(2, "invalid float32: "+num)
		}
		return NewScalar(float32(f))
	case "d":
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return nil, p.errorAt(2, "invalid float64: "+num)
		}
		return NewScalar(f)
	default:
		return nil, p.errorAt(end+2, "unknown numeric suffix "+strconv.Quote(suffix))
	}
}

func (p *literalParser) bareNumber() (Parameter, error) {
	s := p.s
	body, suffix := s[:len(s)-1], s[len(s)-1]

	switch suffix {
	case 'l', 'L':
		n, err := strconv.ParseInt(body, 10, 64)
		if err != nil {
			return nil, p.errorAt(0, "invalid int64: "+body)
		}
		return NewScalar(n)
	case 'f', 'F':
		f, err := strconv.ParseFloat(body, 32)
		if err != nil {
			return nil, p.errorAt(0, "invalid float32: "+body)
		}
		return NewScalar(float32(f))
	case 'd', 'D':
		f, err := strconv.ParseFloat(body, 64)
		if err != nil {
			return nil, p.errorAt(0, "invalid float64: "+body)
		}
		return NewScalar(f)
	}

	if strings.ContainsAny(s, ".eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, p.errorAt(0, "invalid number: "+s)
		}
		return NewScalar(f)
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, p.errorAt(0, "invalid integer: "+s)
	}
	if n >= math.MinInt32 && n <= math.MaxInt32 {
		return NewScalar(int32(n))
	}
	return NewScalar(n)
}

// tokenChain parses Family.member(.Family.member)*.
func (p *literalParser) tokenChain() (Parameter, error) {
	segments := strings.Split(p.s, ".")
	if len(segments)%2 != 0 {
		return nil, p.errorAt(0, "token chain must be Family.member pairs")
	}

	parts := make([]token.Token, 0, len(segments)/2)
	offset := 0
	for i := 0; i < len(segments); i += 2 {
		family, name := segments[i], segments[i+1]
		if !token.IsFamily(family) {
			return nil, p.errorAt(offset, "unknown token family "+strconv.Quote(family))
		}
		t, ok := token.Lookup(family + "." + name)
		if !ok {
			return nil, p.errorAt(offset+len(family)+1, "unknown "+family+" member "+strconv.Quote(name))
		}
		parts = append(parts, t)
		offset += len(family) + len(name) + 2
	}

	return NewTokens(parts...)
}

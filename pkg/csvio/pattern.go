package csvio

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

const (
	matchNone = iota
	matchQuoted
	matchUnquoted
	matchOpenQuote
)

type fieldMatch struct {
	kind   int
	value  string // captured field text, still escaped for matchQuoted
	length int    // length of the whole match
	sepEnd bool   // field was terminated by the separator, not end of buffer
}

// fieldPattern recognizes one field at the start of the remaining region
// of a row buffer. Three alternatives, tried in order: a quoted field, an
// unquoted field, and the opening of a quoted field whose closing
// delimiter is not on the current physical line.
type fieldPattern struct {
	re      *regexp.Regexp
	del     string
	escaped string // doubled delimiter
}

func newFieldPattern(separator, delimiter rune) (*fieldPattern, error) {
	s := regexp.QuoteMeta(string(separator))
	d := regexp.QuoteMeta(string(delimiter))

	expr := fmt.Sprintf(
		`^[ ]*%[2]s((?:[^%[2]s]|%[2]s%[2]s)*)%[2]s[ ]*(%[1]s|$)`+
			`|^([^%[2]s%[1]s][^%[1]s]*|)(%[1]s|$)`+
			`|^(%[2]s(?:[^%[2]s]|%[2]s%[2]s)*)$`,
		s, d)
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	p := new(fieldPattern)
	p.re = re
	p.del = string(delimiter)
	p.escaped = string(delimiter) + string(delimiter)
	return p, nil
}

// match applies the pattern to buf[offset:]. It reports false when no
// alternative matches, which means the remaining region is not valid
// CSV data.
func (p *fieldPattern) match(buf string, offset int) (fieldMatch, bool) {
	m := p.re.FindStringSubmatchIndex(buf[offset:])
	if m == nil {
		return fieldMatch{}, false
	}

	region := buf[offset:]
	switch {
	case m[2] >= 0: // quoted field
		return fieldMatch{
			kind:   matchQuoted,
			value:  region[m[2]:m[3]],
			length: m[1],
			sepEnd: m[5] > m[4],
		}, true
	case m[6] >= 0: // unquoted field
		return fieldMatch{
			kind:   matchUnquoted,
			value:  region[m[6]:m[7]],
			length: m[1],
			sepEnd: m[9] > m[8],
		}, true
	default: // opened quoted field, closing delimiter on a later line
		return fieldMatch{
			kind:   matchOpenQuote,
			value:  region[m[10]:m[11]],
			length: m[1],
		}, true
	}
}

// unescape turns doubled delimiters inside a quoted field back into
// single ones.
func (p *fieldPattern) unescape(s string) string {
	if !strings.Contains(s, p.escaped) {
		return s
	}
	return strings.ReplaceAll(s, p.escaped, p.del)
}

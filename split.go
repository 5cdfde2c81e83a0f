package sie

import (
	"bufio"
	"strings"
	"unicode/utf8"
)

// splitWords splits a record line into its tokens. Quoted tokens may contain
// spaces and escapes, and a {...} group becomes a single token holding the
// group contents. Only quoted tokens are unescaped.
func splitWords(s string) []string {
	sc := bufio.NewScanner(strings.NewReader(s))
	sc.Buffer(nil, len(s)+1)
	sc.Split(scanWords)
	var res []string
	for sc.Scan() {
		tok := sc.Text()
		if strings.HasPrefix(tok, `"`) {
			tok = unescape(tok[1:])
		}
		res = append(res, tok)
	}
	return res
}

// wordAt returns the i:th token, or "" when the line is too short.
func wordAt(words []string, i int) string {
	if i < len(words) {
		return words[i]
	}
	return ""
}

func scanWords(data []byte, atEOF bool) (advance int, token []byte, err error) {
	// Skip leading spaces.
	start := 0
	for width := 0; start < len(data); start += width {
		var r rune
		r, width = utf8.DecodeRune(data[start:])
		if !isSpace(r) {
			break
		}
	}
	if start == len(data) {
		return start, nil, nil
	}
	wordStart := start

	// Check for leading quote or bracket. Quoted tokens keep their opening
	// quote so that splitWords knows to unescape them.
	var closing rune
	tokenStart := start
	switch r, width := utf8.DecodeRune(data[start:]); r {
	case '"':
		closing = '"'
		start += width
	case '{':
		closing = '}'
		start += width
		tokenStart = start
	}

	// Scan until space or the closing rune, marking end of word.
	inEscape := false
	inQuote := false
	for width, i := 0, start; i < len(data); i += width {
		var r rune
		r, width = utf8.DecodeRune(data[i:])
		switch {
		case inEscape:
			inEscape = false
		case closing != 0 && r == '\\':
			inEscape = true
		case closing == '}' && r == '"':
			inQuote = !inQuote
		case closing == 0 && isSpace(r):
			return i + width, data[tokenStart:i], nil
		case closing != 0 && r == closing && !inQuote:
			return i + width, data[tokenStart:i], nil
		}
	}

	// If we're at EOF, we have a final, non-empty, non-terminated word. Return it.
	if atEOF {
		return len(data), data[tokenStart:], nil
	}

	// Request more data.
	return wordStart, nil, nil
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	escaped := false
	for _, r := range s {
		if !escaped && r == '\\' {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t':
		return true
	default:
		return false
	}
}

package oracle

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrMalformedReply marks an oracle reply whose JSON payload could not be
// recovered. Distinct from transport errors: retrying rarely helps, so the
// pipelines record the failure instead.
var ErrMalformedReply = eris.New("oracle: malformed reply")

var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ExtractJSON pulls the first JSON object out of a free-text oracle reply.
// Tries markdown code fences first, then brace matching over the raw text.
func ExtractJSON(text string) (string, bool) {
	for _, m := range fenceRe.FindAllStringSubmatch(text, -1) {
		candidate := strings.TrimSpace(m[1])
		if strings.HasPrefix(candidate, "{") {
			if obj, ok := matchBraces(candidate); ok {
				return obj, true
			}
		}
	}
	return matchBraces(text)
}

// matchBraces returns the substring from the first '{' to its matching '}',
// tracking nesting depth and skipping braces inside string literals.
func matchBraces(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

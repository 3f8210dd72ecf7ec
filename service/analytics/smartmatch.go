package analytics

import (
	"regexp"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// Smart search query language:
//
//	rock | jazz        OR groups
//	rock -live         AND within a group, "-" (or "!") negates
//	"in rainbows"      exact phrase (substring)
//	/radioh.ad/        pattern match, case-insensitive
//
// An invalid pattern degrades to a literal substring match on the raw
// pattern text; a query never fails to evaluate. The empty query
// matches everything.

const patternTimeout = time.Second

// tokenRe captures one token: optional negation, then a quoted phrase,
// a /pattern/ with optional flag letters, or a bare word
var tokenRe = regexp.MustCompile(`([!\-]?)(?:"([^"]*)"|/([^/]*)/([a-z]*)|(\S+))`)

type tokenKind int

const (
	tokenContains tokenKind = iota
	tokenExact
	tokenRegex
)

type matchToken struct {
	kind    tokenKind
	negate  bool
	value   string
	pattern *regexp2.Regexp
}

type matchGroup []matchToken

// ParseQuery compiles a smart search query. An empty slice means
// "match everything".
func ParseQuery(query string) []matchGroup {
	var groups []matchGroup
	for _, part := range strings.Split(query, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		var group matchGroup
		for _, idx := range tokenRe.FindAllStringSubmatchIndex(part, -1) {
			// group n participated in the match iff its start offset is set;
			// an unterminated quote or slash falls through to the bare-word
			// alternative and stays a literal token
			capture := func(n int) (string, bool) {
				if idx[2*n] < 0 {
					return "", false
				}
				return part[idx[2*n]:idx[2*n+1]], true
			}

			neg, _ := capture(1)
			tok := matchToken{negate: neg == "-" || neg == "!"}
			if phrase, ok := capture(2); ok {
				tok.kind = tokenExact
				tok.value = strings.ToLower(phrase)
			} else if raw, ok := capture(3); ok {
				pattern, err := regexp2.Compile(raw, regexp2.IgnoreCase)
				if err != nil {
					// degrade to a literal match on the raw pattern text
					tok.kind = tokenExact
					tok.value = strings.ToLower(raw)
				} else {
					pattern.MatchTimeout = patternTimeout
					tok.kind = tokenRegex
					tok.pattern = pattern
				}
			} else {
				word, _ := capture(5)
				tok.kind = tokenContains
				tok.value = strings.ToLower(word)
			}
			group = append(group, tok)
		}
		if len(group) > 0 {
			groups = append(groups, group)
		}
	}
	return groups
}

// SmartMatch reports whether the query matches the case-folded
// concatenation of the given fields
func SmartMatch(query string, fields ...string) bool {
	return MatchGroups(ParseQuery(query), fields...)
}

// MatchGroups evaluates a pre-parsed query; use this when matching many
// rows against the same query
func MatchGroups(groups []matchGroup, fields ...string) bool {
	if len(groups) == 0 {
		return true
	}

	text := strings.ToLower(strings.Join(fields, " "))
	for _, group := range groups {
		if group.matches(text) {
			return true
		}
	}
	return false
}

func (g matchGroup) matches(text string) bool {
	for _, tok := range g {
		hit := false
		switch tok.kind {
		case tokenRegex:
			ok, err := tok.pattern.MatchString(text)
			hit = err == nil && ok
		default:
			hit = strings.Contains(text, tok.value)
		}
		if hit == tok.negate {
			return false
		}
	}
	return true
}

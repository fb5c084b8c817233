package data

import (
	"errors"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ExtractObject pulls the first balanced JSON object out of model text,
// tolerating markdown fences and prose around it.
func ExtractObject(ans string) (string, error) {
	s := strings.TrimSpace(ans)
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		s = strings.TrimPrefix(s, "json")
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}

	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", errors.New("no json object in answer")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = inString
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1], nil
				}
			}
		}
	}
	return "", errors.New("unbalanced json object in answer")
}

// SanitizeAnswer extracts the first JSON object and repairs the common model
// damage (trailing commas, single quotes, truncated strings).
func SanitizeAnswer(ans string) (string, error) {
	match, err := ExtractObject(ans)
	if err != nil {
		return "", err
	}
	repaired, err := jsonrepair.JSONRepair(match)
	if err != nil {
		return match, nil
	}
	return repaired, nil
}

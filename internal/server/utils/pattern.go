package utils

import "strings"

const hierarchyDelimiter = "/"

// FilterFolders applies LIST reference and pattern matching to folder display
// names. INBOX matches case-insensitively per RFC 3501.
func FilterFolders(folders []string, reference, pattern string) []string {
	canonical := CanonicalPattern(reference, pattern)

	var matches []string
	for _, folder := range folders {
		if MatchesPattern(folder, canonical) {
			matches = append(matches, folder)
		}
	}
	return matches
}

// CanonicalPattern combines the LIST reference and pattern arguments. A
// pattern starting with the hierarchy delimiter is absolute and ignores the
// reference.
func CanonicalPattern(reference, pattern string) string {
	if strings.HasPrefix(pattern, hierarchyDelimiter) {
		return pattern
	}
	if reference == "" {
		return pattern
	}
	if !strings.HasSuffix(reference, hierarchyDelimiter) {
		return reference + hierarchyDelimiter + pattern
	}
	return reference + pattern
}

// MatchesPattern reports whether a folder name matches an IMAP LIST pattern.
// '*' matches any characters, '%' matches any characters except the hierarchy
// delimiter.
func MatchesPattern(folder, pattern string) bool {
	if strings.EqualFold(folder, "INBOX") {
		folder = "INBOX"
	}
	if strings.EqualFold(pattern, "INBOX") {
		pattern = "INBOX"
	}
	return wildcardMatch(folder, pattern, 0, 0)
}

func wildcardMatch(text, pattern string, textPos, patternPos int) bool {
	for patternPos < len(pattern) {
		switch pattern[patternPos] {
		case '*':
			patternPos++
			if patternPos >= len(pattern) {
				return true
			}
			if wildcardMatch(text, pattern, textPos, patternPos) {
				return true
			}
			for textPos < len(text) {
				textPos++
				if wildcardMatch(text, pattern, textPos, patternPos) {
					return true
				}
			}
			return false

		case '%':
			patternPos++
			if patternPos >= len(pattern) {
				return !strings.Contains(text[textPos:], hierarchyDelimiter)
			}
			if wildcardMatch(text, pattern, textPos, patternPos) {
				return true
			}
			for textPos < len(text) && !strings.HasPrefix(text[textPos:], hierarchyDelimiter) {
				textPos++
				if wildcardMatch(text, pattern, textPos, patternPos) {
					return true
				}
			}
			return false

		default:
			if textPos >= len(text) || text[textPos] != pattern[patternPos] {
				return false
			}
			textPos++
			patternPos++
		}
	}
	return textPos >= len(text)
}

// ParseQuotedString strips surrounding double quotes from a command argument.
func ParseQuotedString(arg string) string {
	if len(arg) >= 2 && arg[0] == '"' && arg[len(arg)-1] == '"' {
		return arg[1 : len(arg)-1]
	}
	return arg
}

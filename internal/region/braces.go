package region

import "strings"

// CountBraces returns the number of '{' minus the number of '}' in text.
func CountBraces(text string) int {
	return strings.Count(text, "{") - strings.Count(text, "}")
}

// MissingIndentation finds the last '{' of text that has no matching '}'
// and returns the number of spaces that start the line holding it. Spaces
// are only counted when they run up to the beginning of that line.
func MissingIndentation(text string) int {
	closed := 0
	i := len(text) - 1
	for i >= 0 {
		ch := text[i]
		i--
		if ch == '}' {
			closed++
		}
		if ch == '{' {
			if closed == 0 {
				break
			}
			closed--
		}
	}

	spaces := 0
	for i >= 0 {
		ch := text[i]
		i--
		if ch == ' ' {
			spaces++
			continue
		}
		if ch == '\n' || ch == '\r' {
			break
		}
		spaces = 0
	}
	return spaces
}

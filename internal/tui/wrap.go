package tui

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const tabWidth = 4

// WrapText wraps text to lines of at most maxWidth runes, breaking on
// spaces where it can. Tabs are expanded and every input line yields at
// least one output line.
func WrapText(text string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{}
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\t", strings.Repeat(" ", tabWidth))

	var result []string
	for _, line := range strings.Split(text, "\n") {
		if utf8.RuneCountInString(line) <= maxWidth {
			result = append(result, line)
			continue
		}
		result = append(result, wrapLine(line, maxWidth)...)
	}
	return result
}

// wrapLine wraps a single line that is too long. Words longer than
// maxWidth are split.
func wrapLine(line string, maxWidth int) []string {
	var result []string
	var current []rune

	for _, word := range strings.FieldsFunc(line, unicode.IsSpace) {
		runes := []rune(word)

		for len(runes) > maxWidth {
			if len(current) > 0 {
				result = append(result, string(current))
				current = nil
			}
			result = append(result, string(runes[:maxWidth]))
			runes = runes[maxWidth:]
		}
		if len(runes) == 0 {
			continue
		}

		switch {
		case len(current) == 0:
			current = runes
		case len(current)+1+len(runes) <= maxWidth:
			current = append(append(current, ' '), runes...)
		default:
			result = append(result, string(current))
			current = runes
		}
	}

	if len(current) > 0 || len(result) == 0 {
		result = append(result, string(current))
	}
	return result
}

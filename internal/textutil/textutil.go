// Package textutil holds small text helpers shared by the post-processors.
package textutil

import "unicode/utf8"

// Truncate returns the first n characters (runes) of text. n <= 0 means no
// limit.
func Truncate(text string, n int) string {
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	i := 0
	for pos := range text {
		if i == n {
			return text[:pos]
		}
		i++
	}
	return text
}

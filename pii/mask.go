package pii

import "strings"

// Mask returns value with only the first and last visible characters shown,
// for logs and UI previews of otherwise-sensitive values. It is a display
// helper, not a security boundary.
func Mask(value string, visible int) string {
	if visible < 0 {
		visible = 0
	}

	runes := []rune(value)
	if len(runes) <= visible*2 {
		return strings.Repeat("*", len(runes))
	}

	var b strings.Builder
	b.Grow(len(runes))
	b.WriteString(string(runes[:visible]))
	b.WriteString(strings.Repeat("*", len(runes)-visible*2))
	b.WriteString(string(runes[len(runes)-visible:]))
	return b.String()
}

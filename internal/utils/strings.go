package utils

import (
	"strings"
)

// NormalizeSpace collapses repeated whitespace into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// JoinBold renders items as "**A**, **B**".
func JoinBold(items []string) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = "**" + it + "**"
	}
	return strings.Join(parts, ", ")
}

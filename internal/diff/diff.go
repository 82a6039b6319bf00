// Package diff renders unified diffs between an original and a formatted
// file.
package diff

import (
	"strings"

	udiff "github.com/aymanbagabas/go-udiff"
)

// Unified returns a unified diff of oldText and newText, or "" when they are
// equal. Names label the two sides in the header. Line endings are compared
// without carriage returns.
func Unified(oldName, newName, oldText, newText string) string {
	oldText = strings.ReplaceAll(oldText, "\r\n", "\n")
	newText = strings.ReplaceAll(newText, "\r\n", "\n")
	if oldText == newText {
		return ""
	}
	return udiff.Unified(oldName, newName, oldText, newText)
}

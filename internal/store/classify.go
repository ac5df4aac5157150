package store

import (
	"regexp"
	"strings"
)

var (
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineCommentRe  = regexp.MustCompile(`(?m)--[^\n]*`)
	readOnlyRe     = regexp.MustCompile(`(?i)^(with|select|pragma|explain)\b`)
)

// IsReadOnlyStatement classifies sqlText lexically: comments are stripped,
// leading whitespace, parentheses and semicolons are trimmed, and the first
// keyword decides. Anything unrecognized counts as mutating, so a
// misclassification can only cause a redundant save, never a lost one.
func IsReadOnlyStatement(sqlText string) bool {
	text := blockCommentRe.ReplaceAllString(sqlText, " ")
	text = lineCommentRe.ReplaceAllString(text, " ")
	text = strings.TrimLeft(text, " \t\r\n\v\f();")
	return readOnlyRe.MatchString(text)
}

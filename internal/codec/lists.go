package codec

import "strings"

// SplitList splits a comma separated input field. Entries are not trimmed and
// empty entries are kept, so "" yields [""] and "a,,b" yields ["a" "" "b"].
func SplitList(text string) []string {
	return strings.Split(text, ",")
}

// JoinList is the inverse of SplitList. Commas inside an element are not
// escaped, so such a list does not survive a split.
func JoinList(items []string) string {
	return strings.Join(items, ",")
}

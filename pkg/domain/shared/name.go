package shared

import "strings"

// NormalizeName trims a catalog name and collapses internal whitespace runs
// into single spaces. Catalog rows are always stored normalized so uniqueness
// constraints compare like with like.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

package database

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE wildcards so s matches literally under ESCAPE '\'.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// ContainsPattern builds a lower-cased "%s%" LIKE pattern for a substring search.
func ContainsPattern(s string) string {
	return "%" + EscapeLike(strings.ToLower(strings.TrimSpace(s))) + "%"
}

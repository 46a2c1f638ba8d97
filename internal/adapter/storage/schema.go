package storage

import "strings"

// splitStatements breaks a schema script on semicolons. The scripts in this
// package contain no semicolons inside literals.
func splitStatements(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			out = append(out, s)
		}
	}
	return out
}

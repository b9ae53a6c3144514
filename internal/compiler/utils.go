package compiler

import "regexp"

var (
	identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	numberRe     = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)
)

func isIdentifier(s string) bool {
	return identifierRe.MatchString(s)
}

func looksNumeric(s string) bool {
	return numberRe.MatchString(s)
}

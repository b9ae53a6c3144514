package source

import "strings"

// SplitStatements scans cleaned text once, tracking brace/paren depth and
// string state, and splits it into an ordered list of top-level statement
// strings with outer whitespace trimmed. A ';' only terminates a statement
// at brace_depth == 0 && paren_depth == 0 (so the three ';'-separated
// clauses of a for(;;) header never split). A '}' that closes back to
// brace_depth == 0 also terminates a statement, unless the text
// immediately following it (skipping spaces) is "else" or "catch", in
// which case the chain stays attached so the whole if/else or try/catch
// emits as one statement.
func SplitStatements(cleaned string) []string {
	var stmts []string
	var buf strings.Builder

	braceDepth := 0
	parenDepth := 0
	inString := false

	runes := []rune(cleaned)
	n := len(runes)

	flush := func() {
		s := strings.TrimSpace(buf.String())
		if s != "" {
			stmts = append(stmts, s)
		}
		buf.Reset()
	}

	for i := 0; i < n; i++ {
		c := runes[i]
		buf.WriteRune(c)

		if inString {
			if c == '\\' && i+1 < n {
				i++
				buf.WriteRune(runes[i])
			} else if c == '"' {
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '(':
			parenDepth++
		case ')':
			if parenDepth > 0 {
				parenDepth--
			}
		case '{':
			braceDepth++
		case '}':
			if braceDepth > 0 {
				braceDepth--
			}
			if braceDepth == 0 && parenDepth == 0 {
				if !followedByChain(runes, i+1) {
					flush()
				}
			}
		case ';':
			if braceDepth == 0 && parenDepth == 0 {
				flush()
			}
		}
	}
	flush()
	return stmts
}

// followedByChain reports whether, skipping spaces starting at pos, the
// remaining text begins with the keyword "else" or "catch".
func followedByChain(runes []rune, pos int) bool {
	n := len(runes)
	for pos < n && runes[pos] == ' ' {
		pos++
	}
	rest := string(runes[pos:])
	return startsWithWord(rest, "else") || startsWithWord(rest, "catch")
}

func startsWithWord(s, word string) bool {
	if !strings.HasPrefix(s, word) {
		return false
	}
	if len(s) == len(word) {
		return true
	}
	next := s[len(word)]
	return !(next == '_' || (next >= 'a' && next <= 'z') || (next >= 'A' && next <= 'Z') || (next >= '0' && next <= '9'))
}

// ExtractBalancedArg returns the substring between the outermost parens of
// "name(...)" when the closing paren is the very last non-space character
// of expr. Reports ok=false if expr does not have that shape.
func ExtractBalancedArg(expr, name string) (string, bool) {
	expr = strings.TrimSpace(expr)
	prefix := name + "("
	if !strings.HasPrefix(expr, prefix) || !strings.HasSuffix(expr, ")") {
		return "", false
	}
	inner := expr[len(prefix) : len(expr)-1]
	// Confirm the parens are actually balanced/outermost by re-scanning.
	depth := 0
	inString := false
	runes := []rune(expr[len(name):])
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if inString {
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i != len(runes)-1 {
				return "", false
			}
		}
	}
	return inner, true
}

// ExtractBracedBlock returns the body between the balanced '{' '}' pair
// starting at pos (which must index a '{'), plus the index just past the
// closing '}'.
func ExtractBracedBlock(text string, pos int) (string, int, bool) {
	runes := []rune(text)
	if pos >= len(runes) || runes[pos] != '{' {
		return "", pos, false
	}
	depth := 0
	inString := false
	start := pos
	for i := pos; i < len(runes); i++ {
		c := runes[i]
		if inString {
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return string(runes[start+1 : i]), i + 1, true
			}
		}
	}
	return "", pos, false
}

// ExtractParenGroup returns the substring between the balanced '(' ')'
// pair starting at pos (which must index a '('), plus the index just past
// the closing ')'. Used to pull the condition/header out of if/while/for/
// switch/catch without a full expression parser.
func ExtractParenGroup(text string, pos int) (string, int, bool) {
	runes := []rune(text)
	if pos >= len(runes) || runes[pos] != '(' {
		return "", pos, false
	}
	depth := 0
	inString := false
	start := pos
	for i := pos; i < len(runes); i++ {
		c := runes[i]
		if inString {
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return string(runes[start+1 : i]), i + 1, true
			}
		}
	}
	return "", pos, false
}

// SplitArgs splits a comma-separated argument list respecting nested
// parens, braces, brackets and strings.
func SplitArgs(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var args []string
	var buf strings.Builder
	depth := 0
	inString := false
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if inString {
			buf.WriteRune(c)
			if c == '\\' && i+1 < len(runes) {
				i++
				buf.WriteRune(runes[i])
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
			buf.WriteRune(c)
		case '(', '{', '[':
			depth++
			buf.WriteRune(c)
		case ')', '}', ']':
			depth--
			buf.WriteRune(c)
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(buf.String()))
				buf.Reset()
				continue
			}
			buf.WriteRune(c)
		default:
			buf.WriteRune(c)
		}
	}
	if strings.TrimSpace(buf.String()) != "" {
		args = append(args, strings.TrimSpace(buf.String()))
	}
	return args
}

// SplitTopLevel splits s on every top-level (paren/brace/bracket depth 0,
// outside a string) occurrence of sep. Used for the for(;;) header's three
// clauses.
func SplitTopLevel(s string, sep rune) []string {
	var parts []string
	var buf strings.Builder
	depth := 0
	inString := false
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if inString {
			buf.WriteRune(c)
			if c == '\\' && i+1 < len(runes) {
				i++
				buf.WriteRune(runes[i])
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
			buf.WriteRune(c)
		case '(', '{', '[':
			depth++
			buf.WriteRune(c)
		case ')', '}', ']':
			depth--
			buf.WriteRune(c)
		default:
			if c == sep && depth == 0 {
				parts = append(parts, strings.TrimSpace(buf.String()))
				buf.Reset()
				continue
			}
			buf.WriteRune(c)
		}
	}
	parts = append(parts, strings.TrimSpace(buf.String()))
	return parts
}

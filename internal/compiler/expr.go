package compiler

import (
	"strconv"
	"strings"

	"ascension/internal/bytecode"
	aerr "ascension/internal/errors"
	"ascension/internal/source"
)

// emitExpr compiles expr right to left: at each precedence tier, lowest
// first, it looks for the rightmost depth-0 occurrence of that tier's
// operator(s) and splits there, which yields left-associative parses
// without a conventional operator-precedence parser. Tiers, lowest to
// highest: ||, &&, unary !, the relational/equality group, + -, * / %.
func (c *Compiler) emitExpr(expr string) error {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return aerr.New(aerr.RuntimeError, "empty expression")
	}
	expr = stripOuterParens(expr)

	runes := []rune(expr)
	if len(runes) == 0 {
		return aerr.New(aerr.RuntimeError, "empty expression")
	}
	depth, inStr := analyzeDepth(runes)

	if pos, ok := rfindToken(runes, depth, inStr, "||", 1); ok {
		return c.emitSplit(runes, pos, 2, bytecode.OpOr)
	}
	if pos, ok := rfindToken(runes, depth, inStr, "&&", 1); ok {
		return c.emitSplit(runes, pos, 2, bytecode.OpAnd)
	}
	if runes[0] == '!' && !inStr[0] {
		if err := c.emitExpr(string(runes[1:])); err != nil {
			return err
		}
		c.Prog.Emit(bytecode.OpNot)
		return nil
	}
	if pos, tokLen, op, ok := rfindRelational(runes, depth, inStr); ok {
		return c.emitSplit(runes, pos, tokLen, op)
	}
	if pos, op, ok := rfindAdditive(runes, depth, inStr); ok {
		return c.emitSplit(runes, pos, 1, op)
	}
	if pos, op, ok := rfindMultiplicative(runes, depth, inStr); ok {
		return c.emitSplit(runes, pos, 1, op)
	}

	return c.emitPrimary(expr)
}

func (c *Compiler) emitSplit(runes []rune, pos, tokLen int, op bytecode.OpCode) error {
	left := string(runes[:pos])
	right := string(runes[pos+tokLen:])
	if err := c.emitExpr(left); err != nil {
		return err
	}
	if err := c.emitExpr(right); err != nil {
		return err
	}
	c.Prog.Emit(op)
	return nil
}

// analyzeDepth walks runes once, returning for every index the paren/
// bracket/brace depth *before* that character and whether it lies inside
// a double-quoted string.
func analyzeDepth(runes []rune) ([]int, []bool) {
	depth := make([]int, len(runes))
	inStr := make([]bool, len(runes))
	d := 0
	inS := false
	for i := 0; i < len(runes); i++ {
		depth[i] = d
		inStr[i] = inS
		c := runes[i]
		if inS {
			if c == '\\' && i+1 < len(runes) {
				i++
				depth[i] = d
				inStr[i] = true
			} else if c == '"' {
				inS = false
			}
			continue
		}
		switch c {
		case '"':
			inS = true
		case '(', '[', '{':
			d++
		case ')', ']', '}':
			d--
		}
	}
	return depth, inStr
}

func rfindToken(runes []rune, depth []int, inStr []bool, tok string, minPos int) (int, bool) {
	tl := len(tok)
	for i := len(runes) - tl; i >= minPos; i-- {
		if inStr[i] || depth[i] != 0 {
			continue
		}
		if string(runes[i:i+tl]) == tok {
			return i, true
		}
	}
	return 0, false
}

var rel2 = map[string]bytecode.OpCode{"==": bytecode.OpEq, "!=": bytecode.OpNeq, ">=": bytecode.OpGte, "<=": bytecode.OpLte}
var rel1 = map[rune]bytecode.OpCode{'>': bytecode.OpGt, '<': bytecode.OpLt}

func rfindRelational(runes []rune, depth []int, inStr []bool) (int, int, bytecode.OpCode, bool) {
	n := len(runes)
	for i := n - 1; i >= 1; i-- {
		if inStr[i] || depth[i] != 0 {
			continue
		}
		if i+2 <= n {
			if op, ok := rel2[string(runes[i:i+2])]; ok {
				return i, 2, op, true
			}
		}
		if op, ok := rel1[runes[i]]; ok {
			return i, 1, op, true
		}
	}
	return 0, 0, 0, false
}

func rfindAdditive(runes []rune, depth []int, inStr []bool) (int, bytecode.OpCode, bool) {
	for i := len(runes) - 1; i >= 1; i-- {
		if inStr[i] || depth[i] != 0 {
			continue
		}
		switch runes[i] {
		case '+':
			return i, bytecode.OpAdd, true
		case '-':
			if isBinaryMinusAt(runes, i) {
				return i, bytecode.OpSub, true
			}
		}
	}
	return 0, 0, false
}

// isBinaryMinusAt reports whether the '-' at i is a binary subtraction
// (preceded by something that looks like an operand) rather than a unary
// negation sign.
func isBinaryMinusAt(runes []rune, i int) bool {
	j := i - 1
	for j >= 0 && runes[j] == ' ' {
		j--
	}
	if j < 0 {
		return false
	}
	c := runes[j]
	return c == '_' || c == ')' || c == ']' || c == '"' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func rfindMultiplicative(runes []rune, depth []int, inStr []bool) (int, bytecode.OpCode, bool) {
	for i := len(runes) - 1; i >= 1; i-- {
		if inStr[i] || depth[i] != 0 {
			continue
		}
		switch runes[i] {
		case '*':
			return i, bytecode.OpMul, true
		case '/':
			return i, bytecode.OpDiv, true
		case '%':
			return i, bytecode.OpMod, true
		}
	}
	return 0, 0, false
}

// stripOuterParens removes one enclosing "(...)" pair when it truly wraps
// the whole expression (the parens are each other's match), repeating
// until no further layer can be stripped.
func stripOuterParens(expr string) string {
	for {
		runes := []rune(expr)
		if len(runes) < 2 || runes[0] != '(' || runes[len(runes)-1] != ')' {
			return expr
		}
		depth := 0
		inStr := false
		matches := true
		for i := 0; i < len(runes); i++ {
			c := runes[i]
			if inStr {
				if c == '\\' {
					i++
				} else if c == '"' {
					inStr = false
				}
				continue
			}
			switch c {
			case '"':
				inStr = true
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 && i != len(runes)-1 {
					matches = false
				}
			}
			if !matches {
				break
			}
		}
		if !matches {
			return expr
		}
		expr = strings.TrimSpace(string(runes[1 : len(runes)-1]))
	}
}

// emitPrimary handles every expression form with no operator left to
// split: literals, identifiers, indexing, attribute access, dict
// literals, struct construction and calls.
func (c *Compiler) emitPrimary(expr string) error {
	expr = strings.TrimSpace(expr)

	if strings.HasPrefix(expr, "-") && !looksNumeric(expr) {
		c.Prog.EmitNum(bytecode.OpPush, 0)
		if err := c.emitExpr(expr[1:]); err != nil {
			return err
		}
		c.Prog.Emit(bytecode.OpSub)
		return nil
	}

	if len(expr) >= 2 && expr[0] == '"' && expr[len(expr)-1] == '"' && isWholeStringLiteral(expr) {
		c.Prog.EmitStr(bytecode.OpPushStr, decodeEscapes(expr[1:len(expr)-1]))
		return nil
	}

	if looksNumeric(expr) {
		if strings.Contains(expr, ".") {
			f, _ := strconv.ParseFloat(expr, 64)
			c.Prog.EmitFloat(bytecode.OpPushFloat, f)
		} else {
			n, _ := strconv.ParseInt(expr, 10, 64)
			c.Prog.EmitNum(bytecode.OpPush, n)
		}
		return nil
	}

	switch expr {
	case "true":
		c.Prog.EmitNum(bytecode.OpPush, 1)
		return nil
	case "false":
		c.Prog.EmitNum(bytecode.OpPush, 0)
		return nil
	case "NULL", "null":
		c.Prog.Emit(bytecode.OpPushNull)
		return nil
	}

	if f, ok := builtinConstants[expr]; ok {
		c.Prog.EmitFloat(bytecode.OpPushFloat, f)
		return nil
	}

	if strings.HasPrefix(expr, "{") && strings.HasSuffix(expr, "}") {
		return c.emitDictLiteral(expr[1 : len(expr)-1])
	}

	if strings.HasPrefix(expr, "new ") {
		rest := strings.TrimSpace(expr[len("new "):])
		name, argsInner, ok := splitCallForm(rest)
		if ok {
			_ = argsInner // constructor args don't affect field init, per spec
			c.Prog.EmitStr(bytecode.OpNewStruct, name)
			return nil
		}
	}

	if t, ok := tryParseIndexForm(expr); ok {
		return c.emitLoadTarget(t)
	}

	if dot := strings.LastIndexByte(expr, '.'); dot > 0 && !looksNumeric(expr) && isIdentifier(expr[dot+1:]) {
		base := expr[:dot]
		field := expr[dot+1:]
		if err := c.emitExpr(base); err != nil {
			return err
		}
		c.Prog.EmitStr(bytecode.OpGetAttr, field)
		return nil
	}

	if name, argsInner, ok := splitCallForm(expr); ok {
		args := source.SplitArgs(argsInner)
		if op, isBuiltin := builtinOps[name]; isBuiltin {
			for _, a := range args {
				if err := c.emitExpr(a); err != nil {
					return err
				}
			}
			c.Prog.Emit(op)
			return nil
		}
		for _, a := range args {
			if err := c.emitExpr(a); err != nil {
				return err
			}
		}
		c.Prog.EmitStr(bytecode.OpCall, name)
		return nil
	}

	if isIdentifier(expr) {
		c.Prog.EmitStr(bytecode.OpLoad, expr)
		return nil
	}

	return aerr.New(aerr.RuntimeError, "unrecognised expression: %s", expr)
}

func isWholeStringLiteral(expr string) bool {
	runes := []rune(expr)
	for i := 1; i < len(runes)-1; i++ {
		if runes[i] == '\\' {
			i++
			continue
		}
		if runes[i] == '"' {
			return false
		}
	}
	return true
}

// decodeEscapes expands \n \t \r \" \\ inside a string literal's body
// (quotes already stripped).
func decodeEscapes(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c == '\\' && i+1 < len(runes) {
			switch runes[i+1] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				b.WriteRune(runes[i+1])
			}
			i++
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// splitCallForm recognises "name(args)" where the closing paren is the
// last character of expr.
func splitCallForm(expr string) (string, string, bool) {
	idx := strings.IndexByte(expr, '(')
	if idx <= 0 {
		return "", "", false
	}
	name := expr[:idx]
	if !isIdentifier(name) {
		return "", "", false
	}
	inner, next, ok := source.ExtractParenGroup(expr, idx)
	if !ok || next != len([]rune(expr)) {
		return "", "", false
	}
	return name, inner, true
}

// tryParseIndexForm recognises name[i], name[i,j] and name[i][j].
func tryParseIndexForm(expr string) (lhsTarget, bool) {
	if !strings.HasSuffix(expr, "]") {
		return lhsTarget{}, false
	}
	br := strings.IndexByte(expr, '[')
	if br <= 0 {
		return lhsTarget{}, false
	}
	name := expr[:br]
	if !isIdentifier(name) {
		return lhsTarget{}, false
	}
	inner := expr[br+1 : len(expr)-1]

	if parts := source.SplitTopLevel(inner, ','); len(parts) == 2 {
		return lhsTarget{kind: "idx2d", name: name, idx1: parts[0], idx2: parts[1]}, true
	}

	// name[i][j] double-bracket form: the first index run is balanced
	// before the second '[' opens.
	if second := strings.LastIndexByte(expr[:len(expr)-1], '['); second > br && expr[second-1] == ']' {
		first := expr[br+1 : second-1]
		sec := expr[second+1 : len(expr)-1]
		if strings.Count(first, "[") == strings.Count(first, "]") {
			return lhsTarget{kind: "idx2d", name: name, idx1: first, idx2: sec}, true
		}
	}

	return lhsTarget{kind: "idx", name: name, idx1: inner}, true
}

// emitDictLiteral emits PUSH_DICT then, for each "key": value pair, value
// then key-as-string then DICT_SET.
func (c *Compiler) emitDictLiteral(inner string) error {
	c.Prog.Emit(bytecode.OpPushDict)
	pairs := source.SplitArgs(inner)
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		colon := topLevelColon(pair)
		if colon < 0 {
			return aerr.New(aerr.RuntimeError, "malformed dict entry: %s", pair)
		}
		key := strings.TrimSpace(pair[:colon])
		val := strings.TrimSpace(pair[colon+1:])
		if err := c.emitExpr(val); err != nil {
			return err
		}
		// Bareword keys are re-quoted into strings by the compiler -- a
		// numeric key written in a literal therefore becomes a string key,
		// and lookups by integer index will miss it. Preserved
		// deliberately; see DESIGN.md open question (a).
		keyStr := strings.Trim(key, `"`)
		c.Prog.EmitStr(bytecode.OpPushStr, keyStr)
		c.Prog.Emit(bytecode.OpDictSet)
	}
	return nil
}

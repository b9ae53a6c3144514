package compiler

import (
	"strings"

	"ascension/internal/bytecode"
	aerr "ascension/internal/errors"
	"ascension/internal/source"
)

var compoundOps = map[byte]bytecode.OpCode{
	'+': bytecode.OpAdd,
	'-': bytecode.OpSub,
	'*': bytecode.OpMul,
	'/': bytecode.OpDiv,
	'%': bytecode.OpMod,
}

// findAssignOp scans stmt left to right (outside strings, at paren/bracket
// depth 0) for the first assignment operator: "=" or one of the compound
// forms "+=", "-=", "*=", "/=", "%=". It returns the trimmed LHS text, the
// operator ("=" or "+=" etc.), and the trimmed RHS text.
func findAssignOp(stmt string) (lhs, op, rhs string, ok bool) {
	runes := []rune(stmt)
	depth := 0
	inString := false
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
			continue
		case '(', '{', '[':
			depth++
			continue
		case ')', '}', ']':
			depth--
			continue
		}
		if depth != 0 || c != '=' {
			continue
		}
		// Reject "==" and the second char of ">=", "<=", "!=".
		if i+1 < len(runes) && runes[i+1] == '=' {
			continue
		}
		if i > 0 && strings.ContainsRune("=!<>", runes[i-1]) {
			continue
		}
		if i > 0 && strings.ContainsRune("+-*/%", runes[i-1]) {
			return strings.TrimSpace(string(runes[:i-1])), string(runes[i-1]) + "=", strings.TrimSpace(string(runes[i+1:])), true
		}
		return strings.TrimSpace(string(runes[:i])), "=", strings.TrimSpace(string(runes[i+1:])), true
	}
	return "", "", "", false
}

// lhsTarget describes one of the four addressable forms the spec allows
// on the left of an assignment.
type lhsTarget struct {
	kind  string // "var", "attr", "idx", "idx2d"
	name  string // variable/array/matrix name, or base expr for attr
	field string // attr field name
	idx1  string // index / row expression text
	idx2  string // col expression text (idx2d only)
}

// parseLHS recognises: name | name[i] | name[i,j] | name[i][j] | obj.field
func parseLHS(lhs string) (lhsTarget, error) {
	lhs = strings.TrimSpace(lhs)

	if br := strings.IndexByte(lhs, '['); br >= 0 && strings.HasSuffix(lhs, "]") {
		name := lhs[:br]
		inner := lhs[br+1 : len(lhs)-1]
		if parts := source.SplitTopLevel(inner, ','); len(parts) == 2 {
			return lhsTarget{kind: "idx2d", name: name, idx1: parts[0], idx2: parts[1]}, nil
		}
		// name[i][j] double-bracket form
		if strings.HasSuffix(inner, "") {
			if second := strings.LastIndexByte(lhs[:len(lhs)-1], '['); second > br && lhs[second-1] == ']' {
				first := lhs[br+1 : second-1]
				sec := lhs[second+1 : len(lhs)-1]
				if strings.Count(first, "[") == strings.Count(first, "]") {
					return lhsTarget{kind: "idx2d", name: name, idx1: first, idx2: sec}, nil
				}
			}
		}
		return lhsTarget{kind: "idx", name: name, idx1: inner}, nil
	}

	if dot := strings.LastIndexByte(lhs, '.'); dot >= 0 && !looksNumeric(lhs) {
		return lhsTarget{kind: "attr", name: lhs[:dot], field: lhs[dot+1:]}, nil
	}

	if !isIdentifier(lhs) {
		return lhsTarget{}, aerr.New(aerr.RuntimeError, "invalid assignment target: %s", lhs)
	}
	return lhsTarget{kind: "var", name: lhs}, nil
}

func (c *Compiler) emitLoadTarget(t lhsTarget) error {
	switch t.kind {
	case "var":
		c.Prog.EmitStr(bytecode.OpLoad, t.name)
	case "attr":
		if err := c.emitExpr(t.name); err != nil {
			return err
		}
		c.Prog.EmitStr(bytecode.OpGetAttr, t.field)
	case "idx":
		if err := c.emitExpr(t.idx1); err != nil {
			return err
		}
		c.Prog.EmitStr(bytecode.OpLoadIdx, t.name)
	case "idx2d":
		if err := c.emitExpr(t.idx1); err != nil {
			return err
		}
		if err := c.emitExpr(t.idx2); err != nil {
			return err
		}
		c.Prog.EmitStr(bytecode.OpLoadIdx2D, t.name)
	}
	return nil
}

// emitStoreTarget assumes the value to store is already on top of the
// stack and writes it via the addressing mode t describes.
func (c *Compiler) emitStoreTarget(t lhsTarget) error {
	switch t.kind {
	case "var":
		c.Prog.EmitStr(bytecode.OpStore, t.name)
	case "attr":
		if err := c.emitExpr(t.name); err != nil {
			return err
		}
		c.Prog.EmitStr(bytecode.OpSetAttr, t.field)
	case "idx":
		if err := c.emitExpr(t.idx1); err != nil {
			return err
		}
		c.Prog.EmitStr(bytecode.OpStoreIdx, t.name)
	case "idx2d":
		if err := c.emitExpr(t.idx1); err != nil {
			return err
		}
		if err := c.emitExpr(t.idx2); err != nil {
			return err
		}
		c.Prog.EmitStr(bytecode.OpStoreIdx2D, t.name)
	}
	return nil
}

func (c *Compiler) compileAssign(lhs, op, rhs string) error {
	target, err := parseLHS(lhs)
	if err != nil {
		return err
	}

	if op == "=" {
		if err := c.emitExpr(rhs); err != nil {
			return err
		}
		return c.emitStoreTarget(target)
	}

	binOp, ok := compoundOps[op[0]]
	if !ok {
		return aerr.New(aerr.RuntimeError, "unsupported compound assignment: %s", op)
	}
	if err := c.emitLoadTarget(target); err != nil {
		return err
	}
	if err := c.emitExpr(rhs); err != nil {
		return err
	}
	c.Prog.Emit(binOp)
	return c.emitStoreTarget(target)
}

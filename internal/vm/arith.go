package vm

import (
	"math"

	"ascension/internal/bytecode"
	aerr "ascension/internal/errors"
	"ascension/internal/value"
)

// binaryArith implements ADD/SUB/MUL/DIV/MOD's coercion rule: NULL on
// either side propagates to NULL; for ADD, a string on either side
// concatenates formatted text; otherwise both sides coerce to float, the
// op runs in float, and an integral result collapses back to Int.
func (vm *VM) binaryArith(op bytecode.OpCode, a, b value.Value) (value.Value, error) {
	if a.IsNull() || b.IsNull() {
		return value.Null, nil
	}
	if op == bytecode.OpAdd && (a.Kind == value.KindString || b.Kind == value.KindString) {
		return value.Str(a.Format() + b.Format()), nil
	}

	af, aok := a.AsFloat()
	bf, bok := b.AsFloat()
	if !aok || !bok {
		return value.Null, aerr.New(aerr.TypeError, "arithmetic on non-numeric value").AtIP(vm.ip)
	}

	var r float64
	switch op {
	case bytecode.OpAdd:
		r = af + bf
	case bytecode.OpSub:
		r = af - bf
	case bytecode.OpMul:
		r = af * bf
	case bytecode.OpDiv:
		if bf == 0 {
			return value.Null, aerr.New(aerr.DivisionByZero, "division by zero").AtIP(vm.ip)
		}
		r = af / bf
	case bytecode.OpMod:
		if bf == 0 {
			return value.Null, aerr.New(aerr.DivisionByZero, "modulo by zero").AtIP(vm.ip)
		}
		r = math.Mod(af, bf)
	default:
		return value.Null, aerr.New(aerr.RuntimeError, "unreachable arithmetic opcode").AtIP(vm.ip)
	}
	if r == math.Trunc(r) {
		return value.Int(int64(r)), nil
	}
	return value.Float(r), nil
}

func (vm *VM) comparison(op bytecode.OpCode, a, b value.Value) (value.Value, error) {
	if a.IsNull() || b.IsNull() {
		return value.Null, nil
	}
	af, aok := a.AsFloat()
	bf, bok := b.AsFloat()
	if !aok || !bok {
		return value.Null, aerr.New(aerr.TypeError, "comparison on non-numeric value").AtIP(vm.ip)
	}
	switch op {
	case bytecode.OpGt:
		return value.Bool(af > bf), nil
	case bytecode.OpLt:
		return value.Bool(af < bf), nil
	case bytecode.OpGte:
		return value.Bool(af >= bf), nil
	case bytecode.OpLte:
		return value.Bool(af <= bf), nil
	}
	return value.Null, aerr.New(aerr.RuntimeError, "unreachable comparison opcode").AtIP(vm.ip)
}

func (vm *VM) binOp2(op bytecode.OpCode) error {
	b, err := vm.pop()
	if err != nil {
		return err
	}
	a, err := vm.pop()
	if err != nil {
		return err
	}
	switch op {
	case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod:
		r, err := vm.binaryArith(op, a, b)
		if err != nil {
			return err
		}
		vm.push(r)
	case bytecode.OpGt, bytecode.OpLt, bytecode.OpGte, bytecode.OpLte:
		r, err := vm.comparison(op, a, b)
		if err != nil {
			return err
		}
		vm.push(r)
	case bytecode.OpEq:
		vm.push(value.Bool(value.Equal(a, b)))
	case bytecode.OpNeq:
		vm.push(value.Bool(!value.Equal(a, b)))
	case bytecode.OpAnd:
		vm.push(value.Bool(a.Truthy() && b.Truthy()))
	case bytecode.OpOr:
		vm.push(value.Bool(a.Truthy() || b.Truthy()))
	default:
		return aerr.New(aerr.RuntimeError, "unreachable binary opcode").AtIP(vm.ip)
	}
	return nil
}

func (vm *VM) execNot() error {
	v, err := vm.pop()
	if err != nil {
		return err
	}
	vm.push(value.Bool(!v.Truthy()))
	return nil
}

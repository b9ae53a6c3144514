package vm

import (
	"math"

	"ascension/internal/bytecode"
	aerr "ascension/internal/errors"
	"ascension/internal/value"
)

var unaryMath = map[bytecode.OpCode]func(float64) float64{
	bytecode.OpMathSqrt:  math.Sqrt,
	bytecode.OpMathSin:   math.Sin,
	bytecode.OpMathCos:   math.Cos,
	bytecode.OpMathTan:   math.Tan,
	bytecode.OpMathAsin:  math.Asin,
	bytecode.OpMathAcos:  math.Acos,
	bytecode.OpMathAtan:  math.Atan,
	bytecode.OpMathLog:   math.Log,
	bytecode.OpMathAbs:   math.Abs,
	bytecode.OpMathFloor: math.Floor,
	bytecode.OpMathCeil:  math.Ceil,
	bytecode.OpMathRound: math.Round,
	bytecode.OpMathExp:   math.Exp,
}

func (vm *VM) execUnaryMath(op bytecode.OpCode) error {
	v, err := vm.pop()
	if err != nil {
		return err
	}
	f, ok := v.AsFloat()
	if !ok {
		return aerr.New(aerr.MathError, "math function requires a numeric argument").AtIP(vm.ip)
	}
	fn := unaryMath[op]
	r := fn(f)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return aerr.New(aerr.MathError, "math function produced a non-finite result").AtIP(vm.ip)
	}
	vm.push(value.Float(r))
	return nil
}

func (vm *VM) execPow() error {
	exp, err := vm.pop()
	if err != nil {
		return err
	}
	base, err := vm.pop()
	if err != nil {
		return err
	}
	bf, ok1 := base.AsFloat()
	ef, ok2 := exp.AsFloat()
	if !ok1 || !ok2 {
		return aerr.New(aerr.MathError, "pow() requires numeric arguments").AtIP(vm.ip)
	}
	vm.push(value.Float(math.Pow(bf, ef)))
	return nil
}

func (vm *VM) execAtan2() error {
	x, err := vm.pop()
	if err != nil {
		return err
	}
	y, err := vm.pop()
	if err != nil {
		return err
	}
	yf, ok1 := y.AsFloat()
	xf, ok2 := x.AsFloat()
	if !ok1 || !ok2 {
		return aerr.New(aerr.MathError, "atan2() requires numeric arguments").AtIP(vm.ip)
	}
	vm.push(value.Float(math.Atan2(yf, xf)))
	return nil
}

// execRand implements the 0-argument float form: a value in [0, 1).
func (vm *VM) execRand() error {
	vm.push(value.Float(vm.host.MathRand()))
	return nil
}

// execRandMax implements the 1-argument integer form: a value in [0, max).
func (vm *VM) execRandMax() error {
	v, err := vm.pop()
	if err != nil {
		return err
	}
	maxF, ok := v.AsFloat()
	if !ok || maxF <= 0 {
		return aerr.New(aerr.MathError, "rand_max() requires a positive numeric bound").AtIP(vm.ip)
	}
	vm.push(value.Int(int64(vm.host.MathRand() * maxF)))
	return nil
}

// execRandRange implements the 2-argument integer form: a value in
// [min, max).
func (vm *VM) execRandRange() error {
	maxV, err := vm.pop()
	if err != nil {
		return err
	}
	minV, err := vm.pop()
	if err != nil {
		return err
	}
	minF, ok1 := minV.AsFloat()
	maxF, ok2 := maxV.AsFloat()
	if !ok1 || !ok2 || maxF <= minF {
		return aerr.New(aerr.MathError, "rand_range() requires min < max").AtIP(vm.ip)
	}
	vm.push(value.Int(int64(minF) + int64(vm.host.MathRand()*(maxF-minF))))
	return nil
}

func (vm *VM) execRandSeed() error {
	v, err := vm.pop()
	if err != nil {
		return err
	}
	vm.host.MathSeed(v.I)
	return nil
}

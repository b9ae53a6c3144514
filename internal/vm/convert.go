package vm

import (
	"strconv"
	"strings"

	aerr "ascension/internal/errors"
	"ascension/internal/value"
)

func (vm *VM) execToInt() error {
	v, err := vm.pop()
	if err != nil {
		return err
	}
	switch v.Kind {
	case value.KindInt:
		vm.push(v)
	case value.KindFloat:
		vm.push(value.Int(int64(v.F)))
	case value.KindString:
		// A single rune is chr()'s inverse: to_int(chr(n)) == n must hold
		// even when that rune is itself a digit, so a one-character string
		// always yields its ordinal rather than going through ParseInt.
		if runes := []rune(v.S); len(runes) == 1 {
			vm.push(value.Int(int64(runes[0])))
			return nil
		}
		n, err := strconv.ParseInt(strings.TrimSpace(v.S), 10, 64)
		if err != nil {
			return aerr.New(aerr.ConversionError, "cannot convert %q to int", v.S).AtIP(vm.ip)
		}
		vm.push(value.Int(n))
	default:
		return aerr.New(aerr.ConversionError, "cannot convert NULL/dict to int").AtIP(vm.ip)
	}
	return nil
}

func (vm *VM) execToFloat() error {
	v, err := vm.pop()
	if err != nil {
		return err
	}
	f, ok := v.AsFloat()
	if !ok {
		return aerr.New(aerr.ConversionError, "cannot convert %s to float", v.Format()).AtIP(vm.ip)
	}
	vm.push(value.Float(f))
	return nil
}

func (vm *VM) execLen() error {
	v, err := vm.pop()
	if err != nil {
		return err
	}
	switch v.Kind {
	case value.KindString:
		vm.push(value.Int(int64(len([]rune(v.S)))))
	case value.KindDict:
		vm.push(value.Int(int64(v.D.Len())))
	default:
		return aerr.New(aerr.TypeError, "len() on %s", v.Format()).AtIP(vm.ip)
	}
	return nil
}

func (vm *VM) execKeys() error {
	v, err := vm.pop()
	if err != nil {
		return err
	}
	if v.Kind != value.KindDict {
		return aerr.New(aerr.TypeError, "keys() on non-dict value").AtIP(vm.ip)
	}
	vm.push(value.FromDict(v.D.Keys()))
	return nil
}

func (vm *VM) execChr() error {
	v, err := vm.pop()
	if err != nil {
		return err
	}
	n, ok := v.AsFloat()
	if !ok {
		return aerr.New(aerr.ConversionError, "chr() requires a numeric argument").AtIP(vm.ip)
	}
	vm.push(value.Str(string(rune(int64(n)))))
	return nil
}

// execSubstr implements substr(s, start, length), args pushed left to
// right so popped here as length, start, s.
func (vm *VM) execSubstr() error {
	length, err := vm.pop()
	if err != nil {
		return err
	}
	start, err := vm.pop()
	if err != nil {
		return err
	}
	s, err := vm.pop()
	if err != nil {
		return err
	}
	if s.Kind != value.KindString {
		return aerr.New(aerr.TypeError, "substr() requires a string argument").AtIP(vm.ip)
	}
	runes := []rune(s.S)
	st := int(start.I)
	ln := int(length.I)
	if st < 0 {
		st = 0
	}
	if st > len(runes) {
		st = len(runes)
	}
	end := st + ln
	if end > len(runes) || ln < 0 {
		end = len(runes)
	}
	vm.push(value.Str(string(runes[st:end])))
	return nil
}

// Package vm executes a compiled Program: a flat instruction vector, a
// value stack, a global environment, a stack of call frames for local
// variables, and a stack of try frames for catch-handler unwinding.
package vm

import (
	"ascension/internal/bytecode"
	aerr "ascension/internal/errors"
	"ascension/internal/host"
	"ascension/internal/value"
)

// VM is single-use: construct one per program run with New, then call Run
// once.
type VM struct {
	prog    *bytecode.Program
	structs map[string][]string
	host    host.Services

	ip      int
	stack   []value.Value
	globals map[string]value.Value
	frames  []*CallFrame
	tryer   []TryFrame

	out Printer
}

// Printer receives PRINT output; the default writes to stdout, tests can
// substitute a buffer.
type Printer interface {
	Print(s string)
}

// New builds a VM ready to execute prog. structs is the field table the
// compiler recorded for every struct type, used by NEW_STRUCT.
func New(prog *bytecode.Program, structs map[string][]string, services host.Services, out Printer) *VM {
	return &VM{
		prog:    prog,
		structs: structs,
		host:    services,
		globals: make(map[string]value.Value),
		out:     out,
	}
}

// isZeroOrNull is JZ/JNZ's narrower falsiness test: unlike AND/OR's
// Truthy (which also treats the empty string as false), a conditional
// jump only treats NULL and numeric zero as false.
func isZeroOrNull(v value.Value) bool {
	switch v.Kind {
	case value.KindNull:
		return true
	case value.KindInt:
		return v.I == 0
	case value.KindFloat:
		return v.F == 0
	}
	return false
}

func (vm *VM) push(v value.Value) { vm.stack = append(vm.stack, v) }

func (vm *VM) pop() (value.Value, error) {
	if len(vm.stack) == 0 {
		return value.Null, aerr.New(aerr.RuntimeError, "stack underflow").AtIP(vm.ip)
	}
	n := len(vm.stack) - 1
	v := vm.stack[n]
	vm.stack = vm.stack[:n]
	return v, nil
}

func (vm *VM) peek() (value.Value, error) {
	if len(vm.stack) == 0 {
		return value.Null, aerr.New(aerr.RuntimeError, "stack underflow").AtIP(vm.ip)
	}
	return vm.stack[len(vm.stack)-1], nil
}

func (vm *VM) currentFrame() *CallFrame {
	if len(vm.frames) == 0 {
		return nil
	}
	return vm.frames[len(vm.frames)-1]
}

// load implements LOAD: a name resolves against the current call frame's
// locals first, falling back to the global environment, so a function
// body can read a global without the "global" keyword. An undefined name
// yields integer 0, not NULL, so it behaves in arithmetic contexts.
func (vm *VM) load(name string) value.Value {
	if f := vm.currentFrame(); f != nil {
		if v, ok := f.locals[name]; ok {
			return v
		}
	}
	if v, ok := vm.globals[name]; ok {
		return v
	}
	return value.Int(0)
}

// store implements STORE: the top frame if it already binds the name, the
// global environment if the name is bound there and not locally,
// otherwise a fresh binding in the top frame. At the implicit top-level
// (no frame), stores always go to global.
func (vm *VM) store(name string, v value.Value) {
	f := vm.currentFrame()
	if f == nil {
		vm.globals[name] = v
		return
	}
	if _, ok := f.locals[name]; ok {
		f.locals[name] = v
		return
	}
	if _, ok := vm.globals[name]; ok {
		vm.globals[name] = v
		return
	}
	f.locals[name] = v
}

func (vm *VM) storeGlobal(name string, v value.Value) {
	vm.globals[name] = v
}

// Run executes the program from instruction 0 to completion, returning
// the error an uncaught THROW or a runtime fault produced, if any.
func (vm *VM) Run() error {
	for vm.ip < len(vm.prog.Code) {
		instr := vm.prog.Code[vm.ip]
		if err := vm.step(instr); err != nil {
			ae, ok := err.(*aerr.AscensionError)
			if !ok || len(vm.tryer) == 0 {
				return err
			}
			if thrownErr := vm.throw(value.Str(ae.Error())); thrownErr != nil {
				return thrownErr
			}
		}
		vm.ip++
	}
	return nil
}

func (vm *VM) jump(label string) error {
	target, ok := vm.prog.Labels[label]
	if !ok {
		return aerr.New(aerr.LinkerError, "unresolved label %q", label).AtIP(vm.ip)
	}
	vm.ip = target
	return nil
}

func (vm *VM) step(instr bytecode.Instruction) error {
	switch instr.Op {
	case bytecode.OpLabel:
		return nil

	case bytecode.OpPush:
		vm.push(value.Int(instr.Num))
	case bytecode.OpPushFloat:
		vm.push(value.Float(instr.Flt))
	case bytecode.OpPushStr:
		vm.push(value.Str(instr.Str))
	case bytecode.OpPushNull:
		vm.push(value.Null)
	case bytecode.OpPop:
		_, err := vm.pop()
		return err
	case bytecode.OpDup:
		v, err := vm.peek()
		if err != nil {
			return err
		}
		vm.push(v)

	case bytecode.OpPushDict:
		vm.push(value.FromDict(value.NewDict()))
	case bytecode.OpDictSet:
		key, err := vm.pop()
		if err != nil {
			return err
		}
		val, err := vm.pop()
		if err != nil {
			return err
		}
		d, err := vm.pop()
		if err != nil {
			return err
		}
		if d.Kind != value.KindDict {
			return aerr.New(aerr.TypeError, "DICT_SET target is not a dict").AtIP(vm.ip)
		}
		d.D.Set(value.KeyOf(key), val)
		vm.push(d)

	case bytecode.OpLoad:
		vm.push(vm.load(instr.Str))
	case bytecode.OpStore:
		v, err := vm.pop()
		if err != nil {
			return err
		}
		vm.store(instr.Str, v)
	case bytecode.OpLoadGlobal:
		vm.push(vm.globals[instr.Str])
	case bytecode.OpStoreGlobal:
		v, err := vm.pop()
		if err != nil {
			return err
		}
		vm.storeGlobal(instr.Str, v)

	case bytecode.OpNewStruct:
		fields := vm.structs[instr.Str]
		vm.push(value.FromDict(value.NewStruct(instr.Str, fields)))
	case bytecode.OpGetAttr:
		obj, err := vm.pop()
		if err != nil {
			return err
		}
		if obj.Kind != value.KindDict {
			return aerr.New(aerr.TypeError, "GET_ATTR on non-dict value").AtIP(vm.ip)
		}
		if !obj.D.Has(instr.Str) {
			vm.push(value.Int(0))
		} else {
			vm.push(obj.D.Get(instr.Str))
		}
	case bytecode.OpSetAttr:
		obj, err := vm.pop()
		if err != nil {
			return err
		}
		val, err := vm.pop()
		if err != nil {
			return err
		}
		if obj.Kind != value.KindDict {
			return aerr.New(aerr.TypeError, "SET_ATTR on non-dict value").AtIP(vm.ip)
		}
		obj.D.Set(instr.Str, val)

	case bytecode.OpLoadIdx:
		idx, err := vm.pop()
		if err != nil {
			return err
		}
		container := vm.load(instr.Str)
		if container.Kind == value.KindString {
			runes := []rune(container.S)
			i := int(idx.I)
			if i < 0 || i >= len(runes) {
				vm.push(value.Str(""))
			} else {
				vm.push(value.Str(string(runes[i])))
			}
			break
		}
		if container.Kind != value.KindDict {
			return aerr.New(aerr.TypeError, "indexing a non-container value").AtIP(vm.ip)
		}
		vm.push(container.D.Get(value.KeyOf(idx)))
	case bytecode.OpStoreIdx:
		idx, err := vm.pop()
		if err != nil {
			return err
		}
		val, err := vm.pop()
		if err != nil {
			return err
		}
		container := vm.load(instr.Str)
		if container.Kind != value.KindDict {
			nd := value.NewDict()
			container = value.FromDict(nd)
			vm.store(instr.Str, container)
		}
		container.D.Set(value.KeyOf(idx), val)

	case bytecode.OpLoadIdx2D:
		col, err := vm.pop()
		if err != nil {
			return err
		}
		row, err := vm.pop()
		if err != nil {
			return err
		}
		container := vm.load(instr.Str)
		if container.Kind != value.KindDict {
			return aerr.New(aerr.TypeError, "2-D indexing a non-matrix value").AtIP(vm.ip)
		}
		vm.push(container.D.MatrixGet(row.I, col.I))
	case bytecode.OpStoreIdx2D:
		col, err := vm.pop()
		if err != nil {
			return err
		}
		row, err := vm.pop()
		if err != nil {
			return err
		}
		val, err := vm.pop()
		if err != nil {
			return err
		}
		container := vm.load(instr.Str)
		if container.Kind != value.KindDict {
			container = value.FromDict(value.NewMatrix(0, 0, value.Null))
			vm.store(instr.Str, container)
		}
		container.D.MatrixSet(row.I, col.I, val)

	case bytecode.OpCreateMatrix:
		fill, err := vm.pop()
		if err != nil {
			return err
		}
		cols, err := vm.pop()
		if err != nil {
			return err
		}
		rows, err := vm.pop()
		if err != nil {
			return err
		}
		vm.push(value.FromDict(value.NewMatrix(rows.I, cols.I, fill)))
	case bytecode.OpMatrixRows:
		d, err := vm.pop()
		if err != nil {
			return err
		}
		vm.push(value.Int(d.D.MatrixRows()))
	case bytecode.OpMatrixCols:
		d, err := vm.pop()
		if err != nil {
			return err
		}
		vm.push(value.Int(d.D.MatrixCols()))
	case bytecode.OpMatrixDim:
		d, err := vm.pop()
		if err != nil {
			return err
		}
		rows, cols := d.D.MatrixRows(), d.D.MatrixCols()
		pair := value.NewDict()
		pair.Set(int64(0), value.Int(rows))
		pair.Set(int64(1), value.Int(cols))
		vm.push(value.FromDict(pair))

	case bytecode.OpJmp:
		return vm.jump(instr.Str)
	case bytecode.OpJz:
		v, err := vm.pop()
		if err != nil {
			return err
		}
		if isZeroOrNull(v) {
			return vm.jump(instr.Str)
		}
	case bytecode.OpJnz:
		v, err := vm.pop()
		if err != nil {
			return err
		}
		if !isZeroOrNull(v) {
			return vm.jump(instr.Str)
		}

	case bytecode.OpCall:
		return vm.call(instr.Str)
	case bytecode.OpRet:
		vm.push(value.Null)
		return vm.ret()
	case bytecode.OpRetVal:
		return vm.ret()

	case bytecode.OpTryStart:
		target, ok := vm.prog.Labels[instr.Str]
		if !ok {
			return aerr.New(aerr.LinkerError, "unresolved catch label %q", instr.Str).AtIP(vm.ip)
		}
		vm.tryer = append(vm.tryer, TryFrame{catchIP: target, stackDepth: len(vm.stack), frameDepth: len(vm.frames)})
	case bytecode.OpTryEnd:
		if len(vm.tryer) > 0 {
			vm.tryer = vm.tryer[:len(vm.tryer)-1]
		}
		return vm.jump(instr.Str)
	case bytecode.OpThrow:
		v, err := vm.pop()
		if err != nil {
			return err
		}
		return vm.throw(v)

	case bytecode.OpPrint:
		return vm.execPrint(int(instr.Num))
	case bytecode.OpRead:
		return vm.execRead()

	default:
		return vm.stepExt(instr)
	}
	return nil
}

// call pushes a new frame and jumps to the function's label. Arguments
// were already pushed left to right by the caller; the function's
// prologue pops them into its own locals via STORE.
func (vm *VM) call(name string) error {
	target, ok := vm.prog.Labels[name]
	if !ok {
		return aerr.New(aerr.LinkerError, "call to unresolved function %q", name).AtIP(vm.ip)
	}
	vm.frames = append(vm.frames, &CallFrame{locals: make(map[string]value.Value), returnIP: vm.ip})
	vm.ip = target
	return nil
}

// ret pops the current frame and resumes at its return IP, leaving the
// return value (already on top of stack) in place for the caller.
func (vm *VM) ret() error {
	if len(vm.frames) == 0 {
		vm.ip = len(vm.prog.Code)
		return nil
	}
	n := len(vm.frames) - 1
	frame := vm.frames[n]
	vm.frames = vm.frames[:n]
	vm.ip = frame.returnIP
	return nil
}

// throw implements THROW's unwind: truncate the value stack and call
// stack back to the nearest enclosing try's recorded depths, push the
// thrown value for the catch clause to consume, and jump to its handler.
// With no active try frame the throw propagates as a runtime error.
func (vm *VM) throw(v value.Value) error {
	if len(vm.tryer) == 0 {
		return aerr.New(aerr.RuntimeError, "uncaught throw: %s", v.Format()).AtIP(vm.ip)
	}
	n := len(vm.tryer) - 1
	handler := vm.tryer[n]
	vm.tryer = vm.tryer[:n]

	if handler.stackDepth > len(vm.stack) {
		handler.stackDepth = len(vm.stack)
	}
	vm.stack = vm.stack[:handler.stackDepth]
	if handler.frameDepth > len(vm.frames) {
		handler.frameDepth = len(vm.frames)
	}
	vm.frames = vm.frames[:handler.frameDepth]

	vm.push(v)
	vm.ip = handler.catchIP
	return nil
}

func (vm *VM) execPrint(argc int) error {
	args := make([]value.Value, argc)
	for i := argc - 1; i >= 0; i-- {
		v, err := vm.pop()
		if err != nil {
			return err
		}
		args[i] = v
	}
	s := ""
	for i, a := range args {
		if i > 0 {
			s += " "
		}
		s += a.Format()
	}
	vm.out.Print(s + "\n")
	return nil
}

// execRead implements READ (backing both read() and read_line()). The
// trailing newline is intentionally left in place, matching the
// original's read_line rather than trimming it -- see DESIGN.md open
// question on read_line's exact behaviour.
func (vm *VM) execRead() error {
	buf := make([]byte, 4096)
	n, err := vm.host.Stdin().Read(buf)
	if err != nil && n == 0 {
		vm.push(value.Null)
		return nil
	}
	vm.push(value.Str(string(buf[:n])))
	return nil
}

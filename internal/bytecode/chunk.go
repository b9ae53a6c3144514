package bytecode

import "ascension/internal/value"

// Instruction is a single opcode plus at most one immediate. At most one
// of Str/Num/Flt is meaningful, selected by Op:
//   - Str:  variable/field/function/label name (LOAD, STORE, CALL, JMP, ...),
//           or the decoded string literal of PUSH_STR (escapes already
//           expanded by the compiler)
//   - Num:  integer immediate (PUSH int, PRINT arg count, ...)
//   - Flt:  float immediate (PUSH_FLOAT)
type Instruction struct {
	Op  OpCode
	Str string
	Num int64
	Flt float64
}

// Program is the compiler's sole output alongside the struct field table:
// an ordered opcode vector plus, once resolved, a label name -> index map.
type Program struct {
	Code   []Instruction
	Labels map[string]int
}

func NewProgram() *Program {
	return &Program{Labels: make(map[string]int)}
}

func (p *Program) Emit(op OpCode) int {
	p.Code = append(p.Code, Instruction{Op: op})
	return len(p.Code) - 1
}

func (p *Program) EmitStr(op OpCode, s string) int {
	p.Code = append(p.Code, Instruction{Op: op, Str: s})
	return len(p.Code) - 1
}

func (p *Program) EmitNum(op OpCode, n int64) int {
	p.Code = append(p.Code, Instruction{Op: op, Num: n})
	return len(p.Code) - 1
}

func (p *Program) EmitFloat(op OpCode, f float64) int {
	p.Code = append(p.Code, Instruction{Op: op, Flt: f})
	return len(p.Code) - 1
}

// ResolveLabels scans the emitted code once and maps every LABEL name to
// its index in Code, the "load time" label-resolution step the spec calls
// for. Must run after pass 2 finishes emitting.
func (p *Program) ResolveLabels() {
	p.Labels = make(map[string]int, len(p.Code)/4)
	for i, instr := range p.Code {
		if instr.Op == OpLabel {
			p.Labels[instr.Str] = i
		}
	}
}

// Disassemble renders the program for `-debug`, one instruction per line.
func (p *Program) Disassemble() []string {
	lines := make([]string, 0, len(p.Code))
	for i, instr := range p.Code {
		line := instr.Op.String()
		switch instr.Op {
		case OpPush, OpPrint:
			line += " " + itoa(instr.Num)
		case OpPushFloat:
			line += " " + ftoa(instr.Flt)
		case OpPushStr:
			line += " " + quote(instr.Str)
		default:
			if instr.Str != "" {
				line += " " + instr.Str
			}
		}
		lines = append(lines, itoa(int64(i))+": "+line)
	}
	return lines
}

func itoa(n int64) string {
	return value.Int(n).Format()
}

func ftoa(f float64) string {
	return value.Float(f).Format()
}

func quote(s string) string {
	return "\"" + s + "\""
}

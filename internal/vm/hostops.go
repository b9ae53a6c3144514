package vm

import (
	"ascension/internal/bytecode"
	aerr "ascension/internal/errors"
	"ascension/internal/value"
)

// pushOrNull turns a host-service call's (value, error) pair into the
// stack push: on success the value, on failure NULL. Host-service
// failures are reported to scripts as a sentinel, never as a language
// exception -- throw/try exists for script-level errors, not I/O faults.
func (vm *VM) pushOrNull(v value.Value, err error) {
	if err != nil {
		vm.push(value.Null)
		return
	}
	vm.push(v)
}

func (vm *VM) popStr() (string, error) {
	v, err := vm.pop()
	if err != nil {
		return "", err
	}
	return v.Format(), nil
}

func (vm *VM) popInt() (int64, error) {
	v, err := vm.pop()
	if err != nil {
		return 0, err
	}
	return v.I, nil
}

func (vm *VM) execFileOpen() error {
	mode, err := vm.popStr()
	if err != nil {
		return err
	}
	path, err := vm.popStr()
	if err != nil {
		return err
	}
	h, hErr := vm.host.FileOpen(path, mode)
	vm.pushOrNull(value.Int(h), hErr)
	return nil
}

func (vm *VM) execFileRead() error {
	h, err := vm.popInt()
	if err != nil {
		return err
	}
	data, hErr := vm.host.FileRead(h)
	vm.pushOrNull(value.Str(data), hErr)
	return nil
}

func (vm *VM) execFileWrite() error {
	data, err := vm.popStr()
	if err != nil {
		return err
	}
	h, err := vm.popInt()
	if err != nil {
		return err
	}
	n, hErr := vm.host.FileWrite(h, data)
	vm.pushOrNull(value.Int(n), hErr)
	return nil
}

func (vm *VM) execFileClose() error {
	h, err := vm.popInt()
	if err != nil {
		return err
	}
	hErr := vm.host.FileClose(h)
	vm.pushOrNull(value.Bool(hErr == nil), nil)
	return nil
}

func (vm *VM) execFileExists() error {
	path, err := vm.popStr()
	if err != nil {
		return err
	}
	vm.push(value.Bool(vm.host.FileExists(path)))
	return nil
}

func (vm *VM) execHTTPGet() error {
	url, err := vm.popStr()
	if err != nil {
		return err
	}
	status, body, hErr := vm.host.HTTPGet(url)
	if hErr != nil {
		vm.push(value.Null)
		return nil
	}
	d := value.NewDict()
	d.Set("status", value.Int(status))
	d.Set("body", value.Str(body))
	vm.push(value.FromDict(d))
	return nil
}

func (vm *VM) execHTTPPost() error {
	contentType, err := vm.popStr()
	if err != nil {
		return err
	}
	body, err := vm.popStr()
	if err != nil {
		return err
	}
	url, err := vm.popStr()
	if err != nil {
		return err
	}
	status, respBody, hErr := vm.host.HTTPPost(url, body, contentType)
	if hErr != nil {
		vm.push(value.Null)
		return nil
	}
	d := value.NewDict()
	d.Set("status", value.Int(status))
	d.Set("body", value.Str(respBody))
	vm.push(value.FromDict(d))
	return nil
}

func (vm *VM) execSockConnect() error {
	address, err := vm.popStr()
	if err != nil {
		return err
	}
	network, err := vm.popStr()
	if err != nil {
		return err
	}
	h, hErr := vm.host.SockConnect(network, address)
	vm.pushOrNull(value.Int(h), hErr)
	return nil
}

func (vm *VM) execSockSend() error {
	data, err := vm.popStr()
	if err != nil {
		return err
	}
	h, err := vm.popInt()
	if err != nil {
		return err
	}
	n, hErr := vm.host.SockSend(h, data)
	vm.pushOrNull(value.Int(n), hErr)
	return nil
}

func (vm *VM) execSockRecv() error {
	maxBytes, err := vm.popInt()
	if err != nil {
		return err
	}
	h, err := vm.popInt()
	if err != nil {
		return err
	}
	data, hErr := vm.host.SockRecv(h, maxBytes)
	vm.pushOrNull(value.Str(data), hErr)
	return nil
}

func (vm *VM) execSockClose() error {
	h, err := vm.popInt()
	if err != nil {
		return err
	}
	hErr := vm.host.SockClose(h)
	vm.pushOrNull(value.Bool(hErr == nil), nil)
	return nil
}

func (vm *VM) execDNSLookup() error {
	host, err := vm.popStr()
	if err != nil {
		return err
	}
	addr, hErr := vm.host.DNSLookup(host)
	vm.pushOrNull(value.Str(addr), hErr)
	return nil
}

func (vm *VM) execWSDial() error {
	url, err := vm.popStr()
	if err != nil {
		return err
	}
	h, hErr := vm.host.WSDial(url)
	vm.pushOrNull(value.Int(h), hErr)
	return nil
}

func (vm *VM) execWSSend() error {
	data, err := vm.popStr()
	if err != nil {
		return err
	}
	h, err := vm.popInt()
	if err != nil {
		return err
	}
	hErr := vm.host.WSSend(h, data)
	vm.pushOrNull(value.Bool(hErr == nil), nil)
	return nil
}

func (vm *VM) execWSRecv() error {
	h, err := vm.popInt()
	if err != nil {
		return err
	}
	data, hErr := vm.host.WSRecv(h)
	vm.pushOrNull(value.Str(data), hErr)
	return nil
}

func (vm *VM) execWSClose() error {
	h, err := vm.popInt()
	if err != nil {
		return err
	}
	hErr := vm.host.WSClose(h)
	vm.pushOrNull(value.Bool(hErr == nil), nil)
	return nil
}

func (vm *VM) execExecRun() error {
	command, err := vm.popStr()
	if err != nil {
		return err
	}
	stdout, exitCode, hErr := vm.host.ExecRun(command)
	if hErr != nil {
		vm.push(value.Null)
		return nil
	}
	d := value.NewDict()
	d.Set("stdout", value.Str(stdout))
	d.Set("exit_code", value.Int(exitCode))
	vm.push(value.FromDict(d))
	return nil
}

// execSystemRun is system()'s narrower sibling to exec_run(): it reports
// only the exit code, discarding captured output, matching the distinction
// the language has always drawn between "run for effect" and "run for
// output".
func (vm *VM) execSystemRun() error {
	command, err := vm.popStr()
	if err != nil {
		return err
	}
	_, exitCode, hErr := vm.host.ExecRun(command)
	if hErr != nil {
		vm.push(value.Null)
		return nil
	}
	vm.push(value.Int(exitCode))
	return nil
}

func (vm *VM) execTUIInit() error {
	vm.pushOrNull(value.Bool(true), vm.host.TUIInit())
	return nil
}

func (vm *VM) execTUIClear() error {
	vm.pushOrNull(value.Bool(true), vm.host.TUIClear())
	return nil
}

func (vm *VM) execTUIPrintAt() error {
	text, err := vm.popStr()
	if err != nil {
		return err
	}
	col, err := vm.popInt()
	if err != nil {
		return err
	}
	row, err := vm.popInt()
	if err != nil {
		return err
	}
	vm.pushOrNull(value.Bool(true), vm.host.TUIPrintAt(row, col, text))
	return nil
}

func (vm *VM) execTUIRefresh() error {
	vm.pushOrNull(value.Bool(true), vm.host.TUIRefresh())
	return nil
}

func (vm *VM) execTUIEnd() error {
	vm.pushOrNull(value.Bool(true), vm.host.TUIEnd())
	return nil
}

func (vm *VM) execTUIGetKey() error {
	key, hErr := vm.host.TUIGetKey()
	vm.pushOrNull(value.Str(key), hErr)
	return nil
}

func (vm *VM) execGUIWindow() error {
	height, err := vm.popInt()
	if err != nil {
		return err
	}
	width, err := vm.popInt()
	if err != nil {
		return err
	}
	title, err := vm.popStr()
	if err != nil {
		return err
	}
	h, hErr := vm.host.GUIWindow(title, width, height)
	vm.pushOrNull(value.Int(h), hErr)
	return nil
}

func (vm *VM) execGUIWidget() error {
	label, err := vm.popStr()
	if err != nil {
		return err
	}
	kind, err := vm.popStr()
	if err != nil {
		return err
	}
	winID, err := vm.popInt()
	if err != nil {
		return err
	}
	h, hErr := vm.host.GUIWidget(winID, kind, label)
	vm.pushOrNull(value.Int(h), hErr)
	return nil
}

func (vm *VM) execGUIPack() error {
	widgetID, err := vm.popInt()
	if err != nil {
		return err
	}
	winID, err := vm.popInt()
	if err != nil {
		return err
	}
	vm.pushOrNull(value.Bool(true), vm.host.GUIPack(winID, widgetID))
	return nil
}

func (vm *VM) execGUIMainLoop() error {
	winID, err := vm.popInt()
	if err != nil {
		return err
	}
	vm.pushOrNull(value.Bool(true), vm.host.GUIMainLoop(winID))
	return nil
}

func (vm *VM) execDBOpen() error {
	dsn, err := vm.popStr()
	if err != nil {
		return err
	}
	driver, err := vm.popStr()
	if err != nil {
		return err
	}
	h, hErr := vm.host.DBOpen(driver, dsn)
	vm.pushOrNull(value.Int(h), hErr)
	return nil
}

func (vm *VM) execDBQuery() error {
	query, err := vm.popStr()
	if err != nil {
		return err
	}
	h, err := vm.popInt()
	if err != nil {
		return err
	}
	rows, hErr := vm.host.DBQuery(h, query)
	vm.pushOrNull(value.Str(rows), hErr)
	return nil
}

func (vm *VM) execDBExec() error {
	query, err := vm.popStr()
	if err != nil {
		return err
	}
	h, err := vm.popInt()
	if err != nil {
		return err
	}
	affected, hErr := vm.host.DBExec(h, query)
	vm.pushOrNull(value.Int(affected), hErr)
	return nil
}

func (vm *VM) execDBClose() error {
	h, err := vm.popInt()
	if err != nil {
		return err
	}
	hErr := vm.host.DBClose(h)
	vm.pushOrNull(value.Bool(hErr == nil), nil)
	return nil
}

// stepExt handles every opcode not already matched in step: arithmetic,
// comparisons, conversions, math/RNG, and the host-service table. Kept
// separate so the control-flow core in vm.go stays readable.
func (vm *VM) stepExt(instr bytecode.Instruction) error {
	switch instr.Op {
	case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod,
		bytecode.OpGt, bytecode.OpLt, bytecode.OpGte, bytecode.OpLte,
		bytecode.OpEq, bytecode.OpNeq, bytecode.OpAnd, bytecode.OpOr:
		return vm.binOp2(instr.Op)
	case bytecode.OpNot:
		return vm.execNot()

	case bytecode.OpToInt:
		return vm.execToInt()
	case bytecode.OpToFloat:
		return vm.execToFloat()
	case bytecode.OpLen:
		return vm.execLen()
	case bytecode.OpKeys:
		return vm.execKeys()
	case bytecode.OpChr:
		return vm.execChr()
	case bytecode.OpSubstr:
		return vm.execSubstr()

	case bytecode.OpMathSqrt, bytecode.OpMathSin, bytecode.OpMathCos, bytecode.OpMathTan,
		bytecode.OpMathAsin, bytecode.OpMathAcos, bytecode.OpMathAtan, bytecode.OpMathLog,
		bytecode.OpMathAbs, bytecode.OpMathFloor, bytecode.OpMathCeil, bytecode.OpMathRound,
		bytecode.OpMathExp:
		return vm.execUnaryMath(instr.Op)
	case bytecode.OpMathPow:
		return vm.execPow()
	case bytecode.OpMathAtan2:
		return vm.execAtan2()
	case bytecode.OpRand:
		return vm.execRand()
	case bytecode.OpRandMax:
		return vm.execRandMax()
	case bytecode.OpRandRange:
		return vm.execRandRange()
	case bytecode.OpRandSeed:
		return vm.execRandSeed()

	case bytecode.OpFileOpen:
		return vm.execFileOpen()
	case bytecode.OpFileRead:
		return vm.execFileRead()
	case bytecode.OpFileWrite:
		return vm.execFileWrite()
	case bytecode.OpFileClose:
		return vm.execFileClose()
	case bytecode.OpFileExists:
		return vm.execFileExists()

	case bytecode.OpHTTPGet:
		return vm.execHTTPGet()
	case bytecode.OpHTTPPost:
		return vm.execHTTPPost()
	case bytecode.OpSockConnect:
		return vm.execSockConnect()
	case bytecode.OpSockSend:
		return vm.execSockSend()
	case bytecode.OpSockRecv:
		return vm.execSockRecv()
	case bytecode.OpSockClose:
		return vm.execSockClose()
	case bytecode.OpDNSLookup:
		return vm.execDNSLookup()
	case bytecode.OpWSDial:
		return vm.execWSDial()
	case bytecode.OpWSSend:
		return vm.execWSSend()
	case bytecode.OpWSRecv:
		return vm.execWSRecv()
	case bytecode.OpWSClose:
		return vm.execWSClose()

	case bytecode.OpExecRun:
		return vm.execExecRun()
	case bytecode.OpSystemRun:
		return vm.execSystemRun()

	case bytecode.OpTUIInit:
		return vm.execTUIInit()
	case bytecode.OpTUIClear:
		return vm.execTUIClear()
	case bytecode.OpTUIPrintAt:
		return vm.execTUIPrintAt()
	case bytecode.OpTUIRefresh:
		return vm.execTUIRefresh()
	case bytecode.OpTUIEnd:
		return vm.execTUIEnd()
	case bytecode.OpTUIGetKey:
		return vm.execTUIGetKey()

	case bytecode.OpGUIWindow:
		return vm.execGUIWindow()
	case bytecode.OpGUIWidget:
		return vm.execGUIWidget()
	case bytecode.OpGUIPack:
		return vm.execGUIPack()
	case bytecode.OpGUIMainLoop:
		return vm.execGUIMainLoop()

	case bytecode.OpDBOpen:
		return vm.execDBOpen()
	case bytecode.OpDBQuery:
		return vm.execDBQuery()
	case bytecode.OpDBExec:
		return vm.execDBExec()
	case bytecode.OpDBClose:
		return vm.execDBClose()
	}
	return aerr.New(aerr.RuntimeError, "unimplemented opcode %s", instr.Op).AtIP(vm.ip)
}

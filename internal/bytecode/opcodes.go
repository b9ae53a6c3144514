// Package bytecode defines Ascension's flat linear instruction format: an
// ordered vector of opcodes, each carrying at most one immediate (a name,
// an integer, or an inline literal), with jump/call targets resolved to
// indices once at load time via a label table.
package bytecode

type OpCode byte

const (
	// Stack
	OpPush OpCode = iota
	OpPushFloat
	OpPushStr
	OpPushNull
	OpPop
	OpDup
	OpPushDict
	OpDictSet

	// Environment
	OpLoad
	OpStore
	OpLoadGlobal
	OpStoreGlobal

	// Struct / array / matrix
	OpNewStruct
	OpGetAttr
	OpSetAttr
	OpLoadIdx
	OpStoreIdx
	OpLoadIdx2D
	OpStoreIdx2D
	OpCreateMatrix
	OpMatrixRows
	OpMatrixCols
	OpMatrixDim

	// Control flow
	OpLabel
	OpJmp
	OpJz
	OpJnz
	OpCall
	OpRet
	OpRetVal

	// Errors
	OpTryStart
	OpTryEnd
	OpThrow

	// I/O
	OpPrint
	OpRead

	// Conversions
	OpToInt
	OpToFloat
	OpLen
	OpKeys
	OpChr
	OpSubstr

	// Arithmetic / logic
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNeq
	OpGt
	OpLt
	OpGte
	OpLte
	OpAnd
	OpOr
	OpNot

	// Host services: file
	OpFileOpen
	OpFileRead
	OpFileWrite
	OpFileClose
	OpFileExists

	// Host services: networking
	OpHTTPGet
	OpHTTPPost
	OpSockConnect
	OpSockSend
	OpSockRecv
	OpSockClose
	OpDNSLookup
	OpWSDial
	OpWSSend
	OpWSRecv
	OpWSClose

	// Host services: subprocess
	OpExecRun

	// Host services: TUI
	OpTUIInit
	OpTUIClear
	OpTUIPrintAt
	OpTUIRefresh
	OpTUIEnd
	OpTUIGetKey

	// Host services: GUI
	OpGUIWindow
	OpGUIWidget
	OpGUIPack
	OpGUIMainLoop

	// Host services: database
	OpDBOpen
	OpDBQuery
	OpDBExec
	OpDBClose

	// Host services: math / RNG
	OpMathSqrt
	OpMathSin
	OpMathCos
	OpMathTan
	OpMathAsin
	OpMathAcos
	OpMathAtan
	OpMathLog
	OpMathPow
	OpMathAbs
	OpMathFloor
	OpMathCeil
	OpMathRound
	OpMathExp
	OpMathAtan2
	OpRand
	OpRandMax
	OpRandRange
	OpRandSeed

	// Host services: subprocess, exit-code-only form
	OpSystemRun
)

var opNames = map[OpCode]string{
	OpPush: "PUSH", OpPushFloat: "PUSH_FLOAT", OpPushStr: "PUSH_STR", OpPushNull: "PUSH_NULL",
	OpPop: "POP", OpDup: "DUP", OpPushDict: "PUSH_DICT", OpDictSet: "DICT_SET",
	OpLoad: "LOAD", OpStore: "STORE", OpLoadGlobal: "LOAD_GLOBAL", OpStoreGlobal: "STORE_GLOBAL",
	OpNewStruct: "NEW_STRUCT", OpGetAttr: "GET_ATTR", OpSetAttr: "SET_ATTR",
	OpLoadIdx: "LOAD_IDX", OpStoreIdx: "STORE_IDX", OpLoadIdx2D: "LOAD_IDX_2D", OpStoreIdx2D: "STORE_IDX_2D",
	OpCreateMatrix: "CREATE_MATRIX", OpMatrixRows: "MATRIX_ROWS", OpMatrixCols: "MATRIX_COLS", OpMatrixDim: "MATRIX_DIM",
	OpLabel: "LABEL", OpJmp: "JMP", OpJz: "JZ", OpJnz: "JNZ", OpCall: "CALL", OpRet: "RET", OpRetVal: "RET_VAL",
	OpTryStart: "TRY_START", OpTryEnd: "TRY_END", OpThrow: "THROW",
	OpPrint: "PRINT", OpRead: "READ",
	OpToInt: "TO_INT", OpToFloat: "TO_FLOAT", OpLen: "LEN", OpKeys: "KEYS", OpChr: "CHR", OpSubstr: "SUBSTR",
	OpAdd: "ADD", OpSub: "SUB", OpMul: "MUL", OpDiv: "DIV", OpMod: "MOD",
	OpEq: "EQ", OpNeq: "NEQ", OpGt: "GT", OpLt: "LT", OpGte: "GTE", OpLte: "LTE",
	OpAnd: "AND", OpOr: "OR", OpNot: "NOT",
	OpFileOpen: "FILE_OPEN", OpFileRead: "FILE_READ", OpFileWrite: "FILE_WRITE", OpFileClose: "FILE_CLOSE", OpFileExists: "FILE_EXISTS",
	OpHTTPGet: "HTTP_GET", OpHTTPPost: "HTTP_POST",
	OpSockConnect: "SOCK_CONNECT", OpSockSend: "SOCK_SEND", OpSockRecv: "SOCK_RECV", OpSockClose: "SOCK_CLOSE",
	OpDNSLookup: "DNS_LOOKUP",
	OpWSDial: "WS_DIAL", OpWSSend: "WS_SEND", OpWSRecv: "WS_RECV", OpWSClose: "WS_CLOSE",
	OpExecRun: "EXEC_RUN",
	OpTUIInit: "TUI_INIT", OpTUIClear: "TUI_CLEAR", OpTUIPrintAt: "TUI_PRINT_AT", OpTUIRefresh: "TUI_REFRESH", OpTUIEnd: "TUI_END", OpTUIGetKey: "TUI_GETKEY",
	OpGUIWindow: "GUI_WINDOW", OpGUIWidget: "GUI_WIDGET", OpGUIPack: "GUI_PACK", OpGUIMainLoop: "GUI_MAINLOOP",
	OpDBOpen: "DB_OPEN", OpDBQuery: "DB_QUERY", OpDBExec: "DB_EXEC", OpDBClose: "DB_CLOSE",
	OpMathSqrt: "MATH_SQRT", OpMathSin: "MATH_SIN", OpMathCos: "MATH_COS", OpMathTan: "MATH_TAN",
	OpMathAsin: "MATH_ASIN", OpMathAcos: "MATH_ACOS", OpMathAtan: "MATH_ATAN", OpMathLog: "MATH_LOG",
	OpMathPow: "MATH_POW", OpMathAbs: "MATH_ABS", OpMathFloor: "MATH_FLOOR", OpMathCeil: "MATH_CEIL", OpMathRound: "MATH_ROUND",
	OpMathExp: "MATH_EXP", OpMathAtan2: "MATH_ATAN2",
	OpRand: "RAND", OpRandMax: "RAND_MAX", OpRandRange: "RAND_RANGE", OpRandSeed: "RAND_SEED",
	OpSystemRun: "SYSTEM_RUN",
}

func (op OpCode) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "UNKNOWN"
}

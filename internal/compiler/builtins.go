package compiler

import "ascension/internal/bytecode"

// builtinOps maps every reserved built-in call name to its opcode. Every
// built-in follows the same emission contract: push each argument left to
// right, then emit the opcode. Argument arity is the host/VM's concern,
// not the compiler's -- consistent with "no type checking beyond coercion
// at use time".
var builtinOps = map[string]bytecode.OpCode{
	"len":       bytecode.OpLen,
	"keys":      bytecode.OpKeys,
	"to_int":    bytecode.OpToInt,
	"to_float":  bytecode.OpToFloat,
	"chr":       bytecode.OpChr,
	"substr":    bytecode.OpSubstr,
	"matrix":    bytecode.OpCreateMatrix,
	"rows":      bytecode.OpMatrixRows,
	"cols":      bytecode.OpMatrixCols,
	"dim":       bytecode.OpMatrixDim,
	"read":      bytecode.OpRead,
	"read_line": bytecode.OpRead,

	"sqrt":  bytecode.OpMathSqrt,
	"sin":   bytecode.OpMathSin,
	"cos":   bytecode.OpMathCos,
	"tan":   bytecode.OpMathTan,
	"asin":  bytecode.OpMathAsin,
	"acos":  bytecode.OpMathAcos,
	"atan":  bytecode.OpMathAtan,
	"log":   bytecode.OpMathLog,
	"pow":   bytecode.OpMathPow,
	"abs":   bytecode.OpMathAbs,
	"floor": bytecode.OpMathFloor,
	"ceil":  bytecode.OpMathCeil,
	"round":       bytecode.OpMathRound,
	"exp":         bytecode.OpMathExp,
	"atan2":       bytecode.OpMathAtan2,
	"rand":        bytecode.OpRand,
	"rand_max":    bytecode.OpRandMax,
	"rand_range":  bytecode.OpRandRange,
	"srand":       bytecode.OpRandSeed,

	"file_open":   bytecode.OpFileOpen,
	"file_read":   bytecode.OpFileRead,
	"file_write":  bytecode.OpFileWrite,
	"file_close":  bytecode.OpFileClose,
	"file_exists": bytecode.OpFileExists,

	"http_get":     bytecode.OpHTTPGet,
	"http_post":    bytecode.OpHTTPPost,
	"sock_connect": bytecode.OpSockConnect,
	"sock_send":    bytecode.OpSockSend,
	"sock_recv":    bytecode.OpSockRecv,
	"sock_close":   bytecode.OpSockClose,
	"dns_lookup":   bytecode.OpDNSLookup,
	"ws_dial":      bytecode.OpWSDial,
	"ws_send":      bytecode.OpWSSend,
	"ws_recv":      bytecode.OpWSRecv,
	"ws_close":     bytecode.OpWSClose,

	"exec_run": bytecode.OpExecRun,
	"system":   bytecode.OpSystemRun,

	"tui_init":     bytecode.OpTUIInit,
	"tui_clear":    bytecode.OpTUIClear,
	"tui_print_at": bytecode.OpTUIPrintAt,
	"tui_refresh":  bytecode.OpTUIRefresh,
	"tui_end":      bytecode.OpTUIEnd,
	"tui_getkey":   bytecode.OpTUIGetKey,

	"gui_window":   bytecode.OpGUIWindow,
	"gui_widget":   bytecode.OpGUIWidget,
	"gui_pack":     bytecode.OpGUIPack,
	"gui_mainloop": bytecode.OpGUIMainLoop,

	"db_open":  bytecode.OpDBOpen,
	"db_query": bytecode.OpDBQuery,
	"db_exec":  bytecode.OpDBExec,
	"db_close": bytecode.OpDBClose,
}

// builtinConstants are bare-identifier literal pushes, not calls.
var builtinConstants = map[string]float64{
	"PI": 3.141592653589793,
	"E":  2.718281828459045,
}

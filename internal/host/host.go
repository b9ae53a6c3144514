// Package host provides the pluggable services the VM calls out to for
// everything that isn't pure computation: files, the terminal, a minimal
// GUI, HTTP, raw sockets, DNS, subprocesses and math/RNG. Every method
// follows the host-service convention used throughout: failures are
// reported as an error, and the VM's opcode handlers convert that error
// into the NULL/sentinel value the language surfaces to scripts, never
// a Go panic and never a language-level exception of their own.
package host

import "io"

// Services is implemented once per VM run. The default implementation
// wires real third-party libraries; tests substitute a fake.
type Services interface {
	FileOpen(path, mode string) (int64, error)
	FileRead(handle int64) (string, error)
	FileWrite(handle int64, data string) (int64, error)
	FileClose(handle int64) error
	FileExists(path string) bool

	HTTPGet(url string) (status int64, body string, err error)
	HTTPPost(url, body, contentType string) (status int64, respBody string, err error)

	SockConnect(network, address string) (int64, error)
	SockSend(handle int64, data string) (int64, error)
	SockRecv(handle int64, maxBytes int64) (string, error)
	SockClose(handle int64) error

	DNSLookup(host string) (string, error)

	WSDial(url string) (int64, error)
	WSSend(handle int64, data string) error
	WSRecv(handle int64) (string, error)
	WSClose(handle int64) error

	ExecRun(command string) (stdout string, exitCode int64, err error)

	TUIInit() error
	TUIClear() error
	TUIPrintAt(row, col int64, text string) error
	TUIRefresh() error
	TUIEnd() error
	TUIGetKey() (string, error)

	GUIWindow(title string, width, height int64) (int64, error)
	GUIWidget(windowID int64, kind, label string) (int64, error)
	GUIPack(windowID, widgetID int64) error
	GUIMainLoop(windowID int64) error

	DBOpen(driver, dsn string) (int64, error)
	DBQuery(handle int64, query string) (string, error)
	DBExec(handle int64, query string) (int64, error)
	DBClose(handle int64) error

	MathRand() float64
	MathSeed(seed int64)

	Stdin() io.Reader
}

package vm

import (
	"bufio"
	"io"
)

// StdoutPrinter is the default Printer, buffering writes to an
// io.Writer (typically os.Stdout) and flushing once Run returns.
type StdoutPrinter struct {
	w *bufio.Writer
}

func NewStdoutPrinter(w io.Writer) *StdoutPrinter {
	return &StdoutPrinter{w: bufio.NewWriter(w)}
}

func (p *StdoutPrinter) Print(s string) {
	p.w.WriteString(s)
}

func (p *StdoutPrinter) Flush() error {
	return p.w.Flush()
}

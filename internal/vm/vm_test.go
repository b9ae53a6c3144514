package vm_test

import (
	"io"
	"strings"
	"testing"

	"ascension/internal/compiler"
	"ascension/internal/host"
	"ascension/internal/source"
	"ascension/internal/vm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bufPrinter collects PRINT output for assertions instead of writing to
// stdout.
type bufPrinter struct {
	strings.Builder
}

func (b *bufPrinter) Print(s string) { b.Builder.WriteString(s) }

// nullHost is a host.Services that returns errors/zero values for every
// operation except MathRand, which is pinned at 0.5, and Stdin, which is
// an empty reader; the arithmetic and control-flow scenarios below never
// call a host opcode.
type nullHost struct{}

func (nullHost) FileOpen(string, string) (int64, error) { return 0, io.EOF }
func (nullHost) FileRead(int64) (string, error)         { return "", io.EOF }
func (nullHost) FileWrite(int64, string) (int64, error) { return 0, io.EOF }
func (nullHost) FileClose(int64) error                  { return io.EOF }
func (nullHost) FileExists(string) bool                 { return false }
func (nullHost) HTTPGet(string) (int64, string, error)  { return 0, "", io.EOF }
func (nullHost) HTTPPost(string, string, string) (int64, string, error) {
	return 0, "", io.EOF
}
func (nullHost) SockConnect(string, string) (int64, error)      { return 0, io.EOF }
func (nullHost) SockSend(int64, string) (int64, error)          { return 0, io.EOF }
func (nullHost) SockRecv(int64, int64) (string, error)          { return "", io.EOF }
func (nullHost) SockClose(int64) error                          { return io.EOF }
func (nullHost) DNSLookup(string) (string, error)               { return "", io.EOF }
func (nullHost) WSDial(string) (int64, error)                   { return 0, io.EOF }
func (nullHost) WSSend(int64, string) error                     { return io.EOF }
func (nullHost) WSRecv(int64) (string, error)                   { return "", io.EOF }
func (nullHost) WSClose(int64) error                            { return io.EOF }
func (nullHost) ExecRun(string) (string, int64, error)          { return "", 0, io.EOF }
func (nullHost) TUIInit() error                                 { return io.EOF }
func (nullHost) TUIClear() error                                { return io.EOF }
func (nullHost) TUIPrintAt(int64, int64, string) error          { return io.EOF }
func (nullHost) TUIRefresh() error                              { return io.EOF }
func (nullHost) TUIEnd() error                                  { return io.EOF }
func (nullHost) TUIGetKey() (string, error)                     { return "", io.EOF }
func (nullHost) GUIWindow(string, int64, int64) (int64, error)  { return 0, io.EOF }
func (nullHost) GUIWidget(int64, string, string) (int64, error) { return 0, io.EOF }
func (nullHost) GUIPack(int64, int64) error                     { return io.EOF }
func (nullHost) GUIMainLoop(int64) error                        { return io.EOF }
func (nullHost) DBOpen(string, string) (int64, error)           { return 0, io.EOF }
func (nullHost) DBQuery(int64, string) (string, error)          { return "", io.EOF }
func (nullHost) DBExec(int64, string) (int64, error)            { return 0, io.EOF }
func (nullHost) DBClose(int64) error                            { return io.EOF }
func (nullHost) MathRand() float64                              { return 0.5 }
func (nullHost) MathSeed(int64)                                 {}
func (nullHost) Stdin() io.Reader                               { return strings.NewReader("") }

var _ host.Services = nullHost{}

// runScript compiles and runs src, returning whatever it printed.
func runScript(t *testing.T, src string) string {
	t.Helper()
	cleaned := source.Clean(src)
	stmts := source.SplitStatements(cleaned)
	prog, structs, err := compiler.Compile(stmts, ".")
	require.NoError(t, err)

	var out bufPrinter
	machine := vm.New(prog, structs, nullHost{}, &out)
	require.NoError(t, machine.Run())
	return out.String()
}

func TestRecursionViaPrototype(t *testing.T) {
	src := `
		func even(n);
		func odd(n) { if (n==0) { return 0; } return even(n-1); }
		func even(n) { if (n==0) { return 1; } return odd(n-1); }
		print(even(10));
	`
	assert.Equal(t, "1\n", runScript(t, src))
}

func TestNestedForWithMatrix(t *testing.T) {
	src := `
		m = matrix(2,3,0);
		for (i=0;i<2;i+=1) {
			for (j=0;j<3;j+=1) {
				m[i,j] = i*3+j;
			}
		}
		print(m[1][2]);
	`
	assert.Equal(t, "5\n", runScript(t, src))
}

func TestTryCatchAcrossCall(t *testing.T) {
	src := `
		func bad() { throw "oops"; }
		try {
			bad();
			print("unreached");
		} catch (e) {
			print(e);
		}
	`
	assert.Equal(t, "oops\n", runScript(t, src))
}

func TestStringConcatenationCoercion(t *testing.T) {
	src := `x = 3; print("v=" + x);`
	assert.Equal(t, "v=3\n", runScript(t, src))
}

func TestSwitchWithNoFallthrough(t *testing.T) {
	src := `
		x=2;
		switch(x) {
			case 1: { print("a"); };
			case 2: { print("b"); };
			default: { print("d"); };
		}
	`
	assert.Equal(t, "b\n", runScript(t, src))
}

func TestDictLiteralAndAttrAccess(t *testing.T) {
	src := `d = {"name":"A","age":7}; print(d.name, d.age);`
	assert.Equal(t, "A 7\n", runScript(t, src))
}

func TestDivisionByZeroRaises(t *testing.T) {
	src := `x = 1/0;`
	cleaned := source.Clean(src)
	stmts := source.SplitStatements(cleaned)
	prog, structs, err := compiler.Compile(stmts, ".")
	require.NoError(t, err)

	var out bufPrinter
	machine := vm.New(prog, structs, nullHost{}, &out)
	err = machine.Run()
	assert.Error(t, err)
}

func TestUndefinedLoadYieldsZero(t *testing.T) {
	src := `print(undefined_name + 1);`
	assert.Equal(t, "1\n", runScript(t, src))
}

func TestMathSupplements(t *testing.T) {
	src := `print(atan2(0,1)); print(exp(0)); print(rand_max(10)); print(rand_range(5,15));`
	// nullHost.MathRand() is pinned at 0.5, so rand_max/rand_range are deterministic.
	assert.Equal(t, "0\n1\n5\n10\n", runScript(t, src))
}

func TestSystemRunSurfacesNullOnHostFailure(t *testing.T) {
	src := `x = system("echo hi"); print(x);`
	assert.Equal(t, "NULL\n", runScript(t, src))
}

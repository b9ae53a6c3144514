package compiler

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"ascension/internal/bytecode"
	aerr "ascension/internal/errors"
)

type loopCtx struct {
	continueLabel string
	breakLabel    string
}

// Compiler holds pass-2 emission state: the growing opcode vector, the
// struct field table, the set of functions whose bodies have already been
// emitted, a label counter, and the stack of (continue, break) label pairs
// for whatever loop or switch currently encloses emission.
type Compiler struct {
	Prog     *bytecode.Program
	Protos   map[string][]string
	Structs  map[string][]string
	defined  map[string]bool
	labelSeq int
	loops    []loopCtx
	baseDir  string
	included map[string]bool
}

func NewCompiler(baseDir string) *Compiler {
	return &Compiler{
		Prog:     bytecode.NewProgram(),
		Protos:   map[string][]string{},
		Structs:  map[string][]string{},
		defined:  map[string]bool{},
		baseDir:  baseDir,
		included: map[string]bool{},
	}
}

// Compile runs both passes over the top-level statement list and returns
// the linked program plus the struct field table. No bytecode is produced
// if a compile-time error is detected.
func Compile(stmts []string, baseDir string) (*bytecode.Program, map[string][]string, error) {
	c := NewCompiler(baseDir)

	if err := CollectPrototypes(stmts, baseDir, c.Protos); err != nil {
		return nil, nil, err
	}

	for _, stmt := range stmts {
		if err := c.compileStmt(stmt); err != nil {
			return nil, nil, err
		}
	}

	var missing []string
	for name := range c.Protos {
		if !c.defined[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, nil, aerr.New(aerr.LinkerError, "undefined function(s): %s", strings.Join(missing, ", "))
	}

	c.Prog.ResolveLabels()
	return c.Prog, c.Structs, nil
}

func (c *Compiler) newLabel(tag string) string {
	c.labelSeq++
	return fmt.Sprintf("L%d_%s", c.labelSeq, tag)
}

func (c *Compiler) currentLoop() (loopCtx, bool) {
	if len(c.loops) == 0 {
		return loopCtx{}, false
	}
	return c.loops[len(c.loops)-1], true
}

var structRe = regexp.MustCompile(`^struct\s+([A-Za-z_][A-Za-z0-9_]*)\s*\{(.*)\}\s*$`)

// compileInclude inlines a file's statements at the current emission
// point, recursing through cleaner + splitter exactly like the top-level
// source. Paths always resolve against the original top-level base
// directory, matching included files that themselves include further
// paths.
func (c *Compiler) compileInclude(path string) error {
	full := filepath.Join(c.baseDir, path)
	if c.included[full] {
		return nil
	}
	c.included[full] = true
	stmts, err := readAndSplit(full)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if err := c.compileStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileStruct(name, fieldsStr string) {
	var fields []string
	for _, f := range strings.Split(fieldsStr, ",") {
		f = strings.TrimSpace(f)
		if f != "" {
			fields = append(fields, f)
		}
	}
	c.Structs[name] = fields
}

func trimStmt(stmt string) string {
	s := strings.TrimSpace(stmt)
	s = strings.TrimSuffix(s, ";")
	return strings.TrimSpace(s)
}

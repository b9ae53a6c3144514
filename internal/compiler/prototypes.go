// Package compiler implements Ascension's two-pass, mostly single-character
// compiler: pass 1 collects function prototypes (this file), pass 2 emits
// opcodes for every statement and expression form (compiler.go, stmt.go,
// expr.go, builtins.go).
package compiler

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	aerr "ascension/internal/errors"
	"ascension/internal/source"
)

var (
	funcProtoRe = regexp.MustCompile(`^func\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(([^)]*)\)\s*;`)
	funcDefRe   = regexp.MustCompile(`^func\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(([^)]*)\)\s*\{`)
	includeRe   = regexp.MustCompile(`^include\s+"([^"]*)"\s*;`)
)

// CollectPrototypes recursively walks stmts and every include-expanded
// file, recording every function prototype -- both forward declarations
// (func f(a);) and full definitions (func f(a) { ... }), since a
// definition also fixes its own arity. Raises PrototypeError when a name
// is declared twice with different arity.
func CollectPrototypes(stmts []string, baseDir string, protos map[string][]string) error {
	return collectPrototypes(stmts, baseDir, protos, map[string]bool{})
}

func collectPrototypes(stmts []string, baseDir string, protos map[string][]string, seen map[string]bool) error {
	for _, stmt := range stmts {
		if m := includeRe.FindStringSubmatch(stmt); m != nil {
			path := filepath.Join(baseDir, m[1])
			if seen[path] {
				continue
			}
			seen[path] = true
			subStmts, err := readAndSplit(path)
			if err != nil {
				return err
			}
			if err := collectPrototypes(subStmts, baseDir, protos, seen); err != nil {
				return err
			}
			continue
		}

		var name, argstr string
		if m := funcProtoRe.FindStringSubmatch(stmt); m != nil {
			name, argstr = m[1], m[2]
		} else if m := funcDefRe.FindStringSubmatch(stmt); m != nil {
			name, argstr = m[1], m[2]
		} else {
			continue
		}

		args := splitParams(argstr)
		if existing, ok := protos[name]; ok {
			if len(existing) != len(args) {
				return aerr.New(aerr.PrototypeError,
					"function %q redeclared with different arity (%d vs %d)", name, len(existing), len(args))
			}
			continue
		}
		protos[name] = args
	}
	return nil
}

func readAndSplit(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, aerr.New(aerr.LinkerError, "cannot include %q: %v", path, err)
	}
	cleaned := source.Clean(string(data))
	return source.SplitStatements(cleaned), nil
}

func splitParams(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

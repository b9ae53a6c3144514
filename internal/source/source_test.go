package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanStripsComments(t *testing.T) {
	src := "x = 1; // set x\n/* block\ncomment */ y = 2;"
	assert.Equal(t, `x = 1; y = 2;`, Clean(src))
}

func TestCleanPreservesStringsWithCommentLikeContent(t *testing.T) {
	src := `print("a // not a comment");`
	assert.Equal(t, `print("a // not a comment");`, Clean(src))
}

func TestSplitStatementsBasic(t *testing.T) {
	stmts := SplitStatements(`x = 1; y = 2; print(x, y);`)
	assert.Equal(t, []string{"x = 1;", "y = 2;", "print(x, y);"}, stmts)
}

func TestSplitStatementsForHeaderSemicolonsDontSplit(t *testing.T) {
	stmts := SplitStatements(`for (i=0;i<2;i+=1){ print(i); }`)
	assert.Equal(t, 1, len(stmts))
}

func TestSplitStatementsElseStaysAttached(t *testing.T) {
	stmts := SplitStatements(`if (x) { print(1); } else { print(2); } print(3);`)
	assert.Equal(t, 2, len(stmts))
	assert.Contains(t, stmts[0], "else")
}

func TestSplitStatementsCatchStaysAttached(t *testing.T) {
	stmts := SplitStatements(`try { bad(); } catch (e) { print(e); } print(3);`)
	assert.Equal(t, 2, len(stmts))
	assert.Contains(t, stmts[0], "catch")
}

func TestExtractBalancedArg(t *testing.T) {
	inner, ok := ExtractBalancedArg(`include("a/b.asc")`, "include")
	assert.True(t, ok)
	assert.Equal(t, `"a/b.asc"`, inner)
}

func TestExtractBracedBlock(t *testing.T) {
	body, next, ok := ExtractBracedBlock(`{ a; { b; } c; } rest`, 0)
	assert.True(t, ok)
	assert.Equal(t, ` a; { b; } c; `, body)
	assert.Equal(t, "{ a; { b; } c; }", `{ a; { b; } c; }`[:next])
}

func TestSplitArgsRespectsNesting(t *testing.T) {
	args := SplitArgs(`a, f(b, c), {"k": 1, "j": 2}, m[1,2]`)
	assert.Equal(t, []string{"a", "f(b, c)", `{"k": 1, "j": 2}`, "m[1,2]"}, args)
}

package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateSrc(t *testing.T, src string) string {
	t.Helper()
	toks, err := Tokenize("t.c", []byte(src))
	require.NoError(t, err)
	prog, err := Parse(toks)
	require.NoError(t, err)
	asm, err := Generate(prog)
	require.NoError(t, err)
	return asm
}

func TestGenerate_ReturnConstant(t *testing.T) {
	asm := generateSrc(t, `int main() { return 42; }`)
	assert.Contains(t, asm, "main:")
	assert.Contains(t, asm, "  mov rax, 42")
	assert.Contains(t, asm, "  push rbp")
	assert.Contains(t, asm, "  mov rbp, rsp")
	assert.Contains(t, asm, "  ret")
}

func TestGenerate_IntelSyntaxDirectiveIsFirstLine(t *testing.T) {
	asm := generateSrc(t, `int main() { return 0; }`)
	lines := strings.SplitN(asm, "\n", 2)
	require.Equal(t, ".intel_syntax noprefix", lines[0])
}

func TestGenerate_LargeImmediateUsesMovabs(t *testing.T) {
	asm := generateSrc(t, `int main() { return 9999999999; }`)
	assert.Contains(t, asm, "  movabs rax, 9999999999")
}

func TestGenerate_SmallImmediateUsesMov(t *testing.T) {
	asm := generateSrc(t, `int main() { return 5; }`)
	assert.Contains(t, asm, "  mov rax, 5")
	assert.NotContains(t, asm, "movabs")
}

func TestGenerate_BinaryArithmetic(t *testing.T) {
	asm := generateSrc(t, `int main() { return 1 + 2 * 3; }`)
	assert.Contains(t, asm, "  imul rax, rdi")
	assert.Contains(t, asm, "  add rax, rdi")
}

func TestGenerate_GreaterThanSwapsOperandsForSetl(t *testing.T) {
	asm := generateSrc(t, `int main() { return 1 > 2; }`)
	assert.Contains(t, asm, "  cmp rdi, rax")
	assert.Contains(t, asm, "  setl al")
}

func TestGenerate_GreaterEqualSwapsOperandsForSetle(t *testing.T) {
	asm := generateSrc(t, `int main() { return 1 >= 2; }`)
	assert.Contains(t, asm, "  cmp rdi, rax")
	assert.Contains(t, asm, "  setle al")
}

func TestGenerate_PointerArithmeticScalesBySize(t *testing.T) {
	asm := generateSrc(t, `
		int main() {
			int *p;
			int x;
			p = &x;
			return *(p + 1);
		}
	`)
	assert.Contains(t, asm, "  imul rax, 4")
}

func TestGenerate_PointerDiffDividesByElementSize(t *testing.T) {
	asm := generateSrc(t, `
		int main() {
			int a[4];
			int *p;
			int *q;
			p = &a[0];
			q = &a[2];
			return q - p;
		}
	`)
	assert.Contains(t, asm, "  cqo")
	assert.Contains(t, asm, "  mov rdi, 4")
	assert.Contains(t, asm, "  idiv rdi")
}

func TestGenerate_CompoundAssignDuplicatesAddress(t *testing.T) {
	asm := generateSrc(t, `
		int main() {
			int x;
			x = 1;
			x += 2;
			return x;
		}
	`)
	assert.Contains(t, asm, "  mov rax, [rsp]")
	assert.Contains(t, asm, "  add rax, rdi")
}

func TestGenerate_PostIncrementInvertsAfterStore(t *testing.T) {
	asm := generateSrc(t, `
		int main() {
			int x;
			x = 0;
			x++;
			return x;
		}
	`)
	// genPostIncDec emits "add ... ; store ; sub" (inverse undoes the
	// pre-store bump so the expression yields the pre-update value).
	idx := strings.Index(asm, "  add rax, 1")
	require.GreaterOrEqual(t, idx, 0)
	rest := asm[idx:]
	assert.Contains(t, rest, "  sub rax, 1")
}

func TestGenerate_FunctionCallChecksStackAlignment(t *testing.T) {
	asm := generateSrc(t, `
		int add(int a, int b) { return a + b; }
		int main() { return add(1, 2); }
	`)
	assert.Contains(t, asm, "  and rax, 15")
	assert.Contains(t, asm, "  call add")
	assert.Contains(t, asm, "  pop rdi")
	assert.Contains(t, asm, "  pop rsi")
}

func TestGenerate_IfElseBranches(t *testing.T) {
	asm := generateSrc(t, `
		int main() {
			int x;
			x = 1;
			if (x) {
				return 1;
			} else {
				return 0;
			}
		}
	`)
	assert.Contains(t, asm, "  cmp rax, 0")
	assert.Contains(t, asm, "  je .L.else.")
}

func TestGenerate_WhileLoop(t *testing.T) {
	asm := generateSrc(t, `
		int main() {
			int i;
			i = 0;
			while (i < 10) {
				i = i + 1;
			}
			return i;
		}
	`)
	assert.Contains(t, asm, ".L.begin.")
	assert.Contains(t, asm, ".L.end.")
}

func TestGenerate_ForLoopContinueRunsIncBeforeCond(t *testing.T) {
	asm := generateSrc(t, `
		int main() {
			int i;
			for (i = 0; i < 10; i = i + 1) {
				continue;
			}
			return i;
		}
	`)
	assert.Contains(t, asm, ".L.continue.")
}

func TestGenerate_StructMemberOffset(t *testing.T) {
	asm := generateSrc(t, `
		struct Point { int x; int y; };
		int main() {
			struct Point p;
			p.y = 3;
			return p.y;
		}
	`)
	assert.Contains(t, asm, "  add rax, 4")
}

func TestGenerate_GlobalStringLiteralEmitsDataSection(t *testing.T) {
	asm := generateSrc(t, `
		int main() {
			char *s;
			s = "hi";
			return 0;
		}
	`)
	assert.Contains(t, asm, ".data")
	assert.Contains(t, asm, ".byte 104,105,0")
}

func TestGenerate_BoolStoreNormalizesToZeroOrOne(t *testing.T) {
	asm := generateSrc(t, `
		int main() {
			_Bool b;
			b = 5;
			return b;
		}
	`)
	assert.Contains(t, asm, "  setne al")
}

func TestGenerate_GotoAndLabel(t *testing.T) {
	asm := generateSrc(t, `
		int main() {
			goto done;
			return 1;
		done:
			return 0;
		}
	`)
	assert.Contains(t, asm, "  jmp .L.label.main.done")
	assert.Contains(t, asm, ".L.label.main.done:")
}

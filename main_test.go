package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempSource(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "in.c")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestRun_HappyPathWritesAssemblyToStdout(t *testing.T) {
	path := writeTempSource(t, `int main() { return 0; }`)

	r, w, err := os.Pipe()
	require.NoError(t, err)
	origStdout := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = origStdout }()

	runErr := run(path)
	w.Close()
	require.NoError(t, runErr)

	buf := make([]byte, 4096)
	n, _ := r.Read(buf)
	out := string(buf[:n])
	assert.Contains(t, out, "main:")
	assert.Contains(t, out, "  ret")
}

func TestRun_MissingFileReturnsRawError(t *testing.T) {
	err := run(filepath.Join(t.TempDir(), "does-not-exist.c"))
	require.Error(t, err)
	_, isCompileErr := err.(*CompileError)
	assert.False(t, isCompileErr)
}

func TestRun_ParseErrorIsPrefixedWithFilename(t *testing.T) {
	path := writeTempSource(t, `int main() { return ; }`)
	err := run(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path+":")
}

func TestPrefixed_CompileErrorGetsFileRowCol(t *testing.T) {
	ce := errAt(Loc{Row: 3, Col: 5}, "something went wrong")
	got := prefixed("input.c", ce)
	assert.Equal(t, "input.c:3:5: something went wrong", got.Error())
}

func TestPrefixed_NonCompileErrorPassesThrough(t *testing.T) {
	plain := os.ErrNotExist
	got := prefixed("input.c", plain)
	assert.Same(t, plain, got)
}

func TestCommand_RejectsWrongArgCount(t *testing.T) {
	command.SetArgs([]string{})
	err := command.Execute()
	require.Error(t, err)

	command.SetArgs([]string{"a.c", "b.c"})
	err = command.Execute()
	require.Error(t, err)
}

// ./main_test.go
package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlePanic_WritesReportAndExits(t *testing.T) {
	dir := t.TempDir()
	var written string
	var exitCode int

	origWrite, origExit := osWriteFile, osExit
	t.Cleanup(func() { osWriteFile, osExit = origWrite, origExit })

	osWriteFile = func(name string, data []byte, perm os.FileMode) error {
		written = filepath.Join(dir, name)
		return os.WriteFile(written, data, perm)
	}
	osExit = func(code int) { exitCode = code }

	func() {
		defer handlePanic()
		panic("boom")
	}()

	assert.Equal(t, 2, exitCode)
	require.NotEmpty(t, written)
	data, err := os.ReadFile(written)
	require.NoError(t, err)
	assert.Contains(t, string(data), "panic: boom")
	assert.Contains(t, string(data), "goroutine")
}

func TestHandlePanic_NoPanic(t *testing.T) {
	called := false
	origExit := osExit
	t.Cleanup(func() { osExit = origExit })
	osExit = func(int) { called = true }

	func() {
		defer handlePanic()
	}()

	assert.False(t, called)
}

package iocli

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStdio(t *testing.T) {
	stdio := NewStdio()
	require.NotNil(t, stdio)
	assert.Equal(t, os.Stdin, stdio.in)
	assert.Equal(t, os.Stdout, stdio.out)
}

func TestPrintlnAndPrintf(t *testing.T) {
	var out bytes.Buffer
	stdio := New(strings.NewReader(""), &out)

	stdio.Println("hello", "world")
	stdio.Printf("test %d %s", 1, "abc")

	assert.Equal(t, "hello world\ntest 1 abc", out.String())
}

func TestReadInput(t *testing.T) {
	var out bytes.Buffer
	stdio := New(strings.NewReader("  user input \nsecond\nlast"), &out)

	first, err := stdio.ReadInput("Prompt: ")
	require.NoError(t, err)
	assert.Equal(t, "user input", first)

	// буфер общий между вызовами, вторая строка не теряется
	second, err := stdio.ReadInput("Prompt: ")
	require.NoError(t, err)
	assert.Equal(t, "second", second)

	// последняя строка без перевода строки
	last, err := stdio.ReadInput("Prompt: ")
	require.NoError(t, err)
	assert.Equal(t, "last", last)

	_, err = stdio.ReadInput("Prompt: ")
	assert.ErrorIs(t, err, io.EOF)

	assert.Equal(t, strings.Repeat("Prompt: ", 4), out.String())
}

// Тест ReadPassword: pipe не терминал, пароль читается как строка
func TestReadPassword_Pipe(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()

	go func() {
		_, _ = w.Write([]byte("s3cret-pass\n"))
		_ = w.Close()
	}()

	var out bytes.Buffer
	stdio := New(r, &out)

	pw, err := stdio.ReadPassword("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "s3cret-pass", pw)
	assert.Equal(t, "Password: ", out.String())
}

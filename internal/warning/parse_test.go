package warning

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SingleWarningWithSnippet(t *testing.T) {
	text := "a.cpp:10:5: warning: unused variable 'x'\n  10 |   int x;\n"

	got := Parse(text)

	require.Len(t, got, 1)
	assert.Equal(t, "a.cpp", got[0].Path)
	assert.Equal(t, 10, got[0].Line)
	assert.Equal(t, 5, got[0].Column)
	assert.Equal(t, "unused variable 'x'", got[0].Message)
	assert.Equal(t, []string{"  10 |   int x;"}, got[0].Continuation)
}

func TestParse_DiscardsPreamble(t *testing.T) {
	text := strings.Join([]string{
		"[1/3] Building CXX object a.o",
		"In file included from a.cpp:1:",
		"b.h:3:1: warning: declaration does not declare anything",
		"    3 | int;",
		"      | ^~~",
	}, "\n")

	got := Parse(text)

	require.Len(t, got, 1)
	assert.Equal(t, "b.h", got[0].Path)
	assert.Equal(t, []string{"    3 | int;", "      | ^~~"}, got[0].Continuation)
}

func TestParse_CRLF(t *testing.T) {
	text := "a.c:1:2: warning: first\r\nnote line\r\na.c:3:4: warning: second\r\n"

	got := Parse(text)

	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Message)
	assert.Equal(t, []string{"note line"}, got[0].Continuation)
	assert.Equal(t, "second", got[1].Message)
	assert.Empty(t, got[1].Continuation)
}

func TestParse_ColonInPath(t *testing.T) {
	got := Parse(`C:\src\a.cpp:7:9: warning: implicit conversion`)

	require.Len(t, got, 1)
	assert.Equal(t, `C:\src\a.cpp`, got[0].Path)
	assert.Equal(t, 7, got[0].Line)
	assert.Equal(t, 9, got[0].Column)
}

func TestParse_EmptyAndHeaderless(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse("ninja: no work to do.\n"))
}

func TestParse_ContinuationNeverContainsHeader(t *testing.T) {
	text := strings.Join([]string{
		"a.c:1:1: warning: one",
		"a.c:1:1: note: not a header",
		"x.c:2:2: error: not a header either",
		"b.c:2:2: warning: two",
	}, "\n")

	got := Parse(text)

	require.Len(t, got, 2)
	for _, w := range got {
		for _, line := range w.Continuation {
			_, isHeader := ParseHeader(line)
			assert.False(t, isHeader, "continuation %q parses as a header", line)
		}
	}
	assert.Len(t, got[0].Continuation, 2)
}

func TestParseHeader(t *testing.T) {
	tests := []struct {
		line    string
		ok      bool
		path    string
		message string
	}{
		{"a.cpp:10:5: warning: unused variable 'x'", true, "a.cpp", "unused variable 'x'"},
		{"dir/a b.cpp:1:1: warning:   padded  ", true, "dir/a b.cpp", "padded"},
		{"a.cpp:10:5: warning: ", false, "", ""},
		{"a.cpp:10:5: error: bad", false, "", ""},
		{"a.cpp:10: warning: no column", false, "", ""},
		{":1:2: warning: no path", false, "", ""},
		{"a.cpp:x:5: warning: not a number", false, "", ""},
	}
	for _, tt := range tests {
		w, ok := ParseHeader(tt.line)
		assert.Equal(t, tt.ok, ok, tt.line)
		if ok {
			assert.Equal(t, tt.path, w.Path, tt.line)
			assert.Equal(t, tt.message, w.Message, tt.line)
		}
	}
}

func TestParseFile_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.log")

	_, err := ParseFile(path)

	require.Error(t, err)
	var readErr *ReadError
	require.True(t, errors.As(err, &readErr))
	assert.Equal(t, path, readErr.Path)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestParseFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.log")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	got, err := ParseFile(path)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseReader(t *testing.T) {
	got, err := ParseReader("stdin", strings.NewReader("a.c:1:1: warning: w\n"))

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "w", got[0].Message)
}

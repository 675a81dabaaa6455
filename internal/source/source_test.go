package source

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestExpand_Glob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.log"), "b")
	writeFile(t, filepath.Join(dir, "a.log"), "a")
	writeFile(t, filepath.Join(dir, "c.txt"), "c")

	paths, err := Expand([]string{filepath.Join(dir, "*.log")})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.log"), filepath.Join(dir, "b.log")}, paths)
}

func TestExpand_EnvAndWords(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "one"), "1")
	writeFile(t, filepath.Join(dir, "two"), "2")
	t.Setenv("NETSENDER_TEST_DIR", dir)

	paths, err := Expand([]string{"$NETSENDER_TEST_DIR/two $NETSENDER_TEST_DIR/one", "${NETSENDER_TEST_DIR}/one"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "two"),
		filepath.Join(dir, "one"),
		filepath.Join(dir, "one"),
	}, paths)
}

func TestExpand_NoMatchKeptLiteral(t *testing.T) {
	paths, err := Expand([]string{"/definitely/not/here-*.log"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/definitely/not/here-*.log"}, paths)
}

func TestExpand_Home(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeFile(t, filepath.Join(home, "events.log"), "x")

	paths, err := Expand([]string{"~/events.log"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(home, "events.log")}, paths)
}

func TestExpand_BadPattern(t *testing.T) {
	_, err := Expand([]string{"[unclosed"})
	assert.Error(t, err)
}

func TestList_Stdin(t *testing.T) {
	l := List{Stdin: strings.NewReader("hello\n")}
	assert.True(t, l.UsesStdin())
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, StdinName, l.Name(0))

	rc, err := l.Open(0)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
	assert.NoError(t, rc.Close())
}

func TestList_Files(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "plain.log")
	writeFile(t, p, "a\nb\n")

	l := List{Paths: []string{p}}
	assert.False(t, l.UsesStdin())
	assert.Equal(t, p, l.Name(0))

	rc, err := l.Open(0)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", string(data))

	_, err = l.Open(3)
	assert.Error(t, err)
}

func TestOpenFile_Missing(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "missing.log"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenFile_Gzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("{\"a\":1}\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	p := filepath.Join(t.TempDir(), "events.json.gz")
	require.NoError(t, os.WriteFile(p, buf.Bytes(), 0644))

	rc, err := OpenFile(p)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":1}\n", string(data))
	assert.NoError(t, rc.Close())
}

func TestOpenFile_Zstd(t *testing.T) {
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	compressed := enc.EncodeAll([]byte("line one\nline two\n"), nil)
	require.NoError(t, enc.Close())

	p := filepath.Join(t.TempDir(), "events.log.zst")
	require.NoError(t, os.WriteFile(p, compressed, 0644))

	rc, err := OpenFile(p)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", string(data))
	assert.NoError(t, rc.Close())
}

func TestOpenFile_CorruptGzip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.gz")
	writeFile(t, p, "not gzip at all")
	_, err := OpenFile(p)
	assert.Error(t, err)
}

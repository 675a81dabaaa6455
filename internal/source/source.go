// Package source resolves input patterns into the ordered list of streams
// a run reads from.
package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/multierr"
)

// StdinName is how standard input appears in logs.
const StdinName = "<stdin>"

// List is the ordered set of inputs for a run. An empty Paths means the
// run reads Stdin once.
type List struct {
	Paths []string
	Stdin io.Reader
}

// UsesStdin reports whether the list reads standard input.
func (l List) UsesStdin() bool {
	return len(l.Paths) == 0
}

// Len returns the number of sources in one pass.
func (l List) Len() int {
	if l.UsesStdin() {
		return 1
	}
	return len(l.Paths)
}

// Name returns the display name of source i.
func (l List) Name(i int) string {
	if l.UsesStdin() {
		return StdinName
	}
	return l.Paths[i]
}

// Open opens source i for reading. Compressed files ending in .gz or .zst
// are decompressed transparently.
func (l List) Open(i int) (io.ReadCloser, error) {
	if l.UsesStdin() {
		in := l.Stdin
		if in == nil {
			in = os.Stdin
		}
		return io.NopCloser(in), nil
	}
	if i < 0 || i >= len(l.Paths) {
		return nil, fmt.Errorf("source index %d out of range", i)
	}
	return OpenFile(l.Paths[i])
}

// OpenFile opens path, wrapping it in a decompressor chosen by extension.
func OpenFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("opening gzip stream %s: %w", path, err)
		}
		return &stackedCloser{Reader: zr, closers: []io.Closer{zr, f}}, nil
	case ".zst", ".zstd":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("opening zstd stream %s: %w", path, err)
		}
		return &stackedCloser{Reader: zr, closers: []io.Closer{zstdCloser{zr}, f}}, nil
	default:
		return f, nil
	}
}

type stackedCloser struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedCloser) Close() error {
	var err error
	for _, c := range s.closers {
		err = multierr.Append(err, c.Close())
	}
	return err
}

type zstdCloser struct {
	d *zstd.Decoder
}

func (z zstdCloser) Close() error {
	z.d.Close()
	return nil
}

// Expand turns user-supplied patterns into file paths, in order. Each
// pattern has environment variables and a leading ~ expanded, is split on
// whitespace, and each word is globbed. A word that matches nothing is
// kept literally so that opening it later reports a useful error.
func Expand(patterns []string) ([]string, error) {
	var paths []string
	for _, p := range patterns {
		for _, word := range strings.Fields(os.ExpandEnv(p)) {
			word, err := expandHome(word)
			if err != nil {
				return nil, err
			}
			matches, err := filepath.Glob(word)
			if err != nil {
				return nil, fmt.Errorf("bad pattern %q: %w", word, err)
			}
			if len(matches) == 0 {
				paths = append(paths, word)
				continue
			}
			sort.Strings(matches)
			paths = append(paths, matches...)
		}
	}
	return paths, nil
}

func expandHome(word string) (string, error) {
	if word != "~" && !strings.HasPrefix(word, "~/") {
		return word, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expanding %q: %w", word, err)
	}
	return filepath.Join(home, strings.TrimPrefix(word, "~")), nil
}

package selectors

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Load reads one signature per line. Blank lines and lines starting
// with '#' are skipped; a trailing "# comment" is dropped as well.
func (t *Table) Load(r io.Reader) (int, error) {
	var (
		sc = bufio.NewScanner(r)
		n  int
	)
	for line := 1; sc.Scan(); line++ {
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		if err := t.Add(text); err != nil {
			return n, fmt.Errorf("line %d: %w", line, err)
		}
		n++
	}
	return n, sc.Err()
}

// LoadFile is Load over the named file.
func (t *Table) LoadFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := t.Load(f)
	if err != nil {
		return n, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}

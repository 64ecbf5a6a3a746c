package europepmc

import (
	"bufio"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// OpenCandidates opens the candidate identifier list.
//
// Unless refresh is set, the compressed list cached at cachePath is reused.
// When refresh is set or no cache exists, the list is fetched from src and
// written to cachePath before it is read, so later runs can reuse it.
func OpenCandidates(ctx context.Context, src ListSource, cachePath string, refresh bool) (*Candidates, error) {
	cached := false
	if !refresh {
		if _, err := os.Stat(cachePath); err == nil {
			cached = true
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("stat archive cache: %w", err)
		}
	}
	if !cached {
		if err := fetchArchive(ctx, src, cachePath); err != nil {
			return nil, err
		}
	}

	f, err := os.Open(cachePath)
	if err != nil {
		return nil, fmt.Errorf("open archive cache: %w", err)
	}
	c, err := newCandidates(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	c.cached = cached
	return c, nil
}

// fetchArchive downloads the list into cachePath through a temp file so an
// interrupted download never leaves a truncated cache behind.
func fetchArchive(ctx context.Context, src ListSource, cachePath string) error {
	body, err := src.CandidateList(ctx)
	if err != nil {
		return fmt.Errorf("candidate list: %w", err)
	}
	defer body.Close()

	dir := filepath.Dir(cachePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(cachePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create archive cache: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return fmt.Errorf("download archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write archive cache: %w", err)
	}
	if err := os.Rename(tmpPath, cachePath); err != nil {
		return fmt.Errorf("write archive cache: %w", err)
	}
	return nil
}

// Candidates is a forward-only reader over a compressed, newline-delimited
// identifier list. It cannot be rewound; open the list again to restart.
type Candidates struct {
	f      io.Closer
	zr     *gzip.Reader
	sc     *bufio.Scanner
	id     string
	err    error
	cached bool
}

// NewCandidates reads identifiers from a gzip stream.
func NewCandidates(r io.ReadCloser) (*Candidates, error) {
	return newCandidates(r)
}

func newCandidates(r io.ReadCloser) (*Candidates, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("decompress archive: %w", err)
	}
	sc := bufio.NewScanner(zr)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Candidates{f: r, zr: zr, sc: sc}, nil
}

// Next advances to the next identifier. Blank lines are skipped.
func (c *Candidates) Next() bool {
	if c.err != nil {
		return false
	}
	for c.sc.Scan() {
		line := strings.TrimSpace(c.sc.Text())
		if line == "" {
			continue
		}
		c.id = line
		return true
	}
	if err := c.sc.Err(); err != nil {
		c.err = fmt.Errorf("read archive: %w", err)
	}
	c.id = ""
	return false
}

// ID returns the current identifier.
func (c *Candidates) ID() string {
	return c.id
}

// Err returns the first read error, if any.
func (c *Candidates) Err() error {
	return c.err
}

// Cached reports whether the list was read from an existing cache file.
func (c *Candidates) Cached() bool {
	return c.cached
}

// Close releases the underlying stream.
func (c *Candidates) Close() error {
	zerr := c.zr.Close()
	if err := c.f.Close(); err != nil {
		return err
	}
	return zerr
}

package europepmc

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// gzipLines returns the gzip-compressed, newline-terminated list of ids.
func gzipLines(t *testing.T, ids ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	for _, id := range ids {
		_, err := io.WriteString(zw, id+"\n")
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// openTestLedger opens an initialized ledger in a temp dir using the pure-Go driver.
func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := OpenLedger(filepath.Join(t.TempDir(), "ledger.db"), "sqlite")
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	require.NoError(t, l.Initialize(context.Background(), false))
	return l
}

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	dir := t.TempDir()
	cfg.EuropePMC.ArchiveFile = filepath.Join(dir, "pmcid.txt.gz")
	cfg.SQL.DBFile = filepath.Join(dir, "ledger.db")
	cfg.SQL.Driver = "sqlite"
	return cfg
}

// article wraps body markup in a minimal JATS document.
func article(front, body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>` +
		`<article xmlns:xlink="http://www.w3.org/1999/xlink" article-type="research-article">` +
		`<front>` + front + `</front>` +
		`<body>` + body + `</body>` +
		`</article>`
}

func mustParse(t *testing.T, xml string) *Document {
	t.Helper()
	doc, err := ParseDocument(strings.NewReader(xml))
	require.NoError(t, err)
	return doc
}

// fakeSource serves a fixed candidate list and documents from memory.
type fakeSource struct {
	list    []byte
	listErr error
	docs    map[string]string
	errs    map[string]error

	mu        sync.Mutex
	listCalls int
	fetches   map[string]int
}

func newFakeSource(t *testing.T, ids []string, docs map[string]string) *fakeSource {
	return &fakeSource{
		list:    gzipLines(t, ids...),
		docs:    docs,
		errs:    map[string]error{},
		fetches: map[string]int{},
	}
}

func (f *fakeSource) CandidateList(ctx context.Context) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return io.NopCloser(bytes.NewReader(f.list)), nil
}

func (f *fakeSource) FetchArticle(ctx context.Context, id string) (*Document, error) {
	f.mu.Lock()
	f.fetches[id]++
	err := f.errs[id]
	xml, ok := f.docs[id]
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrNotAvailable)
	}
	doc, err := ParseDocument(strings.NewReader(xml))
	if err != nil {
		return nil, err
	}
	if !doc.HasBody() {
		return nil, fmt.Errorf("%s: %w", id, ErrNotAvailable)
	}
	return doc, nil
}

func (f *fakeSource) fetchCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[id]
}

func (f *fakeSource) totalFetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.fetches {
		n += c
	}
	return n
}

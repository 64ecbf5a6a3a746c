package europepmc

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord(id string) Record {
	return Record{
		ID:                  id,
		Introduction:        "intro " + id,
		Methods:             "methods " + id,
		Result:              "result " + id,
		Discussion:          "discussion " + id,
		SupplementaryMarkup: "<supplementary-material id='S1'/>",
		Metadata: Metadata{
			ISSNPrint:      "1111-2222",
			ISSNElectronic: "3333-4444",
			JournalTitle:   "Journal of Tests",
			PublisherName:  "Test Press",
		},
	}
}

func TestLedger_InsertIfAbsent(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)

	inserted, err := l.InsertIfAbsent(ctx, sampleRecord("PMC1"))
	require.NoError(t, err)
	assert.True(t, inserted)

	changed := sampleRecord("PMC1")
	changed.Methods = "overwritten"
	changed.Metadata.JournalTitle = "Other"
	inserted, err = l.InsertIfAbsent(ctx, changed)
	require.NoError(t, err)
	assert.False(t, inserted, "duplicate insert must be a no-op")

	got, err := l.Get(ctx, "PMC1")
	require.NoError(t, err)
	assert.Equal(t, sampleRecord("PMC1"), *got)

	ids, err := l.KnownIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"PMC1"}, ids)
}

func TestLedger_InsertEmptyID(t *testing.T) {
	l := openTestLedger(t)

	_, err := l.InsertIfAbsent(context.Background(), Record{})
	assert.True(t, errors.Is(err, ErrEmptyID))
}

func TestLedger_ParameterBinding(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)

	rec := sampleRecord(`PMC1"); DROP TABLE Main; --`)
	rec.Methods = `it's "quoted" ' text`
	_, err := l.InsertIfAbsent(ctx, rec)
	require.NoError(t, err)

	got, err := l.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Methods, got.Methods)

	ids, err := l.KnownIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{rec.ID}, ids)
}

func TestLedger_GetNotFound(t *testing.T) {
	l := openTestLedger(t)

	_, err := l.Get(context.Background(), "PMC404")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLedger_Reset(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)

	_, err := l.InsertIfAbsent(ctx, sampleRecord("PMC1"))
	require.NoError(t, err)
	_, err = l.Get(ctx, "PMC1")
	require.NoError(t, err)

	require.NoError(t, l.Initialize(ctx, false))
	ids, err := l.KnownIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 1, "initialize without reset keeps rows")

	require.NoError(t, l.Initialize(ctx, true))
	ids, err = l.KnownIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = l.Get(ctx, "PMC1")
	assert.True(t, errors.Is(err, ErrNotFound), "reset must also drop cached records")
}

func TestLedger_Persistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	l, err := OpenLedger(path, "sqlite")
	require.NoError(t, err)
	require.NoError(t, l.Initialize(ctx, false))
	_, err = l.InsertIfAbsent(ctx, sampleRecord("PMC7"))
	require.NoError(t, err)
	require.NoError(t, l.Close())

	l, err = OpenLedger(path, "sqlite")
	require.NoError(t, err)
	defer l.Close()
	require.NoError(t, l.Initialize(ctx, false))

	got, err := l.Get(ctx, "PMC7")
	require.NoError(t, err)
	assert.Equal(t, sampleRecord("PMC7"), *got)
}

func TestLedger_MethodSections(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)

	for _, id := range []string{"PMC3", "PMC1", "PMC2"} {
		_, err := l.InsertIfAbsent(ctx, sampleRecord(id))
		require.NoError(t, err)
	}

	got, err := l.MethodSections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []MethodSection{
		{PMCID: "PMC1", Methods: "methods PMC1"},
		{PMCID: "PMC2", Methods: "methods PMC2"},
		{PMCID: "PMC3", Methods: "methods PMC3"},
	}, got)
}

func TestLedger_Stats(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)

	_, err := l.InsertIfAbsent(ctx, sampleRecord("PMC1"))
	require.NoError(t, err)
	_, err = l.InsertIfAbsent(ctx, Record{ID: "PMC2", Methods: "only methods"})
	require.NoError(t, err)

	stats, err := l.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Articles)
	assert.Equal(t, int64(1), stats.Sections[Introduction])
	assert.Equal(t, int64(2), stats.Sections[Methods])
	assert.Equal(t, int64(1), stats.Sections[Result])
	assert.Equal(t, int64(1), stats.Sections[Discussion])
	assert.Equal(t, int64(1), stats.WithSupplementary)
}

func TestOpenLedger_InvalidDriver(t *testing.T) {
	_, err := OpenLedger(filepath.Join(t.TempDir(), "x.db"), "postgres")
	assert.True(t, errors.Is(err, ErrInvalidDriver))
}

package europepmc

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
europepmc:
  rest_articles:
    root_url: http://localhost:9000/rest/
  archive_api:
    root_url: http://localhost:9000/oa/pmcid.txt.gz
  archive_file: data/pmcid.txt.gz
  rerun_archive: true
sql:
  db_file: data/main.db
  driver: sqlite
harvest:
  workers: 4
  timeout_sec: 15
logging:
  level: debug
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/rest/", cfg.EuropePMC.RestArticles.RootURL)
	assert.Equal(t, "http://localhost:9000/oa/pmcid.txt.gz", cfg.EuropePMC.ArchiveAPI.RootURL)
	assert.Equal(t, "data/pmcid.txt.gz", cfg.EuropePMC.ArchiveFile)
	assert.True(t, cfg.EuropePMC.RerunArchive)
	assert.Equal(t, "data/main.db", cfg.SQL.DBFile)
	assert.Equal(t, "sqlite", cfg.SQL.Driver)
	assert.Equal(t, 4, cfg.Harvest.Workers)
	assert.Equal(t, 15*time.Second, cfg.Timeout())
	assert.Equal(t, "europepmc-harvester/1.0", cfg.Harvest.UserAgent)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "sql:\n  db_file: x.db\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultArticleURL, cfg.EuropePMC.RestArticles.RootURL)
	assert.Equal(t, DefaultArchiveURL, cfg.EuropePMC.ArchiveAPI.RootURL)
	assert.Equal(t, "pmcid.txt.gz", cfg.EuropePMC.ArchiveFile)
	assert.False(t, cfg.EuropePMC.RerunArchive)
	assert.Equal(t, "x.db", cfg.SQL.DBFile)
	assert.Equal(t, "sqlite3", cfg.SQL.Driver)
	assert.Equal(t, 1, cfg.Harvest.Workers)
	assert.Equal(t, time.Minute, cfg.Timeout())
	assert.Equal(t, "info", cfg.Logging.Level)

	assert.Equal(t, DefaultConfig().EuropePMC, cfg.EuropePMC)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"driver", "sql:\n  driver: postgres\n", ErrInvalidDriver},
		{"workers", "harvest:\n  workers: -1\n", ErrInvalidWorkers},
		{"timeout", "harvest:\n  timeout_sec: -5\n", ErrInvalidTimeout},
		{"log level", "logging:\n  level: verbose\n", ErrInvalidLogLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadConfig(writeConfig(t, "europepmc: [unclosed"))
	assert.ErrorContains(t, err, "parse yaml")
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.EuropePMC.ArchiveFile = ""
	assert.ErrorIs(t, cfg.Validate(), ErrMissingArchiveFile)

	cfg = DefaultConfig()
	cfg.SQL.DBFile = ""
	assert.ErrorIs(t, cfg.Validate(), ErrMissingDBFile)

	cfg = DefaultConfig()
	cfg.EuropePMC.RestArticles.RootURL = ""
	assert.ErrorIs(t, cfg.Validate(), ErrMissingArticleURL)
}

/*
europepmc incrementally harvests open-access full-text articles from Europe PMC
into a local SQLite ledger.

# Usage

	europepmc <command> [options]

# Commands

	harvest    Capture every new full-text article from the archive
	ids        List captured PMC identifiers
	methods    Export the Methods section of every captured article
	get        Show a captured article
	stats      Show ledger statistics
	serve      Serve captured articles over HTTP (read-only)

# Environment

	EUROPEPMC_CONFIG    Config file (same as --config)
	EUROPEPMC_DB        Ledger database (same as --db)

Variables may also be set in a .env file in the working directory.

# Harvesting

The candidate list is the gzip-compressed PMCID archive. It is downloaded
once and cached at europepmc.archive_file; later runs reuse the cached copy:

	europepmc harvest                   # Capture new articles
	europepmc harvest --refresh-archive # Refetch the candidate list first
	europepmc harvest --rerun           # Drop the ledger and start over
	europepmc harvest --workers 4       # Fetch four articles at a time

Identifiers already in the ledger are never fetched again. Interrupting a
harvest is safe: every captured article is committed on its own.

# Querying

	europepmc ids                       # One PMCID per line
	europepmc methods --format tsv      # pmcid<TAB>methods
	europepmc get PMC3257301

# Web Interface

	europepmc serve --addr :8080

serves GET /v1/articles, /v1/articles/{pmcid}, /v1/methods and /v1/stats.

# Configuration

	europepmc:
	  rest_articles: { root_url: "https://www.ebi.ac.uk/europepmc/webservices/rest/" }
	  archive_api:   { root_url: "https://europepmc.org/ftp/oa/pmcid.txt.gz" }
	  archive_file: pmcid.txt.gz
	  rerun_archive: false
	sql:
	  db_file: europepmc.db
	  driver: sqlite3
	harvest:
	  workers: 1
	  timeout_sec: 60
	logging:
	  level: info
*/
package main

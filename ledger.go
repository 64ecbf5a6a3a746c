package europepmc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// recentRecords bounds the in-memory cache used by Get.
const recentRecords = 4096

// Ledger is the persistent table of captured articles, keyed by PMC identifier.
type Ledger struct {
	path   string
	db     *gorm.DB
	recent *lru.Cache[string, Record]
}

// OpenLedger opens or creates the ledger database at path.
// driver is the database/sql driver: "sqlite3" (mattn, cgo) or "sqlite" (modernc, pure Go).
// Call Initialize before use.
func OpenLedger(path, driver string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	var dsn string
	switch driver {
	case "sqlite":
		dsn = path + "?_pragma=busy_timeout(5000)"
	case "sqlite3":
		dsn = path + "?_busy_timeout=5000"
	default:
		return nil, fmt.Errorf("%w: got %q", ErrInvalidDriver, driver)
	}

	db, err := gorm.Open(sqlite.Dialector{
		DriverName: driver,
		DSN:        dsn,
	}, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	recent, err := lru.New[string, Record](recentRecords)
	if err != nil {
		return nil, err
	}
	return &Ledger{path: path, db: db, recent: recent}, nil
}

// Close closes the ledger database.
func (l *Ledger) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Path returns the database file path.
func (l *Ledger) Path() string {
	return l.path
}

// Initialize ensures the Main table exists. With reset, the table is dropped
// and recreated first, forgetting every captured article.
func (l *Ledger) Initialize(ctx context.Context, reset bool) error {
	m := l.db.WithContext(ctx).Migrator()
	if reset {
		if err := m.DropTable(&Article{}); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
		l.recent.Purge()
	}
	if m.HasTable(&Article{}) {
		return nil
	}
	if err := m.CreateTable(&Article{}); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

// KnownIDs returns the identifiers of every captured article.
func (l *Ledger) KnownIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := l.db.WithContext(ctx).Model(&Article{}).Pluck("pmcid", &ids).Error; err != nil {
		return nil, fmt.Errorf("list identifiers: %w", err)
	}
	return ids, nil
}

// InsertIfAbsent stores rec unless its identifier is already captured, in
// which case the stored row is left untouched. It reports whether a row was
// written. Each call commits on its own.
func (l *Ledger) InsertIfAbsent(ctx context.Context, rec Record) (bool, error) {
	if rec.ID == "" {
		return false, ErrEmptyID
	}
	a := articleFromRecord(rec)
	res := l.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pmcid"}},
			DoNothing: true,
		}).
		Create(&a)
	if res.Error != nil {
		return false, fmt.Errorf("insert %s: %w", rec.ID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Get returns the captured record for id.
func (l *Ledger) Get(ctx context.Context, id string) (*Record, error) {
	if rec, ok := l.recent.Get(id); ok {
		return &rec, nil
	}

	var a Article
	err := l.db.WithContext(ctx).Where("pmcid = ?", id).Take(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", id, err)
	}

	rec := a.record()
	l.recent.Add(id, rec)
	return &rec, nil
}

// MethodSections returns the Methods text of every captured article.
func (l *Ledger) MethodSections(ctx context.Context) ([]MethodSection, error) {
	var out []MethodSection
	err := l.db.WithContext(ctx).
		Model(&Article{}).
		Select("pmcid", "Methods").
		Order("pmcid").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list methods: %w", err)
	}
	return out, nil
}

// Stats returns ledger statistics.
func (l *Ledger) Stats(ctx context.Context) (*LedgerStats, error) {
	stats := &LedgerStats{Sections: make(map[Section]int64, len(AllSections))}

	if err := l.db.WithContext(ctx).Model(&Article{}).Count(&stats.Articles).Error; err != nil {
		return nil, err
	}

	for _, s := range AllSections {
		var n int64
		err := l.db.WithContext(ctx).Model(&Article{}).
			Where(clause.Neq{Column: string(s), Value: ""}).
			Count(&n).Error
		if err != nil {
			return nil, err
		}
		stats.Sections[s] = n
	}

	err := l.db.WithContext(ctx).Model(&Article{}).
		Where(clause.Neq{Column: "SupMaterial", Value: ""}).
		Count(&stats.WithSupplementary).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// LedgerStats contains statistics about captured articles.
type LedgerStats struct {
	Articles          int64
	Sections          map[Section]int64
	WithSupplementary int64
}

// Package dbstore implements store.Backend as a single ordered table in
// SQLite, accessed through GORM.
package dbstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/greminder/greminder/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// SchemaVersion is written to the meta table on first open.
const SchemaVersion = "1"

// scanPageSize is the number of rows fetched per query during Scan.
const scanPageSize = 256

// SQLiteStore is a SQLite-backed implementation of store.Backend
type SQLiteStore struct {
	db     *gorm.DB
	dbPath string
	closed atomic.Bool
}

var (
	_ store.Backend         = (*SQLiteStore)(nil)
	_ store.Counter         = (*SQLiteStore)(nil)
	_ store.SchemaVersioner = (*SQLiteStore)(nil)
)

// NewSQLiteStore creates a new SQLite-backed store at the specified path.
// It creates the parent directory, initializes the schema and records the
// schema version.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every write is committed to disk before it returns.
	if err := db.Exec("PRAGMA synchronous = FULL").Error; err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	if err := db.AutoMigrate(&RecordModel{}, &MetaItemModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	st := &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}

	if err := st.initMeta(); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to init meta: %w", err)
	}

	return st, nil
}

// initMeta records the schema version unless already present.
func (s *SQLiteStore) initMeta() error {
	meta := MetaItemModel{Key: "db_version", Value: SchemaVersion}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&meta).Error
}

// Meta returns the value of a meta key, such as "db_version".
func (s *SQLiteStore) Meta(key string) (string, error) {
	if s.closed.Load() {
		return "", store.ErrClosed
	}

	var item MetaItemModel
	if err := s.db.Where("key = ?", key).First(&item).Error; err != nil {
		return "", mapError(err)
	}
	return item.Value, nil
}

// SchemaVersion implements store.SchemaVersioner.
func (s *SQLiteStore) SchemaVersion() (string, error) {
	return s.Meta("db_version")
}

// Get returns the value stored under key.
func (s *SQLiteStore) Get(key []byte) ([]byte, error) {
	if s.closed.Load() {
		return nil, store.ErrClosed
	}

	var rec RecordModel
	if err := s.db.Where("record_key = ?", key).First(&rec).Error; err != nil {
		return nil, mapError(err)
	}
	return rec.Value, nil
}

// Put inserts or replaces the record for key.
func (s *SQLiteStore) Put(key, value []byte) error {
	if s.closed.Load() {
		return store.ErrClosed
	}

	rec := RecordModel{
		Key:   append([]byte(nil), key...),
		Value: append([]byte{}, value...),
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "record_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"record_value", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to put record: %w", err)
	}
	return nil
}

// Delete removes the record for key if present.
func (s *SQLiteStore) Delete(key []byte) error {
	if s.closed.Load() {
		return store.ErrClosed
	}

	if err := s.db.Where("record_key = ?", key).Delete(&RecordModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// Scan reads records in key order one page at a time, starting at seek.
// Each page is fully read before fn sees it, so no cursor stays open
// between pages.
func (s *SQLiteStore) Scan(seek []byte, fn func(key, value []byte) bool) error {
	if s.closed.Load() {
		return store.ErrClosed
	}

	var last []byte
	first := true
	for {
		query := s.db.Model(&RecordModel{}).Order("record_key").Limit(scanPageSize)
		switch {
		case !first:
			query = query.Where("record_key > ?", last)
		case len(seek) > 0:
			query = query.Where("record_key >= ?", seek)
		}

		var page []RecordModel
		if err := query.Find(&page).Error; err != nil {
			return fmt.Errorf("failed to scan records: %w", err)
		}

		for _, rec := range page {
			if !fn(rec.Key, rec.Value) {
				return nil
			}
		}
		if len(page) < scanPageSize {
			return nil
		}
		last = page[len(page)-1].Key
		first = false
	}
}

// Count returns the number of records.
func (s *SQLiteStore) Count() (int, error) {
	if s.closed.Load() {
		return 0, store.ErrClosed
	}

	var count int64
	if err := s.db.Model(&RecordModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return int(count), nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func mapError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	return err
}

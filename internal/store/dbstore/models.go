package dbstore

import (
	"time"
)

// RecordModel is one key-value record. Keys are compared as BLOBs, so
// ORDER BY record_key gives the byte order the note store relies on.
type RecordModel struct {
	Key       []byte    `gorm:"column:record_key;primaryKey;type:blob"`
	Value     []byte    `gorm:"column:record_value;type:blob"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"` // GORM managed timestamp
}

// TableName returns the table name for RecordModel
func (RecordModel) TableName() string {
	return "kv_records"
}

// MetaItemModel is a key-value pair describing the database itself.
type MetaItemModel struct {
	Key       string    `gorm:"primaryKey;size:100"`
	Value     string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for MetaItemModel
func (MetaItemModel) TableName() string {
	return "meta"
}

package cli

import (
	"fmt"

	"github.com/greminder/greminder/internal/config"
	"github.com/greminder/greminder/internal/store"
	"github.com/greminder/greminder/internal/store/boltstore"
	"github.com/greminder/greminder/internal/store/dbstore"
	"github.com/greminder/greminder/internal/store/levelstore"
	"github.com/greminder/greminder/internal/store/memstore"
)

// OpenBackend opens the named storage backend at path. The memory
// backend ignores path.
func OpenBackend(name, path string) (store.Backend, error) {
	switch name {
	case config.BackendLevelDB, "":
		db, err := levelstore.Open(path)
		if err != nil {
			return nil, err
		}
		return db, nil
	case config.BackendBolt:
		db, err := boltstore.Open(path)
		if err != nil {
			return nil, err
		}
		return db, nil
	case config.BackendSQLite:
		db, err := dbstore.NewSQLiteStore(path)
		if err != nil {
			return nil, err
		}
		return db, nil
	case config.BackendMemory:
		return memstore.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}

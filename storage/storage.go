package storage

import (
	"io"

	"github.com/pkg/errors"

	"github.com/classpoint/assistant/core"
	"github.com/classpoint/assistant/core/school"
	"github.com/classpoint/assistant/storage/boltdb"
	"github.com/classpoint/assistant/storage/database"
	"github.com/classpoint/assistant/storage/inmem"
)

// Backend is a school.Backend that must be closed once done with.
type Backend interface {
	school.Backend
	io.Closer
}

// Open returns the backend selected by conf.Storage.Engine.
func Open(conf *core.Config) (Backend, error) {
	switch conf.Storage.Engine {
	case "memory":
		return inmemdb.Open(), nil
	case "bolt", "":
		db, err := boltdb.Open(conf.Storage.Path)
		if err != nil {
			return nil, err
		}
		return db, nil
	case database.EnginePostgres, database.EngineSQLite:
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, errors.Errorf("unknown storage engine %q", conf.Storage.Engine)
	}
}

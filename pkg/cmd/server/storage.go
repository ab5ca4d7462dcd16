package server

import (
	"github.com/fadliRafidan/smart-lock-api/config"
	"github.com/fadliRafidan/smart-lock-api/pkg/storage"
	"github.com/fadliRafidan/smart-lock-api/pkg/storage/memory"
	"github.com/fadliRafidan/smart-lock-api/pkg/storage/postgres"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// OpenStore returns the storage selected by the configuration. The returned
// close function releases the database connection, if any.
func OpenStore(c *config.Config) (storage.Interface, func() error, error) {
	if c.Storage == config.StorageMemory {
		log.Warn("Using memory storage, device state is lost on exit")
		return memory.NewStore(), func() error { return nil }, nil
	}

	db, err := sqlx.Open("postgres", c.DatabaseURL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open database")
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, errors.Wrap(err, "failed to connect to database")
	}

	return postgres.NewStore(db, c.UnitOfWorkTimeout), db.Close, nil
}

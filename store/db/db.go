package db

import (
	"github.com/pkg/errors"

	"github.com/ayadav/gojo/internal/profile"
	"github.com/ayadav/gojo/store"
	"github.com/ayadav/gojo/store/db/memory"
	"github.com/ayadav/gojo/store/db/postgres"
	"github.com/ayadav/gojo/store/db/sqlite"
)

// NewDBDriver creates a new db driver based on profile.
// memory: development and tests; sqlite: single-node production default;
// postgres: shared production deployments.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "memory":
		driver = memory.NewDB()
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver %q", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}

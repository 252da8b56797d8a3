package postgres

import "errors"

// Sentinel kinds for postgres setup errors.
var (
	ErrConnect = errors.New("connect postgres")
	ErrMigrate = errors.New("migrate postgres")
)

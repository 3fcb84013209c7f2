package repository

import (
	"database/sql"
	"regexp"

	"github.com/sugukuru-dev/dispatch-manager/backend/internal/config"
)

type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
}

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
	}
}

var placeholder = regexp.MustCompile(`\$\d+`)

// rebind rewrites $n placeholders for drivers that only take ?. Arguments are always passed in
// placeholder order.
func (r *Repository) rebind(query string) string {
	if r.cfg.Database.Driver != config.DriverSQLite {
		return query
	}
	return placeholder.ReplaceAllString(query, "?")
}

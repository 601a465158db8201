package postgresql

import (
	"database/sql"
	"sync"

	_ "github.com/lib/pq"
	"github.com/opamenu/om-order/config"
	"github.com/opamenu/om-order/pkg/applogger"
)

var (
	db   *sql.DB
	once sync.Once
)

func GetDatabase() *sql.DB {
	once.Do(func() {
		c := config.Get()
		logger := applogger.GetLogrus()

		conn, err := sql.Open("postgres", c.Postgres.DSN)
		if err != nil {
			logger.WithField("object", "postgresql").Fatal(err)
		}

		conn.SetMaxOpenConns(c.Postgres.MaxOpenConns)
		conn.SetMaxIdleConns(c.Postgres.MaxIdleConns)
		conn.SetConnMaxLifetime(c.Postgres.ConnMaxLifetime)

		db = conn
	})

	return db
}

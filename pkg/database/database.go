package database

import (
	"context"
	"database/sql"
	"fmt"

	"proxy-discovery/pkg/models"

	"github.com/spf13/viper"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type DB struct {
	*bun.DB
}

// DSN builds the postgres connection string from the database.* keys.
func DSN(v *viper.Viper) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		v.GetString("database.user"),
		v.GetString("database.password"),
		v.GetString("database.host"),
		v.GetInt("database.port"),
		v.GetString("database.dbname"),
		v.GetString("database.sslmode"),
	)
}

func NewDB() (*DB, error) {
	return Open(DSN(viper.GetViper()))
}

// Open connects to dsn and checks the connection.
func Open(dsn string) (*DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))

	db := bun.NewDB(sqldb, pgdialect.New())

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %v", err)
	}

	return &DB{db}, nil
}

// InitSchema creates the necessary tables if they don't exist
func (db *DB) InitSchema(ctx context.Context) error {
	_, err := db.NewCreateTable().
		Model((*models.Candidate)(nil)).
		IfNotExists().
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to create table: %v", err)
	}

	_, err = db.NewCreateIndex().
		Model((*models.Candidate)(nil)).
		Index("candidates_protocol_idx").
		Column("protocol").
		IfNotExists().
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to create index: %v", err)
	}

	return nil
}

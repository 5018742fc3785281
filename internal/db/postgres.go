package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
)

const pgxDriverName = "pgx"

// PostgresClient manages the connection to PostgreSQL. A client created
// from a connection string is opened on demand and owns its connection; a
// client wrapping an existing *sql.DB never closes it.
type PostgresClient struct {
	db         *sql.DB
	connString string
	driverName string
	owned      bool
}

// NewPostgresClient creates a client that will connect with connString
// when opened
func NewPostgresClient(connString string) *PostgresClient {
	return &PostgresClient{connString: connString, driverName: pgxDriverName}
}

// NewPostgresClientFromDB wraps an already open connection. Ownership and
// closing remain with the caller.
func NewPostgresClientFromDB(db *sql.DB) *PostgresClient {
	return &PostgresClient{db: db}
}

// IsOpen reports whether the client holds a connection
func (c *PostgresClient) IsOpen() bool {
	return c.db != nil
}

// Open connects to the database and tests the connection
func (c *PostgresClient) Open(ctx context.Context) error {
	if c.IsOpen() {
		return nil
	}
	if c.connString == "" {
		return errors.New("connection string is required")
	}

	if c.driverName == pgxDriverName {
		if _, err := pgx.ParseConfig(c.connString); err != nil {
			return fmt.Errorf("invalid connection string: %w", err)
		}
	}

	db, err := sql.Open(c.driverName, c.connString)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.db = db
	c.owned = true
	return nil
}

// Close closes the database connection if the client opened it
func (c *PostgresClient) Close() error {
	if c.db == nil || !c.owned {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	c.owned = false
	return err
}

// GetConnection returns the underlying connection
func (c *PostgresClient) GetConnection() *sql.DB {
	return c.db
}

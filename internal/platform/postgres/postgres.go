// Package postgres opens the registry database and applies its schema.
package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"tns/internal/platform/config"
	"tns/pkg/domain"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Open connects with the pgx driver and verifies the connection.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Migrate applies embedded migrations that have not run yet, each in its own
// transaction, in file name order.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name       TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := applyMigration(ctx, db, name); err != nil {
			return err
		}
	}
	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, name string) error {
	body, err := migrations.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", name, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", name, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
	if err != nil {
		return fmt.Errorf("record migration %s: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	if _, err := tx.ExecContext(ctx, string(body)); err != nil {
		return fmt.Errorf("apply migration %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", name, err)
	}
	return nil
}

// Uint64 stores unsigned amounts in NUMERIC(20,0) columns, which BIGINT cannot hold.
type Uint64 uint64

func (u Uint64) Value() (driver.Value, error) {
	return strconv.FormatUint(uint64(u), 10), nil
}

func (u *Uint64) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case int64:
		if v < 0 {
			return fmt.Errorf("scan uint64: negative value %d", v)
		}
		*u = Uint64(v)
		return nil
	default:
		return fmt.Errorf("scan uint64: unexpected type %T", src)
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("scan uint64: %w", err)
	}
	*u = Uint64(n)
	return nil
}

// NullAddress reads and writes a nullable BYTEA address column.
type NullAddress struct {
	Address domain.Address
	Valid   bool
}

// NullAddressFrom wraps an optional address.
func NullAddressFrom(a *domain.Address) NullAddress {
	if a == nil {
		return NullAddress{}
	}
	return NullAddress{Address: *a, Valid: true}
}

// Ptr returns the address or nil.
func (n NullAddress) Ptr() *domain.Address {
	if !n.Valid {
		return nil
	}
	a := n.Address
	return &a
}

func (n NullAddress) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Address.Bytes(), nil
}

func (n *NullAddress) Scan(src any) error {
	if src == nil {
		*n = NullAddress{}
		return nil
	}
	if err := n.Address.Scan(src); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

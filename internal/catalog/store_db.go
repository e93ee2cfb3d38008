package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-sqlite3"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second

	sqliteBusyTimeoutMS = 5000
)

type dialect struct {
	driver string
	schema string
	list   string
	insert string
	update string
	delete string
}

var sqliteDialect = dialect{
	driver: "sqlite3",
	schema: `
		CREATE TABLE IF NOT EXISTS products(
			id integer primary key autoincrement,
			name text,
			price real,
			quantity integer,
			description text
		)`,
	list: `
		SELECT id, name, price, quantity, description
		FROM products
		ORDER BY id ASC`,
	insert: `
		INSERT INTO products (name, price, description, quantity)
		VALUES (?, ?, ?, ?)
		RETURNING id`,
	update: `
		UPDATE products
		SET name = ?, price = ?, description = ?, quantity = ?
		WHERE id = ?`,
	delete: `DELETE FROM products WHERE id = ?`,
}

var postgresDialect = dialect{
	driver: "pgx",
	schema: `
		CREATE TABLE IF NOT EXISTS products(
			id BIGSERIAL PRIMARY KEY,
			name TEXT,
			price DOUBLE PRECISION,
			quantity BIGINT,
			description TEXT
		)`,
	list: `
		SELECT id, name, price, quantity, description
		FROM products
		ORDER BY id ASC`,
	insert: `
		INSERT INTO products (name, price, description, quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
	update: `
		UPDATE products
		SET name = $1, price = $2, description = $3, quantity = $4
		WHERE id = $5`,
	delete: `DELETE FROM products WHERE id = $1`,
}

// DBStore keeps products in a relational table reached through database/sql.
type DBStore struct {
	db *sql.DB
	d  dialect
}

// OpenSQLite opens (creating if needed) the single-file database at path.
func OpenSQLite(path string) (*DBStore, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL", path, sqliteBusyTimeoutMS)
	db, err := sql.Open(sqliteDialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// a single connection serialises writers
	db.SetMaxOpenConns(1)
	return &DBStore{db: db, d: sqliteDialect}, nil
}

func OpenPostgres(dsn string) (*DBStore, error) {
	db, err := sql.Open(postgresDialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return &DBStore{db: db, d: postgresDialect}, nil
}

func (s *DBStore) Close() error {
	return s.db.Close()
}

func (s *DBStore) Init(ctx context.Context) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		if _, err := s.db.ExecContext(ctx, s.d.schema); err != nil {
			return fmt.Errorf("create products table: %w", err)
		}
		return nil
	})
}

func (s *DBStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *DBStore) List(ctx context.Context) ([]Product, error) {
	var out []Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, s.d.list)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]Product, 0, 16)
		for rows.Next() {
			p, err := scanProduct(rows)
			if err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *DBStore) Insert(ctx context.Context, in ProductInput) (int64, error) {
	var id int64

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, s.d.insert,
			in.Name, in.Price, in.Description, in.Quantity,
		).Scan(&id)
	})
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, ErrNoRowID
	}
	return id, nil
}

func (s *DBStore) Update(ctx context.Context, id int64, in ProductInput) (int64, error) {
	return s.exec(ctx, s.d.update, in.Name, in.Price, in.Description, in.Quantity, id)
}

func (s *DBStore) Delete(ctx context.Context, id int64) (int64, error) {
	return s.exec(ctx, s.d.delete, id)
}

func (s *DBStore) exec(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var (
		p          Product
		name, desc sql.NullString
		price      sql.NullFloat64
		quantity   sql.NullInt64
	)
	if err := row.Scan(&p.ID, &name, &price, &quantity, &desc); err != nil {
		return Product{}, err
	}

	if name.Valid {
		p.Name = &name.String
	}
	if price.Valid {
		p.Price = &price.Float64
	}
	if quantity.Valid {
		p.Quantity = &quantity.Int64
	}
	if desc.Valid {
		p.Description = &desc.String
	}
	return p, nil
}

// ErrorCode extracts the driver error code (SQLite extended code or Postgres
// SQLSTATE) for logging. It returns "" for other errors.
func ErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode.Error()
	}
	return ""
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

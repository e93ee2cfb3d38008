package catalog

import (
	"context"
	"database/sql"
	"errors"
)

var ErrNoRowID = errors.New("insert produced no row id")

// Product is a row of the products table. Price and Quantity are nil when
// the stored value is NULL, which is what a non-numeric input coerces to.
type Product struct {
	ID          int64    `json:"id"`
	Name        *string  `json:"name"`
	Price       *float64 `json:"price"`
	Quantity    *int64   `json:"quantity"`
	Description *string  `json:"description"`
}

// ProductInput carries coerced column values; an invalid Null* binds NULL.
type ProductInput struct {
	Name        sql.NullString
	Price       sql.NullFloat64
	Quantity    sql.NullInt64
	Description sql.NullString
}

type Store interface {
	Init(ctx context.Context) error
	Ping(ctx context.Context) error
	List(ctx context.Context) ([]Product, error)
	Insert(ctx context.Context, in ProductInput) (int64, error)
	Update(ctx context.Context, id int64, in ProductInput) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

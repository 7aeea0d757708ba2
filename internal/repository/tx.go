package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/go-sql-driver/mysql"
)

// querier is the subset of *sql.DB and *sql.Tx the repositories use.
type querier interface {
    ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
    QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
    QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// withTx runs fn inside a transaction carried by the context.  Nested calls
// join the outer transaction.  fn's error rolls everything back.
func withTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) error {
    if txFromContext(ctx) != nil {
        return fn(ctx)
    }

    tx, err := db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

func txFromContext(ctx context.Context) *sql.Tx {
    tx, _ := ctx.Value(txKey{}).(*sql.Tx)
    return tx
}

// conn returns the transaction in ctx, or db when there is none.
func conn(ctx context.Context, db *sql.DB) querier {
    if tx := txFromContext(ctx); tx != nil {
        return tx
    }
    return db
}

// MySQL error numbers the repositories translate.
const (
    errDupEntry        = 1062
    errRowIsReferenced = 1451
    errNoReferencedRow = 1452
)

func isMySQLError(err error, number uint16) bool {
    var myErr *mysql.MySQLError
    return errors.As(err, &myErr) && myErr.Number == number
}

package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iyhunko/catalogo-prodotti/internal/model"
	"github.com/iyhunko/catalogo-prodotti/internal/repository"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	pqCheckViolationErrCode = "23514" // PostgreSQL check violation error code. See https://www.postgresql.org/docs/14/errcodes-appendix.html

	productColumns = "id, nome, prezzo, disponibile"
)

// ProductRepository implements the repository.ProductRepository interface on PostgreSQL.
type ProductRepository struct {
	db  *sql.DB
	txn *sql.Tx
}

// NewProductRepository creates a new ProductRepository instance.
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// getExecutor returns the active executor (transaction if exists, otherwise db)
func (r *ProductRepository) getExecutor() dbExecutor {
	if r.txn != nil {
		return r.txn
	}
	return r.db
}

// WithinTransaction executes a function within a database transaction
func (r *ProductRepository) WithinTransaction(ctx context.Context, fn func(repo *ProductRepository) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Create a new repository instance with the transaction
	txRepo := &ProductRepository{
		db:  r.db,
		txn: tx,
	}

	if err := fn(txRepo); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to rollback transaction: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// List retrieves every product ordered by id.
func (r *ProductRepository) List(ctx context.Context) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM prodotti ORDER BY id`

	executor := r.getExecutor()
	stmt, err := executor.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var product model.Product
		if err := rows.Scan(&product.ID, &product.Name, &product.Price, &product.Available); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return products, nil
}

// FindByID retrieves a single product by ID.
func (r *ProductRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	return r.findByID(ctx, `SELECT `+productColumns+` FROM prodotti WHERE id = $1`, id)
}

// Create inserts a new product; the database assigns the id.
func (r *ProductRepository) Create(ctx context.Context, product model.NewProduct) (model.Product, error) {
	query := `INSERT INTO prodotti (nome, prezzo, disponibile) VALUES ($1, $2, $3) RETURNING ` + productColumns

	executor := r.getExecutor()
	stmt, err := executor.PrepareContext(ctx, query)
	if err != nil {
		return model.Product{}, fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	var created model.Product
	err = stmt.QueryRowContext(ctx, product.Name, product.Price, product.Available).
		Scan(&created.ID, &created.Name, &created.Price, &created.Available)
	if err != nil {
		return model.Product{}, fmt.Errorf("failed to insert product: %w", mapError(err))
	}

	return created, nil
}

// Modify locks the row, applies fn and writes the result back in one transaction.
func (r *ProductRepository) Modify(ctx context.Context, id int64, fn func(product *model.Product) error) (model.Product, error) {
	var updated model.Product
	err := r.WithinTransaction(ctx, func(txRepo *ProductRepository) error {
		product, err := txRepo.findByID(ctx, `SELECT `+productColumns+` FROM prodotti WHERE id = $1 FOR UPDATE`, id)
		if err != nil {
			return err
		}
		if err := fn(&product); err != nil {
			return err
		}
		product.ID = id

		stmt, err := txRepo.getExecutor().PrepareContext(ctx,
			`UPDATE prodotti SET nome = $1, prezzo = $2, disponibile = $3, updated_at = now() WHERE id = $4`)
		if err != nil {
			return fmt.Errorf("failed to prepare update statement: %w", err)
		}
		defer stmt.Close()

		if _, err := stmt.ExecContext(ctx, product.Name, product.Price, product.Available, id); err != nil {
			return fmt.Errorf("failed to update product: %w", mapError(err))
		}
		updated = product
		return nil
	})
	if err != nil {
		return model.Product{}, err
	}
	return updated, nil
}

// Delete deletes a product by ID and returns the deleted row.
func (r *ProductRepository) Delete(ctx context.Context, id int64) (model.Product, error) {
	product, err := r.findByID(ctx, `DELETE FROM prodotti WHERE id = $1 RETURNING `+productColumns, id)
	if err != nil {
		return model.Product{}, fmt.Errorf("failed to delete product: %w", err)
	}
	return product, nil
}

func (r *ProductRepository) findByID(ctx context.Context, query string, id int64) (model.Product, error) {
	executor := r.getExecutor()
	stmt, err := executor.PrepareContext(ctx, query)
	if err != nil {
		return model.Product{}, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	var result model.Product
	err = stmt.QueryRowContext(ctx, id).Scan(&result.ID, &result.Name, &result.Price, &result.Available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Product{}, fmt.Errorf("product %d: %w", id, repository.ErrNotFound)
		}
		return model.Product{}, fmt.Errorf("failed to query product: %w", err)
	}

	return result, nil
}

// mapError turns constraint violations into model.ErrInvalidProduct.
// Both the pgx and the lib/pq drivers are recognised.
func mapError(err error) error {
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) && pgError.Code == pqCheckViolationErrCode {
		return fmt.Errorf("%w: %s", model.ErrInvalidProduct, pgError.Message)
	}
	var pqError *pq.Error
	if errors.As(err, &pqError) && string(pqError.Code) == pqCheckViolationErrCode {
		return fmt.Errorf("%w: %s", model.ErrInvalidProduct, pqError.Message)
	}
	return err
}

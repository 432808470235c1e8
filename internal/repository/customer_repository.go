package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"wellatlas/internal/domain"
)

type CustomerRepository struct {
	db *sqlx.DB
}

func NewCustomerRepository(db *sqlx.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	query := `INSERT INTO customers (name) VALUES ($1) RETURNING id`

	err := r.db.QueryRowContext(ctx, query, customer.Name).Scan(&customer.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: customer %q", domain.ErrConflict, customer.Name)
	}
	return err
}

func (r *CustomerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	var customers []domain.Customer
	query := `SELECT * FROM customers ORDER BY name ASC`

	if err := r.db.SelectContext(ctx, &customers, query); err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	var customer domain.Customer
	query := `SELECT * FROM customers WHERE id = $1`

	if err := r.db.GetContext(ctx, &customer, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

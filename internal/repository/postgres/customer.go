package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"dumpster-backoffice/internal/domain"
	"dumpster-backoffice/internal/logger"
	"dumpster-backoffice/internal/repository"
)

type customerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) repository.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, c *domain.Customer) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedOn = time.Now().UTC()
	query := `INSERT INTO customers (id, name, email, phone, address, created_on) VALUES ($1, $2, $3, $4, $5, $6)`
	logger.DatabaseCall("customers.Create", query, "id", c.ID)
	_, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.Email, c.Phone, c.Address, c.CreatedOn)
	return mapError("create customer", err)
}

func (r *customerRepository) Update(ctx context.Context, c *domain.Customer) error {
	query := `UPDATE customers SET name=$1, email=$2, phone=$3, address=$4 WHERE id=$5`
	logger.DatabaseCall("customers.Update", query, "id", c.ID)
	res, err := r.db.ExecContext(ctx, query, c.Name, c.Email, c.Phone, c.Address, c.ID)
	if err != nil {
		return mapError("update customer", err)
	}
	return requireRow(res, "update customer")
}

func (r *customerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	query := `SELECT id, name, email, phone, address, created_on FROM customers ORDER BY name, id`
	logger.DatabaseCall("customers.List", query)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError("list customers", err)
	}
	defer rows.Close()

	customers := []domain.Customer{}
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedOn); err != nil {
			return nil, mapError("scan customer", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list customers", err)
	}
	logger.DatabaseResult("customers.List", int64(len(customers)), nil)
	return customers, nil
}

package leads

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists leads.
type Repository interface {
	Create(ctx context.Context, lead Lead) error
}

// PostgresRepository stores leads in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a lead record.
func (r *PostgresRepository) Create(ctx context.Context, lead Lead) error {
	leadID, err := uuid.Parse(lead.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO leads (id, kind, first_name, last_name, email, phone, address,
        city_to_buy, price_range, home_price_range, looking_price_range, has_agent, also_selling,
        additional_details, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		leadID, string(lead.Kind), lead.FirstName, lead.LastName, lead.Email, lead.Phone, lead.Address,
		lead.CityToBuy, lead.PriceRange, lead.HomePriceRange, lead.LookingPriceRange, lead.HasAgent,
		lead.AlsoSelling, lead.AdditionalDetails, lead.CreatedAt.UTC())
	return err
}

const schema = `CREATE TABLE IF NOT EXISTS leads (
    id UUID PRIMARY KEY,
    kind TEXT NOT NULL,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    email TEXT NOT NULL,
    phone TEXT NOT NULL,
    address TEXT NOT NULL DEFAULT '',
    city_to_buy TEXT NOT NULL DEFAULT '',
    price_range TEXT NOT NULL DEFAULT '',
    home_price_range TEXT NOT NULL DEFAULT '',
    looking_price_range TEXT NOT NULL DEFAULT '',
    has_agent BOOLEAN NOT NULL DEFAULT FALSE,
    also_selling BOOLEAN,
    additional_details TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL
)`

// EnsureSchema creates the leads table when it does not exist yet.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, schema)
	return err
}

package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/adigiz/leadgen/internal/db"
	"github.com/adigiz/leadgen/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS locations (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name       TEXT NOT NULL,
	slug       TEXT NOT NULL UNIQUE,
	country    TEXT NOT NULL,
	state      TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS categories (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name        TEXT NOT NULL,
	search_term TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS leads (
	id             TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	business_name  TEXT NOT NULL,
	address        TEXT,
	phone          TEXT,
	rating         TEXT,
	review_count   INTEGER NOT NULL DEFAULT 0,
	external_url   TEXT,
	location_id    TEXT REFERENCES locations(id),
	category_id    TEXT NOT NULL REFERENCES categories(id),
	status         TEXT NOT NULL DEFAULT 'new',
	is_new_listing BOOLEAN NOT NULL DEFAULT false,
	city           TEXT,
	district       TEXT,
	state          TEXT,
	postal_code    TEXT,
	country        TEXT NOT NULL DEFAULT 'Indonesia',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT leads_identity UNIQUE (business_name, location_id, category_id)
);

CREATE INDEX IF NOT EXISTS idx_leads_location_id ON leads(location_id);
CREATE INDEX IF NOT EXISTS idx_leads_category_id ON leads(category_id);
CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateCategory(ctx context.Context, c *model.Category) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO categories (id, name, search_term) VALUES ($1, $2, $3)`,
		c.ID, c.Name, c.SearchTerm,
	)
	return eris.Wrapf(err, "postgres: create category %s", c.Name)
}

func (s *PostgresStore) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	var c model.Category
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, search_term FROM categories WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &c.SearchTerm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get category %s", id)
	}
	return &c, nil
}

func (s *PostgresStore) GetLocation(ctx context.Context, id string) (*model.Location, error) {
	loc, err := s.scanLocation(s.pool.QueryRow(ctx,
		`SELECT id, name, slug, country, state, created_at FROM locations WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get location %s", id)
	}
	return loc, nil
}

func (s *PostgresStore) FindLocationBySlug(ctx context.Context, slug string) (*model.Location, error) {
	loc, err := s.scanLocation(s.pool.QueryRow(ctx,
		`SELECT id, name, slug, country, state, created_at FROM locations WHERE slug = $1`,
		slug,
	))
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: find location by slug %s", slug)
	}
	return loc, nil
}

func (s *PostgresStore) scanLocation(row pgx.Row) (*model.Location, error) {
	var loc model.Location
	err := row.Scan(&loc.ID, &loc.Name, &loc.Slug, &loc.Country, &loc.State, &loc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &loc, nil
}

// UpsertLocation inserts with ON CONFLICT DO NOTHING, then selects the row
// that won. The insert-ignore-then-select shape makes concurrent
// find-or-create on the same slug converge on one row.
func (s *PostgresStore) UpsertLocation(ctx context.Context, loc *model.Location) error {
	id := loc.ID
	if id == "" {
		id = uuid.New().String()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO locations (id, name, slug, country, state)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (slug) DO NOTHING`,
		id, loc.Name, loc.Slug, loc.Country, loc.State,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: upsert location %s", loc.Slug)
	}

	stored, err := s.FindLocationBySlug(ctx, loc.Slug)
	if err != nil {
		return err
	}
	if stored == nil {
		return eris.Errorf("postgres: location %s missing after upsert", loc.Slug)
	}
	*loc = *stored
	return nil
}

func (s *PostgresStore) EnrichLocationState(ctx context.Context, id, state string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE locations SET state = $2 WHERE id = $1 AND state IS NULL`,
		id, state,
	)
	return eris.Wrapf(err, "postgres: enrich location state %s", id)
}

func (s *PostgresStore) CreateLead(ctx context.Context, lead *model.Lead) error {
	id := lead.ID
	if id == "" {
		id = uuid.New().String()
	}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO leads (
			id, business_name, address, phone, rating, review_count, external_url,
			location_id, category_id, status, is_new_listing,
			city, district, state, postal_code, country
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11,
			$12, $13, $14, $15, $16
		) RETURNING id, created_at`,
		id, lead.BusinessName, lead.Address, lead.Phone, lead.Rating, lead.ReviewCount, lead.ExternalURL,
		lead.LocationID, lead.CategoryID, string(lead.Status), lead.IsNewListing,
		lead.City, lead.District, lead.State, lead.PostalCode, lead.Country,
	).Scan(&lead.ID, &lead.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return eris.Wrapf(err, "postgres: create lead %s", lead.BusinessName)
	}
	return nil
}

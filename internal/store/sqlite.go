package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/adigiz/leadgen/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS locations (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	slug       TEXT NOT NULL UNIQUE,
	country    TEXT NOT NULL,
	state      TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS categories (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	search_term TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS leads (
	id             TEXT PRIMARY KEY,
	business_name  TEXT NOT NULL,
	address        TEXT,
	phone          TEXT,
	rating         TEXT,
	review_count   INTEGER NOT NULL DEFAULT 0,
	external_url   TEXT,
	location_id    TEXT REFERENCES locations(id),
	category_id    TEXT NOT NULL REFERENCES categories(id),
	status         TEXT NOT NULL DEFAULT 'new',
	is_new_listing INTEGER NOT NULL DEFAULT 0,
	city           TEXT,
	district       TEXT,
	state          TEXT,
	postal_code    TEXT,
	country        TEXT NOT NULL DEFAULT 'Indonesia',
	created_at     DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (business_name, location_id, category_id)
);

CREATE INDEX IF NOT EXISTS idx_leads_location_id ON leads(location_id);
CREATE INDEX IF NOT EXISTS idx_leads_category_id ON leads(category_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateCategory inserts a category. Categories are owned by the admin
// surface; this exists for the CLI and tests.
func (s *SQLiteStore) CreateCategory(ctx context.Context, c *model.Category) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, search_term) VALUES (?, ?, ?)`,
		c.ID, c.Name, c.SearchTerm,
	)
	return eris.Wrapf(err, "sqlite: create category %s", c.Name)
}

func (s *SQLiteStore) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	var c model.Category
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, search_term FROM categories WHERE id = ?`,
		id,
	).Scan(&c.ID, &c.Name, &c.SearchTerm)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: get category %s", id)
	}
	return &c, nil
}

func (s *SQLiteStore) GetLocation(ctx context.Context, id string) (*model.Location, error) {
	loc, err := s.scanLocation(s.db.QueryRowContext(ctx,
		`SELECT id, name, slug, country, state, created_at FROM locations WHERE id = ?`,
		id,
	))
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get location %s", id)
	}
	return loc, nil
}

func (s *SQLiteStore) FindLocationBySlug(ctx context.Context, slug string) (*model.Location, error) {
	loc, err := s.scanLocation(s.db.QueryRowContext(ctx,
		`SELECT id, name, slug, country, state, created_at FROM locations WHERE slug = ?`,
		slug,
	))
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: find location by slug %s", slug)
	}
	return loc, nil
}

func (s *SQLiteStore) scanLocation(row *sql.Row) (*model.Location, error) {
	var loc model.Location
	err := row.Scan(&loc.ID, &loc.Name, &loc.Slug, &loc.Country, &loc.State, &loc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &loc, nil
}

func (s *SQLiteStore) UpsertLocation(ctx context.Context, loc *model.Location) error {
	id := loc.ID
	if id == "" {
		id = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO locations (id, name, slug, country, state)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (slug) DO NOTHING`,
		id, loc.Name, loc.Slug, loc.Country, loc.State,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: upsert location %s", loc.Slug)
	}

	stored, err := s.FindLocationBySlug(ctx, loc.Slug)
	if err != nil {
		return err
	}
	if stored == nil {
		return eris.Errorf("sqlite: location %s missing after upsert", loc.Slug)
	}
	*loc = *stored
	return nil
}

func (s *SQLiteStore) EnrichLocationState(ctx context.Context, id, state string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE locations SET state = ? WHERE id = ? AND state IS NULL`,
		state, id,
	)
	return eris.Wrapf(err, "sqlite: enrich location state %s", id)
}

func (s *SQLiteStore) CreateLead(ctx context.Context, lead *model.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leads (
			id, business_name, address, phone, rating, review_count, external_url,
			location_id, category_id, status, is_new_listing,
			city, district, state, postal_code, country, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.ID, lead.BusinessName, lead.Address, lead.Phone, lead.Rating, lead.ReviewCount, lead.ExternalURL,
		lead.LocationID, lead.CategoryID, string(lead.Status), lead.IsNewListing,
		lead.City, lead.District, lead.State, lead.PostalCode, lead.Country, now,
	)
	if err != nil {
		if isSQLiteConstraint(err) {
			return ErrDuplicate
		}
		return eris.Wrapf(err, "sqlite: create lead %s", lead.BusinessName)
	}
	lead.CreatedAt = now
	return nil
}

// isSQLiteConstraint reports whether err is a SQLITE_CONSTRAINT error
// (primary result code 19; extended codes keep it in the low byte).
func isSQLiteConstraint(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}

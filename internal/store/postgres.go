package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/rezon-bio/leadintel/internal/db"
	"github.com/rezon-bio/leadintel/internal/model"
)

// PostgresStore implements Store using pgxpool. Same document layout as the
// SQLite backend: JSONB data column plus indexed filter columns.
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

// NewPostgresWithPool wraps an existing pool; used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	normalized_name   TEXT NOT NULL,
	enrichment_status TEXT NOT NULL,
	data              JSONB NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS leads (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	normalized_name   TEXT NOT NULL,
	company_id        TEXT NOT NULL,
	enrichment_status TEXT NOT NULL,
	monitor_flag      BOOLEAN NOT NULL DEFAULT false,
	data              JSONB NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS trigger_events (
	id          TEXT PRIMARY KEY,
	lead_id     TEXT NOT NULL,
	kind        TEXT NOT NULL,
	status      TEXT NOT NULL,
	detected_at TIMESTAMPTZ NOT NULL,
	data        JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_companies_name ON companies(name);
CREATE INDEX IF NOT EXISTS idx_companies_normalized ON companies(normalized_name);
CREATE INDEX IF NOT EXISTS idx_companies_status ON companies(enrichment_status);
CREATE INDEX IF NOT EXISTS idx_leads_company ON leads(company_id);
CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(enrichment_status);
CREATE INDEX IF NOT EXISTS idx_triggers_lead ON trigger_events(lead_id);
CREATE INDEX IF NOT EXISTS idx_triggers_status ON trigger_events(status);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// Companies

func (s *PostgresStore) CreateCompany(ctx context.Context, c *model.Company) error {
	stampNew(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	data, err := json.Marshal(c)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal company")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO companies (id, name, normalized_name, enrichment_status, data, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.Name, c.NormalizedName, string(c.EnrichmentStatus), data, c.CreatedAt, c.UpdatedAt,
	)
	return eris.Wrap(err, "postgres: insert company")
}

func (s *PostgresStore) GetCompany(ctx context.Context, id string) (*model.Company, error) {
	return pgScanDoc[model.Company](s.pool.QueryRow(ctx,
		`SELECT data FROM companies WHERE id = $1`, id), "company")
}

func (s *PostgresStore) GetCompanyByName(ctx context.Context, name string) (*model.Company, error) {
	return pgScanDoc[model.Company](s.pool.QueryRow(ctx,
		`SELECT data FROM companies WHERE name = $1 LIMIT 1`, name), "company")
}

func (s *PostgresStore) UpdateCompany(ctx context.Context, c *model.Company) error {
	c.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(c)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal company")
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE companies SET name = $1, normalized_name = $2, enrichment_status = $3, data = $4, updated_at = $5
		 WHERE id = $6`,
		c.Name, c.NormalizedName, string(c.EnrichmentStatus), data, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update company %s", c.ID)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteCompany(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete company %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListCompanies(ctx context.Context, filter CompanyFilter) ([]model.Company, error) {
	query := `SELECT data FROM companies WHERE true`
	args := []any{}
	argIdx := 1

	if filter.EnrichmentStatus != "" {
		query += fmt.Sprintf(` AND enrichment_status = $%d`, argIdx)
		args = append(args, string(filter.EnrichmentStatus))
		argIdx++
	}
	if filter.NameContains != "" {
		query += fmt.Sprintf(` AND name ILIKE $%d`, argIdx)
		args = append(args, "%"+filter.NameContains+"%")
		argIdx++
	}
	query += ` ORDER BY created_at`
	query, args = pgApplyPage(query, args, argIdx, filter.Limit, filter.Offset)
	return pgListDocs[model.Company](ctx, s.pool, query, args, "companies")
}

// Leads

func (s *PostgresStore) CreateLead(ctx context.Context, l *model.Lead) error {
	stampNew(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	data, err := json.Marshal(l)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal lead")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO leads (id, name, normalized_name, company_id, enrichment_status, monitor_flag, data, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		l.ID, l.Name, l.NormalizedName, l.CompanyID, string(l.EnrichmentStatus), l.MonitorFlag,
		data, l.CreatedAt, l.UpdatedAt,
	)
	return eris.Wrap(err, "postgres: insert lead")
}

func (s *PostgresStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	return pgScanDoc[model.Lead](s.pool.QueryRow(ctx,
		`SELECT data FROM leads WHERE id = $1`, id), "lead")
}

func (s *PostgresStore) GetLeadByName(ctx context.Context, name, companyID string) (*model.Lead, error) {
	return pgScanDoc[model.Lead](s.pool.QueryRow(ctx,
		`SELECT data FROM leads WHERE name = $1 AND company_id = $2 LIMIT 1`, name, companyID), "lead")
}

func (s *PostgresStore) UpdateLead(ctx context.Context, l *model.Lead) error {
	l.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(l)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal lead")
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET name = $1, normalized_name = $2, company_id = $3, enrichment_status = $4, monitor_flag = $5, data = $6, updated_at = $7
		 WHERE id = $8`,
		l.Name, l.NormalizedName, l.CompanyID, string(l.EnrichmentStatus), l.MonitorFlag,
		data, l.UpdatedAt, l.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update lead %s", l.ID)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteLead(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete lead %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT data FROM leads WHERE true`
	args := []any{}
	argIdx := 1

	if filter.CompanyID != "" {
		query += fmt.Sprintf(` AND company_id = $%d`, argIdx)
		args = append(args, filter.CompanyID)
		argIdx++
	}
	if filter.EnrichmentStatus != "" {
		query += fmt.Sprintf(` AND enrichment_status = $%d`, argIdx)
		args = append(args, string(filter.EnrichmentStatus))
		argIdx++
	}
	if filter.MonitorOnly {
		query += ` AND monitor_flag = true`
	}
	query += ` ORDER BY created_at`
	query, args = pgApplyPage(query, args, argIdx, filter.Limit, filter.Offset)
	return pgListDocs[model.Lead](ctx, s.pool, query, args, "leads")
}

// Trigger events

func (s *PostgresStore) CreateTrigger(ctx context.Context, t *model.TriggerEvent) error {
	stampNew(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if t.DetectedAt.IsZero() {
		t.DetectedAt = t.CreatedAt
	}
	data, err := json.Marshal(t)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal trigger")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO trigger_events (id, lead_id, kind, status, detected_at, data, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.LeadID, string(t.Kind), string(t.Status), t.DetectedAt, data, t.CreatedAt, t.UpdatedAt,
	)
	return eris.Wrap(err, "postgres: insert trigger")
}

func (s *PostgresStore) GetTrigger(ctx context.Context, id string) (*model.TriggerEvent, error) {
	return pgScanDoc[model.TriggerEvent](s.pool.QueryRow(ctx,
		`SELECT data FROM trigger_events WHERE id = $1`, id), "trigger")
}

func (s *PostgresStore) UpdateTrigger(ctx context.Context, t *model.TriggerEvent) error {
	t.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(t)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal trigger")
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE trigger_events SET lead_id = $1, kind = $2, status = $3, detected_at = $4, data = $5, updated_at = $6
		 WHERE id = $7`,
		t.LeadID, string(t.Kind), string(t.Status), t.DetectedAt, data, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update trigger %s", t.ID)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteTrigger(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM trigger_events WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete trigger %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListTriggers(ctx context.Context, filter TriggerFilter) ([]model.TriggerEvent, error) {
	query := `SELECT data FROM trigger_events WHERE true`
	args := []any{}
	argIdx := 1

	if filter.LeadID != "" {
		query += fmt.Sprintf(` AND lead_id = $%d`, argIdx)
		args = append(args, filter.LeadID)
		argIdx++
	}
	if filter.Kind != "" {
		query += fmt.Sprintf(` AND kind = $%d`, argIdx)
		args = append(args, string(filter.Kind))
		argIdx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	query += ` ORDER BY detected_at DESC`
	query, args = pgApplyPage(query, args, argIdx, filter.Limit, 0)
	return pgListDocs[model.TriggerEvent](ctx, s.pool, query, args, "triggers")
}

// helpers

func pgApplyPage(query string, args []any, argIdx, limit, offset int) (string, []any) {
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, argIdx)
		args = append(args, limit)
		argIdx++
		if offset > 0 {
			query += fmt.Sprintf(` OFFSET $%d`, argIdx)
			args = append(args, offset)
		}
	}
	return query, args
}

func pgScanDoc[T any](row pgx.Row, entity string) (*T, error) {
	var data []byte
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrapf(err, "postgres: scan %s", entity)
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, eris.Wrapf(err, "postgres: unmarshal %s", entity)
	}
	return &v, nil
}

func pgListDocs[T any](ctx context.Context, pool db.Pool, query string, args []any, entity string) ([]T, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list %s", entity)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrapf(err, "postgres: scan %s", entity)
		}
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, eris.Wrapf(err, "postgres: unmarshal %s", entity)
		}
		out = append(out, v)
	}
	return out, eris.Wrapf(rows.Err(), "postgres: list %s iterate", entity)
}

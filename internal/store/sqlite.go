package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/rezon-bio/leadintel/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Records are stored
// as JSON documents with the filterable columns duplicated for indexing.
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
CREATE TABLE IF NOT EXISTS companies (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	normalized_name   TEXT NOT NULL,
	enrichment_status TEXT NOT NULL,
	data              TEXT NOT NULL,
	created_at        DATETIME NOT NULL,
	updated_at        DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS leads (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	normalized_name   TEXT NOT NULL,
	company_id        TEXT NOT NULL,
	enrichment_status TEXT NOT NULL,
	monitor_flag      INTEGER NOT NULL DEFAULT 0,
	data              TEXT NOT NULL,
	created_at        DATETIME NOT NULL,
	updated_at        DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS trigger_events (
	id          TEXT PRIMARY KEY,
	lead_id     TEXT NOT NULL,
	kind        TEXT NOT NULL,
	status      TEXT NOT NULL,
	detected_at DATETIME NOT NULL,
	data        TEXT NOT NULL,
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_companies_name ON companies(name);
CREATE INDEX IF NOT EXISTS idx_companies_normalized ON companies(normalized_name);
CREATE INDEX IF NOT EXISTS idx_companies_status ON companies(enrichment_status);
CREATE INDEX IF NOT EXISTS idx_leads_company ON leads(company_id);
CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(enrichment_status);
CREATE INDEX IF NOT EXISTS idx_triggers_lead ON trigger_events(lead_id);
CREATE INDEX IF NOT EXISTS idx_triggers_status ON trigger_events(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Companies

func (s *SQLiteStore) CreateCompany(ctx context.Context, c *model.Company) error {
	stampNew(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	data, err := json.Marshal(c)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal company")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO companies (id, name, normalized_name, enrichment_status, data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.NormalizedName, string(c.EnrichmentStatus), string(data), c.CreatedAt, c.UpdatedAt,
	)
	return eris.Wrap(err, "sqlite: insert company")
}

func (s *SQLiteStore) GetCompany(ctx context.Context, id string) (*model.Company, error) {
	return scanDoc[model.Company](s.db.QueryRowContext(ctx,
		`SELECT data FROM companies WHERE id = ?`, id), "company")
}

func (s *SQLiteStore) GetCompanyByName(ctx context.Context, name string) (*model.Company, error) {
	return scanDoc[model.Company](s.db.QueryRowContext(ctx,
		`SELECT data FROM companies WHERE name = ? LIMIT 1`, name), "company")
}

func (s *SQLiteStore) UpdateCompany(ctx context.Context, c *model.Company) error {
	c.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(c)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal company")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE companies SET name = ?, normalized_name = ?, enrichment_status = ?, data = ?, updated_at = ?
		 WHERE id = ?`,
		c.Name, c.NormalizedName, string(c.EnrichmentStatus), string(data), c.UpdatedAt, c.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update company %s", c.ID)
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) DeleteCompany(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM companies WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete company %s", id)
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) ListCompanies(ctx context.Context, filter CompanyFilter) ([]model.Company, error) {
	query := `SELECT data FROM companies WHERE 1=1`
	var args []any
	if filter.EnrichmentStatus != "" {
		query += ` AND enrichment_status = ?`
		args = append(args, string(filter.EnrichmentStatus))
	}
	if filter.NameContains != "" {
		query += ` AND name LIKE ?`
		args = append(args, "%"+filter.NameContains+"%")
	}
	query += ` ORDER BY created_at`
	query, args = applyPage(query, args, filter.Limit, filter.Offset)
	return listDocs[model.Company](ctx, s.db, query, args, "companies")
}

// Leads

func (s *SQLiteStore) CreateLead(ctx context.Context, l *model.Lead) error {
	stampNew(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	data, err := json.Marshal(l)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal lead")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO leads (id, name, normalized_name, company_id, enrichment_status, monitor_flag, data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Name, l.NormalizedName, l.CompanyID, string(l.EnrichmentStatus), boolToInt(l.MonitorFlag),
		string(data), l.CreatedAt, l.UpdatedAt,
	)
	return eris.Wrap(err, "sqlite: insert lead")
}

func (s *SQLiteStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	return scanDoc[model.Lead](s.db.QueryRowContext(ctx,
		`SELECT data FROM leads WHERE id = ?`, id), "lead")
}

func (s *SQLiteStore) GetLeadByName(ctx context.Context, name, companyID string) (*model.Lead, error) {
	return scanDoc[model.Lead](s.db.QueryRowContext(ctx,
		`SELECT data FROM leads WHERE name = ? AND company_id = ? LIMIT 1`, name, companyID), "lead")
}

func (s *SQLiteStore) UpdateLead(ctx context.Context, l *model.Lead) error {
	l.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(l)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal lead")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET name = ?, normalized_name = ?, company_id = ?, enrichment_status = ?, monitor_flag = ?, data = ?, updated_at = ?
		 WHERE id = ?`,
		l.Name, l.NormalizedName, l.CompanyID, string(l.EnrichmentStatus), boolToInt(l.MonitorFlag),
		string(data), l.UpdatedAt, l.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update lead %s", l.ID)
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) DeleteLead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM leads WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete lead %s", id)
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT data FROM leads WHERE 1=1`
	var args []any
	if filter.CompanyID != "" {
		query += ` AND company_id = ?`
		args = append(args, filter.CompanyID)
	}
	if filter.EnrichmentStatus != "" {
		query += ` AND enrichment_status = ?`
		args = append(args, string(filter.EnrichmentStatus))
	}
	if filter.MonitorOnly {
		query += ` AND monitor_flag = 1`
	}
	query += ` ORDER BY created_at`
	query, args = applyPage(query, args, filter.Limit, filter.Offset)
	return listDocs[model.Lead](ctx, s.db, query, args, "leads")
}

// Trigger events

func (s *SQLiteStore) CreateTrigger(ctx context.Context, t *model.TriggerEvent) error {
	stampNew(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if t.DetectedAt.IsZero() {
		t.DetectedAt = t.CreatedAt
	}
	data, err := json.Marshal(t)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal trigger")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO trigger_events (id, lead_id, kind, status, detected_at, data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.LeadID, string(t.Kind), string(t.Status), t.DetectedAt, string(data), t.CreatedAt, t.UpdatedAt,
	)
	return eris.Wrap(err, "sqlite: insert trigger")
}

func (s *SQLiteStore) GetTrigger(ctx context.Context, id string) (*model.TriggerEvent, error) {
	return scanDoc[model.TriggerEvent](s.db.QueryRowContext(ctx,
		`SELECT data FROM trigger_events WHERE id = ?`, id), "trigger")
}

func (s *SQLiteStore) UpdateTrigger(ctx context.Context, t *model.TriggerEvent) error {
	t.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(t)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal trigger")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE trigger_events SET lead_id = ?, kind = ?, status = ?, detected_at = ?, data = ?, updated_at = ?
		 WHERE id = ?`,
		t.LeadID, string(t.Kind), string(t.Status), t.DetectedAt, string(data), t.UpdatedAt, t.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update trigger %s", t.ID)
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) DeleteTrigger(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM trigger_events WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete trigger %s", id)
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) ListTriggers(ctx context.Context, filter TriggerFilter) ([]model.TriggerEvent, error) {
	query := `SELECT data FROM trigger_events WHERE 1=1`
	var args []any
	if filter.LeadID != "" {
		query += ` AND lead_id = ?`
		args = append(args, filter.LeadID)
	}
	if filter.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(filter.Kind))
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY detected_at DESC`
	query, args = applyPage(query, args, filter.Limit, 0)
	return listDocs[model.TriggerEvent](ctx, s.db, query, args, "triggers")
}

// helpers

func stampNew(id *string, createdAt, updatedAt *time.Time) {
	if *id == "" {
		*id = uuid.New().String()
	}
	now := time.Now().UTC()
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = *createdAt
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// applyPage appends LIMIT/OFFSET only when the filter asks for them, so
// unfiltered lists (the resolver cache load) see every row.
func applyPage(query string, args []any, limit, offset int) (string, []any) {
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
		if offset > 0 {
			query += ` OFFSET ?`
			args = append(args, offset)
		}
	}
	return query, args
}

func checkRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "store: rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanDoc[T any](row *sql.Row, entity string) (*T, error) {
	var data string
	if err := row.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, eris.Wrapf(err, "sqlite: scan %s", entity)
	}
	var v T
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal %s", entity)
	}
	return &v, nil
}

func listDocs[T any](ctx context.Context, db *sql.DB, query string, args []any, entity string) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list %s", entity)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrapf(err, "sqlite: scan %s", entity)
		}
		var v T
		if err := json.Unmarshal([]byte(data), &v); err != nil {
			return nil, eris.Wrapf(err, "sqlite: unmarshal %s", entity)
		}
		out = append(out, v)
	}
	return out, eris.Wrapf(rows.Err(), "sqlite: list %s iterate", entity)
}

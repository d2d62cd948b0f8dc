package storeinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-profile-cache/document"
)

// Supported SQL drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// documentRow is the table layout. Envelope fields get their own columns and
// the remaining fields are kept as a JSON object in body.
type documentRow struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	ID        string    `bun:"id,pk"`
	Kind      string    `bun:"kind,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
	CreatedBy string    `bun:"created_by"`
	UpdatedBy string    `bun:"updated_by"`
	IsSeed    bool      `bun:"is_seed,notnull"`
	Body      string    `bun:"body,notnull"`
}

var envelopeColumns = map[string]string{
	document.FieldID:        "d.id",
	document.FieldKind:      "d.kind",
	document.FieldCreatedAt: "d.created_at",
	document.FieldUpdatedAt: "d.updated_at",
	document.FieldCreatedBy: "d.created_by",
	document.FieldUpdatedBy: "d.updated_by",
	document.FieldIsSeed:    "d.is_seed",
}

var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLStore persists documents through bun on sqlite or postgres.
type SQLStore struct {
	db     *bun.DB
	driver string
}

// OpenSQL connects to dsn with driver and creates the documents table if needed.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	var db *bun.DB
	switch driver {
	case DriverSQLite, "sqlite":
		sqldb, err := sql.Open(DriverSQLite, dsn)
		if err != nil {
			return nil, fmt.Errorf("store: open sqlite: %w", err)
		}
		// a second connection to an in-memory database sees an empty database
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
		driver = DriverSQLite
	case DriverPostgres, "postgresql":
		sqldb, err := sql.Open(DriverPostgres, dsn)
		if err != nil {
			return nil, fmt.Errorf("store: open postgres: %w", err)
		}
		db = bun.NewDB(sqldb, pgdialect.New())
		driver = DriverPostgres
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", driver)
	}

	s := &SQLStore{db: db, driver: driver}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*documentRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("store: create documents table: %w", err)
	}
	if _, err := s.db.NewCreateIndex().
		Model((*documentRow)(nil)).
		Index("documents_kind_idx").
		Column("kind").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("store: create kind index: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) Query(ctx context.Context, conds []Condition, limit int) ([]document.Document, error) {
	var rows []documentRow
	q := s.db.NewSelect().Model(&rows)

	for _, c := range conds {
		if err := c.validate(); err != nil {
			return nil, err
		}
		col, err := s.column(c.Field, numeric(c.Values))
		if err != nil {
			return nil, err
		}
		switch c.Op {
		case OpEq:
			q = q.Where("? = ?", bun.Safe(col), sqlValue(c.Values[0]))
		case OpIn:
			if len(c.Values) == 0 {
				return []document.Document{}, nil
			}
			q = q.Where("? IN (?)", bun.Safe(col), bun.In(sqlValues(c.Values)))
		case OpGte:
			q = q.Where("? >= ?", bun.Safe(col), sqlValue(c.Values[0]))
		case OpLte:
			q = q.Where("? <= ?", bun.Safe(col), sqlValue(c.Values[0]))
		case OpBetween:
			q = q.Where("? BETWEEN ? AND ?", bun.Safe(col), sqlValue(c.Values[0]), sqlValue(c.Values[1]))
		}
	}

	q = q.Order("d.created_at ASC", "d.id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("store: query: %w", err)
	}
	return toDocuments(rows)
}

func (s *SQLStore) Add(ctx context.Context, doc document.Document) (string, error) {
	row, err := fromDocument(doc)
	if err != nil {
		return "", err
	}
	if row.ID == "" {
		return "", fmt.Errorf("store: document id required")
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return "", ErrDuplicateID
		}
		return "", fmt.Errorf("store: insert %s: %w", row.ID, err)
	}
	return row.ID, nil
}

func (s *SQLStore) List(ctx context.Context, keys []string, limit int) ([]document.Document, error) {
	var rows []documentRow
	q := s.db.NewSelect().Model(&rows)
	if len(keys) > 0 {
		q = q.Where("d.id IN (?)", bun.In(keys))
	} else {
		q = q.Order("d.created_at ASC", "d.id ASC")
		if limit > 0 {
			q = q.Limit(limit)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}

	docs, err := toDocuments(rows)
	if err != nil || len(keys) == 0 {
		return docs, err
	}

	byID := make(map[string]document.Document, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}
	out := make([]document.Document, 0, len(docs))
	for _, k := range keys {
		if d, ok := byID[k]; ok {
			out = append(out, d)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (s *SQLStore) Update(ctx context.Context, doc document.Document) error {
	row, err := fromDocument(doc)
	if err != nil {
		return err
	}
	res, err := s.db.NewUpdate().Model(&row).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("store: update %s: %w", row.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: update %s: %w", row.ID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// column maps field to an SQL expression. Postgres extracts body fields as
// text, so they are cast to numeric when compared against numbers.
func (s *SQLStore) column(field string, asNumber bool) (string, error) {
	if col, ok := envelopeColumns[field]; ok {
		return col, nil
	}
	if !fieldName.MatchString(field) {
		return "", fmt.Errorf("store: invalid field name %q", field)
	}
	if s.driver == DriverPostgres {
		if asNumber {
			return fmt.Sprintf("((d.body::jsonb->>'%s')::numeric)", field), nil
		}
		return fmt.Sprintf("(d.body::jsonb->>'%s')", field), nil
	}
	return fmt.Sprintf("json_extract(d.body, '$.%s')", field), nil
}

func numeric(vs []any) bool {
	if len(vs) == 0 {
		return false
	}
	for _, v := range vs {
		if _, ok := toFloat(v); !ok {
			return false
		}
	}
	return true
}

func sqlValue(v any) any {
	if s, ok := toString(v); ok {
		return s
	}
	return v
}

func sqlValues(vs []any) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = sqlValue(v)
	}
	return out
}

func fromDocument(doc document.Document) (documentRow, error) {
	fields := doc.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	body, err := json.Marshal(fields)
	if err != nil {
		return documentRow{}, fmt.Errorf("store: encode %s: %w", doc.ID, err)
	}
	return documentRow{
		ID:        doc.ID,
		Kind:      string(doc.Kind),
		CreatedAt: doc.CreatedAt.UTC(),
		UpdatedAt: doc.UpdatedAt.UTC(),
		CreatedBy: doc.CreatedBy,
		UpdatedBy: doc.UpdatedBy,
		IsSeed:    doc.IsSeed,
		Body:      string(body),
	}, nil
}

func toDocuments(rows []documentRow) ([]document.Document, error) {
	out := make([]document.Document, 0, len(rows))
	for _, row := range rows {
		var fields map[string]any
		if err := json.Unmarshal([]byte(row.Body), &fields); err != nil {
			return nil, fmt.Errorf("store: decode %s: %w", row.ID, err)
		}
		out = append(out, document.Document{
			ID:        row.ID,
			Kind:      document.Kind(row.Kind),
			CreatedAt: row.CreatedAt.UTC(),
			UpdatedAt: row.UpdatedAt.UTC(),
			CreatedBy: row.CreatedBy,
			UpdatedBy: row.UpdatedBy,
			IsSeed:    row.IsSeed,
			Fields:    fields,
		})
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"market-dashboard/models"
	"market-dashboard/utils"
)

// Supported values of DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// recordColumns are the raw_records columns written by insertBatch, in order.
var recordColumns = []string{
	"batch_id", "sheet", "line", "period", "status", "neighborhood", "units",
	"priced_value", "area", "rooms", "stage", "project", "company", "unit_price", "unit_area",
}

// SQLStore persists raw spreadsheet rows to PostgreSQL or SQLite so that a
// dashboard can be rebuilt without the original workbook.
type SQLStore struct {
	db     *sql.DB
	driver string
	logger *utils.Logger

	// BatchID identifies the rows of the last Write.
	BatchID string
}

// NewSQLStore opens a connection, waits for the database to answer and runs
// schema migrations.
func NewSQLStore(ctx context.Context, driver, dsn string, retry *utils.RetryConfig, logger *utils.Logger) (*SQLStore, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("sql: unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", driver, err)
	}
	if driver == DriverSQLite {
		// SQLite allows a single writer at a time.
		db.SetMaxOpenConns(1)
	}

	if err := retry.DoContext(ctx, driver+" ping", db.PingContext); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: ping: %w", driver, err)
	}

	s := &SQLStore{db: db, driver: driver, logger: logger}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: migrate: %w", driver, err)
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	id := "id SERIAL PRIMARY KEY"
	created := "created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()"
	if s.driver == DriverSQLite {
		id = "id INTEGER PRIMARY KEY AUTOINCREMENT"
		created = "created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP"
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS raw_records (
			` + id + `,
			batch_id     VARCHAR(36) NOT NULL,
			sheet        TEXT    NOT NULL DEFAULT '',
			line         INTEGER NOT NULL DEFAULT 0,
			period       TEXT    NOT NULL DEFAULT '',
			status       TEXT    NOT NULL DEFAULT '',
			neighborhood TEXT    NOT NULL DEFAULT '',
			units        TEXT    NOT NULL DEFAULT '',
			priced_value TEXT    NOT NULL DEFAULT '',
			area         TEXT    NOT NULL DEFAULT '',
			rooms        TEXT    NOT NULL DEFAULT '',
			stage        TEXT    NOT NULL DEFAULT '',
			project      TEXT    NOT NULL DEFAULT '',
			company      TEXT    NOT NULL DEFAULT '',
			unit_price   TEXT    NOT NULL DEFAULT '',
			unit_area    TEXT    NOT NULL DEFAULT '',
			` + created + `
		)`,
		`CREATE INDEX IF NOT EXISTS idx_raw_records_batch  ON raw_records(batch_id)`,
		`CREATE INDEX IF NOT EXISTS idx_raw_records_period ON raw_records(period)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Clear deletes every stored row.
func (s *SQLStore) Clear() error {
	if _, err := s.db.Exec("DELETE FROM raw_records"); err != nil {
		return fmt.Errorf("%s: clear: %w", s.driver, err)
	}
	return nil
}

// Write replaces the stored rows with records, inserted in batches inside a
// single transaction under a fresh batch id.
func (s *SQLStore) Write(records []*models.RawRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%s: begin: %w", s.driver, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM raw_records"); err != nil {
		return fmt.Errorf("%s: clear: %w", s.driver, err)
	}

	batchID := uuid.NewString()
	const batchSize = 50
	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := s.insertBatch(tx, batchID, records[i:end]); err != nil {
			return fmt.Errorf("%s: insert rows %d-%d: %w", s.driver, i, end, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", s.driver, err)
	}
	s.BatchID = batchID
	s.logger.Info("[store] Stored %d rows (batch %s)", len(records), batchID)
	return nil
}

func (s *SQLStore) insertBatch(tx *sql.Tx, batchID string, batch []*models.RawRecord) error {
	n := len(recordColumns)
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*n)

	for idx, r := range batch {
		holders := make([]string, n)
		for c := range holders {
			holders[c] = s.placeholder(idx*n + c + 1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(holders, ",")+")")
		valueArgs = append(valueArgs,
			batchID, r.Sheet, r.Line, r.Period, r.Status, r.Neighborhood, r.Units,
			r.PricedValue, r.Area, r.Rooms, r.Stage, r.Project, r.Company, r.UnitPrice, r.UnitArea)
	}

	query := fmt.Sprintf("INSERT INTO raw_records (%s) VALUES %s",
		strings.Join(recordColumns, ", "), strings.Join(valueStrings, ","))
	_, err := tx.Exec(query, valueArgs...)
	return err
}

// placeholder returns the n-th bind parameter of the store's dialect.
func (s *SQLStore) placeholder(n int) string {
	if s.driver == DriverPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// FetchAll retrieves every stored row in insertion order.
func (s *SQLStore) FetchAll() ([]*models.RawRecord, error) {
	rows, err := s.db.Query(`
		SELECT sheet, line, period, status, neighborhood, units, priced_value, area,
		       rooms, stage, project, company, unit_price, unit_area
		FROM raw_records
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch all: %w", s.driver, err)
	}
	defer rows.Close()

	var records []*models.RawRecord
	for rows.Next() {
		r := &models.RawRecord{}
		if err := rows.Scan(
			&r.Sheet, &r.Line, &r.Period, &r.Status, &r.Neighborhood, &r.Units, &r.PricedValue,
			&r.Area, &r.Rooms, &r.Stage, &r.Project, &r.Company, &r.UnitPrice, &r.UnitArea,
		); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", s.driver, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Count returns the number of stored rows.
func (s *SQLStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM raw_records").Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: count: %w", s.driver, err)
	}
	return n, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

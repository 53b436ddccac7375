/*
Package sqlite provides the SQLite-backed implementation of the vacation
engine's persistence interfaces.

PURPOSE:
  Implements vacation.TxStore, vacation.HolidaySource and
  vacation.AgreementSource over a single SQLite database, plus the employee
  and holiday management the HTTP layer needs. In production, the same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  employees:        Employee identity and hiring date
  agreement_terms:  Piecewise entitlement schedule per employee
  holidays:         Non-workable dates
  vacation_records: Persisted allocations with charge year and status

CHARGE YEAR REPRESENTATION:
  A record's charge year is persisted as that year's first day
  ("2025-01-01"), the canonical storage form; the domain works with the
  plain year number.

ATOMICITY:
  SaveAll writes its batch inside one database transaction. WithTx hands out
  a transaction-scoped store whose reads AND writes go through the same
  sql.Tx, so the delete-and-reallocate update path observes its own delete
  and rolls back as a unit.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/vacations.db")   // or ":memory:"
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  service := vacation.NewService(store, store, store, vacation.SystemClock{})

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - vacation/store.go: Interface definitions
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/vacation-engine/calendar"
	"github.com/warp/vacation-engine/vacation"
)

// Store implements the persistence interfaces using SQLite.
//
// mu serializes writers so an open WithTx transaction never races a direct
// write into SQLITE_BUSY. Reads take no lock: sql.DB is safe for concurrent
// use and WAL readers don't block, which also lets the allocation running
// inside WithTx read holidays and agreements from the same store.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

var (
	_ vacation.TxStore         = (*Store)(nil)
	_ vacation.HolidaySource   = (*Store)(nil)
	_ vacation.AgreementSource = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		hire_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS agreement_terms (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		effective_from TEXT NOT NULL,
		annual_days TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_agreement_terms_user
		ON agreement_terms(user_id, effective_from);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL UNIQUE,
		description TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_holidays_date ON holidays(date);

	CREATE TABLE IF NOT EXISTS vacation_records (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		charge_year TEXT NOT NULL,
		status TEXT NOT NULL,
		description TEXT,
		observations TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Hot path: balance calculation per user and charge-year window.
	CREATE INDEX IF NOT EXISTS idx_vacation_records_user_charge_year
		ON vacation_records(user_id, charge_year);

	CREATE INDEX IF NOT EXISTS idx_vacation_records_user_dates
		ON vacation_records(user_id, start_date, end_date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// VACATION RECORDS (vacation.TxStore)
// =============================================================================

const recordColumns = `id, user_id, start_date, end_date, charge_year, status, description, observations`

// querier abstracts *sql.DB and *sql.Tx so the record queries run unchanged
// inside and outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// FindByID returns a record or vacation.ErrRecordNotFound.
func (s *Store) FindByID(ctx context.Context, id string) (*vacation.Record, error) {
	return findRecordByID(ctx, s.db, id)
}

func findRecordByID(ctx context.Context, q querier, id string) (*vacation.Record, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM vacation_records WHERE id = ?`, id)

	record, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, vacation.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load vacation record: %w", err)
	}
	return &record, nil
}

// FindByUserAndDateRange returns the user's records overlapping the interval.
func (s *Store) FindByUserAndDateRange(ctx context.Context, userID string, interval calendar.DateInterval) ([]vacation.Record, error) {
	return findByDateRange(ctx, s.db, userID, interval)
}

func findByDateRange(ctx context.Context, q querier, userID string, interval calendar.DateInterval) ([]vacation.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM vacation_records
		WHERE user_id = ? AND start_date <= ? AND end_date >= ?
		ORDER BY start_date ASC, id ASC
	`
	return queryRecords(ctx, q, query, userID, interval.End.String(), interval.Start.String())
}

// FindByUserAndChargeYearRange returns the user's records charged to any year
// in [fromYear, toYear].
func (s *Store) FindByUserAndChargeYearRange(ctx context.Context, userID string, fromYear, toYear int) ([]vacation.Record, error) {
	return findByChargeYears(ctx, s.db, userID, fromYear, toYear)
}

func findByChargeYears(ctx context.Context, q querier, userID string, fromYear, toYear int) ([]vacation.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM vacation_records
		WHERE user_id = ? AND charge_year >= ? AND charge_year <= ?
		ORDER BY start_date ASC, id ASC
	`
	return queryRecords(ctx, q, query,
		userID, calendar.StartOfYear(fromYear).String(), calendar.StartOfYear(toYear).String())
}

// Save inserts or updates a single record.
func (s *Store) Save(ctx context.Context, record vacation.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveRecord(ctx, s.db, record)
}

func saveRecord(ctx context.Context, q querier, record vacation.Record) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := q.ExecContext(ctx, `
		INSERT INTO vacation_records
		(id, user_id, start_date, end_date, charge_year, status, description, observations, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			charge_year = excluded.charge_year,
			status = excluded.status,
			description = excluded.description,
			observations = excluded.observations,
			updated_at = excluded.updated_at
	`,
		record.ID,
		record.UserID,
		record.StartDate.String(),
		record.EndDate.String(),
		record.ChargeYearStart().String(),
		string(record.Status),
		record.Description,
		record.Observations,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to save vacation record: %w", err)
	}
	return nil
}

// SaveAll persists the batch inside one transaction: all or nothing.
func (s *Store) SaveAll(ctx context.Context, records []vacation.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	for _, record := range records {
		if err := saveRecord(ctx, sqlTx, record); err != nil {
			return err
		}
	}
	return sqlTx.Commit()
}

// DeleteByID removes a record, returning vacation.ErrRecordNotFound if absent.
func (s *Store) DeleteByID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteRecord(ctx, s.db, id)
}

func deleteRecord(ctx context.Context, q querier, id string) error {
	res, err := q.ExecContext(ctx, `DELETE FROM vacation_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete vacation record: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return vacation.ErrRecordNotFound
	}
	return nil
}

func queryRecords(ctx context.Context, q querier, query string, args ...any) ([]vacation.Record, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query vacation records: %w", err)
	}
	defer rows.Close()

	var records []vacation.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vacation record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc rowScanner) (vacation.Record, error) {
	var (
		record                         vacation.Record
		startDate, endDate, chargeYear string
		status                         string
		description, observations      sql.NullString
	)

	err := sc.Scan(&record.ID, &record.UserID, &startDate, &endDate,
		&chargeYear, &status, &description, &observations)
	if err != nil {
		return record, err
	}

	if record.StartDate, err = calendar.ParseDate(startDate); err != nil {
		return record, fmt.Errorf("invalid start_date %q: %w", startDate, err)
	}
	if record.EndDate, err = calendar.ParseDate(endDate); err != nil {
		return record, fmt.Errorf("invalid end_date %q: %w", endDate, err)
	}
	chargeStart, err := calendar.ParseDate(chargeYear)
	if err != nil {
		return record, fmt.Errorf("invalid charge_year %q: %w", chargeYear, err)
	}
	record.ChargeYear = chargeStart.Year()
	record.Status = vacation.Status(status)
	record.Description = description.String
	record.Observations = observations.String
	return record, nil
}

// =============================================================================
// TRANSACTIONAL STORE
// =============================================================================

// WithTx executes fn against a transaction-scoped store. If fn returns an
// error the transaction rolls back and nothing fn wrote survives.
func (s *Store) WithTx(ctx context.Context, fn func(store vacation.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txStore routes every operation through the enclosing sql.Tx, so the
// transaction observes its own writes.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) FindByID(ctx context.Context, id string) (*vacation.Record, error) {
	return findRecordByID(ctx, ts.tx, id)
}

func (ts *txStore) FindByUserAndDateRange(ctx context.Context, userID string, interval calendar.DateInterval) ([]vacation.Record, error) {
	return findByDateRange(ctx, ts.tx, userID, interval)
}

func (ts *txStore) FindByUserAndChargeYearRange(ctx context.Context, userID string, fromYear, toYear int) ([]vacation.Record, error) {
	return findByChargeYears(ctx, ts.tx, userID, fromYear, toYear)
}

func (ts *txStore) Save(ctx context.Context, record vacation.Record) error {
	return saveRecord(ctx, ts.tx, record)
}

func (ts *txStore) SaveAll(ctx context.Context, records []vacation.Record) error {
	for _, record := range records {
		if err := saveRecord(ctx, ts.tx, record); err != nil {
			return err
		}
	}
	return nil
}

func (ts *txStore) DeleteByID(ctx context.Context, id string) error {
	return deleteRecord(ctx, ts.tx, id)
}

// =============================================================================
// HOLIDAYS (vacation.HolidaySource + management)
// =============================================================================

// HolidaysBetween returns holidays falling inside [from, to], date-ordered.
func (s *Store) HolidaysBetween(ctx context.Context, from, to calendar.TimePoint) ([]calendar.Holiday, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, description FROM holidays
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC
	`, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	var holidays []calendar.Holiday
	for rows.Next() {
		var (
			holiday     calendar.Holiday
			dateStr     string
			description sql.NullString
		)
		if err := rows.Scan(&holiday.ID, &dateStr, &description); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		if holiday.Date, err = calendar.ParseDate(dateStr); err != nil {
			return nil, fmt.Errorf("invalid holiday date %q: %w", dateStr, err)
		}
		holiday.Description = description.String
		holidays = append(holidays, holiday)
	}
	return holidays, rows.Err()
}

// SaveHoliday inserts a holiday, replacing any existing one on the same date.
func (s *Store) SaveHoliday(ctx context.Context, holiday calendar.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holidays (id, date, description) VALUES (?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET description = excluded.description
	`, holiday.ID, holiday.Date.String(), holiday.Description)
	if err != nil {
		return fmt.Errorf("failed to save holiday: %w", err)
	}
	return nil
}

// DeleteHoliday removes a holiday by id.
func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM holidays WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	return nil
}

// =============================================================================
// EMPLOYEES AND AGREEMENTS (vacation.AgreementSource + management)
// =============================================================================

// Employee is a stored employee.
type Employee struct {
	ID       string
	Name     string
	Email    string
	HireDate calendar.TimePoint
}

// SaveEmployee inserts or updates an employee.
func (s *Store) SaveEmployee(ctx context.Context, emp Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, email, hire_date, created_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			hire_date = excluded.hire_date
	`, emp.ID, emp.Name, emp.Email, emp.HireDate.String(), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

// GetEmployee returns an employee or vacation.ErrUserNotFound.
func (s *Store) GetEmployee(ctx context.Context, id string) (*Employee, error) {
	var (
		emp      Employee
		hireDate string
		email    sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, hire_date FROM employees WHERE id = ?`, id,
	).Scan(&emp.ID, &emp.Name, &email, &hireDate)
	if err == sql.ErrNoRows {
		return nil, vacation.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load employee: %w", err)
	}
	emp.Email = email.String
	if emp.HireDate, err = calendar.ParseDate(hireDate); err != nil {
		return nil, fmt.Errorf("invalid hire_date %q: %w", hireDate, err)
	}
	return &emp, nil
}

// ListEmployees returns all employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]Employee, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, hire_date FROM employees ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var (
			emp      Employee
			hireDate string
			email    sql.NullString
		)
		if err := rows.Scan(&emp.ID, &emp.Name, &email, &hireDate); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		emp.Email = email.String
		if emp.HireDate, err = calendar.ParseDate(hireDate); err != nil {
			return nil, fmt.Errorf("invalid hire_date %q: %w", hireDate, err)
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// SaveAgreementTerm appends a term to an employee's entitlement schedule.
func (s *Store) SaveAgreementTerm(ctx context.Context, id, userID string, term vacation.AgreementTerm) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO agreement_terms (id, user_id, effective_from, annual_days) VALUES (?, ?, ?, ?)
	`, id, userID, term.EffectiveFrom.String(), term.AnnualDays.String())
	if err != nil {
		return fmt.Errorf("failed to save agreement term: %w", err)
	}
	return nil
}

// AgreementFor loads the employee's hire date and full term set.
func (s *Store) AgreementFor(ctx context.Context, userID string) (vacation.Agreement, error) {
	emp, err := s.GetEmployee(ctx, userID)
	if err != nil {
		return vacation.Agreement{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT effective_from, annual_days FROM agreement_terms
		WHERE user_id = ? ORDER BY effective_from ASC
	`, userID)
	if err != nil {
		return vacation.Agreement{}, fmt.Errorf("failed to query agreement terms: %w", err)
	}
	defer rows.Close()

	agreement := vacation.Agreement{UserID: userID, HireDate: emp.HireDate}
	for rows.Next() {
		var (
			effectiveFrom string
			annualDays    string
			term          vacation.AgreementTerm
		)
		if err := rows.Scan(&effectiveFrom, &annualDays); err != nil {
			return vacation.Agreement{}, fmt.Errorf("failed to scan agreement term: %w", err)
		}
		if term.EffectiveFrom, err = calendar.ParseDate(effectiveFrom); err != nil {
			return vacation.Agreement{}, fmt.Errorf("invalid effective_from %q: %w", effectiveFrom, err)
		}
		if term.AnnualDays, err = decimal.NewFromString(annualDays); err != nil {
			return vacation.Agreement{}, fmt.Errorf("invalid annual_days %q: %w", annualDays, err)
		}
		agreement.Terms = append(agreement.Terms, term)
	}
	return agreement, rows.Err()
}

// =============================================================================
// MAINTENANCE
// =============================================================================

// ListRecordsByUser returns every record of a user, newest range first.
func (s *Store) ListRecordsByUser(ctx context.Context, userID string) ([]vacation.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM vacation_records WHERE user_id = ?
		ORDER BY start_date DESC, id ASC
	`
	return queryRecords(ctx, s.db, query, userID)
}

// Reset drops all data. Dev/demo use only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM vacation_records;
		DELETE FROM agreement_terms;
		DELETE FROM holidays;
		DELETE FROM employees;
	`)
	if err != nil {
		return fmt.Errorf("failed to reset database: %w", err)
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/simonvc/bookkeeper/internal/ledger"
	_ "modernc.org/sqlite"
)

type AccountFilter struct {
	Type     ledger.AccountType
	IsSystem *bool
	Limit    int
	Offset   int
}

type JournalFilter struct {
	Range  ledger.DateRange
	Limit  int
	Offset int
}

// Store keeps a single-connection writer so SQLite serializes every mutation, and a
// pooled reader for reports.
type Store struct {
	writer *sql.DB
	reader *sql.DB
}

func Open(dbPath string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", dbPath)

	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}
	writer.SetMaxOpenConns(1)

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}
	reader.SetMaxOpenConns(runtime.NumCPU())

	s := &Store{writer: writer, reader: reader}

	if err := s.migrate(context.Background()); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Store) Close() error {
	err1 := s.writer.Close()
	err2 := s.reader.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// Ping checks that both pools can reach the database file.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.writer.PingContext(ctx); err != nil {
		return err
	}
	return s.reader.PingContext(ctx)
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func formatDate(t time.Time) string { return ledger.FormatDate(t) }

// parseDate reads a stored calendar date. A malformed value is an error, never
// the zero time.
func parseDate(column, s string) (time.Time, error) {
	t, err := time.Parse(ledger.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("stored %s %q: %w", column, s, err)
	}
	return t, nil
}

func formatTimestamp(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTimestamp(column, s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("stored %s %q: %w", column, s, err)
	}
	return t, nil
}

// Trigger messages raised by the schema. translate maps them back to ledger errors.
const (
	msgUnbalanced    = "journal lines do not balance"
	msgPeriodClosed  = "fiscal period is closed"
	msgOutsidePeriod = "journal date is outside its fiscal period"
	msgPeriodOverlap = "fiscal period overlaps an existing period"
)

// translate turns SQLite constraint and trigger failures into ledger sentinels.
// dup is returned for UNIQUE violations and may be nil.
func translate(err error, dup error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, msgUnbalanced):
		return fmt.Errorf("%w: %v", ledger.ErrUnbalancedJournal, err)
	case strings.Contains(msg, msgPeriodClosed):
		return fmt.Errorf("%w: %v", ledger.ErrPeriodClosed, err)
	case strings.Contains(msg, msgOutsidePeriod):
		return fmt.Errorf("%w: %v", ledger.ErrNoFiscalPeriod, err)
	case strings.Contains(msg, msgPeriodOverlap):
		return fmt.Errorf("%w: %v", ledger.ErrPeriodOverlap, err)
	case dup != nil && strings.Contains(msg, "UNIQUE constraint failed"):
		return dup
	}
	return err
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return err
}

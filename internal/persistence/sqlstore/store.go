// Package sqlstore implements the persistence contracts on a relational
// database through sqlx. SQLite, MySQL and PostgreSQL are supported; each has
// its own embedded migration set.
package sqlstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/fitness-manager/internal/gym"
)

// The sqlite, mysql and postgres drivers register through the named imports
// in errors.go and dsn.go.
func init() {
	// modernc registers itself as "sqlite", which sqlx does not know about.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Dialect selects the database engine.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "postgres"
)

// Valid reports whether d is a supported dialect.
func (d Dialect) Valid() bool {
	switch d {
	case DialectSQLite, DialectMySQL, DialectPostgres:
		return true
	}
	return false
}

// driverName is the database/sql driver registered for the dialect.
func (d Dialect) driverName() string {
	return string(d)
}

// returningKeys reports whether generated keys come back through RETURNING
// instead of LastInsertId.
func (d Dialect) returningKeys() bool {
	return d == DialectPostgres
}

// Config describes how to reach the store. None of the connection values have
// defaults.
type Config struct {
	Dialect       Dialect
	Path          string
	Host          string
	Port          int
	User          string
	Password      string
	Name          string
	TLS           bool
	TLSSkipVerify bool
	MaxOpenConns  int
}

// Store owns the connection pool and exposes one table per entity plus the
// account and session repositories.
type Store struct {
	db      *sqlx.DB
	dialect Dialect
	logger  *slog.Logger

	Users        *Table[gym.User]
	Coaches      *Table[gym.Coach]
	Facilities   *Table[gym.Facility]
	Bookings     *Table[gym.Booking]
	Events       *Table[gym.Event]
	Participants *Table[gym.Participant]
	Attendance   *Table[gym.Attendance]
	Progress     *Table[gym.FitnessProgress]

	Accounts *AccountRepository
	Sessions *SessionRepository

	tables map[string]Schema
}

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dsn, err := cfg.dataSourceName()
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(cfg.Dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Dialect, err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s store: %w", cfg.Dialect, err)
	}

	logger.Info("store connected", "dialect", cfg.Dialect, "max_open_conns", maxOpen)
	return newStore(db, cfg.Dialect, logger), nil
}

func newStore(db *sqlx.DB, dialect Dialect, logger *slog.Logger) *Store {
	s := &Store{
		db:      db,
		dialect: dialect,
		logger:  logger,
		tables:  make(map[string]Schema, len(resourceSchemas)),
	}
	for _, schema := range resourceSchemas {
		s.tables[schema.Table] = schema
	}

	s.Users = NewTable[gym.User](db, dialect, UsersSchema)
	s.Coaches = NewTable[gym.Coach](db, dialect, CoachesSchema)
	s.Facilities = NewTable[gym.Facility](db, dialect, FacilitiesSchema)
	s.Bookings = NewTable[gym.Booking](db, dialect, BookingsSchema)
	s.Events = NewTable[gym.Event](db, dialect, EventsSchema)
	s.Participants = NewTable[gym.Participant](db, dialect, ParticipantsSchema)
	s.Attendance = NewTable[gym.Attendance](db, dialect, AttendanceSchema)
	s.Progress = NewTable[gym.FitnessProgress](db, dialect, ProgressSchema)
	s.Accounts = &AccountRepository{db: db, dialect: dialect}
	s.Sessions = &SessionRepository{db: db}
	return s
}

// Dialect returns the engine the store is connected to.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Ping verifies that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Exists reports whether the named resource table holds a row with the given
// key.
func (s *Store) Exists(ctx context.Context, resource string, id int64) (bool, error) {
	schema, ok := s.tables[resource]
	if !ok {
		return false, fmt.Errorf("unknown resource %q", resource)
	}
	query := s.db.Rebind(fmt.Sprintf("SELECT COUNT(1) FROM %s WHERE %s = ?", schema.Table, schema.Key))
	var count int
	if err := s.db.GetContext(ctx, &count, query, id); err != nil {
		return false, mapError(err)
	}
	return count > 0, nil
}

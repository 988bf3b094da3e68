package sqlstore

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/example/fitness-manager/internal/gym"
	"github.com/example/fitness-manager/internal/persistence"
)

// Schema describes the layout of one entity table. Columns lists the writable
// columns and excludes the key.
type Schema struct {
	Table   string
	Key     string
	Columns []string
}

func (s Schema) hasColumn(name string) bool {
	return name == s.Key || slices.Contains(s.Columns, name)
}

// Table runs the single-table statements shared by every entity. T must carry
// db tags matching the schema columns.
type Table[T any] struct {
	db      *sqlx.DB
	dialect Dialect
	schema  Schema

	selectSQL string
	insertSQL string
	updateSQL string
	deleteSQL string
}

// NewTable prepares the statements for schema.
func NewTable[T any](db *sqlx.DB, dialect Dialect, schema Schema) *Table[T] {
	cols := strings.Join(schema.Columns, ", ")
	named := make([]string, len(schema.Columns))
	assignments := make([]string, len(schema.Columns))
	for i, col := range schema.Columns {
		named[i] = ":" + col
		assignments[i] = col + " = :" + col
	}

	t := &Table[T]{
		db:        db,
		dialect:   dialect,
		schema:    schema,
		selectSQL: fmt.Sprintf("SELECT %s, %s FROM %s", schema.Key, cols, schema.Table),
		insertSQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", schema.Table, cols, strings.Join(named, ", ")),
		updateSQL: fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", schema.Table, strings.Join(assignments, ", "), schema.Key),
		deleteSQL: db.Rebind(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", schema.Table, schema.Key)),
	}
	if dialect.returningKeys() {
		t.insertSQL += " RETURNING " + schema.Key
	}
	return t
}

// Schema returns the table layout.
func (t *Table[T]) Schema() Schema {
	return t.schema
}

// List returns every row in key order.
func (t *Table[T]) List(ctx context.Context) ([]T, error) {
	rows := []T{}
	query := t.selectSQL + " ORDER BY " + t.schema.Key
	if err := t.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, mapError(err)
	}
	return rows, nil
}

// ListBy returns rows where column equals value, ordered by orderBy then key.
// Descending orders are requested with a leading "-".
func (t *Table[T]) ListBy(ctx context.Context, column string, value any, orderBy string) ([]T, error) {
	if !t.schema.hasColumn(column) {
		return nil, fmt.Errorf("%s has no column %q", t.schema.Table, column)
	}
	order, err := t.orderClause(orderBy)
	if err != nil {
		return nil, err
	}

	rows := []T{}
	query := t.db.Rebind(fmt.Sprintf("%s WHERE %s = ? ORDER BY %s", t.selectSQL, column, order))
	if err := t.db.SelectContext(ctx, &rows, query, value); err != nil {
		return nil, mapError(err)
	}
	return rows, nil
}

func (t *Table[T]) orderClause(orderBy string) (string, error) {
	if orderBy == "" {
		return t.schema.Key, nil
	}
	direction := "ASC"
	column := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		column = orderBy[1:]
	}
	if !t.schema.hasColumn(column) {
		return "", fmt.Errorf("%s has no column %q", t.schema.Table, column)
	}
	return fmt.Sprintf("%s %s, %s %s", column, direction, t.schema.Key, direction), nil
}

// Get returns the row with the given key or persistence.ErrNotFound.
func (t *Table[T]) Get(ctx context.Context, id int64) (T, error) {
	var row T
	query := t.db.Rebind(t.selectSQL + " WHERE " + t.schema.Key + " = ?")
	if err := t.db.GetContext(ctx, &row, query, id); err != nil {
		return row, mapError(err)
	}
	return row, nil
}

// Create inserts row and returns the generated key. The key field of row is
// ignored.
func (t *Table[T]) Create(ctx context.Context, row T) (int64, error) {
	query, args, err := sqlx.Named(t.insertSQL, row)
	if err != nil {
		return 0, fmt.Errorf("bind %s insert: %w", t.schema.Table, err)
	}
	query = t.db.Rebind(query)

	if t.dialect.returningKeys() {
		var id int64
		if err := t.db.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
			return 0, mapError(err)
		}
		return id, nil
	}

	res, err := t.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read %s key: %w", t.schema.Table, err)
	}
	return id, nil
}

// Update overwrites every writable column of the row with the given key.
func (t *Table[T]) Update(ctx context.Context, id int64, row T) error {
	query, args, err := sqlx.Named(t.updateSQL, row)
	if err != nil {
		return fmt.Errorf("bind %s update: %w", t.schema.Table, err)
	}
	args = append(args, id)
	res, err := t.db.ExecContext(ctx, t.db.Rebind(query), args...)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res)
}

// Delete removes the row with the given key.
func (t *Table[T]) Delete(ctx context.Context, id int64) error {
	res, err := t.db.ExecContext(ctx, t.deleteSQL, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res)
}

// SetIf sets column to next on the row with the given key only while column
// still holds expected. It reports whether the row was changed.
func (t *Table[T]) SetIf(ctx context.Context, id int64, column string, expected, next any) (bool, error) {
	if !slices.Contains(t.schema.Columns, column) {
		return false, fmt.Errorf("%s has no writable column %q", t.schema.Table, column)
	}
	query := t.db.Rebind(fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s = ? AND %s = ?", t.schema.Table, column, t.schema.Key, column))
	res, err := t.db.ExecContext(ctx, query, next, id, expected)
	if err != nil {
		return false, mapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func requireAffected(res rowsAffecter) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

var _ persistence.Resource[gym.User] = (*Table[gym.User])(nil)

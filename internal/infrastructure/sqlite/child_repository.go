package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/zjrosen/finder/internal/domain"
	"github.com/zjrosen/finder/internal/finder"
	"github.com/zjrosen/finder/internal/log"
)

// childColumns is the list of columns to select for child queries.
const childColumns = `c.id, c.guid, c.parent_id, c.name, c.status, c.created_at, c.updated_at`

// childFrom is the aliased table operations are compiled against.
const childFrom = ` FROM ` + domain.AbstractChildTable + ` c`

// childRepository implements domain.AbstractChildRepository using SQLite.
type childRepository struct {
	db     *sql.DB
	schema *finder.Schema
}

// newChildRepository creates a new childRepository instance.
func newChildRepository(db *sql.DB) *childRepository {
	return &childRepository{db: db, schema: domain.AbstractChildSchema}
}

// Ensure childRepository implements domain.AbstractChildRepository.
var _ domain.AbstractChildRepository = (*childRepository)(nil)

// scanChild scans a row into an AbstractChildModel.
func scanChild(scanner interface{ Scan(...any) error }) (*AbstractChildModel, error) {
	var model AbstractChildModel
	err := scanner.Scan(
		&model.ID, &model.GUID, &model.ParentID, &model.Name, &model.Status,
		&model.CreatedAt, &model.UpdatedAt,
	)
	return &model, err
}

// Save persists a child.
// For new children (ID == 0), inserts a new row and sets the child ID.
// For existing children (ID > 0), updates the existing row.
func (r *childRepository) Save(ctx context.Context, child *domain.AbstractChild) error {
	if err := child.Validate(); err != nil {
		return err
	}
	model := toChildModel(child)

	if child.ID() == 0 {
		result, err := r.db.ExecContext(ctx,
			`INSERT INTO abstract_child (guid, parent_id, name, status, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			model.GUID, model.ParentID, model.Name, model.Status, model.CreatedAt, model.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert child: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		child.SetID(id)
		log.Debug(log.CatDB, "child inserted", "id", id, "guid", model.GUID)
		return nil
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE abstract_child SET parent_id = ?, name = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		model.ParentID, model.Name, model.Status, model.UpdatedAt, model.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update child: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.ChildNotFoundError{ID: model.ID}
	}
	return nil
}

// FindByID retrieves a child by its database ID.
func (r *childRepository) FindByID(ctx context.Context, id int64) (*domain.AbstractChild, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+childColumns+childFrom+` WHERE c.id = ?`, id)
	model, err := scanChild(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.ChildNotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find child by id: %w", err)
	}
	return model.toDomain(), nil
}

// FindByGUID retrieves a child by its GUID.
func (r *childRepository) FindByGUID(ctx context.Context, guid string) (*domain.AbstractChild, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+childColumns+childFrom+` WHERE c.guid = ?`, guid)
	model, err := scanChild(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.ChildNotFoundError{GUID: guid}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find child by guid: %w", err)
	}
	return model.toDomain(), nil
}

// Delete removes a child by ID.
func (r *childRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM abstract_child WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete child: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.ChildNotFoundError{ID: id}
	}
	return nil
}

// DeleteAll removes every child matching op inside a transaction.
func (r *childRepository) DeleteAll(ctx context.Context, op finder.Operation) (int, error) {
	where, _, params, err := r.compile(op, nil)
	if err != nil {
		return 0, err
	}

	query := `DELETE FROM abstract_child`
	if where != "" {
		query += ` WHERE id IN (SELECT c.id` + childFrom + ` WHERE ` + where + `)`
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, query, params...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete children: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit delete: %w", err)
	}

	log.Debug(log.CatDB, "children deleted", "op", op.String(), "count", rowsAffected)
	return int(rowsAffected), nil
}

// Resolve returns the children matching op in the given order. Ties are
// broken by id so results are stable.
func (r *childRepository) Resolve(ctx context.Context, op finder.Operation, orderBy []finder.OrderTerm) ([]*domain.AbstractChild, error) {
	where, order, params, err := r.compile(op, withIDTiebreak(orderBy))
	if err != nil {
		return nil, err
	}

	query := selectChildren(where, order)
	log.Debug(log.CatDB, "resolve", "sql", query, "params", params)

	rows, err := r.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to query children: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var children []*domain.AbstractChild
	for rows.Next() {
		model, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan child row: %w", err)
		}
		children = append(children, model.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating child rows: %w", err)
	}

	return children, nil
}

// Count returns the number of children matching op.
func (r *childRepository) Count(ctx context.Context, op finder.Operation) (int, error) {
	where, _, params, err := r.compile(op, nil)
	if err != nil {
		return 0, err
	}

	query := `SELECT COUNT(*)` + childFrom
	if where != "" {
		query += ` WHERE ` + where
	}

	var n int
	if err := r.db.QueryRowContext(ctx, query, params...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count children: %w", err)
	}
	return n, nil
}

// compile validates op and orderBy against the schema and builds SQL for them.
func (r *childRepository) compile(op finder.Operation, orderBy []finder.OrderTerm) (string, string, []any, error) {
	q := &finder.Query{Filter: op, OrderBy: orderBy}
	if err := finder.ValidateOperation(r.schema, op); err != nil {
		return "", "", nil, fmt.Errorf("invalid operation: %w", err)
	}
	if err := finder.Validate(r.schema, q); err != nil {
		return "", "", nil, fmt.Errorf("invalid operation: %w", err)
	}
	where, order, params := finder.NewSQLBuilder(r.schema, q).Build()
	return where, order, params, nil
}

func selectChildren(where, order string) string {
	query := `SELECT ` + childColumns + childFrom
	if where != "" {
		query += ` WHERE ` + where
	}
	if order != "" {
		query += ` ORDER BY ` + order
	}
	return query
}

// ExplainResolve returns the SQL and parameters Resolve would run for op.
func ExplainResolve(op finder.Operation, orderBy []finder.OrderTerm) (string, []any, error) {
	r := &childRepository{schema: domain.AbstractChildSchema}
	where, order, params, err := r.compile(op, withIDTiebreak(orderBy))
	if err != nil {
		return "", nil, err
	}
	return selectChildren(where, order), params, nil
}

func withIDTiebreak(orderBy []finder.OrderTerm) []finder.OrderTerm {
	if len(orderBy) == 0 {
		return nil
	}
	if slices.ContainsFunc(orderBy, func(t finder.OrderTerm) bool { return t.Attribute == domain.AttrID }) {
		return orderBy
	}
	return append(slices.Clone(orderBy), finder.OrderTerm{Attribute: domain.AttrID})
}

// Close releases any resources held by the repository.
// This is a no-op because the connection is owned by the DB struct.
func (r *childRepository) Close() error {
	return nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/matchboard/internal/core"
	"github.com/jackc/pgx/v5"
)

// CreateMethod inserts a method. A taken name returns core.ErrDuplicateName.
func (s *Store) CreateMethod(ctx context.Context, name, color string) (core.Method, error) {
	m := core.Method{Name: name, Color: color}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO methods (name, color) VALUES ($1, $2) RETURNING id`, name, color).Scan(&m.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Method{}, fmt.Errorf("create method %q: %w", name, core.ErrDuplicateName)
		}
		return core.Method{}, fmt.Errorf("create method: %w", err)
	}
	return m, nil
}

// ListMethods returns methods ordered by name, ignoring case.
func (s *Store) ListMethods(ctx context.Context) ([]core.Method, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, color FROM methods ORDER BY lower(name), id`)
	if err != nil {
		return nil, fmt.Errorf("list methods: %w", err)
	}

	methods, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Method, error) {
		var m core.Method
		err := row.Scan(&m.ID, &m.Name, &m.Color)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("list methods: %w", err)
	}
	return methods, nil
}

// GetMethod returns nil, nil when no method has the id.
func (s *Store) GetMethod(ctx context.Context, id int64) (*core.Method, error) {
	return getMethod(ctx, s.pool, id)
}

func getMethod(ctx context.Context, db DBTX, id int64) (*core.Method, error) {
	var m core.Method
	err := db.QueryRow(ctx, `SELECT id, name, color FROM methods WHERE id = $1`, id).
		Scan(&m.ID, &m.Name, &m.Color)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get method %d: %w", id, err)
	}
	return &m, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/JonMunkholm/matchboard/internal/core"
)

// CreateMethod inserts a method. A taken name returns core.ErrDuplicateName.
func (s *Store) CreateMethod(ctx context.Context, name, color string) (core.Method, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO methods (name, color) VALUES (?, ?)`, name, color)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Method{}, fmt.Errorf("create method %q: %w", name, core.ErrDuplicateName)
		}
		return core.Method{}, fmt.Errorf("create method: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Method{}, fmt.Errorf("create method: %w", err)
	}
	return core.Method{ID: id, Name: name, Color: color}, nil
}

// ListMethods returns methods ordered by name, ignoring case.
func (s *Store) ListMethods(ctx context.Context) ([]core.Method, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, color FROM methods ORDER BY name COLLATE NOCASE, id`)
	if err != nil {
		return nil, fmt.Errorf("list methods: %w", err)
	}
	defer rows.Close()

	var methods []core.Method
	for rows.Next() {
		var m core.Method
		if err := rows.Scan(&m.ID, &m.Name, &m.Color); err != nil {
			return nil, fmt.Errorf("scan method: %w", err)
		}
		methods = append(methods, m)
	}
	return methods, rows.Err()
}

// GetMethod returns nil, nil when no method has the id.
func (s *Store) GetMethod(ctx context.Context, id int64) (*core.Method, error) {
	return getMethod(ctx, s.db, id)
}

func getMethod(ctx context.Context, db DBTX, id int64) (*core.Method, error) {
	var m core.Method
	err := db.QueryRowContext(ctx, `SELECT id, name, color FROM methods WHERE id = ?`, id).
		Scan(&m.ID, &m.Name, &m.Color)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get method %d: %w", id, err)
	}
	return &m, nil
}

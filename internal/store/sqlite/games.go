package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/JonMunkholm/matchboard/internal/core"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

const selectGames = `
SELECT g.id, g.match_date, g.match_time, g.league, g.home_team, g.away_team,
       g.raw_data, g.selected, g.expected_goals, COALESCE(m.name, g.method),
       g.method_id, m.color, g.link
FROM games g
LEFT JOIN methods m ON m.id = g.method_id`

// ReplaceGames deletes every game and inserts games in one transaction.
func (s *Store) ReplaceGames(ctx context.Context, games []core.GameInput) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM games`); err != nil {
		return 0, fmt.Errorf("delete games: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO games (match_date, match_time, league, home_team, away_team, raw_data, selected, expected_goals, method, method_id, link)
		VALUES (?, ?, ?, ?, ?, ?, 0, NULL, NULL, NULL, NULL)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, g := range games {
		raw, err := json.Marshal(g.Raw)
		if err != nil {
			return 0, fmt.Errorf("encode row %d: %w", i+1, err)
		}
		if _, err := stmt.ExecContext(ctx,
			nullable(g.MatchDate), nullable(g.MatchTime), nullable(g.League),
			nullable(g.HomeTeam), nullable(g.AwayTeam), string(raw),
		); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(games), nil
}

// ListGames returns games ordered by match date, match time and id. SQLite
// sorts NULL before any value.
func (s *Store) ListGames(ctx context.Context, selectedOnly bool) ([]core.GameRecord, error) {
	query := selectGames
	if selectedOnly {
		query += ` WHERE g.selected = 1`
	}
	query += ` ORDER BY g.match_date, g.match_time, g.id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var games []core.GameRecord
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return games, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (core.GameRecord, error) {
	var (
		g                                 core.GameRecord
		date, tm, league, home, away, raw sql.NullString
		methodName, methodColor, link     sql.NullString
		selected                          int64
		goals                             sql.NullFloat64
		methodID                          sql.NullInt64
	)
	if err := row.Scan(&g.ID, &date, &tm, &league, &home, &away, &raw,
		&selected, &goals, &methodName, &methodID, &methodColor, &link); err != nil {
		return core.GameRecord{}, err
	}

	g.MatchDate = stringPtr(date)
	g.MatchTime = stringPtr(tm)
	g.League = stringPtr(league)
	g.HomeTeam = stringPtr(home)
	g.AwayTeam = stringPtr(away)
	g.Selected = selected != 0
	g.MethodName = stringPtr(methodName)
	g.MethodColor = stringPtr(methodColor)
	g.Link = stringPtr(link)
	if goals.Valid {
		v := goals.Float64
		g.ExpectedGoals = &v
	}
	if methodID.Valid {
		v := methodID.Int64
		g.MethodID = &v
	}
	g.Raw = decodeRaw(raw.String)
	return g, nil
}

// decodeRaw returns an empty mapping when the stored payload is unreadable.
func decodeRaw(s string) *core.Fields {
	f := core.NewFields(8)
	if s == "" {
		return f
	}
	if err := json.Unmarshal([]byte(s), f); err != nil {
		return core.NewFields(0)
	}
	return f
}

// txScope implements core.Tx on an open transaction.
type txScope struct {
	tx *sql.Tx
}

func (t *txScope) GetGame(ctx context.Context, id int64) (*core.GameRecord, error) {
	g, err := scanGame(t.tx.QueryRowContext(ctx, selectGames+` WHERE g.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get game %d: %w", id, err)
	}
	return &g, nil
}

func (t *txScope) GetMethod(ctx context.Context, id int64) (*core.Method, error) {
	return getMethod(ctx, t.tx, id)
}

func (t *txScope) SaveSelection(ctx context.Context, id int64, sel core.Selection) error {
	selected := 0
	if sel.Selected {
		selected = 1
	}
	var goals any
	if sel.ExpectedGoals != nil {
		goals = *sel.ExpectedGoals
	}
	var methodID any
	if sel.MethodID != nil {
		methodID = *sel.MethodID
	}

	res, err := t.tx.ExecContext(ctx, `
		UPDATE games
		SET selected = ?, expected_goals = ?, method = ?, method_id = ?, link = ?
		WHERE id = ?`,
		selected, goals, nullable(sel.MethodName), methodID, nullable(sel.Link), id)
	if err != nil {
		return fmt.Errorf("update game %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update game %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

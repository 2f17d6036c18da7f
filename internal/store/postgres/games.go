package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/JonMunkholm/matchboard/internal/core"
	"github.com/jackc/pgx/v5"
)

const selectGames = `
SELECT g.id, g.match_date, g.match_time, g.league, g.home_team, g.away_team,
       g.raw_data, g.selected, g.expected_goals, COALESCE(m.name, g.method),
       g.method_id, m.color, g.link
FROM games g
LEFT JOIN methods m ON m.id = g.method_id`

var gameColumns = []string{
	"match_date", "match_time", "league", "home_team", "away_team", "raw_data", "selected",
}

// ReplaceGames deletes every game and copies games in, in one transaction.
func (s *Store) ReplaceGames(ctx context.Context, games []core.GameInput) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	if _, err := tx.Exec(ctx, `DELETE FROM games`); err != nil {
		return 0, fmt.Errorf("delete games: %w", err)
	}

	rows := make([][]any, len(games))
	for i, g := range games {
		raw, err := json.Marshal(g.Raw)
		if err != nil {
			return 0, fmt.Errorf("encode row %d: %w", i+1, err)
		}
		rows[i] = []any{g.MatchDate, g.MatchTime, g.League, g.HomeTeam, g.AwayTeam, string(raw), false}
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"games"}, gameColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy games: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return int(n), nil
}

// ListGames returns games ordered by match date, match time and id, nulls
// first.
func (s *Store) ListGames(ctx context.Context, selectedOnly bool) ([]core.GameRecord, error) {
	query := selectGames
	if selectedOnly {
		query += ` WHERE g.selected`
	}
	query += ` ORDER BY g.match_date NULLS FIRST, g.match_time NULLS FIRST, g.id`

	rows, err := s.pool.Query(ctx, query)
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

func scanGame(row pgx.Row) (core.GameRecord, error) {
	var (
		g   core.GameRecord
		raw string
	)
	if err := row.Scan(&g.ID, &g.MatchDate, &g.MatchTime, &g.League, &g.HomeTeam, &g.AwayTeam,
		&raw, &g.Selected, &g.ExpectedGoals, &g.MethodName, &g.MethodID, &g.MethodColor, &g.Link); err != nil {
		return core.GameRecord{}, err
	}

	g.Raw = core.NewFields(8)
	if err := json.Unmarshal([]byte(raw), g.Raw); err != nil {
		g.Raw = core.NewFields(0)
	}
	return g, nil
}

// txScope implements core.Tx on an open transaction.
type txScope struct {
	tx pgx.Tx
}

func (t *txScope) GetGame(ctx context.Context, id int64) (*core.GameRecord, error) {
	g, err := scanGame(t.tx.QueryRow(ctx, selectGames+` WHERE g.id = $1 FOR UPDATE OF g`, id))
	if errors.Is(err, pgx.ErrNoRows) {
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
	tag, err := t.tx.Exec(ctx, `
		UPDATE games
		SET selected = $1, expected_goals = $2, method = $3, method_id = $4, link = $5
		WHERE id = $6`,
		sel.Selected, sel.ExpectedGoals, sel.MethodName, sel.MethodID, sel.Link, id)
	if err != nil {
		return fmt.Errorf("update game %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update game %d: %w", id, pgx.ErrNoRows)
	}
	return nil
}
